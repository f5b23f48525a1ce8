package models

import (
	"context"
	"strings"
	"time"

	"github.com/mmdatafocus/finance_backend/config"
	"github.com/mmdatafocus/finance_backend/utils"
)

type Category struct {
	ID        int          `gorm:"primary_key" json:"id"`
	BaseId    string       `gorm:"size:64;index;not null" json:"base_id"`
	Name      string       `gorm:"size:100;not null" json:"name"`
	Type      CategoryType `gorm:"size:10;not null" json:"type"`
	Icon      string       `gorm:"size:255" json:"icon"`
	Color     string       `gorm:"size:7" json:"color"`
	IsActive  *bool        `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCategory struct {
	Name  string       `json:"name" binding:"required" validate:"required,max=100"`
	Type  CategoryType `json:"type" binding:"required"`
	Icon  string       `json:"icon" validate:"max=255"`
	Color string       `json:"color" validate:"omitempty,hexcolor6"`
}

func (input *NewCategory) validate(ctx context.Context, baseId string, id int) error {
	input.Name = strings.TrimSpace(input.Name)
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	if !input.Type.IsValid() {
		return utils.Invalid("invalid category type")
	}
	// name is unique per type, so "Outros" may exist once as income and once as expense
	count, err := utils.ResourceCountWhere[Category](ctx, baseId, "name = ? AND type = ? AND NOT id = ?", input.Name, input.Type, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return utils.Duplicate("duplicate name")
	}
	return nil
}

func CreateCategory(ctx context.Context, input *NewCategory) (*Category, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}
	if err := input.validate(ctx, baseId, 0); err != nil {
		return nil, err
	}

	category := Category{
		BaseId:   baseId,
		Name:     input.Name,
		Type:     input.Type,
		Icon:     input.Icon,
		Color:    strings.ToUpper(input.Color),
		IsActive: utils.NewTrue(),
	}
	if err := config.GetDB().WithContext(ctx).Create(&category).Error; err != nil {
		return nil, err
	}
	if err := category.RemoveAllRedis(); err != nil {
		return nil, err
	}
	return &category, nil
}

// UpdateCategory refuses a type change while transactions still use the category.
func UpdateCategory(ctx context.Context, id int, input *NewCategory) (*Category, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}
	if err := input.validate(ctx, baseId, id); err != nil {
		return nil, err
	}

	category, err := utils.FetchModel[Category](ctx, baseId, id)
	if err != nil {
		return nil, err
	}
	if category.Type != input.Type {
		count, err := utils.ResourceCountWhere[Transaction](ctx, baseId, "category_id = ?", id)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, utils.Conflict("cannot change the type of a category used by transactions")
		}
	}

	err = config.GetDB().WithContext(ctx).Model(category).Updates(map[string]interface{}{
		"Name":  input.Name,
		"Type":  input.Type,
		"Icon":  input.Icon,
		"Color": strings.ToUpper(input.Color),
	}).Error
	if err != nil {
		return nil, err
	}
	if err := RemoveRedisBoth(*category); err != nil {
		return nil, err
	}
	return category, nil
}

func DeleteCategory(ctx context.Context, id int) (*Category, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}
	result, err := utils.FetchModel[Category](ctx, baseId, id)
	if err != nil {
		return nil, err
	}
	count, err := utils.ResourceCountWhere[Transaction](ctx, baseId, "category_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.Conflict("category is used by transactions; deactivate it instead")
	}
	if err := config.GetDB().WithContext(ctx).Delete(result).Error; err != nil {
		return nil, err
	}
	if err := RemoveRedisBoth(*result); err != nil {
		return nil, err
	}
	return result, nil
}

func GetCategory(ctx context.Context, id int) (*Category, error) {
	return GetResource[Category](ctx, id)
}

func GetCategories(ctx context.Context, name *string, categoryType *CategoryType, isActive *bool) ([]*Category, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}
	dbCtx := config.GetDB().WithContext(ctx).Where("base_id = ?", baseId)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	if categoryType != nil {
		dbCtx = dbCtx.Where("type = ?", *categoryType)
	}
	if isActive != nil {
		dbCtx = dbCtx.Where("is_active = ?", *isActive)
	}
	var results []*Category
	if err := dbCtx.Order("type").Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func ToggleActiveCategory(ctx context.Context, id int, isActive bool) (*Category, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}
	return ToggleActiveModel[Category](ctx, baseId, id, isActive, ReferenceTypeCategory)
}

func SetCategoryIcon(ctx context.Context, id int, iconUrl string) (*Category, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}
	category, err := utils.FetchModel[Category](ctx, baseId, id)
	if err != nil {
		return nil, err
	}
	if err := config.GetDB().WithContext(ctx).Model(category).Updates(map[string]interface{}{"Icon": iconUrl}).Error; err != nil {
		return nil, err
	}
	if err := RemoveRedisBoth(*category); err != nil {
		return nil, err
	}
	return category, nil
}
