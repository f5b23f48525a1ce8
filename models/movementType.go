package models

import (
	"context"
	"strings"
	"time"

	"github.com/mmdatafocus/finance_backend/config"
	"github.com/mmdatafocus/finance_backend/utils"
)

// MovementType classifies closing items; Category decides which total an item feeds.
type MovementType struct {
	ID        int              `gorm:"primary_key" json:"id"`
	BaseId    string           `gorm:"size:64;index;not null" json:"base_id"`
	Name      string           `gorm:"size:100;not null" json:"name"`
	Category  MovementCategory `gorm:"size:10;not null" json:"category"`
	IsActive  *bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewMovementType struct {
	Name     string           `json:"name" binding:"required"`
	Category MovementCategory `json:"category" binding:"required"`
}

func (input *NewMovementType) validate(ctx context.Context, baseId string, id int) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return utils.Invalid("name is required")
	}
	if !input.Category.IsValid() {
		return utils.Invalid("invalid movement category")
	}
	return utils.ValidateUnique[MovementType](ctx, baseId, "name", input.Name, id)
}

func CreateMovementType(ctx context.Context, input *NewMovementType) (*MovementType, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}
	if err := input.validate(ctx, baseId, 0); err != nil {
		return nil, err
	}
	movementType := MovementType{
		BaseId:   baseId,
		Name:     input.Name,
		Category: input.Category,
		IsActive: utils.NewTrue(),
	}
	if err := config.GetDB().WithContext(ctx).Create(&movementType).Error; err != nil {
		return nil, err
	}
	if err := movementType.RemoveAllRedis(); err != nil {
		return nil, err
	}
	return &movementType, nil
}

// UpdateMovementType allows changing the category; saved closings keep their
// stored totals until they are saved again.
func UpdateMovementType(ctx context.Context, id int, input *NewMovementType) (*MovementType, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}
	if err := input.validate(ctx, baseId, id); err != nil {
		return nil, err
	}
	movementType, err := utils.FetchModel[MovementType](ctx, baseId, id)
	if err != nil {
		return nil, err
	}
	err = config.GetDB().WithContext(ctx).Model(movementType).Updates(map[string]interface{}{
		"Name":     input.Name,
		"Category": input.Category,
	}).Error
	if err != nil {
		return nil, err
	}
	if err := RemoveRedisBoth(*movementType); err != nil {
		return nil, err
	}
	return movementType, nil
}

func DeleteMovementType(ctx context.Context, id int) (*MovementType, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}
	result, err := utils.FetchModel[MovementType](ctx, baseId, id)
	if err != nil {
		return nil, err
	}
	count, err := utils.ResourceCountWhere[MovementItem](ctx, "", "movement_type_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.Conflict("movement type is used by closings; deactivate it instead")
	}
	if err := config.GetDB().WithContext(ctx).Delete(result).Error; err != nil {
		return nil, err
	}
	if err := RemoveRedisBoth(*result); err != nil {
		return nil, err
	}
	return result, nil
}

func GetMovementType(ctx context.Context, id int) (*MovementType, error) {
	return GetResource[MovementType](ctx, id)
}

func GetMovementTypes(ctx context.Context, name *string, category *MovementCategory) ([]*MovementType, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}
	dbCtx := config.GetDB().WithContext(ctx).Where("base_id = ?", baseId)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	if category != nil {
		dbCtx = dbCtx.Where("category = ?", *category)
	}
	var results []*MovementType
	if err := dbCtx.Order("category").Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func ToggleActiveMovementType(ctx context.Context, id int, isActive bool) (*MovementType, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}
	return ToggleActiveModel[MovementType](ctx, baseId, id, isActive, ReferenceTypeMovementType)
}
