package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mmdatafocus/finance_backend/config"
	"github.com/mmdatafocus/finance_backend/utils"
	"gorm.io/gorm"
)

type Store struct {
	ID        int       `gorm:"primary_key" json:"id"`
	BaseId    string    `gorm:"size:64;index;not null" json:"base_id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Nickname  string    `gorm:"size:100" json:"nickname"`
	Code      string    `gorm:"size:20" json:"code"`
	Cnpj      string    `gorm:"size:14" json:"cnpj"`
	Icon      string    `gorm:"size:255" json:"icon"`
	Address   Address   `gorm:"embedded" json:"address"`
	IsDefault *bool     `gorm:"not null;default:false" json:"is_default"`
	IsMatriz  *bool     `gorm:"not null;default:false" json:"is_matriz"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewStore struct {
	Name      string  `json:"name" binding:"required" validate:"required,max=100"`
	Nickname  string  `json:"nickname" validate:"max=100"`
	Code      string  `json:"code" validate:"max=20"`
	Cnpj      string  `json:"cnpj" validate:"omitempty,cnpj"`
	Icon      string  `json:"icon" validate:"max=255"`
	Address   Address `json:"address"`
	IsDefault bool    `json:"is_default"`
	IsMatriz  bool    `json:"is_matriz"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewStore) validate(ctx context.Context, baseId string, id int) error {
	input.Name = strings.TrimSpace(input.Name)
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	input.Cnpj = utils.OnlyDigits(input.Cnpj)
	address, err := input.Address.normalize()
	if err != nil {
		return err
	}
	input.Address = address

	if err := utils.ValidateUnique[Store](ctx, baseId, "name", input.Name, id); err != nil {
		return err
	}
	if input.Code != "" {
		if err := utils.ValidateUnique[Store](ctx, baseId, "code", input.Code, id); err != nil {
			return err
		}
	}
	return nil
}

// clearFlags resets is_default / is_matriz on the other stores of the base.
// Each store is updated through its model so history and the outbox event are
// written; the returned stores must have their caches evicted after commit.
func (input *NewStore) clearFlags(tx *gorm.DB, baseId string, exceptId int) ([]Store, error) {
	if !input.IsDefault && !input.IsMatriz {
		return nil, nil
	}
	q := tx.Where("base_id = ? AND id <> ?", baseId, exceptId)
	switch {
	case input.IsDefault && input.IsMatriz:
		q = q.Where("is_default = ? OR is_matriz = ?", true, true)
	case input.IsDefault:
		q = q.Where("is_default = ?", true)
	default:
		q = q.Where("is_matriz = ?", true)
	}
	var flagged []Store
	if err := q.Find(&flagged).Error; err != nil {
		return nil, err
	}
	for i := range flagged {
		fields := map[string]interface{}{}
		if input.IsDefault {
			fields["is_default"] = false
		}
		if input.IsMatriz {
			fields["is_matriz"] = false
		}
		if err := tx.Model(&flagged[i]).Updates(fields).Error; err != nil {
			return nil, err
		}
	}
	return flagged, nil
}

func evictStores(stores []Store) error {
	for _, s := range stores {
		if err := RemoveRedisBoth(s); err != nil {
			return err
		}
	}
	return nil
}

func CreateStore(ctx context.Context, input *NewStore) (*Store, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}
	if err := input.validate(ctx, baseId, 0); err != nil {
		return nil, err
	}

	store := Store{
		BaseId:    baseId,
		Name:      input.Name,
		Nickname:  input.Nickname,
		Code:      input.Code,
		Cnpj:      input.Cnpj,
		Icon:      input.Icon,
		Address:   input.Address,
		IsDefault: &input.IsDefault,
		IsMatriz:  &input.IsMatriz,
		IsActive:  utils.NewTrue(),
	}

	var cleared []Store
	err := config.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if cleared, err = input.clearFlags(tx, baseId, 0); err != nil {
			return err
		}
		return tx.Create(&store).Error
	})
	if err != nil {
		return nil, err
	}
	if err := evictStores(cleared); err != nil {
		return nil, err
	}
	if err := store.RemoveAllRedis(); err != nil {
		return nil, err
	}
	return &store, nil
}

func UpdateStore(ctx context.Context, id int, input *NewStore) (*Store, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}
	if err := input.validate(ctx, baseId, id); err != nil {
		return nil, err
	}

	store, err := utils.FetchModel[Store](ctx, baseId, id)
	if err != nil {
		return nil, err
	}

	var cleared []Store
	err = config.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if cleared, err = input.clearFlags(tx, baseId, id); err != nil {
			return err
		}
		return tx.Model(store).Updates(input.Address.columns(map[string]interface{}{
			"Name":      input.Name,
			"Nickname":  input.Nickname,
			"Code":      input.Code,
			"Cnpj":      input.Cnpj,
			"Icon":      input.Icon,
			"IsDefault": input.IsDefault,
			"IsMatriz":  input.IsMatriz,
		})).Error
	})
	if err != nil {
		return nil, err
	}
	if err := evictStores(cleared); err != nil {
		return nil, err
	}
	if err := RemoveRedisBoth(*store); err != nil {
		return nil, err
	}
	return store, nil
}

// DeleteStore refuses to delete a store that still has transactions or closings.
func DeleteStore(ctx context.Context, id int) (*Store, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}

	result, err := utils.FetchModel[Store](ctx, baseId, id)
	if err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[Transaction](ctx, baseId, "store_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.Conflict("store has transactions; deactivate it instead")
	}
	count, err = utils.ResourceCountWhere[StoreClosing](ctx, baseId, "store_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.Conflict("store has closings; deactivate it instead")
	}

	if err := config.GetDB().WithContext(ctx).Delete(result).Error; err != nil {
		return nil, err
	}
	if err := RemoveRedisBoth(*result); err != nil {
		return nil, err
	}
	return result, nil
}

func GetStore(ctx context.Context, id int) (*Store, error) {
	return GetResource[Store](ctx, id)
}

func GetStores(ctx context.Context, name *string, isActive *bool) ([]*Store, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}

	dbCtx := config.GetDB().WithContext(ctx).Where("base_id = ?", baseId)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ? OR nickname LIKE ?", "%"+*name+"%", "%"+*name+"%")
	}
	if isActive != nil {
		dbCtx = dbCtx.Where("is_active = ?", *isActive)
	}
	var results []*Store
	if err := dbCtx.Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetDefaultStore returns the base's default store, or nil when none is flagged.
func GetDefaultStore(ctx context.Context) (*Store, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}
	var store Store
	err := config.GetDB().WithContext(ctx).
		Where("base_id = ? AND is_default = ?", baseId, true).
		First(&store).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &store, nil
}

func ToggleActiveStore(ctx context.Context, id int, isActive bool) (*Store, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}
	return ToggleActiveModel[Store](ctx, baseId, id, isActive, ReferenceTypeStore)
}

// SetStoreIcon stores the uploaded icon URL.
func SetStoreIcon(ctx context.Context, id int, iconUrl string) (*Store, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}
	store, err := utils.FetchModel[Store](ctx, baseId, id)
	if err != nil {
		return nil, err
	}
	if err := config.GetDB().WithContext(ctx).Model(store).Updates(map[string]interface{}{"Icon": iconUrl}).Error; err != nil {
		return nil, err
	}
	if err := RemoveRedisBoth(*store); err != nil {
		return nil, err
	}
	return store, nil
}
