package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/finance_backend/config"
	"github.com/mmdatafocus/finance_backend/utils"
	"gorm.io/gorm"
)

// ClientBase is a tenant. Every tenant-owned row carries its id as base_id.
type ClientBase struct {
	ID        string    `gorm:"primary_key;size:64" json:"id"`
	Name      string    `gorm:"index;size:100;not null" json:"name"`
	Document  string    `gorm:"size:14" json:"document"`
	Timezone  string    `gorm:"size:50" json:"timezone"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewClientBase struct {
	Name     string `json:"name" binding:"required" validate:"required,max=100"`
	Document string `json:"document" validate:"omitempty,cnpj"`
	Timezone string `json:"timezone"`
	// OwnerUid, when set, is granted owner access to the new base.
	OwnerUid string `json:"owner_uid"`
}

func (base *ClientBase) StoreRedis() error {
	return config.SetRedisObject("ClientBase:"+base.ID, base, 0)
}

func (base *ClientBase) RemoveRedis() error {
	return config.RemoveRedisKey("ClientBase:" + base.ID)
}

func (input *NewClientBase) validate(ctx context.Context, id string) error {
	input.Name = strings.TrimSpace(input.Name)
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	input.Document = utils.OnlyDigits(input.Document)
	if input.Timezone == "" {
		input.Timezone = config.DefaultTimezone()
	}
	if _, err := time.LoadLocation(input.Timezone); err != nil {
		return utils.Invalid("invalid timezone")
	}

	var count int64
	dbCtx := config.GetDB().WithContext(ctx).Model(&ClientBase{}).Where("name = ?", input.Name)
	if id != "" {
		dbCtx = dbCtx.Where("id <> ?", id)
	}
	if err := dbCtx.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return utils.Duplicate("duplicate name")
	}
	return nil
}

// CreateClientBase creates the base with its seed data in one transaction.
func CreateClientBase(ctx context.Context, input *NewClientBase) (*ClientBase, error) {
	if !utils.IsAdmin(ctx) {
		return nil, utils.ErrorForbidden
	}
	if err := input.validate(ctx, ""); err != nil {
		return nil, err
	}
	defaults, err := GetBaseDefaults()
	if err != nil {
		return nil, err
	}

	base := ClientBase{
		ID:       uuid.NewString(),
		Name:     input.Name,
		Document: input.Document,
		Timezone: input.Timezone,
		IsActive: utils.NewTrue(),
	}

	// hooks of the seeded rows need the new base in context
	baseCtx := utils.SetBaseIdInContext(ctx, base.ID)
	err = config.GetDB().WithContext(baseCtx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&base).Error; err != nil {
			return err
		}
		if err := CreateDefaultCategories(tx, base.ID, defaults); err != nil {
			return err
		}
		if err := CreateDefaultMovementTypes(tx, base.ID, defaults); err != nil {
			return err
		}
		if err := CreateDefaultPaymentMethods(tx, base.ID, defaults); err != nil {
			return err
		}
		if _, err := CreateDefaultStore(tx, base.ID, defaults); err != nil {
			return err
		}
		if input.OwnerUid != "" {
			if err := grantBaseAccess(tx, base.ID, input.OwnerUid, BaseAccessRoleOwner); err != nil {
				return err
			}
		}
		return PublishEvent(tx, base.ID, 0, time.Time{}, 0, ReferenceTypeClientBase, base, nil, PubSubMessageActionCreate)
	})
	if err != nil {
		return nil, err
	}
	return &base, nil
}

func UpdateClientBase(ctx context.Context, id string, input *NewClientBase) (*ClientBase, error) {
	if !utils.IsAdmin(ctx) {
		return nil, utils.ErrorForbidden
	}
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}
	base, err := fetchClientBase(ctx, id)
	if err != nil {
		return nil, err
	}
	err = config.GetDB().WithContext(ctx).Model(base).Updates(map[string]interface{}{
		"Name":     input.Name,
		"Document": input.Document,
		"Timezone": input.Timezone,
	}).Error
	if err != nil {
		return nil, err
	}
	if err := base.RemoveRedis(); err != nil {
		return nil, err
	}
	return base, nil
}

func ToggleActiveClientBase(ctx context.Context, id string, isActive bool) (*ClientBase, error) {
	if !utils.IsAdmin(ctx) {
		return nil, utils.ErrorForbidden
	}
	base, err := fetchClientBase(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := config.GetDB().WithContext(ctx).Model(base).UpdateColumn("is_active", isActive).Error; err != nil {
		return nil, err
	}
	base.IsActive = &isActive
	if err := base.RemoveRedis(); err != nil {
		return nil, err
	}
	return base, nil
}

func fetchClientBase(ctx context.Context, id string) (*ClientBase, error) {
	var base ClientBase
	if err := config.GetDB().WithContext(ctx).Where("id = ?", id).First(&base).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &base, nil
}

// GetClientBase reads through the ClientBase:<id> cache.
func GetClientBase(ctx context.Context, id string) (*ClientBase, error) {
	var base ClientBase
	exists, err := config.GetRedisObject("ClientBase:"+id, &base)
	if err != nil {
		return nil, err
	}
	if exists {
		return &base, nil
	}
	result, err := fetchClientBase(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := result.StoreRedis(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetClientBases lists all bases for admins, otherwise the bases the caller can access.
func GetClientBases(ctx context.Context, name *string) ([]*ClientBase, error) {
	dbCtx := config.GetDB().WithContext(ctx)
	if !utils.IsAdmin(ctx) {
		uid, ok := utils.GetUsernameFromContext(ctx)
		if !ok || uid == "" {
			return nil, utils.ErrorUnauthorized
		}
		ids, err := accessibleBaseIds(ctx, uid)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return []*ClientBase{}, nil
		}
		dbCtx = dbCtx.Where("id IN ?", ids)
	}
	if name != nil && *name != "" {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	var results []*ClientBase
	if err := dbCtx.Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// Location returns the base's timezone, falling back to the configured default.
func (base *ClientBase) Location() *time.Location {
	tz := base.Timezone
	if tz == "" {
		tz = config.DefaultTimezone()
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}
