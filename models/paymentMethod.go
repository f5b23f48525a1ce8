package models

import (
	"context"
	"strings"
	"time"

	"github.com/mmdatafocus/finance_backend/config"
	"github.com/mmdatafocus/finance_backend/utils"
)

type PaymentMethod struct {
	ID        int       `gorm:"primary_key" json:"id"`
	BaseId    string    `gorm:"size:64;index;not null" json:"base_id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewPaymentMethod struct {
	Name string `json:"name" binding:"required"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewPaymentMethod) validate(ctx context.Context, baseId string, id int) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return utils.Invalid("name is required")
	}
	if err := utils.ValidateUnique[PaymentMethod](ctx, baseId, "name", input.Name, id); err != nil {
		return err
	}
	return nil
}

func CreatePaymentMethod(ctx context.Context, input *NewPaymentMethod) (*PaymentMethod, error) {
	db := config.GetDB()
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}

	if err := input.validate(ctx, baseId, 0); err != nil {
		return nil, err
	}

	paymentMethod := PaymentMethod{
		Name:     input.Name,
		BaseId:   baseId,
		IsActive: utils.NewTrue(),
	}

	err := db.WithContext(ctx).Create(&paymentMethod).Error
	if err != nil {
		return nil, err
	}
	if err := paymentMethod.RemoveAllRedis(); err != nil {
		return nil, err
	}

	return &paymentMethod, nil
}

func UpdatePaymentMethod(ctx context.Context, id int, input *NewPaymentMethod) (*PaymentMethod, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}
	if err := input.validate(ctx, baseId, id); err != nil {
		return nil, err
	}

	paymentMethod, err := utils.FetchModel[PaymentMethod](ctx, baseId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(paymentMethod).Updates(map[string]interface{}{
		"Name": input.Name,
	}).Error
	if err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(*paymentMethod); err != nil {
		return nil, err
	}
	return paymentMethod, nil
}

func DeletePaymentMethod(ctx context.Context, id int) (*PaymentMethod, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}

	result, err := utils.FetchModel[PaymentMethod](ctx, baseId, id)
	if err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[Transaction](ctx, baseId, "payment_method_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.Conflict("payment method is used by transactions")
	}
	count, err = utils.ResourceCountWhere[MovementItem](ctx, "", "payment_method_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.Conflict("payment method is used by closings")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(result).Error; err != nil {
		return nil, err
	}
	if err := RemoveRedisBoth(*result); err != nil {
		return nil, err
	}
	return result, nil
}

func GetPaymentMethod(ctx context.Context, id int) (*PaymentMethod, error) {
	return GetResource[PaymentMethod](ctx, id)
}

func GetPaymentMethods(ctx context.Context, name *string) ([]*PaymentMethod, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("base_id = ?", baseId)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	var results []*PaymentMethod
	if err := dbCtx.Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func ToggleActivePaymentMethod(ctx context.Context, id int, isActive bool) (*PaymentMethod, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}
	return ToggleActiveModel[PaymentMethod](ctx, baseId, id, isActive, ReferenceTypePaymentMethod)
}
