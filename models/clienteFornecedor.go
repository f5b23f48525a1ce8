package models

import (
	"context"
	"strings"
	"time"

	"github.com/mmdatafocus/finance_backend/config"
	"github.com/mmdatafocus/finance_backend/utils"
)

// ClienteFornecedor is a counterparty: a client, a supplier, or both.
type ClienteFornecedor struct {
	ID           int       `gorm:"primary_key" json:"id"`
	BaseId       string    `gorm:"size:64;index;not null" json:"base_id"`
	Name         string    `gorm:"size:150;not null" json:"name"`
	TradeName    string    `gorm:"size:150" json:"trade_name"`
	Document     string    `gorm:"size:14;index" json:"document"`
	DocumentType string    `gorm:"size:4" json:"document_type"`
	Email        string    `gorm:"size:100" json:"email"`
	Phone        string    `gorm:"size:20" json:"phone"`
	Mobile       string    `gorm:"size:20" json:"mobile"`
	Address      Address   `gorm:"embedded" json:"address"`
	Notes        string    `gorm:"type:text" json:"notes"`
	IsClient     *bool     `gorm:"not null;default:false" json:"is_client"`
	IsSupplier   *bool     `gorm:"not null;default:false" json:"is_supplier"`
	IsActive     *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewClienteFornecedor struct {
	Name       string  `json:"name" binding:"required" validate:"required,max=150"`
	TradeName  string  `json:"trade_name" validate:"max=150"`
	Document   string  `json:"document" validate:"omitempty,cpfcnpj"`
	Email      string  `json:"email" validate:"omitempty,email"`
	Phone      string  `json:"phone" validate:"omitempty,brphone"`
	Mobile     string  `json:"mobile" validate:"omitempty,brphone"`
	Address    Address `json:"address"`
	Notes      string  `json:"notes"`
	IsClient   bool    `json:"is_client"`
	IsSupplier bool    `json:"is_supplier"`
}

func (input *NewClienteFornecedor) validate(ctx context.Context, baseId string, id int) error {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	if !input.IsClient && !input.IsSupplier {
		return utils.Invalid("must be a client, a supplier, or both")
	}

	address, err := input.Address.normalize()
	if err != nil {
		return err
	}
	input.Address = address

	// phones are stored as E.164
	if input.Phone != "" {
		if input.Phone, err = utils.FormatPhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return err
		}
	}
	if input.Mobile != "" {
		if input.Mobile, err = utils.FormatPhoneNumber(input.Mobile, utils.CountryCode); err != nil {
			return err
		}
	}

	input.Document = utils.OnlyDigits(input.Document)
	if input.Document != "" {
		if err := utils.ValidateUnique[ClienteFornecedor](ctx, baseId, "document", input.Document, id); err != nil {
			return err
		}
	}
	return nil
}

func (input *NewClienteFornecedor) fields() map[string]interface{} {
	return input.Address.columns(map[string]interface{}{
		"Name":         input.Name,
		"TradeName":    input.TradeName,
		"Document":     input.Document,
		"DocumentType": utils.DocumentType(input.Document),
		"Email":        input.Email,
		"Phone":        input.Phone,
		"Mobile":       input.Mobile,
		"Notes":        input.Notes,
		"IsClient":     input.IsClient,
		"IsSupplier":   input.IsSupplier,
	})
}

func CreateClienteFornecedor(ctx context.Context, input *NewClienteFornecedor) (*ClienteFornecedor, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}
	if err := input.validate(ctx, baseId, 0); err != nil {
		return nil, err
	}

	cf := ClienteFornecedor{
		BaseId:       baseId,
		Name:         input.Name,
		TradeName:    input.TradeName,
		Document:     input.Document,
		DocumentType: utils.DocumentType(input.Document),
		Email:        input.Email,
		Phone:        input.Phone,
		Mobile:       input.Mobile,
		Address:      input.Address,
		Notes:        input.Notes,
		IsClient:     &input.IsClient,
		IsSupplier:   &input.IsSupplier,
		IsActive:     utils.NewTrue(),
	}
	if err := config.GetDB().WithContext(ctx).Create(&cf).Error; err != nil {
		return nil, err
	}
	if err := cf.RemoveAllRedis(); err != nil {
		return nil, err
	}
	return &cf, nil
}

func UpdateClienteFornecedor(ctx context.Context, id int, input *NewClienteFornecedor) (*ClienteFornecedor, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}
	if err := input.validate(ctx, baseId, id); err != nil {
		return nil, err
	}
	cf, err := utils.FetchModel[ClienteFornecedor](ctx, baseId, id)
	if err != nil {
		return nil, err
	}
	if err := config.GetDB().WithContext(ctx).Model(cf).Updates(input.fields()).Error; err != nil {
		return nil, err
	}
	if err := RemoveRedisBoth(*cf); err != nil {
		return nil, err
	}
	return cf, nil
}

// DeleteClienteFornecedor refuses to delete a counterparty referenced by transactions.
func DeleteClienteFornecedor(ctx context.Context, id int) (*ClienteFornecedor, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}
	result, err := utils.FetchModel[ClienteFornecedor](ctx, baseId, id)
	if err != nil {
		return nil, err
	}
	count, err := utils.ResourceCountWhere[Transaction](ctx, baseId, "cliente_fornecedor_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.Conflict("cliente/fornecedor is used by transactions; deactivate it instead")
	}
	if err := config.GetDB().WithContext(ctx).Delete(result).Error; err != nil {
		return nil, err
	}
	if err := RemoveRedisBoth(*result); err != nil {
		return nil, err
	}
	return result, nil
}

func GetClienteFornecedor(ctx context.Context, id int) (*ClienteFornecedor, error) {
	return GetResource[ClienteFornecedor](ctx, id)
}

// ClienteFornecedorFilter narrows GetClientesFornecedores. Nil fields are ignored.
type ClienteFornecedorFilter struct {
	Search     *string `form:"search"`
	IsClient   *bool   `form:"is_client"`
	IsSupplier *bool   `form:"is_supplier"`
	IsActive   *bool   `form:"is_active"`
}

func GetClientesFornecedores(ctx context.Context, filter ClienteFornecedorFilter) ([]*ClienteFornecedor, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}
	dbCtx := config.GetDB().WithContext(ctx).Where("base_id = ?", baseId)
	if filter.Search != nil && len(*filter.Search) > 0 {
		like := "%" + *filter.Search + "%"
		digits := utils.OnlyDigits(*filter.Search)
		if digits != "" {
			dbCtx = dbCtx.Where("name LIKE ? OR trade_name LIKE ? OR document LIKE ?", like, like, "%"+digits+"%")
		} else {
			dbCtx = dbCtx.Where("name LIKE ? OR trade_name LIKE ?", like, like)
		}
	}
	if filter.IsClient != nil {
		dbCtx = dbCtx.Where("is_client = ?", *filter.IsClient)
	}
	if filter.IsSupplier != nil {
		dbCtx = dbCtx.Where("is_supplier = ?", *filter.IsSupplier)
	}
	if filter.IsActive != nil {
		dbCtx = dbCtx.Where("is_active = ?", *filter.IsActive)
	}
	var results []*ClienteFornecedor
	if err := dbCtx.Order("name").Limit(config.SearchLimit * 50).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func ToggleActiveClienteFornecedor(ctx context.Context, id int, isActive bool) (*ClienteFornecedor, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}
	return ToggleActiveModel[ClienteFornecedor](ctx, baseId, id, isActive, ReferenceTypeClienteFornecedor)
}
