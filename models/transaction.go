package models

import (
	"context"
	"strings"
	"time"

	"github.com/mmdatafocus/finance_backend/config"
	"github.com/mmdatafocus/finance_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Transaction struct {
	ID                  int             `gorm:"primary_key" json:"id"`
	BaseId              string          `gorm:"size:64;index:idx_transaction_base_date,priority:1;not null" json:"base_id"`
	Description         string          `gorm:"size:255;not null" json:"description"`
	Amount              decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	Discount            decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"discount"`
	CategoryId          int             `gorm:"index;not null" json:"category_id"`
	Date                time.Time       `gorm:"index:idx_transaction_base_date,priority:2;not null" json:"date"`
	Type                TransactionType `gorm:"size:10;not null" json:"type"`
	StoreId             *int            `gorm:"index" json:"store_id"`
	ClienteFornecedorId *int            `gorm:"index" json:"cliente_fornecedor_id"`
	PaymentMethodId     *int            `gorm:"index" json:"payment_method_id"`
	Documents           []*Document     `gorm:"-" json:"documents,omitempty"`
	CreatedAt           time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewTransaction struct {
	Description         string          `json:"description" binding:"required"`
	Amount              utils.Money     `json:"amount" binding:"required"`
	Discount            utils.Money     `json:"discount"`
	CategoryId          int             `json:"category_id" binding:"required"`
	Date                MyDateString    `json:"date" binding:"required"`
	Type                TransactionType `json:"type" binding:"required"`
	StoreId             *int            `json:"store_id"`
	ClienteFornecedorId *int            `json:"cliente_fornecedor_id"`
	PaymentMethodId     *int            `json:"payment_method_id"`
}

func (t Transaction) GetId() int {
	return t.ID
}

func (t Transaction) GetCursor() string {
	return t.Date.UTC().Format(time.RFC3339Nano)
}

func (t Transaction) storeId() int {
	if t.StoreId == nil {
		return 0
	}
	return *t.StoreId
}

// NetAmount is amount minus discount.
func (t Transaction) NetAmount() decimal.Decimal {
	return t.Amount.Sub(t.Discount)
}

// validate input for both create & update. (id = 0 for create)
func (input *NewTransaction) validate(ctx context.Context, baseId string, id int) error {
	input.Description = strings.TrimSpace(input.Description)
	if input.Description == "" {
		return utils.Invalid("description is required")
	}
	if !input.Amount.IsPositive() {
		return utils.Invalid("amount must be greater than zero")
	}
	if input.Discount.IsNegative() {
		return utils.Invalid("discount cannot be negative")
	}
	if input.Discount.GreaterThan(input.Amount.Decimal) {
		return utils.Invalid("discount cannot exceed amount")
	}
	if input.Date.IsZero() {
		return utils.Invalid("date is required")
	}
	if !input.Type.IsValid() {
		return utils.Invalid("invalid transaction type")
	}

	category, err := utils.FetchModel[Category](ctx, baseId, input.CategoryId)
	if err != nil {
		return utils.Invalid("category not found")
	}
	if category.Type != input.Type {
		return utils.Invalid("transaction type must match the category type")
	}
	if input.StoreId != nil && *input.StoreId > 0 {
		if err := utils.ValidateResourceId[Store](ctx, baseId, *input.StoreId); err != nil {
			return utils.Invalid("store not found")
		}
	} else {
		input.StoreId = nil
	}
	if input.ClienteFornecedorId != nil && *input.ClienteFornecedorId > 0 {
		if err := utils.ValidateResourceId[ClienteFornecedor](ctx, baseId, *input.ClienteFornecedorId); err != nil {
			return utils.Invalid("cliente/fornecedor not found")
		}
	} else {
		input.ClienteFornecedorId = nil
	}
	if input.PaymentMethodId != nil && *input.PaymentMethodId > 0 {
		if err := utils.ValidateResourceId[PaymentMethod](ctx, baseId, *input.PaymentMethodId); err != nil {
			return utils.Invalid("payment method not found")
		}
	} else {
		input.PaymentMethodId = nil
	}
	return nil
}

func CreateTransaction(ctx context.Context, input *NewTransaction) (*Transaction, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}
	if err := input.validate(ctx, baseId, 0); err != nil {
		return nil, err
	}

	transaction := Transaction{
		BaseId:              baseId,
		Description:         input.Description,
		Amount:              input.Amount.Decimal,
		Discount:            input.Discount.Decimal,
		CategoryId:          input.CategoryId,
		Date:                input.Date.Time(),
		Type:                input.Type,
		StoreId:             input.StoreId,
		ClienteFornecedorId: input.ClienteFornecedorId,
		PaymentMethodId:     input.PaymentMethodId,
	}

	db := config.GetDB()
	tx := db.Begin()

	if err := tx.WithContext(ctx).Create(&transaction).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	err := PublishEvent(tx.WithContext(ctx), baseId, transaction.storeId(), transaction.Date, transaction.ID, ReferenceTypeTransaction, transaction, nil, PubSubMessageActionCreate)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &transaction, nil
}

func UpdateTransaction(ctx context.Context, id int, input *NewTransaction) (*Transaction, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}

	beforeUpdate, err := utils.FetchModel[Transaction](ctx, baseId, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, baseId, id); err != nil {
		return nil, err
	}

	// hooks receive the old row; keep a copy for the outbox
	oldTransaction := *beforeUpdate

	db := config.GetDB()
	tx := db.Begin()

	err = tx.WithContext(ctx).Model(beforeUpdate).Updates(map[string]interface{}{
		"Description":         input.Description,
		"Amount":              input.Amount.Decimal,
		"Discount":            input.Discount.Decimal,
		"CategoryId":          input.CategoryId,
		"Date":                input.Date.Time(),
		"Type":                input.Type,
		"StoreId":             input.StoreId,
		"ClienteFornecedorId": input.ClienteFornecedorId,
		"PaymentMethodId":     input.PaymentMethodId,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	var transaction Transaction
	if err := tx.WithContext(ctx).First(&transaction, id).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	err = PublishEvent(tx.WithContext(ctx), baseId, transaction.storeId(), transaction.Date, transaction.ID, ReferenceTypeTransaction, transaction, oldTransaction, PubSubMessageActionUpdate)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &transaction, nil
}

func DeleteTransaction(ctx context.Context, id int) (*Transaction, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}
	result, err := utils.FetchModel[Transaction](ctx, baseId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Delete(result).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := deleteDocuments(tx.WithContext(ctx), baseId, ReferenceTypeTransaction, id); err != nil {
		tx.Rollback()
		return nil, err
	}
	err = PublishEvent(tx.WithContext(ctx), baseId, result.storeId(), result.Date, result.ID, ReferenceTypeTransaction, nil, result, PubSubMessageActionDelete)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return result, nil
}

// deleteTransactionsByDateStore removes every transaction of (store, date) inside tx,
// writing one delete event per row. Returns the number of rows removed.
func deleteTransactionsByDateStore(tx *gorm.DB, baseId string, storeId int, date time.Time) (int, error) {
	var rows []*Transaction
	if err := tx.Where("base_id = ? AND store_id = ? AND date = ?", baseId, storeId, date).Find(&rows).Error; err != nil {
		return 0, err
	}
	for _, row := range rows {
		if err := tx.Delete(row).Error; err != nil {
			return 0, err
		}
		if err := deleteDocuments(tx, baseId, ReferenceTypeTransaction, row.ID); err != nil {
			return 0, err
		}
		if err := PublishEvent(tx, baseId, storeId, date, row.ID, ReferenceTypeTransaction, nil, row, PubSubMessageActionDelete); err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

// BulkDeleteTransactions deletes all transactions of a store on one date.
func BulkDeleteTransactions(ctx context.Context, date MyDateString, storeId int) (int, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return 0, utils.ErrorBaseRequired
	}
	if date.IsZero() {
		return 0, utils.Invalid("date is required")
	}
	if err := utils.ValidateResourceId[Store](ctx, baseId, storeId); err != nil {
		return 0, utils.Invalid("store not found")
	}

	var count int
	err := config.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		count, err = deleteTransactionsByDateStore(tx, baseId, storeId, date.Time())
		return err
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func GetTransaction(ctx context.Context, id int) (*Transaction, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}
	transaction, err := utils.FetchModel[Transaction](ctx, baseId, id)
	if err != nil {
		return nil, err
	}
	documents, err := GetDocuments(ctx, ReferenceTypeTransaction, id)
	if err != nil {
		return nil, err
	}
	transaction.Documents = documents
	return transaction, nil
}

// TransactionFilter narrows listings and summaries. Zero values are ignored.
type TransactionFilter struct {
	StartDate           *MyDateString    `form:"start_date" json:"start_date"`
	EndDate             *MyDateString    `form:"end_date" json:"end_date"`
	Type                *TransactionType `form:"type" json:"type"`
	CategoryId          *int             `form:"category_id" json:"category_id"`
	StoreId             *int             `form:"store_id" json:"store_id"`
	PaymentMethodId     *int             `form:"payment_method_id" json:"payment_method_id"`
	ClienteFornecedorId *int             `form:"cliente_fornecedor_id" json:"cliente_fornecedor_id"`
	Search              *string          `form:"search" json:"search"`
}

// Apply adds the filter's conditions to dbCtx.
func (f TransactionFilter) Apply(dbCtx *gorm.DB) *gorm.DB {
	if f.StartDate != nil && !f.StartDate.IsZero() {
		dbCtx = dbCtx.Where("date >= ?", f.StartDate.Time())
	}
	if f.EndDate != nil && !f.EndDate.IsZero() {
		dbCtx = dbCtx.Where("date <= ?", f.EndDate.Time())
	}
	if f.Type != nil && *f.Type != "" {
		dbCtx = dbCtx.Where("type = ?", *f.Type)
	}
	if f.CategoryId != nil && *f.CategoryId > 0 {
		dbCtx = dbCtx.Where("category_id = ?", *f.CategoryId)
	}
	if f.StoreId != nil && *f.StoreId > 0 {
		dbCtx = dbCtx.Where("store_id = ?", *f.StoreId)
	}
	if f.PaymentMethodId != nil && *f.PaymentMethodId > 0 {
		dbCtx = dbCtx.Where("payment_method_id = ?", *f.PaymentMethodId)
	}
	if f.ClienteFornecedorId != nil && *f.ClienteFornecedorId > 0 {
		dbCtx = dbCtx.Where("cliente_fornecedor_id = ?", *f.ClienteFornecedorId)
	}
	if f.Search != nil && strings.TrimSpace(*f.Search) != "" {
		dbCtx = dbCtx.Where("description LIKE ?", "%"+strings.TrimSpace(*f.Search)+"%")
	}
	return dbCtx
}

type TransactionsConnection struct {
	Edges    []Edge[Transaction] `json:"edges"`
	PageInfo *PageInfo           `json:"pageInfo"`
}

// PaginateTransactions pages by (date desc, id desc).
func PaginateTransactions(ctx context.Context, limit int, after *string, filter TransactionFilter) (*TransactionsConnection, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}
	dbCtx := filter.Apply(config.GetDB().WithContext(ctx).Where("base_id = ?", baseId))
	edges, pageInfo, err := FetchPageCompositeCursor[Transaction](dbCtx, limit, after, "date", "<")
	if err != nil {
		return nil, err
	}
	return &TransactionsConnection{Edges: edges, PageInfo: pageInfo}, nil
}

// ListTransactions returns every matching transaction ordered by date, id.
func ListTransactions(ctx context.Context, filter TransactionFilter) ([]*Transaction, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}
	var results []*Transaction
	err := filter.Apply(config.GetDB().WithContext(ctx).Where("base_id = ?", baseId)).
		Order("date, id").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
