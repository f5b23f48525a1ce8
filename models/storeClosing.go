package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mmdatafocus/finance_backend/config"
	"github.com/mmdatafocus/finance_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const closingLockTTL = 30 * time.Second

// StoreClosing is the end-of-day cash reconciliation of one store.
// Totals are derived from Items; NetResult is always FinalBalance - InitialBalance.
type StoreClosing struct {
	ID             int             `gorm:"primary_key" json:"id"`
	BaseId         string          `gorm:"size:64;not null;uniqueIndex:uniq_closing_store_date,priority:1" json:"base_id"`
	StoreId        int             `gorm:"not null;uniqueIndex:uniq_closing_store_date,priority:2" json:"store_id"`
	Date           time.Time       `gorm:"not null;uniqueIndex:uniq_closing_store_date,priority:3" json:"date"`
	InitialBalance decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"initial_balance"`
	FinalBalance   decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"final_balance"`
	TotalEntradas  decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"total_entradas"`
	TotalSaidas    decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"total_saidas"`
	TotalOutros    decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"total_outros"`
	NetResult      decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"net_result"`
	Notes          string          `gorm:"type:text" json:"notes"`
	Items          []*MovementItem `gorm:"foreignKey:ClosingId" json:"items"`
	Documents      []*Document     `gorm:"-" json:"documents,omitempty"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type MovementItem struct {
	ID              int             `gorm:"primary_key" json:"id"`
	ClosingId       int             `gorm:"index;not null" json:"closing_id"`
	MovementTypeId  int             `gorm:"index;not null" json:"movement_type_id"`
	PaymentMethodId *int            `gorm:"index" json:"payment_method_id"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	Discount        decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"discount"`
	Description     string          `gorm:"size:255" json:"description"`
}

type NewMovementItem struct {
	MovementTypeId  int         `json:"movement_type_id" binding:"required"`
	PaymentMethodId *int        `json:"payment_method_id"`
	Amount          utils.Money `json:"amount"`
	Discount        utils.Money `json:"discount"`
	Description     string      `json:"description"`
}

// NewStoreClosing is the save payload. Client-sent totals are not accepted.
type NewStoreClosing struct {
	StoreId             int                `json:"store_id" binding:"required"`
	Date                MyDateString       `json:"date" binding:"required"`
	InitialBalance      utils.Money        `json:"initial_balance"`
	FinalBalance        utils.Money        `json:"final_balance"`
	Notes               string             `json:"notes"`
	Items               []*NewMovementItem `json:"items"`
	ReplaceTransactions *bool              `json:"replace_transactions"`
}

func (c StoreClosing) GetId() int {
	return c.ID
}

func (c StoreClosing) GetCursor() string {
	return c.Date.UTC().Format(time.RFC3339Nano)
}

func (c StoreClosing) Totals() ClosingTotals {
	return ClosingTotals{
		TotalEntradas: c.TotalEntradas,
		TotalSaidas:   c.TotalSaidas,
		TotalOutros:   c.TotalOutros,
	}
}

func (input *NewStoreClosing) lines() []MovementLine {
	lines := make([]MovementLine, 0, len(input.Items))
	for _, item := range input.Items {
		lines = append(lines, MovementLine{
			MovementTypeId: item.MovementTypeId,
			Amount:         item.Amount.Decimal,
			Discount:       item.Discount.Decimal,
		})
	}
	return lines
}

func (input *NewStoreClosing) replaceTransactions() bool {
	if input.ReplaceTransactions != nil {
		return *input.ReplaceTransactions
	}
	return config.ClosingReplacesTransactionsByDefault()
}

// validate checks item shape and that every reference belongs to baseId.
func (input *NewStoreClosing) validate(ctx context.Context, baseId string) error {
	if input.Date.IsZero() {
		return utils.Invalid("date is required")
	}
	if err := utils.ValidateResourceId[Store](ctx, baseId, input.StoreId); err != nil {
		return utils.Invalid("store not found")
	}

	var movementTypeIds, paymentMethodIds []int
	for i, item := range input.Items {
		if item == nil {
			return utils.Invalidf("item %d is empty", i+1)
		}
		if item.Amount.IsNegative() {
			return utils.Invalidf("item %d: amount cannot be negative", i+1)
		}
		if item.Discount.IsNegative() {
			return utils.Invalidf("item %d: discount cannot be negative", i+1)
		}
		if item.Discount.GreaterThan(item.Amount.Decimal) {
			return utils.Invalidf("item %d: discount cannot exceed amount", i+1)
		}
		item.Description = strings.TrimSpace(item.Description)
		movementTypeIds = append(movementTypeIds, item.MovementTypeId)
		if item.PaymentMethodId != nil && *item.PaymentMethodId > 0 {
			paymentMethodIds = append(paymentMethodIds, *item.PaymentMethodId)
		} else {
			item.PaymentMethodId = nil
		}
	}
	if err := utils.ValidateResourcesId[MovementType](ctx, baseId, movementTypeIds); err != nil {
		return utils.Invalid("movement type not found")
	}
	if err := utils.ValidateResourcesId[PaymentMethod](ctx, baseId, paymentMethodIds); err != nil {
		return utils.Invalid("payment method not found")
	}
	return nil
}

// movementCategories maps the base's movement type ids to their categories.
func movementCategories(ctx context.Context) (map[int]MovementCategory, error) {
	types, err := ListAllMovementType(ctx)
	if err != nil {
		return nil, err
	}
	categories := make(map[int]MovementCategory, len(types))
	for _, t := range types {
		categories[t.ID] = t.Category
	}
	return categories, nil
}

// CalculateClosingPreview runs the totals over a draft without persisting it.
func CalculateClosingPreview(ctx context.Context, input *NewStoreClosing) (*StoreClosing, error) {
	if _, ok := utils.GetBaseIdFromContext(ctx); !ok {
		return nil, utils.ErrorBaseRequired
	}
	categories, err := movementCategories(ctx)
	if err != nil {
		return nil, err
	}
	totals := CalculateTotals(input.lines(), categories)
	return &StoreClosing{
		StoreId:        input.StoreId,
		Date:           input.Date.Time(),
		InitialBalance: input.InitialBalance.Decimal,
		FinalBalance:   input.FinalBalance.Decimal,
		TotalEntradas:  totals.TotalEntradas,
		TotalSaidas:    totals.TotalSaidas,
		TotalOutros:    totals.TotalOutros,
		NetResult:      NetResult(input.InitialBalance.Decimal, input.FinalBalance.Decimal),
		Notes:          input.Notes,
	}, nil
}

// SaveStoreClosing creates the closing for (store, date) or replaces the existing one.
// Totals are recomputed here; items are replaced wholesale.
func SaveStoreClosing(ctx context.Context, input *NewStoreClosing) (*StoreClosing, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}
	if err := input.validate(ctx, baseId); err != nil {
		return nil, err
	}

	lockKey := fmt.Sprintf("%s:%d:%s", baseId, input.StoreId, input.Date.String())
	lock, err := utils.ObtainLock(ctx, "closing", lockKey, closingLockTTL, "StoreClosing", "SaveStoreClosing")
	if err != nil {
		return nil, err
	}
	defer utils.ReleaseLock(ctx, lock)

	categories, err := movementCategories(ctx)
	if err != nil {
		return nil, err
	}
	totals := CalculateTotals(input.lines(), categories)
	date := input.Date.Time()

	items := make([]*MovementItem, 0, len(input.Items))
	for _, item := range input.Items {
		items = append(items, &MovementItem{
			MovementTypeId:  item.MovementTypeId,
			PaymentMethodId: item.PaymentMethodId,
			Amount:          item.Amount.Decimal,
			Discount:        item.Discount.Decimal,
			Description:     item.Description,
		})
	}

	var closing StoreClosing
	err = config.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing StoreClosing
		findErr := tx.Preload("Items").
			Where("base_id = ? AND store_id = ? AND date = ?", baseId, input.StoreId, date).
			First(&existing).Error
		if findErr != nil && !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}
		isNew := errors.Is(findErr, gorm.ErrRecordNotFound)

		closing = StoreClosing{
			ID:             existing.ID,
			BaseId:         baseId,
			StoreId:        input.StoreId,
			Date:           date,
			InitialBalance: input.InitialBalance.Decimal,
			FinalBalance:   input.FinalBalance.Decimal,
			TotalEntradas:  totals.TotalEntradas,
			TotalSaidas:    totals.TotalSaidas,
			TotalOutros:    totals.TotalOutros,
			NetResult:      NetResult(input.InitialBalance.Decimal, input.FinalBalance.Decimal),
			Notes:          input.Notes,
			CreatedAt:      existing.CreatedAt,
		}

		if isNew {
			if err := tx.Omit("Items").Create(&closing).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Model(&existing).Updates(map[string]interface{}{
				"InitialBalance": closing.InitialBalance,
				"FinalBalance":   closing.FinalBalance,
				"TotalEntradas":  closing.TotalEntradas,
				"TotalSaidas":    closing.TotalSaidas,
				"TotalOutros":    closing.TotalOutros,
				"NetResult":      closing.NetResult,
				"Notes":          closing.Notes,
			}).Error; err != nil {
				return err
			}
			if err := tx.Where("closing_id = ?", existing.ID).Delete(&MovementItem{}).Error; err != nil {
				return err
			}
		}

		for _, item := range items {
			item.ClosingId = closing.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		closing.Items = items

		if input.replaceTransactions() {
			if _, err := deleteTransactionsByDateStore(tx, baseId, input.StoreId, date); err != nil {
				return err
			}
		}

		if isNew {
			return PublishEvent(tx, baseId, closing.StoreId, closing.Date, closing.ID, ReferenceTypeStoreClosing, closing, nil, PubSubMessageActionCreate)
		}
		return PublishEvent(tx, baseId, closing.StoreId, closing.Date, closing.ID, ReferenceTypeStoreClosing, closing, existing, PubSubMessageActionUpdate)
	})
	if err != nil {
		if utils.IsDuplicateKeyErr(err) {
			return nil, utils.ErrorDuplicate
		}
		return nil, err
	}
	return &closing, nil
}

func DeleteStoreClosing(ctx context.Context, id int) (*StoreClosing, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}
	result, err := utils.FetchModel[StoreClosing](ctx, baseId, id, "Items")
	if err != nil {
		return nil, err
	}

	err = config.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("closing_id = ?", id).Delete(&MovementItem{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(result).Error; err != nil {
			return err
		}
		if err := deleteDocuments(tx, baseId, ReferenceTypeStoreClosing, id); err != nil {
			return err
		}
		return PublishEvent(tx, baseId, result.StoreId, result.Date, result.ID, ReferenceTypeStoreClosing, nil, result, PubSubMessageActionDelete)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func GetStoreClosing(ctx context.Context, id int) (*StoreClosing, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}
	closing, err := utils.FetchModel[StoreClosing](ctx, baseId, id, "Items")
	if err != nil {
		return nil, err
	}
	documents, err := GetDocuments(ctx, ReferenceTypeStoreClosing, id)
	if err != nil {
		return nil, err
	}
	closing.Documents = documents
	return closing, nil
}

// GetStoreClosingByDate returns nil when the store has no closing on date.
func GetStoreClosingByDate(ctx context.Context, storeId int, date MyDateString) (*StoreClosing, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}
	var closing StoreClosing
	err := config.GetDB().WithContext(ctx).Preload("Items").
		Where("base_id = ? AND store_id = ? AND date = ?", baseId, storeId, date.Time()).
		First(&closing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &closing, nil
}

// ListStoreClosings returns closings in [start, end] ordered by date, store.
// Items are loaded only when withItems is set.
func ListStoreClosings(ctx context.Context, start MyDateString, end MyDateString, storeId *int, withItems bool) ([]*StoreClosing, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}
	if !start.IsZero() && !end.IsZero() && end.Time().Before(start.Time()) {
		return nil, utils.Invalid("end date is before start date")
	}
	dbCtx := config.GetDB().WithContext(ctx).Where("base_id = ?", baseId)
	if !start.IsZero() {
		dbCtx = dbCtx.Where("date >= ?", start.Time())
	}
	if !end.IsZero() {
		dbCtx = dbCtx.Where("date <= ?", end.Time())
	}
	if storeId != nil && *storeId > 0 {
		dbCtx = dbCtx.Where("store_id = ?", *storeId)
	}
	if withItems {
		dbCtx = dbCtx.Preload("Items")
	}
	var results []*StoreClosing
	if err := dbCtx.Order("date, store_id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

type StoreClosingsConnection struct {
	Edges    []Edge[StoreClosing] `json:"edges"`
	PageInfo *PageInfo            `json:"pageInfo"`
}

func PaginateStoreClosings(ctx context.Context, limit int, after *string, storeId *int) (*StoreClosingsConnection, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}
	dbCtx := config.GetDB().WithContext(ctx).Where("base_id = ?", baseId)
	if storeId != nil && *storeId > 0 {
		dbCtx = dbCtx.Where("store_id = ?", *storeId)
	}
	edges, pageInfo, err := FetchPageCompositeCursor[StoreClosing](dbCtx, limit, after, "date", "<")
	if err != nil {
		return nil, err
	}
	return &StoreClosingsConnection{Edges: edges, PageInfo: pageInfo}, nil
}
