package models

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mmdatafocus/finance_backend/config"
	"github.com/mmdatafocus/finance_backend/utils"
	"gorm.io/gorm"
)

const (
	HistoryActionCreate   = "CREATE"
	HistoryActionUpdate   = "UPDATE"
	HistoryActionDelete   = "DELETE"
	HistoryActionActive   = "*ACTIVE*"
	HistoryActionInactive = "*INACTIVE*"
)

type History struct {
	ID            int       `gorm:"primary_key" json:"id"`
	BaseId        string    `gorm:"size:64;index;not null" json:"base_id"`
	ActionType    string    `gorm:"size:10;not null" json:"action_type"`
	Before        string    `gorm:"type:text" json:"before"`
	After         string    `gorm:"type:text" json:"after"`
	Description   string    `gorm:"type:text;not null" json:"description"`
	ReferenceID   int       `gorm:"index" json:"reference_id"`
	ReferenceType string    `gorm:"size:255" json:"reference_type"`
	UserId        int       `gorm:"index;not null" json:"user_id"`
	UserName      string    `gorm:"size:100" json:"user_name"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func createHistory(tx *gorm.DB,
	actionType string,
	referenceId int,
	referenceType string,
	before interface{},
	after interface{},
	description string) error {

	ctx := tx.Statement.Context
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return utils.ErrorBaseRequired
	}
	// workers and CLI tools run without a user
	userId, _ := utils.GetUserIdFromContext(ctx)
	userName, ok := utils.GetUserNameFromContext(ctx)
	if !ok || userName == "" {
		userName = "system"
	}

	history := History{
		BaseId:        baseId,
		ActionType:    actionType,
		Description:   description,
		ReferenceID:   referenceId,
		ReferenceType: referenceType,
		UserId:        userId,
		UserName:      userName,
	}
	if before != nil {
		b, _ := json.Marshal(before)
		history.Before = string(b)
	}
	if after != nil {
		a, _ := json.Marshal(after)
		history.After = string(a)
	}

	return tx.Session(&gorm.Session{NewDB: true}).Create(&history).Error
}

func SaveHistoryCreate(tx *gorm.DB, id int, obj interface{}, description string) error {
	return createHistory(tx, HistoryActionCreate, id, tx.Statement.Table, nil, obj, description)
}

// SaveHistoryUpdate records currentValue as before and the pending updates (Statement.Dest) as after.
func SaveHistoryUpdate(tx *gorm.DB, id int, currentValue interface{}, description string) error {
	return createHistory(tx, HistoryActionUpdate, id, tx.Statement.Table, currentValue, tx.Statement.Dest, description)
}

func SaveHistoryDelete(tx *gorm.DB, id int, obj interface{}, description string) error {
	return createHistory(tx, HistoryActionDelete, id, tx.Statement.Table, obj, nil, description)
}

func (h History) GetId() int {
	return h.ID
}

func (h History) GetCursor() string {
	return h.CreatedAt.UTC().Format(time.RFC3339Nano)
}

type HistoriesConnection struct {
	Edges    []Edge[History] `json:"edges"`
	PageInfo *PageInfo       `json:"pageInfo"`
}

func GetHistories(ctx context.Context, referenceId *int, referenceType *string, userId *int) ([]*History, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}

	dbCtx := config.GetDB().WithContext(ctx).Where("base_id = ?", baseId)
	if referenceId != nil && *referenceId > 0 {
		dbCtx = dbCtx.Where("reference_id = ?", *referenceId)
	}
	if referenceType != nil && len(*referenceType) > 0 {
		dbCtx = dbCtx.Where("reference_type = ?", *referenceType)
	}
	if userId != nil && *userId > 0 {
		dbCtx = dbCtx.Where("user_id = ?", *userId)
	}
	var results []*History
	if err := dbCtx.Order("created_at DESC, id DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func PaginateHistory(ctx context.Context,
	limit int,
	after *string,
	referenceType *string,
	referenceID *int,
	actionType *string,
) (*HistoriesConnection, error) {
	baseId, ok := utils.GetBaseIdFromContext(ctx)
	if !ok || baseId == "" {
		return nil, utils.ErrorBaseRequired
	}

	dbCtx := config.GetDB().WithContext(ctx).Where("base_id = ?", baseId)
	if referenceType != nil && *referenceType != "" {
		dbCtx = dbCtx.Where("reference_type = ?", *referenceType)
	}
	if referenceID != nil && *referenceID > 0 {
		dbCtx = dbCtx.Where("reference_id = ?", *referenceID)
	}
	if actionType != nil && *actionType != "" {
		dbCtx = dbCtx.Where("action_type = ?", *actionType)
	}

	edges, pageInfo, err := FetchPageCompositeCursor[History](dbCtx, limit, after, "created_at", "<")
	if err != nil {
		return nil, err
	}
	return &HistoriesConnection{Edges: edges, PageInfo: pageInfo}, nil
}
