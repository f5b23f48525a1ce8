package models

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/finance_backend/config"
	"github.com/mmdatafocus/finance_backend/utils"
	"gorm.io/gorm"
)

// Outbox publish statuses for PubSubMessageRecord.PublishStatus.
const (
	OutboxPublishStatusPending    = "PENDING"
	OutboxPublishStatusProcessing = "PROCESSING"
	OutboxPublishStatusSent       = "SENT"
	OutboxPublishStatusFailed     = "FAILED"
	OutboxPublishStatusDead       = "DEAD"
)

// PubSubMessageRecord is the transactional outbox. A row is written in the same
// DB transaction as the change it describes and published after commit.
type PubSubMessageRecord struct {
	ID            int                 `gorm:"primary_key;index:idx_outbox_dispatch,priority:3" json:"id"`
	BaseId        string              `gorm:"size:64;not null;index" json:"base_id"`
	StoreId       int                 `gorm:"index" json:"store_id"`
	EventDate     time.Time           `gorm:"index;not null" json:"event_date"`
	ReferenceId   int                 `json:"reference_id"`
	ReferenceType ReferenceType       `gorm:"size:32;index" json:"reference_type"`
	Action        PubSubMessageAction `gorm:"size:1" json:"action"`
	OldObj        []byte              `json:"old_obj"`
	NewObj        []byte              `json:"new_obj"`
	IsProcessed   bool                `gorm:"index;not null;default:false" json:"is_processed"`

	PublishStatus    string     `gorm:"size:20;index;not null;default:'PENDING';index:idx_outbox_dispatch,priority:1" json:"publish_status"` // PENDING|PROCESSING|SENT|FAILED|DEAD
	PublishedAt      *time.Time `json:"published_at"`
	PubSubMessageId  *string    `gorm:"size:255" json:"pubsub_message_id"`
	PublishAttempts  int        `gorm:"not null;default:0" json:"publish_attempts"`
	NextAttemptAt    *time.Time `gorm:"index:idx_outbox_dispatch,priority:2" json:"next_attempt_at"`
	LockedAt         *time.Time `json:"locked_at"`
	LockedBy         *string    `gorm:"size:100" json:"locked_by"`
	LastPublishError *string    `gorm:"type:text" json:"last_publish_error"`

	ProcessAttempts  int        `gorm:"not null;default:0" json:"process_attempts"`
	LastProcessError *string    `gorm:"type:text" json:"last_process_error"`
	ProcessedAt      *time.Time `json:"processed_at"`
	CorrelationId    string     `gorm:"size:64;index" json:"correlation_id"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func ConvertToPubSubMessage(record PubSubMessageRecord) config.PubSubMessage {
	return config.PubSubMessage{
		ID:            record.ID,
		BaseId:        record.BaseId,
		StoreId:       record.StoreId,
		EventDate:     record.EventDate,
		ReferenceId:   record.ReferenceId,
		ReferenceType: string(record.ReferenceType),
		Action:        string(record.Action),
		OldObj:        record.OldObj,
		NewObj:        record.NewObj,
		CorrelationId: record.CorrelationId,
	}
}

// PublishEvent writes an outbox record inside tx. storeId and eventDate are the
// projection keys the worker rebuilds (0 / zero time for master data).
func PublishEvent(tx *gorm.DB, baseId string, storeId int, eventDate time.Time, refId int, refType ReferenceType, obj interface{}, oldObj interface{}, action PubSubMessageAction) error {
	var newBytes, oldBytes []byte
	var err error

	if obj != nil && (action == PubSubMessageActionCreate || action == PubSubMessageActionUpdate) {
		if newBytes, err = json.Marshal(obj); err != nil {
			return err
		}
	}
	if oldObj != nil && (action == PubSubMessageActionUpdate || action == PubSubMessageActionDelete) {
		if oldBytes, err = json.Marshal(oldObj); err != nil {
			return err
		}
	}
	if eventDate.IsZero() {
		eventDate = time.Now().UTC()
	}

	record := PubSubMessageRecord{
		BaseId:        baseId,
		StoreId:       storeId,
		EventDate:     eventDate,
		ReferenceId:   refId,
		ReferenceType: refType,
		Action:        action,
		NewObj:        newBytes,
		OldObj:        oldBytes,
		PublishStatus: OutboxPublishStatusPending,
		CorrelationId: correlationIdFromContextOrNew(tx.Statement.Context),
	}
	// NewDB so the record can be written from inside another model's hook
	return tx.Session(&gorm.Session{NewDB: true}).Create(&record).Error
}

func correlationIdFromContextOrNew(ctx context.Context) string {
	if ctx != nil {
		if v, ok := utils.GetCorrelationIdFromContext(ctx); ok && v != "" {
			return v
		}
	}
	return uuid.NewString()
}

// OutboxStatus is the admin view of an outbox row.
type OutboxStatus struct {
	RecordId         int           `json:"record_id"`
	BaseId           string        `json:"base_id"`
	ReferenceType    ReferenceType `json:"reference_type"`
	ReferenceId      int           `json:"reference_id"`
	PublishStatus    string        `json:"publish_status"`
	IsProcessed      bool          `json:"is_processed"`
	PublishAttempts  int           `json:"publish_attempts"`
	ProcessAttempts  int           `json:"process_attempts"`
	NextAttemptAt    *time.Time    `json:"next_attempt_at"`
	LastPublishError *string       `json:"last_publish_error"`
	LastProcessError *string       `json:"last_process_error"`
	CreatedAt        time.Time     `json:"created_at"`
	PublishedAt      *time.Time    `json:"published_at"`
	ProcessedAt      *time.Time    `json:"processed_at"`
}

func toOutboxStatus(rec PubSubMessageRecord) *OutboxStatus {
	return &OutboxStatus{
		RecordId:         rec.ID,
		BaseId:           rec.BaseId,
		ReferenceType:    rec.ReferenceType,
		ReferenceId:      rec.ReferenceId,
		PublishStatus:    rec.PublishStatus,
		IsProcessed:      rec.IsProcessed,
		PublishAttempts:  rec.PublishAttempts,
		ProcessAttempts:  rec.ProcessAttempts,
		NextAttemptAt:    rec.NextAttemptAt,
		LastPublishError: rec.LastPublishError,
		LastProcessError: rec.LastProcessError,
		CreatedAt:        rec.CreatedAt,
		PublishedAt:      rec.PublishedAt,
		ProcessedAt:      rec.ProcessedAt,
	}
}

// ListUnhealthyOutbox returns FAILED/DEAD or unprocessed-and-stale rows, newest first.
func ListUnhealthyOutbox(ctx context.Context, limit int) ([]*OutboxStatus, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	staleBefore := time.Now().UTC().Add(-10 * time.Minute)

	var recs []PubSubMessageRecord
	err := config.GetDB().WithContext(ctx).
		Where("publish_status IN ? OR (is_processed = ? AND created_at < ?)",
			[]string{OutboxPublishStatusFailed, OutboxPublishStatusDead}, false, staleBefore).
		Order("id DESC").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	results := make([]*OutboxStatus, 0, len(recs))
	for _, r := range recs {
		results = append(results, toOutboxStatus(r))
	}
	return results, nil
}

// ReplayOutboxRecord resets an unprocessed record so the dispatcher picks it up again.
func ReplayOutboxRecord(ctx context.Context, id int) (*OutboxStatus, error) {
	db := config.GetDB()
	res := db.WithContext(ctx).
		Model(&PubSubMessageRecord{}).
		Where("id = ? AND is_processed = ?", id, false).
		Updates(map[string]interface{}{
			"locked_at":          nil,
			"locked_by":          nil,
			"publish_status":     OutboxPublishStatusPending,
			"publish_attempts":   0,
			"process_attempts":   0,
			"next_attempt_at":    nil,
			"last_process_error": nil,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, utils.NotFound("outbox record not found or already processed")
	}

	var rec PubSubMessageRecord
	if err := db.WithContext(ctx).First(&rec, id).Error; err != nil {
		return nil, err
	}
	return toOutboxStatus(rec), nil
}

// ListUnprocessedOutbox returns records the worker has not handled yet, oldest first.
func ListUnprocessedOutbox(ctx context.Context, limit int) ([]*PubSubMessageRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	var recs []*PubSubMessageRecord
	err := config.GetDB().WithContext(ctx).
		Where("is_processed = ?", false).
		Order("id ASC").
		Limit(limit).
		Find(&recs).Error
	return recs, err
}

// MarkOutboxProcessed flags a record handled by the worker.
func MarkOutboxProcessed(ctx context.Context, id int) error {
	now := time.Now().UTC()
	return config.GetDB().WithContext(ctx).
		Model(&PubSubMessageRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_processed":       true,
			"processed_at":       &now,
			"last_process_error": nil,
			"locked_at":          nil,
			"locked_by":          nil,
		}).Error
}

// MarkOutboxProcessFailed records a processing error and releases the claim.
func MarkOutboxProcessFailed(ctx context.Context, id int, procErr error) error {
	errMsg := procErr.Error()
	return config.GetDB().WithContext(ctx).
		Model(&PubSubMessageRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_process_error": &errMsg,
			"locked_at":          nil,
			"locked_by":          nil,
		}).Error
}
