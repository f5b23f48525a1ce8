package models

import (
	"context"
	"errors"
	"time"

	"github.com/mmdatafocus/finance_backend/config"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IdempotencyStatus string

const (
	IdempotencyStatusStarted   IdempotencyStatus = "STARTED"
	IdempotencyStatusSucceeded IdempotencyStatus = "SUCCEEDED"
	IdempotencyStatusFailed    IdempotencyStatus = "FAILED"
)

// A STARTED key older than this belongs to a crashed worker and may be retaken.
const idempotencyStaleAfter = 5 * time.Minute

var ErrIdempotencyInProgress = errors.New("idempotency in progress")

// IdempotencyKey records one handler's progress on one outbox message.
// Unique per (base_id, handler_name, message_id).
type IdempotencyKey struct {
	ID            int               `gorm:"primary_key" json:"id"`
	BaseId        string            `gorm:"size:64;not null;index:uniq_idem,unique" json:"base_id"`
	HandlerName   string            `gorm:"size:100;not null;index:uniq_idem,unique" json:"handler_name"`
	MessageId     string            `gorm:"size:255;not null;index:uniq_idem,unique" json:"message_id"`
	Status        IdempotencyStatus `gorm:"size:20;not null;index" json:"status"`
	Attempts      int               `gorm:"not null;default:1" json:"attempts"`
	CorrelationId string            `gorm:"size:64" json:"correlation_id"`
	LastError     *string           `gorm:"type:text" json:"last_error"`
	FinishedAt    *time.Time        `json:"finished_at"`
	CreatedAt     time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

// IdempotencyScope names the key a handler claims for a message.
type IdempotencyScope struct {
	BaseId    string
	Handler   string
	MessageId string
}

func (s IdempotencyScope) where(tx *gorm.DB) *gorm.DB {
	return tx.Model(&IdempotencyKey{}).
		Where("base_id = ? AND handler_name = ? AND message_id = ?", s.BaseId, s.Handler, s.MessageId)
}

// Begin claims the key. skip is true when the message was already handled.
// A live STARTED claim held by another worker returns ErrIdempotencyInProgress.
// The insert ignores conflicts so a duplicate never aborts an enclosing transaction.
func (s IdempotencyScope) Begin(tx *gorm.DB) (skip bool, err error) {
	key := IdempotencyKey{
		BaseId:        s.BaseId,
		HandlerName:   s.Handler,
		MessageId:     s.MessageId,
		Status:        IdempotencyStatusStarted,
		Attempts:      1,
		CorrelationId: correlationIdFromContextOrNew(tx.Statement.Context),
	}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&key)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 1 {
		return false, nil
	}

	var existing IdempotencyKey
	if err := s.where(tx).First(&existing).Error; err != nil {
		return false, err
	}
	switch existing.Status {
	case IdempotencyStatusSucceeded:
		return true, nil
	case IdempotencyStatusStarted:
		if time.Since(existing.UpdatedAt) < idempotencyStaleAfter {
			return false, ErrIdempotencyInProgress
		}
	}
	return false, tx.Model(&IdempotencyKey{}).
		Where("id = ?", existing.ID).
		Updates(map[string]interface{}{
			"status":      IdempotencyStatusStarted,
			"attempts":    gorm.Expr("attempts + 1"),
			"last_error":  nil,
			"finished_at": nil,
		}).Error
}

func (s IdempotencyScope) Succeed(tx *gorm.DB) error {
	now := time.Now().UTC()
	return s.where(tx).Updates(map[string]interface{}{
		"status":      IdempotencyStatusSucceeded,
		"last_error":  nil,
		"finished_at": &now,
	}).Error
}

func (s IdempotencyScope) Fail(tx *gorm.DB, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	now := time.Now().UTC()
	return s.where(tx).Updates(map[string]interface{}{
		"status":      IdempotencyStatusFailed,
		"last_error":  &msg,
		"finished_at": &now,
	}).Error
}

// PurgeIdempotencyKeys deletes SUCCEEDED keys finished before cutoff. Outbox
// records are not redelivered once processed, so old keys only take space.
func PurgeIdempotencyKeys(ctx context.Context, cutoff time.Time) (int64, error) {
	res := config.GetDB().WithContext(ctx).
		Where("status = ? AND finished_at < ?", IdempotencyStatusSucceeded, cutoff).
		Delete(&IdempotencyKey{})
	return res.RowsAffected, res.Error
}
