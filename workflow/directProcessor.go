package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/mmdatafocus/finance_backend/config"
	"github.com/mmdatafocus/finance_backend/models"
	"github.com/mmdatafocus/finance_backend/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OutboxDirectProcessor processes unhandled outbox records without Pub/Sub.
// Used when no topic is configured, and as a safety net when OUTBOX_DIRECT_PROCESSING is set.
// A record claimed MaxAttempts times without succeeding is moved to DEAD and
// left for an operator to replay.
type OutboxDirectProcessor struct {
	DB          *gorm.DB
	Logger      *logrus.Logger
	WorkerID    string
	BatchSize   int
	Interval    time.Duration
	LockTTL     time.Duration
	MaxAttempts int
}

func NewOutboxDirectProcessor(db *gorm.DB, logger *logrus.Logger) *OutboxDirectProcessor {
	return &OutboxDirectProcessor{
		DB:          db,
		Logger:      logger,
		WorkerID:    "direct-" + time.Now().Format("20060102-150405.000"),
		BatchSize:   50,
		Interval:    2 * time.Second,
		LockTTL:     30 * time.Second,
		MaxAttempts: 10,
	}
}

// ShouldRunDirectProcessor reports whether the in-process fallback should start.
func ShouldRunDirectProcessor() bool {
	return config.OutboxDirectProcessing() || !config.PubSubConfigured()
}

func (p *OutboxDirectProcessor) Run(ctx context.Context) {
	if p == nil || p.DB == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		p.ProcessOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(p.Interval):
		}
	}
}

// ProcessOnce claims and processes one batch, returning how many records succeeded.
func (p *OutboxDirectProcessor) ProcessOnce(ctx context.Context) int {
	now := time.Now().UTC()
	staleBefore := now.Add(-p.LockTTL)
	dbCtx := utils.InternalContext(ctx, "")

	var claimed []models.PubSubMessageRecord
	err := p.DB.WithContext(dbCtx).Transaction(func(tx *gorm.DB) error {
		q := tx.
			Where("is_processed = ? AND publish_status <> ?", false, models.OutboxPublishStatusDead).
			Where("(locked_at IS NULL OR locked_at <= ?)", staleBefore).
			Order("id ASC").
			Limit(p.BatchSize).
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		var candidates []models.PubSubMessageRecord
		if err := q.Find(&candidates).Error; err != nil {
			return err
		}
		for _, rec := range candidates {
			if p.MaxAttempts > 0 && rec.ProcessAttempts >= p.MaxAttempts {
				if err := p.markDead(tx, rec); err != nil {
					return err
				}
				continue
			}
			rec.LockedAt = &now
			rec.LockedBy = &p.WorkerID
			rec.ProcessAttempts++
			if err := tx.Model(&models.PubSubMessageRecord{}).
				Where("id = ?", rec.ID).
				Updates(map[string]interface{}{
					"locked_at":        rec.LockedAt,
					"locked_by":        rec.LockedBy,
					"process_attempts": gorm.Expr("process_attempts + 1"),
				}).Error; err != nil {
				return err
			}
			claimed = append(claimed, rec)
		}
		return nil
	})
	if err != nil || len(claimed) == 0 {
		return 0
	}

	processed := 0
	for _, rec := range claimed {
		msg := models.ConvertToPubSubMessage(rec)
		if err := ProcessMessage(ctx, p.Logger, msg); err != nil {
			// Release the claim; errors raised before the workflow ran are not
			// recorded by ProcessMessage itself.
			_ = models.MarkOutboxProcessFailed(dbCtx, rec.ID, err)
			if p.Logger != nil {
				p.Logger.WithFields(logrus.Fields{
					"field":          "OutboxDirectProcessor",
					"base_id":        rec.BaseId,
					"reference_type": rec.ReferenceType,
					"reference_id":   rec.ReferenceId,
					"record_id":      rec.ID,
					"attempt":        rec.ProcessAttempts,
				}).Error("direct processing failed: " + err.Error())
			}
			continue
		}
		processed++
	}
	return processed
}

func (p *OutboxDirectProcessor) markDead(tx *gorm.DB, rec models.PubSubMessageRecord) error {
	msg := fmt.Sprintf("max process attempts exceeded (%d)", p.MaxAttempts)
	if rec.LastProcessError != nil {
		msg += ": " + *rec.LastProcessError
	}
	err := tx.Model(&models.PubSubMessageRecord{}).
		Where("id = ?", rec.ID).
		Updates(map[string]interface{}{
			"publish_status":     models.OutboxPublishStatusDead,
			"last_process_error": &msg,
			"locked_at":          nil,
			"locked_by":          nil,
		}).Error
	if err == nil && p.Logger != nil {
		p.Logger.WithFields(logrus.Fields{
			"field":     "OutboxDirectProcessor",
			"base_id":   rec.BaseId,
			"record_id": rec.ID,
			"attempt":   rec.ProcessAttempts,
		}).Error("outbox record moved to DEAD after max process attempts")
	}
	return err
}
