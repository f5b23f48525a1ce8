package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/mmdatafocus/finance_backend/config"
	"github.com/mmdatafocus/finance_backend/models"
	"github.com/mmdatafocus/finance_backend/models/reports"
	"github.com/mmdatafocus/finance_backend/realtime"
	"github.com/mmdatafocus/finance_backend/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// storeDay identifies one StoreDailySummary row. StoreId 0 is "no store".
type storeDay struct {
	StoreId int
	Date    time.Time
}

// dayRef is the subset of a Transaction or StoreClosing payload that locates it.
type dayRef struct {
	StoreId *int      `json:"store_id"`
	Date    time.Time `json:"date"`
}

// affectedDays lists the distinct (store, date) pairs touched by a message:
// the record's own keys plus the old and new payloads, so moves rebuild both sides.
func affectedDays(m config.PubSubMessage) ([]storeDay, error) {
	seen := make(map[storeDay]bool)
	var days []storeDay
	add := func(storeId int, date time.Time) {
		if date.IsZero() {
			return
		}
		d := storeDay{StoreId: storeId, Date: models.DateOnly(date)}
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}

	add(m.StoreId, m.EventDate)
	for _, raw := range [][]byte{m.OldObj, m.NewObj} {
		if len(raw) == 0 {
			continue
		}
		var ref dayRef
		if err := json.Unmarshal(raw, &ref); err != nil {
			return nil, err
		}
		storeId := 0
		if ref.StoreId != nil {
			storeId = *ref.StoreId
		}
		add(storeId, ref.Date)
	}
	return days, nil
}

// ProcessWorkflow applies the projection updates for one message inside tx.
func ProcessWorkflow(tx *gorm.DB, logger *logrus.Logger, m config.PubSubMessage) error {
	switch models.ReferenceType(m.ReferenceType) {
	case models.ReferenceTypeTransaction, models.ReferenceTypeStoreClosing:
		days, err := affectedDays(m)
		if err != nil {
			return err
		}
		for _, d := range days {
			if err := models.RebuildStoreDailySummary(tx, m.BaseId, d.StoreId, d.Date); err != nil {
				return err
			}
		}
		if logger != nil {
			logger.WithFields(logrus.Fields{
				"field":          "ProcessWorkflow",
				"base_id":        m.BaseId,
				"reference_type": m.ReferenceType,
				"reference_id":   m.ReferenceId,
				"days":           len(days),
			}).Debug("daily summaries rebuilt")
		}
	}
	return nil
}

// ProcessMessage handles one delivered outbox message. Deliveries are at-least-once;
// the idempotency key makes a redelivered message a no-op.
func ProcessMessage(ctx context.Context, logger *logrus.Logger, m config.PubSubMessage) error {
	if m.BaseId == "" {
		return errors.New("message without base_id")
	}
	ctx = utils.InternalContext(ctx, m.BaseId)
	ctx = utils.SetUserIdInContext(ctx, 0)
	ctx = utils.SetUserNameInContext(ctx, "System")
	if m.CorrelationId != "" {
		ctx = utils.SetCorrelationIdInContext(ctx, m.CorrelationId)
	}

	release, err := AcquireBaseLock(ctx, m.BaseId)
	if err != nil {
		return err
	}
	defer release()

	db := config.GetDB().WithContext(ctx)
	idem := models.IdempotencyScope{
		BaseId:    m.BaseId,
		Handler:   m.ReferenceType,
		MessageId: strconv.Itoa(m.ID),
	}

	skip, err := idem.Begin(db)
	if err != nil {
		return err
	}
	if !skip {
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := ProcessWorkflow(tx, logger, m); err != nil {
				return err
			}
			return idem.Succeed(tx)
		})
		if err != nil {
			_ = idem.Fail(db, err)
			if m.ID > 0 {
				_ = models.MarkOutboxProcessFailed(ctx, m.ID, err)
			}
			return err
		}

		if err := reports.InvalidateBaseReports(m.BaseId); err != nil && logger != nil {
			logger.WithFields(logrus.Fields{
				"field":   "ProcessMessage",
				"base_id": m.BaseId,
			}).Warn("report cache invalidation failed: " + err.Error())
		}
		realtime.GlobalHub.Publish(realtime.Event{
			Type:   m.Action,
			Entity: m.ReferenceType,
			Id:     m.ReferenceId,
			BaseId: m.BaseId,
		})
	}

	if m.ID > 0 {
		return models.MarkOutboxProcessed(ctx, m.ID)
	}
	return nil
}
