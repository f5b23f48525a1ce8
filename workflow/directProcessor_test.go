package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/mmdatafocus/finance_backend/config"
	"github.com/mmdatafocus/finance_backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectProcessorMovesFailingRecordToDead(t *testing.T) {
	setupDB(t)
	db := config.GetDB()

	// a record without a base can never be processed
	rec := models.PubSubMessageRecord{
		EventDate:     time.Now().UTC(),
		ReferenceType: models.ReferenceTypeStore,
		ReferenceId:   1,
		Action:        models.PubSubMessageActionCreate,
		PublishStatus: models.OutboxPublishStatusPending,
	}
	require.NoError(t, db.Create(&rec).Error)

	p := NewOutboxDirectProcessor(db, nil)
	p.MaxAttempts = 2

	for attempt := 1; attempt <= 2; attempt++ {
		assert.Zero(t, p.ProcessOnce(context.Background()))
		require.NoError(t, db.First(&rec, rec.ID).Error)
		assert.Equal(t, attempt, rec.ProcessAttempts)
		assert.Nil(t, rec.LockedAt, "a failed attempt releases the claim")
		require.NotNil(t, rec.LastProcessError)
		assert.Equal(t, models.OutboxPublishStatusPending, rec.PublishStatus)
	}

	assert.Zero(t, p.ProcessOnce(context.Background()))
	require.NoError(t, db.First(&rec, rec.ID).Error)
	assert.Equal(t, models.OutboxPublishStatusDead, rec.PublishStatus)
	assert.Equal(t, 2, rec.ProcessAttempts)
	assert.Contains(t, *rec.LastProcessError, "max process attempts exceeded (2)")
	assert.False(t, rec.IsProcessed)

	// DEAD rows stay put until replayed
	assert.Zero(t, p.ProcessOnce(context.Background()))
	require.NoError(t, db.First(&rec, rec.ID).Error)
	assert.Equal(t, 2, rec.ProcessAttempts)

	status, err := models.ReplayOutboxRecord(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OutboxPublishStatusPending, status.PublishStatus)
	assert.Zero(t, status.ProcessAttempts)
}

