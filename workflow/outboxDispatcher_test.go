package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mmdatafocus/finance_backend/config"
	"github.com/mmdatafocus/finance_backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 5 * time.Second},
		{1, 5 * time.Second},
		{2, 10 * time.Second},
		{3, 20 * time.Second},
		{7, 320 * time.Second},
		{8, 10 * time.Minute},
		{30, 10 * time.Minute},
	}
	for _, tt := range tests {
		if got := PublishBackoff(5*time.Second, tt.attempt); got != tt.want {
			t.Fatalf("attempt %d: expected %s, got %s", tt.attempt, tt.want, got)
		}
	}
}

func TestDispatchOnceMarksSent(t *testing.T) {
	setupDB(t)
	newBase(t)

	var published []config.PubSubMessage
	d := NewOutboxDispatcher(config.GetDB(), nil)
	d.BatchSize = 500
	d.Publish = func(ctx context.Context, baseId string, msg config.PubSubMessage) (string, error) {
		published = append(published, msg)
		return "pub-1", nil
	}

	n := d.DispatchOnce(context.Background())
	require.Greater(t, n, 0)
	assert.Len(t, published, n)

	var pending int64
	require.NoError(t, config.GetDB().Model(&models.PubSubMessageRecord{}).
		Where("publish_status <> ?", models.OutboxPublishStatusSent).Count(&pending).Error)
	assert.Zero(t, pending)

	// sent records are not published again
	assert.Zero(t, d.DispatchOnce(context.Background()))
}

func TestDispatchOnceBacksOffAndGoesDead(t *testing.T) {
	setupDB(t)
	newBase(t)

	d := NewOutboxDispatcher(config.GetDB(), nil)
	d.BatchSize = 500
	d.MaxAttempts = 2
	d.InitialBackoff = 0
	d.Publish = func(ctx context.Context, baseId string, msg config.PubSubMessage) (string, error) {
		return "", errors.New("unavailable")
	}

	assert.Zero(t, d.DispatchOnce(context.Background()))
	var rec models.PubSubMessageRecord
	require.NoError(t, config.GetDB().Order("id ASC").First(&rec).Error)
	assert.Equal(t, models.OutboxPublishStatusFailed, rec.PublishStatus)
	assert.Equal(t, 1, rec.PublishAttempts)
	require.NotNil(t, rec.LastPublishError)

	assert.Zero(t, d.DispatchOnce(context.Background()))
	require.NoError(t, config.GetDB().First(&rec, rec.ID).Error)
	assert.Equal(t, models.OutboxPublishStatusDead, rec.PublishStatus)

	// DEAD rows are never claimed again
	assert.Zero(t, d.DispatchOnce(context.Background()))
}
