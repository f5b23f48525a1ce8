package models_test

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

func TestIdempotencyScopeLifecycle(t *testing.T) {
	setupDB(t)
	db := config.GetDB()
	scope := models.IdempotencyScope{BaseId: "base-a", Handler: "TRANSACTION", MessageId: "42"}
	load := func() models.IdempotencyKey {
		var key models.IdempotencyKey
		require.NoError(t, db.Where("base_id = ? AND message_id = ?", "base-a", "42").First(&key).Error)
		return key
	}

	skip, err := scope.Begin(db)
	require.NoError(t, err)
	assert.False(t, skip)
	assert.NotEmpty(t, load().CorrelationId)

	_, err = scope.Begin(db)
	assert.ErrorIs(t, err, models.ErrIdempotencyInProgress)

	require.NoError(t, scope.Fail(db, errors.New("summary rebuild failed")))
	key := load()
	assert.Equal(t, models.IdempotencyStatusFailed, key.Status)
	require.NotNil(t, key.FinishedAt)

	skip, err = scope.Begin(db)
	require.NoError(t, err)
	assert.False(t, skip)
	key = load()
	assert.Equal(t, 2, key.Attempts)
	assert.Nil(t, key.LastError)

	require.NoError(t, scope.Succeed(db))
	skip, err = scope.Begin(db)
	require.NoError(t, err)
	assert.True(t, skip)

	// another base never shares the key
	other := scope
	other.BaseId = "base-b"
	skip, err = other.Begin(db)
	require.NoError(t, err)
	assert.False(t, skip)

	n, err := models.PurgeIdempotencyKeys(context.Background(), time.Now().UTC().Add(time.Minute))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var left int64
	require.NoError(t, db.Model(&models.IdempotencyKey{}).Count(&left).Error)
	assert.EqualValues(t, 1, left)
}
