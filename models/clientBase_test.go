package models_test

import (
	"testing"

	"github.com/mmdatafocus/finance_backend/models"
	"github.com/mmdatafocus/finance_backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateClientBaseSeedsDefaults(t *testing.T) {
	setupDB(t)
	ctx, base := newBase(t, "Padaria Central")

	defaults, err := models.GetBaseDefaults()
	require.NoError(t, err)

	categories, err := models.GetCategories(ctx, nil, nil, nil)
	require.NoError(t, err)
	assert.Len(t, categories, len(defaults.Categories))

	types, err := models.GetMovementTypes(ctx, nil, nil)
	require.NoError(t, err)
	assert.Len(t, types, len(defaults.MovementTypes))

	stores, err := models.GetStores(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, stores, 1)
	assert.Equal(t, "Matriz", stores[0].Name)
	assert.True(t, *stores[0].IsDefault)
	assert.True(t, *stores[0].IsMatriz)
	assert.Equal(t, base.ID, stores[0].BaseId)
}

func TestCreateClientBaseRequiresAdmin(t *testing.T) {
	setupDB(t)
	ctx, _ := newBase(t, "Base A")

	_, err := models.CreateClientBase(ctx, &models.NewClientBase{Name: "Base B"})
	assert.ErrorIs(t, err, utils.ErrorForbidden)
}

func TestClientBaseDataIsIsolated(t *testing.T) {
	setupDB(t)
	ctxA, _ := newBase(t, "Base A")
	ctxB, _ := newBase(t, "Base B")

	store, err := models.CreateStore(ctxA, &models.NewStore{Name: "Filial Norte"})
	require.NoError(t, err)

	_, err = models.GetStore(ctxB, store.ID)
	assert.ErrorIs(t, err, utils.ErrorRecordNotFound)

	storesB, err := models.GetStores(ctxB, nil, nil)
	require.NoError(t, err)
	assert.Len(t, storesB, 1)
}
