package models_test

import (
	"fmt"
	"testing"

	"github.com/mmdatafocus/finance_backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateStoreMovesDefaultFlag(t *testing.T) {
	setupDB(t)
	ctx, _ := newBase(t, "Loja")

	store, err := models.CreateStore(ctx, &models.NewStore{
		Name:      "Filial Sul",
		Cnpj:      "11.222.333/0001-81",
		IsDefault: true,
		Address:   models.Address{Cep: "01310-100", State: "sp"},
	})
	require.NoError(t, err)
	assert.Equal(t, "11222333000181", store.Cnpj)
	assert.Equal(t, "01310100", store.Address.Cep)
	assert.Equal(t, "SP", store.Address.State)

	def, err := models.GetDefaultStore(ctx)
	require.NoError(t, err)
	require.NotNil(t, def)
	assert.Equal(t, store.ID, def.ID)

	stores, err := models.GetStores(ctx, nil, nil)
	require.NoError(t, err)
	defaults := 0
	for _, s := range stores {
		if *s.IsDefault {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestCreateStoreRejectsDuplicateNameAndBadCnpj(t *testing.T) {
	setupDB(t)
	ctx, _ := newBase(t, "Loja")

	_, err := models.CreateStore(ctx, &models.NewStore{Name: "Matriz"})
	assert.Error(t, err)

	_, err = models.CreateStore(ctx, &models.NewStore{Name: "Outra", Cnpj: "11.222.333/0001-00"})
	assert.Error(t, err)
}

func TestToggleActiveStoreWritesHistory(t *testing.T) {
	setupDB(t)
	ctx, _ := newBase(t, "Loja")

	store, err := models.CreateStore(ctx, &models.NewStore{Name: "Quiosque"})
	require.NoError(t, err)

	toggled, err := models.ToggleActiveStore(ctx, store.ID, false)
	require.NoError(t, err)
	require.NotNil(t, toggled)

	active := false
	stores, err := models.GetStores(ctx, nil, &active)
	require.NoError(t, err)
	require.Len(t, stores, 1)
	assert.Equal(t, store.ID, stores[0].ID)

	histories, err := models.GetHistories(ctx, &store.ID, nil, nil)
	require.NoError(t, err)
	actions := make([]string, 0, len(histories))
	for _, h := range histories {
		actions = append(actions, h.ActionType)
	}
	assert.Contains(t, actions, models.HistoryActionCreate)
	assert.Contains(t, actions, models.HistoryActionInactive)
}

func TestUpdateStoreWritesAddressColumns(t *testing.T) {
	setupDB(t)
	ctx, _ := newBase(t, "Loja")

	store, err := models.CreateStore(ctx, &models.NewStore{Name: "Filial Sul"})
	require.NoError(t, err)

	updated, err := models.UpdateStore(ctx, store.ID, &models.NewStore{
		Name: "Filial Sul II",
		Address: models.Address{
			Cep:    "90010-150",
			Street: " Rua dos Andradas ",
			Number: "1001",
			City:   "Porto Alegre",
			State:  "rs",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Filial Sul II", updated.Name)

	saved, err := models.GetStore(ctx, store.ID)
	require.NoError(t, err)
	assert.Equal(t, "90010150", saved.Address.Cep)
	assert.Equal(t, "Rua dos Andradas", saved.Address.Street)
	assert.Equal(t, "Porto Alegre", saved.Address.City)
	assert.Equal(t, "RS", saved.Address.State)
}

func TestMovingDefaultFlagUpdatesOtherStores(t *testing.T) {
	setupDB(t)
	mr := useRedis(t)
	ctx, _ := newBase(t, "Loja")

	previous, err := models.GetDefaultStore(ctx)
	require.NoError(t, err)
	require.NotNil(t, previous)

	// warm the instance cache with is_default = true
	cached, err := models.GetStore(ctx, previous.ID)
	require.NoError(t, err)
	require.True(t, *cached.IsDefault)
	require.True(t, mr.Exists(fmt.Sprintf("Store:%d", previous.ID)))

	next, err := models.CreateStore(ctx, &models.NewStore{Name: "Filial Norte", IsDefault: true})
	require.NoError(t, err)

	assert.False(t, mr.Exists(fmt.Sprintf("Store:%d", previous.ID)))
	reloaded, err := models.GetStore(ctx, previous.ID)
	require.NoError(t, err)
	assert.False(t, *reloaded.IsDefault)

	def, err := models.GetDefaultStore(ctx)
	require.NoError(t, err)
	assert.Equal(t, next.ID, def.ID)

	histories, err := models.GetHistories(ctx, &previous.ID, nil, nil)
	require.NoError(t, err)
	updates := 0
	for _, h := range histories {
		if h.ActionType == models.HistoryActionUpdate && h.ReferenceType == "stores" {
			updates++
		}
	}
	assert.Equal(t, 1, updates)

	_, err = models.UpdateStore(ctx, previous.ID, &models.NewStore{Name: previous.Name, IsDefault: true})
	require.NoError(t, err)
	again, err := models.GetStore(ctx, next.ID)
	require.NoError(t, err)
	assert.False(t, *again.IsDefault)
}
