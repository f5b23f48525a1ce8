package models_test

import (
	"testing"

	"github.com/mmdatafocus/finance_backend/models"
	"github.com/mmdatafocus/finance_backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateClienteFornecedorAddress(t *testing.T) {
	setupDB(t)
	ctx, _ := newBase(t, "Loja")

	cf, err := models.CreateClienteFornecedor(ctx, &models.NewClienteFornecedor{
		Name:       "Distribuidora Sul",
		Document:   "11.222.333/0001-81",
		IsSupplier: true,
	})
	require.NoError(t, err)

	_, err = models.UpdateClienteFornecedor(ctx, cf.ID, &models.NewClienteFornecedor{
		Name:       "Distribuidora Sul",
		Document:   "11.222.333/0001-81",
		IsSupplier: true,
		Address:    models.Address{Cep: "88010-000", City: "Florianópolis", State: "sc"},
	})
	require.NoError(t, err)

	saved, err := models.GetClienteFornecedor(ctx, cf.ID)
	require.NoError(t, err)
	assert.Equal(t, "88010000", saved.Address.Cep)
	assert.Equal(t, "Florianópolis", saved.Address.City)
	assert.Equal(t, "SC", saved.Address.State)

	_, err = models.UpdateClienteFornecedor(ctx, cf.ID, &models.NewClienteFornecedor{
		Name:       "Distribuidora Sul",
		IsSupplier: true,
		Address:    models.Address{State: "SCX"},
	})
	assert.ErrorIs(t, err, utils.ErrorInvalid)
}
