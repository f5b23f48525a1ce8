package models

import "context"

func (h HasId) GetId() int {
	return h.ID
}

// All* are the trimmed, cached shapes used by pickers and dataloaders.

type AllStore struct {
	HasId
	Name      string `json:"name"`
	Nickname  string `json:"nickname"`
	Code      string `json:"code"`
	Icon      string `json:"icon"`
	IsDefault bool   `json:"is_default"`
	IsMatriz  bool   `json:"is_matriz"`
	IsActive  bool   `json:"is_active"`
}

type AllCategory struct {
	HasId
	Name     string       `json:"name"`
	Type     CategoryType `json:"type"`
	Icon     string       `json:"icon"`
	Color    string       `json:"color"`
	IsActive bool         `json:"is_active"`
}

type AllPaymentMethod struct {
	HasId
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

type AllMovementType struct {
	HasId
	Name     string           `json:"name"`
	Category MovementCategory `json:"category"`
	IsActive bool             `json:"is_active"`
}

type AllClienteFornecedor struct {
	HasId
	Name         string `json:"name"`
	Document     string `json:"document"`
	DocumentType string `json:"document_type"`
	IsClient     bool   `json:"is_client"`
	IsSupplier   bool   `json:"is_supplier"`
	IsActive     bool   `json:"is_active"`
}

func ListAllStore(ctx context.Context) ([]*AllStore, error) {
	return ListAllResource[Store, AllStore](ctx, "name", "id")
}

func MapAllStore(ctx context.Context) (map[int]*AllStore, error) {
	return MapAllResource[Store, AllStore](ctx)
}

func ListAllCategory(ctx context.Context) ([]*AllCategory, error) {
	return ListAllResource[Category, AllCategory](ctx, "type", "name")
}

func MapAllCategory(ctx context.Context) (map[int]*AllCategory, error) {
	return MapAllResource[Category, AllCategory](ctx)
}

func ListAllPaymentMethod(ctx context.Context) ([]*AllPaymentMethod, error) {
	return ListAllResource[PaymentMethod, AllPaymentMethod](ctx, "name")
}

func MapAllPaymentMethod(ctx context.Context) (map[int]*AllPaymentMethod, error) {
	return MapAllResource[PaymentMethod, AllPaymentMethod](ctx)
}

func ListAllMovementType(ctx context.Context) ([]*AllMovementType, error) {
	return ListAllResource[MovementType, AllMovementType](ctx, "category", "name")
}

func MapAllMovementType(ctx context.Context) (map[int]*AllMovementType, error) {
	return MapAllResource[MovementType, AllMovementType](ctx)
}

func ListAllClienteFornecedor(ctx context.Context) ([]*AllClienteFornecedor, error) {
	return ListAllResource[ClienteFornecedor, AllClienteFornecedor](ctx, "name")
}

func MapAllClienteFornecedor(ctx context.Context) (map[int]*AllClienteFornecedor, error) {
	return MapAllResource[ClienteFornecedor, AllClienteFornecedor](ctx)
}
