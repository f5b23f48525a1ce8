package models

type Identifier interface {
	GetId() int
}

// interface for dataloader result
type Data interface {
	Identifier
	GetDefault(int) Data
}

func (s AllStore) GetDefault(id int) Data {
	return AllStore{HasId: HasId{ID: id}}
}

func (c AllCategory) GetDefault(id int) Data {
	return AllCategory{HasId: HasId{ID: id}}
}

func (p AllPaymentMethod) GetDefault(id int) Data {
	return AllPaymentMethod{HasId: HasId{ID: id}}
}

func (m AllMovementType) GetDefault(id int) Data {
	return AllMovementType{HasId: HasId{ID: id}}
}

func (c AllClienteFornecedor) GetDefault(id int) Data {
	return AllClienteFornecedor{HasId: HasId{ID: id}}
}

// loader loading more than one model by one id
type RelatedData interface {
	GetReferenceId() int
}

func (m MovementItem) GetReferenceId() int {
	return m.ClosingId
}

func (d Document) GetReferenceId() int {
	return d.ReferenceID
}
