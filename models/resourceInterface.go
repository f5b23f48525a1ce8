package models

func (s Store) GetBaseId() string {
	return s.BaseId
}

func (c Category) GetBaseId() string {
	return c.BaseId
}

func (p PaymentMethod) GetBaseId() string {
	return p.BaseId
}

func (m MovementType) GetBaseId() string {
	return m.BaseId
}

func (c ClienteFornecedor) GetBaseId() string {
	return c.BaseId
}

func (t Transaction) GetBaseId() string {
	return t.BaseId
}

func (s StoreClosing) GetBaseId() string {
	return s.BaseId
}

func (h History) GetBaseId() string {
	return h.BaseId
}

func (r PubSubMessageRecord) GetBaseId() string {
	return r.BaseId
}

func (d Document) GetBaseId() string {
	return d.BaseId
}
