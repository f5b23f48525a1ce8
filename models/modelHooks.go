package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Master data hooks write history and an outbox event in the caller's transaction.
// Transactions and closings only write history here; their events carry the
// (store, date) keys and are published by the functions that change them.

func masterDataCreated(tx *gorm.DB, baseId string, id int, refType ReferenceType, obj interface{}, description string) error {
	if err := SaveHistoryCreate(tx, id, obj, description); err != nil {
		return err
	}
	return PublishEvent(tx, baseId, 0, time.Time{}, id, refType, obj, nil, PubSubMessageActionCreate)
}

func masterDataUpdating(tx *gorm.DB, baseId string, id int, refType ReferenceType, current interface{}, description string) error {
	if err := SaveHistoryUpdate(tx, id, current, description); err != nil {
		return err
	}
	return PublishEvent(tx, baseId, 0, time.Time{}, id, refType, tx.Statement.Dest, current, PubSubMessageActionUpdate)
}

func masterDataDeleted(tx *gorm.DB, baseId string, id int, refType ReferenceType, obj interface{}, description string) error {
	if err := SaveHistoryDelete(tx, id, obj, description); err != nil {
		return err
	}
	return PublishEvent(tx, baseId, 0, time.Time{}, id, refType, nil, obj, PubSubMessageActionDelete)
}

func (s *Store) AfterCreate(tx *gorm.DB) (err error) {
	return masterDataCreated(tx, s.BaseId, s.ID, ReferenceTypeStore, s, "Created Store "+s.Name)
}

func (s *Store) BeforeUpdate(tx *gorm.DB) (err error) {
	return masterDataUpdating(tx, s.BaseId, s.ID, ReferenceTypeStore, s, "Updated Store "+s.Name)
}

func (s *Store) AfterDelete(tx *gorm.DB) (err error) {
	return masterDataDeleted(tx, s.BaseId, s.ID, ReferenceTypeStore, s, "Deleted Store "+s.Name)
}

func (c *Category) AfterCreate(tx *gorm.DB) (err error) {
	return masterDataCreated(tx, c.BaseId, c.ID, ReferenceTypeCategory, c, "Created Category "+c.Name)
}

func (c *Category) BeforeUpdate(tx *gorm.DB) (err error) {
	return masterDataUpdating(tx, c.BaseId, c.ID, ReferenceTypeCategory, c, "Updated Category "+c.Name)
}

func (c *Category) AfterDelete(tx *gorm.DB) (err error) {
	return masterDataDeleted(tx, c.BaseId, c.ID, ReferenceTypeCategory, c, "Deleted Category "+c.Name)
}

func (p *PaymentMethod) AfterCreate(tx *gorm.DB) (err error) {
	return masterDataCreated(tx, p.BaseId, p.ID, ReferenceTypePaymentMethod, p, "Created Payment Method "+p.Name)
}

func (p *PaymentMethod) BeforeUpdate(tx *gorm.DB) (err error) {
	return masterDataUpdating(tx, p.BaseId, p.ID, ReferenceTypePaymentMethod, p, "Updated Payment Method "+p.Name)
}

func (p *PaymentMethod) AfterDelete(tx *gorm.DB) (err error) {
	return masterDataDeleted(tx, p.BaseId, p.ID, ReferenceTypePaymentMethod, p, "Deleted Payment Method "+p.Name)
}

func (m *MovementType) AfterCreate(tx *gorm.DB) (err error) {
	return masterDataCreated(tx, m.BaseId, m.ID, ReferenceTypeMovementType, m, "Created Movement Type "+m.Name)
}

func (m *MovementType) BeforeUpdate(tx *gorm.DB) (err error) {
	description := "Updated Movement Type " + m.Name
	if tx.Statement.Changed("Category") {
		description += fmt.Sprintf(". Category changed from %s.", m.Category)
	}
	return masterDataUpdating(tx, m.BaseId, m.ID, ReferenceTypeMovementType, m, description)
}

func (m *MovementType) AfterDelete(tx *gorm.DB) (err error) {
	return masterDataDeleted(tx, m.BaseId, m.ID, ReferenceTypeMovementType, m, "Deleted Movement Type "+m.Name)
}

func (c *ClienteFornecedor) AfterCreate(tx *gorm.DB) (err error) {
	return masterDataCreated(tx, c.BaseId, c.ID, ReferenceTypeClienteFornecedor, c, "Created Cliente/Fornecedor "+c.Name)
}

func (c *ClienteFornecedor) BeforeUpdate(tx *gorm.DB) (err error) {
	return masterDataUpdating(tx, c.BaseId, c.ID, ReferenceTypeClienteFornecedor, c, "Updated Cliente/Fornecedor "+c.Name)
}

func (c *ClienteFornecedor) AfterDelete(tx *gorm.DB) (err error) {
	return masterDataDeleted(tx, c.BaseId, c.ID, ReferenceTypeClienteFornecedor, c, "Deleted Cliente/Fornecedor "+c.Name)
}

func (t *Transaction) AfterCreate(tx *gorm.DB) (err error) {
	description := fmt.Sprintf("Created %s transaction of %s", t.Type, t.Amount.StringFixed(2))
	return SaveHistoryCreate(tx, t.ID, t, description)
}

func (t *Transaction) BeforeUpdate(tx *gorm.DB) (err error) {
	description := "Transaction Updated."
	if tx.Statement.Changed("Amount") {
		description += fmt.Sprintf(" Amount changed from %s.", t.Amount.StringFixed(2))
	}
	return SaveHistoryUpdate(tx, t.ID, t, description)
}

func (t *Transaction) AfterDelete(tx *gorm.DB) (err error) {
	return SaveHistoryDelete(tx, t.ID, t, "Deleted Transaction "+t.Description)
}

func (c *StoreClosing) AfterCreate(tx *gorm.DB) (err error) {
	description := fmt.Sprintf("Created closing of store %d for %s", c.StoreId, c.Date.Format("2006-01-02"))
	return SaveHistoryCreate(tx, c.ID, c, description)
}

func (c *StoreClosing) BeforeUpdate(tx *gorm.DB) (err error) {
	description := "Closing Updated."
	if tx.Statement.Changed("FinalBalance") {
		description += fmt.Sprintf(" Final balance changed from %s.", c.FinalBalance.StringFixed(2))
	}
	return SaveHistoryUpdate(tx, c.ID, c, description)
}

func (c *StoreClosing) AfterDelete(tx *gorm.DB) (err error) {
	return SaveHistoryDelete(tx, c.ID, c, fmt.Sprintf("Deleted closing of store %d for %s", c.StoreId, c.Date.Format("2006-01-02")))
}
