package models

import (
	"github.com/mmdatafocus/finance_backend/config"
)

func MigrateTable() error {
	db := config.GetDB()

	return db.AutoMigrate(
		&ClientBase{}, &User{}, &UserBaseAccess{},
		&Store{}, &Category{}, &PaymentMethod{}, &MovementType{}, &ClienteFornecedor{},
		&Transaction{}, &StoreClosing{}, &MovementItem{}, &Document{},
		&StoreDailySummary{},
		&History{},
		&PubSubMessageRecord{}, &IdempotencyKey{},
	)
}
