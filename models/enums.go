package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/mmdatafocus/finance_backend/utils"
)

type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

func (e CategoryType) IsValid() bool {
	switch e {
	case CategoryTypeIncome, CategoryTypeExpense:
		return true
	}
	return false
}

// TransactionType mirrors CategoryType; a transaction's type must equal its category's.
type TransactionType = CategoryType

// MovementCategory partitions movement types for closing totals.
type MovementCategory string

const (
	MovementCategoryEntrada MovementCategory = "entrada"
	MovementCategorySaida   MovementCategory = "saida"
	MovementCategoryOutros  MovementCategory = "outros"
)

func (e MovementCategory) IsValid() bool {
	switch e {
	case MovementCategoryEntrada, MovementCategorySaida, MovementCategoryOutros:
		return true
	}
	return false
}

type BaseAccessRole string

const (
	BaseAccessRoleOwner  BaseAccessRole = "owner"
	BaseAccessRoleMember BaseAccessRole = "member"
)

func (e BaseAccessRole) IsValid() bool {
	return e == BaseAccessRoleOwner || e == BaseAccessRoleMember
}

// ReferenceType names the resource an outbox record or history row refers to.
type ReferenceType string

const (
	ReferenceTypeClientBase        ReferenceType = "CLIENT_BASE"
	ReferenceTypeUser              ReferenceType = "USER"
	ReferenceTypeStore             ReferenceType = "STORE"
	ReferenceTypeCategory          ReferenceType = "CATEGORY"
	ReferenceTypePaymentMethod     ReferenceType = "PAYMENT_METHOD"
	ReferenceTypeMovementType      ReferenceType = "MOVEMENT_TYPE"
	ReferenceTypeClienteFornecedor ReferenceType = "CLIENTE_FORNECEDOR"
	ReferenceTypeTransaction       ReferenceType = "TRANSACTION"
	ReferenceTypeStoreClosing      ReferenceType = "STORE_CLOSING"
)

type PubSubMessageAction string

const (
	PubSubMessageActionCreate PubSubMessageAction = "C"
	PubSubMessageActionUpdate PubSubMessageAction = "U"
	PubSubMessageActionDelete PubSubMessageAction = "D"
)

const dateLayout = "2006-01-02"

// MyDateString is a calendar date. It reads "2006-01-02" or RFC3339 and is
// always normalized to midnight UTC so date columns compare by day.
type MyDateString time.Time

func NewMyDate(t time.Time) MyDateString {
	return MyDateString(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC))
}

// ParseMyDate parses "2006-01-02", "2006-01-02T15:04:05" or RFC3339.
func ParseMyDate(s string) (MyDateString, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{dateLayout, "2006-01-02T15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return NewMyDate(t), nil
		}
	}
	return MyDateString{}, utils.Invalid("error parsing date, expected YYYY-MM-DD")
}

func (t MyDateString) Time() time.Time {
	return time.Time(t)
}

func (t MyDateString) String() string {
	return time.Time(t).Format(dateLayout)
}

func (t MyDateString) IsZero() bool {
	return time.Time(t).IsZero()
}

func (t MyDateString) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *MyDateString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return utils.Invalid("date must be a string")
	}
	d, err := ParseMyDate(s)
	if err != nil {
		return err
	}
	*t = d
	return nil
}

// StartOfDayUTCTime returns local midnight of the date in timezone, expressed in UTC.
func (t MyDateString) StartOfDayUTCTime(timezone string) (time.Time, error) {
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return time.Time{}, err
	}
	d := time.Time(t)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, location).UTC(), nil
}

// EndOfDayUTCTime returns the last instant of the date in timezone, expressed in UTC.
func (t MyDateString) EndOfDayUTCTime(timezone string) (time.Time, error) {
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return time.Time{}, err
	}
	d := time.Time(t)
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 999999999, location).UTC(), nil
}

// DateOnly normalizes t to midnight UTC, keeping its calendar day.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
