package models

import (
	"strings"

	"github.com/mmdatafocus/finance_backend/utils"
)

// Address is embedded by Store and ClienteFornecedor.
type Address struct {
	Cep        string `gorm:"size:9" json:"cep"`
	Street     string `gorm:"size:255" json:"street"`
	Number     string `gorm:"size:20" json:"number"`
	Complement string `gorm:"size:100" json:"complement"`
	District   string `gorm:"size:100" json:"district"`
	City       string `gorm:"size:100" json:"city"`
	State      string `gorm:"size:2" json:"state"`
}

// normalize trims fields, keeps only CEP digits and upper-cases the UF.
func (a Address) normalize() (Address, error) {
	a.Cep = utils.OnlyDigits(a.Cep)
	if a.Cep != "" && len(a.Cep) != 8 {
		return a, utils.Invalid("cep must have 8 digits")
	}
	a.Street = strings.TrimSpace(a.Street)
	a.Number = strings.TrimSpace(a.Number)
	a.Complement = strings.TrimSpace(a.Complement)
	a.District = strings.TrimSpace(a.District)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.ToUpper(strings.TrimSpace(a.State))
	if a.State != "" && len(a.State) != 2 {
		return a, utils.Invalid("state must be a 2-letter UF")
	}
	return a, nil
}

// columns adds the address to an Updates map. gorm cannot bind the embedded
// struct as one value, so each column is set by name.
func (a Address) columns(fields map[string]interface{}) map[string]interface{} {
	fields["cep"] = a.Cep
	fields["street"] = a.Street
	fields["number"] = a.Number
	fields["complement"] = a.Complement
	fields["district"] = a.District
	fields["city"] = a.City
	fields["state"] = a.State
	return fields
}
