package utils

import (
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
	hexColor     = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

// Validator returns the shared validator with the domain rules registered:
//   - cpfcnpj: a valid CPF or CNPJ
//   - cnpj: a valid CNPJ
//   - brphone: a valid BR phone number
//   - hexcolor6: #RRGGBB
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("cpfcnpj", func(fl validator.FieldLevel) bool {
			return DocumentType(fl.Field().String()) != ""
		})
		_ = validate.RegisterValidation("cnpj", func(fl validator.FieldLevel) bool {
			return IsValidCNPJ(fl.Field().String())
		})
		_ = validate.RegisterValidation("brphone", func(fl validator.FieldLevel) bool {
			return ValidatePhoneNumber(fl.Field().String(), CountryCode) == nil
		})
		_ = validate.RegisterValidation("hexcolor6", func(fl validator.FieldLevel) bool {
			return hexColor.MatchString(fl.Field().String())
		})
	})
	return validate
}

// ValidateStruct runs the shared validator over s.
func ValidateStruct(s any) error {
	return Validator().Struct(s)
}
