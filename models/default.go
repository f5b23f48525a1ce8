package models

import (
	_ "embed"

	"github.com/mmdatafocus/finance_backend/utils"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type DefaultCategory struct {
	Name  string       `yaml:"name"`
	Type  CategoryType `yaml:"type"`
	Icon  string       `yaml:"icon"`
	Color string       `yaml:"color"`
}

type DefaultMovementType struct {
	Name     string           `yaml:"name"`
	Category MovementCategory `yaml:"category"`
}

type DefaultStore struct {
	Name string `yaml:"name"`
	Code string `yaml:"code"`
}

// BaseDefaults is the seed data written when a client base is created.
type BaseDefaults struct {
	Categories     []DefaultCategory     `yaml:"categories"`
	MovementTypes  []DefaultMovementType `yaml:"movement_types"`
	PaymentMethods []string              `yaml:"payment_methods"`
	DefaultStore   DefaultStore          `yaml:"default_store"`
}

func GetBaseDefaults() (*BaseDefaults, error) {
	var defaults BaseDefaults
	if err := yaml.Unmarshal(defaultsYAML, &defaults); err != nil {
		return nil, err
	}
	return &defaults, nil
}

func CreateDefaultCategories(tx *gorm.DB, baseId string, defaults *BaseDefaults) error {
	if len(defaults.Categories) == 0 {
		return nil
	}
	categories := make([]*Category, 0, len(defaults.Categories))
	for _, c := range defaults.Categories {
		categories = append(categories, &Category{
			BaseId:   baseId,
			Name:     c.Name,
			Type:     c.Type,
			Icon:     c.Icon,
			Color:    c.Color,
			IsActive: utils.NewTrue(),
		})
	}
	return tx.Create(&categories).Error
}

func CreateDefaultMovementTypes(tx *gorm.DB, baseId string, defaults *BaseDefaults) error {
	if len(defaults.MovementTypes) == 0 {
		return nil
	}
	movementTypes := make([]*MovementType, 0, len(defaults.MovementTypes))
	for _, m := range defaults.MovementTypes {
		movementTypes = append(movementTypes, &MovementType{
			BaseId:   baseId,
			Name:     m.Name,
			Category: m.Category,
			IsActive: utils.NewTrue(),
		})
	}
	return tx.Create(&movementTypes).Error
}

func CreateDefaultPaymentMethods(tx *gorm.DB, baseId string, defaults *BaseDefaults) error {
	if len(defaults.PaymentMethods) == 0 {
		return nil
	}
	paymentMethods := make([]*PaymentMethod, 0, len(defaults.PaymentMethods))
	for _, name := range defaults.PaymentMethods {
		paymentMethods = append(paymentMethods, &PaymentMethod{
			BaseId:   baseId,
			Name:     name,
			IsActive: utils.NewTrue(),
		})
	}
	return tx.Create(&paymentMethods).Error
}

// CreateDefaultStore creates the base's default matriz store.
func CreateDefaultStore(tx *gorm.DB, baseId string, defaults *BaseDefaults) (*Store, error) {
	name := defaults.DefaultStore.Name
	if name == "" {
		name = "Matriz"
	}
	store := Store{
		BaseId:    baseId,
		Name:      name,
		Code:      defaults.DefaultStore.Code,
		IsDefault: utils.NewTrue(),
		IsMatriz:  utils.NewTrue(),
		IsActive:  utils.NewTrue(),
	}
	if err := tx.Create(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}
