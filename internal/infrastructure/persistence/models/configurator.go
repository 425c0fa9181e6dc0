package models

import "github.com/storefront/backend/internal/domain/configurator"

// ConfiguratorSetModel is the persistence model for configurator sets
type ConfiguratorSetModel struct {
	ID   int    `gorm:"primaryKey"`
	Name string `gorm:"type:varchar(255);not null"`
	Type int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ConfiguratorSetModel) TableName() string {
	return "configurator_sets"
}

// ConfiguratorGroupModel is the persistence model for configurator groups
type ConfiguratorGroupModel struct {
	ID          int    `gorm:"primaryKey"`
	Name        string `gorm:"type:varchar(255);not null"`
	Description string `gorm:"type:text"`
	Position    int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ConfiguratorGroupModel) TableName() string {
	return "configurator_groups"
}

// ToDomain converts the model to a group without options
func (m *ConfiguratorGroupModel) ToDomain() *configurator.Group {
	return &configurator.Group{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Position:    m.Position,
	}
}

// ConfiguratorOptionModel is the persistence model for configurator options
type ConfiguratorOptionModel struct {
	ID       int    `gorm:"primaryKey"`
	GroupID  int    `gorm:"not null"`
	Name     string `gorm:"type:varchar(255);not null"`
	Position int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ConfiguratorOptionModel) TableName() string {
	return "configurator_options"
}

// ToDomain converts the model to a domain option
func (m *ConfiguratorOptionModel) ToDomain() *configurator.Option {
	return &configurator.Option{
		ID:       m.ID,
		GroupID:  m.GroupID,
		Name:     m.Name,
		Position: m.Position,
	}
}

// VariantOptionRow is one (variant, option) pair joined with variant data
type VariantOptionRow struct {
	VariantID int    `gorm:"column:variant_id"`
	ProductID int    `gorm:"column:product_id"`
	Number    string `gorm:"column:order_number"`
	Active    bool   `gorm:"column:active"`
	OptionID  *int   `gorm:"column:option_id"`
}

// VariantGroupRow is one option of a variant joined with its group
type VariantGroupRow struct {
	Number           string `gorm:"column:order_number"`
	GroupID          int    `gorm:"column:group_id"`
	GroupName        string `gorm:"column:group_name"`
	GroupDescription string `gorm:"column:group_description"`
	GroupPosition    int    `gorm:"column:group_position"`
	OptionID         int    `gorm:"column:option_id"`
	OptionName       string `gorm:"column:option_name"`
	OptionPosition   int    `gorm:"column:option_position"`
}
