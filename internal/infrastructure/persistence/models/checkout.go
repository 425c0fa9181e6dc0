package models

import (
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/delivery"
	"github.com/storefront/backend/internal/domain/payment"
)

// PaymentMethodModel is the persistence model for payment methods
type PaymentMethodModel struct {
	ID          int             `gorm:"primaryKey"`
	Name        string          `gorm:"type:varchar(100);not null"`
	Description string          `gorm:"type:text"`
	Surcharge   decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	Active      bool            `gorm:"not null;default:true"`
	Position    int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (PaymentMethodModel) TableName() string {
	return "payment_methods"
}

// ToDomain converts the model to a domain payment method
func (m *PaymentMethodModel) ToDomain() *payment.PaymentMethod {
	return &payment.PaymentMethod{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Surcharge:   m.Surcharge,
		Active:      m.Active,
		Position:    m.Position,
	}
}

// DispatchModel is the persistence model for delivery methods
type DispatchModel struct {
	ID          int             `gorm:"primaryKey"`
	Name        string          `gorm:"type:varchar(100);not null"`
	Description string          `gorm:"type:text"`
	Cost        decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	Active      bool            `gorm:"not null;default:true"`
	Position    int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (DispatchModel) TableName() string {
	return "dispatches"
}

// ToDomain converts the model to a domain delivery method
func (m *DispatchModel) ToDomain() *delivery.DeliveryMethod {
	return &delivery.DeliveryMethod{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Cost:        m.Cost,
		Active:      m.Active,
		Position:    m.Position,
	}
}

// CustomerModel is the persistence model for customers
type CustomerModel struct {
	ID                       int    `gorm:"primaryKey"`
	Email                    string `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash             string `gorm:"type:varchar(255);not null"`
	FirstName                string `gorm:"type:varchar(100)"`
	LastName                 string `gorm:"type:varchar(100)"`
	CustomerGroupKey         string `gorm:"type:varchar(15);not null"`
	Active                   bool   `gorm:"not null;default:true"`
	DefaultBillingAddressID  *int
	DefaultShippingAddressID *int
	LastPaymentID            *int
	PresetPaymentID          *int
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the model to a domain customer without loaded references
func (m *CustomerModel) ToDomain() *customer.Customer {
	return &customer.Customer{
		ID:           m.ID,
		Email:        m.Email,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		GroupKey:     m.CustomerGroupKey,
		Active:       m.Active,
		PasswordHash: m.PasswordHash,
	}
}

// AddressIDs returns the non-nil default address ids
func (m *CustomerModel) AddressIDs() []int {
	return nonNil(m.DefaultBillingAddressID, m.DefaultShippingAddressID)
}

// PaymentIDs returns the non-nil payment method references
func (m *CustomerModel) PaymentIDs() []int {
	return nonNil(m.LastPaymentID, m.PresetPaymentID)
}

// AddressModel is the persistence model for customer addresses
type AddressModel struct {
	ID         int    `gorm:"primaryKey"`
	CustomerID int    `gorm:"not null;index"`
	Company    string `gorm:"type:varchar(255)"`
	FirstName  string `gorm:"type:varchar(100)"`
	LastName   string `gorm:"type:varchar(100)"`
	Street     string `gorm:"type:varchar(255)"`
	ZipCode    string `gorm:"type:varchar(20)"`
	City       string `gorm:"type:varchar(100)"`
	CountryID  int    `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AddressModel) TableName() string {
	return "customer_addresses"
}

// ToDomain converts the model to a domain address
func (m *AddressModel) ToDomain() *customer.Address {
	return &customer.Address{
		ID:         m.ID,
		CustomerID: m.CustomerID,
		Company:    m.Company,
		FirstName:  m.FirstName,
		LastName:   m.LastName,
		Street:     m.Street,
		ZipCode:    m.ZipCode,
		City:       m.City,
		CountryID:  m.CountryID,
	}
}

// TranslationModel holds translated fields of one object for one shop as JSON
type TranslationModel struct {
	ID         int    `gorm:"primaryKey"`
	ObjectType string `gorm:"type:varchar(50);not null"`
	ObjectKey  int    `gorm:"not null"`
	ShopID     int    `gorm:"not null"`
	Data       string `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (TranslationModel) TableName() string {
	return "translations"
}

func nonNil(values ...*int) []int {
	ids := make([]int, 0, len(values))
	for _, v := range values {
		if v != nil {
			ids = append(ids, *v)
		}
	}
	return ids
}
