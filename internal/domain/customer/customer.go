package customer

import (
	"context"

	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
)

// Customer is a registered storefront account.
// Addresses and payment methods are loaded references, not owned data.
type Customer struct {
	ID                     int                    `json:"id"`
	Email                  string                 `json:"email"`
	FirstName              string                 `json:"first_name"`
	LastName               string                 `json:"last_name"`
	GroupKey               string                 `json:"group_key"`
	Active                 bool                   `json:"active"`
	PasswordHash           string                 `json:"-"`
	DefaultBillingAddress  *Address               `json:"default_billing_address,omitempty"`
	DefaultShippingAddress *Address               `json:"default_shipping_address,omitempty"`
	LastPaymentMethod      *payment.PaymentMethod `json:"last_payment_method,omitempty"`
	PresetPaymentMethod    *payment.PaymentMethod `json:"preset_payment_method,omitempty"`
}

// FullName returns the display name
func (c *Customer) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	default:
		return c.FirstName + " " + c.LastName
	}
}

// OwnsAddress reports whether the address belongs to this customer
func (c *Customer) OwnsAddress(a *Address) bool {
	return a != nil && a.CustomerID == c.ID
}

// Address is a postal address of a customer
type Address struct {
	ID         int    `json:"id"`
	CustomerID int    `json:"customer_id"`
	Company    string `json:"company,omitempty"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Street     string `json:"street"`
	ZipCode    string `json:"zip_code"`
	City       string `json:"city"`
	CountryID  int    `json:"country_id"`
}

// Gateway loads customers in batches
type Gateway interface {
	// GetList returns customers for ids, keyed by id, with default addresses
	// and payment method references populated.
	GetList(ctx context.Context, ids []int, tc shared.TranslationContext) (map[int]*Customer, error)

	// FindByEmail finds an active customer by email. Returns shared.ErrNotFound if none exists.
	FindByEmail(ctx context.Context, email string) (*Customer, error)
}

// AddressGateway loads addresses in batches
type AddressGateway interface {
	GetList(ctx context.Context, ids []int, tc shared.TranslationContext) (map[int]*Address, error)
}
