package checkout

import (
	"context"
	"errors"
)

// ErrSessionNotFound is returned by stores that distinguish unknown sessions
var ErrSessionNotFound = errors.New("session not found")

// SessionData is the checkout-relevant state of a storefront session.
// A nil field means the value was never set.
type SessionData struct {
	ShopID            *int `json:"shop_id,omitempty"`
	UserID            *int `json:"user_id,omitempty"`
	ShippingAddressID *int `json:"shipping_address_id,omitempty"`
	BillingAddressID  *int `json:"billing_address_id,omitempty"`
	DispatchID        *int `json:"dispatch_id,omitempty"`
	PaymentID         *int `json:"payment_id,omitempty"`
}

// IsLoggedIn reports whether a customer is attached to the session
func (s SessionData) IsLoggedIn() bool {
	return s.UserID != nil
}

// WithoutCustomer returns a copy with all customer-bound values cleared
func (s SessionData) WithoutCustomer() SessionData {
	s.UserID = nil
	s.ShippingAddressID = nil
	s.BillingAddressID = nil
	s.PaymentID = nil
	return s
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int {
	return &v
}

// SessionStore persists session data by session id
type SessionStore interface {
	// Load returns the data of the session. Unknown or expired sessions yield
	// empty data, not an error.
	Load(ctx context.Context, sessionID string) (*SessionData, error)

	// Save stores the data and refreshes the session lifetime
	Save(ctx context.Context, sessionID string, data *SessionData) error

	// Delete removes the session
	Delete(ctx context.Context, sessionID string) error
}
