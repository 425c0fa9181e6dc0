package payment

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// PaymentMethod is a payment option offered at checkout
type PaymentMethod struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Surcharge   decimal.Decimal `json:"surcharge"`
	Active      bool            `json:"active"`
	Position    int             `json:"position"`
}

// Gateway loads payment methods in batches
type Gateway interface {
	// GetList returns the payment methods for ids, keyed by id.
	// Unknown ids are absent from the result.
	GetList(ctx context.Context, ids []int, tc shared.TranslationContext) (map[int]*PaymentMethod, error)
}
