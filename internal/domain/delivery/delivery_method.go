package delivery

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// DeliveryMethod is a shipping option (historically "dispatch")
type DeliveryMethod struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Cost        decimal.Decimal `json:"cost"`
	Active      bool            `json:"active"`
	Position    int             `json:"position"`
}

// Gateway loads delivery methods in batches
type Gateway interface {
	// GetList returns the delivery methods for ids, keyed by id.
	GetList(ctx context.Context, ids []int, tc shared.TranslationContext) (map[int]*DeliveryMethod, error)
}
