package shop

import (
	"context"

	"github.com/storefront/backend/internal/domain/shared"
)

// ShopContext is the resolved runtime configuration of the current storefront
type ShopContext struct {
	Shop               *Shop                     `json:"shop"`
	Currency           *Currency                 `json:"currency"`
	CustomerGroup      *CustomerGroup            `json:"customer_group"`
	Country            *Country                  `json:"country"`
	Area               *CountryArea              `json:"area,omitempty"`
	TranslationContext shared.TranslationContext `json:"translation_context"`
}

// NewShopContext derives the context from a hydrated shop
func NewShopContext(s *Shop) *ShopContext {
	ctx := &ShopContext{
		Shop:               s,
		Currency:           s.Currency,
		CustomerGroup:      s.CustomerGroup,
		Country:            s.Country,
		TranslationContext: TranslationContextFor(s),
	}
	if s.Country != nil {
		ctx.Area = s.Country.Area
	}
	return ctx
}

// TranslationContextFor builds the translation context of a shop
func TranslationContextFor(s *Shop) shared.TranslationContext {
	return shared.TranslationContext{
		ShopID:        s.ID,
		IsDefaultShop: s.IsDefault,
		FallbackID:    s.FallbackID,
	}
}

// Reader loads fully hydrated shops
type Reader interface {
	// Read returns the shops for ids in the order of ids.
	// Ids that do not exist are absent from the collection.
	Read(ctx context.Context, ids []int, tc shared.TranslationContext) (*Collection, error)
}

// ContextProvider resolves the shop context for the current session
type ContextProvider interface {
	Get(ctx context.Context, shopID *int) (*ShopContext, error)
}

// MediaURLResolver turns a stored media path into a URL clients can fetch
type MediaURLResolver interface {
	Resolve(ctx context.Context, path string) (string, error)
}
