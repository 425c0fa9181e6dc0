package shop

import (
	"context"

	"github.com/storefront/backend/internal/domain/shared"
)

// Page is a static content page (imprint, terms, ...)
type Page struct {
	ID          int    `json:"id"`
	Key         string `json:"key,omitempty"`
	Title       string `json:"title"`
	Content     string `json:"content,omitempty"`
	Link        string `json:"link,omitempty"`
	ParentID    int    `json:"parent_id,omitempty"`
	Parent      *Page  `json:"parent,omitempty"`
	ChildrenIDs []int  `json:"children_ids,omitempty"`
	ShopIDs     []int  `json:"shop_ids,omitempty"`
	Position    int    `json:"position"`
}

// VisibleIn reports whether the page is assigned to the shop. Pages without
// assignments are visible everywhere.
func (p *Page) VisibleIn(shopID int) bool {
	if len(p.ShopIDs) == 0 {
		return true
	}
	for _, id := range p.ShopIDs {
		if id == shopID {
			return true
		}
	}
	return false
}

// PageReader loads pages in batches
type PageReader interface {
	// GetList returns pages keyed by id with their parent resolved
	GetList(ctx context.Context, ids []int, tc shared.TranslationContext) (map[int]*Page, error)
}
