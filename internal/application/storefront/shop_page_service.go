package storefront

import (
	"context"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shop"
)

// ShopPageService serves static shop pages
type ShopPageService struct {
	pages shop.PageReader
}

// NewShopPageService creates a new ShopPageService
func NewShopPageService(pages shop.PageReader) *ShopPageService {
	return &ShopPageService{pages: pages}
}

// GetList returns the pages for ids, indexed by id. Pages restricted to other
// shops than tc.ShopID are left out.
func (s *ShopPageService) GetList(ctx context.Context, ids []int, tc shared.TranslationContext) (map[int]*shop.Page, error) {
	pages, err := s.pages.GetList(ctx, shared.UniqueIDs(ids), tc)
	if err != nil {
		return nil, err
	}
	for id, p := range pages {
		if tc.ShopID != 0 && !p.VisibleIn(tc.ShopID) {
			delete(pages, id)
		}
	}
	return pages, nil
}

// Ordered returns the pages of GetList in the order of ids
func (s *ShopPageService) Ordered(ctx context.Context, ids []int, tc shared.TranslationContext) ([]*shop.Page, error) {
	pages, err := s.GetList(ctx, ids, tc)
	if err != nil {
		return nil, err
	}
	return shared.OrderByIDs(shared.UniqueIDs(ids), pages), nil
}
