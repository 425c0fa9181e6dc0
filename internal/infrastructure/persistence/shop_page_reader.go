package persistence

import (
	"context"
	"fmt"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shop"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormShopPageReader implements shop.PageReader using GORM
type GormShopPageReader struct {
	db           *gorm.DB
	translations *translationLoader
}

// NewGormShopPageReader creates a new GormShopPageReader
func NewGormShopPageReader(db *gorm.DB) *GormShopPageReader {
	return &GormShopPageReader{db: db, translations: newTranslationLoader(db)}
}

// GetList returns pages keyed by id. Parents outside the requested ids are
// loaded with one extra query; children are attached as ids.
func (r *GormShopPageReader) GetList(ctx context.Context, ids []int, tc shared.TranslationContext) (map[int]*shop.Page, error) {
	ids = shared.UniqueIDs(ids)
	result := make(map[int]*shop.Page, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	pages, err := r.fetch(ctx, ids)
	if err != nil {
		return nil, err
	}

	var parentIDs []int
	for _, p := range pages {
		if p.ParentID != 0 {
			if _, ok := pages[p.ParentID]; !ok {
				parentIDs = append(parentIDs, p.ParentID)
			}
		}
	}
	parents := map[int]*shop.Page{}
	if parentIDs = shared.UniqueIDs(parentIDs); len(parentIDs) > 0 {
		if parents, err = r.fetch(ctx, parentIDs); err != nil {
			return nil, err
		}
	}

	if err := r.attachChildren(ctx, pages); err != nil {
		return nil, err
	}

	if tc.NeedsTranslation() {
		all := make([]*shop.Page, 0, len(pages)+len(parents))
		for _, p := range pages {
			all = append(all, p)
		}
		for _, p := range parents {
			all = append(all, p)
		}
		if err := r.translate(ctx, all, tc); err != nil {
			return nil, err
		}
	}

	for id, p := range pages {
		if p.ParentID != 0 {
			if parent, ok := parents[p.ParentID]; ok {
				p.Parent = parent
			} else if parent, ok := pages[p.ParentID]; ok {
				p.Parent = parent
			}
		}
		result[id] = p
	}
	return result, nil
}

func (r *GormShopPageReader) fetch(ctx context.Context, ids []int) (map[int]*shop.Page, error) {
	var rows []models.ShopPageModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("fetch shop pages: %w", err)
	}
	pages := make(map[int]*shop.Page, len(rows))
	for i := range rows {
		pages[rows[i].ID] = rows[i].ToDomain()
	}
	return pages, nil
}

func (r *GormShopPageReader) attachChildren(ctx context.Context, pages map[int]*shop.Page) error {
	ids := make([]int, 0, len(pages))
	for id := range pages {
		ids = append(ids, id)
	}

	var children []models.ShopPageModel
	err := r.db.WithContext(ctx).
		Select("id", "parent_id").
		Where("parent_id IN ?", ids).
		Order("position ASC, id ASC").
		Find(&children).Error
	if err != nil {
		return fmt.Errorf("fetch shop page children: %w", err)
	}
	for _, child := range children {
		if child.ParentID == nil {
			continue
		}
		if p, ok := pages[*child.ParentID]; ok {
			p.ChildrenIDs = append(p.ChildrenIDs, child.ID)
		}
	}
	return nil
}

func (r *GormShopPageReader) translate(ctx context.Context, pages []*shop.Page, tc shared.TranslationContext) error {
	ids := make([]int, len(pages))
	for i, p := range pages {
		ids[i] = p.ID
	}
	tr, err := r.translations.load(ctx, translationPage, shared.UniqueIDs(ids), tc)
	if err != nil {
		return err
	}
	for _, p := range pages {
		p.Title = tr.field(p.ID, "title", p.Title)
		p.Content = tr.field(p.ID, "content", p.Content)
		p.Link = tr.field(p.ID, "link", p.Link)
	}
	return nil
}
