package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shop"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

const shopColumns = `s.id AS shop_id, s.main_id AS shop_main_id, s.fallback_id AS shop_fallback_id,
	s.name AS shop_name, s.title AS shop_title, s.host AS shop_host,
	s.base_path AS shop_base_path, s.base_url AS shop_base_url,
	s.secure AS shop_secure, s.is_default AS shop_is_default,
	cur.id AS currency_id, cur.code AS currency_code, cur.name AS currency_name,
	cur.symbol AS currency_symbol, cur.factor AS currency_factor,
	loc.id AS locale_id, loc.code AS locale_code, loc.language AS locale_language, loc.territory AS locale_territory,
	cg.id AS customer_group_id, cg.group_key AS customer_group_key, cg.name AS customer_group_name,
	cg.display_gross AS customer_group_display_gross, cg.discount AS customer_group_discount,
	cat.id AS category_id, cat.name AS category_name, cat.path AS category_path,
	med.id AS media_id, med.name AS media_name, med.path AS media_path,
	co.id AS country_id, co.iso AS country_iso, co.name AS country_name, co.active AS country_active,
	ca.id AS area_id, ca.name AS area_name,
	pm.id AS payment_id, pm.name AS payment_name, pm.description AS payment_description,
	pm.surcharge AS payment_surcharge, pm.active AS payment_active, pm.position AS payment_position,
	d.id AS dispatch_id, d.name AS dispatch_name, d.description AS dispatch_description,
	d.cost AS dispatch_cost, d.active AS dispatch_active, d.position AS dispatch_position,
	tpl.id AS template_id, tpl.name AS template_name, tpl.version AS template_version`

// one row per shop; every other grouped key is a primary key so the
// selected columns are functionally dependent on it
const shopGroupBy = "s.id, cur.id, loc.id, cg.id, cat.id, med.id, co.id, ca.id, pm.id, d.id, tpl.id"

// GormShopReader reads fully hydrated shops with at most two queries
type GormShopReader struct {
	db           *gorm.DB
	hydrator     *ShopHydrator
	translations *translationLoader
}

// NewGormShopReader creates a new GormShopReader
func NewGormShopReader(db *gorm.DB, hydrator *ShopHydrator) *GormShopReader {
	if hydrator == nil {
		hydrator = NewShopHydrator(nil)
	}
	return &GormShopReader{
		db:           db,
		hydrator:     hydrator,
		translations: newTranslationLoader(db),
	}
}

// Read returns the shops for ids in the order of ids. A shop whose main shop
// was not requested gets it from one additional query; a main shop that is
// part of the same batch is reused.
func (r *GormShopReader) Read(ctx context.Context, ids []int, tc shared.TranslationContext) (*shop.Collection, error) {
	ids = shared.UniqueIDs(ids)
	if len(ids) == 0 {
		return shop.NewCollection(nil), nil
	}

	rows, err := r.fetch(ctx, ids)
	if err != nil {
		return nil, err
	}
	batch := indexShopRows(rows)

	requested := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		requested[id] = struct{}{}
	}
	var parentIDs []int
	for _, row := range rows {
		mainID := row.MainID()
		if mainID == 0 {
			continue
		}
		if _, ok := requested[mainID]; !ok {
			parentIDs = append(parentIDs, mainID)
		}
	}

	parents := map[int]*models.ShopRow{}
	if parentIDs = shared.UniqueIDs(parentIDs); len(parentIDs) > 0 {
		parentRows, err := r.fetch(ctx, parentIDs)
		if err != nil {
			return nil, err
		}
		parents = indexShopRows(parentRows)
	}

	hydrated := make(map[int]*shop.Shop, len(rows))
	for i := range rows {
		row := &rows[i]
		var parent *models.ShopRow
		if mainID := row.MainID(); mainID != 0 {
			if p, ok := parents[mainID]; ok {
				parent = p
			} else if p, ok := batch[mainID]; ok {
				parent = p
			}
		}
		s, err := r.hydrator.Hydrate(ctx, row, parent)
		if err != nil {
			return nil, err
		}
		hydrated[s.ID] = s
	}

	if tc.NeedsTranslation() {
		if err := r.translate(ctx, hydrated, tc); err != nil {
			return nil, err
		}
	}

	return shop.NewCollection(shared.OrderByIDs(ids, hydrated)), nil
}

func (r *GormShopReader) fetch(ctx context.Context, ids []int) ([]models.ShopRow, error) {
	var rows []models.ShopRow
	err := r.db.WithContext(ctx).
		Table("shops s").
		Select(shopColumns+", "+blockedGroupsExpr(r.db)+" AS category_blocked_groups").
		Joins("JOIN currencies cur ON cur.id = s.currency_id").
		Joins("JOIN locales loc ON loc.id = s.locale_id").
		Joins("JOIN customer_groups cg ON cg.id = s.customer_group_id").
		Joins("JOIN categories cat ON cat.id = s.category_id").
		Joins("JOIN countries co ON co.id = s.country_id").
		Joins("JOIN payment_methods pm ON pm.id = s.payment_id").
		Joins("JOIN dispatches d ON d.id = s.dispatch_id").
		Joins("LEFT JOIN country_areas ca ON ca.id = co.area_id").
		Joins("LEFT JOIN templates tpl ON tpl.id = s.template_id").
		Joins("LEFT JOIN media med ON med.id = cat.media_id").
		Joins("LEFT JOIN category_avoid_customer_groups acg ON acg.category_id = cat.id").
		Where("s.id IN ?", ids).
		Group(shopGroupBy).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("fetch shops %v: %w", ids, err)
	}
	return rows, nil
}

// blockedGroupsExpr aggregates the customer groups a category is hidden from
func blockedGroupsExpr(db *gorm.DB) string {
	if usesPostgres(db) {
		return "string_agg(DISTINCT CAST(acg.customer_group_id AS TEXT), ',')"
	}
	return "group_concat(DISTINCT acg.customer_group_id)"
}

func (r *GormShopReader) translate(ctx context.Context, shops map[int]*shop.Shop, tc shared.TranslationContext) error {
	var shopIDs, paymentIDs, dispatchIDs []int
	visit := func(fn func(*shop.Shop)) {
		for _, s := range shops {
			fn(s)
			if s.Parent != nil {
				fn(s.Parent)
			}
		}
	}
	visit(func(s *shop.Shop) {
		shopIDs = append(shopIDs, s.ID)
		paymentIDs = append(paymentIDs, s.PaymentMethod.ID)
		dispatchIDs = append(dispatchIDs, s.DeliveryMethod.ID)
	})

	names, err := r.translations.load(ctx, translationShop, shared.UniqueIDs(shopIDs), tc)
	if err != nil {
		return err
	}
	payments, err := r.translations.load(ctx, translationPayment, shared.UniqueIDs(paymentIDs), tc)
	if err != nil {
		return err
	}
	dispatches, err := r.translations.load(ctx, translationDispatch, shared.UniqueIDs(dispatchIDs), tc)
	if err != nil {
		return err
	}

	visit(func(s *shop.Shop) {
		s.Name = names.field(s.ID, "name", s.Name)
		s.Title = names.field(s.ID, "title", s.Title)
		pm, d := s.PaymentMethod, s.DeliveryMethod
		pm.Name = payments.field(pm.ID, "name", pm.Name)
		pm.Description = payments.field(pm.ID, "description", pm.Description)
		d.Name = dispatches.field(d.ID, "name", d.Name)
		d.Description = dispatches.field(d.ID, "description", d.Description)
	})
	return nil
}

func indexShopRows(rows []models.ShopRow) map[int]*models.ShopRow {
	index := make(map[int]*models.ShopRow, len(rows))
	for i := range rows {
		index[rows[i].ShopID] = &rows[i]
	}
	return index
}

// ShopHydrator maps shop rows to domain shops and resolves media URLs
type ShopHydrator struct {
	media shop.MediaURLResolver
}

// NewShopHydrator creates a hydrator. A nil resolver leaves media URLs empty.
func NewShopHydrator(media shop.MediaURLResolver) *ShopHydrator {
	return &ShopHydrator{media: media}
}

// Hydrate maps row and, if given, its main shop row. The parent is hydrated
// without a parent of its own.
func (h *ShopHydrator) Hydrate(ctx context.Context, row, parent *models.ShopRow) (*shop.Shop, error) {
	s, err := h.hydrateOne(ctx, row)
	if err != nil {
		return nil, err
	}
	if parent != nil {
		if s.Parent, err = h.hydrateOne(ctx, parent); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (h *ShopHydrator) hydrateOne(ctx context.Context, row *models.ShopRow) (*shop.Shop, error) {
	s := row.ToDomain()
	if m := s.Category.Media; m != nil && h.media != nil && strings.TrimSpace(m.Path) != "" {
		url, err := h.media.Resolve(ctx, m.Path)
		if err != nil {
			return nil, fmt.Errorf("resolve media %d of shop %d: %w", m.ID, s.ID, err)
		}
		m.URL = url
	}
	return s, nil
}
