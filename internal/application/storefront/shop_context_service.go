package storefront

import (
	"context"
	"fmt"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shop"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// SettingDefaultShopID names the setting reported when the default shop is missing
const SettingDefaultShopID = "storefront.default_shop_id"

// untranslated skips the translation overlay of the Shop Reader
var untranslated = shared.TranslationContext{IsDefaultShop: true}

// ShopContextService builds shop contexts and exposes batch shop reads
type ShopContextService struct {
	reader        shop.Reader
	defaultShopID int
	metrics       *telemetry.StorefrontMetrics
	logger        *zap.Logger
}

// NewShopContextService creates a new ShopContextService. metrics may be nil.
func NewShopContextService(
	reader shop.Reader,
	defaultShopID int,
	metrics *telemetry.StorefrontMetrics,
	logger *zap.Logger,
) *ShopContextService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShopContextService{
		reader:        reader,
		defaultShopID: defaultShopID,
		metrics:       metrics,
		logger:        logger,
	}
}

// Get returns the context of shopID, or of the configured default shop when
// shopID is nil
func (s *ShopContextService) Get(ctx context.Context, shopID *int) (*shop.ShopContext, error) {
	id, explicit := s.defaultShopID, false
	if shopID != nil {
		id, explicit = *shopID, true
	}

	found, err := s.readOne(ctx, id, untranslated)
	if err != nil {
		return nil, err
	}
	if found == nil {
		if explicit {
			return nil, shared.NewNotFoundError("shop", id)
		}
		return nil, shared.NewConfigurationError(SettingDefaultShopID, "shop", id)
	}

	// a language shop is read again so its names come in its own language
	if tc := shop.TranslationContextFor(found); tc.NeedsTranslation() {
		translated, err := s.readOne(ctx, id, tc)
		if err != nil {
			return nil, err
		}
		if translated != nil {
			found = translated
		}
	}
	return shop.NewShopContext(found), nil
}

// List reads shops in the order of ids. Unknown ids are left out.
func (s *ShopContextService) List(ctx context.Context, ids []int, tc shared.TranslationContext) ([]*shop.Shop, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "shop_reader", "read")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrBatchSize, len(ids))

	shops, err := s.reader.Read(ctx, ids, tc)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("read shops: %w", err)
	}

	requested := len(shared.UniqueIDs(ids))
	s.metrics.RecordShopRead(ctx, requested, shops.Len())
	if shops.Len() < requested {
		s.logger.Debug("Some shops were not found",
			zap.Ints("requested", ids),
			zap.Ints("found", shops.IDs()),
		)
	}
	return shops.All(), nil
}

func (s *ShopContextService) readOne(ctx context.Context, id int, tc shared.TranslationContext) (*shop.Shop, error) {
	shops, err := s.reader.Read(ctx, []int{id}, tc)
	if err != nil {
		return nil, fmt.Errorf("read shop %d: %w", id, err)
	}
	return shops.Get(id), nil
}
