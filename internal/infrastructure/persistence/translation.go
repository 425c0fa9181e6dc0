package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// Translation object types
const (
	translationShop              = "shop"
	translationPayment           = "payment"
	translationDispatch          = "dispatch"
	translationPage              = "page"
	translationConfiguratorGroup = "configurator_group"
	translationConfiguratorOpt   = "configurator_option"
)

// translations maps object key to translated field values
type translations map[int]map[string]string

// field returns the translated value of field for key, or fallback
func (t translations) field(key int, field, fallback string) string {
	if v, ok := t[key][field]; ok && v != "" {
		return v
	}
	return fallback
}

// translationLoader loads translated fields for the shops of a translation
// context. Shop-specific values win over fallback-shop values.
type translationLoader struct {
	db *gorm.DB
}

func newTranslationLoader(db *gorm.DB) *translationLoader {
	return &translationLoader{db: db}
}

func (l *translationLoader) load(ctx context.Context, objectType string, keys []int, tc shared.TranslationContext) (translations, error) {
	shopIDs := tc.ShopIDs()
	if len(shopIDs) == 0 || len(keys) == 0 {
		return translations{}, nil
	}

	var rows []models.TranslationModel
	err := l.db.WithContext(ctx).
		Where("object_type = ? AND object_key IN ? AND shop_id IN ?", objectType, keys, shopIDs).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load %s translations: %w", objectType, err)
	}

	result := make(translations, len(keys))
	// fallback rows first so shop rows overwrite them
	for _, pass := range []bool{true, false} {
		for _, row := range rows {
			if (row.ShopID != tc.ShopID) != pass {
				continue
			}
			var data map[string]string
			if err := json.Unmarshal([]byte(row.Data), &data); err != nil {
				return nil, fmt.Errorf("decode %s translation %d: %w", objectType, row.ObjectKey, err)
			}
			if result[row.ObjectKey] == nil {
				result[row.ObjectKey] = make(map[string]string, len(data))
			}
			for k, v := range data {
				result[row.ObjectKey][k] = v
			}
		}
	}
	return result, nil
}
