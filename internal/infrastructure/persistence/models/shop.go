package models

import (
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/delivery"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shop"
)

// ShopRow is one row of the aggregated shop query. Every joined table is
// flattened into prefixed columns; LEFT JOIN columns are nullable.
type ShopRow struct {
	ShopID        int    `gorm:"column:shop_id"`
	ShopMainID    *int   `gorm:"column:shop_main_id"`
	ShopFallback  *int   `gorm:"column:shop_fallback_id"`
	ShopName      string `gorm:"column:shop_name"`
	ShopTitle     string `gorm:"column:shop_title"`
	ShopHost      string `gorm:"column:shop_host"`
	ShopBasePath  string `gorm:"column:shop_base_path"`
	ShopBaseURL   string `gorm:"column:shop_base_url"`
	ShopSecure    bool   `gorm:"column:shop_secure"`
	ShopIsDefault bool   `gorm:"column:shop_is_default"`

	CurrencyID     int             `gorm:"column:currency_id"`
	CurrencyCode   string          `gorm:"column:currency_code"`
	CurrencyName   string          `gorm:"column:currency_name"`
	CurrencySymbol string          `gorm:"column:currency_symbol"`
	CurrencyFactor decimal.Decimal `gorm:"column:currency_factor"`

	LocaleID        int    `gorm:"column:locale_id"`
	LocaleCode      string `gorm:"column:locale_code"`
	LocaleLanguage  string `gorm:"column:locale_language"`
	LocaleTerritory string `gorm:"column:locale_territory"`

	CustomerGroupID           int             `gorm:"column:customer_group_id"`
	CustomerGroupKey          string          `gorm:"column:customer_group_key"`
	CustomerGroupName         string          `gorm:"column:customer_group_name"`
	CustomerGroupDisplayGross bool            `gorm:"column:customer_group_display_gross"`
	CustomerGroupDiscount     decimal.Decimal `gorm:"column:customer_group_discount"`

	CategoryID            int     `gorm:"column:category_id"`
	CategoryName          string  `gorm:"column:category_name"`
	CategoryPath          string  `gorm:"column:category_path"`
	CategoryBlockedGroups *string `gorm:"column:category_blocked_groups"`

	MediaID   *int    `gorm:"column:media_id"`
	MediaName *string `gorm:"column:media_name"`
	MediaPath *string `gorm:"column:media_path"`

	CountryID     int    `gorm:"column:country_id"`
	CountryISO    string `gorm:"column:country_iso"`
	CountryName   string `gorm:"column:country_name"`
	CountryActive bool   `gorm:"column:country_active"`

	AreaID   *int    `gorm:"column:area_id"`
	AreaName *string `gorm:"column:area_name"`

	PaymentID          int             `gorm:"column:payment_id"`
	PaymentName        string          `gorm:"column:payment_name"`
	PaymentDescription string          `gorm:"column:payment_description"`
	PaymentSurcharge   decimal.Decimal `gorm:"column:payment_surcharge"`
	PaymentActive      bool            `gorm:"column:payment_active"`
	PaymentPosition    int             `gorm:"column:payment_position"`

	DispatchID          int             `gorm:"column:dispatch_id"`
	DispatchName        string          `gorm:"column:dispatch_name"`
	DispatchDescription string          `gorm:"column:dispatch_description"`
	DispatchCost        decimal.Decimal `gorm:"column:dispatch_cost"`
	DispatchActive      bool            `gorm:"column:dispatch_active"`
	DispatchPosition    int             `gorm:"column:dispatch_position"`

	TemplateID      *int    `gorm:"column:template_id"`
	TemplateName    *string `gorm:"column:template_name"`
	TemplateVersion *int    `gorm:"column:template_version"`
}

// MainID returns the referenced main shop id, or 0
func (r *ShopRow) MainID() int {
	if r.ShopMainID == nil {
		return 0
	}
	return *r.ShopMainID
}

// ToDomain maps the row to a shop without parent and with unresolved media URLs
func (r *ShopRow) ToDomain() *shop.Shop {
	s := &shop.Shop{
		ID:        r.ShopID,
		Name:      r.ShopName,
		Title:     r.ShopTitle,
		Host:      r.ShopHost,
		BasePath:  r.ShopBasePath,
		BaseURL:   r.ShopBaseURL,
		Secure:    r.ShopSecure,
		IsDefault: r.ShopIsDefault,
		MainID:    r.MainID(),
		Currency: &shop.Currency{
			ID:     r.CurrencyID,
			Code:   r.CurrencyCode,
			Name:   r.CurrencyName,
			Symbol: r.CurrencySymbol,
			Factor: r.CurrencyFactor,
		},
		Locale: &shop.Locale{
			ID:        r.LocaleID,
			Code:      r.LocaleCode,
			Language:  r.LocaleLanguage,
			Territory: r.LocaleTerritory,
		},
		CustomerGroup: &shop.CustomerGroup{
			ID:           r.CustomerGroupID,
			Key:          r.CustomerGroupKey,
			Name:         r.CustomerGroupName,
			DisplayGross: r.CustomerGroupDisplayGross,
			Discount:     r.CustomerGroupDiscount,
		},
		Category: &shop.Category{
			ID:                      r.CategoryID,
			Name:                    r.CategoryName,
			Path:                    r.CategoryPath,
			BlockedCustomerGroupIDs: ParseIDList(deref(r.CategoryBlockedGroups)),
		},
		Country: &shop.Country{
			ID:     r.CountryID,
			ISO:    r.CountryISO,
			Name:   r.CountryName,
			Active: r.CountryActive,
		},
		PaymentMethod: &payment.PaymentMethod{
			ID:          r.PaymentID,
			Name:        r.PaymentName,
			Description: r.PaymentDescription,
			Surcharge:   r.PaymentSurcharge,
			Active:      r.PaymentActive,
			Position:    r.PaymentPosition,
		},
		DeliveryMethod: &delivery.DeliveryMethod{
			ID:          r.DispatchID,
			Name:        r.DispatchName,
			Description: r.DispatchDescription,
			Cost:        r.DispatchCost,
			Active:      r.DispatchActive,
			Position:    r.DispatchPosition,
		},
	}
	if r.ShopFallback != nil {
		s.FallbackID = *r.ShopFallback
	}
	if r.MediaID != nil {
		s.Category.Media = &shop.Media{
			ID:   *r.MediaID,
			Name: deref(r.MediaName),
			Path: deref(r.MediaPath),
		}
	}
	if r.AreaID != nil {
		s.Country.Area = &shop.CountryArea{ID: *r.AreaID, Name: deref(r.AreaName)}
	}
	if r.TemplateID != nil {
		s.Template = &shop.Template{ID: *r.TemplateID, Name: deref(r.TemplateName)}
		if r.TemplateVersion != nil {
			s.Template.Version = *r.TemplateVersion
		}
	}
	return s
}

// ParseIDList parses an aggregated, comma separated id list. Empty and
// malformed entries are skipped; the result is sorted ascending.
func ParseIDList(raw string) []int {
	if raw == "" {
		return nil
	}
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == '|' })
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || id <= 0 {
			continue
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}
