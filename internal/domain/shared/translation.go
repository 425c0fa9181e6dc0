package shared

// TranslationContext selects the language for localized fields.
// Gateways overlay translations for ShopID first, then FallbackID.
// Nothing is overlaid for the default shop, whose rows hold the base language.
type TranslationContext struct {
	ShopID        int  `json:"shop_id"`
	IsDefaultShop bool `json:"is_default_shop"`
	FallbackID    int  `json:"fallback_id,omitempty"`
}

// NeedsTranslation reports whether translated values must be loaded
func (tc TranslationContext) NeedsTranslation() bool {
	return !tc.IsDefaultShop && tc.ShopID > 0
}

// ShopIDs returns the shops to load translations for, in priority order
func (tc TranslationContext) ShopIDs() []int {
	if !tc.NeedsTranslation() {
		return nil
	}
	if tc.FallbackID > 0 && tc.FallbackID != tc.ShopID {
		return []int{tc.ShopID, tc.FallbackID}
	}
	return []int{tc.ShopID}
}
