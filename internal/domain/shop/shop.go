package shop

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/delivery"
	"github.com/storefront/backend/internal/domain/payment"
	"golang.org/x/text/language"
)

// Shop is a storefront instance. Language and sub shops reference a main shop
// through MainID; Parent holds the loaded main shop (one level only).
type Shop struct {
	ID             int                      `json:"id"`
	Name           string                   `json:"name"`
	Title          string                   `json:"title,omitempty"`
	Host           string                   `json:"host"`
	BasePath       string                   `json:"base_path,omitempty"`
	BaseURL        string                   `json:"base_url,omitempty"`
	Secure         bool                     `json:"secure"`
	IsDefault      bool                     `json:"is_default"`
	MainID         int                      `json:"main_id,omitempty"`
	FallbackID     int                      `json:"fallback_id,omitempty"`
	Parent         *Shop                    `json:"parent,omitempty"`
	Currency       *Currency                `json:"currency"`
	Locale         *Locale                  `json:"locale"`
	CustomerGroup  *CustomerGroup           `json:"customer_group"`
	Category       *Category                `json:"category"`
	Country        *Country                 `json:"country"`
	PaymentMethod  *payment.PaymentMethod   `json:"payment_method"`
	DeliveryMethod *delivery.DeliveryMethod `json:"delivery_method"`
	Template       *Template                `json:"template,omitempty"`
}

// IsMain reports whether the shop has no main shop of its own
func (s *Shop) IsMain() bool {
	return s.MainID == 0
}

// URL returns the absolute storefront URL
func (s *Shop) URL() string {
	scheme := "http"
	if s.Secure {
		scheme = "https"
	}
	host := s.Host
	if host == "" && s.Parent != nil {
		host = s.Parent.Host
	}
	path := s.BaseURL
	if path == "" {
		path = s.BasePath
	}
	return scheme + "://" + host + "/" + strings.TrimPrefix(path, "/")
}

// Currency is the shop currency
type Currency struct {
	ID     int             `json:"id"`
	Code   string          `json:"code"`
	Name   string          `json:"name"`
	Symbol string          `json:"symbol"`
	Factor decimal.Decimal `json:"factor"`
}

// Locale is the shop locale, e.g. de_DE
type Locale struct {
	ID        int    `json:"id"`
	Code      string `json:"code"`
	Language  string `json:"language"`
	Territory string `json:"territory"`
}

// Tag returns the BCP 47 tag for the locale, or language.Und if it is unparsable
func (l *Locale) Tag() language.Tag {
	if l == nil || l.Code == "" {
		return language.Und
	}
	tag, err := language.Parse(strings.ReplaceAll(l.Code, "_", "-"))
	if err != nil {
		return language.Und
	}
	return tag
}

// CustomerGroup defines price display rules for customers
type CustomerGroup struct {
	ID           int             `json:"id"`
	Key          string          `json:"key"`
	Name         string          `json:"name"`
	DisplayGross bool            `json:"display_gross"`
	Discount     decimal.Decimal `json:"discount"`
}

// Category is the root category of a shop
type Category struct {
	ID                      int    `json:"id"`
	Name                    string `json:"name"`
	Path                    string `json:"path,omitempty"`
	Media                   *Media `json:"media,omitempty"`
	BlockedCustomerGroupIDs []int  `json:"blocked_customer_group_ids,omitempty"`
}

// IsBlockedFor reports whether customers of the group may not see the category
func (c *Category) IsBlockedFor(groupID int) bool {
	for _, id := range c.BlockedCustomerGroupIDs {
		if id == groupID {
			return true
		}
	}
	return false
}

// Country is the default shop country
type Country struct {
	ID     int          `json:"id"`
	ISO    string       `json:"iso"`
	Name   string       `json:"name"`
	Active bool         `json:"active"`
	Area   *CountryArea `json:"area,omitempty"`
}

// CountryArea groups countries for shipping rules
type CountryArea struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Template is the storefront theme
type Template struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Version int    `json:"version"`
}

// Media is a stored file such as a category image
type Media struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
	URL  string `json:"url"`
}
