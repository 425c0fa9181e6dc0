package configurator

import (
	"context"
	"sort"

	"github.com/storefront/backend/internal/domain/shared"
)

// SetType controls how the storefront renders a configurator
type SetType int

const (
	SetTypeStandard  SetType = 0
	SetTypeSelection SetType = 1
	SetTypePicture   SetType = 2
)

// Set is the variant configurator of a product
type Set struct {
	ID     int      `json:"id"`
	Name   string   `json:"name"`
	Type   SetType  `json:"type"`
	Groups []*Group `json:"groups"`
}

// Group is a variant dimension such as "size"
type Group struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Position    int       `json:"position"`
	Selected    bool      `json:"selected"`
	Options     []*Option `json:"options"`
}

// Option is one value of a group such as "XL"
type Option struct {
	ID       int    `json:"id"`
	GroupID  int    `json:"group_id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
	Selected bool   `json:"selected"`
	Active   bool   `json:"active"`
}

// Variant is a purchasable combination of options
type Variant struct {
	ID        int    `json:"id"`
	ProductID int    `json:"product_id"`
	Number    string `json:"number"`
	Active    bool   `json:"active"`
	OptionIDs []int  `json:"option_ids"`
}

// HasOptions reports whether the variant carries every option in ids
func (v *Variant) HasOptions(ids []int) bool {
	for _, id := range ids {
		found := false
		for _, own := range v.OptionIDs {
			if own == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// ProductRef identifies the product and the variant currently displayed
type ProductRef struct {
	ID        int    `json:"id"`
	VariantID int    `json:"variant_id"`
	Number    string `json:"number"`
}

// Group returns the group with id, or nil
func (s *Set) Group(id int) *Group {
	for _, g := range s.Groups {
		if g.ID == id {
			return g
		}
	}
	return nil
}

// Option returns the option with id, or nil
func (g *Group) Option(id int) *Option {
	for _, o := range g.Options {
		if o.ID == id {
			return o
		}
	}
	return nil
}

// SortByPosition orders groups and their options by position, then id
func (s *Set) SortByPosition() {
	sort.SliceStable(s.Groups, func(i, j int) bool {
		return less(s.Groups[i].Position, s.Groups[i].ID, s.Groups[j].Position, s.Groups[j].ID)
	})
	for _, g := range s.Groups {
		sort.SliceStable(g.Options, func(i, j int) bool {
			return less(g.Options[i].Position, g.Options[i].ID, g.Options[j].Position, g.Options[j].ID)
		})
	}
}

func less(posA, idA, posB, idB int) bool {
	if posA != posB {
		return posA < posB
	}
	return idA < idB
}

// Repository loads configurator data
type Repository interface {
	// FindSetByProduct returns the set with all groups and options of the product.
	// Returns shared.ErrNotFound if the product has no configurator.
	FindSetByProduct(ctx context.Context, productID int, tc shared.TranslationContext) (*Set, error)

	// FindVariants returns all variants of the product with their option ids
	FindVariants(ctx context.Context, productID int) ([]*Variant, error)

	// FindVariantGroupsByNumbers returns, per variant number, the groups of the
	// variant each holding the single option the variant carries
	FindVariantGroupsByNumbers(ctx context.Context, numbers []string, tc shared.TranslationContext) (map[string][]*Group, error)
}
