package storefront

import (
	"context"
	"fmt"

	"github.com/storefront/backend/internal/domain/configurator"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
)

// ConfiguratorService computes variant configurators of products
type ConfiguratorService struct {
	repo configurator.Repository
}

// NewConfiguratorService creates a new ConfiguratorService
func NewConfiguratorService(repo configurator.Repository) *ConfiguratorService {
	return &ConfiguratorService{repo: repo}
}

// GetProductsConfigurations returns, per variant order number, the groups
// with the option the variant carries. Unknown numbers are absent.
func (s *ConfiguratorService) GetProductsConfigurations(ctx context.Context, numbers []string, tc shared.TranslationContext) (map[string][]*configurator.Group, error) {
	if len(numbers) == 0 {
		return map[string][]*configurator.Group{}, nil
	}
	return s.repo.FindVariantGroupsByNumbers(ctx, numbers, tc)
}

// GetProductConfigurator returns the configurator set of a product. selection
// maps group id to option id; an empty selection selects the options of the
// displayed variant. An option is active when an active variant carries it
// together with the selected options of every other group.
func (s *ConfiguratorService) GetProductConfigurator(
	ctx context.Context,
	product configurator.ProductRef,
	tc shared.TranslationContext,
	selection map[int]int,
) (*configurator.Set, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "configurator", "get")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrProductID, product.ID)

	set, err := s.repo.FindSetByProduct(ctx, product.ID, tc)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := validateSelection(set, selection); err != nil {
		return nil, err
	}

	variants, err := s.repo.FindVariants(ctx, product.ID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("load variants: %w", err)
	}

	if len(selection) == 0 {
		selection = variantSelection(set, displayedVariant(variants, product))
	}
	markSelected(set, selection)
	markActive(set, selection, variants)
	return set, nil
}

func validateSelection(set *configurator.Set, selection map[int]int) error {
	for groupID, optionID := range selection {
		g := set.Group(groupID)
		if g == nil {
			return shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("configurator group %d does not belong to the product", groupID))
		}
		if g.Option(optionID) == nil {
			return shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("option %d is not part of group %d", optionID, groupID))
		}
	}
	return nil
}

// displayedVariant finds the variant by id, then by number
func displayedVariant(variants []*configurator.Variant, product configurator.ProductRef) *configurator.Variant {
	for _, v := range variants {
		if product.VariantID != 0 && v.ID == product.VariantID {
			return v
		}
	}
	for _, v := range variants {
		if product.Number != "" && v.Number == product.Number {
			return v
		}
	}
	return nil
}

func variantSelection(set *configurator.Set, v *configurator.Variant) map[int]int {
	selection := map[int]int{}
	if v == nil {
		return selection
	}
	for _, optionID := range v.OptionIDs {
		for _, g := range set.Groups {
			if g.Option(optionID) != nil {
				selection[g.ID] = optionID
			}
		}
	}
	return selection
}

func markSelected(set *configurator.Set, selection map[int]int) {
	for _, g := range set.Groups {
		optionID, ok := selection[g.ID]
		g.Selected = ok
		for _, o := range g.Options {
			o.Selected = ok && o.ID == optionID
		}
	}
}

func markActive(set *configurator.Set, selection map[int]int, variants []*configurator.Variant) {
	for _, g := range set.Groups {
		others := make([]int, 0, len(selection))
		for groupID, optionID := range selection {
			if groupID != g.ID {
				others = append(others, optionID)
			}
		}
		for _, o := range g.Options {
			required := append(others[:len(others):len(others)], o.ID)
			o.Active = false
			for _, v := range variants {
				if v.Active && v.HasOptions(required) {
					o.Active = true
					break
				}
			}
		}
	}
}
