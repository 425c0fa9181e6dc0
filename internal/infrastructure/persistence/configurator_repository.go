package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/storefront/backend/internal/domain/configurator"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormConfiguratorRepository implements configurator.Repository using GORM
type GormConfiguratorRepository struct {
	db           *gorm.DB
	translations *translationLoader
}

// NewGormConfiguratorRepository creates a new GormConfiguratorRepository
func NewGormConfiguratorRepository(db *gorm.DB) *GormConfiguratorRepository {
	return &GormConfiguratorRepository{db: db, translations: newTranslationLoader(db)}
}

// FindSetByProduct loads the configurator set of a product with its groups and options
func (r *GormConfiguratorRepository) FindSetByProduct(ctx context.Context, productID int, tc shared.TranslationContext) (*configurator.Set, error) {
	var set models.ConfiguratorSetModel
	err := r.db.WithContext(ctx).
		Table("configurator_sets cs").
		Select("cs.id, cs.name, cs.type").
		Joins("JOIN products p ON p.configurator_set_id = cs.id").
		Where("p.id = ?", productID).
		Take(&set).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("configurator of product", productID)
		}
		return nil, fmt.Errorf("fetch configurator set: %w", err)
	}

	var groups []models.ConfiguratorGroupModel
	err = r.db.WithContext(ctx).
		Table("configurator_groups g").
		Select("g.id, g.name, g.description, g.position").
		Joins("JOIN configurator_set_groups sg ON sg.group_id = g.id").
		Where("sg.set_id = ?", set.ID).
		Find(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("fetch configurator groups: %w", err)
	}

	var options []models.ConfiguratorOptionModel
	err = r.db.WithContext(ctx).
		Table("configurator_options o").
		Select("o.id, o.group_id, o.name, o.position").
		Joins("JOIN configurator_set_options so ON so.option_id = o.id").
		Where("so.set_id = ?", set.ID).
		Find(&options).Error
	if err != nil {
		return nil, fmt.Errorf("fetch configurator options: %w", err)
	}

	result := &configurator.Set{ID: set.ID, Name: set.Name, Type: configurator.SetType(set.Type)}
	byGroup := make(map[int]*configurator.Group, len(groups))
	for i := range groups {
		g := groups[i].ToDomain()
		byGroup[g.ID] = g
		result.Groups = append(result.Groups, g)
	}
	for i := range options {
		if g, ok := byGroup[options[i].GroupID]; ok {
			g.Options = append(g.Options, options[i].ToDomain())
		}
	}

	if tc.NeedsTranslation() {
		if err := r.translateGroups(ctx, result.Groups, tc); err != nil {
			return nil, err
		}
	}
	result.SortByPosition()
	return result, nil
}

// FindVariants returns the variants of a product with their option ids
func (r *GormConfiguratorRepository) FindVariants(ctx context.Context, productID int) ([]*configurator.Variant, error) {
	var rows []models.VariantOptionRow
	err := r.db.WithContext(ctx).
		Table("product_variants pv").
		Select("pv.id AS variant_id, pv.product_id, pv.order_number, pv.active, r.option_id").
		Joins("LEFT JOIN configurator_option_relations r ON r.variant_id = pv.id").
		Where("pv.product_id = ?", productID).
		Order("pv.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("fetch variants of product %d: %w", productID, err)
	}

	var variants []*configurator.Variant
	byID := make(map[int]*configurator.Variant)
	for _, row := range rows {
		v, ok := byID[row.VariantID]
		if !ok {
			v = &configurator.Variant{ID: row.VariantID, ProductID: row.ProductID, Number: row.Number, Active: row.Active}
			byID[row.VariantID] = v
			variants = append(variants, v)
		}
		if row.OptionID != nil {
			v.OptionIDs = append(v.OptionIDs, *row.OptionID)
		}
	}
	return variants, nil
}

// FindVariantGroupsByNumbers returns, per order number, the groups of the
// variant each holding the variant's option
func (r *GormConfiguratorRepository) FindVariantGroupsByNumbers(ctx context.Context, numbers []string, tc shared.TranslationContext) (map[string][]*configurator.Group, error) {
	result := make(map[string][]*configurator.Group, len(numbers))
	if len(numbers) == 0 {
		return result, nil
	}

	var rows []models.VariantGroupRow
	err := r.db.WithContext(ctx).
		Table("product_variants pv").
		Select(`pv.order_number, g.id AS group_id, g.name AS group_name, g.description AS group_description,
			g.position AS group_position, o.id AS option_id, o.name AS option_name, o.position AS option_position`).
		Joins("JOIN configurator_option_relations r ON r.variant_id = pv.id").
		Joins("JOIN configurator_options o ON o.id = r.option_id").
		Joins("JOIN configurator_groups g ON g.id = o.group_id").
		Where("pv.order_number IN ?", numbers).
		Order("g.position ASC, g.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("fetch variant configurations: %w", err)
	}

	var groups []*configurator.Group
	for _, row := range rows {
		g := &configurator.Group{
			ID:          row.GroupID,
			Name:        row.GroupName,
			Description: row.GroupDescription,
			Position:    row.GroupPosition,
			Selected:    true,
			Options: []*configurator.Option{{
				ID:       row.OptionID,
				GroupID:  row.GroupID,
				Name:     row.OptionName,
				Position: row.OptionPosition,
				Selected: true,
				Active:   true,
			}},
		}
		groups = append(groups, g)
		result[row.Number] = append(result[row.Number], g)
	}

	if tc.NeedsTranslation() {
		if err := r.translateGroups(ctx, groups, tc); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *GormConfiguratorRepository) translateGroups(ctx context.Context, groups []*configurator.Group, tc shared.TranslationContext) error {
	var groupIDs, optionIDs []int
	for _, g := range groups {
		groupIDs = append(groupIDs, g.ID)
		for _, o := range g.Options {
			optionIDs = append(optionIDs, o.ID)
		}
	}

	groupTr, err := r.translations.load(ctx, translationConfiguratorGroup, shared.UniqueIDs(groupIDs), tc)
	if err != nil {
		return err
	}
	optionTr, err := r.translations.load(ctx, translationConfiguratorOpt, shared.UniqueIDs(optionIDs), tc)
	if err != nil {
		return err
	}

	for _, g := range groups {
		g.Name = groupTr.field(g.ID, "name", g.Name)
		g.Description = groupTr.field(g.ID, "description", g.Description)
		for _, o := range g.Options {
			o.Name = optionTr.field(o.ID, "name", o.Name)
		}
	}
	return nil
}
