package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/delivery"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPaymentMethodGateway implements payment.Gateway using GORM
type GormPaymentMethodGateway struct {
	db           *gorm.DB
	translations *translationLoader
}

// NewGormPaymentMethodGateway creates a new GormPaymentMethodGateway
func NewGormPaymentMethodGateway(db *gorm.DB) *GormPaymentMethodGateway {
	return &GormPaymentMethodGateway{db: db, translations: newTranslationLoader(db)}
}

// GetList returns payment methods keyed by id
func (g *GormPaymentMethodGateway) GetList(ctx context.Context, ids []int, tc shared.TranslationContext) (map[int]*payment.PaymentMethod, error) {
	ids = shared.UniqueIDs(ids)
	result := make(map[int]*payment.PaymentMethod, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var rows []models.PaymentMethodModel
	if err := g.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("fetch payment methods: %w", err)
	}
	tr, err := g.translations.load(ctx, translationPayment, ids, tc)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		pm := rows[i].ToDomain()
		pm.Name = tr.field(pm.ID, "name", pm.Name)
		pm.Description = tr.field(pm.ID, "description", pm.Description)
		result[pm.ID] = pm
	}
	return result, nil
}

// GormDeliveryMethodGateway implements delivery.Gateway using GORM
type GormDeliveryMethodGateway struct {
	db           *gorm.DB
	translations *translationLoader
}

// NewGormDeliveryMethodGateway creates a new GormDeliveryMethodGateway
func NewGormDeliveryMethodGateway(db *gorm.DB) *GormDeliveryMethodGateway {
	return &GormDeliveryMethodGateway{db: db, translations: newTranslationLoader(db)}
}

// GetList returns delivery methods keyed by id
func (g *GormDeliveryMethodGateway) GetList(ctx context.Context, ids []int, tc shared.TranslationContext) (map[int]*delivery.DeliveryMethod, error) {
	ids = shared.UniqueIDs(ids)
	result := make(map[int]*delivery.DeliveryMethod, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var rows []models.DispatchModel
	if err := g.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("fetch delivery methods: %w", err)
	}
	tr, err := g.translations.load(ctx, translationDispatch, ids, tc)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		d := rows[i].ToDomain()
		d.Name = tr.field(d.ID, "name", d.Name)
		d.Description = tr.field(d.ID, "description", d.Description)
		result[d.ID] = d
	}
	return result, nil
}

// GormAddressGateway implements customer.AddressGateway using GORM
type GormAddressGateway struct {
	db *gorm.DB
}

// NewGormAddressGateway creates a new GormAddressGateway
func NewGormAddressGateway(db *gorm.DB) *GormAddressGateway {
	return &GormAddressGateway{db: db}
}

// GetList returns addresses keyed by id. Addresses are not translated.
func (g *GormAddressGateway) GetList(ctx context.Context, ids []int, _ shared.TranslationContext) (map[int]*customer.Address, error) {
	ids = shared.UniqueIDs(ids)
	result := make(map[int]*customer.Address, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var rows []models.AddressModel
	if err := g.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("fetch addresses: %w", err)
	}
	for i := range rows {
		result[rows[i].ID] = rows[i].ToDomain()
	}
	return result, nil
}

// GormCustomerGateway implements customer.Gateway using GORM
type GormCustomerGateway struct {
	db        *gorm.DB
	addresses *GormAddressGateway
	payments  *GormPaymentMethodGateway
}

// NewGormCustomerGateway creates a new GormCustomerGateway
func NewGormCustomerGateway(db *gorm.DB) *GormCustomerGateway {
	return &GormCustomerGateway{
		db:        db,
		addresses: NewGormAddressGateway(db),
		payments:  NewGormPaymentMethodGateway(db),
	}
}

// GetList returns customers keyed by id with default addresses and payment
// method references loaded. It issues one query per referenced table.
func (g *GormCustomerGateway) GetList(ctx context.Context, ids []int, tc shared.TranslationContext) (map[int]*customer.Customer, error) {
	ids = shared.UniqueIDs(ids)
	result := make(map[int]*customer.Customer, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var rows []models.CustomerModel
	if err := g.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("fetch customers: %w", err)
	}
	if err := g.attach(ctx, rows, tc, result); err != nil {
		return nil, err
	}
	return result, nil
}

// FindByEmail finds an active customer by email, case-insensitively
func (g *GormCustomerGateway) FindByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	var row models.CustomerModel
	err := g.db.WithContext(ctx).
		Where("LOWER(email) = ? AND active = ?", strings.ToLower(strings.TrimSpace(email)), true).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("find customer by email: %w", err)
	}

	result := make(map[int]*customer.Customer, 1)
	if err := g.attach(ctx, []models.CustomerModel{row}, shared.TranslationContext{}, result); err != nil {
		return nil, err
	}
	return result[row.ID], nil
}

func (g *GormCustomerGateway) attach(ctx context.Context, rows []models.CustomerModel, tc shared.TranslationContext, result map[int]*customer.Customer) error {
	var addressIDs, paymentIDs []int
	for i := range rows {
		addressIDs = append(addressIDs, rows[i].AddressIDs()...)
		paymentIDs = append(paymentIDs, rows[i].PaymentIDs()...)
	}

	addresses, err := g.addresses.GetList(ctx, addressIDs, tc)
	if err != nil {
		return err
	}
	payments, err := g.payments.GetList(ctx, paymentIDs, tc)
	if err != nil {
		return err
	}

	for i := range rows {
		row := &rows[i]
		c := row.ToDomain()
		if row.DefaultBillingAddressID != nil {
			c.DefaultBillingAddress = addresses[*row.DefaultBillingAddressID]
		}
		if row.DefaultShippingAddressID != nil {
			c.DefaultShippingAddress = addresses[*row.DefaultShippingAddressID]
		}
		if row.LastPaymentID != nil {
			c.LastPaymentMethod = payments[*row.LastPaymentID]
		}
		if row.PresetPaymentID != nil {
			c.PresetPaymentMethod = payments[*row.PresetPaymentID]
		}
		result[c.ID] = c
	}
	return nil
}
