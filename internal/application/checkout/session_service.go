package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/storefront/backend/internal/domain/checkout"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/delivery"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shop"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// PasswordVerifier checks a plain password against a stored hash
type PasswordVerifier interface {
	Verify(hash, password string) bool
}

// ErrInvalidCredentials is returned for unknown emails and wrong passwords alike
var ErrInvalidCredentials = shared.NewDomainError(shared.CodeUnauthorized, "Invalid email or password")

// ErrLoginRequired is returned when an operation needs a logged-in customer
var ErrLoginRequired = shared.NewDomainError(shared.CodeUnauthorized, "Login required")

// SessionService changes the checkout selections stored in a session
type SessionService struct {
	store      checkout.SessionStore
	customers  customer.Gateway
	addresses  customer.AddressGateway
	payments   payment.Gateway
	deliveries delivery.Gateway
	shops      shop.Reader
	passwords  PasswordVerifier
	metrics    *telemetry.StorefrontMetrics
	logger     *zap.Logger
}

// NewSessionService creates a new SessionService. metrics may be nil.
func NewSessionService(
	store checkout.SessionStore,
	deps Dependencies,
	shops shop.Reader,
	passwords PasswordVerifier,
) *SessionService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		store:      store,
		customers:  deps.Customers,
		addresses:  deps.Addresses,
		payments:   deps.Payments,
		deliveries: deps.Deliveries,
		shops:      shops,
		passwords:  passwords,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// Load returns the session data
func (s *SessionService) Load(ctx context.Context, sessionID string) (*checkout.SessionData, error) {
	data, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return data, nil
}

// SelectShippingAddress overrides the shipping address with one of the customer's addresses
func (s *SessionService) SelectShippingAddress(ctx context.Context, sessionID string, addressID int) (*checkout.SessionData, error) {
	return s.update(ctx, sessionID, func(data *checkout.SessionData) error {
		if err := s.checkAddress(ctx, data, addressID); err != nil {
			return err
		}
		data.ShippingAddressID = checkout.IntPtr(addressID)
		return nil
	})
}

// SelectBillingAddress overrides the billing address with one of the customer's addresses
func (s *SessionService) SelectBillingAddress(ctx context.Context, sessionID string, addressID int) (*checkout.SessionData, error) {
	return s.update(ctx, sessionID, func(data *checkout.SessionData) error {
		if err := s.checkAddress(ctx, data, addressID); err != nil {
			return err
		}
		data.BillingAddressID = checkout.IntPtr(addressID)
		return nil
	})
}

// SelectPaymentMethod stores an active payment method
func (s *SessionService) SelectPaymentMethod(ctx context.Context, sessionID string, paymentID int) (*checkout.SessionData, error) {
	return s.update(ctx, sessionID, func(data *checkout.SessionData) error {
		list, err := s.payments.GetList(ctx, []int{paymentID}, shared.TranslationContext{})
		if err != nil {
			return fmt.Errorf("fetch payment method %d: %w", paymentID, err)
		}
		pm, ok := list[paymentID]
		if !ok {
			return shared.NewNotFoundError("payment method", paymentID)
		}
		if !pm.Active {
			return shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("payment method %d is not available", paymentID))
		}
		data.PaymentID = checkout.IntPtr(paymentID)
		return nil
	})
}

// SelectDeliveryMethod stores an active delivery method
func (s *SessionService) SelectDeliveryMethod(ctx context.Context, sessionID string, dispatchID int) (*checkout.SessionData, error) {
	return s.update(ctx, sessionID, func(data *checkout.SessionData) error {
		list, err := s.deliveries.GetList(ctx, []int{dispatchID}, shared.TranslationContext{})
		if err != nil {
			return fmt.Errorf("fetch delivery method %d: %w", dispatchID, err)
		}
		d, ok := list[dispatchID]
		if !ok {
			return shared.NewNotFoundError("delivery method", dispatchID)
		}
		if !d.Active {
			return shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("delivery method %d is not available", dispatchID))
		}
		data.DispatchID = checkout.IntPtr(dispatchID)
		return nil
	})
}

// SelectShop switches the session to another shop
func (s *SessionService) SelectShop(ctx context.Context, sessionID string, shopID int) (*checkout.SessionData, error) {
	return s.update(ctx, sessionID, func(data *checkout.SessionData) error {
		shops, err := s.shops.Read(ctx, []int{shopID}, shared.TranslationContext{})
		if err != nil {
			return fmt.Errorf("read shop %d: %w", shopID, err)
		}
		if shops.Get(shopID) == nil {
			return shared.NewNotFoundError("shop", shopID)
		}
		data.ShopID = checkout.IntPtr(shopID)
		return nil
	})
}

// Login attaches the customer to the session. Address overrides of a
// previous customer are dropped.
func (s *SessionService) Login(ctx context.Context, sessionID, email, password string) (*customer.Customer, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "account", "login")
	defer span.End()

	c, err := s.customers.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.metrics.RecordLogin(ctx, false)
			s.logger.Info("Login with unknown email")
			return nil, ErrInvalidCredentials
		}
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("find customer: %w", err)
	}
	if !s.passwords.Verify(c.PasswordHash, password) {
		s.metrics.RecordLogin(ctx, false)
		s.logger.Info("Login with wrong password", zap.Int("customer_id", c.ID))
		return nil, ErrInvalidCredentials
	}

	_, err = s.update(ctx, sessionID, func(data *checkout.SessionData) error {
		*data = data.WithoutCustomer()
		data.UserID = checkout.IntPtr(c.ID)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.RecordLogin(ctx, true)
	telemetry.SetAttributes(span, telemetry.SpanAttrCustomerID, c.ID)
	s.logger.Info("Customer logged in", zap.Int("customer_id", c.ID))
	return c, nil
}

// Logout removes the customer and everything bound to it from the session
func (s *SessionService) Logout(ctx context.Context, sessionID string) (*checkout.SessionData, error) {
	return s.update(ctx, sessionID, func(data *checkout.SessionData) error {
		*data = data.WithoutCustomer()
		return nil
	})
}

func (s *SessionService) checkAddress(ctx context.Context, data *checkout.SessionData, addressID int) error {
	if !data.IsLoggedIn() {
		return ErrLoginRequired
	}
	list, err := s.addresses.GetList(ctx, []int{addressID}, shared.TranslationContext{})
	if err != nil {
		return fmt.Errorf("fetch address %d: %w", addressID, err)
	}
	a, ok := list[addressID]
	// foreign addresses are reported as missing
	if !ok || a.CustomerID != *data.UserID {
		return shared.NewNotFoundError("address", addressID)
	}
	return nil
}

func (s *SessionService) update(ctx context.Context, sessionID string, mutate func(*checkout.SessionData) error) (*checkout.SessionData, error) {
	data, err := s.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := mutate(data); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, sessionID, data); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return data, nil
}
