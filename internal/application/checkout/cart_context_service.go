package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/storefront/backend/internal/domain/checkout"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/delivery"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shop"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Setting names reported by configuration errors
const (
	SettingDefaultDispatchID = "checkout.default_dispatch_id"
	SettingDefaultPaymentID  = "checkout.default_payment_id"
)

// Where the payment method of a cart context came from
const (
	PaymentSourceSession  = "session"
	PaymentSourceLastUsed = "last_used"
	PaymentSourcePreset   = "preset"
	PaymentSourceDefault  = "default"
)

// Config holds the configured checkout fallbacks
type Config struct {
	DefaultDispatchID int
	DefaultPaymentID  int
}

// DefaultConfig returns the stock fallbacks
func DefaultConfig() Config {
	return Config{DefaultDispatchID: 9, DefaultPaymentID: 5}
}

// Dependencies are the process-wide collaborators of the resolver.
// Metrics and Logger are optional.
type Dependencies struct {
	ShopContexts shop.ContextProvider
	Customers    customer.Gateway
	Addresses    customer.AddressGateway
	Deliveries   delivery.Gateway
	Payments     payment.Gateway
	Config       Config
	Metrics      *telemetry.StorefrontMetrics
	Logger       *zap.Logger
}

// CartContextService resolves the cart context of one session. It is
// request scoped: the context is computed on first use and kept until
// Initialize is called.
type CartContextService struct {
	deps    Dependencies
	session checkout.SessionData

	mu      sync.Mutex
	current *checkout.CartContext
}

// NewCartContextService creates a resolver for session
func NewCartContextService(deps Dependencies, session checkout.SessionData) *CartContextService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &CartContextService{deps: deps, session: session}
}

// Context returns the cart context, resolving it on first call
func (s *CartContextService) Context(ctx context.Context) (*checkout.CartContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		return s.current, nil
	}
	return s.resolve(ctx)
}

// Initialize recomputes the cart context, replacing any cached value
func (s *CartContextService) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.resolve(ctx)
	return err
}

// resolve must be called with mu held. The cached value changes only on success.
func (s *CartContextService) resolve(ctx context.Context) (result *checkout.CartContext, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cart_context", "resolve")
	defer span.End()

	start := time.Now()
	paymentSource := ""
	defer func() {
		code := ""
		if err != nil {
			telemetry.RecordError(span, err)
			if code = shared.ErrorCode(err); code == "" {
				code = "INTERNAL_ERROR"
			}
		}
		s.deps.Metrics.RecordCartContext(ctx, paymentSource, result == nil || result.IsGuest(), code, time.Since(start))
	}()

	shopContext, err := s.deps.ShopContexts.Get(ctx, s.session.ShopID)
	if err != nil {
		return nil, fmt.Errorf("resolve shop context: %w", err)
	}
	tc := shopContext.TranslationContext
	telemetry.SetAttributes(span, telemetry.SpanAttrShopID, shopContext.Shop.ID)

	cust, err := s.resolveCustomer(ctx, tc)
	if err != nil {
		return nil, err
	}

	billing, shipping, err := s.resolveAddresses(ctx, cust, tc)
	if err != nil {
		return nil, err
	}

	dispatch, err := s.resolveDeliveryMethod(ctx, tc)
	if err != nil {
		return nil, err
	}

	pm, source, err := s.resolvePaymentMethod(ctx, cust, tc)
	if err != nil {
		return nil, err
	}
	paymentSource = source
	telemetry.SetAttributes(span,
		telemetry.SpanAttrPaymentID, pm.ID,
		telemetry.SpanAttrPaymentSource, source,
		telemetry.SpanAttrDispatchID, dispatch.ID,
	)
	if source != PaymentSourceSession {
		telemetry.AddEvent(span, "payment.fallback", telemetry.SpanAttrPaymentSource, source)
	}

	s.current = checkout.NewCartContext(shopContext, pm, dispatch, cust, billing, shipping)
	s.deps.Logger.Debug("Cart context resolved",
		zap.Int("shop_id", shopContext.Shop.ID),
		zap.Bool("guest", cust == nil),
		zap.Int("payment_id", pm.ID),
		zap.String("payment_source", source),
		zap.Int("dispatch_id", dispatch.ID),
	)
	return s.current, nil
}

// resolveCustomer returns nil for guests, including a session user id
// without a matching customer
func (s *CartContextService) resolveCustomer(ctx context.Context, tc shared.TranslationContext) (*customer.Customer, error) {
	if s.session.UserID == nil {
		return nil, nil
	}
	id := *s.session.UserID
	list, err := s.deps.Customers.GetList(ctx, []int{id}, tc)
	if err != nil {
		return nil, fmt.Errorf("resolve customer %d: %w", id, err)
	}
	c, ok := list[id]
	if !ok {
		s.deps.Logger.Warn("Session references unknown customer, continuing as guest", zap.Int("customer_id", id))
		return nil, nil
	}
	return c, nil
}

func (s *CartContextService) resolveAddresses(ctx context.Context, cust *customer.Customer, tc shared.TranslationContext) (billing, shipping *customer.Address, err error) {
	if cust != nil {
		billing = cust.DefaultBillingAddress
		shipping = cust.DefaultShippingAddress
	}

	var ids []int
	if s.session.BillingAddressID != nil {
		ids = append(ids, *s.session.BillingAddressID)
	}
	if s.session.ShippingAddressID != nil {
		ids = append(ids, *s.session.ShippingAddressID)
	}
	if len(ids) == 0 {
		return billing, shipping, nil
	}

	overrides, err := s.deps.Addresses.GetList(ctx, ids, tc)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve address overrides: %w", err)
	}
	if id := s.session.BillingAddressID; id != nil {
		a, ok := overrides[*id]
		if !ok {
			return nil, nil, shared.NewNotFoundError("billing address", *id)
		}
		billing = a
	}
	if id := s.session.ShippingAddressID; id != nil {
		a, ok := overrides[*id]
		if !ok {
			return nil, nil, shared.NewNotFoundError("shipping address", *id)
		}
		shipping = a
	}
	return billing, shipping, nil
}

func (s *CartContextService) resolveDeliveryMethod(ctx context.Context, tc shared.TranslationContext) (*delivery.DeliveryMethod, error) {
	id, fromSession := s.deps.Config.DefaultDispatchID, false
	if s.session.DispatchID != nil {
		id, fromSession = *s.session.DispatchID, true
	}

	list, err := s.deps.Deliveries.GetList(ctx, []int{id}, tc)
	if err != nil {
		return nil, fmt.Errorf("resolve delivery method %d: %w", id, err)
	}
	d, ok := list[id]
	if !ok {
		if fromSession {
			return nil, shared.NewNotFoundError("delivery method", id)
		}
		return nil, shared.NewConfigurationError(SettingDefaultDispatchID, "delivery method", id)
	}
	return d, nil
}

// resolvePaymentMethod applies session, last used, preset, default in that
// order. Customer-held methods are used as loaded, without a gateway call.
func (s *CartContextService) resolvePaymentMethod(ctx context.Context, cust *customer.Customer, tc shared.TranslationContext) (*payment.PaymentMethod, string, error) {
	if s.session.PaymentID != nil {
		id := *s.session.PaymentID
		pm, err := s.fetchPaymentMethod(ctx, id, tc)
		if err != nil {
			return nil, "", err
		}
		if pm == nil {
			return nil, "", shared.NewNotFoundError("payment method", id)
		}
		return pm, PaymentSourceSession, nil
	}

	if cust != nil {
		if cust.LastPaymentMethod != nil {
			return cust.LastPaymentMethod, PaymentSourceLastUsed, nil
		}
		if cust.PresetPaymentMethod != nil {
			return cust.PresetPaymentMethod, PaymentSourcePreset, nil
		}
	}

	id := s.deps.Config.DefaultPaymentID
	pm, err := s.fetchPaymentMethod(ctx, id, tc)
	if err != nil {
		return nil, "", err
	}
	if pm == nil {
		return nil, "", shared.NewConfigurationError(SettingDefaultPaymentID, "payment method", id)
	}
	return pm, PaymentSourceDefault, nil
}

func (s *CartContextService) fetchPaymentMethod(ctx context.Context, id int, tc shared.TranslationContext) (*payment.PaymentMethod, error) {
	list, err := s.deps.Payments.GetList(ctx, []int{id}, tc)
	if err != nil {
		return nil, fmt.Errorf("resolve payment method %d: %w", id, err)
	}
	return list[id], nil
}
