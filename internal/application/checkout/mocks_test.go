package checkout

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/checkout"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/delivery"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shop"
	"github.com/stretchr/testify/mock"
)

// MockShopContextProvider is a mock implementation of shop.ContextProvider
type MockShopContextProvider struct {
	mock.Mock
}

func (m *MockShopContextProvider) Get(ctx context.Context, shopID *int) (*shop.ShopContext, error) {
	args := m.Called(ctx, shopID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shop.ShopContext), args.Error(1)
}

// MockCustomerGateway is a mock implementation of customer.Gateway
type MockCustomerGateway struct {
	mock.Mock
}

func (m *MockCustomerGateway) GetList(ctx context.Context, ids []int, tc shared.TranslationContext) (map[int]*customer.Customer, error) {
	args := m.Called(ctx, ids, tc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]*customer.Customer), args.Error(1)
}

func (m *MockCustomerGateway) FindByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customer.Customer), args.Error(1)
}

// MockAddressGateway is a mock implementation of customer.AddressGateway
type MockAddressGateway struct {
	mock.Mock
}

func (m *MockAddressGateway) GetList(ctx context.Context, ids []int, tc shared.TranslationContext) (map[int]*customer.Address, error) {
	args := m.Called(ctx, ids, tc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]*customer.Address), args.Error(1)
}

// MockDeliveryGateway is a mock implementation of delivery.Gateway
type MockDeliveryGateway struct {
	mock.Mock
}

func (m *MockDeliveryGateway) GetList(ctx context.Context, ids []int, tc shared.TranslationContext) (map[int]*delivery.DeliveryMethod, error) {
	args := m.Called(ctx, ids, tc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]*delivery.DeliveryMethod), args.Error(1)
}

// MockPaymentGateway is a mock implementation of payment.Gateway
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) GetList(ctx context.Context, ids []int, tc shared.TranslationContext) (map[int]*payment.PaymentMethod, error) {
	args := m.Called(ctx, ids, tc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]*payment.PaymentMethod), args.Error(1)
}

// MockShopReader is a mock implementation of shop.Reader
type MockShopReader struct {
	mock.Mock
}

func (m *MockShopReader) Read(ctx context.Context, ids []int, tc shared.TranslationContext) (*shop.Collection, error) {
	args := m.Called(ctx, ids, tc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shop.Collection), args.Error(1)
}

// memoryStore is a map-backed checkout.SessionStore
type memoryStore struct {
	sessions map[string]checkout.SessionData
	saves    int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{sessions: map[string]checkout.SessionData{}}
}

func (s *memoryStore) Load(_ context.Context, id string) (*checkout.SessionData, error) {
	data := s.sessions[id]
	return &data, nil
}

func (s *memoryStore) Save(_ context.Context, id string, data *checkout.SessionData) error {
	s.saves++
	s.sessions[id] = *data
	return nil
}

func (s *memoryStore) Delete(_ context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

// fixtures

var tc = shared.TranslationContext{ShopID: 1, IsDefaultShop: true}

func testShopContext() *shop.ShopContext {
	return shop.NewShopContext(&shop.Shop{ID: 1, Name: "Main", IsDefault: true})
}

func paymentMethod(id int) *payment.PaymentMethod {
	return &payment.PaymentMethod{ID: id, Name: "payment", Active: true, Surcharge: decimal.Zero}
}

func deliveryMethod(id int) *delivery.DeliveryMethod {
	return &delivery.DeliveryMethod{ID: id, Name: "dispatch", Active: true, Cost: decimal.Zero}
}
