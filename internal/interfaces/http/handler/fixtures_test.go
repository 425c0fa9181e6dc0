package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	checkoutapp "github.com/storefront/backend/internal/application/checkout"
	"github.com/storefront/backend/internal/application/storefront"
	"github.com/storefront/backend/internal/domain/checkout"
	"github.com/storefront/backend/internal/domain/configurator"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/delivery"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shop"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/require"
)

const testSessionHeader = "X-Test-Session"

// memoryStore is a map-backed checkout.SessionStore
type memoryStore struct {
	mu       sync.Mutex
	sessions map[string]checkout.SessionData
}

func (s *memoryStore) Load(_ context.Context, id string) (*checkout.SessionData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data := s.sessions[id]
	return &data, nil
}

func (s *memoryStore) Save(_ context.Context, id string, data *checkout.SessionData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = *data
	return nil
}

func (s *memoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

type fakeShopReader struct {
	shops map[int]*shop.Shop
}

func (f *fakeShopReader) Read(_ context.Context, ids []int, _ shared.TranslationContext) (*shop.Collection, error) {
	var found []*shop.Shop
	for _, id := range shared.UniqueIDs(ids) {
		if s, ok := f.shops[id]; ok {
			found = append(found, s)
		}
	}
	return shop.NewCollection(found), nil
}

type fakePageReader struct {
	pages map[int]*shop.Page
}

func (f *fakePageReader) GetList(_ context.Context, ids []int, _ shared.TranslationContext) (map[int]*shop.Page, error) {
	return pick(f.pages, ids), nil
}

type fakeCustomers struct {
	byID map[int]*customer.Customer
}

func (f *fakeCustomers) GetList(_ context.Context, ids []int, _ shared.TranslationContext) (map[int]*customer.Customer, error) {
	return pick(f.byID, ids), nil
}

func (f *fakeCustomers) FindByEmail(_ context.Context, email string) (*customer.Customer, error) {
	for _, c := range f.byID {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, shared.ErrNotFound
}

type fakeAddresses struct {
	byID map[int]*customer.Address
}

func (f *fakeAddresses) GetList(_ context.Context, ids []int, _ shared.TranslationContext) (map[int]*customer.Address, error) {
	return pick(f.byID, ids), nil
}

type fakePayments struct {
	byID map[int]*payment.PaymentMethod
}

func (f *fakePayments) GetList(_ context.Context, ids []int, _ shared.TranslationContext) (map[int]*payment.PaymentMethod, error) {
	return pick(f.byID, ids), nil
}

type fakeDeliveries struct {
	byID map[int]*delivery.DeliveryMethod
}

func (f *fakeDeliveries) GetList(_ context.Context, ids []int, _ shared.TranslationContext) (map[int]*delivery.DeliveryMethod, error) {
	return pick(f.byID, ids), nil
}

type fakeConfigurators struct {
	sets     map[int]*configurator.Set
	variants map[int][]*configurator.Variant
	groups   map[string][]*configurator.Group
}

func (f *fakeConfigurators) FindSetByProduct(_ context.Context, productID int, _ shared.TranslationContext) (*configurator.Set, error) {
	set, ok := f.sets[productID]
	if !ok {
		return nil, shared.NewNotFoundError("configurator of product", productID)
	}
	return set, nil
}

func (f *fakeConfigurators) FindVariants(_ context.Context, productID int) ([]*configurator.Variant, error) {
	return f.variants[productID], nil
}

func (f *fakeConfigurators) FindVariantGroupsByNumbers(_ context.Context, numbers []string, _ shared.TranslationContext) (map[string][]*configurator.Group, error) {
	result := map[string][]*configurator.Group{}
	for _, n := range numbers {
		if g, ok := f.groups[n]; ok {
			result[n] = g
		}
	}
	return result, nil
}

// plainPasswords compares passwords verbatim
type plainPasswords struct{}

func (plainPasswords) Verify(hash, password string) bool { return hash == password }

func pick[T any](items map[int]T, ids []int) map[int]T {
	result := map[int]T{}
	for _, id := range ids {
		if item, ok := items[id]; ok {
			result[id] = item
		}
	}
	return result
}

// testEnv wires real services over in-memory fakes behind a gin engine
type testEnv struct {
	store     *memoryStore
	shops     *fakeShopReader
	customers *fakeCustomers
	addresses *fakeAddresses
	payments  *fakePayments
	delivery  *fakeDeliveries
	pages     *fakePageReader
	configs   *fakeConfigurators
	router    *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		store: &memoryStore{sessions: map[string]checkout.SessionData{}},
		shops: &fakeShopReader{shops: map[int]*shop.Shop{
			1: {ID: 1, Name: "Main", IsDefault: true, Currency: &shop.Currency{ID: 1, Code: "EUR"}},
			2: {ID: 2, Name: "English", MainID: 1, FallbackID: 1, Currency: &shop.Currency{ID: 1, Code: "EUR"}},
		}},
		customers: &fakeCustomers{byID: map[int]*customer.Customer{
			10: {ID: 10, Email: "jane@example.com", FirstName: "Jane", Active: true, PasswordHash: "secret123",
				DefaultBillingAddress:  &customer.Address{ID: 100, CustomerID: 10, City: "Berlin"},
				DefaultShippingAddress: &customer.Address{ID: 100, CustomerID: 10, City: "Berlin"},
			},
		}},
		addresses: &fakeAddresses{byID: map[int]*customer.Address{
			100: {ID: 100, CustomerID: 10, City: "Berlin"},
			101: {ID: 101, CustomerID: 10, City: "Hamburg"},
			200: {ID: 200, CustomerID: 20, City: "Munich"},
		}},
		payments: &fakePayments{byID: map[int]*payment.PaymentMethod{
			5: {ID: 5, Name: "prepayment", Active: true, Surcharge: decimal.Zero},
			6: {ID: 6, Name: "invoice", Active: true, Surcharge: decimal.NewFromInt(5)},
			7: {ID: 7, Name: "legacy", Active: false, Surcharge: decimal.Zero},
		}},
		delivery: &fakeDeliveries{byID: map[int]*delivery.DeliveryMethod{
			9:  {ID: 9, Name: "standard", Active: true, Cost: decimal.NewFromInt(4)},
			14: {ID: 14, Name: "express", Active: true, Cost: decimal.NewFromInt(12)},
		}},
		pages: &fakePageReader{pages: map[int]*shop.Page{
			1: {ID: 1, Title: "Imprint"},
			2: {ID: 2, Title: "Terms", ShopIDs: []int{2}},
			3: {ID: 3, Title: "Privacy", ParentID: 1},
		}},
		configs: &fakeConfigurators{
			sets: map[int]*configurator.Set{
				50: {ID: 1, Name: "Shirt", Groups: []*configurator.Group{
					{ID: 1, Name: "Size", Options: []*configurator.Option{{ID: 11, GroupID: 1, Name: "M"}, {ID: 12, GroupID: 1, Name: "L"}}},
					{ID: 2, Name: "Color", Options: []*configurator.Option{{ID: 21, GroupID: 2, Name: "Red"}, {ID: 22, GroupID: 2, Name: "Blue"}}},
				}},
			},
			variants: map[int][]*configurator.Variant{
				50: {
					{ID: 500, ProductID: 50, Number: "SW50.1", Active: true, OptionIDs: []int{11, 21}},
					{ID: 501, ProductID: 50, Number: "SW50.2", Active: true, OptionIDs: []int{12, 22}},
				},
			},
			groups: map[string][]*configurator.Group{
				"SW50.1": {{ID: 1, Name: "Size", Options: []*configurator.Option{{ID: 11, GroupID: 1, Name: "M"}}}},
			},
		},
	}

	shopContexts := storefront.NewShopContextService(env.shops, 1, nil, nil)
	deps := checkoutapp.Dependencies{
		ShopContexts: shopContexts,
		Customers:    env.customers,
		Addresses:    env.addresses,
		Deliveries:   env.delivery,
		Payments:     env.payments,
		Config:       checkoutapp.DefaultConfig(),
	}
	sessions := checkoutapp.NewSessionService(env.store, deps, env.shops, plainPasswords{})
	scope := NewSessionScope(sessions, shopContexts, 5)

	checkoutHandler := NewCheckoutHandler(sessions, deps)
	accountHandler := NewAccountHandler(sessions)
	shopHandler := NewShopHandler(scope, sessions, shopContexts)
	pageHandler := NewPageHandler(scope, storefront.NewShopPageService(env.pages))
	configuratorHandler := NewConfiguratorHandler(scope, storefront.NewConfiguratorService(env.configs))

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.SessionIDKey, c.GetHeader(testSessionHeader))
		c.Next()
	})
	api := r.Group("/api/v1")
	api.GET("/shop/context", shopHandler.GetContext)
	api.PUT("/shop", shopHandler.SelectShop)
	api.GET("/shops", shopHandler.List)
	api.GET("/pages", pageHandler.List)
	api.GET("/products/configurations", configuratorHandler.GetConfigurations)
	api.POST("/products/:id/configurator", configuratorHandler.GetConfigurator)
	api.GET("/checkout/context", checkoutHandler.GetContext)
	api.PUT("/checkout/shipping-address", checkoutHandler.SelectShippingAddress)
	api.PUT("/checkout/billing-address", checkoutHandler.SelectBillingAddress)
	api.PUT("/checkout/payment-method", checkoutHandler.SelectPaymentMethod)
	api.PUT("/checkout/delivery-method", checkoutHandler.SelectDeliveryMethod)
	api.POST("/account/login", accountHandler.Login)
	api.POST("/account/logout", accountHandler.Logout)
	env.router = r

	return env
}

// do performs a request in session sid
func (e *testEnv) do(t *testing.T, method, path, sid string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(testSessionHeader, sid)

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) session(sid string) checkout.SessionData {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()
	return e.store.sessions[sid]
}

// decodeData unmarshals the data field of a success response into v
func decodeData(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, v))
}
