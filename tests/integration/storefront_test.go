package integration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	checkoutapp "github.com/storefront/backend/internal/application/checkout"
	"github.com/storefront/backend/internal/application/storefront"
	"github.com/storefront/backend/internal/domain/checkout"
	"github.com/storefront/backend/internal/domain/configurator"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shop"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
	"github.com/storefront/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
)

const adaPassword = "analytical-engine"

// StorefrontTestServer wires the production stack on top of a seeded database
type StorefrontTestServer struct {
	DB     *TestDB
	Engine *gin.Engine
	Shops  *storefront.ShopContextService
	Reader *persistence.GormShopReader
}

func NewStorefrontTestServer(t *testing.T) *StorefrontTestServer {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := OpenTestDB(t)
	tdb.Reset()
	tdb.Seed(storefrontFixtures, configuratorFixtures)

	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	hash, err := hasher.Hash(adaPassword)
	require.NoError(t, err)
	require.NoError(t, tdb.DB.Exec("UPDATE customers SET password_hash = ? WHERE id = ?", hash, 10).Error)

	log := zaptest.NewLogger(t)
	sessionCfg := config.SessionConfig{
		CookieName: "sf_session",
		Secret:     "integration-secret-integration-secret",
		TTL:        time.Hour,
	}
	store := cache.NewInMemorySessionStore(sessionCfg.TTL, time.Minute)
	t.Cleanup(func() { _ = store.Close() })

	reader := persistence.NewGormShopReader(tdb.DB, nil)
	shops := storefront.NewShopContextService(reader, 1, nil, log)
	deps := checkoutapp.Dependencies{
		ShopContexts: shops,
		Customers:    persistence.NewGormCustomerGateway(tdb.DB),
		Addresses:    persistence.NewGormAddressGateway(tdb.DB),
		Deliveries:   persistence.NewGormDeliveryMethodGateway(tdb.DB),
		Payments:     persistence.NewGormPaymentMethodGateway(tdb.DB),
		Config:       checkoutapp.DefaultConfig(),
		Logger:       log,
	}
	sessions := checkoutapp.NewSessionService(store, deps, reader, hasher)
	scope := handler.NewSessionScope(sessions, shops, 0)

	middleware.SetupValidator()
	engine := gin.New()
	engine.Use(middleware.RequestID())
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.Session(middleware.NewSessionMiddlewareConfig(auth.NewSessionTokenService(sessionCfg), sessionCfg, log)))
	r.Register(router.StorefrontGroups(router.StorefrontHandlers{
		Checkout:     handler.NewCheckoutHandler(sessions, deps),
		Account:      handler.NewAccountHandler(sessions),
		Shop:         handler.NewShopHandler(scope, sessions, shops),
		Page:         handler.NewPageHandler(scope, storefront.NewShopPageService(persistence.NewGormShopPageReader(tdb.DB))),
		Configurator: handler.NewConfiguratorHandler(scope, storefront.NewConfiguratorService(persistence.NewGormConfiguratorRepository(tdb.DB))),
	})...)
	r.Setup()

	return &StorefrontTestServer{DB: tdb, Engine: engine, Shops: shops, Reader: reader}
}

// client keeps the session cookie between requests like a browser would
type client struct {
	t      *testing.T
	server *StorefrontTestServer
	cookie *http.Cookie
}

func (s *StorefrontTestServer) newClient(t *testing.T) *client {
	return &client{t: t, server: s}
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var cookies []*http.Cookie
	if c.cookie != nil {
		cookies = append(cookies, c.cookie)
	}
	w := testutil.PerformRequest(c.t, c.server.Engine, method, path, body, cookies...)
	if cookie := testutil.ResponseCookie(w, "sf_session"); cookie != nil {
		c.cookie = cookie
	}
	return w
}

func (c *client) cartContext() handler.CartContextResponse {
	c.t.Helper()

	w := c.do(http.MethodGet, "/api/v1/checkout/context", nil)
	require.Equal(c.t, http.StatusOK, w.Code, w.Body.String())
	return testutil.DecodeData[handler.CartContextResponse](c.t, w)
}

type batchEnvelope[T any] struct {
	Success bool      `json:"success"`
	Data    []T       `json:"data"`
	Meta    *dto.Meta `json:"meta"`
}

func TestShopReader_Postgres(t *testing.T) {
	server := NewStorefrontTestServer(t)
	ctx := context.Background()
	defaultTC := shared.TranslationContext{ShopID: 1, IsDefaultShop: true}

	t.Run("keeps caller order and skips unknown ids", func(t *testing.T) {
		shops, err := server.Reader.Read(ctx, []int{5, 404, 2, 1, 5}, defaultTC)
		require.NoError(t, err)
		assert.Equal(t, []int{5, 2, 1}, shops.IDs())
	})

	t.Run("fetches a parent outside the batch", func(t *testing.T) {
		shops, err := server.Reader.Read(ctx, []int{5}, defaultTC)
		require.NoError(t, err)

		s := shops.Get(5)
		require.NotNil(t, s)
		require.NotNil(t, s.Parent)
		assert.Equal(t, 4, s.Parent.ID)
		assert.Equal(t, "shop.example.co.uk", s.Parent.Host)
		assert.Equal(t, "GBP", s.Currency.Code)
	})

	t.Run("aggregates blocked customer groups", func(t *testing.T) {
		shops, err := server.Reader.Read(ctx, []int{4}, defaultTC)
		require.NoError(t, err)
		assert.ElementsMatch(t, []int{1, 2}, shops.Get(4).Category.BlockedCustomerGroupIDs)
	})

	t.Run("language shop context is translated", func(t *testing.T) {
		sc, err := server.Shops.Get(ctx, checkout.IntPtr(2))
		require.NoError(t, err)

		assert.Equal(t, 2, sc.Shop.ID)
		assert.Equal(t, "Prepayment", sc.Shop.PaymentMethod.Name)
		assert.Equal(t, "Standard delivery", sc.Shop.DeliveryMethod.Name)
		assert.Equal(t, shared.TranslationContext{ShopID: 2, FallbackID: 1}, sc.TranslationContext)
	})

	t.Run("unknown explicit shop is not found", func(t *testing.T) {
		_, err := server.Shops.Get(ctx, checkout.IntPtr(404))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestShopsAPI(t *testing.T) {
	server := NewStorefrontTestServer(t)
	c := server.newClient(t)

	w := c.do(http.MethodGet, "/api/v1/shops?ids=3,404,1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := testutil.DecodeJSON[batchEnvelope[shop.Shop]](t, w)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, 3, resp.Data[0].ID)
	assert.Equal(t, 1, resp.Data[1].ID)
	require.NotNil(t, resp.Data[0].Parent)
	assert.Equal(t, 1, resp.Data[0].Parent.ID)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 3, resp.Meta.Requested)
	assert.Equal(t, 2, resp.Meta.Returned)
	assert.Equal(t, []int{404}, resp.Meta.Missing)
}

func TestCheckoutFlow(t *testing.T) {
	server := NewStorefrontTestServer(t)

	t.Run("guest gets configured defaults", func(t *testing.T) {
		c := server.newClient(t)
		ctx := c.cartContext()

		assert.True(t, ctx.IsGuest)
		assert.Nil(t, ctx.Customer)
		assert.Equal(t, 1, ctx.ShopContext.Shop.ID)
		assert.Equal(t, 5, ctx.PaymentMethod.ID)
		assert.Equal(t, "Vorkasse", ctx.PaymentMethod.Name)
		assert.Equal(t, 9, ctx.DeliveryMethod.ID)
		require.NotNil(t, c.cookie, "session cookie issued")
	})

	t.Run("login, select and logout", func(t *testing.T) {
		c := server.newClient(t)

		w := c.do(http.MethodPost, "/api/v1/account/login", map[string]string{"email": "ADA@example.com", "password": adaPassword})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		login := testutil.DecodeData[handler.LoginResponse](t, w)
		assert.Equal(t, 10, login.Customer.ID)
		assert.NotContains(t, w.Body.String(), "password_hash")

		ctx := c.cartContext()
		assert.False(t, ctx.IsGuest)
		assert.Equal(t, 20, ctx.BillingAddress.ID)
		assert.Equal(t, 21, ctx.ShippingAddress.ID)
		assert.Equal(t, 3, ctx.PaymentMethod.ID, "last used payment method wins over preset")

		w = c.do(http.MethodPut, "/api/v1/checkout/shipping-address", handler.SelectIDRequest{ID: 22})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		w = c.do(http.MethodPut, "/api/v1/checkout/payment-method", handler.SelectIDRequest{ID: 6})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		w = c.do(http.MethodPut, "/api/v1/checkout/delivery-method", handler.SelectIDRequest{ID: 14})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		ctx = c.cartContext()
		assert.Equal(t, 20, ctx.BillingAddress.ID)
		assert.Equal(t, 22, ctx.ShippingAddress.ID)
		assert.Equal(t, 6, ctx.PaymentMethod.ID)
		assert.Equal(t, 14, ctx.DeliveryMethod.ID)

		w = c.do(http.MethodPost, "/api/v1/account/logout", nil)
		require.Equal(t, http.StatusNoContent, w.Code)

		ctx = c.cartContext()
		assert.True(t, ctx.IsGuest)
		assert.Nil(t, ctx.ShippingAddress)
		assert.Equal(t, 5, ctx.PaymentMethod.ID, "payment selection leaves with the customer")
		assert.Equal(t, 14, ctx.DeliveryMethod.ID)
	})

	t.Run("rejects foreign addresses and inactive methods", func(t *testing.T) {
		c := server.newClient(t)
		w := c.do(http.MethodPost, "/api/v1/account/login", map[string]string{"email": "ada@example.com", "password": adaPassword})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = c.do(http.MethodPut, "/api/v1/checkout/billing-address", handler.SelectIDRequest{ID: 30})
		testutil.AssertError(t, w, http.StatusNotFound, dto.ErrCodeNotFound)

		w = c.do(http.MethodPut, "/api/v1/checkout/payment-method", handler.SelectIDRequest{ID: 7})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = c.do(http.MethodPut, "/api/v1/checkout/delivery-method", handler.SelectIDRequest{ID: 10})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		c := server.newClient(t)
		w := c.do(http.MethodPost, "/api/v1/account/login", map[string]string{"email": "ada@example.com", "password": "wrong-password"})
		testutil.AssertError(t, w, http.StatusUnauthorized, dto.ErrCodeUnauthorized)

		assert.True(t, c.cartContext().IsGuest)
	})

	t.Run("language shop translates the cart context", func(t *testing.T) {
		c := server.newClient(t)
		w := c.do(http.MethodPut, "/api/v1/shop", handler.SelectIDRequest{ID: 2})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		ctx := c.cartContext()
		assert.Equal(t, 2, ctx.ShopContext.Shop.ID)
		assert.Equal(t, "Prepayment", ctx.PaymentMethod.Name)
		assert.Equal(t, "Standard delivery", ctx.DeliveryMethod.Name)
	})

	t.Run("session without cookie starts fresh", func(t *testing.T) {
		c := server.newClient(t)
		w := c.do(http.MethodPost, "/api/v1/account/login", map[string]string{"email": "ada@example.com", "password": adaPassword})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		other := server.newClient(t)
		assert.True(t, other.cartContext().IsGuest)
	})
}

func TestPagesAPI(t *testing.T) {
	server := NewStorefrontTestServer(t)
	c := server.newClient(t)

	w := c.do(http.MethodPut, "/api/v1/shop", handler.SelectIDRequest{ID: 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = c.do(http.MethodGet, "/api/v1/pages?ids=3&ids=2&ids=1&ids=99", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := testutil.DecodeJSON[batchEnvelope[shop.Page]](t, w)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, 2, resp.Data[0].ID)
	assert.Equal(t, "Imprint", resp.Data[0].Title)
	assert.Equal(t, 1, resp.Data[0].ParentID)
	assert.Equal(t, 1, resp.Data[1].ID)
	assert.ElementsMatch(t, []int{3, 99}, resp.Meta.Missing)
}

func TestConfiguratorAPI(t *testing.T) {
	server := NewStorefrontTestServer(t)
	c := server.newClient(t)

	t.Run("displayed variant drives selection", func(t *testing.T) {
		w := c.do(http.MethodPost, "/api/v1/products/100/configurator", map[string]any{"number": "SW-BLUE-M"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		set := testutil.DecodeData[configurator.Set](t, w)
		require.Len(t, set.Groups, 2)
		color, size := set.Group(1), set.Group(2)
		require.NotNil(t, color)
		require.NotNil(t, size)

		assert.True(t, color.Option(12).Selected)
		assert.True(t, size.Option(21).Selected)
		assert.True(t, color.Option(11).Active)
		assert.False(t, size.Option(22).Active, "blue L is inactive")
	})

	t.Run("product without configurator", func(t *testing.T) {
		w := c.do(http.MethodPost, "/api/v1/products/101/configurator", nil)
		testutil.AssertError(t, w, http.StatusNotFound, dto.ErrCodeNotFound)
	})

	t.Run("variant groups by order number", func(t *testing.T) {
		w := c.do(http.MethodGet, "/api/v1/products/configurations?numbers=SW-RED-L,MUG", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		groups := testutil.DecodeData[map[string][]*configurator.Group](t, w)
		require.Len(t, groups["SW-RED-L"], 2)
		assert.Equal(t, "rot", groups["SW-RED-L"][0].Options[0].Name)
		assert.Empty(t, groups["MUG"])
	})
}
