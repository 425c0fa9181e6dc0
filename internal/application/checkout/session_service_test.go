package checkout

import (
	"context"
	"testing"

	"github.com/storefront/backend/internal/domain/checkout"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/delivery"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// plainVerifier accepts a password equal to the stored hash
type plainVerifier struct{}

func (plainVerifier) Verify(hash, password string) bool {
	return hash == password
}

type sessionFixture struct {
	svc    *SessionService
	store  *memoryStore
	mocks  *resolverMocks
	reader *MockShopReader
}

func newSessionFixture(t *testing.T) *sessionFixture {
	m := newResolverMocks()
	reader := new(MockShopReader)
	store := newMemoryStore()
	return &sessionFixture{
		svc:    NewSessionService(store, m.deps(t), reader, plainVerifier{}),
		store:  store,
		mocks:  m,
		reader: reader,
	}
}

func (f *sessionFixture) loggedIn(sid string, customerID int) {
	f.store.sessions[sid] = checkout.SessionData{UserID: checkout.IntPtr(customerID)}
}

func TestSessionService_SelectAddress(t *testing.T) {
	ctx := context.Background()

	t.Run("requires login", func(t *testing.T) {
		f := newSessionFixture(t)
		_, err := f.svc.SelectShippingAddress(ctx, "s1", 20)
		assert.ErrorIs(t, err, ErrLoginRequired)
		assert.Zero(t, f.store.saves)
	})

	t.Run("stores own address", func(t *testing.T) {
		f := newSessionFixture(t)
		f.loggedIn("s1", 10)
		f.mocks.addresses.On("GetList", mock.Anything, []int{22}, mock.Anything).
			Return(map[int]*customer.Address{22: {ID: 22, CustomerID: 10}}, nil)

		data, err := f.svc.SelectShippingAddress(ctx, "s1", 22)
		require.NoError(t, err)
		assert.Equal(t, 22, *data.ShippingAddressID)
		assert.Nil(t, data.BillingAddressID)
		assert.Equal(t, 22, *f.store.sessions["s1"].ShippingAddressID)

		data, err = f.svc.SelectBillingAddress(ctx, "s1", 22)
		require.NoError(t, err)
		assert.Equal(t, 22, *data.BillingAddressID)
	})

	t.Run("foreign address is not found", func(t *testing.T) {
		f := newSessionFixture(t)
		f.loggedIn("s1", 11)
		f.mocks.addresses.On("GetList", mock.Anything, []int{22}, mock.Anything).
			Return(map[int]*customer.Address{22: {ID: 22, CustomerID: 10}}, nil)

		_, err := f.svc.SelectBillingAddress(ctx, "s1", 22)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Nil(t, f.store.sessions["s1"].BillingAddressID)
	})
}

func TestSessionService_SelectPaymentMethod(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t)
	inactive := paymentMethod(4)
	inactive.Active = false
	f.mocks.payments.On("GetList", mock.Anything, []int{3}, mock.Anything).
		Return(map[int]*payment.PaymentMethod{3: paymentMethod(3)}, nil)
	f.mocks.payments.On("GetList", mock.Anything, []int{4}, mock.Anything).
		Return(map[int]*payment.PaymentMethod{4: inactive}, nil)
	f.mocks.payments.On("GetList", mock.Anything, []int{99}, mock.Anything).
		Return(map[int]*payment.PaymentMethod{}, nil)

	data, err := f.svc.SelectPaymentMethod(ctx, "s1", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, *data.PaymentID)

	_, err = f.svc.SelectPaymentMethod(ctx, "s1", 4)
	assert.Equal(t, shared.CodeInvalidInput, shared.ErrorCode(err))

	_, err = f.svc.SelectPaymentMethod(ctx, "s1", 99)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	assert.Equal(t, 3, *f.store.sessions["s1"].PaymentID)
}

func TestSessionService_SelectDeliveryMethod(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t)
	inactive := deliveryMethod(10)
	inactive.Active = false
	f.mocks.deliveries.On("GetList", mock.Anything, []int{9}, mock.Anything).
		Return(map[int]*delivery.DeliveryMethod{9: deliveryMethod(9)}, nil)
	f.mocks.deliveries.On("GetList", mock.Anything, []int{10}, mock.Anything).
		Return(map[int]*delivery.DeliveryMethod{10: inactive}, nil)

	data, err := f.svc.SelectDeliveryMethod(ctx, "s1", 9)
	require.NoError(t, err)
	assert.Equal(t, 9, *data.DispatchID)

	_, err = f.svc.SelectDeliveryMethod(ctx, "s1", 10)
	assert.Equal(t, shared.CodeInvalidInput, shared.ErrorCode(err))
}

func TestSessionService_SelectShop(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t)
	f.reader.On("Read", mock.Anything, []int{2}, mock.Anything).
		Return(shop.NewCollection([]*shop.Shop{{ID: 2}}), nil)
	f.reader.On("Read", mock.Anything, []int{7}, mock.Anything).
		Return(shop.NewCollection(nil), nil)

	data, err := f.svc.SelectShop(ctx, "s1", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, *data.ShopID)

	_, err = f.svc.SelectShop(ctx, "s1", 7)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	f.reader.AssertExpectations(t)
}

func TestSessionService_Login(t *testing.T) {
	ctx := context.Background()
	ada := &customer.Customer{ID: 10, Email: "ada@example.com", PasswordHash: "secret"}

	t.Run("success replaces previous customer selections", func(t *testing.T) {
		f := newSessionFixture(t)
		f.store.sessions["s1"] = checkout.SessionData{
			ShopID:            checkout.IntPtr(2),
			UserID:            checkout.IntPtr(11),
			ShippingAddressID: checkout.IntPtr(30),
			PaymentID:         checkout.IntPtr(3),
			DispatchID:        checkout.IntPtr(9),
		}
		f.mocks.customers.On("FindByEmail", mock.Anything, "ada@example.com").Return(ada, nil)

		c, err := f.svc.Login(ctx, "s1", "ada@example.com", "secret")
		require.NoError(t, err)
		assert.Same(t, ada, c)

		stored := f.store.sessions["s1"]
		assert.Equal(t, 10, *stored.UserID)
		assert.Nil(t, stored.ShippingAddressID)
		assert.Nil(t, stored.PaymentID)
		assert.Equal(t, 2, *stored.ShopID)
		assert.Equal(t, 9, *stored.DispatchID)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newSessionFixture(t)
		f.mocks.customers.On("FindByEmail", mock.Anything, "ada@example.com").Return(ada, nil)

		_, err := f.svc.Login(ctx, "s1", "ada@example.com", "guess")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Zero(t, f.store.saves)
	})

	t.Run("unknown email reads like a wrong password", func(t *testing.T) {
		f := newSessionFixture(t)
		f.mocks.customers.On("FindByEmail", mock.Anything, "nobody@example.com").
			Return(nil, shared.NewNotFoundError("customer", 0))

		_, err := f.svc.Login(ctx, "s1", "nobody@example.com", "x")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestSessionService_Logout(t *testing.T) {
	f := newSessionFixture(t)
	f.store.sessions["s1"] = checkout.SessionData{
		UserID:           checkout.IntPtr(10),
		BillingAddressID: checkout.IntPtr(20),
		DispatchID:       checkout.IntPtr(9),
	}

	data, err := f.svc.Logout(context.Background(), "s1")
	require.NoError(t, err)

	assert.False(t, data.IsLoggedIn())
	assert.Nil(t, data.BillingAddressID)
	assert.Equal(t, 9, *data.DispatchID)
	assert.False(t, f.store.sessions["s1"].IsLoggedIn())
}
