package checkout

import (
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/delivery"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shop"
)

// CartContext is the checkout state of one session. It always carries a
// payment and a delivery method; customer and addresses are nil for guests.
// Values are read-only once built.
type CartContext struct {
	shopContext     *shop.ShopContext
	paymentMethod   *payment.PaymentMethod
	deliveryMethod  *delivery.DeliveryMethod
	customer        *customer.Customer
	billingAddress  *customer.Address
	shippingAddress *customer.Address
}

// NewCartContext assembles a cart context. shopContext, paymentMethod and
// deliveryMethod must not be nil.
func NewCartContext(
	shopContext *shop.ShopContext,
	paymentMethod *payment.PaymentMethod,
	deliveryMethod *delivery.DeliveryMethod,
	cust *customer.Customer,
	billingAddress *customer.Address,
	shippingAddress *customer.Address,
) *CartContext {
	if shopContext == nil || paymentMethod == nil || deliveryMethod == nil {
		panic("checkout: cart context requires shop context, payment method and delivery method")
	}
	return &CartContext{
		shopContext:     shopContext,
		paymentMethod:   paymentMethod,
		deliveryMethod:  deliveryMethod,
		customer:        cust,
		billingAddress:  billingAddress,
		shippingAddress: shippingAddress,
	}
}

func (c *CartContext) ShopContext() *shop.ShopContext           { return c.shopContext }
func (c *CartContext) PaymentMethod() *payment.PaymentMethod    { return c.paymentMethod }
func (c *CartContext) DeliveryMethod() *delivery.DeliveryMethod { return c.deliveryMethod }
func (c *CartContext) Customer() *customer.Customer             { return c.customer }
func (c *CartContext) BillingAddress() *customer.Address        { return c.billingAddress }
func (c *CartContext) ShippingAddress() *customer.Address       { return c.shippingAddress }

// IsGuest reports whether no customer is logged in
func (c *CartContext) IsGuest() bool {
	return c.customer == nil
}
