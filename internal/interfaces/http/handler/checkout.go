package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	checkoutapp "github.com/storefront/backend/internal/application/checkout"
	"github.com/storefront/backend/internal/domain/checkout"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/delivery"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shop"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// CheckoutHandler handles the checkout context of the session
type CheckoutHandler struct {
	BaseHandler
	sessions *checkoutapp.SessionService
	deps     checkoutapp.Dependencies
}

// NewCheckoutHandler creates a new CheckoutHandler. deps are the
// collaborators of the per-request cart context resolver.
func NewCheckoutHandler(sessions *checkoutapp.SessionService, deps checkoutapp.Dependencies) *CheckoutHandler {
	return &CheckoutHandler{sessions: sessions, deps: deps}
}

// SelectIDRequest selects an entity by id
//
//	@Description	Request body for checkout selections
type SelectIDRequest struct {
	ID int `json:"id" binding:"required,gt=0" example:"5"`
}

// CartContextResponse is the checkout state of the session
//
//	@Description	Resolved cart context
type CartContextResponse struct {
	ShopContext     *shop.ShopContext        `json:"shop_context"`
	PaymentMethod   *payment.PaymentMethod   `json:"payment_method"`
	DeliveryMethod  *delivery.DeliveryMethod `json:"delivery_method"`
	Customer        *customer.Customer       `json:"customer"`
	BillingAddress  *customer.Address        `json:"billing_address"`
	ShippingAddress *customer.Address        `json:"shipping_address"`
	IsGuest         bool                     `json:"is_guest"`
}

func toCartContextResponse(cc *checkout.CartContext) CartContextResponse {
	return CartContextResponse{
		ShopContext:     cc.ShopContext(),
		PaymentMethod:   cc.PaymentMethod(),
		DeliveryMethod:  cc.DeliveryMethod(),
		Customer:        cc.Customer(),
		BillingAddress:  cc.BillingAddress(),
		ShippingAddress: cc.ShippingAddress(),
		IsGuest:         cc.IsGuest(),
	}
}

// GetContext godoc
//
//	@Summary		Get the cart context
//	@Description	Resolve shop, customer, addresses, payment and delivery method of the session
//	@Tags			checkout
//	@Produce		json
//	@Success		200	{object}	dto.Response{data=CartContextResponse}
//	@Failure		404	{object}	dto.Response
//	@Failure		500	{object}	dto.Response
//	@Router			/checkout/context [get]
func (h *CheckoutHandler) GetContext(c *gin.Context) {
	data, err := h.sessions.Load(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.respondContext(c, data)
}

// SelectShippingAddress godoc
//
//	@Summary		Select the shipping address
//	@Description	Override the shipping address with one of the customer's addresses
//	@Tags			checkout
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SelectIDRequest	true	"Address"
//	@Success		200		{object}	dto.Response{data=CartContextResponse}
//	@Failure		400		{object}	dto.Response
//	@Failure		401		{object}	dto.Response
//	@Failure		404		{object}	dto.Response
//	@Router			/checkout/shipping-address [put]
func (h *CheckoutHandler) SelectShippingAddress(c *gin.Context) {
	h.selectID(c, h.sessions.SelectShippingAddress)
}

// SelectBillingAddress godoc
//
//	@Summary		Select the billing address
//	@Tags			checkout
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SelectIDRequest	true	"Address"
//	@Success		200		{object}	dto.Response{data=CartContextResponse}
//	@Failure		400		{object}	dto.Response
//	@Failure		401		{object}	dto.Response
//	@Failure		404		{object}	dto.Response
//	@Router			/checkout/billing-address [put]
func (h *CheckoutHandler) SelectBillingAddress(c *gin.Context) {
	h.selectID(c, h.sessions.SelectBillingAddress)
}

// SelectPaymentMethod godoc
//
//	@Summary		Select the payment method
//	@Tags			checkout
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SelectIDRequest	true	"Payment method"
//	@Success		200		{object}	dto.Response{data=CartContextResponse}
//	@Failure		400		{object}	dto.Response
//	@Failure		404		{object}	dto.Response
//	@Router			/checkout/payment-method [put]
func (h *CheckoutHandler) SelectPaymentMethod(c *gin.Context) {
	h.selectID(c, h.sessions.SelectPaymentMethod)
}

// SelectDeliveryMethod godoc
//
//	@Summary		Select the delivery method
//	@Tags			checkout
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SelectIDRequest	true	"Delivery method"
//	@Success		200		{object}	dto.Response{data=CartContextResponse}
//	@Failure		400		{object}	dto.Response
//	@Failure		404		{object}	dto.Response
//	@Router			/checkout/delivery-method [put]
func (h *CheckoutHandler) SelectDeliveryMethod(c *gin.Context) {
	h.selectID(c, h.sessions.SelectDeliveryMethod)
}

type selectFunc func(ctx context.Context, sessionID string, id int) (*checkout.SessionData, error)

func (h *CheckoutHandler) selectID(c *gin.Context, apply selectFunc) {
	var req SelectIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	data, err := apply(c.Request.Context(), middleware.GetSessionID(c), req.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.respondContext(c, data)
}

// respondContext resolves a fresh cart context for the session data
func (h *CheckoutHandler) respondContext(c *gin.Context, data *checkout.SessionData) {
	resolver := checkoutapp.NewCartContextService(h.deps, *data)
	cc, err := resolver.Context(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toCartContextResponse(cc))
}
