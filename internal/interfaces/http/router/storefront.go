package router

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/interfaces/http/handler"
)

// StorefrontHandlers bundles the handlers of the storefront API
type StorefrontHandlers struct {
	Checkout     *handler.CheckoutHandler
	Account      *handler.AccountHandler
	Shop         *handler.ShopHandler
	Page         *handler.PageHandler
	Configurator *handler.ConfiguratorHandler
}

// StorefrontGroups returns the route groups of the storefront API.
// loginGuard runs in front of the login route only, e.g. a rate limiter.
func StorefrontGroups(h StorefrontHandlers, loginGuard ...gin.HandlerFunc) []RouteRegistrar {
	checkoutRoutes := NewDomainGroup("checkout", "/checkout")
	checkoutRoutes.GET("/context", h.Checkout.GetContext)
	checkoutRoutes.PUT("/shipping-address", h.Checkout.SelectShippingAddress)
	checkoutRoutes.PUT("/billing-address", h.Checkout.SelectBillingAddress)
	checkoutRoutes.PUT("/payment-method", h.Checkout.SelectPaymentMethod)
	checkoutRoutes.PUT("/delivery-method", h.Checkout.SelectDeliveryMethod)

	accountRoutes := NewDomainGroup("account", "/account")
	accountRoutes.POST("/login", append(loginGuard, h.Account.Login)...)
	accountRoutes.POST("/logout", h.Account.Logout)

	shopRoutes := NewDomainGroup("shop", "")
	shopRoutes.GET("/shop/context", h.Shop.GetContext)
	shopRoutes.PUT("/shop", h.Shop.SelectShop)
	shopRoutes.GET("/shops", h.Shop.List)
	shopRoutes.GET("/pages", h.Page.List)

	productRoutes := NewDomainGroup("product", "/products")
	productRoutes.GET("/configurations", h.Configurator.GetConfigurations)
	productRoutes.POST("/:id/configurator", h.Configurator.GetConfigurator)

	return []RouteRegistrar{checkoutRoutes, accountRoutes, shopRoutes, productRoutes}
}
