package handler

import (
	"github.com/gin-gonic/gin"
	checkoutapp "github.com/storefront/backend/internal/application/checkout"
	"github.com/storefront/backend/internal/application/storefront"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shop"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// ShopHandler exposes the shop context and batch shop reads
type ShopHandler struct {
	BaseHandler
	scope    *SessionScope
	sessions *checkoutapp.SessionService
	shops    *storefront.ShopContextService
}

// NewShopHandler creates a new ShopHandler
func NewShopHandler(scope *SessionScope, sessions *checkoutapp.SessionService, shops *storefront.ShopContextService) *ShopHandler {
	return &ShopHandler{scope: scope, sessions: sessions, shops: shops}
}

// GetContext godoc
//
//	@Summary		Get the shop context
//	@Description	Shop, currency, customer group and country of the session
//	@Tags			shops
//	@Produce		json
//	@Success		200	{object}	dto.Response{data=shop.ShopContext}
//	@Failure		500	{object}	dto.Response
//	@Router			/shop/context [get]
func (h *ShopHandler) GetContext(c *gin.Context) {
	scope, err := h.scope.Load(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, scope.Shop)
}

// SelectShop godoc
//
//	@Summary		Switch the shop
//	@Description	Change the shop of the session and return its context
//	@Tags			shops
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SelectIDRequest	true	"Shop"
//	@Success		200		{object}	dto.Response{data=shop.ShopContext}
//	@Failure		400		{object}	dto.Response
//	@Failure		404		{object}	dto.Response
//	@Router			/shop [put]
func (h *ShopHandler) SelectShop(c *gin.Context) {
	var req SelectIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	data, err := h.sessions.SelectShop(c.Request.Context(), middleware.GetSessionID(c), req.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	sc, err := h.shops.Get(c.Request.Context(), data.ShopID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sc)
}

// List godoc
//
//	@Summary		Read shops
//	@Description	Read fully hydrated shops by id, in the requested order
//	@Tags			shops
//	@Produce		json
//	@Param			ids	query		string	true	"Comma separated shop ids"	example(3,1)
//	@Success		200	{object}	dto.Response{data=[]shop.Shop}
//	@Failure		400	{object}	dto.Response
//	@Router			/shops [get]
func (h *ShopHandler) List(c *gin.Context) {
	ids, err := h.scope.IDs(c, "ids")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	scope, err := h.scope.Load(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	shops, err := h.shops.List(c.Request.Context(), ids, scope.Shop.TranslationContext)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Batch(c, shops, shared.UniqueIDs(ids), shopIDs(shops))
}

func shopIDs(shops []*shop.Shop) []int {
	ids := make([]int, len(shops))
	for i, s := range shops {
		ids[i] = s.ID
	}
	return ids
}
