package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/application/storefront"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shop"
)

// PageHandler serves static shop pages
type PageHandler struct {
	BaseHandler
	scope *SessionScope
	pages *storefront.ShopPageService
}

// NewPageHandler creates a new PageHandler
func NewPageHandler(scope *SessionScope, pages *storefront.ShopPageService) *PageHandler {
	return &PageHandler{scope: scope, pages: pages}
}

// List godoc
//
//	@Summary		Read shop pages
//	@Description	Read static pages by id in the language of the session shop
//	@Tags			pages
//	@Produce		json
//	@Param			ids	query		string	true	"Comma separated page ids"
//	@Success		200	{object}	dto.Response{data=[]shop.Page}
//	@Failure		400	{object}	dto.Response
//	@Router			/pages [get]
func (h *PageHandler) List(c *gin.Context) {
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

	pages, err := h.pages.Ordered(c.Request.Context(), ids, scope.Shop.TranslationContext)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Batch(c, pages, shared.UniqueIDs(ids), pageIDs(pages))
}

func pageIDs(pages []*shop.Page) []int {
	ids := make([]int, len(pages))
	for i, p := range pages {
		ids[i] = p.ID
	}
	return ids
}
