package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/application/storefront"
	"github.com/storefront/backend/internal/domain/configurator"
	"github.com/storefront/backend/internal/domain/shared"
)

// ConfiguratorHandler serves variant configurators
type ConfiguratorHandler struct {
	BaseHandler
	scope         *SessionScope
	configurators *storefront.ConfiguratorService
}

// NewConfiguratorHandler creates a new ConfiguratorHandler
func NewConfiguratorHandler(scope *SessionScope, configurators *storefront.ConfiguratorService) *ConfiguratorHandler {
	return &ConfiguratorHandler{scope: scope, configurators: configurators}
}

// ConfiguratorRequest selects options of a product configurator
//
//	@Description	Configurator request body
type ConfiguratorRequest struct {
	VariantID int         `json:"variant_id" binding:"gte=0"`
	Number    string      `json:"number" binding:"omitempty,max=64,ordernumber"`
	Selection map[int]int `json:"selection"`
}

// GetConfigurations godoc
//
//	@Summary		Read variant configurations
//	@Description	Groups and the carried option per variant number
//	@Tags			products
//	@Produce		json
//	@Param			numbers	query		string	true	"Comma separated variant numbers"
//	@Success		200		{object}	dto.Response{data=map[string][]configurator.Group}
//	@Failure		400		{object}	dto.Response
//	@Router			/products/configurations [get]
func (h *ConfiguratorHandler) GetConfigurations(c *gin.Context) {
	numbers, err := h.scope.Strings(c, "numbers")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	scope, err := h.scope.Load(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	groups, err := h.configurators.GetProductsConfigurations(c.Request.Context(), numbers, scope.Shop.TranslationContext)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, groups)
}

// GetConfigurator godoc
//
//	@Summary		Get a product configurator
//	@Description	Configurator of a product with selected and active options
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int					true	"Product ID"
//	@Param			request	body		ConfiguratorRequest	false	"Selection"
//	@Success		200		{object}	dto.Response{data=configurator.Set}
//	@Failure		400		{object}	dto.Response
//	@Failure		404		{object}	dto.Response
//	@Router			/products/{id}/configurator [post]
func (h *ConfiguratorHandler) GetConfigurator(c *gin.Context) {
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil || productID <= 0 {
		h.HandleError(c, shared.NewDomainError(shared.CodeInvalidInput, "Invalid product ID"))
		return
	}

	var req ConfiguratorRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}
	scope, err := h.scope.Load(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	ref := configurator.ProductRef{ID: productID, VariantID: req.VariantID, Number: req.Number}
	set, err := h.configurators.GetProductConfigurator(c.Request.Context(), ref, scope.Shop.TranslationContext, req.Selection)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, set)
}
