package handler

import (
	"github.com/gin-gonic/gin"
	checkoutapp "github.com/storefront/backend/internal/application/checkout"
	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// AccountHandler handles customer login and logout
type AccountHandler struct {
	BaseHandler
	sessions *checkoutapp.SessionService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(sessions *checkoutapp.SessionService) *AccountHandler {
	return &AccountHandler{sessions: sessions}
}

// LoginRequest represents a customer login
//
//	@Description	Customer login request body
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"jane@example.com"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

// LoginResponse carries the customer now bound to the session
//
//	@Description	Customer login response
type LoginResponse struct {
	Customer *customer.Customer `json:"customer"`
}

// Login godoc
//
//	@Summary		Log in a customer
//	@Description	Bind a customer account to the current session
//	@Tags			account
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest	true	"Credentials"
//	@Success		200		{object}	dto.Response{data=LoginResponse}
//	@Failure		400		{object}	dto.Response
//	@Failure		401		{object}	dto.Response
//	@Failure		429		{object}	dto.Response
//	@Router			/account/login [post]
func (h *AccountHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	cust, err := h.sessions.Login(c.Request.Context(), middleware.GetSessionID(c), req.Email, req.Password)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	logger.GetGinLogger(c).Info("Customer logged in", zap.Int("customer_id", cust.ID))
	h.Success(c, LoginResponse{Customer: cust})
}

// Logout godoc
//
//	@Summary		Log out
//	@Description	Remove the customer and the address overrides from the session
//	@Tags			account
//	@Produce		json
//	@Success		204
//	@Router			/account/logout [post]
func (h *AccountHandler) Logout(c *gin.Context) {
	if _, err := h.sessions.Logout(c.Request.Context(), middleware.GetSessionID(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
