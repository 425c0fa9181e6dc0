package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

const (
	msgMisconfigured = "The storefront is not configured correctly"
	msgUnexpected    = "An unexpected error occurred"
)

// BaseHandler holds the response helpers shared by the storefront handlers
type BaseHandler struct{}

// Success answers 200 with data in the standard envelope
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Batch answers a batch read. requested holds the de-duplicated ids in
// request order, returned the ids present in data.
func (h *BaseHandler) Batch(c *gin.Context, data any, requested, returned []int) {
	c.JSON(http.StatusOK, dto.NewBatchResponse(data, requested, returned))
}

// NoContent answers 204
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error answers with the error envelope, tagged with the request id
func (h *BaseHandler) Error(c *gin.Context, status int, code, message string) {
	c.JSON(status, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BindError answers a failed request binding
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	middleware.HandleValidationError(c, err)
}

// HandleError maps err to a response and attaches it to the gin context for
// the access log and the server span. Domain errors keep their message.
// Configuration and unknown errors are logged and answered with a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	var (
		cfgErr    *shared.ConfigurationError
		domainErr *shared.DomainError
	)
	switch {
	case errors.As(err, &cfgErr):
		logger.GetGinLogger(c).Error("Storefront configuration error",
			zap.String("setting", cfgErr.Setting),
			zap.String("entity", cfgErr.Entity),
			zap.Int("id", cfgErr.ID),
		)
		h.Error(c, http.StatusInternalServerError, dto.ErrCodeConfiguration, msgMisconfigured)
	case errors.As(err, &domainErr):
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
	default:
		logger.GetGinLogger(c).Error("Unhandled error", zap.Error(err))
		h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, msgUnexpected)
	}
}
