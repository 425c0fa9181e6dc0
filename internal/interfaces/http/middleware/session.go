package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// SessionIDKey is the gin context key holding the storefront session id
const SessionIDKey = "session_id"

// SessionMiddlewareConfig holds configuration for the session middleware
type SessionMiddlewareConfig struct {
	Tokens       *auth.SessionTokenService
	CookieName   string
	CookiePath   string
	CookieDomain string
	Secure       bool
	Logger       *zap.Logger
}

// NewSessionMiddlewareConfig builds the middleware configuration from the session settings
func NewSessionMiddlewareConfig(tokens *auth.SessionTokenService, cfg config.SessionConfig, zapLogger *zap.Logger) SessionMiddlewareConfig {
	return SessionMiddlewareConfig{
		Tokens:       tokens,
		CookieName:   cfg.CookieName,
		CookiePath:   cfg.CookiePath,
		CookieDomain: cfg.CookieDomain,
		Secure:       cfg.CookieSecure,
		Logger:       zapLogger,
	}
}

// Session resolves the session id from the signed session cookie. A missing,
// invalid or expired token starts a fresh session. The cookie is re-issued on
// every request so the session expires only after a period of inactivity.
func Session(cfg SessionMiddlewareConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.CookiePath == "" {
		cfg.CookiePath = "/"
	}

	return func(c *gin.Context) {
		sessionID := ""
		if token, err := c.Cookie(cfg.CookieName); err == nil && token != "" {
			id, err := cfg.Tokens.Verify(token)
			if err != nil {
				cfg.Logger.Debug("Discarding session token", zap.Error(err))
			} else {
				sessionID = id
			}
		}
		if sessionID == "" {
			sessionID = auth.NewSessionID()
		}

		token, expiresAt, err := cfg.Tokens.Issue(sessionID)
		if err != nil {
			cfg.Logger.Error("Failed to issue session token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeInternal,
				"An unexpected error occurred",
				GetRequestID(c),
			))
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cfg.CookieName, token, int(time.Until(expiresAt).Seconds()), cfg.CookiePath, cfg.CookieDomain, cfg.Secure, true)

		c.Set(SessionIDKey, sessionID)
		c.Request = c.Request.WithContext(logger.WithSessionID(c.Request.Context(), sessionID))
		c.Next()
	}
}

// GetSessionID returns the session id set by the session middleware
func GetSessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}
