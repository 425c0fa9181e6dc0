package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/config"
)

// CORSConfig holds CORS middleware configuration
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// DefaultCORSConfig allows no origin until AllowOrigins is configured. The
// session cookie needs credentials.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", RequestIDHeader, "Accept", "Origin", "Cache-Control"},
		ExposeHeaders:    []string{RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

// CORSConfigFromHTTP builds the CORS configuration from the HTTP settings.
// Empty method and header lists keep the defaults.
func CORSConfigFromHTTP(cfg config.HTTPConfig) CORSConfig {
	c := DefaultCORSConfig()
	c.AllowOrigins = cfg.CORSAllowOrigins
	if len(cfg.CORSAllowMethods) > 0 {
		c.AllowMethods = cfg.CORSAllowMethods
	}
	if len(cfg.CORSAllowHeaders) > 0 {
		c.AllowHeaders = cfg.CORSAllowHeaders
	}
	return c
}

// CORSWithConfig answers preflight requests and sets the CORS headers for
// allowed origins. Disallowed origins get no CORS headers, so browsers block
// the response.
func CORSWithConfig(cfg CORSConfig) gin.HandlerFunc {
	wildcard := slices.Contains(cfg.AllowOrigins, "*")
	origins := make(map[string]bool, len(cfg.AllowOrigins))
	for _, o := range cfg.AllowOrigins {
		origins[strings.TrimSuffix(o, "/")] = true
	}

	preflight := http.Header{}
	preflight.Set("Access-Control-Allow-Methods", strings.Join(cfg.AllowMethods, ", "))
	preflight.Set("Access-Control-Allow-Headers", strings.Join(cfg.AllowHeaders, ", "))
	if cfg.MaxAge > 0 {
		preflight.Set("Access-Control-Max-Age", strconv.Itoa(int(cfg.MaxAge/time.Second)))
	}
	expose := strings.Join(cfg.ExposeHeaders, ", ")

	return func(c *gin.Context) {
		h := c.Writer.Header()
		origin := c.GetHeader("Origin")
		isPreflight := c.Request.Method == http.MethodOptions

		if origin != "" {
			h.Add("Vary", "Origin")
			switch {
			case wildcard:
				h.Set("Access-Control-Allow-Origin", "*")
			case origins[origin]:
				h.Set("Access-Control-Allow-Origin", origin)
				if cfg.AllowCredentials {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
			default:
				origin = ""
			}
		}

		if origin != "" {
			if isPreflight {
				for k, v := range preflight {
					h[k] = v
				}
			} else if expose != "" {
				h.Set("Access-Control-Expose-Headers", expose)
			}
		}

		if isPreflight {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
