package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionRouter(t *testing.T) (*gin.Engine, *auth.SessionTokenService) {
	t.Helper()

	sessionCfg := config.SessionConfig{
		CookieName: "sf_session",
		Secret:     "0123456789abcdef0123456789abcdef",
		Issuer:     "storefront-test",
		TTL:        time.Hour,
		CookiePath: "/",
	}
	tokens := auth.NewSessionTokenService(sessionCfg)

	router := gin.New()
	router.Use(Session(NewSessionMiddlewareConfig(tokens, sessionCfg, nil)))
	router.GET("/test", func(c *gin.Context) {
		assert.Equal(t, GetSessionID(c), logger.GetSessionID(c.Request.Context()))
		c.String(http.StatusOK, GetSessionID(c))
	})
	return router, tokens
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "sf_session" {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func TestSession(t *testing.T) {
	t.Run("starts a session without cookie", func(t *testing.T) {
		router, tokens := newSessionRouter(t)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

		require.Equal(t, http.StatusOK, w.Code)
		sid := w.Body.String()
		assert.NotEmpty(t, sid)

		cookie := sessionCookie(t, w)
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
		got, err := tokens.Verify(cookie.Value)
		require.NoError(t, err)
		assert.Equal(t, sid, got)
	})

	t.Run("keeps the session of a valid cookie", func(t *testing.T) {
		router, tokens := newSessionRouter(t)
		token, _, err := tokens.Issue("existing-session")
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/test", nil)
		req.AddCookie(&http.Cookie{Name: "sf_session", Value: token})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "existing-session", w.Body.String())
	})

	t.Run("tampered cookie starts a fresh session", func(t *testing.T) {
		router, _ := newSessionRouter(t)

		req := httptest.NewRequest("GET", "/test", nil)
		req.AddCookie(&http.Cookie{Name: "sf_session", Value: "not-a-token"})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Body.String())
		assert.NotEqual(t, "not-a-token", sessionCookie(t, w).Value)
	})

	t.Run("token signed with another secret is rejected", func(t *testing.T) {
		router, _ := newSessionRouter(t)
		other := auth.NewSessionTokenService(config.SessionConfig{Secret: "another-secret", Issuer: "storefront-test", TTL: time.Hour})
		token, _, err := other.Issue("foreign-session")
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/test", nil)
		req.AddCookie(&http.Cookie{Name: "sf_session", Value: token})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.NotEqual(t, "foreign-session", w.Body.String())
	})
}
