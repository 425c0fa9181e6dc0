// Package testutil holds helpers shared by the storefront test suites.
package testutil

import (
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// NewMockDB opens a GORM postgres dialect on top of sqlmock. Queries are
// matched as regular expressions and unmet expectations fail the test
// during cleanup.
func NewMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err, "Failed to create sqlmock")

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err, "Failed to open GORM connection")

	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet(), "Unmet database expectations")
		_ = conn.Close()
	})
	return db, mock
}

// TestContext is a gin context bound to a response recorder.
type TestContext struct {
	Context  *gin.Context
	Recorder *httptest.ResponseRecorder
}

// NewTestContext builds a gin context for a request. A non-nil body is
// sent as JSON.
func NewTestContext(t *testing.T, method, target string, body any) *TestContext {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = NewJSONRequest(t, method, target, body)
	return &TestContext{Context: c, Recorder: w}
}

// SetRequestID stores id where the request id middleware would.
func (tc *TestContext) SetRequestID(id string) *TestContext {
	tc.Context.Set(middleware.RequestIDKey, id)
	return tc
}

// SetSessionID stores id where the session middleware would.
func (tc *TestContext) SetSessionID(id string) *TestContext {
	tc.Context.Set(middleware.SessionIDKey, id)
	return tc
}
