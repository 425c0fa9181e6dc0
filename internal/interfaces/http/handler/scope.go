package handler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	checkoutapp "github.com/storefront/backend/internal/application/checkout"
	"github.com/storefront/backend/internal/domain/checkout"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shop"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// DefaultMaxBatchSize caps the number of ids accepted by batch reads
const DefaultMaxBatchSize = 100

// RequestScope is the session state a request runs in
type RequestScope struct {
	SessionID string
	Session   *checkout.SessionData
	Shop      *shop.ShopContext
}

// SessionScope loads the session and its shop context for a request
type SessionScope struct {
	sessions *checkoutapp.SessionService
	shops    shop.ContextProvider
	maxBatch int
}

// NewSessionScope creates a new SessionScope. maxBatch limits the ids of a
// batch read; zero means DefaultMaxBatchSize.
func NewSessionScope(sessions *checkoutapp.SessionService, shops shop.ContextProvider, maxBatch int) *SessionScope {
	if maxBatch <= 0 {
		maxBatch = DefaultMaxBatchSize
	}
	return &SessionScope{sessions: sessions, shops: shops, maxBatch: maxBatch}
}

// Load returns the scope of the current request
func (s *SessionScope) Load(c *gin.Context) (*RequestScope, error) {
	sessionID := middleware.GetSessionID(c)
	data, err := s.sessions.Load(c.Request.Context(), sessionID)
	if err != nil {
		return nil, err
	}
	sc, err := s.shops.Get(c.Request.Context(), data.ShopID)
	if err != nil {
		return nil, err
	}
	return &RequestScope{SessionID: sessionID, Session: data, Shop: sc}, nil
}

// IDs reads the id list of a batch read
func (s *SessionScope) IDs(c *gin.Context, param string) ([]int, error) {
	return parseIDs(c, param, s.maxBatch)
}

// Strings reads the value list of a batch read
func (s *SessionScope) Strings(c *gin.Context, param string) ([]string, error) {
	values := parseStrings(c, param)
	if len(values) > s.maxBatch {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("%s: at most %d values are allowed", param, s.maxBatch))
	}
	return values, nil
}

// parseIDs reads a comma separated id list such as "3,1,2". The
// parameter may also be repeated. Order is kept.
func parseIDs(c *gin.Context, param string, limit int) ([]int, error) {
	var ids []int
	for _, raw := range c.QueryArray(param) {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.Atoi(part)
			if err != nil || id <= 0 {
				return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("%s: %q is not a valid id", param, part))
			}
			ids = append(ids, id)
		}
	}
	if len(ids) > limit {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("%s: at most %d ids are allowed", param, limit))
	}
	return ids, nil
}

// parseStrings reads a comma separated list of non-empty values
func parseStrings(c *gin.Context, param string) []string {
	var values []string
	for _, raw := range c.QueryArray(param) {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				values = append(values, part)
			}
		}
	}
	return values
}
