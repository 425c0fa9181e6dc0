// Package middleware provides the HTTP middleware of the storefront API.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey is the gin context key holding the request id
const RequestIDKey = "request_id"

// RequestIDHeader carries the request id in requests and responses
const RequestIDHeader = "X-Request-ID"

// MaxRequestIDLength is the maximum length for request IDs taken from headers
const MaxRequestIDLength = 128

// RequestID adopts a well formed X-Request-ID header or issues a new id, and
// echoes it on the response
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if !validRequestID(requestID) {
			requestID = newRequestID()
		}
		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// GetRequestID returns the request id set by RequestID. Without the
// middleware it falls back to a well formed header.
func GetRequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	if id := c.GetHeader(RequestIDHeader); validRequestID(id) {
		return id
	}
	return ""
}

// newRequestID returns a time ordered UUID so ids sort by arrival
func newRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// validRequestID accepts ids of up to MaxRequestIDLength visible ASCII
// characters, which keeps client ids from breaking log lines.
func validRequestID(id string) bool {
	if id == "" || len(id) > MaxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}
	return true
}
