package dto

import "net/http"

// API error codes. Domain errors are translated to these before they reach
// the response envelope.
const (
	ErrCodeInternal        = "ERR_INTERNAL"
	ErrCodeConfiguration   = "ERR_CONFIGURATION"
	ErrCodeValidation      = "ERR_VALIDATION"
	ErrCodeUnauthorized    = "ERR_UNAUTHORIZED"
	ErrCodeNotFound        = "ERR_NOT_FOUND"
	ErrCodeInvalidState    = "ERR_INVALID_STATE"
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput    = "ERR_INVALID_INPUT"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
	ErrCodeRateLimited     = "ERR_RATE_LIMITED"
)

// errorKind ties an API code to its HTTP status and, where one exists, the
// domain code that produces it.
type errorKind struct {
	code   string
	domain string
	status int
}

var errorKinds = []errorKind{
	{ErrCodeInternal, "INTERNAL_ERROR", http.StatusInternalServerError},
	// a configured default that does not resolve is an operator problem
	{ErrCodeConfiguration, "CONFIGURATION_ERROR", http.StatusInternalServerError},
	{ErrCodeValidation, "VALIDATION_ERROR", http.StatusBadRequest},
	{ErrCodeUnauthorized, "UNAUTHORIZED", http.StatusUnauthorized},
	{ErrCodeNotFound, "NOT_FOUND", http.StatusNotFound},
	{ErrCodeInvalidState, "INVALID_STATE", http.StatusUnprocessableEntity},
	{ErrCodeBadRequest, "BAD_REQUEST", http.StatusBadRequest},
	{ErrCodeInvalidInput, "INVALID_INPUT", http.StatusBadRequest},
	{ErrCodeRequestTooLarge, "", http.StatusRequestEntityTooLarge},
	{ErrCodeRateLimited, "", http.StatusTooManyRequests},
}

var (
	statusByCode = make(map[string]int, len(errorKinds))
	codeByDomain = make(map[string]string, len(errorKinds))
)

func init() {
	for _, k := range errorKinds {
		statusByCode[k.code] = k.status
		if k.domain != "" {
			codeByDomain[k.domain] = k.code
		}
	}
}

// GetHTTPStatus returns the HTTP status for an API error code, 500 when the
// code is unknown.
func GetHTTPStatus(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// NormalizeErrorCode converts a domain error code to its API code. API codes
// and unknown codes are returned unchanged.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := codeByDomain[code]; ok {
		return apiCode
	}
	return code
}
