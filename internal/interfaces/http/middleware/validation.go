package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// orderNumberPattern matches variant order numbers such as SW10002.3
var orderNumberPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

var setupValidatorOnce sync.Once

// SetupValidator registers the storefront validation tags on gin's validator
// and makes errors report JSON (or form) field names. It is safe to call
// more than once.
func SetupValidator() {
	setupValidatorOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(fieldName)
		_ = v.RegisterValidation("ordernumber", func(fl validator.FieldLevel) bool {
			return orderNumberPattern.MatchString(fl.Field().String())
		})
	})
}

func fieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		name, _, _ = strings.Cut(fld.Tag.Get("form"), ",")
	}
	return name
}

// FormatValidationErrors formats binding errors into a standard response.
// Errors other than field validation failures become a bad request.
func FormatValidationErrors(err error, requestID string) dto.Response {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return dto.NewErrorResponseWithRequestID(dto.ErrCodeBadRequest, "Malformed request", requestID)
	}

	details := make([]dto.ValidationDetail, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, dto.ValidationDetail{Field: fe.Field(), Message: validationMessage(fe)})
	}
	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// HandleValidationError answers 400 for a failed request binding, or 413 when
// the body ran into the BodyLimit cap
func HandleValidationError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		abortTooLarge(c)
		return
	}
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, GetRequestID(c)))
}

var validationMessages = map[string]string{
	"required":    "This field is required",
	"email":       "Invalid email format",
	"gt":          "Must be greater than %s",
	"gte":         "Must be greater than or equal to %s",
	"ordernumber": "Only letters, digits, dots, dashes and underscores are allowed",
}

func validationMessage(fe validator.FieldError) string {
	switch tag := fe.Tag(); tag {
	case "min", "max":
		bound := "at least"
		if tag == "max" {
			bound = "at most"
		}
		if fe.Kind() == reflect.String {
			return "Must be " + bound + " " + fe.Param() + " characters"
		}
		return "Must be " + bound + " " + fe.Param()
	default:
		msg, ok := validationMessages[tag]
		if !ok {
			return "Invalid value"
		}
		return strings.Replace(msg, "%s", fe.Param(), 1)
	}
}
