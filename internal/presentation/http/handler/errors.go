package handler

import (
	"errors"
	"net/http"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sangkips/tillpoint-api/internal/application/register"
	"github.com/sangkips/tillpoint-api/internal/domain/pos"
	"github.com/sangkips/tillpoint-api/internal/domain/repository"
	"github.com/sangkips/tillpoint-api/internal/presentation/http/dto/response"
	"github.com/sangkips/tillpoint-api/pkg/apiclient"
	"github.com/sangkips/tillpoint-api/pkg/apperror"
)

var statusBySentinel = []struct {
	err  error
	code int
}{
	{pos.ErrStockExceeded, http.StatusUnprocessableEntity},
	{pos.ErrInvalidDiscount, http.StatusUnprocessableEntity},
	{pos.ErrInvalidQuantity, http.StatusUnprocessableEntity},
	{pos.ErrInvalidTaxRate, http.StatusUnprocessableEntity},
	{pos.ErrDuplicateIdentifier, http.StatusUnprocessableEntity},
	{pos.ErrInvalidLine, http.StatusUnprocessableEntity},
	{pos.ErrNegativePrice, http.StatusUnprocessableEntity},
	{pos.ErrIdentifierRequired, http.StatusUnprocessableEntity},
	{pos.ErrEmptyCart, http.StatusUnprocessableEntity},
	{pos.ErrInsufficientPayment, http.StatusUnprocessableEntity},
	{pos.ErrLineNotFound, http.StatusNotFound},
	{register.ErrUnknownTab, http.StatusNotFound},
	{register.ErrNoHeldBill, http.StatusNotFound},
	{register.ErrProductNotFound, http.StatusNotFound},
	{register.ErrIdentifierNotFound, http.StatusNotFound},
	{register.ErrTabHasHeldBill, http.StatusConflict},
	{register.ErrCartNotEmpty, http.StatusConflict},
	{register.ErrCheckoutInProgress, http.StatusConflict},
	{register.ErrIdentifierSold, http.StatusConflict},
	{register.ErrIdentifierMismatch, http.StatusUnprocessableEntity},
	{register.ErrCustomerRequired, http.StatusUnprocessableEntity},
	{register.ErrEmptyCode, http.StatusBadRequest},
	{repository.ErrDuplicate, http.StatusConflict},
}

// mapError converts domain sentinels, validator failures and upstream API
// errors into AppErrors. Anything else passes through unchanged.
func mapError(err error) error {
	if err == nil || apperror.IsAppError(err) {
		return err
	}
	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			msg := err.Error()
			if s.err == repository.ErrDuplicate {
				msg = "Resource already exists"
			}
			return apperror.NewAppError(s.code, upperFirst(msg))
		}
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperror.NewValidationError(fieldErrors(verrs))
	}
	var se *apiclient.StatusError
	if errors.As(err, &se) {
		code := se.StatusCode
		if code < 400 {
			code = http.StatusBadGateway
		}
		return apperror.NewAppError(code, se.Message)
	}
	return err
}

// fail writes err through the response envelope after mapping it
func fail(c *gin.Context, err error) {
	response.Error(c, mapError(err))
}

// bindJSON decodes the body. Binding-tag failures become 422 field errors;
// malformed JSON is a 400.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			response.ValidationError(c, fieldErrors(verrs))
			return false
		}
		response.BadRequest(c, "Invalid request body")
		return false
	}
	return true
}

func fieldErrors(verrs validator.ValidationErrors) []apperror.FieldError {
	out := make([]apperror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, apperror.FieldError{
			Field:   snakeCase(fe.Field()),
			Message: ruleMessage(fe),
		})
	}
	return out
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "oneof":
		return "Must be one of: " + fe.Param()
	case "min", "gte":
		return "Must be at least " + fe.Param()
	case "max", "lte":
		return "Must be at most " + fe.Param()
	case "gt":
		return "Must be greater than " + fe.Param()
	}
	return "Is invalid"
}

func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 && !unicode.IsUpper(rune(s[i-1])) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
