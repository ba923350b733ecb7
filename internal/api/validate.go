package api

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pickmart/pickmart-go/internal/apperrors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(useJSONTagNames)
	return v
}

// Report fields by 'json' tag instead of struct field name
// Look at documentation of 'RegisterTagNameFunc' for more details
func useJSONTagNames(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	// skip if tag key says it should be ignored
	if name == "-" {
		return ""
	}
	return name
}

// validateRequest checks an outbound payload against its struct tags before
// it is marshaled, so an invalid request never reaches the wire.
func validateRequest(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}

	parts := make([]string, 0, len(errs))
	for _, fieldError := range errs {
		parts = append(parts, fmt.Sprintf("%s (%s)", fieldError.Field(), fieldError.Tag()))
	}

	return fmt.Errorf("%w: %s", apperrors.ErrValidation, strings.Join(parts, ", "))
}
