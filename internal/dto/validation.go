package dto

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/echopind/echopind_backend/internal/apperrors"
	"github.com/echopind/echopind_backend/internal/core/domain"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators installs the custom binding tags used by the request types
// and reports field names by their json or form name.
func RegisterValidators(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	if err := v.RegisterValidation("role", validateRole); err != nil {
		return fmt.Errorf("register role validator: %w", err)
	}
	if err := v.RegisterValidation("isodate", validateISODate); err != nil {
		return fmt.Errorf("register isodate validator: %w", err)
	}
	return nil
}

func validateRole(fl validator.FieldLevel) bool {
	_, err := domain.ParseRole(fl.Field().String())
	return err == nil
}

func validateISODate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	_, err := ParseDate(&s)
	return err == nil
}

func newValidationError(msg string) error {
	return fmt.Errorf("%w: %s", apperrors.ErrValidation, msg)
}
