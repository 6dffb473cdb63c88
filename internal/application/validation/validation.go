// Package validation checks service request structs with the same struct tags
// gin binds HTTP requests with, so CLI and event callers get identical rules.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/printchain/backend/internal/domain/shared"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// Engine returns the shared validator. Field names in errors use json tags.
func Engine() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		instance.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return instance
}

// Struct validates req and converts failures into shared.ErrInvalidInput
// naming the offending fields.
func Struct(req any) error {
	err := Engine().Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return shared.ErrInvalidInput.WithMessage(err.Error())
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return shared.ErrInvalidInput.WithMessage(strings.Join(parts, "; "))
}
