package types

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/unitrack/planner/internal/domain/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	mustRegister(v, "period", func(fl validator.FieldLevel) bool {
		_, err := model.ParsePeriod(fl.Field().String())
		return err == nil
	})
	mustRegister(v, "code", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// Validate checks a request struct against its validate tags. Failures wrap
// ErrInvalidRequest.
func Validate(req any) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}
