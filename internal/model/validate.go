package model

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("principle", func(fl validator.FieldLevel) bool {
		return Principle(fl.Field().String()).Valid()
	})
	return v
}

// Validate checks a question definition before it is stored.
func (q *Question) Validate() error {
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("invalid question %q: %w", q.Code, err)
	}
	return nil
}

// Validate checks a tension before it is stored.
func (t *Tension) Validate() error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("invalid tension: %w", err)
	}
	if t.Principle1 == t.Principle2 {
		return fmt.Errorf("invalid tension: principles must differ")
	}
	return nil
}
