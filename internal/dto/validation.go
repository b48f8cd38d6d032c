package dto

import (
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/sma-course-api/pkg/tagtext"
)

// TagTextRule names the validation that keeps free text storable in a term
// document.
const TagTextRule = "tagtext"

// NewValidator returns a validator with the request rules registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	if err := RegisterValidations(v); err != nil {
		panic(err)
	}
	return v
}

// RegisterValidations adds the request rules to v.
func RegisterValidations(v *validator.Validate) error {
	return v.RegisterValidation(TagTextRule, func(fl validator.FieldLevel) bool {
		return tagtext.Plain(fl.Field().String())
	})
}
