package handler

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// validationMessage turns validator errors into a field-keyed message map
// suitable for the error envelope. Non-validation errors fall back to the
// raw error string.
func validationMessage(err error) any {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}

	errors := make(map[string]string)
	for _, e := range validationErrors {
		field := e.Field()
		switch e.Tag() {
		case "required":
			errors[field] = "field is required"
		case "email":
			errors[field] = "invalid email format"
		case "min":
			errors[field] = "must be at least " + e.Param() + " characters"
		case "max":
			errors[field] = "must be at most " + e.Param() + " characters"
		case "len", "hexadecimal":
			errors[field] = "must be a valid id"
		default:
			errors[field] = "validation failed on " + e.Tag()
		}
	}
	return errors
}
