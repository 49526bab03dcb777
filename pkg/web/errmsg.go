package web

import "github.com/go-playground/validator/v10"

// GetErrorMsg maps a binding validation error to a human readable message.
func GetErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return " field is required"
	case "min":
		return " field value must be at least " + fe.Param()
	case "max":
		return " field value must be at most " + fe.Param()
	case "oneof":
		return " field must be one of " + fe.Param()
	case "currency":
		return " field must be a supported currency"
	case "alphanum":
		return " field must contain only letters and numbers"
	case "email":
		return " field must be a valid email address"
	}

	return " field is invalid"
}
