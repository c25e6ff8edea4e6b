package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

var (
	Communities    = []string{"exam-stress", "homesick", "final-year", "social", "academic", "general"}
	PollTypes      = []string{"emoji", "multiple", "scale", "yesno"}
	PollCategories = []string{"academic", "wellness", "social", "campus", "career"}
	PollStatuses   = []string{"active", "closed"}
)

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func oneOf(values []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		for _, allowed := range values {
			if v == allowed {
				return true
			}
		}
		return false
	}
}

func registerCustomValidations() {
	validate.RegisterValidation("community", oneOf(Communities))
	validate.RegisterValidation("poll_type", oneOf(PollTypes))
	validate.RegisterValidation("poll_category", oneOf(PollCategories))
	validate.RegisterValidation("poll_status", oneOf(PollStatuses))
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"body": "Invalid request"}
	}

	errors := make(map[string]string)
	for _, err := range verrs {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "min":
			errors[field] = "Value is too short (min: " + err.Param() + ")"
		case "max":
			errors[field] = "Value is too long (max: " + err.Param() + ")"
		case "gte":
			errors[field] = "Value must be at least " + err.Param()
		case "lte":
			errors[field] = "Value must be at most " + err.Param()
		case "oneof":
			errors[field] = "Must be one of: " + err.Param()
		case "community":
			errors[field] = "Invalid community. Must be: " + strings.Join(Communities, ", ")
		case "poll_type":
			errors[field] = "Invalid poll type. Must be: " + strings.Join(PollTypes, ", ")
		case "poll_category":
			errors[field] = "Invalid category. Must be: " + strings.Join(PollCategories, ", ")
		case "poll_status":
			errors[field] = "Invalid status. Must be: active or closed"
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}

// ValidateVar validates a single variable
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}
