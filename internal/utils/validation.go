package utils

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var (
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their json name, falling back to the Go name with a
	// lowercase first letter, which is how the request bodies spell them.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name, _, _ := strings.Cut(f.Tag.Get("json"), ","); name != "" && name != "-" {
			return name
		}
		return strings.ToLower(f.Name[:1]) + f.Name[1:]
	})
	must(v.RegisterValidation("notblank", validators.NotBlank))
	must(v.RegisterValidation("username", matches(usernamePattern)))
	must(v.RegisterValidation("slug", matches(slugPattern)))
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func matches(pattern *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return pattern.MatchString(fl.Field().String())
	}
}

// ValidationFields checks v against its validate tags and returns one message
// per failing field, or nil when v is valid.
func ValidationFields(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		return map[string]string{"form": err.Error()}
	}
	fields := make(map[string]string, len(invalid))
	for _, fe := range invalid {
		if _, seen := fields[fe.Field()]; !seen {
			fields[fe.Field()] = fieldMessage(fe)
		}
	}
	return fields
}

// Validate is ValidationFields as an INVALID_INPUT error.
func Validate(v interface{}) error {
	if fields := ValidationFields(v); len(fields) > 0 {
		return NewValidationError(fields)
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fe.Field() + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "email":
		return "enter a valid email address"
	case "username":
		return "username may contain only letters, digits and @/./+/-/_"
	case "slug":
		return "slug may contain only letters, digits, hyphens and underscores"
	default:
		return fe.Field() + " is invalid"
	}
}
