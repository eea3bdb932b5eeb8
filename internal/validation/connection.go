package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	hostCharsRegex = regexp.MustCompile(`^[a-zA-Z0-9.:-]+$`)
	usernameRegex  = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
)

// ConnectionConfig holds SSH-style connection parameters for a resource
type ConnectionConfig struct {
	Host       string   `json:"host" validate:"required,hostchars"`
	Port       int      `json:"port" validate:"port"`
	Username   string   `json:"username" validate:"required,username"`
	PrivateKey string   `json:"private_key,omitempty"`
	Password   string   `json:"password,omitempty"`
	Timeout    *float64 `json:"timeout,omitempty" validate:"omitempty,finite,gte=0"` // seconds
}

// ConnectionResult is the outcome of ValidateConnection
type ConnectionResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report JSON field names instead of Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	mustRegister(v, "hostchars", func(fl validator.FieldLevel) bool {
		return hostCharsRegex.MatchString(fl.Field().String())
	})
	mustRegister(v, "username", func(fl validator.FieldLevel) bool {
		return usernameRegex.MatchString(fl.Field().String())
	})
	mustRegister(v, "port", func(fl validator.FieldLevel) bool {
		return IsValidPort(int(fl.Field().Int()))
	})
	mustRegister(v, "finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// ValidateConnection checks every connection parameter and returns all problems at once
func ValidateConnection(cfg ConnectionConfig) ConnectionResult {
	res := ConnectionResult{Errors: []string{}}

	if err := validate.Struct(cfg); err != nil {
		res.Errors = append(res.Errors, describeValidationErrors(err)...)
	}

	if strings.TrimSpace(cfg.PrivateKey) == "" && cfg.Password == "" {
		res.Errors = append(res.Errors, "at least one authentication method (private_key or password) is required")
	}

	res.Valid = len(res.Errors) == 0
	return res
}

// describeValidationErrors turns validator errors into user-facing messages
func describeValidationErrors(err error) []string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", field))
		case "hostchars":
			messages = append(messages, fmt.Sprintf("%s may only contain letters, digits, '.', '-' and ':'", field))
		case "username":
			messages = append(messages, fmt.Sprintf("%s may only contain letters, digits, '.', '_' and '-'", field))
		case "port":
			messages = append(messages, fmt.Sprintf("%s must be an integer between 1 and 65535", field))
		case "finite":
			messages = append(messages, fmt.Sprintf("%s must be a finite number", field))
		case "gte":
			messages = append(messages, fmt.Sprintf("%s must be non-negative", field))
		default:
			messages = append(messages, fmt.Sprintf("%s failed validation (%s)", field, fe.Tag()))
		}
	}
	return messages
}
