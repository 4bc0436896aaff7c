package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

type ValidationError struct {
	Field   string      `json:"field"`
	Value   interface{} `json:"value"`
	Tag     string      `json:"tag"`
	Message string      `json:"message"`
}

func (e ValidationError) Error() string {
	return e.Message
}

// ValidationErrors is returned by Validate when one or more fields are invalid.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, ve := range e {
		msgs = append(msgs, ve.Message)
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Validate checks the config against its struct tags.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	errs := FormatValidationErrors(err)
	if len(errs) == 0 {
		return fmt.Errorf("invalid config: %w", err)
	}
	return errs
}

func FormatValidationErrors(err error) ValidationErrors {
	var validationErrors ValidationErrors

	if validatorErrs, ok := err.(validator.ValidationErrors); ok {
		for _, err := range validatorErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   configKey(err),
				Value:   err.Value(),
				Tag:     err.Tag(),
				Message: getErrorMessage(err),
			})
		}
	}

	return validationErrors
}

// configKey turns "Config.server.port" into "server.port".
func configKey(err validator.FieldError) string {
	ns := err.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func getErrorMessage(err validator.FieldError) string {
	key := configKey(err)
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", key)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", key)
	case "min":
		return fmt.Sprintf("%s must be at least %s", key, err.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", key, err.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", key, err.Param())
	default:
		return fmt.Sprintf("%s is invalid", key)
	}
}
