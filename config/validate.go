package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hedisam/goactor/internal/logging"
)

var validate = newValidator()

// newValidator reports fields by their koanf key.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("koanf"), ",")
		return name
	})
	return v
}

// Validate checks every section, reporting the first invalid field by its koanf path.
func (c *Config) Validate() error {
	if !logging.ValidLevel(c.Log.Level) {
		return fmt.Errorf("log.level: unknown level %q", c.Log.Level)
	}

	sections := []struct {
		name  string
		value interface{}
	}{
		{"log", c.Log},
		{"supervisor", c.Supervisor},
		{"example", c.Example},
	}
	for _, section := range sections {
		if err := validate.Struct(section.value); err != nil {
			return fieldError(section.name, err)
		}
	}
	return nil
}

func fieldError(section string, err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return fmt.Errorf("%s: %w", section, err)
	}
	fe := errs[0]
	if fe.Param() == "" {
		return fmt.Errorf("%s.%s: failed %s, got %v", section, fe.Field(), fe.Tag(), fe.Value())
	}
	return fmt.Errorf("%s.%s: must be %s %s, got %v", section, fe.Field(), fe.Tag(), fe.Param(), fe.Value())
}
