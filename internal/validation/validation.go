// Package validation runs struct-tag validation and collects per-field form
// errors keyed by the JSON field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// Errors maps a form field to its message. A nil or empty Errors is no error.
type Errors map[string]string

// Add keeps the first message reported for a field.
func (e Errors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Err returns e as an error, or nil when no field failed.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Messages overrides the default text of a failed rule. A key is either
// "field.tag" for one rule or "field" for every rule on that field.
type Messages map[string]string

// Struct validates s against its `validate` tags. Rule failures come back
// as Errors; anything else (a non-struct argument) is returned as is.
func Struct(s any, msgs Messages) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fes validator.ValidationErrors
	if !errors.As(err, &fes) {
		return err
	}
	out := Errors{}
	for _, fe := range fes {
		out.Add(fe.Field(), msgs.message(fe))
	}
	return out.Err()
}

func (m Messages) message(fe validator.FieldError) string {
	if s, ok := m[fe.Field()+"."+fe.Tag()]; ok {
		return s
	}
	if s, ok := m[fe.Field()]; ok {
		return s
	}
	switch fe.Tag() {
	case "required", "required_if", "notblank":
		return "This field is required"
	case "email":
		return "Please enter a valid email address"
	case "min":
		return fmt.Sprintf("Must be at least %s characters long", fe.Param())
	case "eqfield":
		return "Does not match"
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", fe.Param())
	}
	return "Invalid value"
}
