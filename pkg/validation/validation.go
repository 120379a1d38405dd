package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	v *validator.Validate

	// Bar number: 3-40 chars, alphanumerics plus space, dash, slash.
	reBarNum = regexp.MustCompile(`^[A-Za-z0-9 /-]{3,40}$`)
	// Case number: starts alphanumeric, then alphanumerics, dash, slash, dot.
	reCaseNum = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9/.\-]{0,39}$`)
)

func init() {
	v = validator.New()

	// Use JSON tag as the field name in error output
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// Custom: bar number
	_ = v.RegisterValidation("barnum", func(fl validator.FieldLevel) bool {
		val := strings.TrimSpace(fl.Field().String())
		if val == "" { // let omitempty handle empty
			return true
		}
		return reBarNum.MatchString(val)
	})

	// Custom: case number
	_ = v.RegisterValidation("casenum", func(fl validator.FieldLevel) bool {
		val := strings.TrimSpace(fl.Field().String())
		if val == "" {
			return true
		}
		return reCaseNum.MatchString(val)
	})
}

// Validate returns map[field][]messages (Laravel-like). A nil map means the
// value is valid.
func Validate(s any) (map[string][]string, error) {
	err := v.Struct(s)
	if err == nil {
		return nil, nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil, err
	}
	out := make(map[string][]string, len(ve))
	for _, e := range ve {
		// Field() is already the json name
		out[e.Field()] = append(out[e.Field()], message(e))
	}
	return out, nil
}

func message(e validator.FieldError) string {
	isString := e.Kind() == reflect.String
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min", "gte":
		if isString {
			return fmt.Sprintf("Must be at least %s characters", e.Param())
		}
		return fmt.Sprintf("Must be at least %s", e.Param())
	case "max", "lte":
		if isString {
			return fmt.Sprintf("Must be at most %s characters", e.Param())
		}
		return fmt.Sprintf("Must be at most %s", e.Param())
	case "gt":
		return fmt.Sprintf("Must be greater than %s", e.Param())
	case "oneof":
		return "Must be one of: " + strings.ReplaceAll(e.Param(), " ", ", ")
	case "datetime":
		return "Invalid date, use RFC 3339"
	case "barnum":
		return "Invalid bar number format"
	case "casenum":
		return "Invalid case number format"
	}
	// Tag without a friendly message
	return e.Error()
}
