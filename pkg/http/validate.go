package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// ValidationError describes one rejected request field.
type ValidationError struct {
	Code    string         `json:"code,omitempty"`
	Field   string         `json:"field,omitempty"`
	Message string         `json:"message,omitempty"`
	Params  map[string]any `json:"params,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their wire name so clients see "patients", not "Patients".
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// ReadAndValidateRequest binds req from the body or query, applies struct
// defaults and validates it. A nil result means req is ready to use.
func ReadAndValidateRequest(c echo.Context, req any) []ValidationError {
	if err := c.Bind(req); err != nil {
		return toValidationErrors(err)
	}
	if err := defaults.Set(req); err != nil {
		return toValidationErrors(err)
	}
	if err := validate.StructCtx(c.Request().Context(), req); err != nil {
		return toValidationErrors(err)
	}
	return nil
}

func toValidationErrors(err error) []ValidationError {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		out := make([]ValidationError, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			out = append(out, fieldError(fe))
		}
		return out
	}

	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg = fmt.Sprint(he.Message)
	}
	return []ValidationError{{Code: "ERR_UNKNOWN", Message: msg}}
}

// rule describes how a validator tag is reported: the message template
// (field name first, tag param second) and the key the param is exposed under.
type rule struct {
	message  string
	paramKey string
}

var rules = map[string]rule{
	"required": {message: "%s is required"},
	"min":      {message: "%s must be at least %s", paramKey: "min"},
	"gte":      {message: "%s must be greater than or equal to %s", paramKey: "min"},
	"max":      {message: "%s must be at most %s", paramKey: "max"},
	"lte":      {message: "%s must be less than or equal to %s", paramKey: "max"},
	"gt":       {message: "%s must be greater than %s", paramKey: "value"},
	"lt":       {message: "%s must be less than %s", paramKey: "value"},
	"oneof":    {message: "%s must be one of: %s", paramKey: "options"},
}

func fieldError(fe validator.FieldError) ValidationError {
	ve := ValidationError{
		Code:  "ERR_" + strings.ToUpper(fe.Tag()),
		Field: fe.Field(),
	}
	r, ok := rules[fe.Tag()]
	if !ok {
		ve.Message = fmt.Sprintf("%s failed validation: %s", fe.Field(), fe.Tag())
		return ve
	}

	param := fe.Param()
	switch {
	case fe.Tag() == "oneof":
		ve.Message = fmt.Sprintf(r.message, fe.Field(), strings.ReplaceAll(param, " ", ", "))
	case fe.Tag() == "required":
		ve.Message = fmt.Sprintf(r.message, fe.Field())
	default:
		ve.Message = fmt.Sprintf(r.message, fe.Field(), param)
		if fe.Kind() == reflect.String && (fe.Tag() == "min" || fe.Tag() == "max") {
			ve.Message += " characters"
		}
	}

	if r.paramKey != "" {
		var v any = param
		if fe.Tag() == "oneof" {
			v = strings.Fields(param)
		}
		ve.Params = map[string]any{r.paramKey: v}
	}
	return ve
}
