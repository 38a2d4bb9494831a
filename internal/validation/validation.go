// Пакет validation — проверка входных данных API через go-playground/validator.
// Ошибки возвращаются списком FieldError с JSON-именами полей.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError — описание ошибки одного поля.
type FieldError struct {
	// Field — JSON-имя поля
	Field string `json:"field"`
	// Rule — нарушенное правило (required, min, datetime, ...)
	Rule string `json:"rule"`
	// Message — сообщение для клиента
	Message string `json:"message"`
}

// Errors — список ошибок валидации. Реализует error.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator — обёртка над validator.Validate.
type Validator struct {
	v *validator.Validate
}

// New создаёт валидатор, использующий JSON-имена полей.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return &Validator{v: v}
}

// Struct проверяет структуру по тегам validate.
// Возвращает nil или Errors.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("ошибка валидации: %w", err)
	}

	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: message(fe),
		})
	}
	return out
}

// Body возвращает ошибку некорректного тела запроса.
func Body(cause error) Errors {
	return Errors{{
		Field:   "body",
		Rule:    "json",
		Message: "request body must be valid JSON: " + cause.Error(),
	}}
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s character(s)", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s character(s)", field, fe.Param())
	case "datetime":
		return field + " must be an ISO-8601 datetime"
	case "uuid":
		return field + " must be a UUID"
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
