package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// fieldErrors turns validator output into readable messages.
func fieldErrors(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}

	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fieldMessage(fe))
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	label := fieldLabel(fe.Field())

	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "gte":
		if fe.Param() == "1" {
			return label + " must be greater than 0"
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "email":
		return label + " must be a valid email address"
	}
	return label + " is invalid"
}

// fieldLabel maps "CookTime" to "cook time" and "Tags[2]" to "tag".
func fieldLabel(field string) string {
	if i := strings.IndexByte(field, '['); i >= 0 {
		field = strings.TrimSuffix(field[:i], "s")
	}

	var b strings.Builder
	for i, r := range field {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte(' ')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
