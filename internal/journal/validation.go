package journal

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iammorganparry/journal/internal/models"
)

var validate = validator.New()

// ValidationError lists every problem found in a submission.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// validateFields applies each field's rule to the trimmed values.
func validateFields(schema models.Schema, fields map[string]string) error {
	var problems []string
	for _, f := range schema.Fields {
		if f.Rule == "" {
			continue
		}
		if err := validate.Var(fields[f.Name], f.Rule); err != nil {
			problems = append(problems, formatValidationError(f, err)...)
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func formatValidationError(f models.Field, err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{fmt.Sprintf("%s: %v", f.Name, err)}
	}
	out := make([]string, 0, len(verrs))
	for _, e := range verrs {
		out = append(out, formatFieldError(f, e))
	}
	return out
}

func formatFieldError(f models.Field, e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", f.Name)
	case "datetime":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", f.Name)
	default:
		return fmt.Sprintf("%s is invalid", f.Name)
	}
}
