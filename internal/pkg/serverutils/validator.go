package serverutils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"notesquest-be/internal/apperror"
)

var validate = validator.New()

// ValidateRequest runs struct tag validation and folds the failures
// into one ValidationError.
func ValidateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}

	messages := make([]string, 0, len(errs))
	for _, fieldErr := range errs {
		messages = append(messages, fmt.Sprintf("%s failed on %s", fieldErr.Field(), fieldErr.Tag()))
	}
	return apperror.NewValidationError("request", strings.Join(messages, ", "))
}
