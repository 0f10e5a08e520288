package httpx

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// FailValidation converts a validator error into a 400 failure naming the
// first offending field.
func FailValidation(err error) error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		return Fail(ErrValidation, "Invalid value for field "+errs[0].Field())
	}
	return Fail(ErrValidation, "Invalid request payload")
}
