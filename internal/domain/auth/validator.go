// internal/domain/auth/validator.go
package auth

import (
	stderrors "errors"
	"strings"

	"authflow-server/pkg/errors"

	"github.com/go-playground/validator/v10"
)

type ValidatorWrapper struct {
	validate *validator.Validate
}

func NewValidator(v *validator.Validate) Validator {
	return &ValidatorWrapper{
		validate: v,
	}
}

// Validate reports failed field rules as a *errors.ValidationError naming the
// offending fields.
func (v *ValidatorWrapper) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return err
	}
	names := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		names = append(names, strings.ToLower(fe.Field()))
	}
	return errors.NewValidationError("missing required fields: " + strings.Join(names, ", "))
}
