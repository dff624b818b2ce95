package usecases

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingField       = errors.New("missing required field")
	ErrInvalidField       = errors.New("invalid field")
	ErrUserNotFound       = errors.New("user does not exist")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrMissingImage = fmt.Errorf("%w: patient_ct_image", ErrMissingField)
)

func missingField(names ...string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, strings.Join(names, ", "))
}

// requireFields returns a missing-field error naming every empty value.
func requireFields(fields ...[2]string) error {
	var missing []string
	for _, f := range fields {
		if f[1] == "" {
			missing = append(missing, f[0])
		}
	}
	if len(missing) > 0 {
		return missingField(missing...)
	}
	return nil
}

func invalidField(name, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidField, name, reason)
}
