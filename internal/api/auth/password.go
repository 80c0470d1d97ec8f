package auth

import (
	"errors"
	"strings"
	"unicode"
)

// PasswordValidationError contains details about password validation failure.
type PasswordValidationError struct {
	Messages []string
}

func (e *PasswordValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// ValidatePassword checks if a password meets complexity requirements:
// at least 10 characters with an uppercase letter, a lowercase letter
// and a digit.
func ValidatePassword(password string) error {
	var messages []string

	if len(password) < 10 {
		messages = append(messages, "password must be at least 10 characters")
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasUpper {
		messages = append(messages, "password must contain at least 1 uppercase letter")
	}
	if !hasLower {
		messages = append(messages, "password must contain at least 1 lowercase letter")
	}
	if !hasDigit {
		messages = append(messages, "password must contain at least 1 digit")
	}

	if len(messages) > 0 {
		return &PasswordValidationError{Messages: messages}
	}
	return nil
}

// ValidatePasswordOrError returns an error suitable for API responses.
func ValidatePasswordOrError(password string) error {
	if err := ValidatePassword(password); err != nil {
		var validErr *PasswordValidationError
		if errors.As(err, &validErr) {
			return errors.New(validErr.Messages[0])
		}
		return err
	}
	return nil
}
