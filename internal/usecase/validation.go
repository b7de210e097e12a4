package usecase

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/CharlesTPAquino/RegistroMM/internal/infra/security"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 50
	maxEmailLength    = 100
)

var usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidationError reports a rejected input field. Transport maps it to a
// 400 response carrying the field and code.
type ValidationError struct {
	Field   string
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func validateUsername(username string) error {
	length := len([]rune(username))
	if length < minUsernameLength || length > maxUsernameLength {
		return &ValidationError{
			Field:   "username",
			Code:    "length",
			Message: fmt.Sprintf("username must be between %d and %d characters", minUsernameLength, maxUsernameLength),
		}
	}
	if !usernameRegex.MatchString(username) {
		return &ValidationError{
			Field:   "username",
			Code:    "charset",
			Message: "username may only contain letters, digits, underscores and hyphens",
		}
	}
	return nil
}

func validateEmail(email string) error {
	if len(email) > maxEmailLength {
		return &ValidationError{
			Field:   "email",
			Code:    "length",
			Message: fmt.Sprintf("email must not exceed %d characters", maxEmailLength),
		}
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || strings.ContainsAny(email, " \t") {
		return &ValidationError{
			Field:   "email",
			Code:    "format",
			Message: "email address is not valid",
		}
	}
	return nil
}

func validatePassword(validator *security.PasswordValidator, password string) error {
	if err := validator.Validate(password); err != nil {
		var policyErr *security.PasswordValidationError
		if errors.As(err, &policyErr) {
			return &ValidationError{
				Field:   "password",
				Code:    policyErr.Code,
				Message: policyErr.Message,
			}
		}
		return &ValidationError{
			Field:   "password",
			Code:    "policy",
			Message: err.Error(),
		}
	}
	return nil
}
