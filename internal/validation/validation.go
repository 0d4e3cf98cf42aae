package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_\-]{2,31}$`)
	uciRegex      = regexp.MustCompile(`^[a-h][1-8][a-h][1-8][qrbn]?$`)
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateUsername checks if a username is valid: lowercase letters, digits,
// underscore and hyphen, 3-32 characters, starting with a letter or digit.
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return ValidationError{Field: "username", Message: "username is required"}
	}
	if !usernameRegex.MatchString(username) {
		return ValidationError{Field: "username", Message: "username must be 3-32 lowercase letters, digits, _ or -"}
	}
	return nil
}

// ValidateEmail checks if an email address is valid. Empty is allowed;
// email is optional on accounts.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < 8 {
		return ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	return nil
}

// ValidateName checks if a display name is valid
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if len(name) < 2 {
		return ValidationError{Field: "name", Message: "name must be at least 2 characters"}
	}
	return nil
}

// ValidateUCIMove checks that a move string is well-formed UCI notation:
// four squares characters plus an optional promotion piece (e.g. "e2e4",
// "e7e8q"). Legality against a position is the rules engine's job.
func ValidateUCIMove(move string) error {
	if !uciRegex.MatchString(move) {
		return ValidationError{Field: "move", Message: fmt.Sprintf("%q is not a UCI move", move)}
	}
	return nil
}

// ValidateTimezone checks that a timezone is a known IANA name
func ValidateTimezone(tz string) error {
	if tz == "" {
		return ValidationError{Field: "timezone", Message: "timezone is required"}
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return ValidationError{Field: "timezone", Message: fmt.Sprintf("unknown timezone %q", tz)}
	}
	return nil
}
