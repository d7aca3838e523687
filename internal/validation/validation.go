package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.\-]{3,32}$`)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
	MaxPlayerName     = 30
	MaxTitleLength    = 120
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateUsername checks a host username
func ValidateUsername(username string) error {
	if username == "" {
		return ValidationError{Field: "username", Message: "username is required"}
	}
	if !usernameRegex.MatchString(username) {
		return ValidationError{Field: "username", Message: "username must be 3-32 letters, digits, '.', '_' or '-'"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < MinPasswordLength {
		return ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	// bcrypt ignores anything past 72 bytes
	if len(password) > MaxPasswordLength {
		return ValidationError{Field: "password", Message: "password must be at most 72 bytes"}
	}
	return nil
}

// NormalizePlayerName trims a display name and validates its length
func NormalizePlayerName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ValidationError{Field: "name", Message: "name is required"}
	}
	if utf8.RuneCountInString(name) > MaxPlayerName {
		return "", ValidationError{Field: "name", Message: "name must be at most 30 characters"}
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return "", ValidationError{Field: "name", Message: "name contains invalid characters"}
		}
	}
	return name, nil
}

// ValidateTitle checks a game config title
func ValidateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ValidationError{Field: "title", Message: "title is required"}
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return ValidationError{Field: "title", Message: "title must be at most 120 characters"}
	}
	return nil
}
