package validation

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// EmailRegex validates email format
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

const (
	MinPasswordLength = 6
	MaxPasswordLength = 128

	// MaxFieldLength bounds a single spreadsheet cell.
	MaxFieldLength = 500
)

var (
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrPasswordTooLong  = errors.New("password must be at most 128 characters")
)

// IsValidEmail checks if the string is a valid email format
func IsValidEmail(email string) bool {
	if len(email) > 254 {
		return false
	}
	return emailRegex.MatchString(email)
}

// CheckEmail trims the address and validates it.
func CheckEmail(email string) error {
	if !IsValidEmail(strings.TrimSpace(email)) {
		return ErrInvalidEmail
	}
	return nil
}

// CheckPassword applies the sign-in form's length rule.
func CheckPassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if n > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}

// CheckCredentials returns the first problem with a sign-in or sign-up form.
func CheckCredentials(email, password string) error {
	if err := CheckEmail(email); err != nil {
		return err
	}
	return CheckPassword(password)
}

// CheckField validates one editable record value.
func CheckField(value string) error {
	if utf8.RuneCountInString(value) > MaxFieldLength {
		return errors.New("must be at most 500 characters")
	}
	return nil
}

// SanitizeString removes potentially dangerous characters for display
func SanitizeString(s string) string {
	// Remove null bytes
	s = strings.ReplaceAll(s, "\x00", "")

	// Remove control characters except newlines and tabs
	var result strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' || !unicode.IsControl(r) {
			result.WriteRune(r)
		}
	}

	return result.String()
}

// CleanField trims and sanitizes a value bound for a spreadsheet cell.
func CleanField(s string) string {
	return strings.TrimSpace(SanitizeString(s))
}
