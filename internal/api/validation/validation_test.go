package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		valid bool
	}{
		{"valid_simple", "user@example.com", true},
		{"valid_subdomain", "user@mail.example.com", true},
		{"valid_plus", "user+tag@example.com", true},
		{"valid_dash", "user-name@example.com", true},
		{"valid_dot", "user.name@example.com", true},
		{"valid_upper", "A@B.COM", true},
		{"invalid_no_at", "userexample.com", false},
		{"invalid_no_domain", "user@", false},
		{"invalid_no_user", "@example.com", false},
		{"invalid_double_at", "user@@example.com", false},
		{"invalid_spaces", "user @example.com", false},
		{"invalid_no_tld", "user@example", false},
		{"too_long", strings.Repeat("a", 250) + "@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidEmail(tt.email)
			assert.Equal(t, tt.valid, result, "Email: %s", tt.email)
		})
	}
}

func TestCheckEmail_Trims(t *testing.T) {
	assert.NoError(t, CheckEmail("  user@example.com "))
	assert.ErrorIs(t, CheckEmail(""), ErrInvalidEmail)
}

func TestCheckPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		err      error
	}{
		{"six_chars", "abcdef", nil},
		{"five_chars", "abcde", ErrPasswordTooShort},
		{"empty", "", ErrPasswordTooShort},
		{"multibyte_counts_runes", "密碼密碼密碼", nil},
		{"too_long", strings.Repeat("x", 129), ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPassword(tt.password)
			if tt.err == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}
}

func TestCheckCredentials(t *testing.T) {
	assert.NoError(t, CheckCredentials("a@b.com", "secret1"))
	assert.ErrorIs(t, CheckCredentials("not-an-email", "secret1"), ErrInvalidEmail)
	assert.ErrorIs(t, CheckCredentials("a@b.com", "123"), ErrPasswordTooShort)
}

func TestCheckField(t *testing.T) {
	assert.NoError(t, CheckField(""))
	assert.NoError(t, CheckField(strings.Repeat("字", MaxFieldLength)))
	assert.Error(t, CheckField(strings.Repeat("x", MaxFieldLength+1)))
}

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"normal", "Hello World", "Hello World"},
		{"null_bytes", "Hello\x00World", "HelloWorld"},
		{"control_chars", "Hello\x01\x02World", "HelloWorld"},
		{"preserve_newlines", "Hello\nWorld", "Hello\nWorld"},
		{"preserve_tabs", "Hello\tWorld", "Hello\tWorld"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeString(tt.input))
		})
	}
}

func TestCleanField(t *testing.T) {
	assert.Equal(t, "555", CleanField("  5\x0055 \n"))
}
