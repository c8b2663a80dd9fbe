package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  string
	}{
		{"valid", "Password1!", ""},
		{"too short", "Pa1!", "at least 8 characters"},
		{"too long", strings.Repeat("Aa1!", 40), "not exceed 128"},
		{"no lowercase", "PASSWORD1!", "lowercase"},
		{"no uppercase", "password1!", "uppercase"},
		{"no digit", "Password!", "digit"},
		{"no special", "Password1", "special"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("Jo"))
	assert.Error(t, ValidateName("J"))
	assert.Error(t, ValidateName(""))
	assert.Error(t, ValidateName(strings.Repeat("x", 256)))
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"user@example.com", true},
		{"first.last+tag@sub.example.co", true},
		{"no-at-sign", false},
		{"@example.com", false},
		{"user@", false},
		{"user@nodot", false},
		{strings.Repeat("x", 250) + "@example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
