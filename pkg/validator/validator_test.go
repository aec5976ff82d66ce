package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSignup(t *testing.T) {
	tests := []struct {
		name     string
		fullName string
		email    string
		password string
		fields   []string
	}{
		{"valid", "Ada Lovelace", "ada@example.com", "Secret123", nil},
		{"missing everything", "", "", "", []string{"fullName", "email", "password"}},
		{"short name", "A", "ada@example.com", "Secret123", []string{"fullName"}},
		{"long name", strings.Repeat("a", 101), "ada@example.com", "Secret123", []string{"fullName"}},
		{"bad email", "Ada", "not-an-email", "Secret123", []string{"email"}},
		{"display name email", "Ada", "Ada <ada@example.com>", "Secret123", []string{"email"}},
		{"short password", "Ada", "ada@example.com", "Ab1", []string{"password"}},
		{"weak password", "Ada", "ada@example.com", "alllowercase", []string{"password"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			errs := ValidateSignup(tc.fullName, tc.email, tc.password)
			assert.Len(t, errs, len(tc.fields))
			for _, f := range tc.fields {
				assert.Contains(t, errs, f)
			}
		})
	}
}

func TestValidatePassword_ListsMissingClasses(t *testing.T) {
	errs := ValidateSignup("Ada", "ada@example.com", "alllowercase")
	assert.Equal(t, "Password must contain at least one uppercase letter, one number", errs["password"])
}

func TestValidateLogin(t *testing.T) {
	assert.False(t, ValidateLogin("a@x.com", "whatever").HasErrors())

	errs := ValidateLogin("", "")
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")
}

func TestValidateMessage(t *testing.T) {
	assert.False(t, ValidateMessage("hi", "").HasErrors())
	assert.False(t, ValidateMessage("", "data:image/png;base64,AAAA").HasErrors())
	assert.True(t, ValidateMessage("  ", "").HasErrors())
	assert.True(t, ValidateMessage(strings.Repeat("x", MaxMessageText+1), "").HasErrors())
}

func TestValidationErrors_ErrorIsSorted(t *testing.T) {
	errs := ValidationErrors{"password": "p", "email": "e", "fullName": "f"}
	assert.Equal(t, "e; f; p", errs.Error())
}
