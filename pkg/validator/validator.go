package validator

import (
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxMessageText bounds a single chat message.
const MaxMessageText = 2000

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

// Error joins the messages in field-name order so output is stable.
func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, v[f])
	}
	return strings.Join(msgs, "; ")
}

func ValidateSignup(fullName, email, password string) ValidationErrors {
	errs := make(ValidationErrors)

	// Full name
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		errs.Add("fullName", "Full name is required")
	} else if utf8.RuneCountInString(fullName) < 2 {
		errs.Add("fullName", "Full name must be at least 2 characters")
	} else if utf8.RuneCountInString(fullName) > 100 {
		errs.Add("fullName", "Full name is too long")
	}

	validateEmail(email, errs)
	validatePassword(password, errs)

	return errs
}

func ValidateLogin(email, password string) ValidationErrors {
	errs := make(ValidationErrors)

	validateEmail(email, errs)

	if password == "" {
		errs.Add("password", "Password is required")
	}

	return errs
}

// ValidateMessage checks the text part; the image part is validated when
// it is decoded for upload.
func ValidateMessage(text, image string) ValidationErrors {
	errs := make(ValidationErrors)

	text = strings.TrimSpace(text)
	if text == "" && strings.TrimSpace(image) == "" {
		errs.Add("text", "Message must contain text or an image")
	} else if utf8.RuneCountInString(text) > MaxMessageText {
		errs.Add("text", fmt.Sprintf("Message must be at most %d characters", MaxMessageText))
	}

	return errs
}

func validateEmail(email string, errs ValidationErrors) {
	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Email is required")
	} else if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		errs.Add("email", "Invalid email address")
	}
}

func validatePassword(password string, errs ValidationErrors) {
	if len(password) < 8 {
		errs.Add("password", "Password must be at least 8 characters")
		return
	}

	var hasUpper, hasLower, hasDigit bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}

	missing := []string{}
	if !hasUpper {
		missing = append(missing, "one uppercase letter")
	}
	if !hasLower {
		missing = append(missing, "one lowercase letter")
	}
	if !hasDigit {
		missing = append(missing, "one number")
	}

	if len(missing) > 0 {
		errs.Add("password", fmt.Sprintf("Password must contain at least %s", strings.Join(missing, ", ")))
	}
}
