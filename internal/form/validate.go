// Package form implements the contact-form submission pipeline: honeypot
// screening, client identification, rate limiting, sanitization,
// validation and dispatch to the configured sender.
package form

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Field keys used in ValidationErrors.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldMessage = "message"
	FieldGeneral = "general"
)

const (
	nameMinLen    = 2
	nameMaxLen    = 50
	messageMinLen = 10
	messageMaxLen = 1000
)

var (
	nameRe  = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// ValidationErrors maps a field key to a human-readable message. A field
// absent from the map is valid; an empty map means the form is valid.
type ValidationErrors map[string]string

// ValidateName checks the trimmed name for length and charset. The
// charset is deliberately strict (ASCII letters and whitespace only);
// see the decision log before relaxing it.
func ValidateName(name string) string {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n < nameMinLen || n > nameMaxLen {
		return "Name must be between 2 and 50 characters"
	}
	if !nameRe.MatchString(name) {
		return "Name can only contain letters and spaces"
	}
	return ""
}

// ValidateEmail checks the trimmed email against a minimal
// local@domain.tld shape.
func ValidateEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return "Email is required"
	}
	if !emailRe.MatchString(email) {
		return "Please enter a valid email address"
	}
	return ""
}

// ValidateMessage checks the trimmed message length.
func ValidateMessage(message string) string {
	message = strings.TrimSpace(message)
	if n := utf8.RuneCountInString(message); n < messageMinLen || n > messageMaxLen {
		return "Message must be between 10 and 1000 characters"
	}
	return ""
}

// ValidateContactForm runs the field validators and collects only the
// failures.
func ValidateContactForm(sub Submission) ValidationErrors {
	errs := ValidationErrors{}
	if msg := ValidateName(sub.Name); msg != "" {
		errs[FieldName] = msg
	}
	if msg := ValidateEmail(sub.Email); msg != "" {
		errs[FieldEmail] = msg
	}
	if msg := ValidateMessage(sub.Message); msg != "" {
		errs[FieldMessage] = msg
	}
	return errs
}
