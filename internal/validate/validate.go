// Package validate applies a closed set of typed field rules. Each rule variant
// carries its own parameters and is checked by an exhaustive switch; there is no
// string-keyed dispatch.
package validate

import (
	"fmt"
	"strings"
)

// Rule is the closed tagged-variant rule type. Only the variants in this package
// satisfy it.
type Rule interface {
	rule()
}

// Required rejects empty values.
type Required struct{}

// MinLength rejects values shorter than N bytes.
type MinLength struct {
	N int
}

// EmailShape rejects values that are not plausibly an email address.
type EmailShape struct{}

// PhoneShape rejects values that are not a plausible E.164-ish phone number.
// Empty values pass; pair with Required when the field is mandatory.
type PhoneShape struct{}

func (Required) rule()   {}
func (MinLength) rule()  {}
func (EmailShape) rule() {}
func (PhoneShape) rule() {}

// FieldError carries field-level detail that is safe to return to callers.
type FieldError struct {
	Field  string
	Detail string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Detail)
}

// Field checks one value against its rules in order and returns the first
// violation.
func Field(name, value string, rules ...Rule) error {
	for _, r := range rules {
		switch rule := r.(type) {
		case Required:
			if strings.TrimSpace(value) == "" {
				return &FieldError{Field: name, Detail: "is required"}
			}
		case MinLength:
			if len(value) < rule.N {
				return &FieldError{Field: name, Detail: fmt.Sprintf("must be at least %d characters", rule.N)}
			}
		case EmailShape:
			if !plausibleEmail(value) {
				return &FieldError{Field: name, Detail: "must be a valid email address"}
			}
		case PhoneShape:
			if value != "" && !plausiblePhone(value) {
				return &FieldError{Field: name, Detail: "must be a valid phone number"}
			}
		default:
			return &FieldError{Field: name, Detail: "unknown validation rule"}
		}
	}

	return nil
}

// NormalizeEmail lower-cases and trims an email for case-normalized uniqueness.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func plausibleEmail(value string) bool {
	at := strings.IndexByte(value, '@')
	if at <= 0 || at == len(value)-1 {
		return false
	}
	domain := value[at+1:]
	if strings.IndexByte(domain, '@') >= 0 {
		return false
	}
	dot := strings.IndexByte(domain, '.')
	if dot <= 0 || dot == len(domain)-1 {
		return false
	}
	return !strings.ContainsAny(value, " \t\r\n")
}

func plausiblePhone(value string) bool {
	v := strings.TrimPrefix(value, "+")
	if len(v) < 7 || len(v) > 15 {
		return false
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
