package form

import (
	"errors"
	"fmt"
	"regexp"
	"unicode/utf8"
)

// Kind identifies the rule a value failed.
type Kind string

const (
	KindRequired  Kind = "required"
	KindEmail     Kind = "email"
	KindMinLength Kind = "minlength"
	KindMaxLength Kind = "maxlength"
	KindPattern   Kind = "pattern"

	// KindInvalid is reported for validator errors that carry no kind.
	KindInvalid Kind = "invalid"
)

// Validator checks a single field value.
type Validator interface {
	// Validate returns nil if the value is acceptable, or a ValidationError
	// naming the failed rule.
	Validate(value string) error
}

// ValidatorFunc is a function that implements Validator.
type ValidatorFunc func(value string) error

func (f ValidatorFunc) Validate(value string) error {
	return f(value)
}

// ValidationError represents a validation failure.
type ValidationError struct {
	Kind Kind

	// Limit is the configured bound for length rules.
	Limit int

	// Actual is the observed length for length rules.
	Actual int
}

func (e ValidationError) Error() string {
	switch e.Kind {
	case KindMinLength:
		return fmt.Sprintf("minlength: %d < %d", e.Actual, e.Limit)
	case KindMaxLength:
		return fmt.Sprintf("maxlength: %d > %d", e.Actual, e.Limit)
	default:
		return string(e.Kind)
	}
}

// kindOf extracts the rule kind from a validator error.
func kindOf(err error) Kind {
	var ve ValidationError
	if errors.As(err, &ve) && ve.Kind != "" {
		return ve.Kind
	}
	return KindInvalid
}

// ----------------------------------------------------------------------------
// String Validators
// ----------------------------------------------------------------------------

// Required validates that the value is non-empty.
func Required() Validator {
	return ValidatorFunc(func(value string) error {
		if value == "" {
			return ValidationError{Kind: KindRequired}
		}
		return nil
	})
}

// MinLength validates that a string has at least n characters.
// Empty values pass; Required covers them.
func MinLength(n int) Validator {
	return ValidatorFunc(func(value string) error {
		if value == "" {
			return nil
		}
		if l := utf8.RuneCountInString(value); l < n {
			return ValidationError{Kind: KindMinLength, Limit: n, Actual: l}
		}
		return nil
	})
}

// MaxLength validates that a string has at most n characters.
func MaxLength(n int) Validator {
	return ValidatorFunc(func(value string) error {
		if l := utf8.RuneCountInString(value); l > n {
			return ValidationError{Kind: KindMaxLength, Limit: n, Actual: l}
		}
		return nil
	})
}

// emailPattern requires a local part, an @, and a dotted domain.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Email validates that the value is a valid email address.
func Email() Validator {
	return ValidatorFunc(func(value string) error {
		if value == "" {
			return nil
		}
		if !emailPattern.MatchString(value) {
			return ValidationError{Kind: KindEmail}
		}
		return nil
	})
}

// Pattern validates that a string matches the given regular expression.
func Pattern(pattern string) Validator {
	re := regexp.MustCompile(pattern)
	return ValidatorFunc(func(value string) error {
		if value == "" {
			return nil
		}
		if !re.MatchString(value) {
			return ValidationError{Kind: KindPattern}
		}
		return nil
	})
}
