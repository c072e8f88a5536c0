package form

import (
	"errors"
	"testing"
)

func kindOrEmpty(err error) Kind {
	if err == nil {
		return ""
	}
	return kindOf(err)
}

func TestRequired(t *testing.T) {
	v := Required()

	tests := []struct {
		value string
		want  Kind
	}{
		{"", KindRequired},
		{"a", ""},
		{" ", ""},
	}

	for _, tc := range tests {
		if got := kindOrEmpty(v.Validate(tc.value)); got != tc.want {
			t.Errorf("Required(%q) = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestMinLength(t *testing.T) {
	v := MinLength(6)

	tests := []struct {
		value string
		want  Kind
	}{
		{"", ""},
		{"12345", KindMinLength},
		{"123456", ""},
		{"1234567", ""},
		{"ääääää", ""},
	}

	for _, tc := range tests {
		if got := kindOrEmpty(v.Validate(tc.value)); got != tc.want {
			t.Errorf("MinLength(6)(%q) = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestMaxLength(t *testing.T) {
	v := MaxLength(10)

	tests := []struct {
		value string
		want  Kind
	}{
		{"", ""},
		{"0123456789", ""},
		{"01234567890", KindMaxLength},
		{"éééééééééé", ""},
		// Characters outside the BMP count once each.
		{"😀😀😀😀😀😀😀😀😀😀", ""},
		{"😀😀😀😀😀😀😀😀😀😀😀", KindMaxLength},
	}

	for _, tc := range tests {
		if got := kindOrEmpty(v.Validate(tc.value)); got != tc.want {
			t.Errorf("MaxLength(10)(%q) = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestMaxLengthReportsBounds(t *testing.T) {
	err := MaxLength(3).Validate("abcd")

	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if ve.Limit != 3 || ve.Actual != 4 {
		t.Errorf("bounds = (%d, %d), want (3, 4)", ve.Limit, ve.Actual)
	}
	if ve.Error() != "maxlength: 4 > 3" {
		t.Errorf("Error() = %q", ve.Error())
	}
}

func TestEmail(t *testing.T) {
	v := Email()

	tests := []struct {
		value string
		want  Kind
	}{
		{"", ""},
		{"user@example.com", ""},
		{"first.last+tag@sub.example.org", ""},
		{"user@", KindEmail},
		{"@example.com", KindEmail},
		{"user@example", KindEmail},
		{"user@localhost", KindEmail},
		{"user@example.c", KindEmail},
		{"not an email", KindEmail},
	}

	for _, tc := range tests {
		if got := kindOrEmpty(v.Validate(tc.value)); got != tc.want {
			t.Errorf("Email(%q) = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestPattern(t *testing.T) {
	v := Pattern(`^[0-9]+$`)

	if err := v.Validate(""); err != nil {
		t.Errorf("empty value should pass, got %v", err)
	}
	if err := v.Validate("123"); err != nil {
		t.Errorf("digits should pass, got %v", err)
	}
	if got := kindOrEmpty(v.Validate("12a")); got != KindPattern {
		t.Errorf("got %q, want %q", got, KindPattern)
	}
}

func TestCustomValidatorKind(t *testing.T) {
	plain := ValidatorFunc(func(string) error { return errors.New("nope") })
	f := NewField("x", "", plain)

	if got := f.Errors(); len(got) != 1 || got[0] != KindInvalid {
		t.Errorf("Errors() = %v, want [%s]", got, KindInvalid)
	}
}
