package addressform

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseFieldID(t *testing.T) {
	tests := []struct {
		in   string
		want FieldID
	}{
		{"name", Name},
		{"email", Email},
		{"area", Area},
		{"address.area", Area},
		{"address.street", Street},
		{"pincode", Pincode},
	}

	for _, tc := range tests {
		got, err := ParseFieldID(tc.in)
		if err != nil {
			t.Errorf("ParseFieldID(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseFieldID(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}

	for _, bad := range []string{"", "address", "address.name", "zip"} {
		if _, err := ParseFieldID(bad); !errors.Is(err, ErrUnknownField) {
			t.Errorf("ParseFieldID(%q) err = %v, want ErrUnknownField", bad, err)
		}
	}
}

func TestFieldIDPaths(t *testing.T) {
	var paths []string
	for _, id := range Fields() {
		paths = append(paths, id.Path())
	}

	want := []string{"name", "email", "address.area", "address.street", "address.pincode"}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldIDString(t *testing.T) {
	if Street.String() != "street" || Street.Label() != "Street" {
		t.Errorf("got %q / %q", Street.String(), Street.Label())
	}
	if got := FieldID(9).String(); got != "FieldID(9)" {
		t.Errorf("out of range = %q", got)
	}
}

func TestTreeMatchesFieldOrder(t *testing.T) {
	root, leaves := newTree()

	got := root.Fields()
	if len(got) != int(fieldCount) {
		t.Fatalf("leaves = %d, want %d", len(got), fieldCount)
	}
	for i, f := range got {
		id := FieldID(i)
		if f != leaves[id] {
			t.Errorf("leaf %d is %s, want %s", i, f.Path(), id.Path())
		}
		if f.Path() != id.Path() {
			t.Errorf("path = %q, want %q", f.Path(), id.Path())
		}
	}
}

func TestValuesTreeRoundTrip(t *testing.T) {
	root, _ := newTree()
	root.SetValue(validValues().Tree())

	var got Values
	for _, id := range Fields() {
		got.Set(id, root.Field(id.Path()).Text())
		if got.Get(id) != validValues().Get(id) {
			t.Errorf("%s = %q", id, got.Get(id))
		}
	}
	if diff := cmp.Diff(validValues(), got); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
}
