package addressform

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/addressform/pkg/features/form"
)

// ErrUnknownKind is returned when a message names an unsupported rule.
var ErrUnknownKind = errors.New("addressform: unknown error kind")

// kinds are the rule kinds the message table has slots for.
var kinds = [...]form.Kind{
	form.KindRequired,
	form.KindEmail,
	form.KindMinLength,
	form.KindMaxLength,
}

const kindCount = len(kinds)

func kindSlot(k form.Kind) (int, bool) {
	for i, kk := range kinds {
		if kk == k {
			return i, true
		}
	}
	return 0, false
}

// Messages maps (field, kind) to a display string.
type Messages [fieldCount][kindCount]string

// DefaultMessages returns the built-in message table.
func DefaultMessages() *Messages {
	m := &Messages{}
	m.set(Name, form.KindRequired, "Name required")
	m.set(Email, form.KindRequired, "Email required")
	m.set(Email, form.KindEmail, "Email invalid")
	m.set(Area, form.KindRequired, "Area required")
	m.set(Area, form.KindMaxLength, "Length must not be more than 15 characters")
	m.set(Street, form.KindMaxLength, "Length must not be more than 10 characters")
	m.set(Pincode, form.KindRequired, "Pincode required")
	m.set(Pincode, form.KindMinLength, "Invalid Pincode")
	m.set(Pincode, form.KindMaxLength, "Invalid Pincode")
	return m
}

func (m *Messages) set(id FieldID, k form.Kind, msg string) {
	slot, ok := kindSlot(k)
	if !ok {
		return
	}
	m[id][slot] = msg
}

// Lookup returns the message for a field and kind, or "" if none is
// configured.
func (m *Messages) Lookup(id FieldID, k form.Kind) string {
	if m == nil || id >= fieldCount {
		return ""
	}
	slot, ok := kindSlot(k)
	if !ok {
		return ""
	}
	return m[id][slot]
}

// LoadMessages reads YAML overrides and merges them onto the defaults.
//
//	pincode:
//	  minlength: "Pincode must have 6 digits"
//	email:
//	  email: "Please enter a valid email"
func LoadMessages(r io.Reader) (*Messages, error) {
	var raw map[string]map[string]string
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode messages: %w", err)
	}

	m := DefaultMessages()
	for field, byKind := range raw {
		id, err := ParseFieldID(field)
		if err != nil {
			return nil, err
		}
		for kind, msg := range byKind {
			if _, ok := kindSlot(form.Kind(kind)); !ok {
				return nil, fmt.Errorf("%w: %q for field %s", ErrUnknownKind, kind, id)
			}
			m.set(id, form.Kind(kind), msg)
		}
	}
	return m, nil
}
