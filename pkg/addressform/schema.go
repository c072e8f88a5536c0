package addressform

import (
	"errors"
	"fmt"

	"github.com/vango-dev/addressform/pkg/features/form"
)

// FieldID enumerates the leaf fields of the address form.
type FieldID uint8

const (
	Name FieldID = iota
	Email
	Area
	Street
	Pincode

	fieldCount
)

// AddressGroup is the key of the nested address group.
const AddressGroup = "address"

// Length bounds.
const (
	AreaMaxLength   = 15
	StreetMaxLength = 10
	PincodeLength   = 6
)

// ErrUnknownField is returned when a name does not match any leaf field.
var ErrUnknownField = errors.New("addressform: unknown field")

var fieldNames = [fieldCount]string{
	Name:    "name",
	Email:   "email",
	Area:    "area",
	Street:  "street",
	Pincode: "pincode",
}

// fieldLabels are the human-facing labels used by the view and the CLI.
var fieldLabels = [fieldCount]string{
	Name:    "Name",
	Email:   "Email",
	Area:    "Area",
	Street:  "Street",
	Pincode: "Pincode",
}

// String returns the field's key.
func (id FieldID) String() string {
	if id >= fieldCount {
		return fmt.Sprintf("FieldID(%d)", uint8(id))
	}
	return fieldNames[id]
}

// Label returns the display label.
func (id FieldID) Label() string {
	if id >= fieldCount {
		return id.String()
	}
	return fieldLabels[id]
}

// InAddress reports whether the field lives in the address group.
func (id FieldID) InAddress() bool {
	return id == Area || id == Street || id == Pincode
}

// Path returns the dot-separated path from the root group.
func (id FieldID) Path() string {
	if id.InAddress() {
		return AddressGroup + "." + id.String()
	}
	return id.String()
}

// ParseFieldID maps a field key or path ("area" or "address.area") to its ID.
func ParseFieldID(s string) (FieldID, error) {
	for id := FieldID(0); id < fieldCount; id++ {
		if s == fieldNames[id] || s == id.Path() {
			return id, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// Fields returns every leaf field in declared order.
func Fields() []FieldID {
	out := make([]FieldID, fieldCount)
	for i := range out {
		out[i] = FieldID(i)
	}
	return out
}

// rules returns the validators of a field in priority order. The order is
// the order in which simultaneous failures appear in the error message.
func rules(id FieldID) []form.Validator {
	switch id {
	case Name:
		return []form.Validator{form.Required()}
	case Email:
		return []form.Validator{form.Required(), form.Email()}
	case Area:
		return []form.Validator{form.Required(), form.MaxLength(AreaMaxLength)}
	case Street:
		return []form.Validator{form.MaxLength(StreetMaxLength)}
	case Pincode:
		return []form.Validator{
			form.Required(),
			form.MinLength(PincodeLength),
			form.MaxLength(PincodeLength),
		}
	}
	return nil
}

// Required reports whether the field carries the required rule.
func (id FieldID) Required() bool {
	return id == Name || id == Email || id == Area || id == Pincode
}

// Bounds returns the length limits of a field in runes. Zero means unbounded.
func (id FieldID) Bounds() (minLen, maxLen int) {
	switch id {
	case Area:
		return 0, AreaMaxLength
	case Street:
		return 0, StreetMaxLength
	case Pincode:
		return PincodeLength, PincodeLength
	}
	return 0, 0
}

// newTree builds the control tree:
//
//	root
//	├── name
//	├── email
//	└── address
//	    ├── area
//	    ├── street
//	    └── pincode
func newTree() (*form.Group, [fieldCount]*form.Field) {
	var leaves [fieldCount]*form.Field
	for id := FieldID(0); id < fieldCount; id++ {
		leaves[id] = form.NewField(id.String(), "", rules(id)...)
	}

	root := form.NewGroup("",
		leaves[Name],
		leaves[Email],
		form.NewGroup(AddressGroup,
			leaves[Area],
			leaves[Street],
			leaves[Pincode],
		),
	)
	return root, leaves
}
