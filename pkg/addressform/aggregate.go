package addressform

import "github.com/vango-dev/addressform/pkg/features/form"

// ErrorMap holds one display string per leaf field. An entry is non-empty
// only while its field is invalid and has been touched or edited.
type ErrorMap [fieldCount]string

// Get returns the message for a field.
func (m ErrorMap) Get(id FieldID) string {
	if id >= fieldCount {
		return ""
	}
	return m[id]
}

// Empty reports whether no field has a message.
func (m ErrorMap) Empty() bool {
	for _, msg := range m {
		if msg != "" {
			return false
		}
	}
	return true
}

// Map returns the messages keyed by field name. Every field is present.
func (m ErrorMap) Map() map[string]string {
	out := make(map[string]string, fieldCount)
	for id := FieldID(0); id < fieldCount; id++ {
		out[id.String()] = m[id]
	}
	return out
}

// Aggregate walks g depth-first in declared order and rewrites out for
// every leaf it finds. A leaf that is invalid and touched or dirty gets the
// concatenation of its active kinds' messages, in rule order; every other
// leaf is cleared. Leaves whose names are not form fields are skipped.
func Aggregate(g *form.Group, messages *Messages, out *ErrorMap) {
	for _, c := range g.Controls() {
		switch c := c.(type) {
		case *form.Group:
			Aggregate(c, messages, out)
		case *form.Field:
			id, err := ParseFieldID(c.Name())
			if err != nil {
				continue
			}
			if c.Invalid() && (c.Touched() || c.Dirty()) {
				out[id] = ""
				for _, k := range c.Errors() {
					out[id] += messages.Lookup(id, k)
				}
			} else {
				out[id] = ""
			}
		}
	}
}
