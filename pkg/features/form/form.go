package form

import (
	"fmt"
	"strings"
)

// Control is a node of a form tree: either a *Field or a *Group.
// The interface is sealed; callers switch on the concrete type.
type Control interface {
	// Name returns the control's key within its parent.
	Name() string

	// Valid reports whether the control and all its descendants pass
	// validation.
	Valid() bool

	// Touched reports whether the control, or any descendant, has been
	// focused and left.
	Touched() bool

	// Dirty reports whether the control, or any descendant, has been
	// changed by the user.
	Dirty() bool

	// MarkAllAsTouched marks the control and all descendants as touched.
	MarkAllAsTouched()

	// Reset restores initial values and clears interaction state.
	Reset()

	// Value returns the current value: a string for fields, a
	// map[string]any for groups.
	Value() any

	// Subscribe registers a change listener.
	Subscribe(fn func()) (unsubscribe func())

	base() *notifier
}

// ----------------------------------------------------------------------------
// Field
// ----------------------------------------------------------------------------

// Field is a leaf control holding a single text value.
type Field struct {
	notifier

	name       string
	initial    string
	value      string
	touched    bool
	dirty      bool
	validators []Validator
	errs       []ValidationError
}

// NewField creates a field with the given initial value and validators.
// Validators run in the order given; that order is the order Errors
// reports failures in.
func NewField(name, initial string, validators ...Validator) *Field {
	f := &Field{
		name:       name,
		initial:    initial,
		value:      initial,
		validators: validators,
	}
	f.validate()
	return f
}

func (f *Field) base() *notifier { return &f.notifier }

// Name returns the field's key.
func (f *Field) Name() string { return f.name }

// Path returns the dot-separated path from the root, excluding the root.
func (f *Field) Path() string { return pathOf(f.name, f.parent) }

// Value returns the current value as a string.
func (f *Field) Value() any { return f.value }

// Text returns the current value.
func (f *Field) Text() string { return f.value }

// SetValue records a user edit: the value is stored, the field becomes
// dirty, validators rerun and subscribers are notified.
func (f *Field) SetValue(value string) {
	f.value = value
	f.dirty = true
	f.validate()
	f.emit()
}

// MarkAsTouched marks the field as focused-and-left. It does not notify.
func (f *Field) MarkAsTouched() { f.touched = true }

// MarkAllAsTouched implements Control.
func (f *Field) MarkAllAsTouched() { f.touched = true }

// Touched reports whether the field has been touched.
func (f *Field) Touched() bool { return f.touched }

// Dirty reports whether the field has been edited.
func (f *Field) Dirty() bool { return f.dirty }

// Valid reports whether every validator accepts the current value.
func (f *Field) Valid() bool { return len(f.errs) == 0 }

// Invalid is the negation of Valid.
func (f *Field) Invalid() bool { return len(f.errs) > 0 }

// Errors returns the failed rule kinds in validator order.
func (f *Field) Errors() []Kind {
	if len(f.errs) == 0 {
		return nil
	}
	kinds := make([]Kind, len(f.errs))
	for i, e := range f.errs {
		kinds[i] = e.Kind
	}
	return kinds
}

// HasError reports whether the given rule currently fails.
func (f *Field) HasError(kind Kind) bool {
	for _, e := range f.errs {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

// Reset restores the initial value, clears touched and dirty, and notifies.
func (f *Field) Reset() {
	f.value = f.initial
	f.touched = false
	f.dirty = false
	f.validate()
	f.emit()
}

// validate reruns all validators against the current value.
func (f *Field) validate() {
	f.errs = f.errs[:0]
	for _, v := range f.validators {
		err := v.Validate(f.value)
		if err == nil {
			continue
		}
		ve, ok := err.(ValidationError)
		if !ok {
			ve = ValidationError{Kind: kindOf(err)}
		}
		f.errs = append(f.errs, ve)
	}
}

// ----------------------------------------------------------------------------
// Group
// ----------------------------------------------------------------------------

// Group is a composite control with ordered, named children.
type Group struct {
	notifier

	name     string
	children []Control
	index    map[string]Control
}

// NewGroup creates a group over the given children, preserving their order.
// It panics on duplicate child names or on a child that already has a parent.
func NewGroup(name string, children ...Control) *Group {
	g := &Group{
		name:     name,
		children: make([]Control, 0, len(children)),
		index:    make(map[string]Control, len(children)),
	}
	for _, c := range children {
		if c == nil {
			continue
		}
		if _, dup := g.index[c.Name()]; dup {
			panic(fmt.Sprintf("form: duplicate control %q in group %q", c.Name(), name))
		}
		if c.base().parent != nil {
			panic(fmt.Sprintf("form: control %q already belongs to a group", c.Name()))
		}
		c.base().parent = g
		g.children = append(g.children, c)
		g.index[c.Name()] = c
	}
	return g
}

func (g *Group) base() *notifier { return &g.notifier }

// Name returns the group's key.
func (g *Group) Name() string { return g.name }

// Controls returns the children in declared order.
func (g *Group) Controls() []Control {
	out := make([]Control, len(g.children))
	copy(out, g.children)
	return out
}

// Get returns the control at a dot-separated path, e.g. "address.area".
func (g *Group) Get(path string) Control {
	head, rest, nested := strings.Cut(path, ".")
	c, ok := g.index[head]
	if !ok {
		return nil
	}
	if !nested {
		return c
	}
	sub, ok := c.(*Group)
	if !ok {
		return nil
	}
	return sub.Get(rest)
}

// Field returns the leaf at path, or nil if absent or not a field.
func (g *Group) Field(path string) *Field {
	f, _ := g.Get(path).(*Field)
	return f
}

// Fields returns every leaf in depth-first, pre-order declared order.
func (g *Group) Fields() []*Field {
	var out []*Field
	for _, c := range g.children {
		switch c := c.(type) {
		case *Field:
			out = append(out, c)
		case *Group:
			out = append(out, c.Fields()...)
		}
	}
	return out
}

// Valid reports whether every descendant is valid.
func (g *Group) Valid() bool {
	for _, c := range g.children {
		if !c.Valid() {
			return false
		}
	}
	return true
}

// Invalid is the negation of Valid.
func (g *Group) Invalid() bool { return !g.Valid() }

// Touched reports whether any descendant is touched.
func (g *Group) Touched() bool {
	for _, c := range g.children {
		if c.Touched() {
			return true
		}
	}
	return false
}

// Dirty reports whether any descendant is dirty.
func (g *Group) Dirty() bool {
	for _, c := range g.children {
		if c.Dirty() {
			return true
		}
	}
	return false
}

// MarkAllAsTouched marks every descendant as touched. It does not notify.
func (g *Group) MarkAllAsTouched() {
	for _, c := range g.children {
		c.MarkAllAsTouched()
	}
}

// Reset resets every descendant and emits a single notification.
func (g *Group) Reset() {
	g.batch(func() {
		for _, c := range g.children {
			c.Reset()
		}
	})
}

// Value returns the nested value tree keyed by control name.
func (g *Group) Value() any {
	return g.Values()
}

// Values is Value with a concrete map type.
func (g *Group) Values() map[string]any {
	out := make(map[string]any, len(g.children))
	for _, c := range g.children {
		out[c.Name()] = c.Value()
	}
	return out
}

// SetValue patches the tree from a nested map. Keys that name no child are
// ignored; string values go to fields, map values to subgroups. Every
// touched leaf counts as a user edit. Subscribers see one notification.
func (g *Group) SetValue(values map[string]any) {
	g.batch(func() {
		for key, v := range values {
			switch c := g.index[key].(type) {
			case *Field:
				if s, ok := v.(string); ok {
					c.SetValue(s)
				}
			case *Group:
				switch m := v.(type) {
				case map[string]any:
					c.SetValue(m)
				case map[string]string:
					sub := make(map[string]any, len(m))
					for k, s := range m {
						sub[k] = s
					}
					c.SetValue(sub)
				}
			}
		}
	})
}

// Batch runs fn with change notifications from this subtree held back,
// then emits once if anything changed.
func (g *Group) Batch(fn func()) {
	g.batch(fn)
}

// pathOf joins name onto its ancestors' names, skipping the root.
func pathOf(name string, parent *Group) string {
	parts := []string{name}
	for p := parent; p != nil && p.parent != nil; p = p.parent {
		parts = append(parts, p.name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}
