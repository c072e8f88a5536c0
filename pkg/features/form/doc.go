// Package form provides form controls with validation and interaction
// tracking.
//
// # Overview
//
// A form is a tree of controls. A *Field holds one text value and its
// validators; a *Group holds ordered, named children. Every control tracks
// whether it has been touched (focused and left) and whether it is dirty
// (edited by the user).
//
// # Basic Usage
//
//	root := form.NewGroup("",
//	    form.NewField("name", "", form.Required()),
//	    form.NewField("email", "", form.Required(), form.Email()),
//	    form.NewGroup("address",
//	        form.NewField("street", "", form.MaxLength(10)),
//	    ),
//	)
//
//	unsubscribe := root.Subscribe(func() {
//	    for _, f := range root.Fields() {
//	        fmt.Println(f.Path(), f.Errors())
//	    }
//	})
//	defer unsubscribe()
//
//	root.Field("address.street").SetValue("Main Street 42")
//
// # Validation
//
// Built-in validators report a Kind:
//
//   - Required: non-empty value
//   - MinLength/MaxLength: length bounds in characters
//   - Email: valid email format
//   - Pattern: regular expression match
//
// Length and format validators accept the empty string so that a missing
// value reports only KindRequired.
//
// # Change Notification
//
// SetValue and Reset notify subscribers of the control and of every
// ancestor. MarkAsTouched does not notify. Group.Batch coalesces the
// notifications of a subtree into one.
//
// Controls are not safe for concurrent use. The owner of a tree serializes
// access to it.
package form
