package addressform

import "github.com/vango-dev/addressform/pkg/vdom"

// ViewOptions configures the rendered form.
type ViewOptions struct {
	// Action is the submit URL (default: "/submit").
	Action string

	// ResetAction is the reset URL (default: "/reset").
	ResetAction string

	// Status is an optional line shown above the buttons.
	Status string
}

// View renders the form with inline errors for the given field states.
func View(states []FieldState, opts ViewOptions) *vdom.VNode {
	if opts.Action == "" {
		opts.Action = "/submit"
	}
	if opts.ResetAction == "" {
		opts.ResetAction = "/reset"
	}

	var top, address []*vdom.VNode
	for _, s := range states {
		row := fieldRow(s)
		if s.ID.InAddress() {
			address = append(address, row)
		} else {
			top = append(top, row)
		}
	}

	return vdom.Form(vdom.ID("address-form"), vdom.Method("post"), vdom.Action(opts.Action), vdom.NoValidate(),
		top,
		vdom.Fieldset(vdom.Name(AddressGroup),
			vdom.Legend("Address"),
			address,
		),
		vdom.If(opts.Status != "", vdom.P(vdom.Class("form-status"), vdom.Role("status"), opts.Status)),
		vdom.Div(vdom.Class("actions"),
			vdom.Button(vdom.Type("submit"), "Submit"),
			vdom.Button(vdom.Type("submit"), vdom.AttrOf("formaction", opts.ResetAction), vdom.FormNoValidate(), "Clear"),
		),
	)
}

// fieldRow renders one labelled input and its message.
func fieldRow(s FieldState) *vdom.VNode {
	inputID := "field-" + s.Field
	errorID := inputID + "-error"
	hasError := s.Message != ""

	inputType := "text"
	if s.ID == Email {
		inputType = "email"
	}

	return vdom.Div(vdom.Class("field", errorClass(hasError)),
		vdom.Label(vdom.For(inputID), s.ID.Label()),
		vdom.Input(
			vdom.Type(inputType),
			vdom.ID(inputID),
			vdom.Name(s.Path),
			vdom.Value(s.Value),
			vdom.IfAttr(s.ID.Required(), vdom.Required()),
			vdom.IfAttr(hasError, vdom.AriaInvalid(true)),
			vdom.IfAttr(hasError, vdom.AriaDescribedBy(errorID)),
		),
		vdom.If(hasError, vdom.Span(vdom.Class("field-error"), vdom.ID(errorID), vdom.Role("alert"), s.Message)),
	)
}

func errorClass(hasError bool) string {
	if hasError {
		return "field-invalid"
	}
	return ""
}
