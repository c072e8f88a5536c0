// Package vdom provides an in-memory node tree for server-rendered views.
//
// # Core Types
//
// VNode represents elements, text, fragments, and raw HTML. Props holds
// attributes. Attr values are passed to element factories to build Props.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Form(Method("post"), Action("/submit"),
//	    Label(For("name"), "Name"),
//	    Input(Type("text"), ID("name"), Name("name")),
//	    Button(Type("submit"), "Submit"),
//	)
//
// nil arguments are skipped, which allows conditional children and
// attributes via If and IfAttr.
package vdom
