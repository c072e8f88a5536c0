package vdom

import "strings"

// attr creates an attribute with the given key and value.
func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// AttrOf creates an arbitrary attribute.
func AttrOf(key string, value any) Attr { return attr(key, value) }

// Global attributes

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class sets the class attribute. Empty classes are dropped.
func Class(classes ...string) Attr {
	kept := classes[:0:0]
	for _, c := range classes {
		if c != "" {
			kept = append(kept, c)
		}
	}
	return attr("class", strings.Join(kept, " "))
}

// Data sets a data-* attribute.
func Data(key, value string) Attr { return attr("data-"+key, value) }

// Lang sets the lang attribute.
func Lang(lang string) Attr { return attr("lang", lang) }

// Charset sets the charset attribute.
func Charset(charset string) Attr { return attr("charset", charset) }

// Accessibility

func Role(role string) Attr          { return attr("role", role) }
func AriaInvalid(invalid bool) Attr  { return attr("aria-invalid", invalid) }
func AriaDescribedBy(id string) Attr { return attr("aria-describedby", id) }
func AriaLive(mode string) Attr      { return attr("aria-live", mode) }
func AriaLabel(label string) Attr    { return attr("aria-label", label) }

// Form attributes

func Name(name string) Attr          { return attr("name", name) }
func Type(t string) Attr             { return attr("type", t) }
func Value(v string) Attr            { return attr("value", v) }
func For(id string) Attr             { return attr("for", id) }
func Action(url string) Attr         { return attr("action", url) }
func Method(m string) Attr           { return attr("method", m) }
func Placeholder(text string) Attr   { return attr("placeholder", text) }
func Required() Attr                 { return attr("required", true) }
func MaxLength(n int) Attr           { return attr("maxlength", n) }
func MinLength(n int) Attr           { return attr("minlength", n) }
func FormNoValidate() Attr           { return attr("formnovalidate", true) }
func NoValidate() Attr               { return attr("novalidate", true) }
func Autocomplete(value string) Attr { return attr("autocomplete", value) }

// Link attributes

func Href(url string) Attr { return attr("href", url) }
func Rel(rel string) Attr  { return attr("rel", rel) }
