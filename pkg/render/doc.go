// Package render writes vdom trees as HTML.
//
// Text nodes and attribute values are escaped. Attributes are emitted in
// sorted key order so output is deterministic.
//
//	r := render.NewRenderer(render.RendererConfig{})
//	html, err := r.RenderToString(vdom.Div(vdom.Class("card"), "Hello"))
//	// <div class="card">Hello</div>
package render
