package render

import (
	"io"

	"github.com/vango-dev/addressform/pkg/vdom"
)

// PageData contains the data for rendering a complete HTML page.
type PageData struct {
	// Title is the page title.
	Title string

	// Lang is the document language (default: "en").
	Lang string

	// Styles is inline CSS placed in the head.
	Styles string

	// Body is the page content.
	Body *vdom.VNode
}

// RenderPage writes a complete HTML document.
func (r *Renderer) RenderPage(w io.Writer, page PageData) error {
	lang := page.Lang
	if lang == "" {
		lang = "en"
	}

	if _, err := io.WriteString(w, "<!DOCTYPE html>\n"); err != nil {
		return err
	}

	var style *vdom.VNode
	if page.Styles != "" {
		style = vdom.Style(vdom.Raw(page.Styles))
	}

	doc := vdom.Html(vdom.Lang(lang),
		vdom.Head(
			vdom.Meta(vdom.Charset("utf-8")),
			vdom.Meta(vdom.Name("viewport"), vdom.AttrOf("content", "width=device-width, initial-scale=1")),
			vdom.Title(page.Title),
			style,
		),
		vdom.Body(page.Body),
	)
	return r.RenderToWriter(w, doc)
}
