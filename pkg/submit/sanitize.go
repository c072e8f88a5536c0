package submit

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/vango-dev/addressform/pkg/addressform"
)

// Sanitizer strips markup from input values. It is applied as the form's
// Cleaner, so the value that is validated is the value that is delivered:
//
//	f := addressform.New(
//	    addressform.WithCleaner(submit.NewSanitizer()),
//	    addressform.WithSubmitter(sink),
//	)
type Sanitizer struct {
	policy *bluemonday.Policy
}

var _ addressform.Cleaner = (*Sanitizer)(nil)

// NewSanitizer uses a strict policy: all tags are removed and the remaining
// text is unescaped back to plain characters.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// Clean implements addressform.Cleaner.
func (s *Sanitizer) Clean(v string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(v)))
}
