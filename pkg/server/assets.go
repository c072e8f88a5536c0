package server

import _ "embed"

// liveScript connects the page to /ws and patches messages in place. The
// form keeps working as a plain HTML form without it.
//
//go:embed static/live.js
var liveScript string

//go:embed static/form.css
var pageStyles string
