package util

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var XSSPolicy = bluemonday.UGCPolicy()

// XSSSanitize decodes entities first so entity-encoded markup is sanitized
// like literal markup. The result is safe to render as HTML.
func XSSSanitize(val string) string {
	return XSSPolicy.Sanitize(html.UnescapeString(val))
}

// SanitizeText strips all markup; used for single line fields like usernames.
func SanitizeText(val string) string {
	return strings.TrimSpace(bluemonday.StrictPolicy().Sanitize(html.UnescapeString(val)))
}
