// Package plaintext reduces user-supplied text to plain characters.
//
// Notification titles and bodies are displayed as plain text. Any markup in
// the input is removed (script and style contents included) and entities are
// decoded, so what is stored is what a reader sees.
package plaintext

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// Clean strips all markup from s and trims surrounding whitespace.
func Clean(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(s)))
}
