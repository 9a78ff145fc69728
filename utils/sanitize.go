package utils

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugcPolicy    = bluemonday.UGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()
)

// Sanitize cleans user generated HTML content to prevent XSS attacks.
func Sanitize(input string) string {
	return ugcPolicy.Sanitize(input)
}

// SanitizePlain strips every tag. Entities produced by the policy are
// decoded again because plain fields are never rendered as HTML.
func SanitizePlain(input string) string {
	return html.UnescapeString(strictPolicy.Sanitize(input))
}
