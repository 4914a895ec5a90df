// Package htmltext reduces announcement HTML to plain text.
package htmltext

import (
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// StripTags removes anything that looks like an HTML tag. Entities are left
// untouched.
func StripTags(s string) string {
	return tagPattern.ReplaceAllString(s, "")
}

// ReplaceNbsp turns the literal "&nbsp;" entity into a plain space.
func ReplaceNbsp(s string) string {
	return strings.ReplaceAll(s, "&nbsp;", " ")
}

// PlainText strips tags and then replaces non-breaking-space entities.
func PlainText(s string) string {
	return ReplaceNbsp(StripTags(s))
}
