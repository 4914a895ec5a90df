package twitter

import (
	"github.com/sungwon/ion-notify/internal/htmltext"
)

const (
	// ShortTitleMax is the longest title that still leaves room for content.
	ShortTitleMax = 100
	// LongTitleCut is where long titles are truncated.
	LongTitleCut = 110

	statusBudget = 139
	// linkReserve is the length Twitter counts for any t.co-wrapped URL.
	linkReserve = 22
	// ": " after the title, "..." after the content and " - " before the URL.
	separators = 2 + 3 + 3
)

// BuildStatus builds the tweet text for an announcement. Lengths are counted
// in characters, not bytes.
func BuildStatus(title, content, url string) string {
	t := []rune(htmltext.ReplaceNbsp(title))

	if len(t) <= ShortTitleMax {
		c := []rune(htmltext.PlainText(content))
		n := statusBudget - (len(t) + separators + linkReserve)
		if n > len(c) {
			n = len(c)
		}
		return string(t) + ": " + string(c[:n]) + "... - " + url
	}

	cut := LongTitleCut
	if cut > len(t) {
		cut = len(t)
	}
	return string(t[:cut]) + "... - " + url
}
