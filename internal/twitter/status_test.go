package twitter

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestBuildStatus_Example(t *testing.T) {
	got := BuildStatus(
		"Exam Schedule Posted",
		"<p>See the &nbsp;attached&nbsp;schedule.</p>",
		"https://example.org/a/42",
	)
	want := "Exam Schedule Posted: See the  attached schedule.... - https://example.org/a/42"
	if got != want {
		t.Errorf("BuildStatus() =\n%q\nwant\n%q", got, want)
	}
}

func TestBuildStatus_ShortTitleTruncatesContent(t *testing.T) {
	title := "Snow day"
	content := "<div>" + strings.Repeat("closed ", 50) + "</div>"
	url := "https://ion.tjhsst.edu/a/1"

	got := BuildStatus(title, content, url)

	n := 139 - (utf8.RuneCountInString(title) + 2 + 3 + 3 + 22)
	plain := []rune(strings.Repeat("closed ", 50))
	want := title + ": " + string(plain[:n]) + "... - " + url
	if got != want {
		t.Errorf("BuildStatus() =\n%q\nwant\n%q", got, want)
	}
}

func TestBuildStatus_FitsBudget(t *testing.T) {
	// Twitter wraps every link to 22 or 23 characters.
	url := "https://t.co/abcdefghij"
	content := strings.Repeat("x", 500)

	for n := 0; n <= ShortTitleMax; n++ {
		title := strings.Repeat("T", n)
		got := BuildStatus(title, content, url)
		if l := utf8.RuneCountInString(got); l > 140 {
			t.Fatalf("title length %d: status length %d exceeds 140", n, l)
		}
	}
}

func TestBuildStatus_LongTitle(t *testing.T) {
	title := strings.Repeat("a", 60) + "&nbsp;" + strings.Repeat("b", 60)
	url := "https://ion.tjhsst.edu/a/2"

	got := BuildStatus(title, "<p>ignored</p>", url)

	plainTitle := []rune(strings.Repeat("a", 60) + " " + strings.Repeat("b", 60))
	want := string(plainTitle[:110]) + "... - " + url
	if got != want {
		t.Errorf("BuildStatus() =\n%q\nwant\n%q", got, want)
	}
	if strings.Contains(got, "ignored") {
		t.Error("long-title status must not include content")
	}
}

func TestBuildStatus_CountsRunes(t *testing.T) {
	title := strings.Repeat("é", 100)
	got := BuildStatus(title, "ü", "u")
	if !strings.HasPrefix(got, title+": ü...") {
		t.Errorf("100-rune title should use the short-title branch, got %q", got)
	}

	long := strings.Repeat("é", 105)
	got = BuildStatus(long, "ü", "u")
	if got != long+"... - u" {
		t.Errorf("BuildStatus() = %q", got)
	}
}
