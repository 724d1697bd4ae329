package richtext

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	DefaultExcerptLength = 180
	WordsPerMinute       = 200
)

func parse(html string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	doc.Find("script, style").Remove()
	return doc
}

// PlainText strips markup and collapses whitespace. Non-HTML input comes back
// with collapsed whitespace only.
func PlainText(html string) string {
	doc := parse(html)
	if doc == nil {
		return strings.Join(strings.Fields(html), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// Excerpt returns the first non-empty paragraph (or the whole text when there
// is none) cut to at most maxChars runes on a word boundary.
func Excerpt(html string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultExcerptLength
	}

	text := ""
	if doc := parse(html); doc != nil {
		doc.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text = strings.Join(strings.Fields(s.Text()), " ")
			return text == ""
		})
	}
	if text == "" {
		text = PlainText(html)
	}

	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	cut := string(runes[:maxChars])
	if i := strings.LastIndexByte(cut, ' '); i > maxChars/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "..."
}

// ReadingMinutes estimates reading time, never less than one minute.
func ReadingMinutes(html string) int {
	words := len(strings.Fields(PlainText(html)))
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}
