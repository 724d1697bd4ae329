package richtext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainText(t *testing.T) {
	html := `<h1>Cloud   Migration</h1><script>alert(1)</script><p>Move <b>fast</b>.</p>`
	assert.Equal(t, "Cloud Migration Move fast.", PlainText(html))
	assert.Equal(t, "just text", PlainText("just   text"))
}

func TestExcerpt_FirstParagraph(t *testing.T) {
	html := `<h2>Intro</h2><p></p><p>DevOps joins development and operations.</p><p>Second.</p>`
	assert.Equal(t, "DevOps joins development and operations.", Excerpt(html, 0))
}

func TestExcerpt_TruncatesOnWordBoundary(t *testing.T) {
	html := "<p>" + strings.Repeat("word ", 100) + "</p>"
	got := Excerpt(html, 32)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, len([]rune(got)), 35)
	assert.NotContains(t, got, "wor...")
}

func TestReadingMinutes(t *testing.T) {
	assert.Equal(t, 1, ReadingMinutes(""))
	assert.Equal(t, 1, ReadingMinutes("<p>short post</p>"))
	assert.Equal(t, 2, ReadingMinutes("<p>"+strings.Repeat("w ", 201)+"</p>"))
}
