package matcher

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Flatten reduces service-provided finding content to plain text. Reports come
// back with embedded HTML markup (tables, anchors, code blocks); substring
// matching against raw markup would miss words split by tags. Content without
// markup passes through untouched.
func Flatten(content string) string {
	if !strings.Contains(content, "<") {
		return content
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return content
	}
	text := doc.Text()
	if strings.TrimSpace(text) == "" {
		return content
	}
	return text
}
