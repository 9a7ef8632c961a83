package intake

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// blockElements get a line break after them so headings and list items
// stay on their own lines in the extracted text.
const blockElements = "p, div, li, h1, h2, h3, h4, h5, h6, section, article, header, footer"

// HTMLText returns the visible text of an HTML résumé.
func HTMLText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript, template, head").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find(blockElements).Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}

	var lines []string
	for _, line := range strings.Split(body.Text(), "\n") {
		if line = strings.TrimSpace(runOfSpaces.ReplaceAllString(line, " ")); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}
