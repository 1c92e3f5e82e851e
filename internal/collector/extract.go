// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package collector

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// bodySelectors are tried in order; the first selector yielding non-empty
// text wins. Search/News API result pages vary in markup so this tries
// from most to least specific.
var bodySelectors = []string{"article", "main", "[role=main]", "body"}

// extractBodyText reduces a raw HTML page to its main text content,
// stripping script/style/nav/footer chrome. Used for Search/News API
// result pages, which return full HTML rather than a clean article body.
func extractBodyText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, nav, footer, header, aside").Remove()

	for _, selector := range bodySelectors {
		text := strings.TrimSpace(doc.Find(selector).First().Text())
		if text != "" {
			return collapseWhitespace(text), nil
		}
	}
	return "", nil
}

func collapseWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
