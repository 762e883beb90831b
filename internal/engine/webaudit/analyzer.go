// Package webaudit scores the web presence of a candidate business.
// Higher scores mean a worse site, which for lead generation means a better
// prospect. Scores below the configured good-site threshold mark businesses
// whose web presence needs no help.
package webaudit

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Auditor fetches a site's landing page and scores it from static
// heuristics. It implements the scraper.Analyzer contract.
type Auditor struct {
	client *Client
}

func NewAuditor() *Auditor {
	return &Auditor{client: NewClient()}
}

// Analyze fetches url and scores it 0-100. The issue list explains every
// point of the score, in the order the checks run.
func (a *Auditor) Analyze(ctx context.Context, url string) (int, []string, error) {
	body, finalURL, err := a.client.Fetch(ctx, url)
	if err != nil {
		return 0, nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("parsing %s: %w", finalURL, err)
	}

	score, issues := Score(doc, finalURL)
	return score, issues, nil
}

// Score applies the audit heuristics to a parsed document. Deterministic:
// the same document and URL always produce the same score and issues.
func Score(doc *goquery.Document, pageURL string) (int, []string) {
	score := 0
	var issues []string
	flag := func(points int, issue string) {
		score += points
		issues = append(issues, issue)
	}

	if !strings.HasPrefix(strings.ToLower(pageURL), "https://") {
		flag(20, "site not served over HTTPS")
	}

	if doc.Find(`meta[name="viewport"]`).Length() == 0 {
		flag(20, "no mobile viewport, layout will break on phones")
	}

	if strings.TrimSpace(doc.Find("title").First().Text()) == "" {
		flag(10, "missing page title")
	}

	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); !ok || strings.TrimSpace(desc) == "" {
		flag(10, "missing meta description")
	}

	if doc.Find("h1").Length() == 0 {
		flag(8, "no top-level heading")
	}

	if doc.Find("font, frameset, marquee").Length() > 0 {
		flag(12, "legacy markup (font/frameset tags)")
	}

	imgs := doc.Find("img")
	if n := imgs.Length(); n > 3 {
		missing := 0
		imgs.Each(func(_ int, s *goquery.Selection) {
			if alt, ok := s.Attr("alt"); !ok || strings.TrimSpace(alt) == "" {
				missing++
			}
		})
		if missing*2 > n {
			flag(8, "most images lack alt text")
		}
	}

	if !hasContactAffordance(doc) {
		flag(12, "no visible way to get in touch (mailto, tel or form)")
	}

	if score > 100 {
		score = 100
	}
	return score, issues
}

func hasContactAffordance(doc *goquery.Document) bool {
	if doc.Find(`a[href^="mailto:"], a[href^="tel:"]`).Length() > 0 {
		return true
	}
	return doc.Find("form").Length() > 0
}
