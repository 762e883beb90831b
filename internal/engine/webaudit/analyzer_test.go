package webaudit

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parsing fixture: %v", err)
	}
	return doc
}

const modernPage = `<!DOCTYPE html>
<html><head>
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta name="description" content="Artisan bakery in Liège since 1987.">
<title>Boulangerie Petit</title>
</head><body>
<h1>Boulangerie Petit</h1>
<a href="mailto:info@petit.be">Contact</a>
</body></html>`

const legacyPage = `<html><head></head><body>
<font face="Comic Sans MS">Bienvenue sur notre site!</font>
<img src="1.gif"><img src="2.gif"><img src="3.gif"><img src="4.gif">
</body></html>`

func TestScoreModernSite(t *testing.T) {
	score, issues := Score(parse(t, modernPage), "https://petit.be")
	if score != 0 {
		t.Errorf("score = %d, want 0; issues: %v", score, issues)
	}
	if len(issues) != 0 {
		t.Errorf("unexpected issues: %v", issues)
	}
}

func TestScoreLegacySite(t *testing.T) {
	score, issues := Score(parse(t, legacyPage), "http://old.example")

	// no https (20) + no viewport (20) + no title (10) + no description (10)
	// + no h1 (8) + legacy markup (12) + missing alts (8) + no contact (12)
	if score != 100 {
		t.Errorf("score = %d, want 100; issues: %v", score, issues)
	}
	if len(issues) != 8 {
		t.Errorf("got %d issues, want 8: %v", len(issues), issues)
	}

	wantFirst := "site not served over HTTPS"
	if len(issues) == 0 || issues[0] != wantFirst {
		t.Errorf("first issue = %q, want %q", issues[0], wantFirst)
	}
}

func TestScoreDeterministic(t *testing.T) {
	doc := parse(t, legacyPage)
	s1, i1 := Score(doc, "http://old.example")
	s2, i2 := Score(doc, "http://old.example")
	if s1 != s2 || len(i1) != len(i2) {
		t.Fatalf("non-deterministic score: %d/%d, %v/%v", s1, s2, i1, i2)
	}
}

func TestScoreContactForm(t *testing.T) {
	page := `<html><head>
<meta name="viewport" content="width=device-width">
<meta name="description" content="x"><title>t</title>
</head><body><h1>t</h1><form action="/contact"></form></body></html>`

	score, issues := Score(parse(t, page), "https://form.example")
	for _, issue := range issues {
		if strings.Contains(issue, "get in touch") {
			t.Errorf("contact form not recognized: %v", issues)
		}
	}
	if score != 0 {
		t.Errorf("score = %d, want 0", score)
	}
}

func TestScoreAltTextThreshold(t *testing.T) {
	// 3 images or fewer never triggers the alt check
	few := `<html><head>
<meta name="viewport" content="w"><meta name="description" content="x"><title>t</title>
</head><body><h1>t</h1><a href="tel:+3242210000">tel</a>
<img src="a.jpg"><img src="b.jpg"><img src="c.jpg"></body></html>`

	if score, issues := Score(parse(t, few), "https://few.example"); score != 0 {
		t.Errorf("alt check fired on a small gallery: %d %v", score, issues)
	}

	// 4 images, 3 without alt: majority missing
	many := `<html><head>
<meta name="viewport" content="w"><meta name="description" content="x"><title>t</title>
</head><body><h1>t</h1><a href="tel:+3242210000">tel</a>
<img src="a.jpg" alt="shop front"><img src="b.jpg"><img src="c.jpg"><img src="d.jpg"></body></html>`

	score, issues := Score(parse(t, many), "https://many.example")
	if score != 8 {
		t.Errorf("score = %d, want 8; issues: %v", score, issues)
	}
}

func TestNormalizeURL(t *testing.T) {
	cases := []struct{ in, want string }{
		{"petit.be", "https://petit.be"},
		{"http://petit.be", "http://petit.be"},
		{"https://petit.be/menu", "https://petit.be/menu"},
	}
	for _, c := range cases {
		got, err := normalizeURL(c.in)
		if err != nil {
			t.Errorf("normalizeURL(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("normalizeURL(%q) = %q, want %q", c.in, got, c.want)
		}
	}

	if _, err := normalizeURL("   "); err == nil {
		t.Error("normalizeURL accepted a blank url")
	}
}
