package browser

import (
	"strings"

	pw "github.com/playwright-community/playwright-go"
)

// Field names extracted out of a detail panel.
const (
	FieldName     = "name"
	FieldAddress  = "address"
	FieldPhone    = "phone"
	FieldRating   = "rating"
	FieldReviews  = "reviews"
	FieldCategory = "category"
	FieldWebsite  = "website"
)

// FieldChain is an ordered list of selectors tried until one yields a
// non-empty value.
type FieldChain []string

// FieldChains maps each field to its extraction chain. The chains are the
// only provider-specific part of extraction, so swapping the target site
// means swapping this table, not the orchestration.
type FieldChains map[string]FieldChain

// MapsFieldChains returns the selector chains for the Google Maps detail
// panel as rendered in mid-2026. Class names are brittle; each chain ends
// with a structural fallback.
func MapsFieldChains() FieldChains {
	return FieldChains{
		FieldName: {
			`div[role="main"] h1.DUwDvf`,
			`div[role="main"] h1`,
			`h1`,
		},
		FieldAddress: {
			`button[data-item-id="address"] div.fontBodyMedium`,
			`button[data-item-id="address"]`,
		},
		FieldPhone: {
			`button[data-item-id^="phone"] div.fontBodyMedium`,
			`button[data-item-id^="phone"]`,
		},
		FieldRating: {
			`div.F7nice span[aria-hidden="true"]`,
			`div[role="main"] span.ceNzKf`,
		},
		FieldReviews: {
			`div.F7nice span[aria-label]`,
			`button[jsaction*="moreReviews"]`,
		},
		FieldCategory: {
			`button.DkEaL`,
			`span.DkEaL`,
		},
		FieldWebsite: {
			`a[data-item-id="authority"]`,
			`a[aria-label^="Site Web"]`,
			`a[aria-label^="Website"]`,
		},
	}
}

// Text walks the chain for field and returns the first non-empty text
// content, trimmed. Missing fields return "".
func (c FieldChains) Text(page pw.Page, field string) string {
	for _, sel := range c[field] {
		loc := page.Locator(sel).First()
		n, err := loc.Count()
		if err != nil || n == 0 {
			continue
		}
		txt, err := loc.TextContent(pw.LocatorTextContentOptions{Timeout: pw.Float(2000)})
		if err != nil {
			continue
		}
		if t := strings.TrimSpace(txt); t != "" {
			return t
		}
	}
	return ""
}

// Attr is Text for attributes: first non-empty attr value along the chain.
func (c FieldChains) Attr(page pw.Page, field, attr string) string {
	for _, sel := range c[field] {
		loc := page.Locator(sel).First()
		n, err := loc.Count()
		if err != nil || n == 0 {
			continue
		}
		val, err := loc.GetAttribute(attr, pw.LocatorGetAttributeOptions{Timeout: pw.Float(2000)})
		if err != nil {
			continue
		}
		if v := strings.TrimSpace(val); v != "" {
			return v
		}
	}
	return ""
}
