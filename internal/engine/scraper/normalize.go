package scraper

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mgillard/leadtap/internal/model"
)

var (
	decimalRe  = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
	nonDigitRe = regexp.MustCompile(`\D`)
)

// ParseRating extracts the first decimal number from a raw rating string.
// Only values in (0, 5] are accepted; anything else is treated as absent,
// which guards against reading unrelated digits out of the panel.
func ParseRating(text string) *float64 {
	m := decimalRe.FindString(text)
	if m == "" {
		return nil
	}
	// French panels render "4,5"
	m = strings.ReplaceAll(m, ",", ".")
	r, err := strconv.ParseFloat(m, 64)
	if err != nil || r <= 0 || r > 5 {
		return nil
	}
	return &r
}

// ParseReviewCount strips everything but digits and parses the remainder.
// "1 234 avis" yields 1234; a string with no digits yields absent.
func ParseReviewCount(text string) *int {
	digits := nonDigitRe.ReplaceAllString(text, "")
	if digits == "" {
		return nil
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return nil
	}
	return &n
}

// Normalize turns a raw field bag into a typed candidate, applying the
// exclusion-set check, in-run dedup and the minimum-rating filter.
// seen is mutated with the key of every candidate that passes dedup.
// The caller-supplied exclusion set is never modified.
func Normalize(raw *RawCandidate, cfg *model.ScrapeConfig, seen map[string]struct{}) (*model.Candidate, bool) {
	name := strings.TrimSpace(raw.Name)
	if name == "" {
		return nil, false
	}

	key := model.ExclusionKey(name, raw.Address)
	if _, ok := cfg.ExcludeExisting[key]; ok {
		return nil, false
	}
	if _, ok := seen[key]; ok {
		return nil, false
	}

	rating := ParseRating(raw.RatingText)
	// Missing data never penalizes: only a present rating below the
	// threshold is rejected.
	if cfg.MinRating > 0 && rating != nil && *rating < cfg.MinRating {
		return nil, false
	}

	seen[key] = struct{}{}

	return &model.Candidate{
		Name:          name,
		Address:       strings.TrimSpace(raw.Address),
		Phone:         strings.TrimSpace(raw.Phone),
		Rating:        rating,
		ReviewCount:   ParseReviewCount(raw.ReviewText),
		Category:      strings.TrimSpace(raw.Category),
		SourceURL:     raw.SourceURL,
		WebsiteURL:    strings.TrimSpace(raw.WebsiteURL),
		LocationQuery: cfg.Location,
	}, true
}
