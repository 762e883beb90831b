package scraper

import (
	"sort"

	"github.com/mgillard/leadtap/internal/model"
)

// Rank orders candidates by prospect value, in place, and returns the slice.
// Candidates without a website come first (inherently higher-value leads),
// ascending by rating with absent ratings treated as 0 so unverified
// prospects surface first. Candidates with a website follow, descending by
// audit score with absent scores below every present one (worse sites
// first). The order is stable.
func Rank(cands []model.Candidate) []model.Candidate {
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := &cands[i], &cands[j]
		aw, bw := a.WebsiteURL != "", b.WebsiteURL != ""
		if aw != bw {
			return !aw
		}
		if !aw {
			return ratingOrZero(a) < ratingOrZero(b)
		}
		return scoreOrBelow(a) > scoreOrBelow(b)
	})
	return cands
}

func ratingOrZero(c *model.Candidate) float64 {
	if c.Rating == nil {
		return 0
	}
	return *c.Rating
}

func scoreOrBelow(c *model.Candidate) int {
	if c.WebsiteScore == nil {
		return -1
	}
	return *c.WebsiteScore
}
