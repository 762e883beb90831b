package model

import (
	"testing"
	"time"
)

func TestExclusionKey(t *testing.T) {
	cases := []struct {
		name, address, want string
	}{
		{"Chez Marcel", "Rue Haute 12", "chez marcel|rue haute 12"},
		{"  CHEZ MARCEL ", " rue haute 12 ", "chez marcel|rue haute 12"},
		{"Solo", "", "solo|"},
	}
	for _, c := range cases {
		if got := ExclusionKey(c.name, c.address); got != c.want {
			t.Errorf("ExclusionKey(%q, %q) = %q, want %q", c.name, c.address, got, c.want)
		}
	}

	cand := &Candidate{Name: "Chez Marcel", Address: "Rue Haute 12"}
	if cand.Key() != ExclusionKey(cand.Name, cand.Address) {
		t.Error("Candidate.Key does not match ExclusionKey")
	}
}

func TestScrapeConfigDefaults(t *testing.T) {
	var cfg ScrapeConfig
	cfg.Defaults()

	if len(cfg.Categories) != 1 || cfg.Categories[0] != "entreprises" {
		t.Errorf("default categories = %v", cfg.Categories)
	}
	if cfg.MaxResults != 20 {
		t.Errorf("default MaxResults = %d, want 20", cfg.MaxResults)
	}
	if cfg.ExcludeExisting == nil {
		t.Error("ExcludeExisting left nil")
	}
	if cfg.Tuning.GoodSiteThreshold != 25 {
		t.Errorf("default GoodSiteThreshold = %d, want 25", cfg.Tuning.GoodSiteThreshold)
	}
	if cfg.Tuning.NavigationTimeout != 60*time.Second {
		t.Errorf("default NavigationTimeout = %v", cfg.Tuning.NavigationTimeout)
	}

	// explicit values survive
	cfg2 := ScrapeConfig{Categories: []string{"garages"}, MaxResults: 5}
	cfg2.Tuning.GoodSiteThreshold = 40
	cfg2.Defaults()
	if cfg2.MaxResults != 5 || cfg2.Categories[0] != "garages" || cfg2.Tuning.GoodSiteThreshold != 40 {
		t.Errorf("Defaults overwrote explicit values: %+v", cfg2)
	}
}
