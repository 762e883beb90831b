package tui

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const maxRecent = 10

// RecentScan records one finished scan so the home screen can list it.
type RecentScan struct {
	Path     string    `json:"path"`
	Location string    `json:"location,omitempty"`
	Leads    int       `json:"leads,omitempty"`
	RanAt    time.Time `json:"ran_at"`
}

func recentFilePath() string {
	cfg, _ := os.UserConfigDir()
	return filepath.Join(cfg, "leadtap", "recent.json")
}

func LoadRecent() []RecentScan {
	data, err := os.ReadFile(recentFilePath())
	if err != nil {
		return nil
	}
	var entries []RecentScan
	json.Unmarshal(data, &entries)
	return entries
}

// SaveRecent prepends a scan to the recent list, dropping duplicates of the
// same database path.
func SaveRecent(dbPath string) {
	SaveRecentScan(RecentScan{Path: dbPath})
}

func SaveRecentScan(scan RecentScan) {
	abs, err := filepath.Abs(scan.Path)
	if err != nil {
		abs = scan.Path
	}
	scan.Path = abs
	scan.RanAt = time.Now()

	entries := LoadRecent()

	filtered := make([]RecentScan, 0, len(entries))
	for _, e := range entries {
		if e.Path != abs {
			filtered = append(filtered, e)
		}
	}

	filtered = append([]RecentScan{scan}, filtered...)
	if len(filtered) > maxRecent {
		filtered = filtered[:maxRecent]
	}

	data, _ := json.MarshalIndent(filtered, "", "  ")
	dir := filepath.Dir(recentFilePath())
	os.MkdirAll(dir, 0755)
	os.WriteFile(recentFilePath(), data, 0644)
}
