package scraper

import (
	"context"
	"testing"
	"time"
)

func TestJitterDurationBounds(t *testing.T) {
	j := Jitter{Min: 100 * time.Millisecond, Max: 300 * time.Millisecond}
	for i := 0; i < 200; i++ {
		d := j.Duration()
		if d < j.Min || d > j.Max {
			t.Fatalf("duration %v outside [%v, %v]", d, j.Min, j.Max)
		}
	}
}

func TestJitterSleepCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	j := Jitter{Min: 10 * time.Second, Max: 20 * time.Second}
	start := time.Now()
	j.Sleep(ctx)
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("Sleep ignored cancellation, took %v", elapsed)
	}
}
