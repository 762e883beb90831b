package geo

import "testing"

func TestZoomForRadius(t *testing.T) {
	cases := []struct {
		km   float64
		want int
	}{
		{0, 13},  // unknown radius, sensible default
		{-5, 13}, // garbage in, default out
		{0.1, 16}, // tight radius clamps at max detail
		{0.5, 15},
		{10, 11},
		{25, 10},
		{500, 10}, // huge radius clamps at min zoom
	}
	for _, c := range cases {
		if got := ZoomForRadius(c.km); got != c.want {
			t.Errorf("ZoomForRadius(%v) = %d, want %d", c.km, got, c.want)
		}
	}
}

func TestZoomMonotonic(t *testing.T) {
	prev := ZoomForRadius(0.1)
	for _, km := range []float64{1, 5, 10, 50, 100, 1000} {
		z := ZoomForRadius(km)
		if z > prev {
			t.Fatalf("zoom grew with radius: %v km gave %d after %d", km, z, prev)
		}
		prev = z
	}
}
