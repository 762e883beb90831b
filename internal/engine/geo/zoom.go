package geo

import "math"

// ZoomForRadius picks the map zoom level whose viewport roughly covers a
// search radius in km. At zoom z the world spans 360/2^z degrees per tile
// and one degree of latitude is ~111 km, so we invert that and clamp to the
// range the provider renders listings for.
func ZoomForRadius(km float64) int {
	if km <= 0 {
		return 13
	}
	spanDeg := 2 * km / 111.0
	zoom := int(math.Round(math.Log2(360.0 / spanDeg)))
	if zoom < 10 {
		zoom = 10
	}
	if zoom > 16 {
		zoom = 16
	}
	return zoom
}
