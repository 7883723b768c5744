package stats

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sparkline maps values onto a width x height box, min at the bottom and max
// at the top (y grows downwards). Fewer than two values draw nothing.
func Sparkline(values []float64, width, height float64) []Point {
	if len(values) < 2 {
		return nil
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	step := width / float64(len(values)-1)
	points := make([]Point, len(values))
	for i, v := range values {
		points[i] = Point{
			X: float64(i) * step,
			Y: height - (v-lo)/span*height,
		}
	}
	return points
}
