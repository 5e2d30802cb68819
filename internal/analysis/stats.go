package analysis

import "math"

func valid(v *float64) bool {
	return v != nil && !math.IsNaN(*v)
}

// Average returns the mean of the non-nil, non-NaN entries, or 0 when there are none.
func Average(values []*float64) float64 {
	var sum float64
	var n int
	for _, v := range values {
		if !valid(v) {
			continue
		}
		sum += *v
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// StdDev returns the population standard deviation of the valid entries,
// or 0 when fewer than two are valid.
func StdDev(values []*float64) float64 {
	return StdDevOf(Clean(values))
}

// CelsiusToFahrenheit converts c, propagating a missing value as nil.
func CelsiusToFahrenheit(c *float64) *float64 {
	if !valid(c) {
		return nil
	}
	f := *c*9/5 + 32
	return &f
}

// Clean drops nil and NaN entries.
func Clean(values []*float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if valid(v) {
			out = append(out, *v)
		}
	}
	return out
}

// AverageOf is Average for an already cleaned series.
func AverageOf(values []float64) float64 {
	var sum float64
	var n int
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// StdDevOf is StdDev for an already cleaned series.
func StdDevOf(values []float64) float64 {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) < 2 {
		return 0
	}
	mean := AverageOf(clean)
	var sq float64
	for _, v := range clean {
		sq += (v - mean) * (v - mean)
	}
	return math.Sqrt(sq / float64(len(clean)))
}

func lastN(values []float64, n int) []float64 {
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}

func lastNPtr(values []*float64, n int) []*float64 {
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}
