package features

import "math"

// PctChange computes r_t = x_t / x_{t-1} - 1. The first element is NaN, as is
// any element whose current or previous input is NaN or whose previous input is 0.
func PctChange(values []float64) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if i == 0 {
			out[i] = math.NaN()
			continue
		}
		prev, cur := values[i-1], values[i]
		if math.IsNaN(prev) || math.IsNaN(cur) || prev == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = cur/prev - 1
	}
	return out
}

// Mean returns the arithmetic mean, or NaN for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// SampleStd returns the n-1 standard deviation, or NaN with fewer than 2 values.
func SampleStd(xs []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}
	return math.Sqrt(Covariance(xs, xs))
}

// Covariance returns the n-1 sample covariance of two equal-length slices.
func Covariance(xs, ys []float64) float64 {
	n := len(xs)
	if n < 2 || n != len(ys) {
		return math.NaN()
	}
	mx, my := Mean(xs), Mean(ys)
	sum := 0.0
	for i := range xs {
		sum += (xs[i] - mx) * (ys[i] - my)
	}
	return sum / float64(n-1)
}

// Pearson returns the correlation coefficient, or NaN when either side has
// zero variance.
func Pearson(xs, ys []float64) float64 {
	cov := Covariance(xs, ys)
	vx, vy := Covariance(xs, xs), Covariance(ys, ys)
	if math.IsNaN(cov) || vx <= 0 || vy <= 0 {
		return math.NaN()
	}
	r := cov / math.Sqrt(vx*vy)
	// clamp rounding drift
	return math.Max(-1, math.Min(1, r))
}
