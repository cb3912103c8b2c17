package domain

import "math"

// Normalize scales v in place to unit L2 norm.
// A zero vector is left unchanged. The inner product of two normalised
// vectors is their cosine similarity, which is what the index ranks by.
func Normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := 1 / math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
}

// Dot returns the inner product of a and b.
// The vectors must have the same length.
func Dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
