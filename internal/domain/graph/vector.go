package graph

import "math"

// Normalize returns the unit-length copy of v. A zero-norm input returns a
// zero vector of the same length, which by construction has zero similarity
// with everything.
func Normalize(v []float64) []float64 {
	out := make([]float64, len(v))
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return out
	}
	norm := math.Sqrt(sum)
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

// Dot returns the inner product of two equal-length vectors. For unit
// vectors this is the cosine similarity directly.
func Dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Cosine returns the cosine similarity of two vectors of arbitrary norm.
// Non-finite results (zero-norm operands) collapse to 0.
func Cosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0.0
	}
	c := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return 0.0
	}
	return c
}

// Centroid returns the element-wise mean of the selected rows of a matrix.
// An empty selection returns nil.
func Centroid(matrix [][]float64, rows []int) []float64 {
	if len(rows) == 0 || len(matrix) == 0 {
		return nil
	}
	dim := len(matrix[0])
	out := make([]float64, dim)
	var used int
	for _, r := range rows {
		if r < 0 || r >= len(matrix) {
			continue
		}
		for i, x := range matrix[r] {
			out[i] += x
		}
		used++
	}
	if used == 0 {
		return nil
	}
	for i := range out {
		out[i] /= float64(used)
	}
	return out
}
