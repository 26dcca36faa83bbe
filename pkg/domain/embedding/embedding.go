package embedding

import (
	"errors"
	"math"
)

var (
	ErrDimensionMismatch = errors.New("embedding vectors have different dimensions")
	ErrZeroVector        = errors.New("embedding vector has zero magnitude")
)

// Vector is a point in the model's embedding space. Vectors produced by
// different models are not comparable.
type Vector []float64

// CosineSimilarity returns the normalized dot product of a and b, in [-1, 1].
func CosineSimilarity(a, b Vector) (float64, error) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0, ErrZeroVector
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	// rounding can push identical vectors slightly past 1
	if sim > 1 {
		sim = 1
	} else if sim < -1 {
		sim = -1
	}
	return sim, nil
}

// Normalize scales v to unit length in place. Zero vectors are left untouched.
func Normalize(v Vector) {
	var sumSquares float64
	for _, val := range v {
		sumSquares += val * val
	}

	norm := math.Sqrt(sumSquares)
	if norm == 0 {
		return
	}

	for i := range v {
		v[i] /= norm
	}
}
