package embedding_test

import (
	"math"
	"testing"

	"github.com/NeuralTrust/TrustSearch/pkg/domain/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     embedding.Vector
		expected float64
	}{
		{name: "identical", a: embedding.Vector{0.3, 0.4, 0.5}, b: embedding.Vector{0.3, 0.4, 0.5}, expected: 1},
		{name: "scaled", a: embedding.Vector{1, 2, 3}, b: embedding.Vector{2, 4, 6}, expected: 1},
		{name: "orthogonal", a: embedding.Vector{1, 0}, b: embedding.Vector{0, 1}, expected: 0},
		{name: "opposite", a: embedding.Vector{1, 1}, b: embedding.Vector{-1, -1}, expected: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim, err := embedding.CosineSimilarity(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, sim, 1e-4)
		})
	}
}

func TestCosineSimilarity_Symmetric(t *testing.T) {
	a := embedding.Vector{0.1, -0.7, 2.5, 0.01}
	b := embedding.Vector{1.2, 0.3, -0.4, 0.9}

	ab, err := embedding.CosineSimilarity(a, b)
	require.NoError(t, err)
	ba, err := embedding.CosineSimilarity(b, a)
	require.NoError(t, err)

	assert.InDelta(t, ab, ba, 1e-12)
	assert.GreaterOrEqual(t, ab, -1.0)
	assert.LessOrEqual(t, ab, 1.0)
}

func TestCosineSimilarity_Errors(t *testing.T) {
	_, err := embedding.CosineSimilarity(embedding.Vector{1, 2}, embedding.Vector{1, 2, 3})
	assert.ErrorIs(t, err, embedding.ErrDimensionMismatch)

	_, err = embedding.CosineSimilarity(nil, nil)
	assert.ErrorIs(t, err, embedding.ErrDimensionMismatch)

	_, err = embedding.CosineSimilarity(embedding.Vector{0, 0}, embedding.Vector{1, 2})
	assert.ErrorIs(t, err, embedding.ErrZeroVector)
}

func TestNormalize(t *testing.T) {
	v := embedding.Vector{3, 4}
	embedding.Normalize(v)
	assert.InDelta(t, 0.6, v[0], 1e-9)
	assert.InDelta(t, 0.8, v[1], 1e-9)

	var norm float64
	for _, x := range v {
		norm += x * x
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9)

	zero := embedding.Vector{0, 0, 0}
	embedding.Normalize(zero)
	assert.Equal(t, embedding.Vector{0, 0, 0}, zero)
}
