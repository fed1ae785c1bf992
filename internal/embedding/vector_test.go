package embedding

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckDimensions(t *testing.T) {
	assert.NoError(t, CheckDimensions(make([]float32, 1024), 1024))
	assert.Error(t, CheckDimensions(make([]float32, 1023), 1024))
	assert.Error(t, CheckDimensions(make([]float32, 1025), 1024))
	assert.Error(t, CheckDimensions(nil, 1024))
}

func TestVectorLiteralRoundTrip(t *testing.T) {
	vec := []float32{0.25, -1, 0.5}
	parsed, err := ParseVectorLiteral(VectorLiteral(vec))
	require.NoError(t, err)
	require.Len(t, parsed, 3)
	for i := range vec {
		assert.InDelta(t, vec[i], parsed[i], 1e-5)
	}
}

func TestParseVectorLiteralRejectsGarbage(t *testing.T) {
	_, err := ParseVectorLiteral("not a vector")
	assert.Error(t, err)
	_, err = ParseVectorLiteral("[1,two,3]")
	assert.Error(t, err)
}

func TestCosine(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	assert.InDelta(t, 0, Cosine(a, b), 1e-9)
	assert.InDelta(t, 1, Cosine(a, a), 1e-9)
	assert.InDelta(t, -1, Cosine(a, []float32{-1, 0}), 1e-9)

	// mismatched and zero vectors degrade to zero
	assert.Zero(t, Cosine(a, []float32{1}))
	assert.Zero(t, Cosine(a, []float32{0, 0}))
}

func TestNormalize(t *testing.T) {
	out := Normalize([]float32{3, 4})
	var norm float64
	for _, x := range out {
		norm += float64(x) * float64(x)
	}
	assert.InDelta(t, 1, math.Sqrt(norm), 1e-6)

	zero := []float32{0, 0}
	assert.Equal(t, zero, Normalize(zero))
}

func TestMeanPool(t *testing.T) {
	pooled := MeanPool([][]float32{
		{1, 0},
		{0, 1},
	})
	require.Len(t, pooled, 2)
	assert.InDelta(t, pooled[0], pooled[1], 1e-6)
	assert.InDelta(t, 1, Cosine(pooled, []float32{1, 1}), 1e-6)

	assert.Nil(t, MeanPool(nil))
}
