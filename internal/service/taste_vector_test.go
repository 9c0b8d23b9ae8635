package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfwise/shelfwise/internal/models"
)

func strPtr(s string) *string {
	return &s
}

func floatPtr(f float64) *float64 {
	return &f
}

func norm32(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}

	return math.Sqrt(sum)
}

func TestComputeTasteVector_weightsTiersAndSubtractsDislikes(t *testing.T) {
	// Basis-vector embeddings make the weighted means easy to verify by hand.
	embeddings := map[string][]float32{
		"a": {1, 0, 0, 0}, // rated 5   -> positive weight 1.0
		"b": {0, 1, 0, 0}, // rated 4   -> positive weight 0.7
		"c": {0, 0, 1, 0}, // rated 2   -> negative weight 0.35
	}
	rated := []models.UserBook{
		{BookID: "a", Title: "A", Rating: floatPtr(5)},
		{BookID: "b", Title: "B", Rating: floatPtr(4)},
		{BookID: "c", Title: "C", Rating: floatPtr(2)},
	}

	taste := ComputeTasteVector(rated, embeddings)
	require.NotNil(t, taste)
	require.Len(t, taste, 4)

	// pos mean = (1.0*e_a + 0.7*e_b) / 1.7, neg mean = e_c, result = pos - 0.3*neg.
	expected := []float64{1.0 / 1.7, 0.7 / 1.7, -0.3, 0}
	var expNorm float64
	for _, v := range expected {
		expNorm += v * v
	}
	expNorm = math.Sqrt(expNorm)

	for i, v := range expected {
		assert.InDelta(t, v/expNorm, float64(taste[i]), 1e-6, "component %d", i)
	}

	assert.InDelta(t, 1.0, norm32(taste), 1e-6, "taste vector should be unit length")
}

func TestComputeTasteVector_ratingThreeCountsAsPositiveOnly(t *testing.T) {
	embeddings := map[string][]float32{
		"a": {0, 1, 0},
	}
	rated := []models.UserBook{
		{BookID: "a", Title: "A", Rating: floatPtr(3)},
	}

	taste := ComputeTasteVector(rated, embeddings)
	require.NotNil(t, taste)

	// A single 3-star book defines the whole direction.
	assert.InDelta(t, 0, float64(taste[0]), 1e-6)
	assert.InDelta(t, 1, float64(taste[1]), 1e-6)
	assert.InDelta(t, 0, float64(taste[2]), 1e-6)
}

func TestComputeTasteVector_onlyNegativeRatings_returnsNil(t *testing.T) {
	embeddings := map[string][]float32{
		"a": {1, 0},
		"b": {0, 1},
	}
	rated := []models.UserBook{
		{BookID: "a", Title: "A", Rating: floatPtr(1)},
		{BookID: "b", Title: "B", Rating: floatPtr(2.5)},
	}

	assert.Nil(t, ComputeTasteVector(rated, embeddings))
}

func TestComputeTasteVector_missingEmbeddingsAreSkippedNotZeroed(t *testing.T) {
	embeddings := map[string][]float32{
		"a": {1, 0},
		// "b" has no stored embedding.
	}
	rated := []models.UserBook{
		{BookID: "a", Title: "A", Rating: floatPtr(4)},
		{BookID: "b", Title: "B", Rating: floatPtr(5)},
	}

	taste := ComputeTasteVector(rated, embeddings)
	require.NotNil(t, taste)

	// Only "a" contributes; the result is its direction, not diluted by "b".
	assert.InDelta(t, 1, float64(taste[0]), 1e-6)
	assert.InDelta(t, 0, float64(taste[1]), 1e-6)
}

func TestComputeTasteVector_noRatedBooksWithEmbeddings_returnsNil(t *testing.T) {
	rated := []models.UserBook{
		{BookID: "a", Title: "A", Rating: floatPtr(5)},
	}

	assert.Nil(t, ComputeTasteVector(rated, map[string][]float32{}))
	assert.Nil(t, ComputeTasteVector(nil, map[string][]float32{"a": {1, 0}}))
}
