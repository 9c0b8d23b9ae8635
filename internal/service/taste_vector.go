// Package service implements the recommendation core: embedding lifecycle, taste
// vector construction, anchor clustering, theme labeling, and the fallback chain.
package service

import (
	"github.com/shelfwise/shelfwise/internal/models"
	"github.com/shelfwise/shelfwise/pkg/vectormath"
)

// Rating-to-weight tiers. A rating appears in exactly one tier; 3 is the boundary
// and contributes to the positive side only.
var positiveWeights = map[float64]float64{
	5:   1.0,
	4.5: 0.85,
	4:   0.7,
	3.5: 0.4,
	3:   0.2,
}

var negativeWeights = map[float64]float64{
	1:   0.6,
	1.5: 0.5,
	2:   0.35,
	2.5: 0.2,
}

// negativeAlpha bounds how much the disliked direction subtracts from the liked
// direction. Averaging each side first keeps a few strong dislikes from
// dominating a larger set of likes.
const negativeAlpha = 0.3

// positiveRatingFloor is the minimum rating that counts as positive signal
// (and qualifies a book as a clustering anchor).
const positiveRatingFloor = 3

// ComputeTasteVector combines a user's rated books into one unit-normalized
// direction vector. Rated books without an entry in embeddingsByBookID are
// skipped entirely, not zero-weighted. Returns nil when there is no positive
// signal: negative-only ratings do not define what the user wants.
func ComputeTasteVector(ratedBooks []models.UserBook, embeddingsByBookID map[string][]float32) []float32 {
	var (
		posSum, negSum             []float64
		posWeightSum, negWeightSum float64
	)

	for _, book := range ratedBooks {
		if book.Rating == nil {
			continue
		}

		embedding, ok := embeddingsByBookID[book.BookID]
		if !ok {
			continue
		}

		if posSum == nil {
			posSum = make([]float64, len(embedding))
			negSum = make([]float64, len(embedding))
		}

		rating := *book.Rating

		if w, ok := positiveWeights[rating]; ok {
			posWeightSum += w
			for i, v := range embedding {
				posSum[i] += w * float64(v)
			}
		}

		if w, ok := negativeWeights[rating]; ok {
			negWeightSum += w
			for i, v := range embedding {
				negSum[i] += w * float64(v)
			}
		}
	}

	if posWeightSum == 0 {
		return nil
	}

	// Weighted means, then pos - alpha * neg.
	result := make([]float32, len(posSum))

	for i := range posSum {
		v := posSum[i] / posWeightSum
		if negWeightSum > 0 {
			v -= negativeAlpha * (negSum[i] / negWeightSum)
		}

		result[i] = float32(v)
	}

	vectormath.NormalizeL2(result)

	return result
}
