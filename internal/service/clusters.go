package service

import (
	"sort"

	"github.com/shelfwise/shelfwise/internal/models"
	"github.com/shelfwise/shelfwise/pkg/vectormath"
)

// maxClusters is how many anchor groups a response retains.
const maxClusters = 5

// maxBooksPerRow caps the books displayed per recommendation row.
const maxBooksPerRow = 6

// ClusterByAnchor partitions candidates by the anchor each most resembles
// (maximum cosine similarity; on an exact tie the first anchor in input order
// wins). A candidate whose embedding cannot be resolved goes to the first
// anchor. Every candidate lands in exactly one cluster. Clusters are sorted by
// descending member count, truncated to maxClusters, and labeled with a theme
// derived from their members' genres.
func ClusterByAnchor(
	candidates []models.Candidate,
	anchors []models.Anchor,
	candidateEmbeddings map[string][]float32,
) []models.Cluster {
	if len(anchors) == 0 || len(candidates) == 0 {
		return nil
	}

	grouped := make(map[string][]models.Candidate, len(anchors))
	anchorsByID := make(map[string]models.Anchor, len(anchors))
	// First-assignment order, so equal-sized clusters sort deterministically.
	var order []string

	for _, candidate := range candidates {
		best := anchors[0]

		if emb, ok := candidateEmbeddings[candidate.BookID]; ok {
			bestSim := vectormath.CosineSimilarity(emb, anchors[0].Embedding)

			for _, anchor := range anchors[1:] {
				if sim := vectormath.CosineSimilarity(emb, anchor.Embedding); sim > bestSim {
					bestSim = sim
					best = anchor
				}
			}
		}

		if _, seen := anchorsByID[best.BookID]; !seen {
			anchorsByID[best.BookID] = best
			order = append(order, best.BookID)
		}

		grouped[best.BookID] = append(grouped[best.BookID], candidate)
	}

	sort.SliceStable(order, func(i, j int) bool {
		return len(grouped[order[i]]) > len(grouped[order[j]])
	})

	if len(order) > maxClusters {
		order = order[:maxClusters]
	}

	clusters := make([]models.Cluster, 0, len(order))

	for _, anchorID := range order {
		members := grouped[anchorID]

		genres := make([]*string, 0, len(members))
		for _, m := range members {
			genres = append(genres, m.Genre)
		}

		clusters = append(clusters, models.Cluster{
			Anchor:     anchorsByID[anchorID],
			Candidates: members,
			Theme:      ThematicLabel(genres),
		})
	}

	return clusters
}
