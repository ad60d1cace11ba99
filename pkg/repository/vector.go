package repository

import (
	"math"
	"sort"

	"github.com/m-mizutani/hazel/pkg/model"
)

// cosineSimilarity calculates cosine similarity between two vectors
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// rankBySimilarity scores records against the query embedding and
// returns the top results in descending score order. Exact score ties
// rank the more recently created record first, then by ID for a total
// order.
func rankBySimilarity(records []*model.Memory, embedding []float32, limit int) []*model.ScoredMemory {
	scored := make([]*model.ScoredMemory, 0, len(records))
	for _, rec := range records {
		scored = append(scored, &model.ScoredMemory{
			Memory: rec,
			Score:  cosineSimilarity(embedding, rec.Embedding),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if !scored[i].Memory.CreatedAt.Equal(scored[j].Memory.CreatedAt) {
			return scored[i].Memory.CreatedAt.After(scored[j].Memory.CreatedAt)
		}
		return scored[i].Memory.ID < scored[j].Memory.ID
	})

	if limit < len(scored) {
		scored = scored[:limit]
	}
	return scored
}
