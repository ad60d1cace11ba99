package adapter

import (
	"context"
	"hash/fnv"
	"math"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/hazel/pkg/model"
)

// StaticEmbedder produces deterministic bag-of-words embeddings
// without any network call. Each token is hashed into a bucket, so
// texts sharing words end up with similar vectors. Used by tests and
// offline runs.
type StaticEmbedder struct {
	dimensions int
}

func NewStaticEmbedder(dimensions int) *StaticEmbedder {
	if dimensions <= 0 {
		dimensions = 64
	}
	return &StaticEmbedder{dimensions: dimensions}
}

func (e *StaticEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, goerr.Wrap(model.ErrEmptyText, "cannot embed empty text")
	}

	vec := make([]float32, e.dimensions)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,!?\"'")
		if token == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(token))
		vec[int(h.Sum32())%e.dimensions]++
	}

	return normalize(vec), nil
}

func normalize(vec []float32) []float32 {
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}

	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec
}
