package memory

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/hazel/pkg/config"
	"github.com/m-mizutani/hazel/pkg/model"
	"github.com/m-mizutani/hazel/pkg/utils/logging"
)

// RecallInput contains options for a similarity search. Limit nil
// means "use the configured similarity_top_k"; an explicit
// non-positive limit is rejected.
type RecallInput struct {
	Query string
	Limit *int
}

// Recall embeds the query and returns the most similar records in
// descending score order. An empty collection yields an empty result,
// not an error.
func (u *UseCase) Recall(ctx context.Context, input RecallInput) ([]*model.ScoredMemory, error) {
	if input.Query == "" {
		return nil, goerr.Wrap(model.ErrEmptyQuery, "recall requires a query")
	}

	limit, err := u.resolveLimit(input.Limit)
	if err != nil {
		return nil, err
	}

	embedding, err := u.embedder.Embed(ctx, input.Query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed query")
	}

	results, err := u.repo.SearchSimilarMemories(ctx, embedding, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "similarity search failed")
	}

	logging.From(ctx).Debug("recall", "limit", limit, "hits", len(results))
	return results, nil
}

func (u *UseCase) resolveLimit(limit *int) (int, error) {
	if limit == nil {
		return u.cfg.GetInt(config.KeySimilarityTopK)
	}
	if *limit <= 0 {
		return 0, goerr.Wrap(model.ErrInvalidLimit, "invalid top_k",
			goerr.V("top_k", *limit))
	}
	return *limit, nil
}
