package memory

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/hazel/pkg/model"
	"github.com/m-mizutani/hazel/pkg/utils/logging"
)

// Remember stores a new memory record. The embedding is computed from
// the text before anything is persisted, so a stored record is always
// consistent.
func (u *UseCase) Remember(ctx context.Context, text string, metadata map[string]model.MetaValue) (*model.Memory, error) {
	if text == "" {
		return nil, goerr.Wrap(model.ErrEmptyText, "remember requires text")
	}

	embedding, err := u.embedder.Embed(ctx, text)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed memory text")
	}

	now := time.Now().UTC()
	rec := &model.Memory{
		ID:        model.NewMemoryID(),
		Text:      text,
		Embedding: embedding,
		Metadata:  metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := u.repo.PutMemory(ctx, rec); err != nil {
		return nil, goerr.Wrap(err, "failed to save memory", goerr.V("id", rec.ID))
	}

	logging.From(ctx).Debug("memory stored", "id", rec.ID, "chars", len(text))
	return rec, nil
}
