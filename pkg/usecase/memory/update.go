package memory

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/hazel/pkg/model"
	"github.com/m-mizutani/hazel/pkg/utils/logging"
)

// UpdateInput describes an edit to an existing record. Nil fields are
// left unchanged; Metadata, when present, replaces the stored mapping.
type UpdateInput struct {
	ID       model.MemoryID
	Text     *string
	Metadata map[string]model.MetaValue
}

// UpdateMemory applies the edit. A text change recomputes the
// embedding before the record is persisted; any change refreshes
// UpdatedAt.
func (u *UseCase) UpdateMemory(ctx context.Context, input UpdateInput) (*model.Memory, error) {
	rec, err := u.repo.GetMemory(ctx, input.ID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load memory for update", goerr.V("id", input.ID))
	}

	changed := false

	if input.Text != nil && *input.Text != rec.Text {
		if *input.Text == "" {
			return nil, goerr.Wrap(model.ErrEmptyText, "update requires non-empty text",
				goerr.V("id", input.ID))
		}

		embedding, err := u.embedder.Embed(ctx, *input.Text)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to embed updated text", goerr.V("id", input.ID))
		}

		rec.Text = *input.Text
		rec.Embedding = embedding
		changed = true
	}

	if input.Metadata != nil {
		rec.Metadata = input.Metadata
		changed = true
	}

	if !changed {
		return rec, nil
	}

	rec.UpdatedAt = time.Now().UTC()
	if err := u.repo.PutMemory(ctx, rec); err != nil {
		return nil, goerr.Wrap(err, "failed to save updated memory", goerr.V("id", input.ID))
	}

	logging.From(ctx).Debug("memory updated", "id", rec.ID)
	return rec, nil
}
