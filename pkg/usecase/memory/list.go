package memory

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/hazel/pkg/model"
)

// ListMemories returns all records in creation order
func (u *UseCase) ListMemories(ctx context.Context) ([]*model.Memory, error) {
	records, err := u.repo.ListMemories(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list memories")
	}
	return records, nil
}

// GetMemory retrieves a single record by ID
func (u *UseCase) GetMemory(ctx context.Context, id model.MemoryID) (*model.Memory, error) {
	rec, err := u.repo.GetMemory(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get memory", goerr.V("id", id))
	}
	return rec, nil
}
