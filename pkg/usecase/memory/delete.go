package memory

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/hazel/pkg/model"
	"github.com/m-mizutani/hazel/pkg/utils/logging"
)

// DeleteMemory removes a record permanently. Deleting an unknown ID
// is an error, not a no-op; the freed ID is never reused because IDs
// are random UUIDs.
func (u *UseCase) DeleteMemory(ctx context.Context, id model.MemoryID) error {
	if err := u.repo.DeleteMemory(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete memory", goerr.V("id", id))
	}

	logging.From(ctx).Debug("memory deleted", "id", id)
	return nil
}
