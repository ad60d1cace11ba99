package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/hazel/pkg/model"
)

// memoryRepo keeps all records in process memory. It backs the
// ":memory:" storage location and the unit tests.
type memoryRepo struct {
	mu      sync.RWMutex
	records map[model.MemoryID]*model.Memory
}

// NewMemory creates an in-process repository with no durability
func NewMemory() Repository {
	return &memoryRepo{
		records: make(map[model.MemoryID]*model.Memory),
	}
}

func (r *memoryRepo) PutMemory(ctx context.Context, memory *model.Memory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[memory.ID] = memory.Clone()
	return nil
}

func (r *memoryRepo) GetMemory(ctx context.Context, id model.MemoryID) (*model.Memory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, goerr.Wrap(model.ErrMemoryNotFound, "memory not found", goerr.V("id", id))
	}
	return rec.Clone(), nil
}

func (r *memoryRepo) ListMemories(ctx context.Context) ([]*model.Memory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot(), nil
}

// snapshot returns deep copies ordered by CreatedAt then ID.
// Callers must hold at least a read lock.
func (r *memoryRepo) snapshot() []*model.Memory {
	records := make([]*model.Memory, 0, len(r.records))
	for _, rec := range r.records {
		records = append(records, rec.Clone())
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		}
		return records[i].ID < records[j].ID
	})
	return records
}

func (r *memoryRepo) DeleteMemory(ctx context.Context, id model.MemoryID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[id]; !ok {
		return goerr.Wrap(model.ErrMemoryNotFound, "memory not found", goerr.V("id", id))
	}
	delete(r.records, id)
	return nil
}

func (r *memoryRepo) SearchSimilarMemories(ctx context.Context, embedding []float32, limit int) ([]*model.ScoredMemory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return rankBySimilarity(r.snapshot(), embedding, limit), nil
}

func (r *memoryRepo) Close() error {
	return nil
}
