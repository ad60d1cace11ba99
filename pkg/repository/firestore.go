package repository

import (
	"context"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/hazel/pkg/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	memoryCollection  = "memories"
	distanceFieldName = "vector_distance"
)

// firestoreRepo implements Repository using Cloud Firestore with its
// native cosine vector search
type firestoreRepo struct {
	client *firestore.Client
	mu     sync.Mutex
}

// memoryDoc is the Firestore document layout for a memory record
type memoryDoc struct {
	ID        string             `firestore:"id"`
	Text      string             `firestore:"text"`
	Embedding firestore.Vector32 `firestore:"embedding"`
	Metadata  map[string]any     `firestore:"metadata,omitempty"`
	CreatedAt time.Time          `firestore:"created_at"`
	UpdatedAt time.Time          `firestore:"updated_at"`
}

// NewFirestore creates a Firestore-backed repository
func NewFirestore(ctx context.Context, projectID, databaseID string) (Repository, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.T(model.TagStorage),
			goerr.V("project", projectID), goerr.V("database", databaseID))
	}

	return &firestoreRepo{client: client}, nil
}

func (r *firestoreRepo) PutMemory(ctx context.Context, memory *model.Memory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc := memoryDoc{
		ID:        string(memory.ID),
		Text:      memory.Text,
		Embedding: firestore.Vector32(memory.Embedding),
		Metadata:  model.MetaToMap(memory.Metadata),
		CreatedAt: memory.CreatedAt,
		UpdatedAt: memory.UpdatedAt,
	}

	if _, err := r.client.Collection(memoryCollection).Doc(doc.ID).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to save memory",
			goerr.T(model.TagStorage), goerr.V("id", memory.ID))
	}
	return nil
}

func (r *firestoreRepo) GetMemory(ctx context.Context, id model.MemoryID) (*model.Memory, error) {
	snap, err := r.client.Collection(memoryCollection).Doc(string(id)).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, goerr.Wrap(model.ErrMemoryNotFound, "memory not found", goerr.V("id", id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load memory",
			goerr.T(model.TagStorage), goerr.V("id", id))
	}

	return docToMemory(snap.Data(), id)
}

func (r *firestoreRepo) ListMemories(ctx context.Context) ([]*model.Memory, error) {
	iter := r.client.Collection(memoryCollection).
		OrderBy("created_at", firestore.Asc).
		OrderBy("id", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var records []*model.Memory
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list memories", goerr.T(model.TagStorage))
		}

		rec, err := docToMemory(snap.Data(), model.MemoryID(snap.Ref.ID))
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r *firestoreRepo) DeleteMemory(ctx context.Context, id model.MemoryID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ref := r.client.Collection(memoryCollection).Doc(string(id))

	// Firestore Delete succeeds for missing documents, so check first
	if _, err := ref.Get(ctx); status.Code(err) == codes.NotFound {
		return goerr.Wrap(model.ErrMemoryNotFound, "memory not found", goerr.V("id", id))
	} else if err != nil {
		return goerr.Wrap(err, "failed to load memory",
			goerr.T(model.TagStorage), goerr.V("id", id))
	}

	if _, err := ref.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete memory",
			goerr.T(model.TagStorage), goerr.V("id", id))
	}
	return nil
}

func (r *firestoreRepo) SearchSimilarMemories(ctx context.Context, embedding []float32, limit int) ([]*model.ScoredMemory, error) {
	vq := r.client.Collection(memoryCollection).FindNearest(
		"embedding",
		firestore.Vector32(embedding),
		limit,
		firestore.DistanceMeasureCosine,
		&firestore.FindNearestOptions{DistanceResultField: distanceFieldName},
	)

	snaps, err := vq.Documents(ctx).GetAll()
	if err != nil {
		return nil, goerr.Wrap(err, "vector search failed", goerr.T(model.TagStorage))
	}

	results := make([]*model.ScoredMemory, 0, len(snaps))
	for _, snap := range snaps {
		data := snap.Data()
		rec, err := docToMemory(data, model.MemoryID(snap.Ref.ID))
		if err != nil {
			return nil, err
		}

		// Firestore reports cosine distance; convert to similarity
		score := 0.0
		if d, ok := data[distanceFieldName].(float64); ok {
			score = 1 - d
		}
		results = append(results, &model.ScoredMemory{Memory: rec, Score: score})
	}
	return results, nil
}

func (r *firestoreRepo) Close() error {
	return r.client.Close()
}

func docToMemory(data map[string]any, id model.MemoryID) (*model.Memory, error) {
	rec := &model.Memory{ID: id}

	if s, ok := data["text"].(string); ok {
		rec.Text = s
	}
	if t, ok := data["created_at"].(time.Time); ok {
		rec.CreatedAt = t
	}
	if t, ok := data["updated_at"].(time.Time); ok {
		rec.UpdatedAt = t
	}

	switch vec := data["embedding"].(type) {
	case []float32:
		rec.Embedding = vec
	case firestore.Vector32:
		rec.Embedding = []float32(vec)
	case []any:
		rec.Embedding = make([]float32, len(vec))
		for i, v := range vec {
			if f, ok := v.(float64); ok {
				rec.Embedding[i] = float32(f)
			}
		}
	}

	if raw, ok := data["metadata"].(map[string]any); ok {
		meta, err := model.MetaFromMap(raw)
		if err != nil {
			return nil, goerr.Wrap(err, "corrupted metadata",
				goerr.T(model.TagStorage), goerr.V("id", id))
		}
		rec.Metadata = meta
	}

	return rec, nil
}
