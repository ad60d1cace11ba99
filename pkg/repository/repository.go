package repository

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/hazel/pkg/model"
)

// Repository defines the interface for memory record persistence.
// Implementations must serialize mutating operations against each
// other and return snapshots from read operations.
type Repository interface {
	// PutMemory saves a record, replacing any existing record with
	// the same ID
	PutMemory(ctx context.Context, memory *model.Memory) error

	// GetMemory retrieves a record by ID
	GetMemory(ctx context.Context, id model.MemoryID) (*model.Memory, error)

	// ListMemories returns all records ordered by CreatedAt ascending,
	// ties broken by ID
	ListMemories(ctx context.Context) ([]*model.Memory, error)

	// DeleteMemory removes a record permanently
	DeleteMemory(ctx context.Context, id model.MemoryID) error

	// SearchSimilarMemories scores every record against the query
	// embedding by cosine similarity and returns up to limit results
	// in descending score order
	SearchSimilarMemories(ctx context.Context, embedding []float32, limit int) ([]*model.ScoredMemory, error)

	// Close releases the underlying storage handle
	Close() error
}

const firestoreScheme = "firestore://"

// New opens the repository backend selected by the storage location:
// "firestore://PROJECT/DATABASE" for Cloud Firestore, ":memory:" for
// a process-local store, any other value for a SQLite database file.
func New(ctx context.Context, dbPath string) (Repository, error) {
	switch {
	case strings.HasPrefix(dbPath, firestoreScheme):
		rest := strings.TrimPrefix(dbPath, firestoreScheme)
		parts := strings.SplitN(rest, "/", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, goerr.New("invalid firestore location, expected firestore://PROJECT/DATABASE",
				goerr.T(model.TagConfiguration), goerr.V("db_path", dbPath))
		}
		return NewFirestore(ctx, parts[0], parts[1])

	case dbPath == ":memory:":
		return NewMemory(), nil

	default:
		return NewSQLite(dbPath)
	}
}
