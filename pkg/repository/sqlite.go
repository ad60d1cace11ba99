package repository

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/hazel/pkg/model"
	_ "modernc.org/sqlite"
)

// sqliteRepo implements Repository using a SQLite database file.
// Embeddings are stored as little-endian float32 blobs and similarity
// search is a full scan scored in Go, which is fine at personal-note
// scale.
type sqliteRepo struct {
	db *sql.DB

	// serializes mutations so concurrent writers never interleave
	mu sync.Mutex
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS memories (
	id         TEXT PRIMARY KEY,
	text       TEXT NOT NULL,
	embedding  BLOB NOT NULL,
	metadata   TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_memories_created ON memories(created_at);
`

// sqliteTimeFmt is RFC 3339 with fixed-width nanoseconds. RFC3339Nano
// trims trailing zeros, which breaks the lexicographic ordering that
// ORDER BY created_at relies on.
const sqliteTimeFmt = "2006-01-02T15:04:05.000000000Z07:00"

// NewSQLite opens or creates a SQLite database at the given path
func NewSQLite(dbPath string) (Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, goerr.Wrap(err, "failed to create database directory",
				goerr.T(model.TagStorage), goerr.V("dir", dir))
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open database",
			goerr.T(model.TagStorage), goerr.V("path", dbPath))
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, goerr.Wrap(err, "failed to migrate database",
			goerr.T(model.TagStorage), goerr.V("path", dbPath))
	}

	return &sqliteRepo{db: db}, nil
}

func (r *sqliteRepo) PutMemory(ctx context.Context, memory *model.Memory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	metaJSON, err := encodeMetadata(memory.Metadata)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO memories (id, text, embedding, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			text = excluded.text,
			embedding = excluded.embedding,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at`,
		string(memory.ID),
		memory.Text,
		encodeEmbedding(memory.Embedding),
		metaJSON,
		memory.CreatedAt.UTC().Format(sqliteTimeFmt),
		memory.UpdatedAt.UTC().Format(sqliteTimeFmt),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to save memory",
			goerr.T(model.TagStorage), goerr.V("id", memory.ID))
	}
	return nil
}

func (r *sqliteRepo) GetMemory(ctx context.Context, id model.MemoryID) (*model.Memory, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, text, embedding, metadata, created_at, updated_at
		FROM memories WHERE id = ?`, string(id))

	rec, err := scanMemory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(model.ErrMemoryNotFound, "memory not found", goerr.V("id", id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load memory",
			goerr.T(model.TagStorage), goerr.V("id", id))
	}
	return rec, nil
}

func (r *sqliteRepo) ListMemories(ctx context.Context) ([]*model.Memory, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, text, embedding, metadata, created_at, updated_at
		FROM memories ORDER BY created_at, id`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list memories", goerr.T(model.TagStorage))
	}
	defer rows.Close()

	var records []*model.Memory
	for rows.Next() {
		rec, err := scanMemory(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan memory", goerr.T(model.TagStorage))
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to list memories", goerr.T(model.TagStorage))
	}
	return records, nil
}

func (r *sqliteRepo) DeleteMemory(ctx context.Context, id model.MemoryID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.ExecContext(ctx, `DELETE FROM memories WHERE id = ?`, string(id))
	if err != nil {
		return goerr.Wrap(err, "failed to delete memory",
			goerr.T(model.TagStorage), goerr.V("id", id))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return goerr.Wrap(err, "failed to delete memory",
			goerr.T(model.TagStorage), goerr.V("id", id))
	}
	if affected == 0 {
		return goerr.Wrap(model.ErrMemoryNotFound, "memory not found", goerr.V("id", id))
	}
	return nil
}

func (r *sqliteRepo) SearchSimilarMemories(ctx context.Context, embedding []float32, limit int) ([]*model.ScoredMemory, error) {
	records, err := r.ListMemories(ctx)
	if err != nil {
		return nil, err
	}
	return rankBySimilarity(records, embedding, limit), nil
}

func (r *sqliteRepo) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMemory(row rowScanner) (*model.Memory, error) {
	var (
		id, text, createdAt, updatedAt string
		metaJSON                       sql.NullString
		blob                           []byte
	)
	if err := row.Scan(&id, &text, &blob, &metaJSON, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	rec := &model.Memory{
		ID:        model.MemoryID(id),
		Text:      text,
		Embedding: decodeEmbedding(blob),
	}

	var err error
	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, goerr.Wrap(err, "corrupted created_at", goerr.V("id", id))
	}
	if rec.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, goerr.Wrap(err, "corrupted updated_at", goerr.V("id", id))
	}

	if metaJSON.Valid && metaJSON.String != "" {
		if err := json.Unmarshal([]byte(metaJSON.String), &rec.Metadata); err != nil {
			return nil, goerr.Wrap(err, "corrupted metadata", goerr.V("id", id))
		}
	}

	return rec, nil
}

func encodeMetadata(meta map[string]model.MetaValue) (sql.NullString, error) {
	if len(meta) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return sql.NullString{}, goerr.Wrap(err, "failed to encode metadata",
			goerr.T(model.TagStorage))
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func encodeEmbedding(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeEmbedding(buf []byte) []float32 {
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vec
}
