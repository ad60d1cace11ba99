package model

import (
	"time"

	"github.com/google/uuid"
)

type MemoryID string

// NewMemoryID generates a new unique MemoryID
func NewMemoryID() MemoryID {
	return MemoryID(uuid.New().String())
}

// Memory represents one stored note with its embedding and annotations.
// Embedding is always derived from the current Text; any edit to Text
// recomputes it before the record is persisted.
type Memory struct {
	ID        MemoryID             `json:"id"`
	Text      string               `json:"text"`
	Embedding []float32            `json:"-"`
	Metadata  map[string]MetaValue `json:"metadata,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// Clone returns a deep copy so repository snapshots cannot be mutated
// through a returned record.
func (m *Memory) Clone() *Memory {
	c := *m
	if m.Embedding != nil {
		c.Embedding = make([]float32, len(m.Embedding))
		copy(c.Embedding, m.Embedding)
	}
	if m.Metadata != nil {
		c.Metadata = make(map[string]MetaValue, len(m.Metadata))
		for k, v := range m.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

// ScoredMemory is a search hit with its cosine similarity score
type ScoredMemory struct {
	Memory *Memory `json:"memory"`
	Score  float64 `json:"score"`
}
