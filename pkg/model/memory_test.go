package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/hazel/pkg/model"
)

func TestNewMemoryID(t *testing.T) {
	a := model.NewMemoryID()
	b := model.NewMemoryID()
	gt.NotEqual(t, a, b)
	gt.NotEqual(t, a, model.MemoryID(""))
}

func TestMemoryClone(t *testing.T) {
	now := time.Now().UTC()
	orig := &model.Memory{
		ID:        model.NewMemoryID(),
		Text:      "original",
		Embedding: []float32{1, 2, 3},
		Metadata:  map[string]model.MetaValue{"k": model.MetaStr("v")},
		CreatedAt: now,
		UpdatedAt: now,
	}

	clone := orig.Clone()
	gt.Equal(t, clone, orig)

	// Mutating the clone must not leak back
	clone.Embedding[0] = 99
	clone.Metadata["k"] = model.MetaStr("changed")
	gt.Equal(t, orig.Embedding[0], float32(1))
	gt.Equal(t, orig.Metadata["k"], model.MetaStr("v"))
}
