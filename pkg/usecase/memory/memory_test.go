package memory_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/hazel/pkg/adapter"
	"github.com/m-mizutani/hazel/pkg/config"
	"github.com/m-mizutani/hazel/pkg/model"
	"github.com/m-mizutani/hazel/pkg/repository"
	"github.com/m-mizutani/hazel/pkg/usecase/memory"
)

func newTestUseCase(t *testing.T) *memory.UseCase {
	return memory.New(repository.NewMemory(), adapter.NewStaticEmbedder(64), config.New())
}

func ptr[T any](v T) *T { return &v }

func TestRememberRoundTrip(t *testing.T) {
	ctx := context.Background()
	uc := newTestUseCase(t)

	meta := map[string]model.MetaValue{"source": model.MetaStr("test")}
	rec, err := uc.Remember(ctx, "the sky is blue", meta)
	gt.NoError(t, err)
	gt.V(t, rec).NotNil()
	gt.NotEqual(t, rec.ID, "")
	gt.True(t, len(rec.Embedding) > 0)
	gt.True(t, rec.CreatedAt.Equal(rec.UpdatedAt))

	got, err := uc.GetMemory(ctx, rec.ID)
	gt.NoError(t, err)
	gt.Equal(t, got.Text, "the sky is blue")
	gt.Equal(t, got.Metadata, meta)
}

func TestRememberEmptyText(t *testing.T) {
	ctx := context.Background()
	uc := newTestUseCase(t)

	_, err := uc.Remember(ctx, "", nil)
	gt.Error(t, err)
	gt.Equal(t, model.ErrorKind(err), "validation")
}

func TestRecallRanking(t *testing.T) {
	ctx := context.Background()
	uc := newTestUseCase(t)

	_, err := uc.Remember(ctx, "the sky is blue today", nil)
	gt.NoError(t, err)
	_, err = uc.Remember(ctx, "buy milk and eggs at the store", nil)
	gt.NoError(t, err)

	results, err := uc.Recall(ctx, memory.RecallInput{Query: "what color is the sky"})
	gt.NoError(t, err)
	gt.True(t, len(results) > 0)
	gt.Equal(t, results[0].Memory.Text, "the sky is blue today")
}

func TestRecallDefaultLimit(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	cfg := config.New()
	uc := memory.New(repo, adapter.NewStaticEmbedder(64), cfg)

	for _, text := range []string{
		"note one about cats",
		"note two about cats",
		"note three about cats",
		"note four about cats",
		"note five about cats",
	} {
		_, err := uc.Remember(ctx, text, nil)
		gt.NoError(t, err)
	}

	// similarity_top_k defaults to 3
	results, err := uc.Recall(ctx, memory.RecallInput{Query: "cats"})
	gt.NoError(t, err)
	gt.A(t, results).Length(3)

	// runtime override raises the default
	_, err = cfg.Set(config.KeySimilarityTopK, 5)
	gt.NoError(t, err)
	results, err = uc.Recall(ctx, memory.RecallInput{Query: "cats"})
	gt.NoError(t, err)
	gt.A(t, results).Length(5)

	// explicit limit wins over the configured default
	results, err = uc.Recall(ctx, memory.RecallInput{Query: "cats", Limit: ptr(2)})
	gt.NoError(t, err)
	gt.A(t, results).Length(2)
}

func TestRecallInvalidInput(t *testing.T) {
	ctx := context.Background()
	uc := newTestUseCase(t)

	_, err := uc.Recall(ctx, memory.RecallInput{Query: ""})
	gt.Error(t, err)
	gt.Equal(t, model.ErrorKind(err), "validation")

	_, err = uc.Recall(ctx, memory.RecallInput{Query: "anything", Limit: ptr(0)})
	gt.Error(t, err)
	gt.Equal(t, model.ErrorKind(err), "validation")

	_, err = uc.Recall(ctx, memory.RecallInput{Query: "anything", Limit: ptr(-2)})
	gt.Error(t, err)
	gt.Equal(t, model.ErrorKind(err), "validation")
}

func TestRecallEmptyStore(t *testing.T) {
	ctx := context.Background()
	uc := newTestUseCase(t)

	results, err := uc.Recall(ctx, memory.RecallInput{Query: "anything"})
	gt.NoError(t, err)
	gt.A(t, results).Length(0)
}

func TestUpdateTextRecomputesEmbedding(t *testing.T) {
	ctx := context.Background()
	uc := newTestUseCase(t)

	rec, err := uc.Remember(ctx, "the sky is blue", nil)
	gt.NoError(t, err)

	updated, err := uc.UpdateMemory(ctx, memory.UpdateInput{
		ID:   rec.ID,
		Text: ptr("groceries for the week"),
	})
	gt.NoError(t, err)
	gt.Equal(t, updated.ID, rec.ID)
	gt.Equal(t, updated.Text, "groceries for the week")
	gt.True(t, updated.CreatedAt.Equal(rec.CreatedAt))
	gt.NotEqual(t, updated.Embedding, rec.Embedding)

	// recall now matches the new text, not the old
	results, err := uc.Recall(ctx, memory.RecallInput{Query: "groceries", Limit: ptr(1)})
	gt.NoError(t, err)
	gt.A(t, results).Length(1)
	gt.Equal(t, results[0].Memory.ID, rec.ID)
}

func TestUpdateMetadataOnly(t *testing.T) {
	ctx := context.Background()
	uc := newTestUseCase(t)

	rec, err := uc.Remember(ctx, "keep this text", nil)
	gt.NoError(t, err)

	updated, err := uc.UpdateMemory(ctx, memory.UpdateInput{
		ID:       rec.ID,
		Metadata: map[string]model.MetaValue{"pinned": model.MetaBoolV(true)},
	})
	gt.NoError(t, err)
	gt.Equal(t, updated.Text, rec.Text)
	gt.Equal(t, updated.Embedding, rec.Embedding)
	gt.Equal(t, updated.Metadata["pinned"], model.MetaBoolV(true))
}

func TestUpdateNoChange(t *testing.T) {
	ctx := context.Background()
	uc := newTestUseCase(t)

	rec, err := uc.Remember(ctx, "unchanged", nil)
	gt.NoError(t, err)

	updated, err := uc.UpdateMemory(ctx, memory.UpdateInput{
		ID:   rec.ID,
		Text: ptr("unchanged"),
	})
	gt.NoError(t, err)
	gt.True(t, updated.UpdatedAt.Equal(rec.UpdatedAt))
}

func TestUpdateValidation(t *testing.T) {
	ctx := context.Background()
	uc := newTestUseCase(t)

	rec, err := uc.Remember(ctx, "some text", nil)
	gt.NoError(t, err)

	_, err = uc.UpdateMemory(ctx, memory.UpdateInput{ID: rec.ID, Text: ptr("")})
	gt.Error(t, err)
	gt.Equal(t, model.ErrorKind(err), "validation")

	_, err = uc.UpdateMemory(ctx, memory.UpdateInput{
		ID:   model.NewMemoryID(),
		Text: ptr("whatever"),
	})
	gt.Error(t, err)
	gt.Equal(t, model.ErrorKind(err), "not_found")
}

func TestDeleteThenList(t *testing.T) {
	ctx := context.Background()
	uc := newTestUseCase(t)

	a, err := uc.Remember(ctx, "memory a", nil)
	gt.NoError(t, err)
	b, err := uc.Remember(ctx, "memory b", nil)
	gt.NoError(t, err)
	c, err := uc.Remember(ctx, "memory c", nil)
	gt.NoError(t, err)

	gt.NoError(t, uc.DeleteMemory(ctx, b.ID))

	records, err := uc.ListMemories(ctx)
	gt.NoError(t, err)
	gt.A(t, records).Length(2)
	gt.Equal(t, records[0].ID, a.ID)
	gt.Equal(t, records[1].ID, c.ID)

	err = uc.DeleteMemory(ctx, b.ID)
	gt.Error(t, err)
	gt.Equal(t, model.ErrorKind(err), "not_found")
}

func TestConfigProxies(t *testing.T) {
	uc := newTestUseCase(t)

	v, err := uc.GetConfig(config.KeyEmbeddingModel)
	gt.NoError(t, err)
	gt.Equal(t, v, "text-embedding-3-small")

	prev, err := uc.SetConfig(config.KeySimilarityTopK, 10)
	gt.NoError(t, err)
	gt.Equal(t, prev, 3)

	all := uc.AllConfig()
	gt.Equal(t, all[config.KeySimilarityTopK], 10)

	_, err = uc.GetConfig("bogus")
	gt.Error(t, err)
	gt.Equal(t, model.ErrorKind(err), "configuration")
}
