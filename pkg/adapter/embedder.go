package adapter

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/hazel/pkg/config"
	"github.com/m-mizutani/hazel/pkg/model"
)

// Embedder converts text into a fixed-length vector. The vector
// dimensionality is determined by the configured embedding model and
// must stay consistent within one collection.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Gateway dispatches Embed calls to the provider that serves the
// configured embedding model. It performs a single attempt per call;
// retry policy belongs to the caller.
type Gateway struct {
	cfg    *config.Resolver
	openai *OpenAIClient
	gemini *GeminiClient
}

type GatewayOption func(*Gateway)

func WithOpenAI(client *OpenAIClient) GatewayOption {
	return func(g *Gateway) {
		g.openai = client
	}
}

func WithGemini(client *GeminiClient) GatewayOption {
	return func(g *Gateway) {
		g.gemini = client
	}
}

// NewGateway creates an embedding gateway. The model is re-read from
// the resolver on every call so a runtime `config set` takes effect
// immediately.
func NewGateway(cfg *config.Resolver, opts ...GatewayOption) *Gateway {
	g := &Gateway{cfg: cfg}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gateway) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, goerr.Wrap(model.ErrEmptyText, "cannot embed empty text")
	}

	embeddingModel, err := g.cfg.GetString(config.KeyEmbeddingModel)
	if err != nil {
		return nil, err
	}

	if strings.HasPrefix(embeddingModel, "gemini") {
		if g.gemini == nil {
			return nil, goerr.New("gemini backend is not configured",
				goerr.T(model.TagProvider),
				goerr.V("model", embeddingModel))
		}
		return g.gemini.Embedding(ctx, embeddingModel, text)
	}

	if g.openai == nil {
		return nil, goerr.New("openai backend is not configured",
			goerr.T(model.TagProvider),
			goerr.V("model", embeddingModel))
	}
	return g.openai.Embedding(ctx, embeddingModel, text)
}
