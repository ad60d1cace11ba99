package adapter

import (
	"context"
	"errors"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/hazel/pkg/model"
	"google.golang.org/genai"
)

// GeminiClient wraps the Gemini embedding API on Vertex AI
type GeminiClient struct {
	client *genai.Client
}

func NewGemini(ctx context.Context, projectID, location string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create genai client",
			goerr.T(model.TagProvider))
	}

	return &GeminiClient{client: client}, nil
}

// Embedding generates an embedding vector for the given text using
// the specified model
func (g *GeminiClient) Embedding(ctx context.Context, embeddingModel, text string) ([]float32, error) {
	resp, err := g.client.Models.EmbedContent(ctx, embeddingModel, genai.Text(text), &genai.EmbedContentConfig{})
	if err != nil {
		return nil, wrapGeminiError(err, embeddingModel)
	}

	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, goerr.New("empty embedding response",
			goerr.T(model.TagProvider), goerr.V("model", embeddingModel))
	}

	return resp.Embeddings[0].Values, nil
}

func wrapGeminiError(err error, embeddingModel string) error {
	opts := []goerr.Option{
		goerr.T(model.TagProvider),
		goerr.V("model", embeddingModel),
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		opts = append(opts, goerr.V("status", apiErr.Code))
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500 {
			opts = append(opts, goerr.T(model.TagProviderTransient))
		}
		return goerr.Wrap(err, "gemini embedding request failed", opts...)
	}

	opts = append(opts, goerr.T(model.TagProviderTransient))
	return goerr.Wrap(err, "gemini embedding request failed", opts...)
}
