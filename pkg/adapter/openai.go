package adapter

import (
	"context"
	"errors"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/hazel/pkg/model"
	"github.com/sashabaranov/go-openai"
)

// OpenAIClient wraps the OpenAI embeddings API
type OpenAIClient struct {
	client *openai.Client
}

func NewOpenAI(apiKey string) *OpenAIClient {
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
	}
}

// Embedding generates an embedding vector for the given text using
// the specified model. Rate-limit and server errors are tagged as
// transient so callers can apply their own backoff.
func (c *OpenAIClient) Embedding(ctx context.Context, embeddingModel, text string) ([]float32, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(embeddingModel),
		Input: []string{text},
	})
	if err != nil {
		return nil, wrapOpenAIError(err, embeddingModel)
	}

	if len(resp.Data) == 0 {
		return nil, goerr.New("empty embedding response",
			goerr.T(model.TagProvider), goerr.V("model", embeddingModel))
	}

	return resp.Data[0].Embedding, nil
}

func wrapOpenAIError(err error, embeddingModel string) error {
	opts := []goerr.Option{
		goerr.T(model.TagProvider),
		goerr.V("model", embeddingModel),
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		opts = append(opts, goerr.V("status", apiErr.HTTPStatusCode))
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500 {
			opts = append(opts, goerr.T(model.TagProviderTransient))
		}
		return goerr.Wrap(err, "openai embedding request failed", opts...)
	}

	// Connection-level failures are retryable
	opts = append(opts, goerr.T(model.TagProviderTransient))
	return goerr.Wrap(err, "openai embedding request failed", opts...)
}
