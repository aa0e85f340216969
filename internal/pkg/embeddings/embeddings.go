// Package embeddings converts text into fixed-length vectors via a remote
// embedding model.
package embeddings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openaiclient "github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"
)

// ErrEmbedding wraps any remote embedding failure. Callers decide retry
// policy: ingestion treats it as fatal for the batch, retrieval for the
// query.
var ErrEmbedding = errors.New("embedding request failed")

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// OpenAI implements Embedder over the OpenAI embeddings API.
type OpenAI struct {
	client openaiclient.Client
	model  string
}

// NewOpenAI builds an embedder with an explicit API key and model; no
// ambient credentials are read.
func NewOpenAI(apiKey, model string) *OpenAI {
	opts := []openaioption.RequestOption{
		openaioption.WithAPIKey(apiKey),
		openaioption.WithMaxRetries(0),
	}
	return &OpenAI{
		client: openaiclient.NewClient(opts...),
		model:  model,
	}
}

// Embed returns the embedding vector for text.
func (o *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty input", ErrEmbedding)
	}

	resp, err := o.client.Embeddings.New(ctx, openaiclient.EmbeddingNewParams{
		Input: openaiclient.EmbeddingNewParamsInputUnion{
			OfString: openaiclient.String(text),
		},
		Model: openaiclient.EmbeddingModel(o.model),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrEmbedding)
	}

	vec := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}
