package capability

import (
	"context"
	"errors"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/eventforge/eventforge/planner/fault"
	"github.com/eventforge/eventforge/planner/observability"
)

// Embedder is the interface for the embedding capability: text to vector.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// OpenAIEmbedder implements Embedder over an OpenAI-compatible embeddings
// endpoint.
type OpenAIEmbedder struct {
	client  *openai.Client
	model   openai.EmbeddingModel
	timeout time.Duration
}

// NewOpenAIEmbedder creates an embedding provider.
func NewOpenAIEmbedder(apiKey, baseURL, model string, timeout time.Duration) *OpenAIEmbedder {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIEmbedder{
		client:  openai.NewClientWithConfig(cfg),
		model:   openai.EmbeddingModel(model),
		timeout: timeout,
	}
}

// EmbedQuery embeds a single query text.
func (e *OpenAIEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedDocuments embeds a batch of document texts, preserving order.
func (e *OpenAIEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	return e.embed(ctx, texts)
}

func (e *OpenAIEmbedder) embed(ctx context.Context, texts []string) ([][]float32, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	resp, err := e.client.CreateEmbeddings(callCtx, openai.EmbeddingRequest{
		Input: texts,
		Model: e.model,
	})
	durationMS := int(time.Since(start).Milliseconds())

	if err != nil {
		status := "error"
		mapped := classifyCallError(ctx, callCtx, err, "embedding", e.timeout)
		var timeoutErr *fault.CapabilityTimeoutError
		if errors.As(mapped, &timeoutErr) {
			status = "timeout"
		}
		observability.RecordCapabilityCall("embedding", string(e.model), status, durationMS)
		return nil, mapped
	}

	observability.RecordCapabilityCall("embedding", string(e.model), "success", durationMS)
	if len(resp.Data) != len(texts) {
		return nil, &fault.CapabilityUnavailableError{
			Capability: "embedding",
			Cause:      errors.New("embedding response count does not match input count"),
		}
	}

	vectors := make([][]float32, len(resp.Data))
	for i, item := range resp.Data {
		vectors[i] = item.Embedding
	}
	return vectors, nil
}
