// Package capability adapts the external inference and embedding services
// behind narrow interfaces. The pipeline treats both as black-box capability
// providers with bounded timeouts; every failure is mapped into the fault
// taxonomy so the orchestrator can apply its retry policy.
package capability

import (
	"context"
	"errors"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/eventforge/eventforge/planner/fault"
	"github.com/eventforge/eventforge/planner/observability"
)

// GenerateRequest is one inference call.
type GenerateRequest struct {
	System      string
	Prompt      string
	Temperature float32
	// JSONMode constrains the response to a single JSON object.
	JSONMode bool
}

// InferenceProvider is the interface for the generative inference capability.
type InferenceProvider interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// =============================================================================
// OPENAI INFERENCE
// =============================================================================

// OpenAIInference implements InferenceProvider over an OpenAI-compatible
// chat completions endpoint.
type OpenAIInference struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAIInference creates an inference provider. An empty baseURL uses the
// default OpenAI endpoint; any OpenAI-compatible server works.
func NewOpenAIInference(apiKey, baseURL, model string, timeout time.Duration) *OpenAIInference {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIInference{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		timeout: timeout,
	}
}

// Generate performs one chat completion with the configured timeout.
func (p *OpenAIInference) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: req.Temperature,
	}
	if req.System != "" {
		chatReq.Messages = append(chatReq.Messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	chatReq.Messages = append(chatReq.Messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})
	if req.JSONMode {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	start := time.Now()
	resp, err := p.client.CreateChatCompletion(callCtx, chatReq)
	durationMS := int(time.Since(start).Milliseconds())

	if err != nil {
		status := "error"
		mapped := classifyCallError(ctx, callCtx, err, "inference", p.timeout)
		var timeoutErr *fault.CapabilityTimeoutError
		if errors.As(mapped, &timeoutErr) {
			status = "timeout"
		}
		observability.RecordCapabilityCall("inference", p.model, status, durationMS)
		return "", mapped
	}

	observability.RecordCapabilityCall("inference", p.model, "success", durationMS)
	if len(resp.Choices) == 0 {
		return "", &fault.CapabilityUnavailableError{
			Capability: "inference",
			Cause:      errors.New("empty completion response"),
		}
	}
	return resp.Choices[0].Message.Content, nil
}

// classifyCallError maps a transport error into the fault taxonomy.
// Caller cancellation passes through untouched so the orchestrator can
// distinguish CANCELLED from a capability timeout.
func classifyCallError(parent, call context.Context, err error, capability string, timeout time.Duration) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	if errors.Is(call.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return &fault.CapabilityTimeoutError{Capability: capability, Timeout: timeout}
	}
	return &fault.CapabilityUnavailableError{Capability: capability, Cause: err}
}
