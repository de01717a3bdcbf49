// Package testutil provides shared test doubles for the pipeline packages.
//
// All mocks here are designed for testing the planner components in
// isolation without requiring external inference or embedding services.
package testutil

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/eventforge/eventforge/planner/capability"
)

// =============================================================================
// MOCK INFERENCE PROVIDER
// =============================================================================

// MockInference implements capability.InferenceProvider for testing.
// Responses are served in script order; after the script is exhausted the
// last entry repeats. A scripted error entry is returned instead of text.
type MockInference struct {
	mu sync.Mutex

	// Script is consumed in order. Each entry is either a response or an
	// error.
	Script []ScriptEntry

	// Calls records every request, in order.
	Calls []capability.GenerateRequest
}

// ScriptEntry is one scripted inference outcome.
type ScriptEntry struct {
	Response string
	Err      error
}

// Respond builds an entry that returns text.
func Respond(text string) ScriptEntry { return ScriptEntry{Response: text} }

// Fail builds an entry that returns an error.
func Fail(err error) ScriptEntry { return ScriptEntry{Err: err} }

// NewMockInference creates a mock with the given script.
func NewMockInference(script ...ScriptEntry) *MockInference {
	return &MockInference{Script: script}
}

// Generate serves the next scripted entry.
func (m *MockInference) Generate(ctx context.Context, req capability.GenerateRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)
	if len(m.Script) == 0 {
		return "", nil
	}
	idx := len(m.Calls) - 1
	if idx >= len(m.Script) {
		idx = len(m.Script) - 1
	}
	entry := m.Script[idx]
	if entry.Err != nil {
		return "", entry.Err
	}
	return entry.Response, nil
}

// CallCount returns how many times Generate was invoked.
func (m *MockInference) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// =============================================================================
// MOCK EMBEDDER
// =============================================================================

// MockEmbedder implements capability.Embedder with deterministic vectors
// derived from token hashes. Texts sharing words get closer vectors, which
// is enough for ranking assertions.
type MockEmbedder struct {
	// Err causes every call to fail.
	Err error

	mu    sync.Mutex
	calls int
}

// EmbedQuery embeds one text deterministically.
func (m *MockEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := m.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedDocuments embeds a batch deterministically.
func (m *MockEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.calls++
	err := m.Err
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = hashVector(text)
	}
	return vectors, nil
}

// CallCount returns how many embed calls were made.
func (m *MockEmbedder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

const hashVectorDim = 64

func hashVector(text string) []float32 {
	vec := make([]float32, hashVectorDim)
	start := 0
	for i := 0; i <= len(text); i++ {
		if i == len(text) || text[i] == ' ' {
			if i > start {
				h := fnv.New32a()
				h.Write([]byte(text[start:i]))
				vec[h.Sum32()%hashVectorDim]++
			}
			start = i + 1
		}
	}
	return vec
}

var _ capability.InferenceProvider = (*MockInference)(nil)
var _ capability.Embedder = (*MockEmbedder)(nil)
