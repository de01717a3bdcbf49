// Package stage implements the seven pipeline stages. Each stage reads
// earlier fields of the PlanningState and writes exactly one field through
// its write-once setter; the orchestrator owns sequencing and retries.
package stage

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel"

	"github.com/eventforge/eventforge/planner/state"
)

// Logger is the interface for logging.
type Logger interface {
	Info(msg string, fields ...any)
	Debug(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(msg string, fields ...any)
	Bind(fields ...any) Logger
}

// Stage is one pipeline step. Run mutates the state through its write-once
// setter; a returned error leaves the state's output field unwritten so the
// orchestrator can retry.
type Stage interface {
	Name() state.StageName
	Run(ctx context.Context, st *state.PlanningState) error
}

// ToolRunner is the interface the tool stage uses to invoke calculators.
type ToolRunner interface {
	Execute(ctx context.Context, name string, params map[string]any) (map[string]any, error)
}

var tracer = otel.Tracer("eventforge/stage")

// NopLogger discards everything. Used in tests and as the default when no
// logger is wired.
type NopLogger struct{}

func (NopLogger) Info(string, ...any)  {}
func (NopLogger) Debug(string, ...any) {}
func (NopLogger) Warn(string, ...any)  {}
func (NopLogger) Error(string, ...any) {}
func (n NopLogger) Bind(...any) Logger { return n }

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// extractJSONObject parses the first complete JSON object out of generated
// text. Direct parse first, then a brace scan for models that wrap the object
// in prose or code fences.
func extractJSONObject(text string) (map[string]any, error) {
	var result map[string]any
	if err := json.Unmarshal([]byte(text), &result); err == nil {
		return result, nil
	}

	start := -1
	braceCount := 0
	for i, c := range text {
		if c == '{' {
			if start == -1 {
				start = i
			}
			braceCount++
		} else if c == '}' {
			braceCount--
			if braceCount == 0 && start != -1 {
				jsonStr := text[start : i+1]
				if err := json.Unmarshal([]byte(jsonStr), &result); err == nil {
					return result, nil
				}
			}
		}
	}

	return nil, fmt.Errorf("no valid JSON object found in response")
}
