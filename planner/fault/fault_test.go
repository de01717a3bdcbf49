package fault

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind Kind
	}{
		{"validation", NewValidationError("budget_ceiling", "negative"), KindValidation},
		{"timeout", &CapabilityTimeoutError{Capability: "inference", Timeout: time.Minute}, KindCapabilityTimeout},
		{"unavailable", &CapabilityUnavailableError{Capability: "embedding"}, KindCapabilityUnavailable},
		{"schema", NewSchemaMismatchError("draft_plan", "menu_items must be an array"), KindSchemaMismatch},
		{"unknown errors default to unavailable", errors.New("boom"), KindCapabilityUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.kind, KindOf(tc.err))
		})
	}
}

func TestKindOfWrapped(t *testing.T) {
	inner := NewValidationError("guest_count", "out of range")
	wrapped := fmt.Errorf("extraction: %w", inner)
	assert.Equal(t, KindValidation, KindOf(wrapped))
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(&CapabilityTimeoutError{Capability: "inference"}))
	assert.True(t, Retryable(&CapabilityUnavailableError{Capability: "embedding"}))
	assert.False(t, Retryable(NewValidationError("f", "m")))
	assert.False(t, Retryable(NewSchemaMismatchError("s")))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &CapabilityUnavailableError{Capability: "inference", Cause: cause}
	assert.ErrorIs(t, err, cause)
}

func TestErrorMessages(t *testing.T) {
	assert.Contains(t, NewValidationError("budget_ceiling", "negative").Error(), "budget_ceiling")
	assert.Contains(t, (&CapabilityTimeoutError{Capability: "inference", Timeout: 30 * time.Second}).Error(), "30s")
	assert.Contains(t, NewSchemaMismatchError("draft_plan", "bad field").Error(), "bad field")
}
