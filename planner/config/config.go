// Package config provides the explicit configuration record injected into
// the pipeline at construction - no implicit globals, no os.Getenv in core
// packages. Environment parsing happens at the CLI boundary.
package config

import (
	"fmt"
	"math"
	"time"
)

// Default values. Every one of these can be overridden from a config file.
const (
	DefaultRetrievalK       = 3
	DefaultRetryBound       = 1
	DefaultInferenceTimeout = 60 // seconds
	DefaultEmbeddingTimeout = 30 // seconds
	DefaultUnitCost         = 12.0
	DefaultGuestCount       = 1
	DefaultChatModel        = "gpt-4o-mini"
	DefaultEmbedModel       = "text-embedding-3-small"
)

// Config holds the recognized pipeline options.
type Config struct {
	// Retrieval breadth: number of templates returned by similarity search.
	RetrievalK int `yaml:"retrieval_k" json:"retrieval_k"`

	// Per-stage retry bound for retryable capability failures.
	RetryBound int `yaml:"retry_bound" json:"retry_bound"`

	// Timeouts (seconds) for the blocking capability calls.
	InferenceTimeoutSeconds int `yaml:"inference_timeout_seconds" json:"inference_timeout_seconds"`
	EmbeddingTimeoutSeconds int `yaml:"embedding_timeout_seconds" json:"embedding_timeout_seconds"`

	// Budget split used by the allocator. Values must sum to 1.
	CategoryWeights map[string]float64 `yaml:"category_weights" json:"category_weights"`

	// Substitution defaults for the deterministic tool layer.
	DefaultUnitCost   float64 `yaml:"default_unit_cost" json:"default_unit_cost"`
	DefaultGuestCount int     `yaml:"default_guest_count" json:"default_guest_count"`

	// Default event duration per intent, in minutes.
	EventDurationMinutes map[string]int `yaml:"event_duration_minutes" json:"event_duration_minutes"`

	// Model names passed to the capability adapters.
	ChatModel  string `yaml:"chat_model" json:"chat_model"`
	EmbedModel string `yaml:"embed_model" json:"embed_model"`

	// Logging
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		RetrievalK:              DefaultRetrievalK,
		RetryBound:              DefaultRetryBound,
		InferenceTimeoutSeconds: DefaultInferenceTimeout,
		EmbeddingTimeoutSeconds: DefaultEmbeddingTimeout,
		CategoryWeights: map[string]float64{
			"venue": 0.30,
			"food":  0.40,
			"decor": 0.15,
			"misc":  0.15,
		},
		DefaultUnitCost:   DefaultUnitCost,
		DefaultGuestCount: DefaultGuestCount,
		EventDurationMinutes: map[string]int{
			"birthday":    240,
			"corporate":   300,
			"wedding":     360,
			"baby_shower": 180,
			"farewell":    180,
			"anniversary": 240,
			"generic":     240,
		},
		ChatModel:  DefaultChatModel,
		EmbedModel: DefaultEmbedModel,
		LogLevel:   "INFO",
	}
}

// InferenceTimeout returns the inference deadline as a duration.
func (c *Config) InferenceTimeout() time.Duration {
	return time.Duration(c.InferenceTimeoutSeconds) * time.Second
}

// EmbeddingTimeout returns the embedding deadline as a duration.
func (c *Config) EmbeddingTimeout() time.Duration {
	return time.Duration(c.EmbeddingTimeoutSeconds) * time.Second
}

// DurationFor returns the default event duration for an intent label,
// falling back to the generic duration.
func (c *Config) DurationFor(intent string) int {
	if minutes, ok := c.EventDurationMinutes[intent]; ok && minutes > 0 {
		return minutes
	}
	if minutes, ok := c.EventDurationMinutes["generic"]; ok && minutes > 0 {
		return minutes
	}
	return 240
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.RetrievalK <= 0 {
		return fmt.Errorf("retrieval_k must be positive, got %d", c.RetrievalK)
	}
	if c.RetryBound < 0 {
		return fmt.Errorf("retry_bound must be non-negative, got %d", c.RetryBound)
	}
	if c.InferenceTimeoutSeconds <= 0 {
		return fmt.Errorf("inference_timeout_seconds must be positive, got %d", c.InferenceTimeoutSeconds)
	}
	if c.EmbeddingTimeoutSeconds <= 0 {
		return fmt.Errorf("embedding_timeout_seconds must be positive, got %d", c.EmbeddingTimeoutSeconds)
	}
	if len(c.CategoryWeights) == 0 {
		return fmt.Errorf("category_weights must not be empty")
	}
	total := 0.0
	for name, weight := range c.CategoryWeights {
		if weight <= 0 {
			return fmt.Errorf("category weight for %q must be positive, got %v", name, weight)
		}
		total += weight
	}
	if math.Abs(total-1.0) > 1e-9 {
		return fmt.Errorf("category weights must sum to 1, got %v", total)
	}
	if c.DefaultUnitCost <= 0 {
		return fmt.Errorf("default_unit_cost must be positive, got %v", c.DefaultUnitCost)
	}
	if c.DefaultGuestCount <= 0 {
		return fmt.Errorf("default_guest_count must be positive, got %d", c.DefaultGuestCount)
	}
	return nil
}
