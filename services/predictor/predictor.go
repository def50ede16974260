package predictor

import (
	"context"
	"time"
)

// Confidence labels attached to predictions
const (
	ConfidenceLow    = "Low"
	ConfidenceMedium = "Medium"
	ConfidenceHigh   = "High"
)

// TextGenerator is the port to the LLM backend. Implementations must support
// schema-constrained JSON output; the predictor treats the returned string as
// an untrusted LLM response and cleans it before unmarshaling.
type TextGenerator interface {
	GenerateStructured(ctx context.Context, systemPrompt, userPrompt, schemaName string, schema map[string]interface{}) (string, error)
}

// Config holds configuration for the prediction service
type Config struct {
	// Generator is the LLM backend. When nil, every LLM-assisted path
	// degrades to its deterministic fallback.
	Generator TextGenerator

	// PaceDelay is applied before every LLM attempt to stay under the
	// provider's rate limits. Defaults to 1 second.
	PaceDelay time.Duration

	// RateLimitBackoff is the base backoff after a detected rate-limit
	// response; the wait grows linearly with the attempt number.
	// Defaults to 4 seconds.
	RateLimitBackoff time.Duration
}

// Service computes grade predictions, GPA aggregates and per-course
// recommendations for one user's course set. All derived values are
// recomputed per call; nothing is cached.
type Service struct {
	generator        TextGenerator
	paceDelay        time.Duration
	rateLimitBackoff time.Duration
	now              func() time.Time
}

// NewService creates a new prediction service
func NewService(config Config) *Service {
	if config.PaceDelay == 0 {
		config.PaceDelay = 1 * time.Second
	}
	if config.RateLimitBackoff == 0 {
		config.RateLimitBackoff = 4 * time.Second
	}

	return &Service{
		generator:        config.Generator,
		paceDelay:        config.PaceDelay,
		rateLimitBackoff: config.RateLimitBackoff,
		now:              time.Now,
	}
}

// AIEnabled reports whether an LLM backend is configured.
func (s *Service) AIEnabled() bool {
	return s.generator != nil
}
