package stage

import (
	"context"
	"errors"
	"fmt"

	"github.com/eventforge/eventforge/planner/capability"
	"github.com/eventforge/eventforge/planner/config"
	"github.com/eventforge/eventforge/planner/fault"
	"github.com/eventforge/eventforge/planner/state"
)

// DetailExtractor pulls the structured request record out of the raw text.
// Optional fields stay absent when the text gives no signal; only the guest
// count gets a flagged default because downstream calculators need one.
//
// A malformed response gets one stage-internal retry with a stricter
// instruction. A second malformed response is a non-retryable schema
// mismatch for the orchestrator.
type DetailExtractor struct {
	llm    capability.InferenceProvider
	cfg    *config.Config
	logger Logger
}

// NewDetailExtractor creates the extraction stage.
func NewDetailExtractor(llm capability.InferenceProvider, cfg *config.Config, logger Logger) *DetailExtractor {
	return &DetailExtractor{
		llm:    llm,
		cfg:    cfg,
		logger: logger.Bind("stage", string(state.StageExtraction)),
	}
}

func (s *DetailExtractor) Name() state.StageName { return state.StageExtraction }

// Run extracts the details, applying the guest count default when absent.
func (s *DetailExtractor) Run(ctx context.Context, st *state.PlanningState) error {
	ctx, span := tracer.Start(ctx, "stage.extraction")
	defer span.End()

	details, err := s.extract(ctx, st.RawRequest)
	if err != nil {
		return err
	}

	if details.GuestCount <= 0 {
		details.GuestCount = s.cfg.DefaultGuestCount
		details.GuestCountAssumed = true
		st.AddNotice(state.StageExtraction, string(fault.KindSubstitution),
			fmt.Sprintf("guest count not stated, assuming %d", s.cfg.DefaultGuestCount))
	}

	if details.BudgetCeiling != nil && *details.BudgetCeiling < 0 {
		return fault.NewValidationError("budget_ceiling", "must be non-negative")
	}

	s.logger.Info("details_extracted",
		"guest_count", details.GuestCount,
		"guest_count_assumed", details.GuestCountAssumed,
		"has_budget", details.BudgetCeiling != nil,
		"must_haves", len(details.MustHaves),
	)
	return st.SetExtracted(details)
}

func (s *DetailExtractor) extract(ctx context.Context, rawRequest string) (*state.ExtractedDetails, error) {
	prompt := buildExtractionPrompt(rawRequest)

	details, decodeErr := s.attempt(ctx, prompt)
	if decodeErr == nil {
		return details, nil
	}
	var schemaErr *fault.SchemaMismatchError
	if !errors.As(decodeErr, &schemaErr) {
		return nil, decodeErr
	}

	// One stricter retry, then give up.
	s.logger.Warn("extraction_malformed_retrying", "error", decodeErr.Error())
	details, decodeErr = s.attempt(ctx, prompt+extractionRetryInstruction)
	if decodeErr == nil {
		return details, nil
	}
	return nil, decodeErr
}

func (s *DetailExtractor) attempt(ctx context.Context, prompt string) (*state.ExtractedDetails, error) {
	response, err := s.llm.Generate(ctx, capability.GenerateRequest{
		System:      extractionSystemPrompt,
		Prompt:      prompt,
		Temperature: 0,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("detail extraction: %w", err)
	}

	obj, err := extractJSONObject(response)
	if err != nil {
		return nil, fault.NewSchemaMismatchError("extracted_details", err.Error())
	}
	return decodeExtractedDetails(obj)
}
