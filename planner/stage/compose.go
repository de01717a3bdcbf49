package stage

import (
	"context"
	"errors"
	"fmt"

	"github.com/eventforge/eventforge/planner/capability"
	"github.com/eventforge/eventforge/planner/fault"
	"github.com/eventforge/eventforge/planner/state"
)

// GroundingComposer generates the draft plan skeleton, grounded on the
// retrieved templates. A schema mismatch gets one corrective retry quoting
// the validation problems; a second mismatch falls back to a minimal
// skeleton built from the extracted details, with a notice, so the run
// still completes.
type GroundingComposer struct {
	llm    capability.InferenceProvider
	logger Logger
}

// NewGroundingComposer creates the composition stage.
func NewGroundingComposer(llm capability.InferenceProvider, logger Logger) *GroundingComposer {
	return &GroundingComposer{llm: llm, logger: logger.Bind("stage", string(state.StageGrounding))}
}

func (s *GroundingComposer) Name() state.StageName { return state.StageGrounding }

// Run generates and validates the draft plan.
func (s *GroundingComposer) Run(ctx context.Context, st *state.PlanningState) error {
	ctx, span := tracer.Start(ctx, "stage.grounding")
	defer span.End()

	prompt := buildComposePrompt(st)

	draft, err := s.attempt(ctx, prompt)
	if err == nil {
		s.logger.Info("draft_composed",
			"menu_items", len(draft.MenuItems),
			"schedule_hints", len(draft.ScheduleHints),
		)
		return st.SetDraftPlan(draft)
	}

	var schemaErr *fault.SchemaMismatchError
	if !errors.As(err, &schemaErr) {
		return err
	}

	// Corrective retry quoting the problems back at the model.
	s.logger.Warn("draft_schema_mismatch_retrying", "problems", fmt.Sprintf("%v", schemaErr.Problems))
	draft, err = s.attempt(ctx, prompt+composeRetryInstruction(schemaErr.Problems))
	if err == nil {
		s.logger.Info("draft_composed_after_retry", "menu_items", len(draft.MenuItems))
		return st.SetDraftPlan(draft)
	}
	if !errors.As(err, &schemaErr) {
		return err
	}

	// Fallback skeleton keeps the run alive.
	s.logger.Warn("draft_fallback_skeleton", "problems", fmt.Sprintf("%v", schemaErr.Problems))
	st.AddNotice(state.StageGrounding, string(fault.KindSchemaMismatch),
		"generated plan failed validation twice, using fallback skeleton")
	return st.SetDraftPlan(fallbackDraft(st))
}

func (s *GroundingComposer) attempt(ctx context.Context, prompt string) (*state.DraftPlan, error) {
	response, err := s.llm.Generate(ctx, capability.GenerateRequest{
		System:      composeSystemPrompt,
		Prompt:      prompt,
		Temperature: 0.7,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("grounding composition: %w", err)
	}

	obj, err := extractJSONObject(response)
	if err != nil {
		return nil, fault.NewSchemaMismatchError("draft_plan", err.Error())
	}
	return decodeDraftPlan(obj)
}

// fallbackDraft builds the minimal valid skeleton from what extraction
// already established.
func fallbackDraft(st *state.PlanningState) *state.DraftPlan {
	return &state.DraftPlan{
		GuestList: []state.GuestSlot{
			{NamePlaceholder: "Guests", Role: "attendees"},
		},
		VenueSuggestion:  "venue to be decided",
		MenuItems:        []state.MenuItem{},
		ScheduleHints:    []string{},
		NarrativeSummary: fmt.Sprintf("A %s event planned from: %s", st.Intent, truncate(st.RawRequest, 120)),
	}
}
