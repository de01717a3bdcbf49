package stage

import (
	"context"
	"fmt"
	"strings"

	"github.com/eventforge/eventforge/planner/capability"
	"github.com/eventforge/eventforge/planner/state"
)

// IntentClassifier maps the raw request to one of the closed-set intent
// labels. An off-list response degrades to GENERIC rather than failing; a
// capability failure is returned for the orchestrator's retry policy.
type IntentClassifier struct {
	llm    capability.InferenceProvider
	logger Logger
}

// NewIntentClassifier creates the classification stage.
func NewIntentClassifier(llm capability.InferenceProvider, logger Logger) *IntentClassifier {
	return &IntentClassifier{llm: llm, logger: logger.Bind("stage", string(state.StageIntent))}
}

func (s *IntentClassifier) Name() state.StageName { return state.StageIntent }

// Run performs one classification call and records the intent.
func (s *IntentClassifier) Run(ctx context.Context, st *state.PlanningState) error {
	ctx, span := tracer.Start(ctx, "stage.intent")
	defer span.End()

	response, err := s.llm.Generate(ctx, capability.GenerateRequest{
		System:      intentSystemPrompt,
		Prompt:      buildIntentPrompt(st.RawRequest),
		Temperature: 0,
	})
	if err != nil {
		return fmt.Errorf("intent classification: %w", err)
	}

	label := strings.ToLower(strings.TrimSpace(response))
	intent, recognized := state.ParseIntent(label)
	if !recognized {
		s.logger.Warn("intent_label_unrecognized", "label", truncate(label, 80))
	}
	s.logger.Info("intent_classified", "intent", string(intent))

	return st.SetIntent(intent)
}
