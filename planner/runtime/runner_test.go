package runtime

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventforge/eventforge/planner/config"
	"github.com/eventforge/eventforge/planner/fault"
	"github.com/eventforge/eventforge/planner/stage"
	"github.com/eventforge/eventforge/planner/state"
	"github.com/eventforge/eventforge/planner/testutil"
	"github.com/eventforge/eventforge/planner/tools"
	"github.com/eventforge/eventforge/planner/vectorstore"
)

const extractionJSON = `{"date": "2026-09-12", "guest_count": 30, "budget_ceiling": 500, "must_haves": ["balloons"]}`

const draftJSON = `{
	"guest_list": [{"name_placeholder": "Guest of honor", "role": "celebrant"}],
	"venue_suggestion": "community hall",
	"menu_items": [{"name": "biryani", "est_unit_cost": 9}, {"name": "cake", "est_unit_cost": 3}],
	"schedule_hints": ["welcome", "dinner", "cake cutting"],
	"narrative_summary": "A lively birthday celebration."
}`

// recordingSink captures phase transitions.
type recordingSink struct {
	transitions []Phase
}

func (s *recordingSink) Transition(_ string, _, to Phase, _ state.StageName) {
	s.transitions = append(s.transitions, to)
}

func seededStore(t *testing.T, embedder *testutil.MockEmbedder) *vectorstore.Store {
	t.Helper()
	store := vectorstore.NewStore(embedder)
	require.NoError(t, vectorstore.Seed(context.Background(), store))
	return store
}

func newRunner(t *testing.T, llm *testutil.MockInference, embedder *testutil.MockEmbedder, sink TraceSink) *Runner {
	t.Helper()
	cfg := config.DefaultConfig()
	store := seededStore(t, embedder)
	return NewStandardRunner(cfg, llm, store, tools.NewDefaultRegistry(), stage.NopLogger{}, sink)
}

func TestRunnerHappyPath(t *testing.T) {
	ctx := context.Background()
	llm := testutil.NewMockInference(
		testutil.Respond("birthday"),
		testutil.Respond(extractionJSON),
		testutil.Respond(draftJSON),
	)
	sink := &recordingSink{}
	runner := newRunner(t, llm, &testutil.MockEmbedder{}, sink)

	st, err := runner.Run(ctx, "Plan a birthday party for 30 guests with a budget of 500, need balloons")
	require.NoError(t, err)
	require.NotNil(t, st.FinalOutput)

	t.Run("reaches FORMATTED through every phase", func(t *testing.T) {
		assert.Equal(t, []Phase{
			PhaseIntent, PhaseExtracted, PhaseRetrieved, PhaseDrafted,
			PhaseTooled, PhaseScheduled, PhaseFormatted,
		}, sink.transitions)
	})

	t.Run("budget breakdown sums to the ceiling", func(t *testing.T) {
		require.True(t, st.ToolResults.BudgetAllocated)
		var sum float64
		for _, amount := range st.ToolResults.BudgetBreakdown {
			sum += amount
		}
		assert.InDelta(t, 500.0, sum, 1e-9)
	})

	t.Run("schedule covers the full event duration", func(t *testing.T) {
		require.GreaterOrEqual(t, len(st.Schedule), 4)
		offset := 0
		for _, item := range st.Schedule {
			assert.Equal(t, offset, item.StartOffsetMinutes)
			offset += item.DurationMinutes
		}
		assert.Equal(t, config.DefaultConfig().DurationFor("birthday"), offset)
	})

	t.Run("record references the retrieved templates", func(t *testing.T) {
		assert.NotEmpty(t, st.FinalOutput.Record.TemplatesUsed)
	})

	t.Run("three inference calls total", func(t *testing.T) {
		assert.Equal(t, 3, llm.CallCount())
	})
}

func TestRunnerVagueRequest(t *testing.T) {
	ctx := context.Background()
	llm := testutil.NewMockInference(
		testutil.Respond("something fun"), // off-list label
		testutil.Respond(`{"date": null, "guest_count": null, "budget_ceiling": null, "must_haves": []}`),
		testutil.Respond(draftJSON),
	)
	runner := newRunner(t, llm, &testutil.MockEmbedder{}, nil)

	st, err := runner.Run(ctx, "organize something")
	require.NoError(t, err)
	require.NotNil(t, st.FinalOutput)

	assert.Equal(t, state.IntentGeneric, st.Intent)
	assert.True(t, st.Extracted.GuestCountAssumed)
	assert.False(t, st.ToolResults.BudgetAllocated)

	// One notice for the assumed guest count, one for the skipped budget.
	kinds := make([]string, 0)
	for _, notice := range st.Notices() {
		kinds = append(kinds, notice.Kind)
	}
	assert.Contains(t, kinds, string(fault.KindSubstitution))
	assert.GreaterOrEqual(t, len(st.Notices()), 2)
}

func TestRunnerEmptyCorpus(t *testing.T) {
	ctx := context.Background()
	llm := testutil.NewMockInference(
		testutil.Respond("birthday"),
		testutil.Respond(extractionJSON),
		testutil.Respond(draftJSON),
	)
	cfg := config.DefaultConfig()
	store := vectorstore.NewStore(&testutil.MockEmbedder{})
	runner := NewStandardRunner(cfg, llm, store, tools.NewDefaultRegistry(), stage.NopLogger{}, nil)

	st, err := runner.Run(ctx, "birthday for 30 with budget 500")
	require.NoError(t, err)
	require.NotNil(t, st.FinalOutput)
	assert.Empty(t, st.RetrievedTemplates)
	assert.Empty(t, st.FinalOutput.Record.TemplatesUsed)
}

func TestRunnerRetrievalDegradation(t *testing.T) {
	ctx := context.Background()
	llm := testutil.NewMockInference(
		testutil.Respond("birthday"),
		testutil.Respond(extractionJSON),
		testutil.Respond(draftJSON),
	)
	embedder := &testutil.MockEmbedder{}
	runner := newRunner(t, llm, embedder, nil)

	// Corpus is seeded; every query embedding now fails.
	embedder.Err = &fault.CapabilityUnavailableError{
		Capability: "embedding",
		Cause:      errors.New("backend down"),
	}

	st, err := runner.Run(ctx, "birthday for 30 with budget 500")
	require.NoError(t, err)
	require.NotNil(t, st.FinalOutput)

	assert.Empty(t, st.RetrievedTemplates)
	assert.True(t, st.Written(state.StageRetrieval))

	found := false
	for _, notice := range st.Notices() {
		if notice.Stage == state.StageRetrieval {
			found = true
		}
	}
	assert.True(t, found, "expected a retrieval degradation notice")
}

func TestRunnerComposerFallback(t *testing.T) {
	ctx := context.Background()
	llm := testutil.NewMockInference(
		testutil.Respond("birthday"),
		testutil.Respond(extractionJSON),
		testutil.Respond("not json"),
		testutil.Respond("still not json"),
	)
	runner := newRunner(t, llm, &testutil.MockEmbedder{}, nil)

	st, err := runner.Run(ctx, "birthday for 30 with budget 500")
	require.NoError(t, err)
	require.NotNil(t, st.FinalOutput)
	require.NotNil(t, st.DraftPlan)
	assert.NotEmpty(t, st.DraftPlan.NarrativeSummary)

	found := false
	for _, notice := range st.Notices() {
		if notice.Kind == string(fault.KindSchemaMismatch) {
			found = true
		}
	}
	assert.True(t, found, "expected a fallback skeleton notice")
}

func TestRunnerPersistentCapabilityFailure(t *testing.T) {
	ctx := context.Background()
	backendErr := &fault.CapabilityUnavailableError{
		Capability: "inference",
		Cause:      errors.New("connection refused"),
	}
	llm := testutil.NewMockInference(testutil.Fail(backendErr))
	runner := newRunner(t, llm, &testutil.MockEmbedder{}, nil)

	st, err := runner.Run(ctx, "birthday for 30")
	require.Error(t, err)
	assert.Nil(t, st.FinalOutput)

	var failure *PipelineFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, state.StageIntent, failure.Stage)
	assert.Equal(t, fault.KindCapabilityUnavailable, failure.Reason)
	assert.True(t, failure.Retryable)

	// Initial attempt plus the configured retries.
	assert.Equal(t, 1+config.DefaultConfig().RetryBound, llm.CallCount())

	require.NotEmpty(t, st.Errors)
	assert.True(t, st.Errors[len(st.Errors)-1].Fatal)
}

func TestRunnerValidationNotRetried(t *testing.T) {
	ctx := context.Background()
	llm := testutil.NewMockInference(
		testutil.Respond("birthday"),
		testutil.Respond(`{"guest_count": 10, "budget_ceiling": -200, "must_haves": []}`),
	)
	runner := newRunner(t, llm, &testutil.MockEmbedder{}, nil)

	_, err := runner.Run(ctx, "birthday, budget -200")
	require.Error(t, err)

	var failure *PipelineFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, state.StageExtraction, failure.Stage)
	assert.Equal(t, fault.KindValidation, failure.Reason)
	assert.False(t, failure.Retryable)

	// Intent plus one extraction attempt, no retry of the validation error.
	assert.Equal(t, 2, llm.CallCount())
}

func TestRunnerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	llm := testutil.NewMockInference(testutil.Respond("birthday"))
	runner := newRunner(t, llm, &testutil.MockEmbedder{}, nil)

	st, err := runner.Run(ctx, "birthday for 30")
	require.Error(t, err)

	var failure *PipelineFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, fault.KindCancelled, failure.Reason)
	assert.Nil(t, st.FinalOutput)
}
