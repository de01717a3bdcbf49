package stage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventforge/eventforge/planner/state"
)

// completeState builds a state carried through all six preceding stages.
func completeState(t *testing.T) *state.PlanningState {
	t.Helper()
	st := state.New("birthday for 30 with budget 500")
	require.NoError(t, st.SetIntent(state.IntentBirthday))
	require.NoError(t, st.SetExtracted(&state.ExtractedDetails{
		GuestCount:    30,
		BudgetCeiling: cost(500),
		MustHaves:     []string{"balloons"},
	}))
	require.NoError(t, st.SetRetrievedTemplates([]state.TemplateMatch{
		{SourceEventID: "birthday_1", SimilarityScore: 0.91},
	}))
	require.NoError(t, st.SetDraftPlan(&state.DraftPlan{
		VenueSuggestion:  "community hall",
		MenuItems:        []state.MenuItem{{Name: "biryani", EstUnitCost: cost(9)}},
		NarrativeSummary: "A lively birthday celebration.",
	}))
	require.NoError(t, st.SetToolResults(&state.ToolResults{
		BudgetBreakdown: map[string]float64{"venue": 150, "food": 200, "decor": 75, "misc": 75},
		BudgetAllocated: true,
		CapacityOK:      true,
		CapacityKnown:   true,
		MenuTotalCost:   270,
		ShoppingList:    []state.ShoppingItem{{Item: "biryani", Category: "food", Priority: "essential"}},
	}))
	require.NoError(t, st.SetSchedule([]state.ScheduleItem{
		{StartOffsetMinutes: 0, DurationMinutes: 60, Label: "welcome"},
		{StartOffsetMinutes: 60, DurationMinutes: 180, Label: "dinner"},
	}))
	return st
}

func TestFormatter(t *testing.T) {
	ctx := context.Background()

	t.Run("builds the terminal artifact", func(t *testing.T) {
		st := completeState(t)
		err := NewFormatter(NopLogger{}).Run(ctx, st)
		require.NoError(t, err)

		require.NotNil(t, st.FinalOutput)
		require.NotNil(t, st.CompletedAt)

		record := st.FinalOutput.Record
		assert.Equal(t, st.PlanID, record.PlanID)
		assert.Equal(t, state.IntentBirthday, record.Intent)
		assert.Equal(t, []string{"birthday_1"}, record.TemplatesUsed)

		summary := st.FinalOutput.Summary
		assert.Contains(t, summary, st.PlanID)
		assert.Contains(t, summary, "community hall")
		assert.Contains(t, summary, "food: 200.00")
		assert.Contains(t, summary, "+0:00 - +1:00: welcome")
	})

	t.Run("summary is deterministic", func(t *testing.T) {
		st := completeState(t)
		require.NoError(t, NewFormatter(NopLogger{}).Run(ctx, st))

		record := BuildRecord(st)
		assert.Equal(t, BuildSummary(record), BuildSummary(record))
		assert.Equal(t, st.FinalOutput.Summary, BuildSummary(record))
	})

	t.Run("budget categories render sorted", func(t *testing.T) {
		st := completeState(t)
		require.NoError(t, NewFormatter(NopLogger{}).Run(ctx, st))

		summary := st.FinalOutput.Summary
		assert.Less(t, strings.Index(summary, "decor:"), strings.Index(summary, "food:"))
		assert.Less(t, strings.Index(summary, "food:"), strings.Index(summary, "misc:"))
		assert.Less(t, strings.Index(summary, "misc:"), strings.Index(summary, "venue:"))
	})

	t.Run("notices surface in the summary", func(t *testing.T) {
		st := completeState(t)
		st.AddNotice(state.StageTools, "substitution_notice", "no budget ceiling stated")
		require.NoError(t, NewFormatter(NopLogger{}).Run(ctx, st))
		assert.Contains(t, st.FinalOutput.Summary, "no budget ceiling stated")
	})

	t.Run("incomplete state errors", func(t *testing.T) {
		st := state.New("party")
		require.NoError(t, st.SetIntent(state.IntentBirthday))
		err := NewFormatter(NopLogger{}).Run(ctx, st)
		require.Error(t, err)
		assert.Nil(t, st.FinalOutput)
	})
}
