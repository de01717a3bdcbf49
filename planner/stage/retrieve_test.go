package stage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventforge/eventforge/planner/config"
	"github.com/eventforge/eventforge/planner/fault"
	"github.com/eventforge/eventforge/planner/state"
	"github.com/eventforge/eventforge/planner/testutil"
	"github.com/eventforge/eventforge/planner/vectorstore"
)

func retrievalState(t *testing.T, raw string) *state.PlanningState {
	t.Helper()
	st := state.New(raw)
	require.NoError(t, st.SetIntent(state.IntentBirthday))
	require.NoError(t, st.SetExtracted(&state.ExtractedDetails{GuestCount: 30, MustHaves: []string{}}))
	return st
}

func TestTemplateRetriever(t *testing.T) {
	ctx := context.Background()
	cfg := config.DefaultConfig()

	t.Run("returns at most k matches with scores in range", func(t *testing.T) {
		store := vectorstore.NewStore(&testutil.MockEmbedder{})
		require.NoError(t, vectorstore.Seed(ctx, store))

		st := retrievalState(t, "birthday party with cake and games")
		err := NewTemplateRetriever(store, cfg, NopLogger{}).Run(ctx, st)
		require.NoError(t, err)

		require.True(t, st.Written(state.StageRetrieval))
		assert.LessOrEqual(t, len(st.RetrievedTemplates), cfg.RetrievalK)
		assert.NotEmpty(t, st.RetrievedTemplates)
		for _, match := range st.RetrievedTemplates {
			assert.GreaterOrEqual(t, match.SimilarityScore, 0.0)
			assert.LessOrEqual(t, match.SimilarityScore, 1.0)
			assert.NotEmpty(t, match.SourceEventID)
		}
	})

	t.Run("empty corpus yields empty retrieval", func(t *testing.T) {
		store := vectorstore.NewStore(&testutil.MockEmbedder{})

		st := retrievalState(t, "birthday party")
		err := NewTemplateRetriever(store, cfg, NopLogger{}).Run(ctx, st)
		require.NoError(t, err)
		assert.Empty(t, st.RetrievedTemplates)
		assert.True(t, st.Written(state.StageRetrieval))
	})

	t.Run("embedding failure propagates as retryable", func(t *testing.T) {
		embedder := &testutil.MockEmbedder{}
		store := vectorstore.NewStore(embedder)
		require.NoError(t, vectorstore.Seed(ctx, store))
		embedder.Err = &fault.CapabilityUnavailableError{
			Capability: "embedding",
			Cause:      errors.New("backend down"),
		}

		st := retrievalState(t, "birthday party")
		err := NewTemplateRetriever(store, cfg, NopLogger{}).Run(ctx, st)
		require.Error(t, err)
		assert.True(t, fault.Retryable(err))
		assert.False(t, st.Written(state.StageRetrieval))
	})
}
