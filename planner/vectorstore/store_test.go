package vectorstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventforge/eventforge/planner/state"
	"github.com/eventforge/eventforge/planner/testutil"
)

func TestStoreSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("empty corpus returns empty result", func(t *testing.T) {
		store := NewStore(&testutil.MockEmbedder{})
		matches, err := store.Search(ctx, "birthday party", 3)
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("scores are in range and sorted descending", func(t *testing.T) {
		store := NewStore(&testutil.MockEmbedder{})
		require.NoError(t, Seed(ctx, store))

		matches, err := store.Search(ctx, "birthday party with cake and games", 6)
		require.NoError(t, err)
		require.NotEmpty(t, matches)

		for i, match := range matches {
			assert.GreaterOrEqual(t, match.Score, 0.0)
			assert.LessOrEqual(t, match.Score, 1.0)
			if i > 0 {
				assert.GreaterOrEqual(t, matches[i-1].Score, match.Score)
			}
		}
	})

	t.Run("k bounds the result", func(t *testing.T) {
		store := NewStore(&testutil.MockEmbedder{})
		require.NoError(t, Seed(ctx, store))

		matches, err := store.Search(ctx, "dinner", 2)
		require.NoError(t, err)
		assert.Len(t, matches, 2)
	})

	t.Run("k larger than corpus returns everything", func(t *testing.T) {
		store := NewStore(&testutil.MockEmbedder{})
		require.NoError(t, Seed(ctx, store))

		matches, err := store.Search(ctx, "dinner", 50)
		require.NoError(t, err)
		assert.Len(t, matches, store.Len())
	})

	t.Run("identical text ranks first", func(t *testing.T) {
		store := NewStore(&testutil.MockEmbedder{})
		docs := SampleTemplates()
		require.NoError(t, store.Add(ctx, docs))

		matches, err := store.Search(ctx, docs[0].Text, 1)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, docs[0].ID, matches[0].Doc.ID)
	})

	t.Run("embedder failure propagates", func(t *testing.T) {
		embedder := &testutil.MockEmbedder{}
		store := NewStore(embedder)
		require.NoError(t, Seed(ctx, store))

		embedder.Err = errors.New("backend down")
		_, err := store.Search(ctx, "dinner", 3)
		assert.Error(t, err)
	})
}

func TestSampleTemplates(t *testing.T) {
	docs := SampleTemplates()
	require.Len(t, docs, 6)

	seen := make(map[string]bool)
	for _, doc := range docs {
		assert.NotEmpty(t, doc.ID)
		assert.False(t, seen[doc.ID], "duplicate id %s", doc.ID)
		seen[doc.ID] = true

		assert.NotEqual(t, state.IntentUnset, doc.EventType)
		assert.NotEmpty(t, doc.Text)
		assert.NotEmpty(t, doc.Payload.MenuItems)
		assert.NotEmpty(t, doc.Payload.ScheduleHints)
	}
}

func TestSimilarityMapping(t *testing.T) {
	t.Run("identical vectors score one", func(t *testing.T) {
		v := []float32{1, 2, 3}
		assert.InDelta(t, 1.0, similarity(v, v), 1e-9)
	})

	t.Run("opposite vectors score zero", func(t *testing.T) {
		assert.InDelta(t, 0.0, similarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	})

	t.Run("orthogonal vectors score half", func(t *testing.T) {
		assert.InDelta(t, 0.5, similarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	})

	t.Run("zero vector scores zero cosine", func(t *testing.T) {
		assert.InDelta(t, 0.5, similarity([]float32{0, 0}, []float32{1, 1}), 1e-9)
	})
}
