// Package vectorstore provides the embedding store: a fixed corpus of past
// example events held in memory as (text, vector) pairs with nearest-neighbor
// lookup by cosine similarity.
//
// The store is written once at bootstrap and read-only during pipeline runs,
// so it is safe to share across concurrent independent runs.
package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/eventforge/eventforge/planner/capability"
	"github.com/eventforge/eventforge/planner/state"
)

// TemplateDoc is one corpus entry: a past event's description and its
// structured plan payload.
type TemplateDoc struct {
	ID        string
	EventType state.Intent
	Text      string
	Payload   state.DraftPlan
}

// Match is one nearest-neighbor result. Score is in [0,1], higher = closer.
type Match struct {
	Doc   TemplateDoc
	Score float64
}

type storedItem struct {
	doc    TemplateDoc
	vector []float32
}

// Store is the in-memory embedding store.
type Store struct {
	embedder capability.Embedder

	mu    sync.RWMutex
	items []storedItem
}

// NewStore creates an empty store backed by the given embedder.
func NewStore(embedder capability.Embedder) *Store {
	return &Store{embedder: embedder}
}

// Add embeds the documents in one batch and appends them to the corpus.
// Insertion order is preserved; it is the tie-break order for equal scores.
func (s *Store) Add(ctx context.Context, docs []TemplateDoc) error {
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Text
	}

	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding corpus documents: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, doc := range docs {
		s.items = append(s.items, storedItem{doc: doc, vector: vectors[i]})
	}
	return nil
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Search embeds the query and returns the top-k matches sorted by score
// descending. Ties keep corpus insertion order. An empty corpus returns an
// empty result, never an error.
func (s *Store) Search(ctx context.Context, query string, k int) ([]Match, error) {
	s.mu.RLock()
	empty := len(s.items) == 0
	s.mu.RUnlock()
	if empty || k <= 0 {
		return []Match{}, nil
	}

	queryVec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	s.mu.RLock()
	matches := make([]Match, 0, len(s.items))
	for _, item := range s.items {
		matches = append(matches, Match{
			Doc:   item.doc,
			Score: similarity(queryVec, item.vector),
		})
	}
	s.mu.RUnlock()

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if k > len(matches) {
		k = len(matches)
	}
	return matches[:k], nil
}

// similarity maps cosine similarity from [-1,1] into [0,1] with the fixed
// monotonic mapping (cos+1)/2, clamped against floating point drift.
func similarity(a, b []float32) float64 {
	cos := cosine(a, b)
	score := (cos + 1) / 2
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}
