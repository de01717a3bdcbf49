package stage

import (
	"context"
	"fmt"

	"github.com/eventforge/eventforge/planner/config"
	"github.com/eventforge/eventforge/planner/state"
	"github.com/eventforge/eventforge/planner/vectorstore"
)

// TemplateRetriever looks up the k nearest past plans for the request.
// An empty result is a valid outcome; only embedding failures are errors,
// and the orchestrator degrades those to an empty retrieval after the retry
// bound is spent.
type TemplateRetriever struct {
	store  *vectorstore.Store
	cfg    *config.Config
	logger Logger
}

// NewTemplateRetriever creates the retrieval stage.
func NewTemplateRetriever(store *vectorstore.Store, cfg *config.Config, logger Logger) *TemplateRetriever {
	return &TemplateRetriever{
		store:  store,
		cfg:    cfg,
		logger: logger.Bind("stage", string(state.StageRetrieval)),
	}
}

func (s *TemplateRetriever) Name() state.StageName { return state.StageRetrieval }

// Run searches the corpus with the intent and raw request text combined.
func (s *TemplateRetriever) Run(ctx context.Context, st *state.PlanningState) error {
	ctx, span := tracer.Start(ctx, "stage.retrieval")
	defer span.End()

	query := fmt.Sprintf("%s event: %s", st.Intent, st.RawRequest)
	matches, err := s.store.Search(ctx, query, s.cfg.RetrievalK)
	if err != nil {
		return fmt.Errorf("template retrieval: %w", err)
	}

	templates := make([]state.TemplateMatch, 0, len(matches))
	for _, match := range matches {
		templates = append(templates, state.TemplateMatch{
			SourceEventID:   match.Doc.ID,
			SimilarityScore: match.Score,
			TemplatePayload: match.Doc.Payload,
		})
	}

	s.logger.Info("templates_retrieved", "count", len(templates), "k", s.cfg.RetrievalK)
	return st.SetRetrievedTemplates(templates)
}
