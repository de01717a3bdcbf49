package runtime

import (
	"github.com/eventforge/eventforge/planner/capability"
	"github.com/eventforge/eventforge/planner/config"
	"github.com/eventforge/eventforge/planner/stage"
	"github.com/eventforge/eventforge/planner/tools"
	"github.com/eventforge/eventforge/planner/vectorstore"
)

// StandardStages builds the canonical seven-stage sequence over the given
// capability providers.
func StandardStages(
	cfg *config.Config,
	llm capability.InferenceProvider,
	store *vectorstore.Store,
	registry *tools.Registry,
	logger stage.Logger,
) []stage.Stage {
	if logger == nil {
		logger = stage.NopLogger{}
	}
	return []stage.Stage{
		stage.NewIntentClassifier(llm, logger),
		stage.NewDetailExtractor(llm, cfg, logger),
		stage.NewTemplateRetriever(store, cfg, logger),
		stage.NewGroundingComposer(llm, logger),
		stage.NewToolStage(registry, cfg, logger),
		stage.NewScheduleBuilder(cfg, logger),
		stage.NewFormatter(logger),
	}
}

// NewStandardRunner wires the canonical pipeline into a Runner.
func NewStandardRunner(
	cfg *config.Config,
	llm capability.InferenceProvider,
	store *vectorstore.Store,
	registry *tools.Registry,
	logger stage.Logger,
	sink TraceSink,
) *Runner {
	return NewRunner(cfg, StandardStages(cfg, llm, store, registry, logger), logger, sink)
}
