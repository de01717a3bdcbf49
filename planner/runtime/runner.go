// Package runtime provides the orchestrator: the explicit state machine that
// drives a PlanningState through the seven stages in fixed order, applying
// the retry policy and recording phase transitions.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/eventforge/eventforge/planner/config"
	"github.com/eventforge/eventforge/planner/fault"
	"github.com/eventforge/eventforge/planner/observability"
	"github.com/eventforge/eventforge/planner/stage"
	"github.com/eventforge/eventforge/planner/state"
)

var tracer = otel.Tracer("eventforge/runtime")

// =============================================================================
// PHASES
// =============================================================================

// Phase names the orchestrator's position in the run. Transitions are
// strictly forward; FAILED is terminal from any phase.
type Phase string

const (
	PhaseInit      Phase = "INIT"
	PhaseIntent    Phase = "INTENT"
	PhaseExtracted Phase = "EXTRACTED"
	PhaseRetrieved Phase = "RETRIEVED"
	PhaseDrafted   Phase = "DRAFTED"
	PhaseTooled    Phase = "TOOLED"
	PhaseScheduled Phase = "SCHEDULED"
	PhaseFormatted Phase = "FORMATTED"
	PhaseFailed    Phase = "FAILED"
)

// phaseAfter maps a completed stage to the phase it establishes.
var phaseAfter = map[state.StageName]Phase{
	state.StageIntent:     PhaseIntent,
	state.StageExtraction: PhaseExtracted,
	state.StageRetrieval:  PhaseRetrieved,
	state.StageGrounding:  PhaseDrafted,
	state.StageTools:      PhaseTooled,
	state.StageSchedule:   PhaseScheduled,
	state.StageFormat:     PhaseFormatted,
}

// TraceSink receives phase transitions. Implementations must be cheap; the
// runner calls them synchronously.
type TraceSink interface {
	Transition(planID string, from, to Phase, stageName state.StageName)
}

// =============================================================================
// FAILURE
// =============================================================================

// PipelineFailure is the terminal error of a failed run. It names the stage
// that exhausted its options and the classified reason.
type PipelineFailure struct {
	Stage     state.StageName
	Reason    fault.Kind
	Retryable bool
	Err       error
}

func (f *PipelineFailure) Error() string {
	return fmt.Sprintf("pipeline failed at stage %s (%s): %v", f.Stage, f.Reason, f.Err)
}

func (f *PipelineFailure) Unwrap() error { return f.Err }

// =============================================================================
// RUNNER
// =============================================================================

// Runner drives planning runs. Safe for concurrent use: each run owns its
// own PlanningState and the runner itself is immutable after construction.
type Runner struct {
	cfg    *config.Config
	stages []stage.Stage
	logger stage.Logger
	sink   TraceSink
}

// NewRunner creates a Runner over an explicit stage sequence. A nil sink
// disables transition reporting.
func NewRunner(cfg *config.Config, stages []stage.Stage, logger stage.Logger, sink TraceSink) *Runner {
	if logger == nil {
		logger = stage.NopLogger{}
	}
	return &Runner{cfg: cfg, stages: stages, logger: logger, sink: sink}
}

// Run executes one planning run. The returned state always carries whatever
// was established before a failure; on success its FinalOutput is set and
// the error is nil.
func (r *Runner) Run(ctx context.Context, rawRequest string) (*state.PlanningState, error) {
	st := state.New(rawRequest)
	logger := r.logger.Bind("plan_id", st.PlanID)

	ctx, span := tracer.Start(ctx, "pipeline.run",
		trace.WithAttributes(attribute.String("plan.id", st.PlanID)),
	)
	defer span.End()

	start := time.Now()
	phase := PhaseInit
	logger.Info("pipeline_started", "request_length", len(rawRequest))

	for _, s := range r.stages {
		next, err := r.runStage(ctx, s, st, logger)
		if err != nil {
			durationMS := int(time.Since(start).Milliseconds())
			r.transition(st.PlanID, phase, PhaseFailed, s.Name())
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			observability.RecordPipelineRun("failed", durationMS)
			logger.Error("pipeline_failed",
				"stage", string(s.Name()),
				"phase", string(PhaseFailed),
				"error", err.Error(),
				"duration_ms", durationMS,
			)
			return st, err
		}
		r.transition(st.PlanID, phase, next, s.Name())
		phase = next
	}

	durationMS := int(time.Since(start).Milliseconds())
	span.SetStatus(codes.Ok, string(PhaseFormatted))
	observability.RecordPipelineRun("success", durationMS)
	logger.Info("pipeline_completed",
		"phase", string(phase),
		"duration_ms", durationMS,
		"notices", len(st.Notices()),
	)
	return st, nil
}

// runStage executes one stage under the retry policy and returns the phase
// it establishes.
func (r *Runner) runStage(ctx context.Context, s stage.Stage, st *state.PlanningState, logger stage.Logger) (Phase, error) {
	name := s.Name()
	attempts := 1 + r.cfg.RetryBound

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", r.cancelled(st, name, err)
		}

		stageStart := time.Now()
		err := s.Run(ctx, st)
		durationMS := int(time.Since(stageStart).Milliseconds())

		if err == nil {
			observability.RecordStageExecution(string(name), "success", durationMS)
			return phaseAfter[name], nil
		}
		observability.RecordStageExecution(string(name), "error", durationMS)

		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return "", r.cancelled(st, name, err)
		}

		lastErr = err
		if !fault.Retryable(err) {
			break
		}
		if attempt < attempts {
			logger.Warn("stage_retrying",
				"stage", string(name),
				"attempt", attempt,
				"error", err.Error(),
			)
		}
	}

	// Retrieval degrades to an empty result instead of failing the run.
	if name == state.StageRetrieval && fault.Retryable(lastErr) {
		logger.Warn("retrieval_degraded", "error", lastErr.Error())
		st.AddNotice(state.StageRetrieval, string(fault.KindOf(lastErr)),
			"template retrieval unavailable, composing without exemplars")
		if err := st.SetRetrievedTemplates(nil); err != nil {
			return "", err
		}
		return PhaseRetrieved, nil
	}

	st.AddError(name, string(fault.KindOf(lastErr)), lastErr.Error(), fault.Retryable(lastErr))
	return "", &PipelineFailure{
		Stage:     name,
		Reason:    fault.KindOf(lastErr),
		Retryable: fault.Retryable(lastErr),
		Err:       lastErr,
	}
}

func (r *Runner) cancelled(st *state.PlanningState, name state.StageName, err error) error {
	st.AddError(name, string(fault.KindCancelled), err.Error(), false)
	return &PipelineFailure{
		Stage:  name,
		Reason: fault.KindCancelled,
		Err:    err,
	}
}

func (r *Runner) transition(planID string, from, to Phase, stageName state.StageName) {
	if r.sink != nil {
		r.sink.Transition(planID, from, to, stageName)
	}
}
