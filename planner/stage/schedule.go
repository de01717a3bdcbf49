package stage

import (
	"context"
	"fmt"

	"github.com/eventforge/eventforge/planner/config"
	"github.com/eventforge/eventforge/planner/state"
)

// phase is one schedule segment with its share of the event duration.
type phase struct {
	label  string
	weight float64
}

// intentPhases holds the canonical phase sequence per intent. Weights sum
// to 1; the last phase absorbs rounding remainder so the schedule always
// covers the full duration.
var intentPhases = map[state.Intent][]phase{
	state.IntentBirthday: {
		{"welcome", 0.15}, {"games", 0.25}, {"dinner", 0.30}, {"cake cutting", 0.10}, {"music", 0.20},
	},
	state.IntentCorporate: {
		{"cocktails", 0.15}, {"welcome address", 0.10}, {"dinner", 0.35}, {"speeches", 0.20}, {"networking", 0.20},
	},
	state.IntentWedding: {
		{"arrival", 0.15}, {"ceremony", 0.25}, {"dinner", 0.35}, {"dance", 0.25},
	},
	state.IntentBabyShower: {
		{"welcome", 0.20}, {"games", 0.30}, {"cake", 0.20}, {"gift opening", 0.30},
	},
	state.IntentFarewell: {
		{"gathering", 0.25}, {"speeches", 0.20}, {"dinner", 0.35}, {"music", 0.20},
	},
	state.IntentAnniversary: {
		{"cocktails", 0.20}, {"dinner", 0.40}, {"dance", 0.25}, {"cake", 0.15},
	},
	state.IntentGeneric: {
		{"arrival", 0.20}, {"main activity", 0.50}, {"wrap-up", 0.30},
	},
}

// ScheduleBuilder lays the intent's phases over the configured event
// duration. Pure arithmetic; never calls inference.
type ScheduleBuilder struct {
	cfg    *config.Config
	logger Logger
}

// NewScheduleBuilder creates the schedule stage.
func NewScheduleBuilder(cfg *config.Config, logger Logger) *ScheduleBuilder {
	return &ScheduleBuilder{cfg: cfg, logger: logger.Bind("stage", string(state.StageSchedule))}
}

func (s *ScheduleBuilder) Name() state.StageName { return state.StageSchedule }

// Run builds the timed sequence. A GENERIC intent with draft schedule hints
// uses the hints as equal-weight phases instead of the canonical generic
// sequence.
func (s *ScheduleBuilder) Run(ctx context.Context, st *state.PlanningState) error {
	_, span := tracer.Start(ctx, "stage.schedule")
	defer span.End()

	if st.DraftPlan == nil {
		return fmt.Errorf("schedule stage requires the grounding output")
	}

	phases := s.phasesFor(st.Intent, st.DraftPlan.ScheduleHints)
	duration := s.cfg.DurationFor(string(st.Intent))
	schedule := layout(phases, duration)

	s.logger.Info("schedule_built",
		"phases", len(schedule),
		"duration_minutes", duration,
	)
	return st.SetSchedule(schedule)
}

func (s *ScheduleBuilder) phasesFor(intent state.Intent, hints []string) []phase {
	if intent == state.IntentGeneric && len(hints) > 0 {
		weight := 1.0 / float64(len(hints))
		phases := make([]phase, 0, len(hints))
		for _, hint := range hints {
			phases = append(phases, phase{label: hint, weight: weight})
		}
		return phases
	}
	if phases, ok := intentPhases[intent]; ok {
		return phases
	}
	return intentPhases[state.IntentGeneric]
}

// layout converts weighted phases into contiguous timed items. The last
// item's end always equals the total duration.
func layout(phases []phase, totalMinutes int) []state.ScheduleItem {
	items := make([]state.ScheduleItem, 0, len(phases))
	offset := 0
	for i, p := range phases {
		minutes := int(p.weight * float64(totalMinutes))
		if i == len(phases)-1 {
			minutes = totalMinutes - offset
		}
		items = append(items, state.ScheduleItem{
			StartOffsetMinutes: offset,
			DurationMinutes:    minutes,
			Label:              p.label,
		})
		offset += minutes
	}
	return items
}
