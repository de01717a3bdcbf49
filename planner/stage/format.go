package stage

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/eventforge/eventforge/planner/state"
)

// Formatter assembles the terminal artifact. Pure presentation over fields
// the earlier stages established; deterministic for a given state, with
// sorted iteration wherever a map feeds the summary.
type Formatter struct {
	logger Logger
}

// NewFormatter creates the formatting stage.
func NewFormatter(logger Logger) *Formatter {
	return &Formatter{logger: logger.Bind("stage", string(state.StageFormat))}
}

func (s *Formatter) Name() state.StageName { return state.StageFormat }

// Run builds the final output. Every preceding stage output must be present.
func (s *Formatter) Run(ctx context.Context, st *state.PlanningState) error {
	_, span := tracer.Start(ctx, "stage.format")
	defer span.End()

	if !st.Complete() {
		return fmt.Errorf("formatter requires all preceding stage outputs")
	}

	record := BuildRecord(st)
	summary := BuildSummary(record)

	s.logger.Info("plan_formatted", "summary_length", len(summary), "notices", len(record.Notices))
	return st.SetFinalOutput(&state.FormattedPlan{
		Summary: summary,
		Record:  record,
	})
}

// BuildRecord assembles the structured half of the final output.
func BuildRecord(st *state.PlanningState) state.PlanRecord {
	templatesUsed := make([]string, 0, len(st.RetrievedTemplates))
	for _, match := range st.RetrievedTemplates {
		templatesUsed = append(templatesUsed, match.SourceEventID)
	}

	return state.PlanRecord{
		PlanID:        st.PlanID,
		RawRequest:    st.RawRequest,
		Intent:        st.Intent,
		Details:       *st.Extracted,
		Draft:         *st.DraftPlan,
		Tools:         *st.ToolResults,
		Schedule:      st.Schedule,
		TemplatesUsed: templatesUsed,
		Notices:       st.Notices(),
	}
}

// BuildSummary renders the human-readable half. Deterministic: calling it
// twice on the same record yields byte-identical text.
func BuildSummary(record state.PlanRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Event Plan %s\n", record.PlanID)
	fmt.Fprintf(&b, "Intent: %s\n", record.Intent)
	fmt.Fprintf(&b, "Guests: %d", record.Details.GuestCount)
	if record.Details.GuestCountAssumed {
		b.WriteString(" (assumed)")
	}
	b.WriteString("\n")
	if record.Details.Date != nil {
		fmt.Fprintf(&b, "Date: %s\n", *record.Details.Date)
	}

	fmt.Fprintf(&b, "\nVenue: %s\n", record.Draft.VenueSuggestion)
	if record.Tools.CapacityKnown {
		fmt.Fprintf(&b, "Capacity check: %s\n", okLabel(record.Tools.CapacityOK))
	} else {
		b.WriteString("Capacity check: unknown venue, assumed to fit\n")
	}

	if len(record.Draft.MenuItems) > 0 {
		b.WriteString("\nMenu:\n")
		for _, item := range record.Draft.MenuItems {
			if item.EstUnitCost != nil {
				fmt.Fprintf(&b, "  - %s (%.2f per guest)\n", item.Name, *item.EstUnitCost)
			} else {
				fmt.Fprintf(&b, "  - %s\n", item.Name)
			}
		}
		fmt.Fprintf(&b, "Estimated menu total: %.2f\n", record.Tools.MenuTotalCost)
	}

	if record.Tools.BudgetAllocated {
		b.WriteString("\nBudget breakdown:\n")
		categories := make([]string, 0, len(record.Tools.BudgetBreakdown))
		for name := range record.Tools.BudgetBreakdown {
			categories = append(categories, name)
		}
		sort.Strings(categories)
		for _, name := range categories {
			fmt.Fprintf(&b, "  - %s: %.2f\n", name, record.Tools.BudgetBreakdown[name])
		}
	}

	if len(record.Schedule) > 0 {
		b.WriteString("\nSchedule:\n")
		for _, item := range record.Schedule {
			fmt.Fprintf(&b, "  %s - %s: %s\n",
				clock(item.StartOffsetMinutes),
				clock(item.StartOffsetMinutes+item.DurationMinutes),
				item.Label,
			)
		}
	}

	if len(record.Tools.ShoppingList) > 0 {
		b.WriteString("\nShopping list:\n")
		for _, item := range record.Tools.ShoppingList {
			fmt.Fprintf(&b, "  - %s [%s, %s]\n", item.Item, item.Category, item.Priority)
		}
	}

	if record.Draft.NarrativeSummary != "" {
		fmt.Fprintf(&b, "\n%s\n", record.Draft.NarrativeSummary)
	}

	if len(record.Notices) > 0 {
		b.WriteString("\nNotes:\n")
		for _, notice := range record.Notices {
			fmt.Fprintf(&b, "  - [%s] %s\n", notice.Stage, notice.Message)
		}
	}

	return b.String()
}

func okLabel(ok bool) string {
	if ok {
		return "ok"
	}
	return "over capacity"
}

// clock renders a minute offset as +H:MM from event start.
func clock(minutes int) string {
	return fmt.Sprintf("+%d:%02d", minutes/60, minutes%60)
}
