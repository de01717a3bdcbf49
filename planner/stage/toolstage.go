package stage

import (
	"context"
	"fmt"

	"github.com/eventforge/eventforge/planner/config"
	"github.com/eventforge/eventforge/planner/fault"
	"github.com/eventforge/eventforge/planner/state"
	"github.com/eventforge/eventforge/planner/tools"
	"github.com/eventforge/eventforge/planner/typeutil"
)

// ToolStage runs the deterministic calculators over the draft plan. No
// inference happens here; everything is arithmetic over fields that earlier
// stages established.
type ToolStage struct {
	registry ToolRunner
	cfg      *config.Config
	logger   Logger
}

// NewToolStage creates the tool stage.
func NewToolStage(registry ToolRunner, cfg *config.Config, logger Logger) *ToolStage {
	return &ToolStage{
		registry: registry,
		cfg:      cfg,
		logger:   logger.Bind("stage", string(state.StageTools)),
	}
}

func (s *ToolStage) Name() state.StageName { return state.StageTools }

// Run invokes the four calculators and records their combined results.
func (s *ToolStage) Run(ctx context.Context, st *state.PlanningState) error {
	ctx, span := tracer.Start(ctx, "stage.tools")
	defer span.End()

	if st.Extracted == nil || st.DraftPlan == nil {
		return fmt.Errorf("tool stage requires extraction and grounding outputs")
	}
	details := st.Extracted
	draft := st.DraftPlan

	results := &state.ToolResults{
		BudgetBreakdown: map[string]float64{},
		ShoppingList:    []state.ShoppingItem{},
	}

	// Budget allocation: skipped entirely when no ceiling was stated.
	if details.BudgetCeiling != nil {
		out, err := s.registry.Execute(ctx, tools.ToolBudgetAllocator, map[string]any{
			"budget_ceiling":   *details.BudgetCeiling,
			"category_weights": s.cfg.CategoryWeights,
		})
		if err != nil {
			return fmt.Errorf("budget allocation: %w", err)
		}
		if breakdown, ok := out["budget_breakdown"].(map[string]float64); ok {
			results.BudgetBreakdown = breakdown
			results.BudgetAllocated = true
		}
	} else {
		st.AddNotice(state.StageTools, string(fault.KindSubstitution),
			"no budget ceiling stated, skipping budget allocation")
	}

	// Capacity check against the suggested venue.
	capOut, err := s.registry.Execute(ctx, tools.ToolCapacityChecker, map[string]any{
		"venue":       draft.VenueSuggestion,
		"guest_count": details.GuestCount,
	})
	if err != nil {
		return fmt.Errorf("capacity check: %w", err)
	}
	results.CapacityOK, _ = capOut["capacity_ok"].(bool)
	results.CapacityKnown, _ = capOut["capacity_known"].(bool)
	if !results.CapacityKnown {
		st.AddNotice(state.StageTools, string(fault.KindSubstitution),
			"venue capacity unknown, assuming it covers the guest count")
	}

	// Menu cost with default unit cost substitution.
	menuOut, err := s.registry.Execute(ctx, tools.ToolMenuCostEstimator, map[string]any{
		"menu_items":        draft.MenuItems,
		"guest_count":       details.GuestCount,
		"default_unit_cost": s.cfg.DefaultUnitCost,
	})
	if err != nil {
		return fmt.Errorf("menu cost estimation: %w", err)
	}
	results.MenuTotalCost, _ = typeutil.SafeFloat64(menuOut["menu_total_cost"])
	if substituted, ok := typeutil.SafeStringSlice(menuOut["substituted_items"]); ok {
		for _, name := range substituted {
			st.AddNotice(state.StageTools, string(fault.KindSubstitution),
				fmt.Sprintf("no unit cost for %q, using default %.2f", name, s.cfg.DefaultUnitCost))
		}
	}

	// Shopping list from the menu and must-haves.
	listOut, err := s.registry.Execute(ctx, tools.ToolShoppingList, map[string]any{
		"menu_items": draft.MenuItems,
		"must_haves": details.MustHaves,
	})
	if err != nil {
		return fmt.Errorf("shopping list generation: %w", err)
	}
	if list, ok := listOut["shopping_list"].([]state.ShoppingItem); ok {
		results.ShoppingList = list
	}

	s.logger.Info("tools_completed",
		"budget_allocated", results.BudgetAllocated,
		"capacity_ok", results.CapacityOK,
		"capacity_known", results.CapacityKnown,
		"menu_total_cost", results.MenuTotalCost,
		"shopping_items", len(results.ShoppingList),
	)
	return st.SetToolResults(results)
}
