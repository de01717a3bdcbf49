package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/eventforge/eventforge/planner/state"
	"github.com/eventforge/eventforge/planner/typeutil"
)

// Handler is a function that executes one calculator over loosely typed
// parameters.
type Handler func(ctx context.Context, params map[string]any) (map[string]any, error)

// Definition carries a calculator's metadata and handler.
type Definition struct {
	Name        string
	Description string
	Handler     Handler
}

// Registry executes calculators by name.
type Registry struct {
	tools map[string]*Definition
	mu    sync.RWMutex
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]*Definition),
	}
}

// Register registers a calculator.
func (r *Registry) Register(def *Definition) error {
	if def.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if def.Handler == nil {
		return fmt.Errorf("tool handler is required for '%s'", def.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.tools[def.Name] = def
	return nil
}

// Execute executes a calculator by name.
func (r *Registry) Execute(ctx context.Context, name string, params map[string]any) (map[string]any, error) {
	r.mu.RLock()
	def, exists := r.tools[name]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("tool not found: %s", name)
	}

	return def.Handler(ctx, params)
}

// Has checks if a calculator is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.tools[name]
	return exists
}

// List returns all registered calculator names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// =============================================================================
// BUILT-IN CALCULATORS
// =============================================================================

const (
	ToolBudgetAllocator   = "budget_allocator"
	ToolCapacityChecker   = "capacity_checker"
	ToolMenuCostEstimator = "menu_cost_estimator"
	ToolShoppingList      = "shopping_list_generator"
)

// NewDefaultRegistry creates a Registry with the four built-in calculators
// registered.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, def := range []*Definition{
		{
			Name:        ToolBudgetAllocator,
			Description: "Split a budget ceiling across categories by weight",
			Handler:     budgetAllocatorHandler,
		},
		{
			Name:        ToolCapacityChecker,
			Description: "Check whether a venue's implied capacity covers the guest count",
			Handler:     capacityCheckerHandler,
		},
		{
			Name:        ToolMenuCostEstimator,
			Description: "Estimate total menu cost for the guest count",
			Handler:     menuCostEstimatorHandler,
		},
		{
			Name:        ToolShoppingList,
			Description: "Derive a prioritized shopping list from the menu and must-haves",
			Handler:     shoppingListHandler,
		},
	} {
		// Registration of the built-ins cannot fail.
		_ = r.Register(def)
	}
	return r
}

func budgetAllocatorHandler(_ context.Context, params map[string]any) (map[string]any, error) {
	ceiling, _ := typeutil.SafeFloat64(params["budget_ceiling"])
	weights, _ := params["category_weights"].(map[string]float64)

	breakdown, err := AllocateBudget(ceiling, weights)
	if err != nil {
		return nil, err
	}
	return map[string]any{"budget_breakdown": breakdown}, nil
}

func capacityCheckerHandler(_ context.Context, params map[string]any) (map[string]any, error) {
	venue := typeutil.SafeStringDefault(params["venue"], "")
	guests, _ := typeutil.SafeInt(params["guest_count"])

	ok, known, capacity := CheckCapacity(venue, guests)
	return map[string]any{
		"capacity_ok":    ok,
		"capacity_known": known,
		"capacity":       capacity,
	}, nil
}

func menuCostEstimatorHandler(_ context.Context, params map[string]any) (map[string]any, error) {
	menu, _ := params["menu_items"].([]state.MenuItem)
	guests, _ := typeutil.SafeInt(params["guest_count"])
	defaultCost, _ := typeutil.SafeFloat64(params["default_unit_cost"])

	total, substituted := EstimateMenuCost(menu, guests, defaultCost)
	return map[string]any{
		"menu_total_cost":   total,
		"substituted_items": substituted,
	}, nil
}

func shoppingListHandler(_ context.Context, params map[string]any) (map[string]any, error) {
	menu, _ := params["menu_items"].([]state.MenuItem)
	mustHaves, _ := typeutil.SafeStringSlice(params["must_haves"])

	return map[string]any{
		"shopping_list": BuildShoppingList(menu, mustHaves),
	}, nil
}
