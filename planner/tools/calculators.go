// Package tools provides the deterministic tool layer: pure calculators that
// take structured numeric inputs and produce numeric or boolean outputs.
// Nothing in this package calls inference.
package tools

import (
	"math"
	"sort"
	"strings"

	"github.com/eventforge/eventforge/planner/fault"
	"github.com/eventforge/eventforge/planner/state"
)

// =============================================================================
// BUDGET ALLOCATOR
// =============================================================================

// AllocateBudget splits a budget ceiling across categories proportionally to
// the given weights. The allocation sums to exactly the ceiling: amounts are
// computed in cents and the rounding remainder goes to the highest-weighted
// category (alphabetical tie-break). A negative ceiling is a hard validation
// error.
func AllocateBudget(ceiling float64, weights map[string]float64) (map[string]float64, error) {
	if ceiling < 0 {
		return nil, fault.NewValidationError("budget_ceiling", "must be non-negative")
	}
	if len(weights) == 0 {
		return nil, fault.NewValidationError("category_weights", "must not be empty")
	}

	categories := make([]string, 0, len(weights))
	for name := range weights {
		categories = append(categories, name)
	}
	sort.Strings(categories)

	totalCents := int64(math.Round(ceiling * 100))
	allocated := make(map[string]int64, len(weights))
	var sum int64
	for _, name := range categories {
		cents := int64(weights[name] * float64(totalCents))
		allocated[name] = cents
		sum += cents
	}

	// Remainder to the largest category.
	largest := categories[0]
	for _, name := range categories[1:] {
		if weights[name] > weights[largest] {
			largest = name
		}
	}
	allocated[largest] += totalCents - sum

	breakdown := make(map[string]float64, len(allocated))
	for name, cents := range allocated {
		breakdown[name] = float64(cents) / 100
	}
	return breakdown, nil
}

// =============================================================================
// CAPACITY CHECKER
// =============================================================================

// venueCapacity maps venue keywords to implied capacity. Scanned in order;
// the first keyword found in the venue text wins.
var venueCapacity = []struct {
	keyword  string
	capacity int
}{
	{"ballroom", 250},
	{"banquet", 150},
	{"hall", 200},
	{"hotel", 150},
	{"park", 150},
	{"garden", 100},
	{"rooftop", 80},
	{"restaurant", 60},
	{"cafe", 40},
	{"backyard", 30},
	{"home", 25},
}

// CheckCapacity reports whether the venue's implied capacity covers the guest
// count. The venue text is unstructured, so the lookup is a keyword
// heuristic; an unknown venue reports ok=true with known=false so callers can
// surface the caveat.
func CheckCapacity(venue string, guestCount int) (ok bool, known bool, capacity int) {
	lowered := strings.ToLower(venue)
	for _, entry := range venueCapacity {
		if strings.Contains(lowered, entry.keyword) {
			return guestCount <= entry.capacity, true, entry.capacity
		}
	}
	// Unknown venue: assume it fits, flag the assumption.
	return true, false, 0
}

// =============================================================================
// MENU COST ESTIMATOR
// =============================================================================

// EstimateMenuCost computes sum(unit_cost * guest_count) over the menu.
// Items without a unit cost use defaultUnitCost; their names are returned so
// the caller can record substitution notices. Never fails.
func EstimateMenuCost(items []state.MenuItem, guestCount int, defaultUnitCost float64) (total float64, substituted []string) {
	for _, item := range items {
		unitCost := defaultUnitCost
		if item.EstUnitCost != nil {
			unitCost = *item.EstUnitCost
		} else {
			substituted = append(substituted, item.Name)
		}
		total += unitCost * float64(guestCount)
	}
	return math.Round(total*100) / 100, substituted
}

// =============================================================================
// SHOPPING LIST GENERATOR
// =============================================================================

// BuildShoppingList derives a prioritized shopping list from the draft menu
// and the request's must-have items.
func BuildShoppingList(menu []state.MenuItem, mustHaves []string) []state.ShoppingItem {
	list := make([]state.ShoppingItem, 0, len(menu)+len(mustHaves))
	seen := make(map[string]bool)

	for _, item := range menu {
		key := strings.ToLower(item.Name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		list = append(list, state.ShoppingItem{
			Item:     item.Name,
			Category: "food",
			Priority: "essential",
		})
	}
	for _, item := range mustHaves {
		key := strings.ToLower(item)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		list = append(list, state.ShoppingItem{
			Item:     item,
			Category: "supplies",
			Priority: "essential",
		})
	}
	return list
}
