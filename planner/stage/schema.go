package stage

import (
	"github.com/eventforge/eventforge/planner/fault"
	"github.com/eventforge/eventforge/planner/state"
	"github.com/eventforge/eventforge/planner/typeutil"
)

// Decoders for the loosely typed JSON objects produced by inference. Each
// returns a SchemaMismatchError naming the structural problems so the
// corrective retry can quote them back to the model.

// decodeExtractedDetails validates and converts an extraction response.
// A guest count of zero or less is treated as absent, never an error.
func decodeExtractedDetails(obj map[string]any) (*state.ExtractedDetails, error) {
	var problems []string

	details := &state.ExtractedDetails{MustHaves: []string{}}

	if raw, present := obj["date"]; present && raw != nil {
		date, ok := typeutil.SafeString(raw)
		if !ok {
			problems = append(problems, "date must be a string or null")
		} else if date != "" {
			details.Date = &date
		}
	}

	if raw, present := obj["guest_count"]; present && raw != nil {
		count, ok := typeutil.SafeInt(raw)
		if !ok {
			problems = append(problems, "guest_count must be a number or null")
		} else if count > 0 {
			details.GuestCount = count
		}
	}

	if raw, present := obj["budget_ceiling"]; present && raw != nil {
		ceiling, ok := typeutil.SafeFloat64(raw)
		if !ok {
			problems = append(problems, "budget_ceiling must be a number or null")
		} else {
			details.BudgetCeiling = &ceiling
		}
	}

	if raw, present := obj["must_haves"]; present && raw != nil {
		items, ok := typeutil.SafeStringSlice(raw)
		if !ok {
			problems = append(problems, "must_haves must be an array of strings")
		} else {
			details.MustHaves = items
		}
	}

	if len(problems) > 0 {
		return nil, fault.NewSchemaMismatchError("extracted_details", problems...)
	}
	return details, nil
}

// decodeDraftPlan validates and converts a composition response.
func decodeDraftPlan(obj map[string]any) (*state.DraftPlan, error) {
	var problems []string

	draft := &state.DraftPlan{
		GuestList:     []state.GuestSlot{},
		MenuItems:     []state.MenuItem{},
		ScheduleHints: []string{},
	}

	if raw, ok := typeutil.SafeSlice(obj["guest_list"]); ok {
		for _, entry := range raw {
			m, ok := typeutil.SafeMapStringAny(entry)
			if !ok {
				problems = append(problems, "guest_list entries must be objects")
				break
			}
			draft.GuestList = append(draft.GuestList, state.GuestSlot{
				NamePlaceholder: typeutil.SafeStringDefault(m["name_placeholder"], ""),
				Role:            typeutil.SafeStringDefault(m["role"], ""),
			})
		}
	} else if obj["guest_list"] != nil {
		problems = append(problems, "guest_list must be an array")
	}

	venue, ok := typeutil.SafeString(obj["venue_suggestion"])
	if !ok {
		problems = append(problems, "venue_suggestion must be a string")
	}
	draft.VenueSuggestion = venue

	if raw, ok := typeutil.SafeSlice(obj["menu_items"]); ok {
		for _, entry := range raw {
			m, ok := typeutil.SafeMapStringAny(entry)
			if !ok {
				problems = append(problems, "menu_items entries must be objects")
				break
			}
			item := state.MenuItem{Name: typeutil.SafeStringDefault(m["name"], "")}
			if cost, ok := typeutil.SafeFloat64(m["est_unit_cost"]); ok {
				item.EstUnitCost = &cost
			}
			draft.MenuItems = append(draft.MenuItems, item)
		}
	} else if obj["menu_items"] != nil {
		problems = append(problems, "menu_items must be an array")
	}

	if raw, present := obj["schedule_hints"]; present && raw != nil {
		hints, ok := typeutil.SafeStringSlice(raw)
		if !ok {
			problems = append(problems, "schedule_hints must be an array of strings")
		} else {
			draft.ScheduleHints = hints
		}
	}

	summary, ok := typeutil.SafeString(obj["narrative_summary"])
	if !ok {
		problems = append(problems, "narrative_summary must be a string")
	}
	draft.NarrativeSummary = summary

	if len(problems) > 0 {
		return nil, fault.NewSchemaMismatchError("draft_plan", problems...)
	}
	return draft, nil
}
