package vectorstore

import (
	"context"

	"github.com/eventforge/eventforge/planner/state"
)

func cost(v float64) *float64 { return &v }

// SampleTemplates returns the built-in corpus of past example events. Each
// entry carries a description for embedding plus the structured plan payload
// injected into the generation context as an exemplar.
func SampleTemplates() []TemplateDoc {
	return []TemplateDoc{
		{
			ID:        "birthday_1",
			EventType: state.IntentBirthday,
			Text:      "Birthday party for 30 people with a moderate budget. Menu includes biryani, kebabs and a birthday cake. Timeline: welcome, games, dinner, cake cutting, music. Decorations: balloons, banners, fairy lights.",
			Payload: state.DraftPlan{
				GuestList: []state.GuestSlot{
					{NamePlaceholder: "Guest of honor", Role: "celebrant"},
					{NamePlaceholder: "Close family", Role: "family"},
					{NamePlaceholder: "Friends group", Role: "friends"},
				},
				VenueSuggestion: "community hall with party decorations",
				MenuItems: []state.MenuItem{
					{Name: "biryani", EstUnitCost: cost(9)},
					{Name: "kebabs", EstUnitCost: cost(6)},
					{Name: "birthday cake", EstUnitCost: cost(3)},
					{Name: "soft drinks", EstUnitCost: cost(2)},
				},
				ScheduleHints:    []string{"welcome", "games", "dinner", "cake cutting", "music"},
				NarrativeSummary: "A lively birthday celebration with games, a shared dinner and a cake-cutting moment.",
			},
		},
		{
			ID:        "corporate_1",
			EventType: state.IntentCorporate,
			Text:      "Corporate dinner for 50 people in a formal setting with a multi-course meal. Timeline: cocktails, welcome address, dinner, speeches, networking. Venue: hotel banquet hall with professional decor.",
			Payload: state.DraftPlan{
				GuestList: []state.GuestSlot{
					{NamePlaceholder: "Leadership team", Role: "hosts"},
					{NamePlaceholder: "Employees", Role: "attendees"},
					{NamePlaceholder: "Key clients", Role: "guests"},
				},
				VenueSuggestion: "hotel banquet hall",
				MenuItems: []state.MenuItem{
					{Name: "canapes", EstUnitCost: cost(5)},
					{Name: "multi-course dinner", EstUnitCost: cost(18)},
					{Name: "wine and cocktails", EstUnitCost: cost(10)},
				},
				ScheduleHints:    []string{"cocktails", "welcome address", "dinner", "speeches", "networking"},
				NarrativeSummary: "A formal corporate dinner with structured speeches and open networking.",
			},
		},
		{
			ID:        "baby_shower_1",
			EventType: state.IntentBabyShower,
			Text:      "Baby shower for 25 people with light refreshments, games and gifts. Timeline: welcome, games, cake, gift opening. Decorations: pastel colors and baby-themed items.",
			Payload: state.DraftPlan{
				GuestList: []state.GuestSlot{
					{NamePlaceholder: "Parents-to-be", Role: "celebrants"},
					{NamePlaceholder: "Family and friends", Role: "guests"},
				},
				VenueSuggestion: "home garden with pastel decorations",
				MenuItems: []state.MenuItem{
					{Name: "finger sandwiches", EstUnitCost: cost(4)},
					{Name: "fruit punch", EstUnitCost: cost(2)},
					{Name: "themed cake", EstUnitCost: cost(4)},
				},
				ScheduleHints:    []string{"welcome", "games", "cake", "gift opening"},
				NarrativeSummary: "A relaxed afternoon baby shower with games and gift opening.",
			},
		},
		{
			ID:        "farewell_1",
			EventType: state.IntentFarewell,
			Text:      "Farewell party for 20 people in a casual setting with snacks and drinks. Timeline: gathering, speeches, dinner, music. Venue: restaurant or home.",
			Payload: state.DraftPlan{
				GuestList: []state.GuestSlot{
					{NamePlaceholder: "Departing colleague", Role: "guest of honor"},
					{NamePlaceholder: "Team members", Role: "colleagues"},
				},
				VenueSuggestion: "casual restaurant private area",
				MenuItems: []state.MenuItem{
					{Name: "snack platters", EstUnitCost: cost(5)},
					{Name: "drinks", EstUnitCost: cost(4)},
				},
				ScheduleHints:    []string{"gathering", "speeches", "dinner", "music"},
				NarrativeSummary: "A casual farewell gathering with short speeches and shared memories.",
			},
		},
		{
			ID:        "anniversary_1",
			EventType: state.IntentAnniversary,
			Text:      "Anniversary celebration for 40 people with a romantic theme and fine dining. Timeline: cocktails, dinner, dance, cake. Decorations: flowers, candles, elegant setup.",
			Payload: state.DraftPlan{
				GuestList: []state.GuestSlot{
					{NamePlaceholder: "Celebrating couple", Role: "celebrants"},
					{NamePlaceholder: "Family", Role: "family"},
					{NamePlaceholder: "Close friends", Role: "friends"},
				},
				VenueSuggestion: "fine dining restaurant with candlelit setup",
				MenuItems: []state.MenuItem{
					{Name: "appetizer course", EstUnitCost: cost(7)},
					{Name: "main course", EstUnitCost: cost(15)},
					{Name: "anniversary cake", EstUnitCost: cost(4)},
				},
				ScheduleHints:    []string{"cocktails", "dinner", "dance", "cake"},
				NarrativeSummary: "An elegant anniversary dinner with dancing and a cake moment.",
			},
		},
		{
			ID:        "wedding_1",
			EventType: state.IntentWedding,
			Text:      "Wedding reception for 100 people: a grand celebration with full catering, decorations and music. Timeline: arrival, ceremony, dinner, dance. Multiple food stations and professional decor.",
			Payload: state.DraftPlan{
				GuestList: []state.GuestSlot{
					{NamePlaceholder: "Couple", Role: "celebrants"},
					{NamePlaceholder: "Wedding party", Role: "wedding party"},
					{NamePlaceholder: "Extended family", Role: "family"},
					{NamePlaceholder: "Friends", Role: "friends"},
				},
				VenueSuggestion: "grand ballroom with professional decor",
				MenuItems: []state.MenuItem{
					{Name: "welcome drinks", EstUnitCost: cost(4)},
					{Name: "buffet stations", EstUnitCost: cost(22)},
					{Name: "wedding cake", EstUnitCost: cost(5)},
					{Name: "dessert table", EstUnitCost: cost(6)},
				},
				ScheduleHints:    []string{"arrival", "ceremony", "dinner", "dance"},
				NarrativeSummary: "A grand wedding reception with full catering and an evening of dancing.",
			},
		},
	}
}

// Seed loads the sample corpus into the store. Called once at bootstrap,
// before any pipeline run reads the store.
func Seed(ctx context.Context, store *Store) error {
	return store.Add(ctx, SampleTemplates())
}
