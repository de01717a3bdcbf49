// Package state defines the PlanningState - the single mutable record
// threaded through every pipeline stage.
//
// Ownership discipline: each pipeline-owned field has exactly one writer
// stage. Fields are written through setters that reject a second write, so a
// stage can never clobber the output of an earlier stage.
package state

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// STAGE NAMES
// =============================================================================

// StageName identifies one pipeline stage.
type StageName string

const (
	StageIntent     StageName = "intent"
	StageExtraction StageName = "extraction"
	StageRetrieval  StageName = "retrieval"
	StageGrounding  StageName = "grounding"
	StageTools      StageName = "tools"
	StageSchedule   StageName = "schedule"
	StageFormat     StageName = "format"
)

// =============================================================================
// INTENT
// =============================================================================

// Intent is the closed-set classification of the event type. It drives
// downstream defaults (schedule phases, event duration).
type Intent string

const (
	IntentUnset       Intent = ""
	IntentBirthday    Intent = "birthday"
	IntentCorporate   Intent = "corporate"
	IntentWedding     Intent = "wedding"
	IntentBabyShower  Intent = "baby_shower"
	IntentFarewell    Intent = "farewell"
	IntentAnniversary Intent = "anniversary"
	IntentGeneric     Intent = "generic"
)

// AllIntents lists every valid classification label, GENERIC last.
func AllIntents() []Intent {
	return []Intent{
		IntentBirthday,
		IntentCorporate,
		IntentWedding,
		IntentBabyShower,
		IntentFarewell,
		IntentAnniversary,
		IntentGeneric,
	}
}

// ParseIntent maps a label to an Intent. Unknown labels report ok=false; the
// classifier treats that as the GENERIC fallback rather than a failure.
func ParseIntent(label string) (Intent, bool) {
	for _, intent := range AllIntents() {
		if string(intent) == label {
			return intent, true
		}
	}
	return IntentGeneric, false
}

// =============================================================================
// STAGE RECORDS
// =============================================================================

// ExtractedDetails is the structured request record produced by the Detail
// Extractor. Optional fields stay nil when the request text gives no signal;
// the extractor never invents a date or budget.
type ExtractedDetails struct {
	Date              *string  `json:"date,omitempty"`
	GuestCount        int      `json:"guest_count"`
	GuestCountAssumed bool     `json:"guest_count_assumed"`
	BudgetCeiling     *float64 `json:"budget_ceiling,omitempty"`
	MustHaves         []string `json:"must_haves"`
}

// GuestSlot is one entry in a draft guest list.
type GuestSlot struct {
	NamePlaceholder string `json:"name_placeholder"`
	Role            string `json:"role"`
}

// MenuItem is one dish or beverage with an optional estimated unit cost.
type MenuItem struct {
	Name        string   `json:"name"`
	EstUnitCost *float64 `json:"est_unit_cost,omitempty"`
}

// DraftPlan is the generation output of the Grounding Composer: a plan
// skeleton before the deterministic calculators ground its numbers.
type DraftPlan struct {
	GuestList        []GuestSlot `json:"guest_list"`
	VenueSuggestion  string      `json:"venue_suggestion"`
	MenuItems        []MenuItem  `json:"menu_items"`
	ScheduleHints    []string    `json:"schedule_hints"`
	NarrativeSummary string      `json:"narrative_summary"`
}

// TemplateMatch is one retrieved past plan with its similarity score in [0,1].
type TemplateMatch struct {
	SourceEventID   string    `json:"source_event_id"`
	SimilarityScore float64   `json:"similarity_score"`
	TemplatePayload DraftPlan `json:"template_payload"`
}

// ShoppingItem is one entry on the generated shopping list.
type ShoppingItem struct {
	Item     string `json:"item"`
	Category string `json:"category"` // food, decoration, supplies
	Priority string `json:"priority"` // essential, optional
}

// ToolResults holds the outputs of the deterministic tool layer.
type ToolResults struct {
	// BudgetBreakdown maps category to allocated amount. Amounts sum to
	// exactly the budget ceiling; empty when no ceiling was stated.
	BudgetBreakdown map[string]float64 `json:"budget_breakdown"`
	BudgetAllocated bool               `json:"budget_allocated"`

	// CapacityOK is true iff the venue's implied capacity covers the guest
	// count. CapacityKnown is false when the venue text matched no known
	// keyword and the assume-ok policy applied.
	CapacityOK    bool `json:"capacity_ok"`
	CapacityKnown bool `json:"capacity_known"`

	MenuTotalCost float64        `json:"menu_total_cost"`
	ShoppingList  []ShoppingItem `json:"shopping_list"`
}

// ScheduleItem is one timed activity. Sequences are ordered by start offset
// and non-overlapping; the last item's end equals the event duration.
type ScheduleItem struct {
	StartOffsetMinutes int    `json:"start_offset_minutes"`
	DurationMinutes    int    `json:"duration_minutes"`
	Label              string `json:"label"`
}

// FormattedPlan is the terminal artifact: a human-readable summary plus the
// full structured record.
type FormattedPlan struct {
	Summary string     `json:"summary"`
	Record  PlanRecord `json:"record"`
}

// PlanRecord is the structured half of the final output.
type PlanRecord struct {
	PlanID        string           `json:"plan_id"`
	RawRequest    string           `json:"raw_request"`
	Intent        Intent           `json:"intent"`
	Details       ExtractedDetails `json:"details"`
	Draft         DraftPlan        `json:"draft"`
	Tools         ToolResults      `json:"tools"`
	Schedule      []ScheduleItem   `json:"schedule"`
	TemplatesUsed []string         `json:"templates_used"`
	Notices       []StageError     `json:"notices"`
}

// =============================================================================
// STAGE ERRORS
// =============================================================================

// StageError is one entry in the append-only error log. Non-fatal
// substitution notices and fatal failures share this shape; only fatal
// entries halt the run.
type StageError struct {
	Stage      StageName `json:"stage"`
	Kind       string    `json:"kind"`
	Message    string    `json:"message"`
	Retryable  bool      `json:"retryable"`
	Fatal      bool      `json:"fatal"`
	OccurredAt time.Time `json:"occurred_at"`
}

// =============================================================================
// PLANNING STATE
// =============================================================================

// PlanningState is created once per request by the orchestrator, passed by
// exclusive reference through the stages, and discarded after the run.
type PlanningState struct {
	PlanID     string    `json:"plan_id"`
	RawRequest string    `json:"raw_request"`
	ReceivedAt time.Time `json:"received_at"`

	Intent             Intent            `json:"intent"`
	Extracted          *ExtractedDetails `json:"extracted,omitempty"`
	RetrievedTemplates []TemplateMatch   `json:"retrieved_templates,omitempty"`
	DraftPlan          *DraftPlan        `json:"draft_plan,omitempty"`
	ToolResults        *ToolResults      `json:"tool_results,omitempty"`
	Schedule           []ScheduleItem    `json:"schedule,omitempty"`
	FinalOutput        *FormattedPlan    `json:"final_output,omitempty"`

	Errors []StageError `json:"errors"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`

	written map[StageName]bool
}

// New creates a PlanningState for one raw request.
func New(rawRequest string) *PlanningState {
	return &PlanningState{
		PlanID:     "plan_" + uuid.New().String()[:16],
		RawRequest: rawRequest,
		ReceivedAt: time.Now().UTC(),
		Errors:     []StageError{},
		written:    make(map[StageName]bool),
	}
}

func (s *PlanningState) claim(stage StageName) error {
	if s.written == nil {
		s.written = make(map[StageName]bool)
	}
	if s.written[stage] {
		return fmt.Errorf("stage %s attempted a second write to its output field", stage)
	}
	s.written[stage] = true
	return nil
}

// Written reports whether the named stage has written its output field.
func (s *PlanningState) Written(stage StageName) bool {
	return s.written[stage]
}

// SetIntent records the classification result. Write-once.
func (s *PlanningState) SetIntent(intent Intent) error {
	if err := s.claim(StageIntent); err != nil {
		return err
	}
	s.Intent = intent
	return nil
}

// SetExtracted records the structured request details. Write-once.
func (s *PlanningState) SetExtracted(details *ExtractedDetails) error {
	if err := s.claim(StageExtraction); err != nil {
		return err
	}
	s.Extracted = details
	return nil
}

// SetRetrievedTemplates records the similarity matches. An empty sequence is
// a valid result. Write-once.
func (s *PlanningState) SetRetrievedTemplates(matches []TemplateMatch) error {
	if err := s.claim(StageRetrieval); err != nil {
		return err
	}
	if matches == nil {
		matches = []TemplateMatch{}
	}
	s.RetrievedTemplates = matches
	return nil
}

// SetDraftPlan records the generated plan skeleton. Write-once.
func (s *PlanningState) SetDraftPlan(draft *DraftPlan) error {
	if err := s.claim(StageGrounding); err != nil {
		return err
	}
	s.DraftPlan = draft
	return nil
}

// SetToolResults records the deterministic calculator outputs. Write-once.
func (s *PlanningState) SetToolResults(results *ToolResults) error {
	if err := s.claim(StageTools); err != nil {
		return err
	}
	s.ToolResults = results
	return nil
}

// SetSchedule records the built schedule. Write-once.
func (s *PlanningState) SetSchedule(items []ScheduleItem) error {
	if err := s.claim(StageSchedule); err != nil {
		return err
	}
	s.Schedule = items
	return nil
}

// SetFinalOutput records the terminal artifact and stamps completion.
// Write-once; requires every preceding stage output to be present.
func (s *PlanningState) SetFinalOutput(plan *FormattedPlan) error {
	if !s.Complete() {
		return fmt.Errorf("final output set before all stage outputs are present")
	}
	if err := s.claim(StageFormat); err != nil {
		return err
	}
	s.FinalOutput = plan
	now := time.Now().UTC()
	s.CompletedAt = &now
	return nil
}

// Complete reports whether all six stage outputs preceding the formatter
// have been written.
func (s *PlanningState) Complete() bool {
	for _, stage := range []StageName{
		StageIntent, StageExtraction, StageRetrieval,
		StageGrounding, StageTools, StageSchedule,
	} {
		if !s.written[stage] {
			return false
		}
	}
	return true
}

// AddError appends a fatal or retryable failure record.
func (s *PlanningState) AddError(stage StageName, kind, message string, retryable bool) {
	s.Errors = append(s.Errors, StageError{
		Stage:      stage,
		Kind:       kind,
		Message:    message,
		Retryable:  retryable,
		Fatal:      true,
		OccurredAt: time.Now().UTC(),
	})
}

// AddNotice appends a non-fatal record, e.g. a substitution notice.
func (s *PlanningState) AddNotice(stage StageName, kind, message string) {
	s.Errors = append(s.Errors, StageError{
		Stage:      stage,
		Kind:       kind,
		Message:    message,
		OccurredAt: time.Now().UTC(),
	})
}

// Notices returns the non-fatal entries of the error log.
func (s *PlanningState) Notices() []StageError {
	notices := make([]StageError, 0, len(s.Errors))
	for _, e := range s.Errors {
		if !e.Fatal {
			notices = append(notices, e)
		}
	}
	return notices
}
