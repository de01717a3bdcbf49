package stage

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/eventforge/eventforge/planner/state"
)

// Prompt templates for the three inference-backed stages. Built with
// fmt.Sprintf rather than a template engine; the slots are few and fixed.

const intentSystemPrompt = `You are an event planning assistant. Classify the user's request into exactly one category.`

const intentPromptTemplate = `Analyze the user's input and classify their intent.

User Input: %s

Classify the intent into one of these categories:
%s

Respond with only the category name.`

func buildIntentPrompt(rawRequest string) string {
	labels := make([]string, 0, len(state.AllIntents()))
	for _, intent := range state.AllIntents() {
		labels = append(labels, "- "+string(intent))
	}
	return fmt.Sprintf(intentPromptTemplate, rawRequest, strings.Join(labels, "\n"))
}

const extractionSystemPrompt = `You are an event planning assistant. Extract structured information from the request. Respond with a single JSON object and nothing else.`

const extractionPromptTemplate = `Extract structured information from the user's event planning request.

User Input: %s

Return a JSON object with exactly these fields:
- "date": the event date as written in the request, or null if not mentioned
- "guest_count": number of guests as an integer, or null if not mentioned
- "budget_ceiling": total budget as a number, or null if not mentioned
- "must_haves": array of specific requirements or preferences mentioned, [] if none

Never invent a date, guest count or budget that the request does not state.`

func buildExtractionPrompt(rawRequest string) string {
	return fmt.Sprintf(extractionPromptTemplate, rawRequest)
}

// extractionRetryInstruction is appended for the one corrective retry after a
// malformed response.
const extractionRetryInstruction = `

Your previous response was not a valid JSON object. Respond with ONLY the JSON object, no markdown, no explanations.`

const composeSystemPrompt = `You are an expert event planner. Use the retrieved templates as guidance to create a structured event plan, customized for the specific request. Adapt the templates, never copy them verbatim. Respond with a single JSON object and nothing else.`

const composePromptTemplate = `Retrieved Templates:
%s

User Request: %s
Intent: %s
Extracted Information:
%s

Create an event plan as a JSON object with exactly these fields:
- "guest_list": array of objects with "name_placeholder" and "role"
- "venue_suggestion": a venue description string
- "menu_items": array of objects with "name" and optional "est_unit_cost" (number, cost per guest)
- "schedule_hints": array of activity names in order
- "narrative_summary": a short paragraph describing the event

Customize for the stated guest count, budget and must-haves. Do not leave any list empty.`

func buildComposePrompt(st *state.PlanningState) string {
	var context strings.Builder
	if len(st.RetrievedTemplates) == 0 {
		context.WriteString("No templates found.")
	}
	for i, match := range st.RetrievedTemplates {
		payload, _ := json.MarshalIndent(match.TemplatePayload, "", "  ")
		fmt.Fprintf(&context, "Template %d (source: %s, relevance: %.3f):\n%s\n\n",
			i+1, match.SourceEventID, match.SimilarityScore, payload)
	}

	extracted, _ := json.MarshalIndent(st.Extracted, "", "  ")
	return fmt.Sprintf(composePromptTemplate,
		strings.TrimRight(context.String(), "\n"),
		st.RawRequest,
		st.Intent,
		extracted,
	)
}

// composeRetryInstruction is appended with the validation problems for the
// one corrective retry after a schema mismatch.
func composeRetryInstruction(problems []string) string {
	return fmt.Sprintf(`

Your previous response failed validation: %s. Respond with ONLY the corrected JSON object.`, strings.Join(problems, "; "))
}
