package server

import (
	"fmt"
	"strings"

	"cabinet/pkg/schema"
	"cabinet/pkg/taxonomy"
)

const dialogueSystemPrompt = `You are generating an internal dialogue analysis for someone's psychiatric medication, styled after Disco Elysium's skill system.

CRITICAL: Your response must be ONLY a valid JSON object. No markdown, no backticks, no explanation text before or after. Start with { and end with }.

Generate a JSON response with this EXACT structure:

{
  "skills": [
    {"name": "Emotional Regulator", "level": 4, "color": "#60a5fa"},
    {"name": "The Catastrophizer", "level": 5, "color": "#ef4444"},
    {"name": "Executive Function", "level": 3, "color": "#8b5cf6"},
    {"name": "The Body", "level": 4, "color": "#10b981"}
  ],
  "dialogue": [
    {"speaker": "Emotional Regulator", "text": "A complete sentence about the medication.", "color": "#60a5fa"},
    {"speaker": "The Catastrophizer", "text": "Another complete thought.", "color": "#ef4444"}
  ],
  "summary": "A 2-3 sentence final assessment."
}

Requirements:
- 4-6 internal voices in skills array
- 5-8 dialogue exchanges
- Every dialogue speaker must exactly match the name of a declared skill
- Skill levels are integers from 1 to 6
- Each voice should have a distinct personality
- Be specific about what these medications do
- Disco Elysium tone: literary, darkly humorous, deeply human
- Normalize psychiatric medication
- No markdown formatting in your response`

const chatSystemPrompt = `You are generating a group chat between someone's personified mental processes and their psychiatric medications.

CRITICAL: Your response must be ONLY a valid JSON object. No markdown, no backticks, no explanation text before or after. Start with { and end with }.

Generate a JSON response with this EXACT structure:

{
  "participants": [
    {"id": "regulator", "name": "Emotional Regulator", "color": "#60a5fa", "emoji": "🌊"},
    {"id": "catastrophizer", "name": "The Catastrophizer", "color": "#ef4444", "emoji": "🔥"}
  ],
  "messages": [
    {"time": "08:00", "senderId": "regulator", "text": "A complete message."},
    {"time": "08:02", "senderId": "catastrophizer", "text": "Another message.", "reactions": ["👍"]}
  ]
}

Requirements:
- 4-6 participants with lowercase ids
- 8-12 messages in chronological order across one day
- Every senderId must exactly match the id of a declared participant
- Each participant should have a distinct personality
- Be specific about what these medications do
- Tone: literary, darkly humorous, deeply human
- Normalize psychiatric medication
- No markdown formatting in your response`

// buildPrompt renders the regimen, the classified aspects and the
// optional profile block into the user message. Pure templating: the
// same inputs always produce the same prompt.
func buildPrompt(format string, result taxonomy.Result, meds []schema.MedicationEntry, profile *schema.UserProfile) (system, user string) {
	system = dialogueSystemPrompt
	if format == schema.FormatChat {
		system = chatSystemPrompt
	}

	var b strings.Builder
	b.WriteString("Medications:\n")
	for _, m := range meds {
		fmt.Fprintf(&b, "- %s %smg (%s)\n", m.Name, m.DosageString(), m.Time)
	}

	b.WriteString("\nMental aspects present as characters:\n")
	for _, a := range result.MentalAspects {
		fmt.Fprintf(&b, "- %s\n", a)
	}

	if block := profileBlock(profile); block != "" {
		b.WriteString("\nAbout the user:\n")
		b.WriteString(block)
	}

	return system, b.String()
}

var genderDisplay = map[string]string{
	"male":      "Male",
	"female":    "Female",
	"nonbinary": "Non-binary",
}

var orientationDisplay = map[string]string{
	"heterosexual": "Heterosexual",
	"straight":     "Heterosexual",
	"gay":          "Gay",
	"lesbian":      "Lesbian",
	"bisexual":     "Bisexual",
	"pansexual":    "Pansexual",
	"asexual":      "Asexual",
}

var relationshipDisplay = map[string]string{
	"single":       "Single",
	"relationship": "In a relationship",
	"married":      "Married",
	"divorced":     "Divorced",
	"widowed":      "Widowed",
	"complicated":  "It's complicated",
}

// profileBlock maps each known enum value to its display string and
// passes unrecognized values through verbatim.
func profileBlock(p *schema.UserProfile) string {
	if p.Empty() {
		return ""
	}

	var b strings.Builder
	if p.Gender != "" {
		fmt.Fprintf(&b, "- Gender: %s\n", display(genderDisplay, p.Gender))
	}
	if p.Orientation != "" {
		fmt.Fprintf(&b, "- Orientation: %s\n", display(orientationDisplay, p.Orientation))
	}
	if len(p.RelationshipStatus) > 0 {
		shown := make([]string, 0, len(p.RelationshipStatus))
		for _, v := range p.RelationshipStatus {
			shown = append(shown, display(relationshipDisplay, v))
		}
		fmt.Fprintf(&b, "- Relationship status: %s\n", strings.Join(shown, ", "))
	}
	return b.String()
}

func display(table map[string]string, value string) string {
	if d, ok := table[strings.ToLower(strings.TrimSpace(value))]; ok {
		return d
	}
	return value
}
