package schema

import (
	"fmt"
	"strings"
)

// Colors shared by the fallback characters and the prompt examples.
const (
	ColorRegulator      = "#60a5fa"
	ColorCatastrophizer = "#ef4444"
	ColorExecutive      = "#8b5cf6"
	ColorBody           = "#10b981"
)

// FallbackNarrative renders the deterministic offline narrative used when
// the generation pipeline is unavailable. It never touches the network.
func FallbackNarrative(meds []MedicationEntry, format string) any {
	if format == FormatChat {
		return fallbackChat(meds)
	}
	return fallbackDialogue(meds)
}

func fallbackDialogue(meds []MedicationEntry) *DialogueNarrative {
	regulatorLevel := 3
	if hasSSRI(meds) {
		regulatorLevel = 4
	}

	plural := ""
	if len(meds) > 1 {
		plural = "s"
	}
	first := meds[0].Name

	return &DialogueNarrative{
		Skills: []Skill{
			{Name: "Emotional Regulator", Level: regulatorLevel, Color: ColorRegulator},
			{Name: "The Catastrophizer", Level: 5, Color: ColorCatastrophizer},
			{Name: "Executive Function", Level: 2, Color: ColorExecutive},
			{Name: "The Body", Level: 4, Color: ColorBody},
		},
		Dialogue: []DialogueLine{
			{Speaker: "Emotional Regulator", Text: fmt.Sprintf("So we're taking %d medication%s now. That's... actually kind of responsible.", len(meds), plural), Color: ColorRegulator},
			{Speaker: "The Catastrophizer", Text: "But what if people find out? What if they think we're broken?", Color: ColorCatastrophizer},
			{Speaker: "Executive Function", Text: "Can we not do this right now? We've got a routine. We're showing up. That counts.", Color: ColorExecutive},
			{Speaker: "The Body", Text: fmt.Sprintf("The %s... I can feel it working. Not in a bad way. Just... present.", first), Color: ColorBody},
			{Speaker: "Emotional Regulator", Text: "Look, nobody's handing out medals for suffering without help. This is fine.", Color: ColorRegulator},
			{Speaker: "The Catastrophizer", Text: "I guess... I guess we're still here. That's something.", Color: ColorCatastrophizer},
		},
		Summary: "You're doing the work. The chemistry just makes it possible to show up. And showing up is half the battle.",
	}
}

func fallbackChat(meds []MedicationEntry) *ChatNarrative {
	plural := ""
	if len(meds) > 1 {
		plural = "s"
	}
	first := meds[0].Name

	return &ChatNarrative{
		Participants: []Participant{
			{ID: "regulator", Name: "Emotional Regulator", Color: ColorRegulator, Emoji: "🌊"},
			{ID: "catastrophizer", Name: "The Catastrophizer", Color: ColorCatastrophizer, Emoji: "🔥"},
			{ID: "executive", Name: "Executive Function", Color: ColorExecutive, Emoji: "📋"},
			{ID: "body", Name: "The Body", Color: ColorBody, Emoji: "🫀"},
		},
		Messages: []ChatMessage{
			{Time: "08:00", SenderID: "regulator", Text: fmt.Sprintf("Morning check-in: %d medication%s logged. We're on schedule.", len(meds), plural)},
			{Time: "08:01", SenderID: "catastrophizer", Text: "On schedule for WHAT exactly. What if it stops working."},
			{Time: "08:02", SenderID: "executive", Text: "Not the time. Routine holds. Next item.", Reactions: []string{"👍"}},
			{Time: "08:05", SenderID: "body", Text: fmt.Sprintf("The %s just landed. Systems nominal. Carry on.", first)},
			{Time: "08:06", SenderID: "regulator", Text: "See? Still here. Still steady. That's the whole job."},
		},
	}
}

func hasSSRI(meds []MedicationEntry) bool {
	for _, m := range meds {
		name := strings.ToLower(m.Name)
		if strings.Contains(name, "sertralin") || strings.Contains(name, "fluoxetin") || strings.Contains(name, "escitalopram") {
			return true
		}
	}
	return false
}
