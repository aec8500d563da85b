package server

import (
	"encoding/json"
	"fmt"
	"strings"

	"cabinet/pkg/schema"
	"cabinet/pkg/utils"
)

// speakerMatchThreshold tolerates small spelling drift between a
// dialogue speaker and its declared skill before failing closed.
const speakerMatchThreshold = 0.85

// validateNarrative checks that the repaired payload is one of the two
// accepted shapes and that every line resolves to a declared character.
func validateNarrative(raw json.RawMessage, format string) error {
	if format == schema.FormatChat {
		return validateChat(raw)
	}
	return validateDialogue(raw)
}

func validateDialogue(raw json.RawMessage) error {
	var n schema.DialogueNarrative
	if err := json.Unmarshal(raw, &n); err != nil {
		return fmt.Errorf("narrative does not match the dialogue shape: %w", err)
	}
	if len(n.Skills) == 0 {
		return fmt.Errorf("narrative declares no skills")
	}
	if len(n.Dialogue) == 0 {
		return fmt.Errorf("narrative has no dialogue")
	}
	if strings.TrimSpace(n.Summary) == "" {
		return fmt.Errorf("narrative has no summary")
	}

	for _, s := range n.Skills {
		if s.Level < 1 || s.Level > 6 {
			return fmt.Errorf("skill %q has level %d outside 1..6", s.Name, s.Level)
		}
	}
	for i, line := range n.Dialogue {
		if !matchesSkill(line.Speaker, n.Skills) {
			return fmt.Errorf("dialogue line %d speaker %q matches no declared skill", i, line.Speaker)
		}
	}
	return nil
}

func matchesSkill(speaker string, skills []schema.Skill) bool {
	for _, s := range skills {
		if utils.Similarity(speaker, s.Name) >= speakerMatchThreshold {
			return true
		}
	}
	return false
}

func validateChat(raw json.RawMessage) error {
	var n schema.ChatNarrative
	if err := json.Unmarshal(raw, &n); err != nil {
		return fmt.Errorf("narrative does not match the chat shape: %w", err)
	}
	if len(n.Participants) == 0 {
		return fmt.Errorf("narrative declares no participants")
	}
	if len(n.Messages) == 0 {
		return fmt.Errorf("narrative has no messages")
	}

	ids := make(map[string]struct{}, len(n.Participants))
	for _, p := range n.Participants {
		if p.ID == "" {
			return fmt.Errorf("participant %q has an empty id", p.Name)
		}
		ids[strings.ToLower(p.ID)] = struct{}{}
	}
	for i, m := range n.Messages {
		if _, ok := ids[strings.ToLower(m.SenderID)]; !ok {
			return fmt.Errorf("message %d senderId %q matches no declared participant", i, m.SenderID)
		}
	}
	return nil
}
