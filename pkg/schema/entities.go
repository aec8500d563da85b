package schema

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

const (
	TimeMorning   = "morning"
	TimeAfternoon = "afternoon"
	TimeNight     = "night"
)

// MedicationEntry is one row of the user's regimen as the client stores it.
type MedicationEntry struct {
	Name   string  `json:"name"`
	Dosage float64 `json:"dosage"`
	Time   string  `json:"time"`
}

// Valid reports whether the entry can be classified at all.
func (m MedicationEntry) Valid() bool {
	if strings.TrimSpace(m.Name) == "" || m.Dosage <= 0 {
		return false
	}
	switch m.Time {
	case TimeMorning, TimeAfternoon, TimeNight:
		return true
	}
	return false
}

// DosageString renders the dosage without trailing zeros, e.g. 50 -> "50", 2.5 -> "2.5".
func (m MedicationEntry) DosageString() string {
	return strconv.FormatFloat(m.Dosage, 'f', -1, 64)
}

// MedicationCharacter is the personified form of a medication entry,
// e.g. {"name": "SERTRALINA 50MG", "type": "medication"}.
type MedicationCharacter struct {
	Name string `json:"name"`
	Kind string `json:"type"`
}

// StringList accepts either a bare string or an array of strings on the wire.
// Older clients send relationshipStatus as a single value.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one == "" {
			*l = nil
		} else {
			*l = StringList{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = many
	return nil
}

// UserProfile carries optional free-form context for the narrative.
// Every field is independently optional.
type UserProfile struct {
	Gender             string     `json:"gender,omitempty"`
	Orientation        string     `json:"orientation,omitempty"`
	RelationshipStatus StringList `json:"relationshipStatus,omitempty"`
}

func (p *UserProfile) Empty() bool {
	return p == nil || (p.Gender == "" && p.Orientation == "" && len(p.RelationshipStatus) == 0)
}

// Report is one completed analysis kept for operator inspection.
// Persisted to Reports.json on shutdown.
type Report struct {
	ID          string            `json:"id"`
	CreatedAt   string            `json:"created_at"`
	Medications []MedicationEntry `json:"medications"`
	Primary     string            `json:"primary_category,omitempty"`
	Format      string            `json:"format"`
	Narrative   json.RawMessage   `json:"narrative"`
}

func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
