// Package taxonomy maps medication names onto the fixed cast of
// personified mental processes and, in the scored variant, infers the
// most likely clinical category behind a regimen.
//
// Matching is substring-based and case-insensitive, never tokenized: a
// trigger hidden inside an unrelated word still matches. That false
// positive is accepted; the table is tuned for recall on the brand and
// generic names users actually type.
package taxonomy

import (
	"strings"

	"cabinet/pkg/schema"
)

// Result is the deterministic classification of one medication list.
type Result struct {
	// MentalAspects keeps first-seen order so output is stable across runs.
	MentalAspects []Label                      `json:"mentalAspects"`
	Medications   []schema.MedicationCharacter `json:"medications"`
	Primary       Category                     `json:"primaryCategory"`
	Scores        Scores                       `json:"scores"`
}

// Classify maps a non-empty medication list to its character labels and
// scored category inference. It is a pure function over the input: the
// empty-list case is rejected by the caller, unknown names simply add no
// labels beyond YOU and the generic MIND/BODY pair.
func Classify(meds []schema.MedicationEntry) Result {
	aspects := []Label{LabelYou}
	seen := map[Label]struct{}{LabelYou: {}}
	add := func(labels ...Label) {
		for _, l := range labels {
			if _, ok := seen[l]; ok {
				continue
			}
			seen[l] = struct{}{}
			aspects = append(aspects, l)
		}
	}

	scores := Scores{}
	chars := make([]schema.MedicationCharacter, 0, len(meds))

	for _, med := range meds {
		chars = append(chars, schema.MedicationCharacter{
			Name: strings.ToUpper(med.Name) + " " + med.DosageString() + "MG",
			Kind: "medication",
		})

		name := strings.ToLower(med.Name)
		for _, g := range groups {
			if !g.matches(name) {
				continue
			}
			add(g.Labels...)
			scores.add(g.Scores)
			if g.Refine != nil {
				extraLabels, extraScores := g.Refine(name, med.Dosage)
				add(extraLabels...)
				scores.add(extraScores)
			}
		}
	}

	if len(aspects) == 1 {
		add(LabelMind, LabelBody)
	}

	return Result{
		MentalAspects: aspects,
		Medications:   chars,
		Primary:       primary(scores),
		Scores:        scores,
	}
}

// primary picks the strictly highest-scoring category, first seen wins
// ties, and falls back to General when the signal is too weak to report.
func primary(scores Scores) Category {
	best := General
	max := 0
	for _, cat := range categoryOrder {
		if scores[cat] > max {
			max = scores[cat]
			best = cat
		}
	}
	if max < minPrimaryScore {
		return General
	}
	return best
}
