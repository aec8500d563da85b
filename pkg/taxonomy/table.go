package taxonomy

import "strings"

// Label is a personified mental process appearing in the generated narrative.
type Label string

const (
	LabelYou        Label = "YOU"
	LabelMind       Label = "MIND"
	LabelBody       Label = "BODY"
	LabelEmotional  Label = "EMOTIONAL REGULATION"
	LabelAlarm      Label = "ALARM SYSTEM"
	LabelExecutive  Label = "EXECUTIVE FUNCTION"
	LabelFocus      Label = "FOCUS"
	LabelSleep      Label = "SLEEP CYCLE"
	LabelReality    Label = "REALITY FILTER"
	LabelStabilizer Label = "MOOD STABILIZER"
)

// Category is one of the clinical categories the scored variant ranks.
type Category string

const (
	Depression Category = "depression"
	Anxiety    Category = "anxiety"
	ADHD       Category = "adhd"
	Bipolar    Category = "bipolar"
	Borderline Category = "borderline"
	OCD        Category = "ocd"
	PTSD       Category = "ptsd"
	Insomnia   Category = "insomnia"
	General    Category = "general"
)

// categoryOrder fixes tie-breaking: the first category reaching the
// maximum score wins.
var categoryOrder = []Category{Depression, Anxiety, ADHD, Bipolar, Borderline, OCD, PTSD, Insomnia}

// minPrimaryScore is the weakest accumulated signal still reported as a
// specific category; anything below resolves to General. The deltas and
// thresholds here are heuristics, tunable configuration rather than
// clinical facts.
const minPrimaryScore = 2

type Scores map[Category]int

func (s Scores) add(extra Scores) {
	for cat, pts := range extra {
		s[cat] += pts
	}
}

// Group matches one pharmacological class by lowercase substring and
// declares the labels and score deltas every match contributes.
// Refine applies agent- or dosage-specific adjustments on top.
type Group struct {
	Name     string
	Triggers []string
	Labels   []Label
	Scores   Scores
	Refine   func(name string, dosage float64) ([]Label, Scores)
}

func (g Group) matches(name string) bool {
	for _, t := range g.Triggers {
		if strings.Contains(name, t) {
			return true
		}
	}
	return false
}

var groups = []Group{
	{
		Name:     "ssri",
		Triggers: []string{"sertralin", "fluoxetin", "escitalopram", "paroxetin", "citalopram", "fluvoxamin"},
		Labels:   []Label{LabelEmotional, LabelAlarm},
		Scores:   Scores{Depression: 2, Anxiety: 2, PTSD: 1},
		Refine: func(name string, dosage float64) ([]Label, Scores) {
			// High SSRI doses are typical of OCD treatment.
			extra := Scores{}
			if dosage >= 80 {
				extra[OCD] += 3
			}
			if dosage >= 150 {
				extra[OCD] += 2
			}
			return nil, extra
		},
	},
	{
		Name:     "snri",
		Triggers: []string{"venlafaxin", "duloxetin", "desvenlafaxin"},
		Labels:   []Label{LabelEmotional, LabelAlarm, LabelBody},
		Scores:   Scores{Depression: 2, Anxiety: 2, PTSD: 1},
	},
	{
		Name:     "gabapentinoid",
		Triggers: []string{"pregabalin", "gabapentin"},
		Labels:   []Label{LabelAlarm, LabelBody},
		Scores:   Scores{Anxiety: 3, PTSD: 1},
	},
	{
		Name:     "benzodiazepine",
		Triggers: []string{"clonazepam", "alprazolam", "lorazepam", "diazepam"},
		Labels:   []Label{LabelAlarm},
		Scores:   Scores{Anxiety: 3, PTSD: 1},
		Refine: func(name string, dosage float64) ([]Label, Scores) {
			if strings.Contains(name, "alprazolam") {
				return nil, Scores{Anxiety: 1}
			}
			return nil, nil
		},
	},
	{
		Name:     "stimulant",
		Triggers: []string{"metilfenidat", "methylphenidat", "lisdexanfetamin", "lisdexamfetamin", "dexanfetamin", "anfetamin", "amphetamin"},
		Labels:   []Label{LabelExecutive, LabelFocus},
		Scores:   Scores{ADHD: 5},
	},
	{
		Name:     "mood stabilizer",
		Triggers: []string{"litio", "lithium", "lamotrigin", "valproat", "carbamazepin"},
		Labels:   []Label{LabelEmotional, LabelStabilizer},
		Scores:   Scores{Bipolar: 4, Borderline: 2},
		Refine: func(name string, dosage float64) ([]Label, Scores) {
			extra := Scores{}
			if strings.Contains(name, "litio") || strings.Contains(name, "lithium") {
				extra[Bipolar] += 2
			}
			if strings.Contains(name, "lamotrigin") {
				extra[Bipolar]++
				extra[Depression]++
			}
			return nil, extra
		},
	},
	{
		Name:     "atypical antipsychotic",
		Triggers: []string{"quetiap", "olanzap", "aripiprazol", "risperidon"},
		Labels:   []Label{LabelReality, LabelEmotional},
		Scores:   Scores{OCD: 1},
		Refine: func(name string, dosage float64) ([]Label, Scores) {
			// Dosage bands shift the weight between borderline-leaning
			// (low augmentation doses) and bipolar-leaning (full doses).
			switch {
			case dosage < 100:
				return nil, Scores{Borderline: 1, Depression: 1, Anxiety: 1}
			case dosage >= 200:
				return nil, Scores{Bipolar: 3, Borderline: 1}
			default:
				return nil, Scores{Bipolar: 2, Borderline: 2}
			}
		},
	},
	{
		Name:     "sleep aid",
		Triggers: []string{"trazodo", "mirtazap", "zolpidem", "zopiclone"},
		Labels:   []Label{LabelSleep},
		Scores:   Scores{Insomnia: 2, Depression: 1},
		Refine: func(name string, dosage float64) ([]Label, Scores) {
			// Pure hypnotics regulate sleep only; the sedating
			// antidepressants also act on mood.
			if strings.Contains(name, "zolpidem") || strings.Contains(name, "zopiclone") {
				return nil, nil
			}
			extra := Scores{}
			if dosage >= 100 {
				extra[Depression] += 2
			}
			return []Label{LabelEmotional}, extra
		},
	},
	{
		Name:     "atypical antidepressant",
		Triggers: []string{"bupropion"},
		Labels:   []Label{LabelEmotional, LabelFocus},
		Scores:   Scores{Depression: 2, ADHD: 1},
	},
}
