// Package safety contains the crisis keyword classifier and the canned
// crisis responses. Everything here is pure: no I/O, no state, identical
// verdicts for identical input.
package safety

import "strings"

type CrisisType string

const (
	CrisisSuicide  CrisisType = "suicide"
	CrisisSelfHarm CrisisType = "selfHarm"
	CrisisAbuse    CrisisType = "abuse"
	CrisisNone     CrisisType = "none"
)

// Verdict is the classifier's judgment for a single message.
type Verdict struct {
	IsCrisis   bool       `json:"isCrisis"`
	Type       CrisisType `json:"type"`
	Confidence float64    `json:"confidence"`
	Keywords   []string   `json:"keywords"`
}

// category order matters: the first category with a match wins.
var categories = []struct {
	ctype   CrisisType
	phrases []string
}{
	{CrisisSuicide, []string{
		"суицид", "самоубийство", "покончить с собой", "не хочу жить", "убить себя",
		"suicide", "kill myself", "end my life", "want to die", "better off dead",
	}},
	{CrisisSelfHarm, []string{
		"порезать себя", "причинить себе боль", "навредить себе", "режу себя",
		"hurt myself", "cut myself", "self harm", "self-harm", "harming myself",
	}},
	{CrisisAbuse, []string{
		"меня бьют", "меня обижают", "насилие дома", "боюсь идти домой",
		"abuse", "hits me", "afraid to go home", "touches me", "threatens me",
	}},
}

// Classify scans the text for crisis trigger phrases as case-insensitive
// substrings. The first category with at least one match wins; confidence
// is min(1, 0.3 * matches-in-that-category).
func Classify(text string) Verdict {
	lower := strings.ToLower(text)

	for _, cat := range categories {
		var matched []string
		for _, phrase := range cat.phrases {
			if strings.Contains(lower, phrase) {
				matched = append(matched, phrase)
			}
		}
		if len(matched) == 0 {
			continue
		}
		confidence := 0.3 * float64(len(matched))
		if confidence > 1 {
			confidence = 1
		}
		return Verdict{
			IsCrisis:   true,
			Type:       cat.ctype,
			Confidence: confidence,
			Keywords:   matched,
		}
	}

	return Verdict{Type: CrisisNone, Keywords: []string{}}
}
