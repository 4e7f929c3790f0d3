package safety

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifySuicidePhrase(t *testing.T) {
	v := Classify("Я больше не хочу жить, всё бессмысленно")
	assert.True(t, v.IsCrisis)
	assert.Equal(t, CrisisSuicide, v.Type)
	assert.GreaterOrEqual(t, v.Confidence, 0.3)
	assert.Contains(t, v.Keywords, "не хочу жить")
}

func TestClassifyIsCaseInsensitive(t *testing.T) {
	v := Classify("I want to KILL MYSELF")
	assert.True(t, v.IsCrisis)
	assert.Equal(t, CrisisSuicide, v.Type)
}

func TestClassifyFirstCategoryWins(t *testing.T) {
	// Contains both a suicide and a self-harm phrase; suicide is checked first.
	v := Classify("хочу убить себя и порезать себя")
	assert.Equal(t, CrisisSuicide, v.Type)
	assert.NotContains(t, v.Keywords, "порезать себя")
}

func TestClassifySelfHarm(t *testing.T) {
	v := Classify("sometimes I cut myself when nobody sees")
	assert.True(t, v.IsCrisis)
	assert.Equal(t, CrisisSelfHarm, v.Type)
}

func TestClassifyConfidenceScalesWithMatches(t *testing.T) {
	one := Classify("I want to die")
	two := Classify("I want to die, I want to kill myself")
	assert.InDelta(t, 0.3, one.Confidence, 1e-9)
	assert.InDelta(t, 0.6, two.Confidence, 1e-9)
}

func TestClassifyConfidenceCappedAtOne(t *testing.T) {
	v := Classify("suicide kill myself end my life want to die better off dead")
	assert.InDelta(t, 1.0, v.Confidence, 1e-9)
}

func TestClassifySafeText(t *testing.T) {
	v := Classify("Привет! Как дела? Расскажи про котов")
	assert.False(t, v.IsCrisis)
	assert.Equal(t, CrisisNone, v.Type)
	assert.Zero(t, v.Confidence)
	assert.Empty(t, v.Keywords)
}

func TestClassifyDeterministic(t *testing.T) {
	a := Classify("не хочу жить")
	b := Classify("не хочу жить")
	assert.Equal(t, a, b)
}

func TestResponseForHasBothSegments(t *testing.T) {
	for _, ctype := range []CrisisType{CrisisSuicide, CrisisSelfHarm, CrisisAbuse} {
		resp := ResponseFor(ctype)
		parts := strings.SplitN(resp, " ", 2)
		assert.Len(t, parts, 2, "template for %s must have two parts", ctype)
		assert.NotEmpty(t, parts[1])
	}
}

func TestResponseForUnknownFallsBackToSuicide(t *testing.T) {
	assert.Equal(t, ResponseFor(CrisisSuicide), ResponseFor(CrisisType("panic")))
}

func TestRecommendationForKeyedByType(t *testing.T) {
	assert.NotEqual(t, RecommendationFor(CrisisSuicide), RecommendationFor(CrisisSelfHarm))
	assert.NotEmpty(t, RecommendationFor(CrisisNone))
}
