package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func skillSet(high, other int) []Skill {
	var skills []Skill
	for i := 0; i < high; i++ {
		skills = append(skills, Skill{Name: "h", Found: true, Relevance: RelevanceHigh})
	}
	for i := 0; i < other; i++ {
		skills = append(skills, Skill{Name: "o", Found: true, Relevance: RelevanceLow})
	}
	// a missing skill never counts
	return append(skills, Skill{Name: "missing", Found: false, Relevance: RelevanceHigh})
}

func TestRateCompatibility_Thresholds(t *testing.T) {
	tests := []struct {
		name    string
		overall int
		high    int
		other   int
		want    Verdict
	}{
		{name: "excellent at boundary", overall: 85, high: 3, want: VerdictExcellent},
		{name: "84 falls through", overall: 84, high: 3, want: VerdictFair},
		{name: "excellent needs three high", overall: 95, high: 2, other: 3, want: VerdictGood},
		{name: "good at boundary", overall: 70, other: 5, want: VerdictGood},
		{name: "good needs five found", overall: 70, other: 4, want: VerdictFair},
		{name: "fair at boundary", overall: 50, other: 3, want: VerdictFair},
		{name: "poor below fifty", overall: 49, high: 3, other: 5, want: VerdictPoor},
		{name: "poor with few skills", overall: 100, other: 2, want: VerdictPoor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RateCompatibility(PersonalInfo{}, skillSet(tt.high, tt.other), ATSScore{Score: tt.overall})
			assert.Equal(t, tt.want, got.Verdict)
		})
	}
}

func TestRateCompatibility_ScoreFormula(t *testing.T) {
	got := RateCompatibility(PersonalInfo{}, skillSet(2, 3), ATSScore{Score: 78})

	// (78 + 5*5 + 2*10) / 2 = 61.5
	assert.Equal(t, 62, got.Score)
	assert.Equal(t, VerdictGood, got.Verdict)
}

func TestRateCompatibility_ScoreCapped(t *testing.T) {
	got := RateCompatibility(PersonalInfo{}, skillSet(6, 10), ATSScore{Score: 100})

	// (100 + 80 + 60) / 2 = 120
	assert.Equal(t, 100, got.Score)
}

func TestRateCompatibility_ReasoningMentionsCounts(t *testing.T) {
	got := RateCompatibility(PersonalInfo{}, skillSet(3, 1), ATSScore{Score: 90})

	assert.Equal(t, VerdictExcellent, got.Verdict)
	assert.Contains(t, got.Reasoning, "4 relevant skills")
	assert.Contains(t, got.Reasoning, "90%")
	assert.Contains(t, got.Reasoning, "3 high-priority skills")

	poor := RateCompatibility(PersonalInfo{}, nil, ATSScore{Score: 24})
	assert.Equal(t, VerdictPoor, poor.Verdict)
	assert.Contains(t, poor.Reasoning, "24%")
	assert.Contains(t, poor.Reasoning, "Only 0 relevant skills")
	assert.Equal(t, 12, poor.Score)
}

// PersonalInfo is part of the signature but not read by the current rules.
func TestRateCompatibility_IgnoresPersonalInfo(t *testing.T) {
	skills := skillSet(3, 2)
	ats := ATSScore{Score: 88}

	withInfo := RateCompatibility(PersonalInfo{Name: "Jane Doe", Title: "Software Engineer"}, skills, ats)
	without := RateCompatibility(PersonalInfo{}, skills, ats)

	assert.Equal(t, without, withInfo)
}
