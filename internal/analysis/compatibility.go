package analysis

import "fmt"

// verdictRule is one tier of the compatibility ladder.
type verdictRule struct {
	verdict   Verdict
	minScore  int
	minFound  int
	minHigh   int
	reasoning func(score, found, high int) string
}

// verdictRules are checked in order; the first satisfied rule wins and
// VerdictPoor applies when none match.
var verdictRules = []verdictRule{
	{
		verdict:  VerdictExcellent,
		minScore: 85,
		minHigh:  3,
		reasoning: func(score, found, high int) string {
			return fmt.Sprintf("Exceptional candidate with a strong technical foundation (%d relevant skills found). "+
				"An ATS score of %d%% indicates an excellently optimized résumé. "+
				"Strong match for the position with %d high-priority skills.", found, score, high)
		},
	},
	{
		verdict:  VerdictGood,
		minScore: 70,
		minFound: 5,
		reasoning: func(score, found, _ int) string {
			return fmt.Sprintf("Strong candidate with good technical skills (%d skills found). "+
				"An ATS score of %d%% shows solid résumé quality. "+
				"Good potential for the role with room for growth.", found, score)
		},
	},
	{
		verdict:  VerdictFair,
		minScore: 50,
		minFound: 3,
		reasoning: func(score, found, _ int) string {
			return fmt.Sprintf("Decent candidate with some relevant experience. "+
				"An ATS score of %d%% indicates the résumé could be improved. "+
				"Has %d relevant skills but may need additional training or experience.", score, found)
		},
	},
}

func poorReasoning(score, found int) string {
	return fmt.Sprintf("Limited match for the position. "+
		"An ATS score of %d%% suggests significant résumé improvements are needed. "+
		"Only %d relevant skills found, indicating a substantial skill gap.", score, found)
}

// RateCompatibility maps the ATS score and skill counts to a verdict.
//
// info is accepted for forward compatibility; the current rules do not read it.
func RateCompatibility(info PersonalInfo, skills []Skill, ats ATSScore) CompatibilityAnalysis {
	_ = info

	found := foundSkills(skills)
	high := 0
	for _, s := range found {
		if s.Relevance == RelevanceHigh {
			high++
		}
	}
	overall := ats.Score

	result := CompatibilityAnalysis{
		Verdict:   VerdictPoor,
		Reasoning: poorReasoning(overall, len(found)),
	}
	for _, rule := range verdictRules {
		if overall >= rule.minScore && len(found) >= rule.minFound && high >= rule.minHigh {
			result.Verdict = rule.verdict
			result.Reasoning = rule.reasoning(overall, len(found), high)
			break
		}
	}

	// Halve before capping; the sum alone may exceed 100.
	result.Score = min(round(float64(overall+len(found)*5+high*10)/2), 100)
	return result
}
