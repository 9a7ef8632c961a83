package analysis

import (
	"math"
	"regexp"
	"strings"
)

var (
	yearsPattern    = regexp.MustCompile(`\d+\s*(?:years?|yrs?)`)
	jobTitlePattern = regexp.MustCompile(`(?i)(` + strings.Join(JobTitleWords, "|") + `)`)
)

// CalculateATSScore computes the ATS composite for text against the required skills.
func CalculateATSScore(text string, requiredSkills []string) ATSScore {
	lower := strings.ToLower(text)

	b := Breakdown{
		Keywords:   keywordsScore(lower, requiredSkills),
		Format:     formatScore(lower),
		Experience: experienceScore(lower),
		Skills:     skillsScore(lower),
	}

	overall := round(float64(b.Keywords)*weightKeywords +
		float64(b.Format)*weightFormat +
		float64(b.Experience)*weightExperience +
		float64(b.Skills)*weightSkills)

	return ATSScore{Score: overall, Breakdown: b}
}

// keywordsScore is the percentage of required skills present in the text.
// An empty requirement list scores defaultKeywordsScore.
func keywordsScore(lower string, requiredSkills []string) int {
	if len(requiredSkills) == 0 {
		return defaultKeywordsScore
	}
	found := 0
	for _, skill := range requiredSkills {
		if strings.Contains(lower, strings.ToLower(skill)) {
			found++
		}
	}
	return round(float64(found) / float64(len(requiredSkills)) * 100)
}

func formatScore(lower string) int {
	found := countContained(lower, SectionHeadings)
	return round(float64(found) / float64(len(SectionHeadings)) * 100)
}

// experienceScore awards 50 for a "<n> years" mention and 50 for a role word.
func experienceScore(lower string) int {
	score := 0
	if yearsPattern.MatchString(lower) {
		score += 50
	}
	if jobTitlePattern.MatchString(lower) {
		score += 50
	}
	return score
}

// skillsScore saturates at technicalSaturation vocabulary hits.
func skillsScore(lower string) int {
	found := countContained(lower, TechnicalVocabulary)
	return min(round(float64(found)/technicalSaturation*100), 100)
}

func countContained(lower string, terms []string) int {
	n := 0
	for _, term := range terms {
		if strings.Contains(lower, term) {
			n++
		}
	}
	return n
}

// round rounds half up, matching the scoring rules for non-negative inputs.
func round(x float64) int {
	return int(math.Floor(x + 0.5))
}
