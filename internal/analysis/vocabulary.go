package analysis

import (
	"slices"
	"strings"
)

// Static vocabularies used by the scorer and the skill matcher.
// They are package data so tests and callers can inspect them.

// HighRelevanceSkills are the lower-cased skill names rated high.
var HighRelevanceSkills = []string{"react", "typescript", "python", "javascript", "node.js", "aws"}

// MediumRelevanceSkills are the lower-cased skill names rated medium.
var MediumRelevanceSkills = []string{"html", "css", "docker", "kubernetes", "graphql", "mongodb"}

// LowRelevanceSkills are listed for completeness; any skill outside the
// high and medium tiers is rated low.
var LowRelevanceSkills = []string{"git", "agile", "scrum", "jira", "slack", "figma"}

// AdditionalSkills are reported when present in the text even if not required.
var AdditionalSkills = []string{
	"machine learning", "tensorflow", "keras", "opencv", "scikit-learn",
	"numpy", "pandas", "flask", "django", "express", "mongodb", "postgresql",
}

// SectionHeadings are the résumé sections checked by the format sub-score.
var SectionHeadings = []string{"experience", "education", "skills", "projects"}

// JobTitleWords are the role words checked by the experience sub-score.
var JobTitleWords = []string{"developer", "engineer", "analyst", "manager", "lead", "senior"}

// TechnicalVocabulary is the fixed list counted by the skills sub-score.
var TechnicalVocabulary = []string{
	"javascript", "python", "java", "react", "node", "sql", "html", "css",
	"typescript", "angular", "vue", "php", "c++", "c#", "ruby", "go",
}

// technicalSaturation is the hit count at which the skills sub-score reaches 100.
// It is deliberately smaller than len(TechnicalVocabulary).
const technicalSaturation = 8

// defaultKeywordsScore is the keywords sub-score when no skills are required.
const defaultKeywordsScore = 80

// Sub-score weights for the overall ATS score.
const (
	weightKeywords   = 0.30
	weightFormat     = 0.20
	weightExperience = 0.25
	weightSkills     = 0.25
)

// RelevanceOf returns the tier of a skill name, matched case-insensitively.
func RelevanceOf(name string) Relevance {
	lower := strings.ToLower(name)
	switch {
	case slices.Contains(HighRelevanceSkills, lower):
		return RelevanceHigh
	case slices.Contains(MediumRelevanceSkills, lower):
		return RelevanceMedium
	default:
		return RelevanceLow
	}
}
