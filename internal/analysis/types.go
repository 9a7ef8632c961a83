// Package analysis scores résumé text against a set of required skills.
//
// Every function in this package is pure: the same text and skill list always
// produce the same result, and no function returns an error. Missing data is
// reported through sentinel strings instead.
package analysis

// Sentinel values used when an extraction rule finds nothing.
const (
	NotFound     = "Not found"
	NotSpecified = "Not specified"
)

// Relevance is the importance tier of a skill for the target role.
type Relevance string

// Relevance tiers
const (
	RelevanceHigh   Relevance = "high"
	RelevanceMedium Relevance = "medium"
	RelevanceLow    Relevance = "low"
)

// Verdict is the four-level compatibility rating.
type Verdict string

// Verdict levels, best first
const (
	VerdictExcellent Verdict = "excellent"
	VerdictGood      Verdict = "good"
	VerdictFair      Verdict = "fair"
	VerdictPoor      Verdict = "poor"
)

// PersonalInfo holds the candidate details pulled out of the résumé text.
// Unmatched fields carry NotFound or NotSpecified. Name can still be empty:
// the all-caps name pattern also accepts a whitespace-only line, which
// trims to "".
type PersonalInfo struct {
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone"`
	Location       string   `json:"location"`
	Title          string   `json:"title"`
	Experience     string   `json:"experience"`
	Education      []string `json:"education"`
	Certifications []string `json:"certifications"`
}

// Breakdown holds the four ATS sub-scores, each in [0,100].
type Breakdown struct {
	Keywords   int `json:"keywords"`
	Format     int `json:"format"`
	Experience int `json:"experience"`
	Skills     int `json:"skills"`
}

// ATSScore is the weighted composite of the breakdown.
type ATSScore struct {
	Score     int       `json:"score"`
	Breakdown Breakdown `json:"breakdown"`
}

// Skill is a single skill lookup result.
type Skill struct {
	Name      string    `json:"name"`
	Found     bool      `json:"found"`
	Relevance Relevance `json:"relevance"`
}

// CompatibilityAnalysis is the final verdict for a résumé.
// Score is computed independently from the ATS score.
type CompatibilityAnalysis struct {
	Score     int     `json:"score"`
	Verdict   Verdict `json:"verdict"`
	Reasoning string  `json:"reasoning"`
}

// Result aggregates every analysis output for one résumé.
type Result struct {
	PersonalInfo   PersonalInfo          `json:"personalInfo"`
	ATSScore       ATSScore              `json:"atsScore"`
	SkillsAnalysis []Skill               `json:"skillsAnalysis"`
	Compatibility  CompatibilityAnalysis `json:"compatibility"`
}

// FoundCount returns the number of skills marked as found.
func (r *Result) FoundCount() int {
	return len(foundSkills(r.SkillsAnalysis))
}
