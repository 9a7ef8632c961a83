package analysis

// Analyze runs extraction, scoring, skill matching, and rating over the same
// input and returns the combined result.
func Analyze(text string, requiredSkills []string) Result {
	info := ExtractPersonalInfo(text)
	ats := CalculateATSScore(text, requiredSkills)
	skills := MatchSkills(text, requiredSkills)

	return Result{
		PersonalInfo:   info,
		ATSScore:       ats,
		SkillsAnalysis: skills,
		Compatibility:  RateCompatibility(info, skills, ats),
	}
}
