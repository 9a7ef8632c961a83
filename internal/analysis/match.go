package analysis

import "strings"

// MatchSkills reports each required skill in input order, then appends any
// AdditionalSkills found in the text that are not already listed.
func MatchSkills(text string, requiredSkills []string) []Skill {
	lower := strings.ToLower(text)
	skills := make([]Skill, 0, len(requiredSkills))

	for _, name := range requiredSkills {
		skills = append(skills, Skill{
			Name:      name,
			Found:     strings.Contains(lower, strings.ToLower(name)),
			Relevance: RelevanceOf(name),
		})
	}

	for _, name := range AdditionalSkills {
		if !strings.Contains(lower, name) || hasSkill(skills, name) {
			continue
		}
		skills = append(skills, Skill{
			Name:      name,
			Found:     true,
			Relevance: RelevanceOf(name),
		})
	}

	return skills
}

func hasSkill(skills []Skill, lowerName string) bool {
	for _, s := range skills {
		if strings.ToLower(s.Name) == lowerName {
			return true
		}
	}
	return false
}

func foundSkills(skills []Skill) []Skill {
	var out []Skill
	for _, s := range skills {
		if s.Found {
			out = append(out, s)
		}
	}
	return out
}
