package analysis

import (
	"fmt"
	"regexp"
	"strings"
)

// field identifies the PersonalInfo field a rule writes to.
type field int

const (
	fieldName field = iota
	fieldEmail
	fieldPhone
	fieldLocation
	fieldTitle
	fieldExperience
)

// matchRule sets a single field from the first match of its pattern.
// Rules sharing a field are tried in order and the first hit wins.
type matchRule struct {
	field   field
	pattern *regexp.Regexp
	value   func(match []string) string
}

// collectRule appends every match of its pattern to a list field.
type collectRule struct {
	pattern *regexp.Regexp
}

func wholeMatch(m []string) string { return m[0] }

// personalInfoRules are evaluated top to bottom.
var personalInfoRules = []matchRule{
	{
		field:   fieldName,
		pattern: regexp.MustCompile(`(?m)^([A-Z][a-z]+ [A-Z][a-z]+|[A-Z\s]+)$`),
		value:   func(m []string) string { return strings.TrimSpace(m[1]) },
	},
	{
		field:   fieldEmail,
		pattern: regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`),
		value:   wholeMatch,
	},
	{
		field:   fieldPhone,
		pattern: regexp.MustCompile(`\+?[1-9]?[\d\s\-()]{8,15}`),
		value:   wholeMatch,
	},
	{
		field:   fieldLocation,
		pattern: regexp.MustCompile(`(?i)([A-Z][a-z]+,?\s+[A-Z]{2}|India|USA|Canada|UK)`),
		value:   wholeMatch,
	},
	// Title families in priority order: software/web, data/ML, devops/systems.
	{
		field:   fieldTitle,
		pattern: regexp.MustCompile(`(?i)(?:software|web|full.stack|front.end|back.end).{0,20}(?:developer|engineer)`),
		value:   wholeMatch,
	},
	{
		field:   fieldTitle,
		pattern: regexp.MustCompile(`(?i)(?:data|machine learning|ai|ml).{0,20}(?:engineer|scientist|analyst)`),
		value:   wholeMatch,
	},
	{
		field:   fieldTitle,
		pattern: regexp.MustCompile(`(?i)(?:devops|system).{0,20}engineer`),
		value:   wholeMatch,
	},
	{
		field:   fieldExperience,
		pattern: regexp.MustCompile(`(?i)(\d+)\+?\s*(?:years?|yrs?)(?:\s+of)?\s+(?:experience|exp)`),
		value:   func(m []string) string { return fmt.Sprintf("%s+ years", m[1]) },
	},
}

var educationRules = []collectRule{
	{pattern: regexp.MustCompile(`(?i)(?:bachelor|master|phd|b\.?[se]|m\.?[se]|ph\.?d).*?(?:computer|software|engineering|technology|science)`)},
	{pattern: regexp.MustCompile(`(?i)(?:b\.?e\.?|m\.?e\.?|b\.?tech|m\.?tech).*?(?:\d{4})?`)},
}

var certificationRules = []collectRule{
	{pattern: regexp.MustCompile(`(?i)(?:certified|certification).*?(?:aws|azure|google|oracle|microsoft)`)},
	{pattern: regexp.MustCompile(`(?i)(?:internship|intern).*?(?:at|with|in)\s+[\w\s]+`)},
}

// ExtractPersonalInfo pulls candidate details out of raw résumé text.
// It never fails; fields without a match hold a sentinel value.
func ExtractPersonalInfo(text string) PersonalInfo {
	values := map[field]string{
		fieldName:       NotFound,
		fieldEmail:      NotFound,
		fieldPhone:      NotFound,
		fieldLocation:   NotSpecified,
		fieldTitle:      NotSpecified,
		fieldExperience: NotSpecified,
	}

	matched := make(map[field]bool, len(values))
	for _, rule := range personalInfoRules {
		if matched[rule.field] {
			continue
		}
		if m := rule.pattern.FindStringSubmatch(text); m != nil {
			values[rule.field] = rule.value(m)
			matched[rule.field] = true
		}
	}

	return PersonalInfo{
		Name:           values[fieldName],
		Email:          values[fieldEmail],
		Phone:          values[fieldPhone],
		Location:       values[fieldLocation],
		Title:          values[fieldTitle],
		Experience:     values[fieldExperience],
		Education:      collect(text, educationRules),
		Certifications: collect(text, certificationRules),
	}
}

// collect gathers all matches of every rule in rule order, falling back to
// a single NotSpecified entry.
func collect(text string, rules []collectRule) []string {
	var out []string
	for _, rule := range rules {
		out = append(out, rule.pattern.FindAllString(text, -1)...)
	}
	if len(out) == 0 {
		return []string{NotSpecified}
	}
	return out
}
