package intake

import (
	"regexp"
	"strings"
)

var (
	runOfSpaces   = regexp.MustCompile(`\s+`)
	runOfNewlines = regexp.MustCompile(`\n\n\n+`)
)

// CleanText normalizes line endings and whitespace while keeping headings,
// bullets and paragraph breaks intact.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	// At most one blank line between blocks
	result := runOfNewlines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(result)
}

func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" {
		return ""
	}

	indent := strings.Repeat(" ", len(line)-len(trimmed))
	if strings.HasPrefix(trimmed, "#") {
		return trimmed
	}
	if isBulletLine(trimmed) {
		return indent + trimmed
	}
	return indent + runOfSpaces.ReplaceAllString(trimmed, " ")
}

func isBulletLine(line string) bool {
	for _, marker := range []string{"- ", "* ", "• ", "· "} {
		if strings.HasPrefix(line, marker) {
			return true
		}
	}
	return false
}
