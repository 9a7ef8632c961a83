// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-analyzer/internal/analysis"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// barWidth is the width of score bars
	barWidth = 20
)

// Printer handles formatted output for analysis reports
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad truncates or right-pads s to exactly width runes.
func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n > width {
		runes := []rune(s)
		return string(runes[:width-3]) + "..."
	}
	return s + strings.Repeat(" ", width-n)
}

// bar renders a 0-100 score as a fixed-width bar.
func bar(score int) string {
	score = max(0, min(score, 100))
	filled := score * barWidth / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

// PrintAnalysis outputs the full report for one résumé.
func (p *Printer) PrintAnalysis(name string, result *analysis.Result) {
	if result == nil {
		return
	}
	p.PrintPersonalInfo(name, &result.PersonalInfo)
	p.PrintATSScore(&result.ATSScore)
	p.PrintSkills(result.SkillsAnalysis)
	p.PrintCompatibility(&result.Compatibility)
}

// PrintPersonalInfo outputs the extracted candidate details.
func (p *Printer) PrintPersonalInfo(name string, info *analysis.PersonalInfo) {
	if info == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:       %s\n", info.Name))
	sb.WriteString(fmt.Sprintf("Title:      %s\n", info.Title))
	sb.WriteString(fmt.Sprintf("Email:      %s\n", info.Email))
	sb.WriteString(fmt.Sprintf("Phone:      %s\n", strings.TrimSpace(info.Phone)))
	sb.WriteString(fmt.Sprintf("Location:   %s\n", info.Location))
	sb.WriteString(fmt.Sprintf("Experience: %s\n", info.Experience))

	writeList(&sb, "Education", info.Education)
	writeList(&sb, "Certifications", info.Certifications)

	title := "CANDIDATE"
	if name != "" {
		title += " · " + name
	}
	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

func writeList(sb *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString("\n" + label + ":\n")
	count := min(len(items), maxItemsToShow)
	for _, item := range items[:count] {
		sb.WriteString(fmt.Sprintf("  • %s\n", item))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
}

// PrintATSScore outputs the overall score and its breakdown.
func (p *Printer) PrintATSScore(score *analysis.ATSScore) {
	if score == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Overall     %s %3d\n\n", bar(score.Score), score.Score))
	b := score.Breakdown
	sb.WriteString(fmt.Sprintf("Keywords    %s %3d\n", bar(b.Keywords), b.Keywords))
	sb.WriteString(fmt.Sprintf("Format      %s %3d\n", bar(b.Format), b.Format))
	sb.WriteString(fmt.Sprintf("Experience  %s %3d\n", bar(b.Experience), b.Experience))
	sb.WriteString(fmt.Sprintf("Skills      %s %3d", bar(b.Skills), b.Skills))

	p.printBox("ATS SCORE", sb.String())
}

// PrintSkills outputs the matched skills, found ones first in input order.
func (p *Printer) PrintSkills(skills []analysis.Skill) {
	if len(skills) == 0 {
		p.printBox("SKILLS", "No skills matched")
		return
	}

	var sb strings.Builder
	found := 0
	for _, s := range skills {
		mark := "✗"
		if s.Found {
			mark = "✓"
			found++
		}
		sb.WriteString(fmt.Sprintf("%s %-28s %s\n", mark, s.Name, s.Relevance))
	}
	sb.WriteString(fmt.Sprintf("\n%d of %d found", found, len(skills)))

	p.printBox("SKILLS", sb.String())
}

// PrintCompatibility outputs the verdict and reasoning.
func (p *Printer) PrintCompatibility(c *analysis.CompatibilityAnalysis) {
	if c == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Verdict: %s (%d/100)\n", strings.ToUpper(string(c.Verdict)), c.Score))
	sb.WriteString(bar(c.Score) + "\n\n")
	for _, line := range wrap(c.Reasoning, boxWidth-4) {
		sb.WriteString(line + "\n")
	}

	p.printBox("COMPATIBILITY", strings.TrimSuffix(sb.String(), "\n"))
}

// SummaryRow is one line of a multi-file summary.
type SummaryRow struct {
	Name    string
	Score   int
	Verdict analysis.Verdict
	Found   int
	Total   int
	Err     error
}

// PrintSummary outputs a one-line-per-file overview.
func (p *Printer) PrintSummary(rows []SummaryRow) {
	if len(rows) == 0 {
		return
	}

	var sb strings.Builder
	for _, r := range rows {
		if r.Err != nil {
			sb.WriteString(fmt.Sprintf("%-24s  error: %v\n", r.Name, r.Err))
			continue
		}
		sb.WriteString(fmt.Sprintf("%-24s %3d  %-9s %d/%d skills\n", r.Name, r.Score, r.Verdict, r.Found, r.Total))
	}

	p.printBox(fmt.Sprintf("SUMMARY (%d files)", len(rows)), strings.TrimSuffix(sb.String(), "\n"))
}

// wrap breaks text into lines of at most width runes on word boundaries.
func wrap(text string, width int) []string {
	var (
		lines []string
		line  string
	)
	for _, word := range strings.Fields(text) {
		switch {
		case line == "":
			line = word
		case utf8.RuneCountInString(line)+1+utf8.RuneCountInString(word) <= width:
			line += " " + word
		default:
			lines = append(lines, line)
			line = word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}
