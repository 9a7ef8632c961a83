package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-analyzer/internal/analysis"
	"github.com/jonathan/resume-analyzer/internal/intake"
	"github.com/jonathan/resume-analyzer/internal/logger"
	"github.com/jonathan/resume-analyzer/internal/observability"
	"github.com/jonathan/resume-analyzer/internal/requirements"
)

// sampleName labels the built-in sample résumé in reports.
const sampleName = "sample"

var analyzeCmd = &cobra.Command{
	Use:   "analyze [files...]",
	Short: "Analyze résumé files against required skills",
	Long: "Analyze one or more résumé files (text, markdown, HTML, PDF, Word) and print " +
		"contact details, ATS score, skill matches and a compatibility verdict.",
	RunE: runAnalyze,
}

var (
	analyzeSkills       string
	analyzeRequirements string
	analyzeJSON         bool
	analyzeSample       bool
	analyzeConcurrency  int
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeSkills, "skills", "s", "", "Comma-separated required skills")
	analyzeCmd.Flags().StringVarP(&analyzeRequirements, "requirements", "r", "", "YAML job requirements file")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print results as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeSample, "sample", false, "Include the built-in sample résumé")
	analyzeCmd.Flags().IntVar(&analyzeConcurrency, "concurrency", 4, "Files analyzed in parallel")

	rootCmd.AddCommand(analyzeCmd)
}

// fileReport is the outcome for one input.
type fileReport struct {
	File   string           `json:"file"`
	Result *analysis.Result `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`

	err error
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !analyzeSample {
		return fmt.Errorf("at least one file is required (or use --sample)")
	}

	skills, err := resolveSkills(cmd.Context(), analyzeSkills, analyzeRequirements)
	if err != nil {
		return err
	}
	logger.Debug().Strs("skills", skills).Int("files", len(args)).Msg("analyzing")

	reports, err := analyzeFiles(cmd.Context(), args, skills, analyzeConcurrency)
	if err != nil {
		return err
	}
	if analyzeSample {
		result := analysis.Analyze(intake.SampleResumeText, skills)
		reports = append([]fileReport{{File: sampleName, Result: &result}}, reports...)
	}

	out := cmd.OutOrStdout()
	if analyzeJSON {
		if err := writeJSON(out, reports); err != nil {
			return err
		}
	} else {
		printReports(out, reports)
	}

	failed := 0
	for _, r := range reports {
		if r.err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files could not be analyzed", failed, len(reports))
	}
	return nil
}

// resolveSkills picks the skill list: the --skills flag, then a requirements
// file, then REQUIRED_SKILLS, then the configured requirements provider.
func resolveSkills(ctx context.Context, flagSkills, requirementsPath string) ([]string, error) {
	if strings.TrimSpace(flagSkills) != "" {
		return splitSkills(flagSkills), nil
	}
	if requirementsPath != "" {
		r, err := requirements.LoadFile(requirementsPath)
		if err != nil {
			return nil, err
		}
		return r.RequiredSkills, nil
	}
	if len(cfg.RequiredSkills) > 0 {
		return cfg.RequiredSkills, nil
	}
	provider := &requirements.Provider{File: cfg.RequirementsFile}
	return provider.RequiredSkills(ctx), nil
}

func splitSkills(list string) []string {
	skills := []string{}
	for _, s := range strings.Split(list, ",") {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}

// analyzeFiles reads and analyzes paths with at most concurrency files in
// flight. Per-file failures are recorded in the report, not returned.
func analyzeFiles(ctx context.Context, paths []string, skills []string, concurrency int) ([]fileReport, error) {
	reports := make([]fileReport, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			reports[i] = analyzeFile(path, skills)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func analyzeFile(path string, skills []string) fileReport {
	report := fileReport{File: path}
	text, err := intake.ReadFile(path)
	if err != nil {
		logger.Warn().Err(err).Str("file", path).Msg("failed to read resume")
		report.err = err
		report.Error = err.Error()
		return report
	}
	result := analysis.Analyze(text, skills)
	report.Result = &result
	return report
}

func writeJSON(w io.Writer, reports []fileReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(reports); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return nil
}

func printReports(w io.Writer, reports []fileReport) {
	printer := observability.NewPrinter(w)
	rows := make([]observability.SummaryRow, 0, len(reports))
	for _, r := range reports {
		name := filepath.Base(r.File)
		if r.err != nil {
			rows = append(rows, observability.SummaryRow{Name: name, Err: r.err})
			continue
		}
		printer.PrintAnalysis(name, r.Result)
		rows = append(rows, observability.SummaryRow{
			Name:    name,
			Score:   r.Result.ATSScore.Score,
			Verdict: r.Result.Compatibility.Verdict,
			Found:   r.Result.FoundCount(),
			Total:   len(r.Result.SkillsAnalysis),
		})
	}
	if len(rows) > 1 {
		printer.PrintSummary(rows)
	}
}
