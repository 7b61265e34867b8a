package scan

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gabssanto/modflat/internal/migrate"
)

const reportVersion = 1

// NewReport builds the report for a run. runErr is recorded when the run failed.
func NewReport(result *Result, cfg migrate.Config, runErr error) *Report {
	report := &Report{
		Version: reportVersion,
		Root:    result.Root,
		DryRun:  result.DryRun,
		Config: ReportConfig{
			FollowSymlinks:                cfg.FollowSymlinks,
			LeaveEmptyDirs:                cfg.LeaveEmptyDirs,
			NoSpecialTreatmentForTestsDir: cfg.NoSpecialTreatmentForTestsDir,
		},
		Markers: result.Markers,
		Moves:   make([]ReportMove, 0, len(result.Moves)),
	}
	if report.Markers == nil {
		report.Markers = []string{}
	}

	for _, m := range result.Moves {
		report.Moves = append(report.Moves, ReportMove{
			Marker:      m.Marker,
			Destination: m.Destination,
			Action:      string(m.Action),
			DirRemoved:  m.DirRemoved,
		})
	}

	if runErr != nil {
		report.Error = runErr.Error()
	}
	return report
}

// WriteReport writes report as YAML to filePath
func WriteReport(filePath string, report *Report) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// ParseReport reads and parses a report written by WriteReport
func ParseReport(filePath string) (*Report, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var report Report
	if err := yaml.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if report.Version != reportVersion {
		return nil, fmt.Errorf("unsupported report version: %d", report.Version)
	}

	return &report, nil
}
