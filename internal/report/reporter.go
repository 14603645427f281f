package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"msisweep/internal/classify"
	"msisweep/pkg/utils"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatSummary OutputFormat = "summary"
	FormatTable   OutputFormat = "table"
	FormatJSON    OutputFormat = "json"
	FormatYAML    OutputFormat = "yaml"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	keptStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	excludeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6"))
	orphanStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	failStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
)

// Reporter renders a RunReport in one of the supported formats.
type Reporter struct {
	writer io.Writer
	format OutputFormat
}

// New creates a new Reporter
func New(writer io.Writer, format OutputFormat) *Reporter {
	return &Reporter{writer: writer, format: format}
}

// Report renders the run report
func (r *Reporter) Report(rep *RunReport) error {
	switch r.format {
	case FormatSummary:
		return r.reportSummary(rep)
	case FormatTable:
		return r.reportTable(rep)
	case FormatJSON:
		enc := json.NewEncoder(r.writer)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case FormatYAML:
		enc := yaml.NewEncoder(r.writer)
		defer enc.Close()
		return enc.Encode(rep)
	default:
		return fmt.Errorf("unsupported format: %s", r.format)
	}
}

func (r *Reporter) reportSummary(rep *RunReport) error {
	header := "=== Installer Cache Sweep ==="
	if rep.DryRun {
		header += " (dry run)"
	}
	fmt.Fprintln(r.writer, titleStyle.Render(header))
	fmt.Fprintf(r.writer, "Scanned:  %d files\n", rep.Scanned)
	fmt.Fprintf(r.writer, "%s %d files, %s\n", keptStyle.Render("Kept:    "), rep.Kept.Count, rep.Kept.Human)
	fmt.Fprintf(r.writer, "%s %d files, %s\n", excludeStyle.Render("Excluded:"), rep.Excluded.Count, rep.Excluded.Human)
	fmt.Fprintf(r.writer, "%s %d files, %s\n", orphanStyle.Render("Orphaned:"), rep.Orphaned.Count, rep.Orphaned.Human)

	switch {
	case rep.DryRun:
		fmt.Fprintf(r.writer, "Would reclaim %s (%s mode)\n", rep.Orphaned.Human, rep.Mode)
	case rep.Deleted > 0:
		fmt.Fprintf(r.writer, "Deleted %d orphaned files\n", rep.Deleted)
	case rep.Moved > 0:
		fmt.Fprintf(r.writer, "Quarantined %d orphaned files\n", rep.Moved)
	}
	if rep.PrunedDirs > 0 {
		verb := "Pruned"
		if rep.DryRun {
			verb = "Would prune"
		}
		fmt.Fprintf(r.writer, "%s %d empty directories\n", verb, rep.PrunedDirs)
	}

	if len(rep.Failures) > 0 {
		fmt.Fprintln(r.writer, failStyle.Render(fmt.Sprintf("Failures: %d", len(rep.Failures))))
		for _, f := range rep.Failures {
			if f.Path != "" {
				fmt.Fprintf(r.writer, "  %s: %s\n", f.Path, f.Reason)
			} else {
				fmt.Fprintf(r.writer, "  %s\n", f.Reason)
			}
		}
	}

	fmt.Fprintln(r.writer, dimStyle.Render("Completed in "+rep.Duration))
	return nil
}

func (r *Reporter) reportTable(rep *RunReport) error {
	fmt.Fprintf(r.writer, "%-60s | %-10s | %-8s | %s\n", "Path", "Size", "Class", "Outcome")
	for _, rec := range rep.Records {
		path := rec.Path
		if len(path) > 60 {
			path = "..." + path[len(path)-57:]
		}
		outcome := rec.Outcome.String()
		if rec.Outcome == classify.Failed {
			outcome += " (" + rec.FailReason + ")"
		}
		fmt.Fprintf(r.writer, "%-60s | %-10s | %-8s | %s\n",
			path, utils.FormatBytes(rec.Size), rec.Class, outcome)
	}
	fmt.Fprintf(r.writer, "\nTotal: %d files (%d kept, %d excluded, %d orphaned)\n",
		rep.Scanned, rep.Kept.Count, rep.Excluded.Count, rep.Orphaned.Count)
	return nil
}

// SaveToFile writes the report to a file in the given format.
func SaveToFile(rep *RunReport, path string, format OutputFormat) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return New(file, format).Report(rep)
}
