package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/aalvaropc/appserve/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	passStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	faintStyle = lipgloss.NewStyle().Faint(true)
)

// checkFormat rejects output formats printCheck cannot render.
func checkFormat(format string) error {
	switch format {
	case "json", "pretty", "":
		return nil
	default:
		return fmt.Errorf("unsupported format %q (expected pretty|json)", format)
	}
}

func printCheck(w io.Writer, report domain.CheckReport, reportID string, format string) error {
	if err := checkFormat(format); err != nil {
		return err
	}
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		payload := map[string]any{
			"report_id": reportID,
			"report":    report,
		}
		return enc.Encode(payload)
	default:
		printPrettyCheck(w, report, reportID)
		return nil
	}
}

func printPrettyCheck(w io.Writer, report domain.CheckReport, reportID string) {
	total := report.EndedAt.Sub(report.StartedAt)
	if report.StartedAt.IsZero() || report.EndedAt.IsZero() {
		total = 0
	}

	fmt.Fprintln(w, titleStyle.Render("Target: "+report.BaseURL))
	fmt.Fprintf(w, "Started:  %s\n", report.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Duration: %s\n", total)
	if reportID != "" {
		fmt.Fprintf(w, "Report:   %s\n", reportID)
	}
	fmt.Fprintln(w)

	for _, r := range report.Results {
		status := passStyle.Render("PASS")
		if r.Failed() {
			status = failStyle.Render("FAIL")
		}

		fmt.Fprintf(w, "- [%s] %s (%s) %dms\n", status, r.Name, r.Method, r.LatencyMS)

		if r.Error != nil {
			fmt.Fprintf(w, "  error: %s (%s)\n", r.Error.Message, r.Error.Kind)
		} else {
			fmt.Fprintf(w, "  status: %d\n", r.StatusCode)
		}

		for _, c := range r.Checks {
			mark := passStyle.Render("✓")
			if !c.Passed {
				mark = failStyle.Render("✗")
			}
			fmt.Fprintf(w, "    %s %s: %s\n", mark, c.Name, faintStyle.Render(c.Message))
		}
	}

	fmt.Fprintln(w)
	fails := report.Failures()
	summary := fmt.Sprintf("%d probe(s), %d failed", len(report.Results), fails)
	if fails > 0 {
		fmt.Fprintln(w, failStyle.Render(summary))
	} else {
		fmt.Fprintln(w, passStyle.Render(summary))
	}
}
