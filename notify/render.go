package notify

import (
	"fmt"
	"strings"

	"github.com/jonwraymond/healthnotify/health"
)

// Subject returns a one-line headline for a report.
func Subject(report health.Report) string {
	counts := report.Counts()
	if !report.HasFailures() {
		return fmt.Sprintf("Health check: all %d checks passed", report.Len())
	}
	return fmt.Sprintf("Health check: %s (%d error, %d warning, %d info of %d)",
		report.Overall(),
		counts[health.StatusError],
		counts[health.StatusWarning],
		counts[health.StatusInfo],
		report.Len(),
	)
}

// Render formats a report as plain text.
//
// Summary lists only the entries that are not successful. Detailed lists
// every entry along with remediation hints and durations.
func Render(report health.Report, v Verbosity) string {
	var b strings.Builder
	b.WriteString(Subject(report))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Report %s at %s\n", report.ID, report.CreatedAt.UTC().Format("2006-01-02 15:04:05 UTC"))

	for _, e := range report.Entries() {
		if v == VerbositySummary && e.Result.Status == health.StatusSuccess {
			continue
		}
		fmt.Fprintf(&b, "\n[%s] %s", strings.ToUpper(e.Result.Status.String()), displayName(e))
		if e.Result.Message != "" {
			fmt.Fprintf(&b, ": %s", e.Result.Message)
		}
		if v == VerbosityDetailed {
			if e.Result.Remediation != "" {
				fmt.Fprintf(&b, "\n  remediation: %s", e.Result.Remediation)
			}
			if e.Result.Duration > 0 {
				fmt.Fprintf(&b, "\n  duration: %s", e.Result.Duration)
			}
		}
	}
	b.WriteString("\n")
	return b.String()
}

func displayName(e health.Entry) string {
	if e.CheckName != "" {
		return e.CheckName
	}
	return e.CheckID
}
