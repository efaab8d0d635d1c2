// Package email renders job summary messages shared by the EmailSender implementations.
package email

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"docvision/internal/port"
)

// maxListedFailures bounds how many failures a summary spells out.
const maxListedFailures = 20

// Subject returns the summary subject line.
func Subject(s port.JobSummary) string {
	return fmt.Sprintf("[DocVision] %s job %s: %s (%d/%d completed)",
		s.TaskKind, shortID(s.JobID), s.Status, s.Completed, s.Total)
}

// Text renders the plain-text summary body.
func Text(s port.JobSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Job %s finished with status %s.\n\n", s.JobID, s.Status)
	fmt.Fprintf(&b, "Task:      %s\n", s.TaskKind)
	fmt.Fprintf(&b, "Items:     %d\n", s.Total)
	fmt.Fprintf(&b, "Completed: %d\n", s.Completed)
	fmt.Fprintf(&b, "Failed:    %d\n", s.Failed)
	fmt.Fprintf(&b, "Duration:  %s\n", time.Duration(s.DurationMs)*time.Millisecond)

	refs, more := failureRefs(s)
	if len(refs) > 0 {
		b.WriteString("\nFailures:\n")
		for _, ref := range refs {
			fmt.Fprintf(&b, "  - %s: %s\n", ref, s.Failures[ref])
		}
		if more > 0 {
			fmt.Fprintf(&b, "  ... and %d more\n", more)
		}
	}
	b.WriteString("\nDocVision\n")
	return b.String()
}

// HTML renders the HTML summary body.
func HTML(s port.JobSummary) string {
	var rows strings.Builder
	refs, more := failureRefs(s)
	for _, ref := range refs {
		fmt.Fprintf(&rows, `    <tr><td style="padding: 4px 8px;">%s</td><td style="padding: 4px 8px; color: #B91C1C;">%s</td></tr>
`, html.EscapeString(ref), html.EscapeString(s.Failures[ref]))
	}
	if more > 0 {
		fmt.Fprintf(&rows, `    <tr><td colspan="2" style="padding: 4px 8px; color: #666;">... and %d more</td></tr>
`, more)
	}
	failures := ""
	if rows.Len() > 0 {
		failures = fmt.Sprintf(`  <h3 style="color: #333;">Failures</h3>
  <table style="border-collapse: collapse; font-size: 13px;">
%s  </table>
`, rows.String())
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Batch job %s</h2>
  <p>Job <code>%s</code> (%s) finished.</p>
  <p>%d items, %d completed, %d failed, %s elapsed.</p>
%s  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">DocVision - Document Understanding Service</p>
</body>
</html>`,
		html.EscapeString(s.Status), html.EscapeString(s.JobID), html.EscapeString(s.TaskKind),
		s.Total, s.Completed, s.Failed, time.Duration(s.DurationMs)*time.Millisecond, failures)
}

func failureRefs(s port.JobSummary) ([]string, int) {
	refs := make([]string, 0, len(s.Failures))
	for ref := range s.Failures {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	if len(refs) > maxListedFailures {
		return refs[:maxListedFailures], len(refs) - maxListedFailures
	}
	return refs, 0
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
