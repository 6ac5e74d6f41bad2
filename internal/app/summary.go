package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/stratum/internal/core/domain"
	"go.trai.ch/stratum/internal/engine/scheduler"
	"go.trai.ch/stratum/internal/ui/style"
)

// printSummary writes one line per element and a closing tally.
func printSummary(w io.Writer, report *scheduler.Report) {
	if len(report.Elements) == 0 {
		return
	}
	width := 0
	for _, e := range report.Elements {
		width = max(width, len(e.Name))
	}

	var built, cached, failed, skipped int
	for _, e := range report.Elements {
		var icon, state string
		var st lipgloss.Style
		switch {
		case e.State == domain.JobSucceeded && e.Pulled:
			icon, state, st = style.Tilde, "pulled", style.Faint
			cached++
		case e.State == domain.JobSucceeded && e.Cached:
			icon, state, st = style.Tilde, "cached", style.Faint
			cached++
		case e.State == domain.JobSucceeded:
			icon, state, st = style.Check, "built", style.Good
			built++
		case e.State == domain.JobFailed:
			icon, state, st = style.Cross, "failed", style.Bad
			if e.Err != nil {
				state += ": " + firstLine(e.Err.Error())
			}
			failed++
		default:
			icon, state, st = style.Circle, e.State.String(), style.Note
			skipped++
		}
		if e.Pushed {
			state += ", pushed"
		}
		_, _ = fmt.Fprintf(w, "%s %-*s  %s\n", st.Render(icon), width, e.Name, state)
	}

	_, _ = fmt.Fprintf(w, "\n%s %d built, %d cached, %d failed, %d not run\n",
		style.Bold.Render(fmt.Sprintf("%d elements:", len(report.Elements))),
		built, cached, failed, skipped)
}

// printStatuses writes the table printed by show.
func printStatuses(w io.Writer, statuses []ElementStatus) {
	width := 0
	for _, s := range statuses {
		width = max(width, len(s.Name))
	}
	for _, s := range statuses {
		st := style.Note
		switch s.Status {
		case StatusCached:
			st = style.Good
		case StatusFailed:
			st = style.Bad
		case StatusMissing:
			st = style.Faint
		}
		_, _ = fmt.Fprintf(w, "%-*s  %-7s  %s  %s\n", width, s.Name, s.Kind, shortKey(s.Key.Strong), st.Render(s.Status))
	}
}

func shortKey(k string) string {
	if len(k) > 12 {
		return k[:12]
	}
	return k
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
