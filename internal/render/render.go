// Package render writes graph query results and reports for the console.
package render

import (
	"fmt"
	"io"

	"history-graph/internal/graph"
	"history-graph/internal/models"

	"github.com/charmbracelet/lipgloss"
)

var (
	HeadingStyle = lipgloss.NewStyle().Bold(true)
	YearStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	MutedStyle   = lipgloss.NewStyle().Faint(true)
)

// Edges writes one line per edge under title.
func Edges(w io.Writer, title string, edges []graph.Edge) {
	fmt.Fprintln(w, HeadingStyle.Render(title))
	if len(edges) == 0 {
		fmt.Fprintln(w, MutedStyle.Render("  (none)"))
		return
	}
	for _, e := range edges {
		if e.Type == "" {
			fmt.Fprintf(w, "- %s and %s (%s)\n", e.Source, e.Target, e.Year)
			continue
		}
		fmt.Fprintf(w, "- %s and %s (%s, %s)\n", e.Source, e.Target, e.Year, e.Type.Label())
	}
}

// Timeline writes each year followed by its events.
func Timeline(w io.Writer, tl models.Timeline) {
	for _, year := range tl.Years {
		fmt.Fprintln(w, YearStyle.Render(year))
		for _, ev := range tl.Events[year] {
			fmt.Fprintf(w, "- %s and %s: %s\n", ev.Source, ev.Target, ev.Type.Label())
		}
		fmt.Fprintln(w)
	}
}

// Summary writes the three report sections.
func Summary(w io.Writer, r models.SummaryReport) {
	fmt.Fprintln(w, HeadingStyle.Render("Conflict Frequency Over Time:"))
	for _, year := range r.Years {
		fmt.Fprintf(w, "%s: %d\n", year, r.ConflictFrequency[year])
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, HeadingStyle.Render("Key Participants in Conflicts Over Time:"))
	for _, year := range r.Years {
		fmt.Fprintf(w, "%s:\n", year)
		for _, p := range r.KeyParticipants[year] {
			fmt.Fprintf(w, "  %s: %d\n", p.Entity, p.Count)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, HeadingStyle.Render("Entity Frequency:"))
	for _, t := range r.EntityTypes {
		fmt.Fprintf(w, "%s: %d\n", t, r.EntityFrequency[t])
	}
}
