// Package report aggregates a built graph into summary statistics.
package report

import (
	"sort"

	"history-graph/internal/graph"
	"history-graph/internal/models"
)

// TopParticipants is how many participants are kept per year.
const TopParticipants = 5

// Generate summarizes g. Years come from relationships, but edge counts and
// participants come from the graph, so they reflect deduplicated edges.
func Generate(g *graph.Graph, entities []models.Entity, relationships []models.Relationship) models.SummaryReport {
	report := models.SummaryReport{
		ConflictFrequency: make(map[string]int),
		KeyParticipants:   make(map[string][]models.ParticipantCount),
		EntityFrequency:   make(map[string]int),
		Years:             years(relationships),
		EntityTypes:       []string{},
	}

	for _, year := range report.Years {
		edges := g.ConflictsInYear(year)
		report.ConflictFrequency[year] = len(edges)

		c := newCounter()
		for _, e := range edges {
			c.add(e.Source)
			c.add(e.Target)
		}
		report.KeyParticipants[year] = c.mostCommon(TopParticipants)
	}

	for _, e := range entities {
		if _, ok := report.EntityFrequency[e.Type]; !ok {
			report.EntityTypes = append(report.EntityTypes, e.Type)
		}
		report.EntityFrequency[e.Type]++
	}
	return report
}

func years(relationships []models.Relationship) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, r := range relationships {
		if _, ok := seen[r.Year]; ok {
			continue
		}
		seen[r.Year] = struct{}{}
		out = append(out, r.Year)
	}
	sort.Strings(out)
	return out
}

// counter counts keys and remembers first-seen order for ties.
type counter struct {
	order  []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

func (c *counter) mostCommon(n int) []models.ParticipantCount {
	out := make([]models.ParticipantCount, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, models.ParticipantCount{Entity: k, Count: c.counts[k]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
