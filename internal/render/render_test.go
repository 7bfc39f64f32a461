package render

import (
	"bytes"
	"strings"
	"testing"

	"history-graph/internal/graph"
	"history-graph/internal/models"
	"history-graph/internal/report"
)

func sample() *graph.Graph {
	return graph.Build(
		[]models.Entity{{Text: "India", Type: "GPE"}, {Text: "Pakistan", Type: "GPE"}, {Text: "China", Type: "GPE"}},
		[]models.Relationship{
			{EntityA: "India", EntityB: "Pakistan", Year: "1965", Type: models.RelationConflict},
			{EntityA: "India", EntityB: "China", Year: "1962", Type: models.RelationConflict},
			{EntityA: "India", EntityB: "Pakistan", Year: "1966", Type: models.RelationAlliance},
		},
		graph.Options{GuardSameYear: true},
	)
}

func TestEdges(t *testing.T) {
	var buf bytes.Buffer
	Edges(&buf, "Countries in conflict during the year 1965:", sample().ConflictsInYear("1965"))
	out := buf.String()
	for _, want := range []string{"Countries in conflict during the year 1965:", "- India and Pakistan (1965, Conflict)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	Edges(&buf, "Nothing", nil)
	if !strings.Contains(buf.String(), "(none)") {
		t.Errorf("empty listing = %q", buf.String())
	}
}

func TestTimeline(t *testing.T) {
	var buf bytes.Buffer
	Timeline(&buf, sample().Timeline())
	out := buf.String()

	i62 := strings.Index(out, "1962")
	i65 := strings.Index(out, "1965")
	i66 := strings.Index(out, "1966")
	if i62 < 0 || i62 > i65 || i65 > i66 {
		t.Errorf("years out of order:\n%s", out)
	}
	for _, want := range []string{"- India and China: Conflict", "- India and Pakistan: Alliance"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSummary(t *testing.T) {
	g := sample()
	entities := []models.Entity{{Text: "India", Type: "GPE"}, {Text: "UN", Type: "ORG"}}
	rels := []models.Relationship{{EntityA: "India", EntityB: "Pakistan", Year: "1965"}}

	var buf bytes.Buffer
	Summary(&buf, report.Generate(g, entities, rels))
	out := buf.String()
	for _, want := range []string{
		"Conflict Frequency Over Time:", "1965: 1",
		"Key Participants in Conflicts Over Time:", "  India: 1", "  Pakistan: 1",
		"Entity Frequency:", "GPE: 1", "ORG: 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
