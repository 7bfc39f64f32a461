package graph

import (
	"errors"
	"reflect"
	"testing"

	"history-graph/internal/models"
)

func rel(a, b, year string, typ models.RelationshipType) models.Relationship {
	return models.Relationship{EntityA: a, EntityB: b, Year: year, Type: typ}
}

var indoPak = []models.Entity{
	{Text: "India", Type: "GPE"},
	{Text: "Pakistan", Type: "GPE"},
}

func TestBuildSingleEdge(t *testing.T) {
	g := Build(indoPak, []models.Relationship{rel("India", "Pakistan", "1965", models.RelationUnknown)}, Options{GuardSameYear: true})
	if g.NodeCount() != 2 || g.EdgeCount() != 1 {
		t.Fatalf("nodes=%d edges=%d, want 2 and 1", g.NodeCount(), g.EdgeCount())
	}
	want := Edge{Source: "India", Target: "Pakistan", Year: "1965", Type: models.RelationUnknown}
	if got := g.Edges()[0]; got != want {
		t.Errorf("edge = %+v, want %+v", got, want)
	}
}

func TestBuildNodeTypeLastWriteWins(t *testing.T) {
	entities := []models.Entity{
		{Text: "Georgia", Type: "GPE"},
		{Text: "UN", Type: "ORG"},
		{Text: "Georgia", Type: "PERSON"},
	}
	g := Build(entities, nil, Options{})
	if g.NodeCount() != 2 {
		t.Fatalf("nodes = %d, want 2", g.NodeCount())
	}
	n, ok := g.Node("Georgia")
	if !ok || n.Type != "PERSON" {
		t.Errorf("Georgia = %+v, %v; want type PERSON", n, ok)
	}
	if names := []string{g.Nodes()[0].Name, g.Nodes()[1].Name}; !reflect.DeepEqual(names, []string{"Georgia", "UN"}) {
		t.Errorf("node order = %v", names)
	}
}

func TestBuildGuardFirstClassificationWins(t *testing.T) {
	rels := []models.Relationship{
		rel("India", "Pakistan", "1965", models.RelationConflict),
		rel("India", "Pakistan", "1965", models.RelationAlliance),
		rel("Pakistan", "India", "1965", models.RelationUnknown),
		rel("India", "Pakistan", "1971", models.RelationAlliance),
	}
	g := Build(indoPak, rels, Options{GuardSameYear: true})
	edges := g.ConflictsInYear("1965")
	if len(edges) != 1 {
		t.Fatalf("1965 edges = %d, want 1", len(edges))
	}
	if edges[0].Type != models.RelationConflict {
		t.Errorf("type = %q, want conflict", edges[0].Type)
	}
	if g.EdgeCount() != 2 {
		t.Errorf("edges = %d, want 2", g.EdgeCount())
	}
	if k := g.ConflictsInYear("1971")[0].Key; k != 1 {
		t.Errorf("second parallel edge key = %d, want 1", k)
	}
}

func TestBuildWithoutGuardAccumulates(t *testing.T) {
	rels := []models.Relationship{
		rel("India", "Pakistan", "1965", ""),
		rel("India", "Pakistan", "1965", ""),
	}
	g := Build(indoPak, rels, Options{})
	if g.EdgeCount() != 2 {
		t.Fatalf("edges = %d, want 2 parallel edges", g.EdgeCount())
	}
}

func TestBuildCreatesMissingEndpoints(t *testing.T) {
	g := Build(nil, []models.Relationship{rel("Rome", "Carthage", "0146", "")}, Options{})
	n, ok := g.Node("Carthage")
	if !ok || n.Type != "" {
		t.Errorf("Carthage = %+v, %v; want untyped node", n, ok)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	entities := append([]models.Entity{{Text: "UN", Type: "ORG"}}, indoPak...)
	rels := []models.Relationship{
		rel("India", "Pakistan", "1965", models.RelationConflict),
		rel("UN", "India", "1965", models.RelationConflict),
		rel("UN", "Pakistan", "1966", models.RelationAlliance),
	}
	a := Build(entities, rels, Options{GuardSameYear: true})
	b := Build(entities, rels, Options{GuardSameYear: true})
	if !reflect.DeepEqual(a.Nodes(), b.Nodes()) || !reflect.DeepEqual(a.Edges(), b.Edges()) {
		t.Error("two builds from the same input differ")
	}
}

func TestEvolutionIsSymmetric(t *testing.T) {
	rels := []models.Relationship{
		rel("India", "Pakistan", "1947", models.RelationConflict),
		rel("Pakistan", "India", "1965", models.RelationConflict),
		rel("India", "China", "1962", models.RelationConflict),
		rel("India", "Pakistan", "", models.RelationUnknown),
	}
	g := Build(indoPak, rels, Options{})
	ab := g.Evolution("India", "Pakistan")
	ba := g.Evolution("Pakistan", "India")
	if len(ab) != 2 {
		t.Fatalf("evolution = %v, want 2 dated edges", ab)
	}
	if !reflect.DeepEqual(ab, ba) {
		t.Errorf("Evolution(a,b) = %v, Evolution(b,a) = %v", ab, ba)
	}
}

func TestTimeline(t *testing.T) {
	rels := []models.Relationship{
		rel("India", "Pakistan", "1971", models.RelationConflict),
		rel("India", "China", "1962", models.RelationConflict),
		rel("India", "Pakistan", "1966", models.RelationAlliance),
		rel("China", "Pakistan", "1962", models.RelationAlliance),
	}
	tl := Build(nil, rels, Options{}).Timeline()
	if want := []string{"1962", "1966", "1971"}; !reflect.DeepEqual(tl.Years, want) {
		t.Errorf("years = %v, want %v", tl.Years, want)
	}
	want1962 := []models.TimelineEvent{
		{Source: "India", Target: "China", Type: models.RelationConflict},
		{Source: "China", Target: "Pakistan", Type: models.RelationAlliance},
	}
	if !reflect.DeepEqual(tl.Events["1962"], want1962) {
		t.Errorf("1962 = %v, want %v", tl.Events["1962"], want1962)
	}
}

func TestEmptyGraph(t *testing.T) {
	g := Build(nil, nil, Options{GuardSameYear: true})
	if got := g.ConflictsInYear("1965"); len(got) != 0 {
		t.Errorf("ConflictsInYear = %v", got)
	}
	if got := g.Evolution("a", "b"); len(got) != 0 {
		t.Errorf("Evolution = %v", got)
	}
	tl := g.Timeline()
	if len(tl.Years) != 0 || len(tl.Events) != 0 {
		t.Errorf("Timeline = %+v", tl)
	}
}

func TestQuery(t *testing.T) {
	g := Build(indoPak, []models.Relationship{rel("India", "Pakistan", "1965", models.RelationConflict)}, Options{})

	edges, err := g.Query(QueryRequest{Kind: QueryConflict, Year: "1965"})
	if err != nil || len(edges) != 1 {
		t.Errorf("conflict query = %v, %v", edges, err)
	}
	edges, err = g.Query(QueryRequest{Kind: QueryEvolution, Entity1: "Pakistan", Entity2: "India"})
	if err != nil || len(edges) != 1 {
		t.Errorf("evolution query = %v, %v", edges, err)
	}
	if _, err := g.Query(QueryRequest{Kind: QueryEvolution, Entity1: "India"}); !errors.Is(err, ErrMissingEntities) {
		t.Errorf("err = %v, want ErrMissingEntities", err)
	}
	if _, err := g.Query(QueryRequest{Kind: "bogus"}); !errors.Is(err, ErrUnknownQuery) {
		t.Errorf("err = %v, want ErrUnknownQuery", err)
	}
}
