package graph

import (
	"errors"
	"fmt"
	"sort"

	"history-graph/internal/models"
)

type QueryKind string

const (
	QueryConflict  QueryKind = "conflict"
	QueryEvolution QueryKind = "evolution"
)

var (
	ErrUnknownQuery    = errors.New("unknown query type")
	ErrMissingEntities = errors.New("evolution query needs two entities")
)

type QueryRequest struct {
	Kind    QueryKind
	Year    string
	Entity1 string
	Entity2 string
}

// Query dispatches a request to ConflictsInYear or Evolution.
func (g *Graph) Query(q QueryRequest) ([]Edge, error) {
	switch q.Kind {
	case QueryConflict:
		return g.ConflictsInYear(q.Year), nil
	case QueryEvolution:
		if q.Entity1 == "" || q.Entity2 == "" {
			return nil, ErrMissingEntities
		}
		return g.Evolution(q.Entity1, q.Entity2), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuery, q.Kind)
	}
}

// ConflictsInYear returns every edge whose year equals year exactly.
func (g *Graph) ConflictsInYear(year string) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.Year == year {
			out = append(out, e)
		}
	}
	return out
}

// Evolution returns the dated edges between a and b in either direction.
func (g *Graph) Evolution(a, b string) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.Year == "" {
			continue
		}
		if (e.Source == a && e.Target == b) || (e.Source == b && e.Target == a) {
			out = append(out, e)
		}
	}
	return out
}

// Timeline buckets every edge by year. Years are sorted as strings, which
// for 4-digit years is numeric order.
func (g *Graph) Timeline() models.Timeline {
	tl := models.Timeline{
		Years:  []string{},
		Events: make(map[string][]models.TimelineEvent),
	}
	for _, e := range g.edges {
		if _, ok := tl.Events[e.Year]; !ok {
			tl.Years = append(tl.Years, e.Year)
		}
		tl.Events[e.Year] = append(tl.Events[e.Year], models.TimelineEvent{
			Source: e.Source,
			Target: e.Target,
			Type:   e.Type,
		})
	}
	sort.Strings(tl.Years)
	return tl
}
