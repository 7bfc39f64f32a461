// Package graph holds the entity multigraph. A Graph is built once by Build
// and is read-only afterwards, so it is safe for concurrent readers.
package graph

import "history-graph/internal/models"

type Node struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Edge is a year-tagged relationship between two nodes. Key numbers parallel
// edges between the same pair, in insertion order.
type Edge struct {
	Source string                  `json:"source"`
	Target string                  `json:"target"`
	Key    int                     `json:"key"`
	Year   string                  `json:"year"`
	Type   models.RelationshipType `json:"type,omitempty"`
}

// Options controls edge insertion.
type Options struct {
	// GuardSameYear skips an edge when the pair already has one for the
	// same year, whatever its type. The first edge for a pair and year wins.
	GuardSameYear bool
}

type pairKey struct{ a, b string }

func newPairKey(a, b string) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{a, b}
}

type Graph struct {
	nodes     []Node
	nodeIndex map[string]int
	edges     []Edge
	pairs     map[pairKey][]int
}

// Build inserts one node per mention and one edge per relationship.
// A mention whose text is already present overwrites the node type.
func Build(entities []models.Entity, relationships []models.Relationship, opts Options) *Graph {
	g := &Graph{
		nodeIndex: make(map[string]int),
		pairs:     make(map[pairKey][]int),
	}
	for _, e := range entities {
		g.addNode(e.Text, e.Type)
	}
	for _, r := range relationships {
		if opts.GuardSameYear && g.hasEdgeInYear(r.EntityA, r.EntityB, r.Year) {
			continue
		}
		g.addEdge(r)
	}
	return g
}

func (g *Graph) addNode(name, typ string) {
	if i, ok := g.nodeIndex[name]; ok {
		g.nodes[i].Type = typ
		return
	}
	g.nodeIndex[name] = len(g.nodes)
	g.nodes = append(g.nodes, Node{Name: name, Type: typ})
}

func (g *Graph) ensureNode(name string) {
	if _, ok := g.nodeIndex[name]; !ok {
		g.nodeIndex[name] = len(g.nodes)
		g.nodes = append(g.nodes, Node{Name: name})
	}
}

func (g *Graph) addEdge(r models.Relationship) {
	g.ensureNode(r.EntityA)
	g.ensureNode(r.EntityB)
	pk := newPairKey(r.EntityA, r.EntityB)
	g.pairs[pk] = append(g.pairs[pk], len(g.edges))
	g.edges = append(g.edges, Edge{
		Source: r.EntityA,
		Target: r.EntityB,
		Key:    len(g.pairs[pk]) - 1,
		Year:   r.Year,
		Type:   r.Type,
	})
}

func (g *Graph) hasEdgeInYear(a, b, year string) bool {
	for _, i := range g.pairs[newPairKey(a, b)] {
		if g.edges[i].Year == year {
			return true
		}
	}
	return false
}

// Node looks up a node by name.
func (g *Graph) Node(name string) (Node, bool) {
	i, ok := g.nodeIndex[name]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// Nodes returns a copy of all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	return append([]Node(nil), g.nodes...)
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

func (g *Graph) NodeCount() int { return len(g.nodes) }

func (g *Graph) EdgeCount() int { return len(g.edges) }
