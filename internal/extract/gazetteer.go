package extract

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"sort"

	"history-graph/internal/models"

	"gopkg.in/yaml.v3"
)

// Gazetteer is a dictionary extractor. Names match as whole words and case
// sensitively. Where matches overlap the earliest, then longest, wins.
type Gazetteer struct {
	entries []gazetteerEntry
}

type gazetteerEntry struct {
	label string
	name  string
	re    *regexp.Regexp
}

// NewGazetteer builds a gazetteer from label → names.
func NewGazetteer(names map[string][]string) *Gazetteer {
	g := &Gazetteer{}
	for label, list := range names {
		for _, name := range list {
			if name == "" {
				continue
			}
			g.entries = append(g.entries, gazetteerEntry{
				label: label,
				name:  name,
				re:    regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`),
			})
		}
	}
	sort.Slice(g.entries, func(i, j int) bool {
		if g.entries[i].label != g.entries[j].label {
			return g.entries[i].label < g.entries[j].label
		}
		return g.entries[i].name < g.entries[j].name
	})
	return g
}

// LoadGazetteer reads a YAML file mapping labels to name lists, e.g.
//
//	GPE: [India, Pakistan]
//	ORG: [United Nations]
func LoadGazetteer(path string) (*Gazetteer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read gazetteer: %w", err)
	}
	var names map[string][]string
	if err := yaml.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("failed to parse gazetteer %s: %w", path, err)
	}
	return NewGazetteer(names), nil
}

type span struct {
	start, end int
	entity     models.Entity
}

func (g *Gazetteer) Extract(ctx context.Context, text string) ([]models.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var spans []span
	for _, e := range g.entries {
		for _, loc := range e.re.FindAllStringIndex(text, -1) {
			spans = append(spans, span{
				start:  loc[0],
				end:    loc[1],
				entity: models.Entity{Text: e.name, Type: e.label},
			})
		}
	}
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end > spans[j].end
	})

	var entities []models.Entity
	end := -1
	for _, s := range spans {
		if s.start < end {
			continue
		}
		entities = append(entities, s.entity)
		end = s.end
	}
	return entities, nil
}
