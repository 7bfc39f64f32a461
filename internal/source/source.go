// Package source loads the text passages a graph is built from.
package source

import (
	"context"
	"strconv"
)

type Passage struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type Source interface {
	Passages(ctx context.Context) ([]Passage, error)
}

// StaticSource serves passages held in memory.
type StaticSource []Passage

// FromTexts numbers texts from 1 in order.
func FromTexts(texts []string) StaticSource {
	out := make(StaticSource, 0, len(texts))
	for i, t := range texts {
		out = append(out, Passage{ID: strconv.Itoa(i + 1), Text: t})
	}
	return out
}

func (s StaticSource) Passages(ctx context.Context) ([]Passage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]Passage(nil), s...), nil
}
