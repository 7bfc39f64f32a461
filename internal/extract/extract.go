// Package extract finds named-entity mentions in text.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"history-graph/internal/models"

	"github.com/kaptinlin/jsonrepair"
)

// Extractor returns the entity mentions of text in text order.
type Extractor interface {
	Extract(ctx context.Context, text string) ([]models.Entity, error)
}

type entityList struct {
	Entities []entityMention `json:"entities" jsonschema:"description=Named entities in order of appearance"`
}

type entityMention struct {
	Text string `json:"text" jsonschema:"description=The exact span as it appears in the text"`
	Type string `json:"type" jsonschema:"enum=GPE,enum=ORG,enum=PERSON,enum=NORP,enum=LOC,enum=DATE,enum=EVENT"`
}

func (l entityList) toModels() []models.Entity {
	out := make([]models.Entity, 0, len(l.Entities))
	for _, m := range l.Entities {
		text := strings.TrimSpace(m.Text)
		if text == "" {
			continue
		}
		out = append(out, models.Entity{Text: text, Type: strings.ToUpper(strings.TrimSpace(m.Type))})
	}
	return out
}

func stripDuplicateLeadingBrace(s string) string {
	if strings.HasPrefix(s, "{") {
		rest := strings.TrimSpace(s[1:])
		if strings.HasPrefix(rest, "{") {
			return rest
		}
	}
	return s
}

// unmarshalFlexible decodes model output that may be double encoded or
// slightly malformed JSON.
func unmarshalFlexible(input string, out any) error {
	input = strings.TrimSpace(input)

	if err := json.Unmarshal([]byte(input), out); err == nil {
		return nil
	}

	var asString string
	if err := json.Unmarshal([]byte(input), &asString); err == nil {
		asString = strings.TrimSpace(asString)
		if err := json.Unmarshal([]byte(asString), out); err == nil {
			return nil
		}
		input = asString
	}

	input = stripDuplicateLeadingBrace(input)
	repaired, err := jsonrepair.JSONRepair(input)
	if err != nil {
		return fmt.Errorf("json repair failed: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), out); err != nil {
		return fmt.Errorf("unmarshal failed after repair: %w", err)
	}
	return nil
}
