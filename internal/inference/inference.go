// Package inference turns the entity mentions of one text unit into
// year-tagged relationships between entity pairs.
package inference

import (
	"regexp"
	"strings"

	"history-graph/internal/models"
)

var yearPattern = regexp.MustCompile(`\b[0-9]{4}\b`)

var (
	ConflictKeywords = []string{"conflict", "war", "battle", "fight", "dispute"}
	AllianceKeywords = []string{"allied", "treaty", "agreement", "partnership"}
)

// Policy controls which pairs are emitted and how they are labelled.
type Policy struct {
	AcceptedTypes []string
	// Classify tags every relationship with the document-wide keyword class.
	Classify bool
	// Dedup drops exact duplicate tuples, keeping the first occurrence.
	Dedup bool
	// DistinctYears collapses repeated year tokens within one text unit.
	DistinctYears bool
}

// Basic pairs GPE and ORG mentions without classification.
var Basic = Policy{
	AcceptedTypes: []string{models.EntityGPE, models.EntityORG},
}

// Extended also pairs PERSON mentions, classifies by keyword and dedups.
var Extended = Policy{
	AcceptedTypes: []string{models.EntityGPE, models.EntityORG, models.EntityPerson},
	Classify:      true,
	Dedup:         true,
}

type Inferrer struct {
	policy   Policy
	accepted map[string]struct{}
}

func NewInferrer(policy Policy) *Inferrer {
	accepted := make(map[string]struct{}, len(policy.AcceptedTypes))
	for _, t := range policy.AcceptedTypes {
		accepted[t] = struct{}{}
	}
	return &Inferrer{policy: policy, accepted: accepted}
}

func (in *Inferrer) Policy() Policy {
	return in.policy
}

// FindYears returns every standalone 4-digit token in text order.
func FindYears(text string) []string {
	return yearPattern.FindAllString(text, -1)
}

// Classify labels a whole text by keyword. Conflict keywords win over
// alliance keywords. Matching is a case-insensitive substring test.
func Classify(text string) models.RelationshipType {
	lower := strings.ToLower(text)
	if containsAny(lower, ConflictKeywords) {
		return models.RelationConflict
	}
	if containsAny(lower, AllianceKeywords) {
		return models.RelationAlliance
	}
	return models.RelationUnknown
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// Infer emits one relationship per accepted entity pair per candidate year.
// Pairs are the i<j combinations of the mention list, so a pair is emitted
// in the order the mentions appear.
func (in *Inferrer) Infer(entities []models.Entity, text string) []models.Relationship {
	years := FindYears(text)
	if in.policy.DistinctYears {
		years = distinct(years)
	}
	if len(years) == 0 || len(entities) < 2 {
		return nil
	}

	var relType models.RelationshipType
	if in.policy.Classify {
		relType = Classify(text)
	}

	var relationships []models.Relationship
	seen := make(map[models.Relationship]struct{})
	for _, year := range years {
		for i := 0; i < len(entities); i++ {
			a := entities[i]
			if !in.accepts(a.Type) {
				continue
			}
			for j := i + 1; j < len(entities); j++ {
				b := entities[j]
				if !in.accepts(b.Type) || a.Text == b.Text {
					continue
				}
				rel := models.Relationship{EntityA: a.Text, EntityB: b.Text, Year: year, Type: relType}
				if in.policy.Dedup {
					if _, ok := seen[rel]; ok {
						continue
					}
					seen[rel] = struct{}{}
				}
				relationships = append(relationships, rel)
			}
		}
	}
	return relationships
}

func (in *Inferrer) accepts(entityType string) bool {
	_, ok := in.accepted[entityType]
	return ok
}

func distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0:0]
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
