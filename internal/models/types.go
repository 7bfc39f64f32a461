package models

import "strings"

// Standard named-entity labels used by relationship inference.
const (
	EntityGPE    = "GPE"
	EntityORG    = "ORG"
	EntityPerson = "PERSON"
)

// Entity is one mention of a named entity in one text unit.
type Entity struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

// RelationshipType classifies a relationship. The zero value means the
// relationship was inferred without classification.
type RelationshipType string

const (
	RelationUnknown  RelationshipType = "unknown"
	RelationConflict RelationshipType = "conflict"
	RelationAlliance RelationshipType = "alliance"
)

// Label returns the capitalized display form, e.g. "Conflict".
func (t RelationshipType) Label() string {
	if t == "" {
		return "Unclassified"
	}
	s := string(t)
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// Relationship is a year-tagged co-occurrence of two entities.
type Relationship struct {
	EntityA string           `json:"entityA"`
	EntityB string           `json:"entityB"`
	Year    string           `json:"year"`
	Type    RelationshipType `json:"type,omitempty"`
}

// TimelineEvent is one edge as shown under a year in a timeline.
type TimelineEvent struct {
	Source string           `json:"source"`
	Target string           `json:"target"`
	Type   RelationshipType `json:"type"`
}

// Timeline buckets events by year.
type Timeline struct {
	Years  []string                   `json:"years"`
	Events map[string][]TimelineEvent `json:"events"`
}

// ParticipantCount is an entity and how many edges it takes part in.
type ParticipantCount struct {
	Entity string `json:"entity"`
	Count  int    `json:"count"`
}

// SummaryReport aggregates a built graph.
type SummaryReport struct {
	ConflictFrequency map[string]int                `json:"conflict_frequency"`
	KeyParticipants   map[string][]ParticipantCount `json:"key_participants"`
	EntityFrequency   map[string]int                `json:"entity_frequency"`

	// Years is sorted, EntityTypes is in first-seen order.
	Years       []string `json:"years"`
	EntityTypes []string `json:"entity_types"`
}
