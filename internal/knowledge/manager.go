// Package knowledge runs the extraction pipeline and keeps the current
// graph snapshot.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"history-graph/internal/extract"
	"history-graph/internal/graph"
	"history-graph/internal/inference"
	"history-graph/internal/logger"
	"history-graph/internal/models"
	"history-graph/internal/report"
	"history-graph/internal/source"

	"github.com/google/uuid"
)

type Variant string

const (
	VariantBasic    Variant = "basic"
	VariantExtended Variant = "extended"
)

var ErrNoSnapshot = errors.New("no graph built yet")

func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case VariantBasic, VariantExtended:
		return Variant(s), nil
	default:
		return "", fmt.Errorf("unknown variant %q (want basic or extended)", s)
	}
}

func (v Variant) policy() inference.Policy {
	if v == VariantBasic {
		return inference.Basic
	}
	return inference.Extended
}

func (v Variant) graphOptions() graph.Options {
	return graph.Options{GuardSameYear: v != VariantBasic}
}

// Snapshot is the immutable result of one pipeline run.
type Snapshot struct {
	ID            string                `json:"id"`
	BuiltAt       time.Time             `json:"builtAt"`
	Variant       Variant               `json:"variant"`
	Passages      int                   `json:"passages"`
	Skipped       []string              `json:"skipped"`
	Entities      []models.Entity       `json:"entities"`
	Relationships []models.Relationship `json:"relationships"`
	Graph         *graph.Graph          `json:"-"`
}

// Report summarizes the snapshot's graph.
func (s *Snapshot) Report() models.SummaryReport {
	return report.Generate(s.Graph, s.Entities, s.Relationships)
}

type Manager struct {
	extractor extract.Extractor
	variant   Variant
	inferrer  *inference.Inferrer

	current atomic.Pointer[Snapshot]
}

type Options struct {
	Variant Variant
	// DistinctYears collapses repeated year tokens within a passage.
	DistinctYears bool
}

func NewManager(extractor extract.Extractor, opts Options) *Manager {
	if opts.Variant == "" {
		opts.Variant = VariantExtended
	}
	policy := opts.Variant.policy()
	policy.DistinctYears = opts.DistinctYears
	return &Manager{
		extractor: extractor,
		variant:   opts.Variant,
		inferrer:  inference.NewInferrer(policy),
	}
}

// Build runs one pass over src. A passage whose extraction fails is logged
// and skipped; only a source failure or cancellation aborts the run.
func (m *Manager) Build(ctx context.Context, src source.Source) (*Snapshot, error) {
	passages, err := src.Passages(ctx)
	if err != nil {
		logger.Error("Error occurred while loading data", "err", err)
		return nil, fmt.Errorf("failed to load passages: %w", err)
	}

	snap := &Snapshot{
		ID:       uuid.NewString(),
		Variant:  m.variant,
		Passages: len(passages),
		Skipped:  []string{},
	}
	for _, p := range passages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ents, err := m.extractor.Extract(ctx, p.Text)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("Skipping passage: entity extraction failed", "passage", p.ID, "err", err)
			snap.Skipped = append(snap.Skipped, p.ID)
			continue
		}
		rels := m.inferrer.Infer(ents, p.Text)
		logger.Debug("Processed passage", "passage", p.ID, "entities", len(ents), "relationships", len(rels))
		snap.Entities = append(snap.Entities, ents...)
		snap.Relationships = append(snap.Relationships, rels...)
	}

	snap.Graph = graph.Build(snap.Entities, snap.Relationships, m.variant.graphOptions())
	snap.BuiltAt = time.Now().UTC()
	logger.Info("Knowledge graph built",
		"id", snap.ID,
		"variant", snap.Variant,
		"passages", snap.Passages,
		"skipped", len(snap.Skipped),
		"nodes", snap.Graph.NodeCount(),
		"edges", snap.Graph.EdgeCount())
	return snap, nil
}

// Rebuild builds a new snapshot and swaps it in. On error the current
// snapshot is left in place.
func (m *Manager) Rebuild(ctx context.Context, src source.Source) (*Snapshot, error) {
	snap, err := m.Build(ctx, src)
	if err != nil {
		return nil, err
	}
	m.current.Store(snap)
	return snap, nil
}

// Current returns the latest snapshot or ErrNoSnapshot.
func (m *Manager) Current() (*Snapshot, error) {
	snap := m.current.Load()
	if snap == nil {
		return nil, ErrNoSnapshot
	}
	return snap, nil
}
