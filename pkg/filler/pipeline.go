// Package filler prepares outgoing transactions in stages. Each stage
// first computes what it wants to write (Prepare) and then writes it into
// a draft (Apply), so slow stages such as the vanity search never hold on
// to the draft they write into.
package filler

import (
	"context"
	"fmt"

	"github.com/screa/vanity-tx-miner/pkg/txdraft"
)

// Pending is the prepared output of a stage.
type Pending interface {
	// Apply returns a copy of d with the prepared field(s) written.
	Apply(d *txdraft.Draft) (*txdraft.Draft, error)
}

// PendingFunc adapts a function to Pending.
type PendingFunc func(d *txdraft.Draft) (*txdraft.Draft, error)

// Apply calls f(d).
func (f PendingFunc) Apply(d *txdraft.Draft) (*txdraft.Draft, error) { return f(d) }

// Stage is one step of a Pipeline.
type Stage interface {
	Name() string
	// Needs reports whether the stage still has something to fill in d.
	Needs(d *txdraft.Draft) bool
	Prepare(ctx context.Context, d *txdraft.Draft) (Pending, error)
}

// Pipeline runs stages in order. Stages that change fields feeding the
// transaction hash must come before the vanity stage.
type Pipeline struct {
	stages []Stage
}

// NewPipeline creates a pipeline.
func NewPipeline(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// Fill runs every stage that still needs to and returns the filled draft.
// d itself is not modified.
func (p *Pipeline) Fill(ctx context.Context, d *txdraft.Draft) (*txdraft.Draft, error) {
	cur := d.Clone()
	for _, s := range p.stages {
		if !s.Needs(cur) {
			continue
		}
		pending, err := s.Prepare(ctx, cur)
		if err != nil {
			return nil, fmt.Errorf("%s: prepare: %w", s.Name(), err)
		}
		if cur, err = pending.Apply(cur); err != nil {
			return nil, fmt.Errorf("%s: apply: %w", s.Name(), err)
		}
	}
	return cur, nil
}
