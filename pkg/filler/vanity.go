package filler

import (
	"context"

	"github.com/screa/vanity-tx-miner/internal/crypto"
	"github.com/screa/vanity-tx-miner/pkg/miner"
	"github.com/screa/vanity-tx-miner/pkg/txdraft"
	"github.com/screa/vanity-tx-miner/pkg/types"
)

// VanityFiller is the stage that mines a transaction hash prefix.
type VanityFiller struct {
	miner    *miner.Miner
	identity txdraft.Identity
	prefix   string
}

// NewVanityFiller creates a vanity stage. The prefix is validated here so
// a bad prefix fails before the pipeline runs.
func NewVanityFiller(m *miner.Miner, id txdraft.Identity, prefix string) (*VanityFiller, error) {
	lower, _, err := crypto.DecodePrefix(prefix)
	if err != nil {
		return nil, err
	}
	return &VanityFiller{miner: m, identity: id, prefix: lower}, nil
}

// PendingFill is the captured outcome of a vanity search.
type PendingFill struct {
	Result *types.Result
}

// Apply returns a copy of d with the winning field written.
func (p *PendingFill) Apply(d *txdraft.Draft) (*txdraft.Draft, error) {
	out := d.Clone()
	if err := out.Apply(p.Result.Fillable); err != nil {
		return nil, err
	}
	return out, nil
}

// Name implements Stage.
func (f *VanityFiller) Name() string { return "vanity" }

// Needs implements Stage. The search always runs.
func (f *VanityFiller) Needs(*txdraft.Draft) bool { return true }

// Prepare runs the search on d without modifying it.
func (f *VanityFiller) Prepare(ctx context.Context, d *txdraft.Draft) (Pending, error) {
	res, err := f.miner.Search(ctx, d, f.identity, f.prefix)
	if err != nil {
		return nil, err
	}
	return &PendingFill{Result: res}, nil
}

// Apply writes a prepared fill into d, which may be a different but
// otherwise identical draft.
func (f *VanityFiller) Apply(p Pending, d *txdraft.Draft) (*txdraft.Draft, error) {
	return p.Apply(d)
}

// Mine searches and applies in one call.
func (f *VanityFiller) Mine(ctx context.Context, d *txdraft.Draft) (*txdraft.Draft, error) {
	p, err := f.Prepare(ctx, d)
	if err != nil {
		return nil, err
	}
	return f.Apply(p, d)
}

// Mine returns a copy of d whose signed hash starts with prefix.
func Mine(ctx context.Context, m *miner.Miner, d *txdraft.Draft, id txdraft.Identity, prefix string) (*txdraft.Draft, error) {
	f, err := NewVanityFiller(m, id, prefix)
	if err != nil {
		return nil, err
	}
	return f.Mine(ctx, d)
}
