package worker

import (
	"fmt"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/screa/vanity-tx-miner/internal/crypto"
	"github.com/screa/vanity-tx-miner/pkg/txdraft"
	"github.com/screa/vanity-tx-miner/pkg/types"
)

// Attempts are published to the shared counter in batches to keep the
// atomic off the hot path.
const flushEvery = 256

// Match is a candidate whose digest carries the prefix.
type Match struct {
	Candidate uint256.Int
	Hash      common.Hash
}

// Worker searches one partition of the candidate domain
type Worker struct {
	id       int
	config   *types.WorkerConfig
	draft    *txdraft.Draft
	identity txdraft.Identity
	oracle   txdraft.Oracle
	attempts *atomic.Uint64
	done     *Signal

	// chosen once from config.Mode so the loop never branches on it
	set func(d *txdraft.Draft, v *uint256.Int)
}

// NewWorker creates a new worker instance. The worker keeps its own clone
// of draft.
func NewWorker(id int, config *types.WorkerConfig, draft *txdraft.Draft, identity txdraft.Identity,
	oracle txdraft.Oracle, attempts *atomic.Uint64, done *Signal) *Worker {
	w := &Worker{
		id:       id,
		config:   config,
		draft:    draft.Clone(),
		identity: identity,
		oracle:   oracle,
		attempts: attempts,
		done:     done,
	}
	switch config.Mode {
	case types.GasField:
		w.set = setGas
	default:
		if w.draft.Value == nil {
			w.draft.Value = new(uint256.Int)
		}
		w.set = setValue
	}
	return w
}

func setGas(d *txdraft.Draft, v *uint256.Int) { d.Gas = v.Uint64() }

func setValue(d *txdraft.Draft, v *uint256.Int) { d.Value.Set(v) }

// ID returns the worker index.
func (w *Worker) ID() int {
	return w.id
}

// Run walks the partition. It returns the first match, or nil when the
// partition is exhausted or the signal fired first. A match fires the
// signal. Oracle failures are wrapped in types.ErrDigestFailed.
func (w *Worker) Run() (*Match, error) {
	base, err := w.draft.Field(w.config.Mode)
	if err != nil {
		return nil, err
	}
	cur := new(uint256.Int).Add(base, &w.config.Partition.Start)
	end := new(uint256.Int).Add(cur, &w.config.Partition.Width)

	var local uint64
	defer func() { w.attempts.Add(local) }()

	for cur.Lt(end) {
		if w.done.Fired() {
			return nil, nil
		}

		w.set(w.draft, cur)
		digest, err := w.oracle.Digest(w.draft, w.identity)
		local++
		if local == flushEvery {
			w.attempts.Add(local)
			local = 0
		}
		if err != nil {
			return nil, fmt.Errorf("%w: worker %d (0x%s) at %s %s: %w",
				types.ErrDigestFailed, w.id, w.config.Prefix, w.config.Mode, cur.Dec(), err)
		}

		if crypto.HasHexPrefix(digest[:], w.config.Nibbles) {
			w.done.Fire()
			return &Match{Candidate: *cur, Hash: digest}, nil
		}
		cur.AddUint64(cur, 1)
	}
	return nil, nil
}
