package miner

import (
	"context"
	"fmt"
	"math/big"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/holiman/uint256"

	"github.com/screa/vanity-tx-miner/internal/config"
	"github.com/screa/vanity-tx-miner/internal/crypto"
	"github.com/screa/vanity-tx-miner/pkg/txdraft"
	"github.com/screa/vanity-tx-miner/pkg/types"
	"github.com/screa/vanity-tx-miner/pkg/worker"
)

// Miner coordinates a prefix search across workers. It holds no per-search
// state, so one Miner may run several searches at once.
type Miner struct {
	config *config.Config
	oracle txdraft.Oracle
	events types.EventSink
}

// NewMiner creates a new miner instance. A nil sink discards events.
func NewMiner(cfg *config.Config, oracle txdraft.Oracle, events types.EventSink) *Miner {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if events == nil {
		events = types.Discard
	}
	return &Miner{
		config: cfg,
		oracle: oracle,
		events: events,
	}
}

// Mode returns the field a search for an l-character prefix will vary.
func (m *Miner) Mode(l int) (types.Mode, error) {
	mode, err := m.config.IterationMode()
	if err != nil {
		return types.ModeAuto, err
	}
	if mode != types.ModeAuto {
		return mode, nil
	}
	return SelectMode(l, m.config.GasThreshold), nil
}

// outcome is what a worker reports back to the race.
type outcome struct {
	worker int
	match  *worker.Match
	err    error
}

// Search looks for a value of one draft field such that the signed
// transaction hash starts with prefix. The prefix is validated before any
// worker starts. Each round partitions a domain of margin x budget offsets
// across the workers; the first match or oracle error stops every worker.
// When all rounds are exhausted the error wraps types.ErrExhausted. The
// caller's draft is never modified.
func (m *Miner) Search(ctx context.Context, draft *txdraft.Draft, id txdraft.Identity, prefix string) (*types.Result, error) {
	lower, nibbles, err := crypto.DecodePrefix(prefix)
	if err != nil {
		return nil, err
	}
	mode, err := m.Mode(len(lower))
	if err != nil {
		return nil, err
	}
	base, err := draft.Field(mode)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	margin := m.config.Margin
	if margin == 0 {
		margin = config.DefaultMargin
	}
	rounds := m.config.MaxRounds
	if rounds < 1 {
		rounds = 1
	}
	want := new(big.Int).Mul(EstimateBudget(len(lower)), new(big.Int).SetUint64(margin))

	start := time.Now()
	var attempts atomic.Uint64
	offset := new(uint256.Int)

	for round := 0; round < rounds; round++ {
		domain := fieldDomain(mode, base, offset, want)
		parts := Partition(offset, domain, m.config.Workers)
		if len(parts) == 0 {
			break
		}
		m.events.Event(types.Event{
			Kind:    types.EventStarted,
			Prefix:  lower,
			Mode:    mode,
			Workers: len(parts),
			Round:   round,
			Domain:  domain.Dec(),
		})

		configs := make([]*types.WorkerConfig, len(parts))
		for i := range parts {
			configs[i] = &types.WorkerConfig{Mode: mode, Prefix: lower, Nibbles: nibbles, Partition: parts[i]}
		}

		won, err := m.race(ctx, draft, id, configs, &attempts, start)
		if err != nil {
			m.finished(lower, mode, &attempts, start, nil, err)
			return nil, err
		}
		if won != nil {
			fill := types.ValueFill(&won.match.Candidate)
			if mode == types.GasField {
				fill = types.GasFill(won.match.Candidate.Uint64())
			}
			result := &types.Result{
				Fillable: fill,
				Hash:     won.match.Hash,
				Worker:   won.worker,
				Round:    round,
				Attempts: attempts.Load(),
				Duration: time.Since(start),
			}
			m.events.Event(types.Event{Kind: types.EventMatch, Prefix: lower, Mode: mode, Round: round, Result: result})
			m.finished(lower, mode, &attempts, start, result, nil)
			return result, nil
		}

		// widen: the next round covers the following range, twice as wide
		offset.Add(offset, domain)
		want.Lsh(want, 1)
	}

	err = fmt.Errorf("%w: prefix %q after %d attempts", types.ErrExhausted, lower, attempts.Load())
	m.finished(lower, mode, &attempts, start, nil, err)
	return nil, err
}

// race runs one worker per config and returns the first match. Every
// worker has returned by the time race does.
func (m *Miner) race(ctx context.Context, draft *txdraft.Draft, id txdraft.Identity,
	configs []*types.WorkerConfig, attempts *atomic.Uint64, start time.Time) (*outcome, error) {
	done := worker.NewSignal()
	stop := context.AfterFunc(ctx, func() { done.Fire() })
	defer stop()

	outcomes := make(chan outcome, len(configs))
	for i, cfg := range configs {
		w := worker.NewWorker(i, cfg, draft, id, m.oracle, attempts, done)
		go func() {
			match, err := w.Run()
			outcomes <- outcome{worker: w.ID(), match: match, err: err}
		}()
	}

	// Start periodic logging if verbose mode is enabled
	if m.config.Verbose && m.config.LogInterval > 0 {
		logTicker := time.NewTicker(time.Duration(m.config.LogInterval) * time.Second)
		logDone := make(chan struct{})
		go m.periodicLogger(logTicker, logDone, attempts, start)
		defer func() {
			logTicker.Stop()
			close(logDone)
		}()
	}

	var won *outcome
	var firstErr error
	for range configs {
		o := <-outcomes
		if won != nil || firstErr != nil {
			continue
		}
		switch {
		case o.err != nil:
			firstErr = o.err
			done.Fire()
		case o.match != nil:
			won = &o
			done.Fire()
		}
	}

	switch {
	case won != nil:
		return won, nil
	case firstErr != nil:
		return nil, firstErr
	case ctx.Err() != nil:
		return nil, ctx.Err()
	}
	return nil, nil
}

func (m *Miner) finished(prefix string, mode types.Mode, attempts *atomic.Uint64, start time.Time, result *types.Result, err error) {
	m.events.Event(types.Event{
		Kind:     types.EventFinished,
		Prefix:   prefix,
		Mode:     mode,
		Attempts: attempts.Load(),
		Elapsed:  time.Since(start),
		Result:   result,
		Err:      err,
	})
}

// periodicLogger reports mining progress at regular intervals
func (m *Miner) periodicLogger(ticker *time.Ticker, done <-chan struct{}, attempts *atomic.Uint64, start time.Time) {
	for {
		select {
		case <-ticker.C:
			m.events.Event(types.Event{
				Kind:     types.EventProgress,
				Attempts: attempts.Load(),
				Elapsed:  time.Since(start),
			})
		case <-done:
			return
		}
	}
}
