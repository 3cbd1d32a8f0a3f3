// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package avalanche

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ava-labs/dagsim/ids"
	"github.com/ava-labs/dagsim/snow/consensus/avalanche"
	"github.com/ava-labs/dagsim/utils/logging"
	"github.com/ava-labs/dagsim/utils/set"
)

var (
	_ Peer = (*Engine)(nil)

	ErrUnknownTx = errors.New("unknown transaction")

	errMissingSampler     = errors.New("missing peer sampler")
	errMissingFetcher     = errors.New("missing ancestor fetcher")
	errMissingRNG         = errors.New("missing RNG")
	errInvalidConflictKey = errors.New("invalid conflict key")
)

// Engine is the consensus state of a single node. Every exported method is
// safe for concurrent use. Remote calls are never made while the engine's
// lock is held, so engines can query each other freely.
type Engine struct {
	Config
	metrics

	// pollLock serializes voting rounds.
	pollLock sync.Mutex

	// lock guards everything below.
	lock      sync.RWMutex
	store     *avalanche.TxStore
	conflicts *avalanche.ConflictRegistry
	ancestry  *avalanche.AncestryCache
	// queried contains the transactions whose voting round has completed.
	queried set.Set[ids.ID]
	// accepted contains the transactions finalized by this node.
	accepted set.Set[ids.ID]
	// nonce is the number of transactions generated by this node.
	nonce uint64
}

// New returns an engine seeded with the genesis transaction.
func New(config Config) (*Engine, error) {
	if err := config.Params.Verify(); err != nil {
		return nil, err
	}
	switch {
	case config.Sampler == nil:
		return nil, errMissingSampler
	case config.Fetcher == nil:
		return nil, errMissingFetcher
	case config.RNG == nil:
		return nil, errMissingRNG
	}
	if config.Log == nil {
		config.Log = logging.NoLog{}
	}
	if config.Registerer == nil {
		config.Registerer = prometheus.NewRegistry()
	}

	e := &Engine{
		Config:    config,
		store:     avalanche.NewTxStore(),
		conflicts: avalanche.NewConflictRegistry(),
		ancestry:  avalanche.NewAncestryCache(),
		queried:   set.Set[ids.ID]{},
		accepted:  set.Set[ids.ID]{},
	}
	if err := e.metrics.Initialize(config.Namespace, config.Registerer); err != nil {
		return nil, err
	}

	genesis := avalanche.NewGenesis()
	state, _ := e.store.Add(genesis)
	state.Chit = 1
	e.conflicts.Register(genesis)
	e.queried.Add(genesis.ID())
	e.accepted.Add(genesis.ID())
	e.txsKnown.Set(1)
	e.txsAccepted.Set(1)
	return e, nil
}

func (e *Engine) NodeID() ids.NodeID {
	return e.Config.NodeID
}

// Generate issues a new transaction spending [conflictKey] on top of the
// parents chosen by the parent selection. The transaction is known locally
// once Generate returns.
func (e *Engine) Generate(_ context.Context, conflictKey int) (*avalanche.Tx, error) {
	if conflictKey == avalanche.GenesisConflictKey {
		return nil, fmt.Errorf("%w: %d is reserved for genesis", errInvalidConflictKey, conflictKey)
	}

	e.lock.Lock()
	defer e.lock.Unlock()

	parents, err := e.parentSelection()
	if err != nil {
		return nil, err
	}

	txID := avalanche.NewTxID(e.Config.NodeID, e.nonce, conflictKey, parents)
	tx := avalanche.NewTx(txID, conflictKey, parents)
	if err := e.admit([]*avalanche.Tx{tx}); err != nil {
		return nil, err
	}
	e.nonce++
	e.txsIssued.Inc()

	e.Log.Debug("generated transaction",
		zap.Stringer("tx", tx),
	)
	return tx, nil
}

// RespondToQuery ingests [tx] and votes for it if it is strongly preferred.
// If the ancestry of [tx] can't be resolved, the transaction is dropped and
// the vote is negative.
func (e *Engine) RespondToQuery(ctx context.Context, sender ids.NodeID, tx *avalanche.Tx) (bool, error) {
	if err := e.Ingest(ctx, sender, tx); err != nil {
		return false, err
	}

	e.lock.Lock()
	defer e.lock.Unlock()

	return e.isStronglyPreferred(tx)
}

// GetTx returns a copy of a known transaction.
func (e *Engine) GetTx(txID ids.ID) (*avalanche.Tx, bool) {
	e.lock.RLock()
	defer e.lock.RUnlock()

	state, ok := e.store.Get(txID)
	if !ok {
		return nil, false
	}
	return state.Tx.Clone(), true
}

// NumTxs returns the number of known transactions, genesis included.
func (e *Engine) NumTxs() int {
	e.lock.RLock()
	defer e.lock.RUnlock()

	return e.store.Len()
}

func (e *Engine) IsPreferred(txID ids.ID) (bool, error) {
	e.lock.RLock()
	defer e.lock.RUnlock()

	state, ok := e.store.Get(txID)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownTx, txID)
	}
	return e.isPreferred(state.Tx)
}

func (e *Engine) IsStronglyPreferred(txID ids.ID) (bool, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	state, ok := e.store.Get(txID)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownTx, txID)
	}
	return e.isStronglyPreferred(state.Tx)
}

// IsAccepted returns true if [txID] is finalized. Unknown transactions are
// reported as not accepted.
func (e *Engine) IsAccepted(txID ids.ID) (bool, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.isAccepted(txID, make(map[ids.ID]bool))
}

// FractionAccepted returns the share of known transactions that are accepted.
func (e *Engine) FractionAccepted() (float64, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	if err := e.updateAccepted(); err != nil {
		return 0, err
	}
	return float64(e.accepted.Len()) / float64(e.store.Len()), nil
}

func (e *Engine) isPreferred(tx *avalanche.Tx) (bool, error) {
	cs, err := e.conflictSet(tx)
	if err != nil {
		return false, err
	}
	return cs.Preferred == tx.ID(), nil
}

// isStronglyPreferred returns true if every known ancestor of [tx] is
// preferred.
func (e *Engine) isStronglyPreferred(tx *avalanche.Tx) (bool, error) {
	for ancestorID := range e.ancestry.Ancestry(e.store, tx) {
		ancestor, ok := e.store.Get(ancestorID)
		if !ok {
			return false, e.inconsistent("ancestor %s of %s isn't stored", ancestorID, tx.ID())
		}
		preferred, err := e.isPreferred(ancestor.Tx)
		if err != nil || !preferred {
			return false, err
		}
	}
	return true, nil
}

// isAccepted evaluates the acceptance predicate on [txID] and its parents.
// [rejected] caches the transactions found not accepted during this
// evaluation.
func (e *Engine) isAccepted(txID ids.ID, rejected map[ids.ID]bool) (bool, error) {
	if e.accepted.Contains(txID) {
		return true, nil
	}
	if !e.queried.Contains(txID) || rejected[txID] {
		return false, nil
	}

	state, ok := e.store.Get(txID)
	if !ok {
		return false, e.inconsistent("queried transaction %s isn't stored", txID)
	}
	cs, err := e.conflictSet(state.Tx)
	if err != nil {
		return false, err
	}

	accepted := cs.Preferred == txID && cs.Count > e.Params.BetaRogue
	if !accepted && cs.Virtuous() && state.Confidence > e.Params.BetaVirtuous {
		accepted = true
		for i := 0; i < state.Tx.NumParents(); i++ {
			parentAccepted, err := e.isAccepted(state.Tx.Parent(i), rejected)
			if err != nil {
				return false, err
			}
			if !parentAccepted {
				accepted = false
				break
			}
		}
	}
	if !accepted {
		rejected[txID] = true
		return false, nil
	}

	e.accepted.Add(txID)
	e.txsAccepted.Set(float64(e.accepted.Len()))
	e.Log.Debug("accepted transaction",
		zap.Stringer("tx", state),
	)
	return true, nil
}

// updateAccepted evaluates the acceptance predicate on every known
// transaction.
func (e *Engine) updateAccepted() error {
	var (
		rejected = make(map[ids.ID]bool)
		err      error
	)
	e.store.Iterate(func(state *avalanche.TxState) bool {
		_, err = e.isAccepted(state.Tx.ID(), rejected)
		return err == nil
	})
	return err
}

func (e *Engine) conflictSet(tx *avalanche.Tx) (*avalanche.ConflictSet, error) {
	cs, ok := e.conflicts.Get(tx.ConflictKey())
	if !ok {
		return nil, e.inconsistent("missing conflict set %d of %s", tx.ConflictKey(), tx.ID())
	}
	return cs, nil
}

// inconsistent reports a broken invariant. With assertions enabled this
// panics.
func (e *Engine) inconsistent(format string, args ...any) error {
	err := fmt.Errorf("%w: %s", avalanche.ErrStateInconsistency, fmt.Sprintf(format, args...))
	e.Log.AssertNoError(err)
	return err
}
