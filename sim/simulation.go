// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sim

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ava-labs/dagsim/database"
	"github.com/ava-labs/dagsim/ids"
	"github.com/ava-labs/dagsim/network"
	"github.com/ava-labs/dagsim/snow/consensus/avalanche"
	"github.com/ava-labs/dagsim/utils/logging"
	"github.com/ava-labs/dagsim/utils/perms"
	"github.com/ava-labs/dagsim/utils/sampler"

	engine "github.com/ava-labs/dagsim/snow/engine/avalanche"
)

var (
	ErrNoArchive   = errors.New("snapshot archive disabled")
	ErrUnknownNode = errors.New("unknown node")
)

// Simulation drives a network of engines the way a client would: one request
// per tick on a random node, sometimes followed by a conflicting request on
// another random node, then one voting round on every node.
type Simulation struct {
	config  Config
	log     logging.Logger
	rng     *sampler.RNG
	network network.Network
	archive *Archive

	// skipped is the number of requests that couldn't be issued.
	skipped atomic.Int64
}

// New builds the network described by [config]. Every node gets its own
// logger from [logFactory] and its own metrics namespace in [registerer]. If
// [db] is nil, snapshots aren't archived.
func New(
	config Config,
	log logging.Logger,
	logFactory logging.Factory,
	registerer prometheus.Registerer,
	db database.Database,
) (*Simulation, error) {
	if err := config.Verify(); err != nil {
		return nil, err
	}

	rng := sampler.NewRNG(config.Seed)
	net, err := network.NewNetwork(log, rng, registerer)
	if err != nil {
		return nil, err
	}

	for i := 0; i < config.NumNodes; i++ {
		name := fmt.Sprintf("node-%d", i)
		nodeLog, err := logFactory.Make(name)
		if err != nil {
			return nil, fmt.Errorf("couldn't create logger %s: %w", name, err)
		}

		e, err := engine.New(engine.Config{
			NodeID:     ids.BuildNodeID(uint64(i)),
			Log:        nodeLog,
			Params:     config.Params,
			Sampler:    net,
			Fetcher:    net,
			RNG:        rng,
			Registerer: registerer,
			Namespace:  fmt.Sprintf("node_%d", i),
		})
		if err != nil {
			return nil, fmt.Errorf("couldn't create %s: %w", name, err)
		}
		if err := net.Track(e); err != nil {
			return nil, err
		}
	}

	s := &Simulation{
		config:  config,
		log:     log,
		rng:     rng,
		network: net,
	}
	if db != nil {
		s.archive = NewArchive(db)
	}
	return s, nil
}

func (s *Simulation) Network() network.Network {
	return s.network
}

// Run issues the configured number of client requests, running one tick after
// each of them.
func (s *Simulation) Run(ctx context.Context) error {
	engines := s.network.Engines()
	for i := 0; i < s.config.NumTransactions; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		issuer := engines[s.rng.Intn(len(engines))]
		if err := s.issue(ctx, issuer, i); err != nil {
			return err
		}

		if s.rng.Float64() < s.config.DoubleSpendRatio {
			spent := s.rng.Intn(i + 1)
			shuffled := slices.Clone(engines)
			sampler.Shuffle(s.rng, len(shuffled), func(a, b int) {
				shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
			})

			s.log.Info("double spending",
				zap.Int("conflictKey", spent),
				zap.Stringer("nodeID", shuffled[0].NodeID()),
			)
			if err := s.issue(ctx, shuffled[0], spent); err != nil {
				return err
			}
		}

		if err := s.tick(ctx); err != nil {
			return err
		}
		if err := s.observe(uint64(i), engines[0]); err != nil {
			return err
		}
	}
	return nil
}

// issue generates a transaction spending [conflictKey] on [e]. A request no
// parents can be selected for is dropped.
func (s *Simulation) issue(ctx context.Context, e *engine.Engine, conflictKey int) error {
	_, err := e.Generate(ctx, conflictKey)
	if errors.Is(err, avalanche.ErrEmptyParentSelection) {
		s.skipped.Add(1)
		s.log.Warn("dropping client request",
			zap.Stringer("nodeID", e.NodeID()),
			zap.Int("conflictKey", conflictKey),
			zap.Error(err),
		)
		return nil
	}
	return err
}

// tick runs one voting round on every node.
func (s *Simulation) tick(ctx context.Context) error {
	engines := s.network.Engines()
	if !s.config.ConcurrentRounds {
		for _, e := range engines {
			if err := e.RunVotingRound(ctx); err != nil {
				return fmt.Errorf("voting round of %s failed: %w", e.NodeID(), err)
			}
		}
		return nil
	}

	eg, ctx := errgroup.WithContext(ctx)
	for _, e := range engines {
		eg.Go(func() error {
			if err := e.RunVotingRound(ctx); err != nil {
				return fmt.Errorf("voting round of %s failed: %w", e.NodeID(), err)
			}
			return nil
		})
	}
	return eg.Wait()
}

// observe reports the state of [e] after [tick].
func (s *Simulation) observe(tick uint64, e *engine.Engine) error {
	fraction, err := e.FractionAccepted()
	if err != nil {
		return err
	}
	s.log.Info("finished tick",
		zap.Uint64("tick", tick),
		zap.Stringer("nodeID", e.NodeID()),
		zap.Int("known", e.NumTxs()),
		zap.Float64("fractionAccepted", fraction),
	)

	if !s.config.DumpDAGs && s.archive == nil {
		return nil
	}

	snapshot, err := e.ExportGraph()
	if err != nil {
		return err
	}
	if s.config.DumpDAGs {
		path := filepath.Join(s.config.DumpDir, fmt.Sprintf("node-0-%03d.dot", tick))
		if err := os.WriteFile(path, []byte(snapshot.DOT()), perms.ReadWrite); err != nil {
			return fmt.Errorf("couldn't dump DAG to %s: %w", path, err)
		}
	}
	if s.archive != nil {
		if err := s.archive.Put(tick, snapshot); err != nil {
			return fmt.Errorf("couldn't archive tick %d: %w", tick, err)
		}
	}
	return nil
}

// Nodes returns the status of every node.
func (s *Simulation) Nodes() ([]NodeStatus, error) {
	engines := s.network.Engines()
	statuses := make([]NodeStatus, len(engines))
	for i, e := range engines {
		snapshot, err := e.ExportGraph()
		if err != nil {
			return nil, err
		}
		statuses[i] = statusOf(snapshot)
	}
	return statuses, nil
}

// Graph returns the current DAG of [nodeID].
func (s *Simulation) Graph(nodeID ids.NodeID) (*engine.GraphSnapshot, error) {
	e, ok := s.network.Engine(nodeID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, nodeID)
	}
	return e.ExportGraph()
}

// Snapshot returns the archived DAG of [nodeID] after [tick].
func (s *Simulation) Snapshot(tick uint64, nodeID ids.NodeID) (*engine.GraphSnapshot, error) {
	if s.archive == nil {
		return nil, ErrNoArchive
	}
	return s.archive.Get(tick, nodeID)
}
