// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ava-labs/dagsim/api/server"
	"github.com/ava-labs/dagsim/config"
	"github.com/ava-labs/dagsim/database"
	"github.com/ava-labs/dagsim/database/leveldb"
	"github.com/ava-labs/dagsim/sim"
	"github.com/ava-labs/dagsim/utils/logging"
	"github.com/ava-labs/dagsim/utils/perms"
	"github.com/ava-labs/dagsim/utils/wrappers"
)

const (
	exitCodeFailure   = 1
	exitCodeViolation = 2
)

var _ App = (*simulator)(nil)

// simulator runs one simulation in this process. If the HTTP server is
// enabled, the results are served until the simulator is stopped.
type simulator struct {
	config config.Config

	ctx    context.Context
	cancel context.CancelFunc

	exitWG   sync.WaitGroup
	exitCode int
}

func New(config config.Config) App {
	ctx, cancel := context.WithCancel(context.Background())
	return &simulator{
		config: config,
		ctx:    ctx,
		cancel: cancel,
	}
}

// resources are released once the simulator exits.
type resources struct {
	log        logging.Logger
	logFactory logging.Factory
	db         database.Database
	simulation *sim.Simulation
	server     *server.Server
}

func (r *resources) close() {
	if r.db != nil {
		if err := r.db.Close(); err != nil {
			r.log.Error("failed to close the snapshot archive",
				zap.Error(err),
			)
		}
	}
	r.log.Stop()
	r.logFactory.Close()
}

// Start the simulation. Does not block until the simulation is done. Errors
// returned from this method are not logged.
func (s *simulator) Start() error {
	if err := perms.ChmodR(s.config.Logging.Directory, true, perms.ReadWriteExecute); err != nil {
		return fmt.Errorf("failed to restrict the permissions of the log directory with: %w", err)
	}
	if err := perms.ChmodR(s.config.SnapshotDB, true, perms.ReadWriteExecute); err != nil {
		return fmt.Errorf("failed to restrict the permissions of the snapshot directory with: %w", err)
	}
	if s.config.Sim.DumpDAGs {
		if err := os.MkdirAll(s.config.Sim.DumpDir, perms.ReadWriteExecute); err != nil {
			return fmt.Errorf("couldn't create the dump directory: %w", err)
		}
	}

	r, err := s.initialize()
	if err != nil {
		return err
	}

	// [s.ExitCode] will block until [s.exitWG.Done] is called
	s.exitWG.Add(1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				fmt.Println("caught panic", p)
				s.exitCode = exitCodeFailure
			}
			s.exitWG.Done()
		}()
		defer r.close()
		defer r.log.StopOnPanic()

		s.exitCode = s.run(r)
	}()
	return nil
}

func (s *simulator) initialize() (*resources, error) {
	logFactory := logging.NewFactory(s.config.Logging)
	log, err := logFactory.Make("sim")
	if err != nil {
		logFactory.Close()
		return nil, err
	}
	r := &resources{
		log:        log,
		logFactory: logFactory,
	}

	if s.config.Logging.Assertions {
		log.Debug("assertions are enabled. This may slow down execution")
	}

	if s.config.SnapshotDB != "" {
		db, err := leveldb.New(s.config.SnapshotDB, log)
		if err != nil {
			r.close()
			return nil, fmt.Errorf("couldn't open the snapshot archive: %w", err)
		}
		r.db = db
	}

	registry := prometheus.NewRegistry()
	r.simulation, err = sim.New(s.config.Sim, log, logFactory, registry, r.db)
	if err != nil {
		r.close()
		return nil, err
	}

	if s.config.HTTPEnabled {
		apiLog, err := logFactory.Make("api")
		if err != nil {
			r.close()
			return nil, err
		}
		r.server, err = server.New(apiLog, s.config.HTTP, r.simulation, registry, registry)
		if err != nil {
			r.close()
			return nil, err
		}
	}
	return r, nil
}

func (s *simulator) run(r *resources) int {
	var eg errgroup.Group
	if r.server != nil {
		eg.Go(func() error {
			err := r.server.Dispatch()
			// Nothing can be observed without the server.
			s.cancel()
			return err
		})
	}

	r.log.Info("starting simulation",
		zap.Int("numNodes", s.config.Sim.NumNodes),
		zap.Int("numTransactions", s.config.Sim.NumTransactions),
		zap.Float64("doubleSpendRatio", s.config.Sim.DoubleSpendRatio),
		zap.Uint64("seed", s.config.Sim.Seed),
		zap.Reflect("params", s.config.Sim.Params),
	)
	exitCode := s.simulate(r)

	if r.server != nil {
		if s.ctx.Err() == nil {
			r.log.Info("serving the results until stopped")
		}
		<-s.ctx.Done()

		errs := wrappers.Errs{}
		errs.Add(
			r.server.Shutdown(),
			eg.Wait(),
		)
		if errs.Errored() {
			r.log.Error("API server failed",
				zap.Error(errs.Err),
			)
			exitCode = exitCodeFailure
		}
	}
	return exitCode
}

func (s *simulator) simulate(r *resources) int {
	err := r.simulation.Run(s.ctx)
	switch {
	case errors.Is(err, context.Canceled):
		r.log.Info("simulation interrupted")
	case err != nil:
		r.log.Error("simulation failed",
			zap.Error(err),
		)
		return exitCodeFailure
	}

	report, err := r.simulation.Audit()
	if err != nil {
		r.log.Error("audit failed",
			zap.Error(err),
		)
		return exitCodeFailure
	}

	for _, node := range report.Nodes {
		r.log.Info("node finished",
			zap.Stringer("nodeID", node.NodeID),
			zap.Int("known", node.Known),
			zap.Int("accepted", node.Accepted),
			zap.Float64("fractionAccepted", node.FractionAccepted),
		)
	}
	for _, violation := range report.Violations {
		r.log.Error("safety violation",
			zap.Stringer("violation", violation),
		)
	}
	r.log.Info("audit finished",
		zap.Ints("contestedKeys", report.ContestedKeys),
		zap.Int("violations", len(report.Violations)),
		zap.Int("skippedTxs", report.SkippedTxs),
	)
	if !report.Safe() {
		return exitCodeViolation
	}
	return 0
}

// Stop attempts to shutdown the simulation. This function will return
// immediately.
func (s *simulator) Stop() error {
	s.cancel()
	return nil
}

// ExitCode returns the exit code of the simulation. This function blocks until
// the simulation is done.
func (s *simulator) ExitCode() (int, error) {
	s.exitWG.Wait()
	return s.exitCode, nil
}
