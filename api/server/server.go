// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/ava-labs/dagsim/ids"
	"github.com/ava-labs/dagsim/sim"
	"github.com/ava-labs/dagsim/utils/logging"

	engine "github.com/ava-labs/dagsim/snow/engine/avalanche"
)

const (
	baseURL               = "/ext"
	serverShutdownTimeout = 10 * time.Second
	readHeaderTimeout     = 10 * time.Second

	DefaultSnapshotCacheSize = 1024
)

// Backend is the simulation state served over HTTP.
type Backend interface {
	Nodes() ([]sim.NodeStatus, error)
	Audit() (*sim.Report, error)
	Graph(nodeID ids.NodeID) (*engine.GraphSnapshot, error)
	Snapshot(tick uint64, nodeID ids.NodeID) (*engine.GraphSnapshot, error)
}

type Config struct {
	Host              string   `json:"host"`
	Port              uint16   `json:"port"`
	AllowedOrigins    []string `json:"allowedOrigins"`
	SnapshotCacheSize int      `json:"snapshotCacheSize"`
}

// Server exposes the nodes of a simulation, their DAGs and the metrics of the
// run.
type Server struct {
	log        logging.Logger
	config     Config
	backend    Backend
	snapshots  *snapshotCache
	rpcMetrics *rpcMetrics
	handler    http.Handler

	lock sync.Mutex
	srv  *http.Server
}

// New builds the routes of the server. Metrics are read from [gatherer] and
// the server's own metrics are registered into [registerer].
func New(
	log logging.Logger,
	config Config,
	backend Backend,
	gatherer prometheus.Gatherer,
	registerer prometheus.Registerer,
) (*Server, error) {
	snapshots, err := newSnapshotCache(config.SnapshotCacheSize, registerer)
	if err != nil {
		return nil, err
	}

	s := &Server{
		log:       log,
		config:    config,
		backend:   backend,
		snapshots: snapshots,
	}

	rpcHandler, err := s.newRPCHandler(registerer)
	if err != nil {
		return nil, err
	}

	router := mux.NewRouter()
	api := router.PathPrefix(baseURL).Subrouter()
	api.HandleFunc("/nodes", s.getNodes).Methods(http.MethodGet)
	api.HandleFunc("/nodes/{nodeID}/graph", s.getGraph).Methods(http.MethodGet)
	api.HandleFunc("/snapshots/{tick:[0-9]+}/{nodeID}", s.getSnapshot).Methods(http.MethodGet)
	api.HandleFunc("/audit", s.getAudit).Methods(http.MethodGet)
	api.Handle("/rpc", rpcHandler).Methods(http.MethodPost)
	api.Handle("/metrics", promhttp.InstrumentMetricHandler(
		registerer,
		promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
	)).Methods(http.MethodGet)
	router.Use(s.logRequests)

	log.Info("API created",
		zap.Strings("allowedOrigins", config.AllowedOrigins),
	)
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   config.AllowedOrigins,
		AllowCredentials: true,
	}).Handler(router)
	s.handler = gziphandler.GzipHandler(corsHandler)
	return s, nil
}

// Handler returns the root handler of the server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Dispatch starts the API server. It returns once the server is shut down.
func (s *Server) Dispatch() error {
	listenAddress := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	listener, err := net.Listen("tcp", listenAddress)
	if err != nil {
		return err
	}

	s.log.Info("HTTP API server listening",
		zap.Stringer("address", listener.Addr()),
	)

	s.lock.Lock()
	s.srv = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	srv := s.srv
	s.lock.Unlock()

	err = srv.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown this server
func (s *Server) Shutdown() error {
	s.lock.Lock()
	srv := s.srv
	s.lock.Unlock()

	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("served API call",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
