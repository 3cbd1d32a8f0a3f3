// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/rpc/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ava-labs/dagsim/ids"
	"github.com/ava-labs/dagsim/sim"
	"github.com/ava-labs/dagsim/utils/wrappers"
)

const rpcServiceName = "sim"

// Service is the JSON-RPC view of the simulation, served at /ext/rpc under
// the "sim" namespace.
type Service struct {
	server *Server
}

type GetNodesReply struct {
	Nodes []sim.NodeStatus `json:"nodes"`
}

// GetNodes returns the acceptance progress of every node.
func (s *Service) GetNodes(_ *http.Request, _ *struct{}, reply *GetNodesReply) error {
	s.server.log.Debug("API called",
		zap.String("service", rpcServiceName),
		zap.String("method", "getNodes"),
	)

	nodes, err := s.server.backend.Nodes()
	reply.Nodes = nodes
	return err
}

// Audit returns the safety report of the simulation.
func (s *Service) Audit(_ *http.Request, _ *struct{}, reply *sim.Report) error {
	s.server.log.Debug("API called",
		zap.String("service", rpcServiceName),
		zap.String("method", "audit"),
	)

	report, err := s.server.backend.Audit()
	if err != nil {
		return err
	}
	*reply = *report
	return nil
}

type GetGraphArgs struct {
	NodeID ids.NodeID `json:"nodeID"`
	// Format is either "json" or "dot". Defaults to "json".
	Format string `json:"format"`
}

type GetSnapshotArgs struct {
	Tick   uint64     `json:"tick"`
	NodeID ids.NodeID `json:"nodeID"`
	Format string     `json:"format"`
}

// GraphReply carries either the JSON graph or its DOT rendering.
type GraphReply struct {
	Format string          `json:"format"`
	Graph  json.RawMessage `json:"graph,omitempty"`
	DOT    string          `json:"dot,omitempty"`
}

// GetGraph returns the current DAG of a node.
func (s *Service) GetGraph(_ *http.Request, args *GetGraphArgs, reply *GraphReply) error {
	s.server.log.Debug("API called",
		zap.String("service", rpcServiceName),
		zap.String("method", "getGraph"),
		zap.Stringer("nodeID", args.NodeID),
	)

	format, err := parseFormat(args.Format)
	if err != nil {
		return err
	}
	resp, err := s.server.graph(args.NodeID, format)
	if err != nil {
		return err
	}
	reply.fill(format, resp)
	return nil
}

// GetSnapshot returns the DAG a node had at the end of an archived tick.
func (s *Service) GetSnapshot(_ *http.Request, args *GetSnapshotArgs, reply *GraphReply) error {
	s.server.log.Debug("API called",
		zap.String("service", rpcServiceName),
		zap.String("method", "getSnapshot"),
		zap.Uint64("tick", args.Tick),
		zap.Stringer("nodeID", args.NodeID),
	)

	format, err := parseFormat(args.Format)
	if err != nil {
		return err
	}
	resp, err := s.server.snapshot(snapshotKey{
		tick:   args.Tick,
		nodeID: args.NodeID,
		format: format,
	})
	if err != nil {
		return err
	}
	reply.fill(format, resp)
	return nil
}

func (r *GraphReply) fill(format string, resp response) {
	r.Format = format
	if format == formatDOT {
		r.DOT = string(resp.body)
		return
	}
	r.Graph = resp.body
}

type rpcMetrics struct {
	calls  *prometheus.CounterVec
	errors *prometheus.CounterVec
}

func newRPCMetrics(registerer prometheus.Registerer) (*rpcMetrics, error) {
	m := &rpcMetrics{
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "api_rpc_calls",
				Help: "Number of JSON-RPC calls served",
			},
			[]string{"method"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "api_rpc_errors",
				Help: "Number of JSON-RPC calls that returned an error",
			},
			[]string{"method"},
		),
	}
	errs := wrappers.Errs{}
	errs.Add(
		registerer.Register(m.calls),
		registerer.Register(m.errors),
	)
	return m, errs.Err
}

func (m *rpcMetrics) afterRequest(info *rpc.RequestInfo) {
	m.calls.WithLabelValues(info.Method).Inc()
	if info.Error != nil {
		m.errors.WithLabelValues(info.Method).Inc()
	}
}

func (s *Server) newRPCHandler(registerer prometheus.Registerer) (http.Handler, error) {
	metrics, err := newRPCMetrics(registerer)
	if err != nil {
		return nil, err
	}
	s.rpcMetrics = metrics

	codec := newCodec()
	rpcServer := rpc.NewServer()
	rpcServer.RegisterCodec(codec, "application/json")
	rpcServer.RegisterCodec(codec, "application/json;charset=UTF-8")
	rpcServer.RegisterAfterFunc(metrics.afterRequest)
	if err := rpcServer.RegisterService(&Service{server: s}, rpcServiceName); err != nil {
		return nil, err
	}
	s.log.Info("registered JSON-RPC service",
		zap.String("name", rpcServiceName),
	)
	return rpcServer, nil
}
