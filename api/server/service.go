// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/ava-labs/dagsim/ids"
	"github.com/ava-labs/dagsim/sim"

	engine "github.com/ava-labs/dagsim/snow/engine/avalanche"
)

const (
	formatJSON = "json"
	formatDOT  = "dot"

	contentTypeJSON = "application/json"
	contentTypeDOT  = "text/vnd.graphviz"
)

var errInvalidRequest = errors.New("invalid request")

type errorReply struct {
	Error string `json:"error"`
}

// response is an encoded reply ready to be written.
type response struct {
	contentType string
	body        []byte
}

func (s *Server) getNodes(w http.ResponseWriter, _ *http.Request) {
	nodes, err := s.backend.Nodes()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, nodes)
}

func (s *Server) getAudit(w http.ResponseWriter, _ *http.Request) {
	report, err := s.backend.Audit()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, report)
}

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	nodeID, format, err := parseGraphRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp, err := s.graph(nodeID, format)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.write(w, resp)
}

func (s *Server) getSnapshot(w http.ResponseWriter, r *http.Request) {
	nodeID, format, err := parseGraphRequest(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	tick, err := strconv.ParseUint(mux.Vars(r)["tick"], 10, 64)
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: %w", errInvalidRequest, err))
		return
	}
	resp, err := s.snapshot(snapshotKey{
		tick:   tick,
		nodeID: nodeID,
		format: format,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.write(w, resp)
}

func (s *Server) graph(nodeID ids.NodeID, format string) (response, error) {
	snapshot, err := s.backend.Graph(nodeID)
	if err != nil {
		return response{}, err
	}
	return encodeGraph(snapshot, format)
}

// snapshot serves archived graphs. They never change once archived, so
// encoded replies are cached.
func (s *Server) snapshot(key snapshotKey) (response, error) {
	if resp, ok := s.snapshots.get(key); ok {
		return resp, nil
	}

	snapshot, err := s.backend.Snapshot(key.tick, key.nodeID)
	if err != nil {
		return response{}, err
	}
	resp, err := encodeGraph(snapshot, key.format)
	if err != nil {
		return response{}, err
	}
	s.snapshots.put(key, resp)
	return resp, nil
}

func parseGraphRequest(r *http.Request) (ids.NodeID, string, error) {
	nodeID, err := ids.NodeIDFromString(mux.Vars(r)["nodeID"])
	if err != nil {
		return ids.EmptyNodeID, "", fmt.Errorf("%w: %w", errInvalidRequest, err)
	}

	format, err := parseFormat(r.URL.Query().Get("format"))
	if err != nil {
		return ids.EmptyNodeID, "", err
	}
	return nodeID, format, nil
}

func parseFormat(format string) (string, error) {
	switch format {
	case "":
		return formatJSON, nil
	case formatJSON, formatDOT:
		return format, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", errInvalidRequest, format)
	}
}

func encodeGraph(snapshot *engine.GraphSnapshot, format string) (response, error) {
	if format == formatDOT {
		return response{
			contentType: contentTypeDOT,
			body:        []byte(snapshot.DOT()),
		}, nil
	}
	body, err := json.Marshal(snapshot)
	return response{
		contentType: contentTypeJSON,
		body:        body,
	}, err
}

func (s *Server) writeJSON(w http.ResponseWriter, reply any) {
	body, err := json.Marshal(reply)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.write(w, response{
		contentType: contentTypeJSON,
		body:        body,
	})
}

func (s *Server) write(w http.ResponseWriter, resp response) {
	w.Header().Set("Content-Type", resp.contentType)
	if _, err := w.Write(resp.body); err != nil {
		s.log.Debug("failed to write API reply",
			zap.Error(err),
		)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		s.log.Error("API call failed",
			zap.Error(err),
		)
	}

	body, _ := json.Marshal(errorReply{Error: err.Error()})
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, errInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, sim.ErrUnknownNode), errors.Is(err, sim.ErrNoSnapshot):
		return http.StatusNotFound
	case errors.Is(err, sim.ErrNoArchive):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
