// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ava-labs/dagsim/ids"
	"github.com/ava-labs/dagsim/sim"
	"github.com/ava-labs/dagsim/utils/logging"

	engine "github.com/ava-labs/dagsim/snow/engine/avalanche"
)

var (
	nodeA = ids.BuildNodeID(0)
	nodeB = ids.BuildNodeID(1)
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type testBackend struct {
	archive       bool
	snapshotCalls int
}

func (*testBackend) Nodes() ([]sim.NodeStatus, error) {
	return []sim.NodeStatus{
		{NodeID: nodeA, Known: 2, Accepted: 1, FractionAccepted: 0.5},
		{NodeID: nodeB, Known: 1, Accepted: 1, FractionAccepted: 1},
	}, nil
}

func (*testBackend) Audit() (*sim.Report, error) {
	return &sim.Report{
		ContestedKeys: []int{3},
		SkippedTxs:    1,
	}, nil
}

func testGraph(nodeID ids.NodeID) *engine.GraphSnapshot {
	return &engine.GraphSnapshot{
		NodeID: nodeID,
		Vertices: []engine.Vertex{{
			ID:          ids.Empty,
			ConflictKey: -1,
			Parents:     []ids.ID{},
			Chit:        1,
			Accepted:    true,
			Preferred:   true,
		}},
	}
}

func (*testBackend) Graph(nodeID ids.NodeID) (*engine.GraphSnapshot, error) {
	if nodeID != nodeA {
		return nil, sim.ErrUnknownNode
	}
	return testGraph(nodeID), nil
}

func (b *testBackend) Snapshot(tick uint64, nodeID ids.NodeID) (*engine.GraphSnapshot, error) {
	b.snapshotCalls++
	switch {
	case !b.archive:
		return nil, sim.ErrNoArchive
	case tick > 5 || nodeID != nodeA:
		return nil, sim.ErrNoSnapshot
	default:
		return testGraph(nodeID), nil
	}
}

func newTestServer(t *testing.T, backend Backend) (*Server, *prometheus.Registry) {
	t.Helper()

	registry := prometheus.NewRegistry()
	s, err := New(
		logging.NoLog{},
		Config{
			Host:           "127.0.0.1",
			AllowedOrigins: []string{"*"},
		},
		backend,
		registry,
		registry,
	)
	require.NoError(t, err)
	return s, registry
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	recorder := httptest.NewRecorder()
	s.Handler().ServeHTTP(recorder, req)
	return recorder
}

func TestGetNodes(t *testing.T) {
	require := require.New(t)

	s, _ := newTestServer(t, &testBackend{})
	recorder := get(t, s, "/ext/nodes")
	require.Equal(http.StatusOK, recorder.Code)
	require.Equal(contentTypeJSON, recorder.Header().Get("Content-Type"))

	var nodes []sim.NodeStatus
	require.NoError(json.Unmarshal(recorder.Body.Bytes(), &nodes))
	require.Len(nodes, 2)
	require.Equal(nodeA, nodes[0].NodeID)
	require.InDelta(0.5, nodes[0].FractionAccepted, 1e-9)
}

func TestGetAudit(t *testing.T) {
	require := require.New(t)

	s, _ := newTestServer(t, &testBackend{})
	recorder := get(t, s, "/ext/audit")
	require.Equal(http.StatusOK, recorder.Code)

	var report sim.Report
	require.NoError(json.Unmarshal(recorder.Body.Bytes(), &report))
	require.Equal([]int{3}, report.ContestedKeys)
	require.Equal(1, report.SkippedTxs)
	require.True(report.Safe())
}

func TestGetGraph(t *testing.T) {
	tests := []struct {
		name                string
		path                string
		expectedStatus      int
		expectedContentType string
	}{
		{
			name:                "json by default",
			path:                "/ext/nodes/" + nodeA.String() + "/graph",
			expectedStatus:      http.StatusOK,
			expectedContentType: contentTypeJSON,
		},
		{
			name:                "dot",
			path:                "/ext/nodes/" + nodeA.String() + "/graph?format=dot",
			expectedStatus:      http.StatusOK,
			expectedContentType: contentTypeDOT,
		},
		{
			name:                "unknown format",
			path:                "/ext/nodes/" + nodeA.String() + "/graph?format=png",
			expectedStatus:      http.StatusBadRequest,
			expectedContentType: contentTypeJSON,
		},
		{
			name:                "malformed node ID",
			path:                "/ext/nodes/node-0/graph",
			expectedStatus:      http.StatusBadRequest,
			expectedContentType: contentTypeJSON,
		},
		{
			name:                "unknown node",
			path:                "/ext/nodes/" + nodeB.String() + "/graph",
			expectedStatus:      http.StatusNotFound,
			expectedContentType: contentTypeJSON,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)

			s, _ := newTestServer(t, &testBackend{})
			recorder := get(t, s, test.path)
			require.Equal(test.expectedStatus, recorder.Code)
			require.Equal(test.expectedContentType, recorder.Header().Get("Content-Type"))
		})
	}
}

func TestGetGraphJSON(t *testing.T) {
	require := require.New(t)

	s, _ := newTestServer(t, &testBackend{})
	recorder := get(t, s, "/ext/nodes/"+nodeA.String()+"/graph")
	require.Equal(http.StatusOK, recorder.Code)

	var snapshot engine.GraphSnapshot
	require.NoError(json.Unmarshal(recorder.Body.Bytes(), &snapshot))
	require.Equal(testGraph(nodeA), &snapshot)
}

func TestGetSnapshotCached(t *testing.T) {
	require := require.New(t)

	backend := &testBackend{archive: true}
	s, _ := newTestServer(t, backend)
	path := "/ext/snapshots/3/" + nodeA.String()

	first := get(t, s, path)
	require.Equal(http.StatusOK, first.Code)
	second := get(t, s, path)
	require.Equal(http.StatusOK, second.Code)
	require.Equal(first.Body.Bytes(), second.Body.Bytes())
	require.Equal(1, backend.snapshotCalls)

	require.Equal(float64(1), testutil.ToFloat64(s.snapshots.hits))
	require.Equal(float64(1), testutil.ToFloat64(s.snapshots.misses))
	require.Equal(float64(1), testutil.ToFloat64(s.snapshots.size))

	// Formats are cached separately.
	dot := get(t, s, path+"?format=dot")
	require.Equal(http.StatusOK, dot.Code)
	require.Contains(dot.Body.String(), "digraph")
	require.Equal(2, backend.snapshotCalls)
}

func TestGetSnapshotErrors(t *testing.T) {
	tests := []struct {
		name           string
		archive        bool
		path           string
		expectedStatus int
	}{
		{
			name:           "archive disabled",
			path:           "/ext/snapshots/3/" + nodeA.String(),
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:           "missing tick",
			archive:        true,
			path:           "/ext/snapshots/6/" + nodeA.String(),
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "tick overflow",
			archive:        true,
			path:           "/ext/snapshots/18446744073709551616/" + nodeA.String(),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "negative tick",
			archive:        true,
			path:           "/ext/snapshots/-1/" + nodeA.String(),
			expectedStatus: http.StatusNotFound,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)

			backend := &testBackend{archive: test.archive}
			s, _ := newTestServer(t, backend)
			recorder := get(t, s, test.path)
			require.Equal(test.expectedStatus, recorder.Code)
			require.Zero(s.snapshots.cache.Len())
		})
	}
}

func TestGetMetrics(t *testing.T) {
	require := require.New(t)

	s, registry := newTestServer(t, &testBackend{})
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_counter",
		Help: "test",
	})
	require.NoError(registry.Register(counter))
	counter.Add(7)

	recorder := get(t, s, "/ext/metrics")
	require.Equal(http.StatusOK, recorder.Code)
	require.Contains(recorder.Body.String(), "test_counter 7")
	require.Contains(recorder.Body.String(), "api_snapshot_cache_hits")
}

func TestDuplicateMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := New(logging.NoLog{}, Config{}, &testBackend{}, registry, registry)
	require.NoError(t, err)

	_, err = New(logging.NoLog{}, Config{}, &testBackend{}, registry, registry)
	var alreadyRegistered prometheus.AlreadyRegisteredError
	require.ErrorAs(t, err, &alreadyRegistered)
}

func TestDispatchShutdown(t *testing.T) {
	require := require.New(t)

	s, _ := newTestServer(t, &testBackend{})
	require.NoError(s.Shutdown())

	errs := make(chan error, 1)
	go func() {
		errs <- s.Dispatch()
	}()
	require.Eventually(func() bool {
		s.lock.Lock()
		defer s.lock.Unlock()
		return s.srv != nil
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(s.Shutdown())
	require.NoError(<-errs)
}
