// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package avalanche

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/dagsim/utils/wrappers"
)

type metrics struct {
	pollsSuccessful, pollsFailed      prometheus.Counter
	txsIssued                         prometheus.Counter
	txsAccepted, txsKnown             prometheus.Gauge
	ancestorsFetched, unreliablePeers prometheus.Counter
	pollDuration                      prometheus.Histogram
}

func (m *metrics) Initialize(namespace string, registerer prometheus.Registerer) error {
	m.pollsSuccessful = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "polls_successful",
		Help:      "Number of voting rounds that reached quorum",
	})
	m.pollsFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "polls_failed",
		Help:      "Number of voting rounds that didn't reach quorum",
	})
	m.txsIssued = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "txs_issued",
		Help:      "Number of transactions generated locally",
	})
	m.txsAccepted = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "txs_accepted",
		Help:      "Number of accepted transactions",
	})
	m.txsKnown = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "txs_known",
		Help:      "Number of known transactions",
	})
	m.ancestorsFetched = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ancestors_fetched",
		Help:      "Number of missing ancestors pulled from peers",
	})
	m.unreliablePeers = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "unreliable_peers",
		Help:      "Number of transactions dropped because their sender couldn't provide the ancestry",
	})
	m.pollDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "poll_duration",
		Help:      "Time spent on a voting round (in seconds)",
		Buckets:   prometheus.DefBuckets,
	})

	errs := wrappers.Errs{}
	errs.Add(
		registerer.Register(m.pollsSuccessful),
		registerer.Register(m.pollsFailed),
		registerer.Register(m.txsIssued),
		registerer.Register(m.txsAccepted),
		registerer.Register(m.txsKnown),
		registerer.Register(m.ancestorsFetched),
		registerer.Register(m.unreliablePeers),
		registerer.Register(m.pollDuration),
	)
	return errs.Err
}
