// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package network

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/dagsim/utils/wrappers"
)

type messageMetrics struct {
	numSent, numFailed prometheus.Counter
}

func (mm *messageMetrics) initialize(namespace, op string, registerer prometheus.Registerer) error {
	mm.numSent = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      fmt.Sprintf("%s_sent", op),
		Help:      fmt.Sprintf("Number of %s messages sent", op),
	})
	mm.numFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      fmt.Sprintf("%s_failed", op),
		Help:      fmt.Sprintf("Number of %s messages that failed", op),
	})

	errs := wrappers.Errs{}
	errs.Add(
		registerer.Register(mm.numSent),
		registerer.Register(mm.numFailed),
	)
	return errs.Err
}

type metrics struct {
	query, fetch messageMetrics
}

func newMetrics(namespace string, registerer prometheus.Registerer) (*metrics, error) {
	m := &metrics{}
	errs := wrappers.Errs{}
	errs.Add(
		m.query.initialize(namespace, "query", registerer),
		m.fetch.initialize(namespace, "fetch", registerer),
	)
	return m, errs.Err
}
