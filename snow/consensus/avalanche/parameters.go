// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package avalanche

import (
	"fmt"
	"time"
)

// DefaultParameters are the parameters used by the simulator unless they are
// overridden.
var DefaultParameters = Parameters{
	K:                6,
	Alpha:            0.8,
	BetaVirtuous:     5,
	BetaRogue:        5,
	MaxAncestryDepth: 4096,
	QueryTimeout:     5 * time.Second,
}

// Parameters required for the voting rounds and the acceptance predicate.
//
// K is the number of peers sampled for every voting round and Alpha is the
// fraction of them that must vote for a transaction for the round to succeed.
// A virtuous transaction is accepted once its confidence strictly exceeds
// BetaVirtuous. Any transaction is accepted once it has remained the preferred
// member of its conflict set for more than BetaRogue consecutive increments.
type Parameters struct {
	K            int     `json:"k" yaml:"k"`
	Alpha        float64 `json:"alpha" yaml:"alpha"`
	BetaVirtuous int     `json:"betaVirtuous" yaml:"betaVirtuous"`
	BetaRogue    int     `json:"betaRogue" yaml:"betaRogue"`

	// MaxAncestryDepth bounds how many generations of missing ancestors are
	// pulled from a peer before a transaction is dropped.
	MaxAncestryDepth int `json:"maxAncestryDepth" yaml:"maxAncestryDepth"`
	// QueryTimeout bounds every remote call: a query that doesn't answer in
	// time counts as a vote of 0 and an ancestor that doesn't arrive in time
	// is unavailable.
	QueryTimeout time.Duration `json:"queryTimeout" yaml:"queryTimeout"`
}

// Verify returns nil if the parameters describe a valid initialization.
func (p Parameters) Verify() error {
	switch {
	case p.K <= 0:
		return fmt.Errorf("%w: k = %d: fails the condition that: 0 < k", ErrParametersInvalid, p.K)
	case p.Alpha <= 0 || p.Alpha > 1:
		return fmt.Errorf("%w: alpha = %f: fails the condition that: 0 < alpha <= 1", ErrParametersInvalid, p.Alpha)
	case p.BetaVirtuous < 0:
		return fmt.Errorf("%w: betaVirtuous = %d: fails the condition that: 0 <= betaVirtuous", ErrParametersInvalid, p.BetaVirtuous)
	case p.BetaRogue < 0:
		return fmt.Errorf("%w: betaRogue = %d: fails the condition that: 0 <= betaRogue", ErrParametersInvalid, p.BetaRogue)
	case p.MaxAncestryDepth <= 0:
		return fmt.Errorf("%w: maxAncestryDepth = %d: fails the condition that: 0 < maxAncestryDepth", ErrParametersInvalid, p.MaxAncestryDepth)
	case p.QueryTimeout <= 0:
		return fmt.Errorf("%w: queryTimeout = %s: fails the condition that: 0 < queryTimeout", ErrParametersInvalid, p.QueryTimeout)
	default:
		return nil
	}
}

// QuorumReached returns true if [votes] positive answers out of K reach the
// Alpha fraction.
func (p Parameters) QuorumReached(votes int) bool {
	return float64(votes) >= p.Alpha*float64(p.K)
}
