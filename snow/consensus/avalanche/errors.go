// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package avalanche

import "errors"

var (
	// ErrStateInconsistency is returned when an internal invariant of a node
	// is broken, for example a known transaction without a conflict set.
	ErrStateInconsistency = errors.New("state inconsistency")
	// ErrEmptyParentSelection is returned when neither the parent candidates
	// nor the fallback produce a parent for a new transaction.
	ErrEmptyParentSelection = errors.New("empty parent selection")
	// ErrAncestorUnavailable is returned when a claimed parent can't be
	// fetched from the peer that sent its child.
	ErrAncestorUnavailable = errors.New("ancestor unavailable")
	// ErrAncestryTooDeep is returned when resolving the missing ancestors of a
	// transaction exceeds the configured depth.
	ErrAncestryTooDeep = errors.New("ancestry too deep")
	// ErrParametersInvalid is returned by Parameters.Verify.
	ErrParametersInvalid = errors.New("parameters invalid")
)
