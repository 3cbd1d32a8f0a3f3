// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package avalanche

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParametersVerify(t *testing.T) {
	valid := Parameters{
		K:                1,
		Alpha:            1,
		BetaVirtuous:     0,
		BetaRogue:        0,
		MaxAncestryDepth: 1,
		QueryTimeout:     time.Second,
	}
	tests := []struct {
		name          string
		modify        func(*Parameters)
		expectedError error
	}{
		{
			name:          "valid",
			modify:        func(*Parameters) {},
			expectedError: nil,
		},
		{
			name:          "invalid K",
			modify:        func(p *Parameters) { p.K = 0 },
			expectedError: ErrParametersInvalid,
		},
		{
			name:          "invalid Alpha 0",
			modify:        func(p *Parameters) { p.Alpha = 0 },
			expectedError: ErrParametersInvalid,
		},
		{
			name:          "invalid Alpha above 1",
			modify:        func(p *Parameters) { p.Alpha = 1.01 },
			expectedError: ErrParametersInvalid,
		},
		{
			name:          "invalid BetaVirtuous",
			modify:        func(p *Parameters) { p.BetaVirtuous = -1 },
			expectedError: ErrParametersInvalid,
		},
		{
			name:          "invalid BetaRogue",
			modify:        func(p *Parameters) { p.BetaRogue = -1 },
			expectedError: ErrParametersInvalid,
		},
		{
			name:          "invalid MaxAncestryDepth",
			modify:        func(p *Parameters) { p.MaxAncestryDepth = 0 },
			expectedError: ErrParametersInvalid,
		},
		{
			name:          "invalid QueryTimeout",
			modify:        func(p *Parameters) { p.QueryTimeout = 0 },
			expectedError: ErrParametersInvalid,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			params := valid
			test.modify(&params)
			err := params.Verify()
			require.ErrorIs(t, err, test.expectedError)
		})
	}
	require.NoError(t, DefaultParameters.Verify())
}

func TestQuorumReached(t *testing.T) {
	tests := []struct {
		k        int
		alpha    float64
		votes    int
		expected bool
	}{
		{k: 6, alpha: 0.8, votes: 4, expected: false},
		{k: 6, alpha: 0.8, votes: 5, expected: true},
		{k: 5, alpha: 0.8, votes: 4, expected: true},
		{k: 5, alpha: 0.8, votes: 3, expected: false},
		{k: 1, alpha: 1, votes: 1, expected: true},
		{k: 1, alpha: 1, votes: 0, expected: false},
	}
	for _, test := range tests {
		params := Parameters{K: test.k, Alpha: test.alpha}
		require.Equal(t, test.expected, params.QuorumReached(test.votes), "k=%d alpha=%f votes=%d", test.k, test.alpha, test.votes)
	}
}
