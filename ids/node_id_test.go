// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ids

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNodeIDStringRoundTrip(t *testing.T) {
	require := require.New(t)

	id := BuildNodeID(3)
	require.Equal(id, BuildNodeID(3))
	require.NotEqual(id, BuildNodeID(4))

	parsed, err := NodeIDFromString(id.String())
	require.NoError(err)
	require.Equal(id, parsed)
}

func TestNodeIDFromStringMissingPrefix(t *testing.T) {
	_, err := NodeIDFromString("abcdef")
	require.ErrorIs(t, err, errMissingPrefix)
}

func TestNodeIDMarshalJSON(t *testing.T) {
	require := require.New(t)

	id := GenerateTestNodeID()
	b, err := json.Marshal(id)
	require.NoError(err)

	var parsed NodeID
	require.NoError(json.Unmarshal(b, &parsed))
	require.Equal(id, parsed)

	require.ErrorIs(parsed.UnmarshalJSON([]byte(`""`)), errShortNodeID)
}

func TestNodeIDMapKey(t *testing.T) {
	require := require.New(t)

	in := map[NodeID]float64{
		BuildNodeID(0): 0.5,
		BuildNodeID(1): 1,
	}
	b, err := json.Marshal(in)
	require.NoError(err)

	var out map[NodeID]float64
	require.NoError(json.Unmarshal(b, &out))
	require.Equal(in, out)
}
