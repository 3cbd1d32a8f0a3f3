// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ids

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestID(t *testing.T) {
	require := require.New(t)

	id := ID{24}
	idCopy := ID{24}
	prefixed := id.Prefix(0)

	require.Equal(idCopy, id)
	require.Equal(prefixed, id.Prefix(0))
	require.NotEqual(prefixed, id.Prefix(1))
}

func TestIDMarshalJSON(t *testing.T) {
	tests := []struct {
		label string
		in    ID
		out   []byte
		err   error
	}{
		{
			"ID{}",
			ID{},
			[]byte("\"11111111111111111111111111111111LpoYY\""),
			nil,
		},
		{
			"ID(\"ava labs\")",
			ID{'a', 'v', 'a', ' ', 'l', 'a', 'b', 's'},
			[]byte("\"jvYi6Tn9idMi7BaymUVi9zWjg5tpmW7trfKG1AYJLKZJ2fsU7\""),
			nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			require := require.New(t)

			out, err := tt.in.MarshalJSON()
			require.ErrorIs(err, tt.err)
			require.Equal(tt.out, out)
		})
	}
}

func TestIDUnmarshalJSON(t *testing.T) {
	require := require.New(t)

	id := GenerateTestID()
	b, err := json.Marshal(id)
	require.NoError(err)

	var parsed ID
	require.NoError(json.Unmarshal(b, &parsed))
	require.Equal(id, parsed)

	require.NoError(parsed.UnmarshalJSON([]byte(nullStr)))
	require.Equal(id, parsed)

	require.ErrorIs(parsed.UnmarshalJSON([]byte("x")), errMissingQuotes)
}

func TestIDString(t *testing.T) {
	require := require.New(t)

	id := GenerateTestID()
	parsed, err := FromString(id.String())
	require.NoError(err)
	require.Equal(id, parsed)
	require.Equal(id.String()[:5], id.Short())
}

func TestIDMapKey(t *testing.T) {
	require := require.New(t)

	id := GenerateTestID()
	in := map[ID]int{id: 7}
	b, err := json.Marshal(in)
	require.NoError(err)

	var out map[ID]int
	require.NoError(json.Unmarshal(b, &out))
	require.Equal(in, out)
}

func TestIDCompare(t *testing.T) {
	require := require.New(t)

	require.Equal(-1, ID{1}.Compare(ID{2}))
	require.Equal(1, ID{2}.Compare(ID{1}))
	require.Zero(ID{1}.Compare(ID{1}))
}
