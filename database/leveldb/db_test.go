// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package leveldb

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/ava-labs/dagsim/database"
	"github.com/ava-labs/dagsim/utils/logging"
)

func TestInterface(t *testing.T) {
	for i, test := range database.Tests {
		folder := filepath.Join(t.TempDir(), fmt.Sprintf("db%d", i))

		db, err := New(folder, logging.NoLog{})
		require.NoError(t, err)

		test(t, db)

		// The database may have been closed by the test, so we don't care if it
		// errors here.
		_ = db.Close()
	}
}

func TestInterfaceMemStorage(t *testing.T) {
	for _, test := range database.Tests {
		db, err := NewWithStorage(storage.NewMemStorage(), logging.NoLog{})
		require.NoError(t, err)

		test(t, db)

		_ = db.Close()
	}
}

func TestReopen(t *testing.T) {
	require := require.New(t)

	folder := t.TempDir()
	db, err := New(folder, logging.NoLog{})
	require.NoError(err)
	require.NoError(db.Put([]byte("key"), []byte("value")))
	require.NoError(db.Close())

	db, err = New(folder, logging.NoLog{})
	require.NoError(err)
	value, err := db.Get([]byte("key"))
	require.NoError(err)
	require.Equal([]byte("value"), value)
	require.NoError(db.Close())
}
