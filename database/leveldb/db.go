// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package leveldb

import (
	"errors"
	"slices"
	"sync/atomic"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
	"go.uber.org/zap"

	leveldberrors "github.com/syndtr/goleveldb/leveldb/errors"

	"github.com/ava-labs/dagsim/database"
	"github.com/ava-labs/dagsim/utils/logging"
)

const (
	// Name is the name of this database for database switches
	Name = "leveldb"

	// DefaultBlockCacheSize is the number of bytes to use for block caching in
	// leveldb.
	DefaultBlockCacheSize = 12 * opt.MiB

	// DefaultWriteBufferSize is the number of bytes to use for buffers in
	// leveldb.
	DefaultWriteBufferSize = 12 * opt.MiB

	// DefaultHandleCap is the number of files descriptors to cap levelDB to
	// use.
	DefaultHandleCap = 1024
)

var (
	_ database.Database = (*Database)(nil)
	_ database.Iterator = (*iter)(nil)
)

// Database is a persistent key-value store. Apart from basic data storage
// functionality it also supports iteration over prefixes.
type Database struct {
	*leveldb.DB
	log    logging.Logger
	closed atomic.Bool
}

// New returns a wrapped LevelDB object stored in the directory [file].
func New(file string, log logging.Logger) (*Database, error) {
	db, err := leveldb.OpenFile(file, options())
	if leveldberrors.IsCorrupted(err) {
		db, err = leveldb.RecoverFile(file, nil)
	}
	if err != nil {
		return nil, err
	}

	log.Info("opened leveldb",
		zap.String("path", file),
	)
	return &Database{
		DB:  db,
		log: log,
	}, nil
}

// NewWithStorage returns a wrapped LevelDB object on top of [stor].
func NewWithStorage(stor storage.Storage, log logging.Logger) (*Database, error) {
	db, err := leveldb.Open(stor, options())
	if err != nil {
		return nil, err
	}
	return &Database{
		DB:  db,
		log: log,
	}, nil
}

func options() *opt.Options {
	return &opt.Options{
		BlockCacheCapacity:     DefaultBlockCacheSize,
		WriteBuffer:            DefaultWriteBufferSize / 2,
		OpenFilesCacheCapacity: DefaultHandleCap,
		Filter:                 nil,
	}
}

func (db *Database) Has(key []byte) (bool, error) {
	has, err := db.DB.Has(key, nil)
	return has, updateError(err)
}

func (db *Database) Get(key []byte) ([]byte, error) {
	value, err := db.DB.Get(key, nil)
	return value, updateError(err)
}

func (db *Database) Put(key []byte, value []byte) error {
	return updateError(db.DB.Put(key, value, nil))
}

func (db *Database) Delete(key []byte) error {
	return updateError(db.DB.Delete(key, nil))
}

func (db *Database) NewIterator() database.Iterator {
	return db.NewIteratorWithPrefix(nil)
}

func (db *Database) NewIteratorWithPrefix(prefix []byte) database.Iterator {
	if db.closed.Load() {
		return &database.IteratorError{
			Err: database.ErrClosed,
		}
	}
	return &iter{
		db:       db,
		Iterator: db.DB.NewIterator(util.BytesPrefix(prefix), nil),
	}
}

func (db *Database) Close() error {
	db.closed.Store(true)
	return updateError(db.DB.Close())
}

// iter wraps a leveldb iterator. Keys and values are copied because leveldb
// reuses the underlying buffers.
type iter struct {
	iterator.Iterator

	db   *Database
	key  []byte
	val  []byte
	err  error
	done bool
}

func (it *iter) Next() bool {
	if it.db.closed.Load() {
		it.done = true
		it.key = nil
		it.val = nil
		it.err = database.ErrClosed
		return false
	}
	if it.done {
		return false
	}

	if hasNext := it.Iterator.Next(); !hasNext {
		it.done = true
		it.key = nil
		it.val = nil
		return false
	}
	it.key = slices.Clone(it.Iterator.Key())
	it.val = slices.Clone(it.Iterator.Value())
	return true
}

func (it *iter) Error() error {
	if it.err != nil {
		return it.err
	}
	return updateError(it.Iterator.Error())
}

func (it *iter) Key() []byte {
	return it.key
}

func (it *iter) Value() []byte {
	return it.val
}

func updateError(err error) error {
	switch {
	case errors.Is(err, leveldb.ErrClosed):
		return database.ErrClosed
	case errors.Is(err, leveldb.ErrNotFound):
		return database.ErrNotFound
	default:
		return err
	}
}
