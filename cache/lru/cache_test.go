// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package lru

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCache(t *testing.T) {
	require := require.New(t)

	c := NewCache[string, int](2)
	_, ok := c.Get("a")
	require.False(ok)

	c.Put("a", 1)
	c.Put("b", 2)
	require.Equal(2, c.Len())

	value, ok := c.Get("a")
	require.True(ok)
	require.Equal(1, value)

	// "b" is the least recently used entry.
	c.Put("c", 3)
	require.Equal(2, c.Len())
	_, ok = c.Get("b")
	require.False(ok)
	value, ok = c.Get("c")
	require.True(ok)
	require.Equal(3, value)
}

func TestCacheOverwrite(t *testing.T) {
	require := require.New(t)

	var evicted []string
	c := NewCacheWithOnEvict(2, func(key string, _ int) {
		evicted = append(evicted, key)
	})
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("a", 3)
	require.Empty(evicted)
	require.Equal(2, c.Len())

	value, ok := c.Get("a")
	require.True(ok)
	require.Equal(3, value)

	c.Put("c", 4)
	require.Equal([]string{"b"}, evicted)
}

func TestCacheMinimumSize(t *testing.T) {
	require := require.New(t)

	c := NewCache[int, int](0)
	c.Put(1, 1)
	c.Put(2, 2)
	require.Equal(1, c.Len())
	_, ok := c.Get(1)
	require.False(ok)
}
