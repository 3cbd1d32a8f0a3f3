// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package linked

type entry[K comparable, V any] struct {
	key        K
	value      V
	prev, next *entry[K, V]
	removed    bool
}

// Hashmap provides an ordered O(1) mapping from keys to values.
//
// Entries are tracked by insertion order.
type Hashmap[K comparable, V any] struct {
	entryMap map[K]*entry[K, V]
	head     *entry[K, V]
	tail     *entry[K, V]
}

func NewHashmap[K comparable, V any]() *Hashmap[K, V] {
	return NewHashmapWithSize[K, V](0)
}

func NewHashmapWithSize[K comparable, V any](initialSize int) *Hashmap[K, V] {
	return &Hashmap[K, V]{
		entryMap: make(map[K]*entry[K, V], initialSize),
	}
}

// Put sets [key] to [value]. If [key] was already present it is moved to the
// newest position.
func (lh *Hashmap[K, V]) Put(key K, value V) {
	if e, ok := lh.entryMap[key]; ok {
		lh.unlink(e)
		e.value = value
		e.removed = false
		lh.pushBack(e)
		return
	}

	e := &entry[K, V]{
		key:   key,
		value: value,
	}
	lh.entryMap[key] = e
	lh.pushBack(e)
}

func (lh *Hashmap[K, V]) Get(key K) (V, bool) {
	if e, ok := lh.entryMap[key]; ok {
		return e.value, true
	}
	return *new(V), false
}

func (lh *Hashmap[K, V]) Delete(key K) bool {
	e, ok := lh.entryMap[key]
	if ok {
		lh.unlink(e)
		e.removed = true
		delete(lh.entryMap, key)
	}
	return ok
}

func (lh *Hashmap[K, V]) Clear() {
	for e := lh.head; e != nil; e = e.next {
		e.removed = true
	}
	clear(lh.entryMap)
	lh.head = nil
	lh.tail = nil
}

func (lh *Hashmap[K, V]) Len() int {
	return len(lh.entryMap)
}

func (lh *Hashmap[K, V]) Oldest() (K, V, bool) {
	if lh.head == nil {
		return *new(K), *new(V), false
	}
	return lh.head.key, lh.head.value, true
}

func (lh *Hashmap[K, V]) Newest() (K, V, bool) {
	if lh.tail == nil {
		return *new(K), *new(V), false
	}
	return lh.tail.key, lh.tail.value, true
}

// NewIterator returns an iterator over the entries from oldest to newest.
func (lh *Hashmap[K, V]) NewIterator() *Iterator[K, V] {
	return &Iterator[K, V]{lh: lh}
}

// NewReverseIterator returns an iterator over the entries from newest to
// oldest.
func (lh *Hashmap[K, V]) NewReverseIterator() *Iterator[K, V] {
	return &Iterator[K, V]{lh: lh, reverse: true}
}

func (lh *Hashmap[K, V]) pushBack(e *entry[K, V]) {
	e.prev = lh.tail
	e.next = nil
	if lh.tail != nil {
		lh.tail.next = e
	} else {
		lh.head = e
	}
	lh.tail = e
}

// unlink removes [e] from the list while leaving its own pointers intact so
// that an iterator positioned on [e] can continue.
func (lh *Hashmap[K, V]) unlink(e *entry[K, V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		lh.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		lh.tail = e.prev
	}
}

// Iterates over the keys and values in a Hashmap. The iterator is not safe for
// concurrent use with modifications of the underlying map.
type Iterator[K comparable, V any] struct {
	lh          *Hashmap[K, V]
	reverse     bool
	initialized bool
	exhausted   bool
	current     *entry[K, V]
	key         K
	value       V
}

func (it *Iterator[K, V]) Next() bool {
	// If the iterator has been exhausted, there is no next value.
	if it.exhausted {
		it.key = *new(K)
		it.value = *new(V)
		return false
	}

	var next *entry[K, V]
	switch {
	case !it.initialized:
		it.initialized = true
		if it.reverse {
			next = it.lh.tail
		} else {
			next = it.lh.head
		}
	case it.reverse:
		next = it.current.prev
	default:
		next = it.current.next
	}
	// Skip entries that were removed after the iterator stepped past them.
	for next != nil && next.removed {
		if it.reverse {
			next = next.prev
		} else {
			next = next.next
		}
	}

	if next == nil {
		it.exhausted = true
		it.current = nil
		it.key = *new(K)
		it.value = *new(V)
		return false
	}
	it.current = next
	it.key = next.key
	it.value = next.value
	return true
}

func (it *Iterator[K, V]) Key() K {
	return it.key
}

func (it *Iterator[K, V]) Value() V {
	return it.value
}
