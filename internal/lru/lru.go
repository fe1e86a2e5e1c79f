// Package lru provides the recency-ordered map backing the
// tessellation caches.
package lru

import "container/list"

// Cache is a generic least-recently-used map with unlimited logical
// capacity. It never evicts on its own; callers enforce a budget by
// calling RemoveOldest in a loop. An optional removal callback receives
// every entry leaving the cache (RemoveOldest, Remove, Clear, and
// replacement by Put) so owned values can be released.
//
// Cache is not safe for concurrent use; the owning component holds the
// lock so that lookup-miss-then-insert can be one critical section.
type Cache[K comparable, V any] struct {
	entries  map[K]*list.Element
	order    *list.List // front = most recently used
	onRemove func(K, V)
}

// entry is the element value stored in the recency list.
type entry[K comparable, V any] struct {
	key   K
	value V
}

// New creates an empty cache. onRemove may be nil.
func New[K comparable, V any](onRemove func(K, V)) *Cache[K, V] {
	return &Cache[K, V]{
		entries:  make(map[K]*list.Element),
		order:    list.New(),
		onRemove: onRemove,
	}
}

// Get retrieves a value and promotes its entry to most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	elem, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*entry[K, V]).value, true
}

// Put inserts or replaces a value, making it the most recently used
// entry. A replaced value is handed to the removal callback first.
// Put never evicts other entries.
func (c *Cache[K, V]) Put(key K, value V) {
	if elem, ok := c.entries[key]; ok {
		e := elem.Value.(*entry[K, V])
		if c.onRemove != nil {
			c.onRemove(e.key, e.value)
		}
		e.value = value
		c.order.MoveToFront(elem)
		return
	}
	c.entries[key] = c.order.PushFront(&entry[K, V]{key: key, value: value})
}

// Remove removes an entry by key, invoking the removal callback.
// Returns true if the entry existed.
func (c *Cache[K, V]) Remove(key K) bool {
	elem, ok := c.entries[key]
	if !ok {
		return false
	}
	c.remove(elem)
	return true
}

// RemoveOldest evicts the least recently used entry, invoking the
// removal callback before freeing. Returns false if the cache is empty.
func (c *Cache[K, V]) RemoveOldest() bool {
	elem := c.order.Back()
	if elem == nil {
		return false
	}
	c.remove(elem)
	return true
}

// PeekOldestValue returns the least recently used value without
// promoting it. Returns false if the cache is empty.
func (c *Cache[K, V]) PeekOldestValue() (V, bool) {
	elem := c.order.Back()
	if elem == nil {
		var zero V
		return zero, false
	}
	return elem.Value.(*entry[K, V]).value, true
}

// Clear evicts all entries, invoking the removal callback for each.
func (c *Cache[K, V]) Clear() {
	for elem := c.order.Back(); elem != nil; elem = c.order.Back() {
		c.remove(elem)
	}
}

// Len returns the number of entries in the cache.
func (c *Cache[K, V]) Len() int {
	return len(c.entries)
}

// Values returns all values in most-to-least recently used order,
// without promoting any entry. Used for size accounting.
func (c *Cache[K, V]) Values() []V {
	values := make([]V, 0, len(c.entries))
	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		values = append(values, elem.Value.(*entry[K, V]).value)
	}
	return values
}

// remove unlinks an element and fires the removal callback.
func (c *Cache[K, V]) remove(elem *list.Element) {
	e := elem.Value.(*entry[K, V])
	c.order.Remove(elem)
	delete(c.entries, e.key)
	if c.onRemove != nil {
		c.onRemove(e.key, e.value)
	}
}
