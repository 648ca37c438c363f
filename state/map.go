package state

import (
	"encoding/json"
	"sort"
	"sync"
)

// Map provides a type-safe in-memory key-value store
type Map[K comparable, V any] struct {
	data map[K]*V
	sync.RWMutex
}

// NewMap creates a new type-safe store instance
func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{
		data: make(map[K]*V),
	}
}

// Get retrieves a value by key, with existence check
func (c *Map[K, V]) Get(key K) (*V, bool) {
	c.RLock()
	defer c.RUnlock()
	v, ok := c.data[key]
	return v, ok
}

// Set stores a value with the given key
func (c *Map[K, V]) Set(key K, value *V) {
	c.Lock()
	defer c.Unlock()
	c.data[key] = value
}

// Delete removes a key-value pair
func (c *Map[K, V]) Delete(key K) {
	c.Lock()
	defer c.Unlock()
	delete(c.data, key)
}

// Data returns all entries as JSON
func (c *Map[K, V]) Data() ([]byte, error) {
	c.RLock()
	defer c.RUnlock()
	return json.MarshalIndent(c.data, "", "  ")
}

// Load populates the map from JSON data
func (c *Map[K, V]) Load(data []byte) error {
	return json.Unmarshal(data, &c.data)
}

// Keys returns all keys in the map
func (c *Map[K, V]) Keys() []K {
	c.RLock()
	defer c.RUnlock()
	keys := make([]K, 0, len(c.data))
	for k := range c.data {
		keys = append(keys, k)
	}
	return keys
}

// SortedKeys returns all string keys in ascending order
func SortedKeys[V any](m *Map[string, V]) []string {
	keys := m.Keys()
	sort.Strings(keys)
	return keys
}

// Size returns the number of entries
func (c *Map[K, V]) Size() int {
	c.RLock()
	defer c.RUnlock()
	return len(c.data)
}
