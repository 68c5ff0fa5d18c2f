package util

import (
	"errors"
	"sort"
)

// OrderedMap is a name-keyed collection that remembers insertion order.
// Hidden keys stay retrievable with Get but are left out of Keys.
type OrderedMap[V any] struct {
	keys        []string
	values      map[string]V
	visibleKeys []string
	hiddenKeys  map[string]bool
}

var (
	ErrorKeysDontMatchValues = errors.New("keys don't match values")
)

func NewOrderedMap[V any](keys []string, values map[string]V) (*OrderedMap[V], error) {
	if len(keys) != len(values) {
		return nil, ErrorKeysDontMatchValues
	}
	mapKeys := []string{}
	for k := range values {
		mapKeys = append(mapKeys, k)
	}
	sort.Strings(mapKeys)

	sortedKeys := make([]string, len(keys))
	copy(sortedKeys, keys)
	sort.Strings(sortedKeys)

	for i := range sortedKeys {
		if mapKeys[i] != sortedKeys[i] {
			return nil, ErrorKeysDontMatchValues
		}
	}
	if values == nil {
		values = map[string]V{}
	}

	om := &OrderedMap[V]{
		keys:       append([]string{}, keys...),
		values:     values,
		hiddenKeys: map[string]bool{}}
	om.recompute()
	return om, nil
}

// Empty returns a new map with no entries.
func Empty[V any]() *OrderedMap[V] {
	om, _ := NewOrderedMap[V](nil, nil)
	return om
}

// Add appends the key, or replaces the value in place if the key exists.
func (om *OrderedMap[V]) Add(name string, val V) {
	if _, has := om.values[name]; !has {
		om.keys = append(om.keys, name)
		if !om.hiddenKeys[name] {
			om.visibleKeys = append(om.visibleKeys, name)
		}
	}
	om.values[name] = val
}

func (om *OrderedMap[V]) Get(key string) (val V, has bool) {
	val, has = om.values[key]
	return
}

// Delete removes the key. Order of the remaining keys is kept.
func (om *OrderedMap[V]) Delete(key string) bool {
	if _, has := om.values[key]; !has {
		return false
	}
	delete(om.values, key)
	for i, k := range om.keys {
		if k == key {
			om.keys = append(om.keys[:i], om.keys[i+1:]...)
			break
		}
	}
	om.recompute()
	return true
}

func (om *OrderedMap[V]) Hide(hiddenKey string) {
	om.hiddenKeys[hiddenKey] = true
	om.recompute()
}

func (om *OrderedMap[V]) IsHidden(key string) bool {
	return om.hiddenKeys[key]
}

func (om *OrderedMap[V]) recompute() {
	visibleKeys := []string{}
	for _, key := range om.keys {
		if om.hiddenKeys[key] {
			continue
		}
		visibleKeys = append(visibleKeys, key)
	}
	om.visibleKeys = visibleKeys
}

// Keys returns the visible keys in insertion order.
func (om *OrderedMap[V]) Keys() []string {
	return om.visibleKeys
}

// AllKeys returns every key, hidden ones included.
func (om *OrderedMap[V]) AllKeys() []string {
	return om.keys
}

// Values returns the visible values in insertion order.
func (om *OrderedMap[V]) Values() []V {
	ret := make([]V, 0, len(om.visibleKeys))
	for _, k := range om.visibleKeys {
		ret = append(ret, om.values[k])
	}
	return ret
}

// Len counts visible entries.
func (om *OrderedMap[V]) Len() int {
	return len(om.visibleKeys)
}
