package collections

// OrderedMap is a map that remembers the order in which keys were first inserted.
//
// Two write operations with different conflict policies are offered:
// SetIfAbsent keeps the first value written for a key, Put replaces the value
// but keeps the key in its original position.
type OrderedMap[K comparable, V any] struct {
	keys   []K
	values map[K]V
}

// NewOrderedMap creates an empty OrderedMap
func NewOrderedMap[K comparable, V any]() *OrderedMap[K, V] {
	return &OrderedMap[K, V]{values: make(map[K]V)}
}

// SetIfAbsent stores v under k unless k is already present (first write wins).
// It reports whether v was stored.
func (m *OrderedMap[K, V]) SetIfAbsent(k K, v V) bool {
	if _, ok := m.values[k]; ok {
		return false
	}
	m.keys = append(m.keys, k)
	m.values[k] = v
	return true
}

// Put stores v under k, replacing any earlier value (last write wins).
// A replaced key keeps the position of its first insertion.
// It reports whether an earlier value was replaced.
func (m *OrderedMap[K, V]) Put(k K, v V) bool {
	_, replaced := m.values[k]
	if !replaced {
		m.keys = append(m.keys, k)
	}
	m.values[k] = v
	return replaced
}

// Get returns the value stored under k
func (m *OrderedMap[K, V]) Get(k K) (V, bool) {
	v, ok := m.values[k]
	return v, ok
}

// Has reports whether k is present
func (m *OrderedMap[K, V]) Has(k K) bool {
	_, ok := m.values[k]
	return ok
}

// Len returns the number of keys
func (m *OrderedMap[K, V]) Len() int {
	return len(m.keys)
}

// Keys returns the keys in insertion order
func (m *OrderedMap[K, V]) Keys() []K {
	return append([]K(nil), m.keys...)
}

// Values returns the values in key insertion order
func (m *OrderedMap[K, V]) Values() []V {
	out := make([]V, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.values[k])
	}
	return out
}
