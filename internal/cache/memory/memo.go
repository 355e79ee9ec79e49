package memory

import "sync"

// Memo is a write-once, run-scoped cache. The first computed value for a
// key is kept for the lifetime of the Memo; later computations for the same
// key are discarded. Computing outside the lock means two goroutines may
// both compute a key, which is acceptable because values are idempotent.
type Memo[K comparable, V any] struct {
	mu    sync.Mutex
	items map[K]V
}

func NewMemo[K comparable, V any]() *Memo[K, V] {
	return &Memo[K, V]{items: make(map[K]V)}
}

func (m *Memo[K, V]) Get(key K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	return v, ok
}

// GetOrCompute returns the cached value for key or stores the result of
// compute. Errors are returned and nothing is cached.
func (m *Memo[K, V]) GetOrCompute(key K, compute func() (V, error)) (V, error) {
	if v, ok := m.Get(key); ok {
		return v, nil
	}
	v, err := compute()
	if err != nil {
		var zero V
		return zero, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.items[key]; ok {
		return prev, nil
	}
	m.items[key] = v
	return v, nil
}

func (m *Memo[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
