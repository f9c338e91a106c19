package network

import (
	"bytes"
	"sync"

	"github.com/roach88/retort/entity"
)

// arena is an append-only, deduplicating value store with dense integer
// indices. Insertion is idempotent: adding a structurally equal value is a
// no-op returning the existing index.
//
// The mutex guards the canonical-key index and the values slice header.
// Assigned slots are immutable, so readers holding a copied slice header
// never observe mutation; only append may reallocate, which happens under
// the lock.
type arena[T entity.Datum] struct {
	mu     sync.RWMutex
	kind   entity.Kind
	values []T
	index  map[string]int
}

func newArena[T entity.Datum](kind entity.Kind) *arena[T] {
	return &arena[T]{
		kind:  kind,
		index: make(map[string]int),
	}
}

// add inserts v, returning its dense index and whether a new insertion
// occurred. Dedup is race-free: concurrent adds of the same structural
// value are linearized and receive the same index.
//
// A key already present with a different blob encoding is an identity
// collision (canonicalization bug) and is returned as a fatal error.
func (a *arena[T]) add(v T) (int, bool, error) {
	key := v.Key()

	a.mu.Lock()
	defer a.mu.Unlock()

	if i, ok := a.index[key]; ok {
		existing := a.values[i].Blob()
		incoming := v.Blob()
		if !bytes.Equal(existing, incoming) {
			return 0, false, &IdentityCollisionError{
				Kind:     a.kind,
				Key:      key,
				Existing: existing,
				Incoming: incoming,
			}
		}
		return i, false, nil
	}

	a.values = append(a.values, v)
	a.index[key] = len(a.values) - 1
	return len(a.values) - 1, true, nil
}

// get returns the value at index i.
func (a *arena[T]) get(i int) (T, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var zero T
	if i < 0 || i >= len(a.values) {
		return zero, &UnknownRefError{Kind: a.kind, Index: i, Len: len(a.values)}
	}
	return a.values[i], nil
}

// lookup returns the index for a canonical key, if present.
func (a *arena[T]) lookup(key string) (int, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	i, ok := a.index[key]
	return i, ok
}

// size returns the number of assigned indices.
func (a *arena[T]) size() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.values)
}

// each calls fn for every (index, value) pair in insertion order, stopping
// early if fn returns false. Iteration is over a snapshot: entries added
// concurrently after the call starts are not visited.
func (a *arena[T]) each(fn func(int, T) bool) {
	a.mu.RLock()
	snapshot := a.values
	a.mu.RUnlock()

	for i, v := range snapshot {
		if !fn(i, v) {
			return
		}
	}
}
