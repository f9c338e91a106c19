package network

import (
	"hash/fnv"
	"sort"
	"sync"

	"github.com/roach88/retort/entity"
)

// Resolver combines an existing and an incoming value for a metadata key.
// Resolvers must be pure and total over any two same-type values. The
// default for an unbound key is overwrite (incoming wins).
type Resolver func(existing, incoming any) any

// Overwrite is the default resolver: the incoming value replaces the
// existing one.
func Overwrite(_, incoming any) any { return incoming }

// metaStripes bounds lock granularity for per-(entity,key) serialization.
const metaStripes = 64

// MetaTable is a per-store mapping from (ref, key) to an arbitrary value
// with per-key conflict resolution.
//
// Writes to the same (ref, key) pair are serialized through a striped lock
// so the bound resolver always sees the sequential two-argument
// application, even under concurrent calculator workers. The final order
// among concurrent writers to one pair is unspecified.
type MetaTable struct {
	kind entity.Kind

	mu        sync.RWMutex
	rows      map[int]map[string]any
	resolvers map[string]Resolver

	stripes [metaStripes]sync.Mutex
}

// NewMetaTable creates an empty metadata table for the given store kind.
func NewMetaTable(kind entity.Kind) *MetaTable {
	return &MetaTable{
		kind:      kind,
		rows:      make(map[int]map[string]any),
		resolvers: make(map[string]Resolver),
	}
}

// BindResolver binds a resolver to a key. The first binding wins: once a
// key has a resolver, later bindings are ignored, which gives the
// first-listed calculator in a plan step authority over its key.
func (t *MetaTable) BindResolver(key string, r Resolver) {
	if r == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, bound := t.resolvers[key]; !bound {
		t.resolvers[key] = r
	}
}

// Resolver returns the resolver bound to key, or Overwrite if unbound.
func (t *MetaTable) Resolver(key string) Resolver {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if r, ok := t.resolvers[key]; ok {
		return r
	}
	return Overwrite
}

// Set writes value for (ref, key), applying the key's resolver against any
// existing value. Returns a fatal ResolverError if the resolver panics.
func (t *MetaTable) Set(ref int, key string, value any) error {
	stripe := &t.stripes[t.stripeFor(ref, key)]
	stripe.Lock()
	defer stripe.Unlock()

	existing, present := t.Get(ref, key)
	resolved := value
	if present {
		var err error
		resolved, err = t.resolve(ref, key, existing, value)
		if err != nil {
			return err
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	row := t.rows[ref]
	if row == nil {
		row = make(map[string]any)
		t.rows[ref] = row
	}
	row[key] = resolved
	return nil
}

// resolve applies the key's resolver under panic recovery. A panicking
// resolver is a configuration error, not a candidate fault.
func (t *MetaTable) resolve(ref int, key string, existing, incoming any) (resolved any, err error) {
	defer func() {
		if cause := recover(); cause != nil {
			err = &ResolverError{Kind: t.kind, Ref: ref, MetaKey: key, Cause: cause}
		}
	}()
	resolved = t.Resolver(key)(existing, incoming)
	return resolved, nil
}

// Get returns the value stored for (ref, key).
func (t *MetaTable) Get(ref int, key string) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.rows[ref]
	if !ok {
		return nil, false
	}
	v, ok := row[key]
	return v, ok
}

// GetAll returns the stored values for the requested keys on ref. Absent
// keys are omitted from the result.
func (t *MetaTable) GetAll(ref int, keys []string) map[string]any {
	out := make(map[string]any, len(keys))
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.rows[ref]
	if !ok {
		return out
	}
	for _, k := range keys {
		if v, present := row[k]; present {
			out[k] = v
		}
	}
	return out
}

// Each calls fn for every (ref, key, value) triple in deterministic order
// (ascending ref, then lexicographic key), stopping early if fn returns
// false. Used by snapshots and persistence.
func (t *MetaTable) Each(fn func(ref int, key string, value any) bool) {
	t.mu.RLock()
	refs := make([]int, 0, len(t.rows))
	for ref := range t.rows {
		refs = append(refs, ref)
	}
	sort.Ints(refs)

	type triple struct {
		ref   int
		key   string
		value any
	}
	var triples []triple
	for _, ref := range refs {
		keys := make([]string, 0, len(t.rows[ref]))
		for k := range t.rows[ref] {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			triples = append(triples, triple{ref, k, t.rows[ref][k]})
		}
	}
	t.mu.RUnlock()

	for _, tr := range triples {
		if !fn(tr.ref, tr.key, tr.value) {
			return
		}
	}
}

func (t *MetaTable) stripeFor(ref int, key string) uint32 {
	h := fnv.New32a()
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(ref >> (8 * i))
	}
	h.Write(buf[:])
	h.Write([]byte(key))
	return h.Sum32() % metaStripes
}
