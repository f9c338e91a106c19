package strategy

import (
	"container/heap"

	"github.com/roach88/retort/enumerate"
	"github.com/roach88/retort/network"
)

// Ranker scores a recipe for frontier ordering; higher ranks pop first.
// A nil ranker means no ranking: recipes pop in insertion order.
type Ranker func(net *network.Network, r enumerate.Recipe) float64

// frontier is the bounded priority queue of not-yet-evaluated recipes.
// Ties in rank break by insertion sequence, so an unranked frontier is
// FIFO and a ranked one is stable across equal scores.
type frontier struct {
	net      *network.Network
	ranker   Ranker
	heapSize int // 0 = unbounded

	items recipeHeap
	seen  map[string]struct{}
	seq   int64
}

type frontierItem struct {
	recipe enumerate.Recipe
	rank   float64
	seq    int64
}

func newFrontier(net *network.Network, ranker Ranker, heapSize int) *frontier {
	return &frontier{
		net:      net,
		ranker:   ranker,
		heapSize: heapSize,
		seen:     make(map[string]struct{}),
	}
}

// push inserts a recipe unless it was already queued. When the heap bound
// is reached, the worst-ranked item is evicted; an incoming recipe that
// ranks at or below the current worst is dropped instead.
func (f *frontier) push(r enumerate.Recipe) {
	key := r.Key()
	if _, dup := f.seen[key]; dup {
		return
	}
	f.seen[key] = struct{}{}

	item := frontierItem{recipe: r, seq: f.seq}
	f.seq++
	if f.ranker != nil {
		item.rank = f.ranker(f.net, r)
	}

	if f.heapSize > 0 && f.items.Len() >= f.heapSize {
		worst := f.items.worstIndex()
		if !before(item, f.items[worst]) {
			return
		}
		heap.Remove(&f.items, worst)
	}
	heap.Push(&f.items, item)
}

// pop removes up to n top-ranked recipes; n <= 0 drains the frontier.
func (f *frontier) pop(n int) []enumerate.Recipe {
	if n <= 0 || n > f.items.Len() {
		n = f.items.Len()
	}
	out := make([]enumerate.Recipe, 0, n)
	for i := 0; i < n; i++ {
		item := heap.Pop(&f.items).(frontierItem)
		out = append(out, item.recipe)
	}
	return out
}

func (f *frontier) len() int { return f.items.Len() }

// rerank rescores every retained item and restores heap order. Rounds and
// hooks mutate the metadata rankers read, so scores computed at insertion
// go stale across round boundaries.
func (f *frontier) rerank() {
	if f.ranker == nil || f.items.Len() == 0 {
		return
	}
	for i := range f.items {
		f.items[i].rank = f.ranker(f.net, f.items[i].recipe)
	}
	heap.Init(&f.items)
}

// before reports whether a pops ahead of b: higher rank first, earlier
// insertion on ties.
func before(a, b frontierItem) bool {
	if a.rank != b.rank {
		return a.rank > b.rank
	}
	return a.seq < b.seq
}

// recipeHeap implements heap.Interface over frontier items.
type recipeHeap []frontierItem

func (h recipeHeap) Len() int           { return len(h) }
func (h recipeHeap) Less(i, j int) bool { return before(h[i], h[j]) }
func (h recipeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *recipeHeap) Push(x any) {
	*h = append(*h, x.(frontierItem))
}

func (h *recipeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// worstIndex returns the index of the item that would pop last. The heap
// keeps no order over leaves, so this is a linear scan; the heap bound
// keeps it small.
func (h recipeHeap) worstIndex() int {
	worst := 0
	for i := 1; i < len(h); i++ {
		if before(h[worst], h[i]) {
			worst = i
		}
	}
	return worst
}
