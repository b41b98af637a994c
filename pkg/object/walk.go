package object

import (
	"container/heap"
	"fmt"
)

// WalkOrder selects the traversal order for Walk.
type WalkOrder int

const (
	// WalkTime yields commits newest-first by committer timestamp.
	WalkTime WalkOrder = iota
	// WalkTimeReverse yields commits oldest-first.
	WalkTimeReverse
)

// Walk returns a fresh Walker over every commit reachable from start,
// following all parents. Each call starts a new traversal, so a Walker is
// never reused; an empty start hash yields an exhausted Walker.
func (s *Store) Walk(start Hash, order WalkOrder) *Walker {
	w := &Walker{store: s, seen: make(map[Hash]bool)}
	if start != "" {
		w.push(start)
	}
	if order == WalkTimeReverse {
		w.reverse()
	}
	return w
}

// Walker iterates commits in the scanner style:
//
//	w := store.Walk(tip, object.WalkTime)
//	for w.Next() {
//		use(w.Hash(), w.Commit())
//	}
//	if err := w.Err(); err != nil { ... }
type Walker struct {
	store *Store
	queue commitHeap
	seen  map[Hash]bool

	reversed []walkItem // filled only for WalkTimeReverse

	cur     *CommitObj
	curHash Hash
	err     error
}

type walkItem struct {
	hash   Hash
	commit *CommitObj
}

// Next advances to the following commit. It returns false when the
// traversal is exhausted or an error occurred; check Err afterwards.
func (w *Walker) Next() bool {
	if w.err != nil {
		return false
	}
	if w.reversed != nil {
		if len(w.reversed) == 0 {
			return false
		}
		item := w.reversed[len(w.reversed)-1]
		w.reversed = w.reversed[:len(w.reversed)-1]
		w.curHash, w.cur = item.hash, item.commit
		return true
	}

	item, ok := w.pop()
	if !ok {
		return false
	}
	w.curHash, w.cur = item.hash, item.commit
	return true
}

// Commit returns the commit produced by the last successful Next.
func (w *Walker) Commit() *CommitObj { return w.cur }

// Hash returns the hash of the commit produced by the last successful Next.
func (w *Walker) Hash() Hash { return w.curHash }

// Err returns the first error encountered during traversal.
func (w *Walker) Err() error { return w.err }

// push loads a commit and queues it, ignoring hashes already visited.
func (w *Walker) push(h Hash) {
	if h == "" || w.seen[h] {
		return
	}
	w.seen[h] = true
	c, err := w.store.ReadCommit(h)
	if err != nil {
		w.err = fmt.Errorf("walk: %w", err)
		return
	}
	heap.Push(&w.queue, walkItem{hash: h, commit: c})
}

// pop yields the newest queued commit and queues its parents, so commits
// surface in reverse-chronological order without loading the whole
// history up front.
func (w *Walker) pop() (walkItem, bool) {
	if w.err != nil || w.queue.Len() == 0 {
		return walkItem{}, false
	}
	item := heap.Pop(&w.queue).(walkItem)
	for _, p := range item.commit.Parents {
		w.push(p)
		if w.err != nil {
			return walkItem{}, false
		}
	}
	return item, true
}

// reverse drains the whole traversal eagerly so it can be served
// oldest-first.
func (w *Walker) reverse() {
	var items []walkItem
	for {
		item, ok := w.pop()
		if !ok {
			break
		}
		items = append(items, item)
	}
	if w.err != nil {
		return
	}
	if items == nil {
		items = []walkItem{}
	}
	w.reversed = items
}

// commitHeap is a max-heap on committer timestamp, with the hash as a
// deterministic tie-breaker.
type commitHeap []walkItem

func (h commitHeap) Len() int { return len(h) }

func (h commitHeap) Less(i, j int) bool {
	if h[i].commit.Committer.When == h[j].commit.Committer.When {
		return h[i].hash < h[j].hash
	}
	return h[i].commit.Committer.When > h[j].commit.Committer.When
}

func (h commitHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *commitHeap) Push(x any) {
	*h = append(*h, x.(walkItem))
}

func (h *commitHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
