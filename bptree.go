package bptree

import (
	"cmp"
	"sort"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"
)

var ErrSmallOrder = errors.New("order must be at least 3")

var tl *tlog.Logger // test logger

type (
	// Tree is an ordered map backed by a B+ tree. All values live in
	// leaves at equal depth, branches hold routing keys only.
	//
	// Not safe for concurrent use. Wrap writers in external mutual
	// exclusion if shared.
	Tree[K, V any] struct {
		root *node[K, V]

		order int // max children per branch; leaf holds up to order-1 keys
		less  func(a, b K) bool

		size  int
		depth int
	}

	node[K, V any] struct {
		keys []K
		vals []V           // parallel to keys, leaves only
		kids []*node[K, V] // len(keys)+1, branches only
	}
)

func New[K, V any](order int, less func(a, b K) bool) (*Tree[K, V], error) {
	if order < 3 {
		return nil, errors.Wrap(ErrSmallOrder, "order %d", order)
	}

	t := &Tree[K, V]{
		root:  &node[K, V]{},
		order: order,
		less:  less,
	}

	return t, nil
}

func NewOrdered[K cmp.Ordered, V any](order int) (*Tree[K, V], error) {
	return New[K, V](order, func(a, b K) bool { return a < b })
}

func (t *Tree[K, V]) Put(k K, v V) {
	sep, right, split := t.insert(t.root, k, v)
	if !split {
		return
	}

	t.root = &node[K, V]{
		keys: []K{sep},
		kids: []*node[K, V]{t.root, right},
	}
	t.depth++

	if tl.V("root") != nil {
		tl.Printf("root split  sep %v  depth %v", sep, t.depth)
	}
}

func (t *Tree[K, V]) Get(k K) (v V, ok bool) {
	n := t.root
	for !n.leaf() {
		n = n.kids[t.descend(n, k)]
	}

	i, eq := t.search(n, k)
	if !eq {
		return
	}

	return n.vals[i], true
}

func (t *Tree[K, V]) Size() int  { return t.size }
func (t *Tree[K, V]) Depth() int { return t.depth }
func (t *Tree[K, V]) Order() int { return t.order }

// Walk calls f for each key-value pair in key order until f returns false.
func (t *Tree[K, V]) Walk(f func(k K, v V) bool) {
	t.root.walk(f)
}

func (t *Tree[K, V]) insert(n *node[K, V], k K, v V) (sep K, right *node[K, V], split bool) {
	if n.leaf() {
		return t.leafInsert(n, k, v)
	}

	i := t.descend(n, k)

	s, r, sp := t.insert(n.kids[i], k, v)
	if !sp {
		return
	}

	// child split: keep its left half at i, splice separator and right sibling in
	n.keys = insertAt(n.keys, i, s)
	n.kids = insertAt(n.kids, i+1, r)

	if len(n.kids) <= t.order {
		return
	}

	return t.splitBranch(n)
}

func (t *Tree[K, V]) leafInsert(n *node[K, V], k K, v V) (sep K, right *node[K, V], split bool) {
	i, eq := t.search(n, k)

	if eq {
		n.vals[i] = v

		return
	}

	n.keys = insertAt(n.keys, i, k)
	n.vals = insertAt(n.vals, i, v)
	t.size++

	if tl.V("insert") != nil {
		tl.Printf("leaf insert %v at %d / %d", k, i, len(n.keys))
	}

	if len(n.keys) <= t.order-1 {
		return
	}

	return t.splitLeaf(n)
}

func (t *Tree[K, V]) splitLeaf(n *node[K, V]) (sep K, right *node[K, V], split bool) {
	mid := len(n.keys) / 2

	// separator stays in the right leaf, parent only routes by it
	sep = n.keys[mid]

	right = &node[K, V]{
		keys: cloneSlice(n.keys[mid:]),
		vals: cloneSlice(n.vals[mid:]),
	}

	n.keys = n.keys[:mid:mid]
	n.vals = n.vals[:mid:mid]

	if tl.V("split") != nil {
		tl.Printf("leaf split  sep %v  %d + %d keys", sep, len(n.keys), len(right.keys))
	}

	return sep, right, true
}

func (t *Tree[K, V]) splitBranch(n *node[K, V]) (sep K, right *node[K, V], split bool) {
	mid := len(n.keys) / 2

	// separator moves up, kept by neither half
	sep = n.keys[mid]

	right = &node[K, V]{
		keys: cloneSlice(n.keys[mid+1:]),
		kids: cloneSlice(n.kids[mid+1:]),
	}

	n.keys = n.keys[:mid:mid]
	n.kids = n.kids[: mid+1 : mid+1]

	if tl.V("split") != nil {
		tl.Printf("branch split  sep %v  %d + %d children", sep, len(n.kids), len(right.kids))
	}

	return sep, right, true
}

// descend returns the child index for k: the smallest i with k < keys[i],
// or len(keys) if k is not below any separator.
func (t *Tree[K, V]) descend(n *node[K, V], k K) int {
	return sort.Search(len(n.keys), func(i int) bool { return t.less(k, n.keys[i]) })
}

// search returns the position of k in n.keys, eq is false if k is absent
// and the position is where it would be inserted.
func (t *Tree[K, V]) search(n *node[K, V], k K) (i int, eq bool) {
	i = sort.Search(len(n.keys), func(i int) bool { return !t.less(n.keys[i], k) })
	eq = i < len(n.keys) && !t.less(k, n.keys[i])

	return
}

func (n *node[K, V]) leaf() bool { return n.kids == nil }

func (n *node[K, V]) walk(f func(K, V) bool) bool {
	if n.leaf() {
		for i, k := range n.keys {
			if !f(k, n.vals[i]) {
				return false
			}
		}

		return true
	}

	for _, kid := range n.kids {
		if !kid.walk(f) {
			return false
		}
	}

	return true
}

func insertAt[E any](s []E, i int, e E) []E {
	var zero E

	s = append(s, zero)
	copy(s[i+1:], s[i:])
	s[i] = e

	return s
}

func cloneSlice[E any](s []E) []E {
	return append([]E{}, s...)
}
