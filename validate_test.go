package bptree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTree(t *testing.T, order int) *Tree[int, string] {
	tr, err := NewOrdered[int, string](order)
	require.NoError(t, err)

	return tr
}

func leafNode(keys ...int) *node[int, string] {
	n := &node[int, string]{keys: keys}
	for range keys {
		n.vals = append(n.vals, "val")
	}

	return n
}

func TestValidEmpty(t *testing.T) {
	tr := newTestTree(t, 4)

	assert.NoError(t, tr.Valid())

	tr.root = nil
	assert.Error(t, tr.Valid())
}

func TestValidSorted(t *testing.T) {
	tr := newTestTree(t, 4)

	tr.root = leafNode(2, 1)

	assert.Error(t, tr.sorted(tr.root))
	assert.ErrorContains(t, tr.Valid(), "sorted")

	tr.root = leafNode(1, 1)
	assert.Error(t, tr.sorted(tr.root), "duplicate keys are out of order too")
}

func TestValidSeparators(t *testing.T) {
	initLogger(t)

	tr := newTestTree(t, 4)

	tr.root = &node[int, string]{
		keys: []int{5},
		kids: []*node[int, string]{leafNode(1, 7), leafNode(5, 6)},
	}

	// 7 sits in the left subtree but is not below the separator
	assert.Error(t, tr.separatorsValid(tr.root))
	assert.ErrorContains(t, tr.Valid(), "separators")

	tr.root.kids[0] = leafNode(1, 3)
	assert.NoError(t, tr.Valid())

	// separator bounds the right subtree from below, inclusive
	tr.root.kids[1] = leafNode(4, 6)
	assert.Error(t, tr.separatorsValid(tr.root))

	// child count must be one more than key count
	tr.root.kids = tr.root.kids[:1]
	assert.Error(t, tr.separatorsValid(tr.root))
}

func TestValidBalance(t *testing.T) {
	tr := newTestTree(t, 4)

	tr.root = &node[int, string]{
		keys: []int{5},
		kids: []*node[int, string]{
			leafNode(1, 3),
			{
				keys: []int{6},
				kids: []*node[int, string]{leafNode(5), leafNode(6, 7)},
			},
		},
	}

	// children at mismatched depths: left is a leaf, right a branch
	_, err := tr.balanced(tr.root)
	assert.Error(t, err)
	assert.ErrorContains(t, tr.Valid(), "balance")
}

func TestValidFanout(t *testing.T) {
	tr := newTestTree(t, 4)

	tr.root = leafNode(1, 2, 3, 4)

	assert.Error(t, tr.fanout(tr.root, true))
	assert.ErrorContains(t, tr.Valid(), "fanout")

	tr.root = leafNode(1, 2, 3)
	assert.NoError(t, tr.Valid())

	// parallel values out of sync
	tr.root.vals = tr.root.vals[:2]
	assert.Error(t, tr.fanout(tr.root, true))

	// branch may not carry values
	tr.root = &node[int, string]{
		keys: []int{5},
		vals: []string{"val"},
		kids: []*node[int, string]{leafNode(1, 3), leafNode(5, 6)},
	}
	assert.Error(t, tr.fanout(tr.root, true))
}

func TestValidUnderflow(t *testing.T) {
	tr := newTestTree(t, 5)

	tr.root = &node[int, string]{
		keys: []int{10, 20},
		kids: []*node[int, string]{
			{keys: []int{5}, kids: []*node[int, string]{leafNode(1, 2), leafNode(5, 6)}},
			{kids: []*node[int, string]{leafNode(11, 12)}}, // single child underflows
			{keys: []int{25}, kids: []*node[int, string]{leafNode(21, 22), leafNode(25, 26)}},
		},
	}

	assert.ErrorContains(t, tr.Valid(), "fanout")
}

func TestValidAfterManyPuts(t *testing.T) {
	initLogger(t)

	tr := newTestTree(t, 6)

	for i := 0; i < 1000; i++ {
		tr.Put(i*7919%1000, "val")
	}

	assert.NoError(t, tr.Valid())

	if t.Failed() {
		t.Logf("dump\n%v", tr.dump())
	}
}
