package bptree

import (
	"tlog.app/go/errors"
	"tlog.app/go/loc"
)

// Valid checks the structural invariants of the whole tree: key order
// inside every node, separator bounds between branches and their
// subtrees, equal leaf depth and the order fanout limits.
//
// It is an oracle for tests and debug assertions. Put and Get keep the
// invariants on their own, Valid can only fail on a hand-mutated tree
// or on a bug in the split logic.
func (t *Tree[K, V]) Valid() (err error) {
	defer func() {
		if err != nil && tl != nil {
			tl.Printw("invalid tree", "err", err, "from", loc.Caller(2))
		}
	}()

	if t.root == nil {
		return errors.New("nil root")
	}

	err = t.sorted(t.root)
	if err != nil {
		return errors.Wrap(err, "sorted")
	}

	err = t.separatorsValid(t.root)
	if err != nil {
		return errors.Wrap(err, "separators")
	}

	_, err = t.balanced(t.root)
	if err != nil {
		return errors.Wrap(err, "balance")
	}

	err = t.fanout(t.root, true)
	if err != nil {
		return errors.Wrap(err, "fanout")
	}

	return nil
}

func (t *Tree[K, V]) sorted(n *node[K, V]) error {
	for i := 1; i < len(n.keys); i++ {
		if !t.less(n.keys[i-1], n.keys[i]) {
			return errors.New("keys %v and %v out of order", n.keys[i-1], n.keys[i])
		}
	}

	for _, kid := range n.kids {
		err := t.sorted(kid)
		if err != nil {
			return err
		}
	}

	return nil
}

func (t *Tree[K, V]) separatorsValid(n *node[K, V]) error {
	if n.leaf() {
		return nil
	}

	if len(n.kids) != len(n.keys)+1 {
		return errors.New("branch with %d keys and %d children", len(n.keys), len(n.kids))
	}

	for i, kid := range n.kids {
		var lo, hi *K
		if i > 0 {
			lo = &n.keys[i-1]
		}
		if i < len(n.keys) {
			hi = &n.keys[i]
		}

		err := t.keysWithin(kid, lo, hi)
		if err != nil {
			return err
		}

		err = t.separatorsValid(kid)
		if err != nil {
			return err
		}
	}

	return nil
}

// keysWithin checks every key of the subtree is in [lo, hi). nil bound means unbounded.
func (t *Tree[K, V]) keysWithin(n *node[K, V], lo, hi *K) error {
	for _, k := range n.keys {
		if lo != nil && t.less(k, *lo) {
			return errors.New("key %v below separator %v", k, *lo)
		}
		if hi != nil && !t.less(k, *hi) {
			return errors.New("key %v not below separator %v", k, *hi)
		}
	}

	for _, kid := range n.kids {
		err := t.keysWithin(kid, lo, hi)
		if err != nil {
			return err
		}
	}

	return nil
}

func (t *Tree[K, V]) balanced(n *node[K, V]) (height int, err error) {
	if n.leaf() {
		return 0, nil
	}

	height, err = t.balanced(n.kids[0])
	if err != nil {
		return 0, err
	}

	for _, kid := range n.kids[1:] {
		h, err := t.balanced(kid)
		if err != nil {
			return 0, err
		}

		if h != height {
			return 0, errors.New("siblings at heights %d and %d", height, h)
		}
	}

	return height + 1, nil
}

func (t *Tree[K, V]) fanout(n *node[K, V], root bool) error {
	if n.leaf() {
		if len(n.vals) != len(n.keys) {
			return errors.New("leaf with %d keys and %d values", len(n.keys), len(n.vals))
		}
		if len(n.keys) > t.order-1 {
			return errors.New("leaf with %d keys, order %d", len(n.keys), t.order)
		}
		if !root && len(n.keys) < t.order/2 {
			return errors.New("leaf with %d keys underflows order %d", len(n.keys), t.order)
		}

		return nil
	}

	if n.vals != nil {
		return errors.New("branch carrying values")
	}
	if len(n.kids) > t.order {
		return errors.New("branch with %d children, order %d", len(n.kids), t.order)
	}

	min := (t.order + 1) / 2
	if root {
		min = 2
	}
	if len(n.kids) < min {
		return errors.New("branch with %d children underflows order %d", len(n.kids), t.order)
	}

	for _, kid := range n.kids {
		err := t.fanout(kid, false)
		if err != nil {
			return err
		}
	}

	return nil
}
