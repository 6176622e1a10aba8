package bptree

import (
	"fmt"
	"io"

	"github.com/nikandfor/hacked/low"
)

// DumpTo writes an indented per-level dump of the tree structure. Debug aid,
// the output format is not stable.
func (t *Tree[K, V]) DumpTo(w io.Writer) {
	fmt.Fprintf(w, "tree  order %d  size %d  depth %d\n", t.order, t.size, t.depth)

	dumpNode(w, 1, t.root)
}

func (t *Tree[K, V]) dump() string {
	var b low.Buf

	t.DumpTo(&b)

	return string(b)
}

func dumpNode[K, V any](w io.Writer, d int, n *node[K, V]) {
	const pad = "                                                              "

	if n.leaf() {
		for i, k := range n.keys {
			fmt.Fprintf(w, "%v%v -> %v\n", pad[:d*4], k, n.vals[i])
		}

		return
	}

	dumpNode(w, d+1, n.kids[0])

	for i, k := range n.keys {
		fmt.Fprintf(w, "%v<%v>\n", pad[:d*4], k)

		dumpNode(w, d+1, n.kids[i+1])
	}
}
