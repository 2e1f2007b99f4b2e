package topology

import (
	"fmt"
	"strings"
)

// Dot serializes the topology in the DOT graph description language.
// layout and shape are passed through as graphviz hints; empty strings
// use graphviz defaults. The output lists every site as a node followed
// by every link in id order.
func (t *Topology) Dot(layout, shape string) string {
	var b strings.Builder
	b.WriteString("graph topology {\n")
	if layout != "" {
		fmt.Fprintf(&b, "  graph [layout=%s];\n", layout)
	}
	if shape != "" {
		fmt.Fprintf(&b, "  node [shape=%s];\n", shape)
	}
	for i := 0; i < t.numBits; i++ {
		fmt.Fprintf(&b, "  %d;\n", i)
	}
	for _, l := range t.links {
		fmt.Fprintf(&b, "  %d -- %d;\n", l[0], l[1])
	}
	b.WriteString("}\n")
	return b.String()
}
