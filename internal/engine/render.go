package engine

import (
	"fmt"
	"io"
	"slices"
	"strings"
)

// FormatBindings renders bindings as space-separated motif=graph pairs
// sorted by motif vertex, e.g. "A=X B=Y C=Z".
func FormatBindings(bindings map[string]string) string {
	keys := make([]string, 0, len(bindings))
	for k := range bindings {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + bindings[k]
	}
	return strings.Join(pairs, " ")
}

// WriteMatch writes one match as a "# match n" header, its edges already
// encoded in the graph text format, and its sorted bindings:
//
//	# match 1
//	e1,0,X,Y,
//	e2,1,Y,Z,
//	A=X B=Y C=Z
//
// A blank line precedes the header so consecutive matches stay apart.
func WriteMatch(w io.Writer, ordinal int, edges string, bindings map[string]string) error {
	_, err := fmt.Fprintf(w, "\n# match %d\n%s%s\n", ordinal, edges, FormatBindings(bindings))
	return err
}
