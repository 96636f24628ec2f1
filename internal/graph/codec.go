package graph

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const fieldCount = 5

// Encode writes g to w in the text format, one edge per line in timestamp
// order.
func Encode(w io.Writer, g *EventGraph) error {
	bw := bufio.NewWriter(w)
	for _, e := range g.edges {
		if _, err := fmt.Fprintf(bw, "%s,%d,%s,%s,%s\n", e.Name, e.Timestamp, e.Tail, e.Head, e.Kind); err != nil {
			return fmt.Errorf("encode edge %s: %w", e.Name, err)
		}
	}
	return bw.Flush()
}

// Decode reads the text format from r and builds a graph.
//
// Lines may end in "\n" or "\r\n". A line without exactly five fields yields
// a *FormatError, a non-integer timestamp a *ParseError. Edges are re-sorted
// and vertices re-derived, so the file order does not need to be sorted.
func Decode(r io.Reader) (*EventGraph, error) {
	return decode(r, "")
}

func decode(r io.Reader, path string) (*EventGraph, error) {
	var edges []Edge

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSuffix(sc.Text(), "\r")

		fields := strings.Split(text, ",")
		if len(fields) != fieldCount {
			return nil, &FormatError{Path: path, Line: line, Fields: len(fields)}
		}

		ts, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, &ParseError{Path: path, Line: line, Value: fields[1], Err: err}
		}

		edges = append(edges, Edge{
			Name:      fields[0],
			Timestamp: ts,
			Tail:      fields[2],
			Head:      fields[3],
			Kind:      fields[4],
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read graph: %w", err)
	}

	g, err := Build(edges)
	if err != nil {
		if path != "" {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return nil, err
	}
	return g, nil
}

// Save writes g to path in the text format, replacing any existing file.
func Save(path string, g *EventGraph) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save graph: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("save graph: %w", cerr)
		}
	}()

	if err := Encode(f, g); err != nil {
		return fmt.Errorf("save graph %s: %w", path, err)
	}
	return nil
}

// Load reads a graph file written by Save.
// A file without edges yields an *EmptyInputError.
func Load(path string) (*EventGraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load graph: %w", err)
	}
	defer f.Close()

	g, err := decode(f, path)
	if err != nil {
		return nil, err
	}
	if err := RequireEdges(g, path); err != nil {
		return nil, err
	}
	return g, nil
}
