package compiler

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"

	"github.com/roach88/tmotif/internal/graph"
)

// Motif is a compiled, named motif.
type Motif struct {
	Name        string
	Description string

	// Delta is the default time window declared with the motif, or nil.
	Delta *int64

	Graph *graph.EventGraph
}

// EdgeDef is one motif edge as written in a definition.
type EdgeDef struct {
	Name string `yaml:"name,omitempty"`
	Tail string `yaml:"tail"`
	Head string `yaml:"head"`
	Kind string `yaml:"kind,omitempty"`
	At   *int64 `yaml:"at,omitempty"`
}

// CompileMotif parses a CUE value into a Motif.
//
// The CUE value should be the motif struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`motif: chain: { edges: [...] }`)
//	m, err := CompileMotif(v.LookupPath(cue.ParsePath("motif.chain")))
func CompileMotif(v cue.Value) (*Motif, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	m := &Motif{}
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		m.Name = labels[len(labels)-1].String()
	}

	if d := v.LookupPath(cue.ParsePath("description")); d.Exists() {
		s, err := d.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		m.Description = s
	}

	if d := v.LookupPath(cue.ParsePath("delta")); d.Exists() {
		delta, err := d.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		m.Delta = &delta
	}

	edgesVal := v.LookupPath(cue.ParsePath("edges"))
	if !edgesVal.Exists() {
		return nil, &CompileError{
			Motif:   m.Name,
			Field:   "edges",
			Message: "edges are required",
			Pos:     v.Pos(),
		}
	}
	iter, err := edgesVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var defs []EdgeDef
	for iter.Next() {
		def, err := parseEdge(iter.Value())
		if err != nil {
			var ce *CompileError
			if errors.As(err, &ce) && ce.Motif == "" {
				ce.Motif = m.Name
			}
			return nil, err
		}
		defs = append(defs, def)
	}

	g, err := build(m.Name, m.Delta, defs, edgesVal.Pos())
	if err != nil {
		return nil, err
	}
	m.Graph = g
	return m, nil
}

// parseEdge parses one element of a motif's edges list.
func parseEdge(v cue.Value) (EdgeDef, error) {
	var def EdgeDef

	str := func(field string, required bool) (string, error) {
		f := v.LookupPath(cue.ParsePath(field))
		if !f.Exists() {
			if required {
				return "", &CompileError{Field: "edges." + field, Message: field + " is required", Pos: v.Pos()}
			}
			return "", nil
		}
		s, err := f.String()
		if err != nil {
			return "", formatCUEError(err)
		}
		return s, nil
	}

	var err error
	if def.Tail, err = str("tail", true); err != nil {
		return def, err
	}
	if def.Head, err = str("head", true); err != nil {
		return def, err
	}
	if def.Kind, err = str("kind", false); err != nil {
		return def, err
	}
	if def.Name, err = str("name", false); err != nil {
		return def, err
	}

	if at := v.LookupPath(cue.ParsePath("at")); at.Exists() {
		ts, err := at.Int64()
		if err != nil {
			return def, formatCUEError(err)
		}
		def.At = &ts
	}
	return def, nil
}

// build turns edge definitions into a motif graph. Edge order is not
// checked for connected growth here; that is engine.ValidateMotif's job and
// only applies to strict searches.
func build(name string, delta *int64, defs []EdgeDef, pos token.Pos) (*graph.EventGraph, error) {
	if delta != nil && *delta < 0 {
		return nil, &CompileError{Motif: name, Field: "delta", Message: fmt.Sprintf("delta must be non-negative, got %d", *delta), Pos: pos}
	}
	if len(defs) == 0 {
		return nil, &CompileError{Motif: name, Field: "edges", Message: "at least one edge is required", Pos: pos}
	}

	edges := make([]graph.Edge, len(defs))
	for i, d := range defs {
		e := graph.Edge{
			Name:      d.Name,
			Timestamp: int64(i),
			Tail:      d.Tail,
			Head:      d.Head,
			Kind:      d.Kind,
		}
		if e.Name == "" {
			e.Name = fmt.Sprintf("e%d", i)
		}
		if d.At != nil {
			e.Timestamp = *d.At
		}
		edges[i] = e
	}

	g, err := graph.Build(edges)
	if err != nil {
		return nil, &CompileError{Motif: name, Field: "edges", Message: err.Error(), Pos: pos}
	}

	return g, nil
}
