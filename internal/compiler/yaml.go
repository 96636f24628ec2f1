package compiler

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"
)

// Definition is a motif in its declarative form, as written in YAML.
type Definition struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description,omitempty"`
	Delta       *int64    `yaml:"delta,omitempty"`
	Edges       []EdgeDef `yaml:"edges"`
}

// Compile validates the definition and builds its motif graph.
func (d Definition) Compile() (*Motif, error) {
	g, err := build(d.Name, d.Delta, d.Edges, token.NoPos)
	if err != nil {
		return nil, err
	}
	return &Motif{
		Name:        d.Name,
		Description: d.Description,
		Delta:       d.Delta,
		Graph:       g,
	}, nil
}

// ParseYAML parses and compiles a single motif written in YAML. Unknown
// fields are rejected.
func ParseYAML(data []byte) (*Motif, error) {
	var def Definition

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &CompileError{Field: "yaml", Message: "empty motif document"}
		}
		return nil, &CompileError{Field: "yaml", Message: fmt.Sprintf("parsing motif: %v", err)}
	}
	return def.Compile()
}
