package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
)

// LoadMode controls how errors are handled while loading a directory.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult holds the motifs compiled from a directory.
type LoadResult struct {
	Motifs    []*Motif
	FileCount int
}

// Lookup returns the motif with the given name.
func (r *LoadResult) Lookup(name string) (*Motif, bool) {
	for _, m := range r.Motifs {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// Names returns the motif names in sorted order.
func (r *LoadResult) Names() []string {
	names := make([]string, len(r.Motifs))
	for i, m := range r.Motifs {
		names[i] = m.Name
	}
	sort.Strings(names)
	return names
}

// LoadDir loads and compiles every motif declared under "motif" in the CUE
// package in dir. Motifs keep their declaration order.
func LoadDir(dir string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, []error{fmt.Errorf("motifs directory: %w", err)}
	}
	if !info.IsDir() {
		return nil, []error{fmt.Errorf("not a directory: %s", dir)}
	}

	files, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{fmt.Errorf("scanning %s: %w", dir, err)}
	}
	if len(files) == 0 {
		return nil, []error{fmt.Errorf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{fmt.Errorf("no CUE instances loaded from %s", dir)}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{fmt.Errorf("loading CUE files: %w", formatCUEError(inst.Err))}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{fmt.Errorf("building CUE value: %w", formatCUEError(err))}
	}

	result := &LoadResult{FileCount: len(files)}
	motifs, errs := compileAll(value, mode)
	result.Motifs = motifs

	if len(result.Motifs) == 0 && len(errs) == 0 {
		errs = append(errs, fmt.Errorf("no motifs found in %s", dir))
	}
	return result, errs
}

// compileAll compiles every field of the "motif" struct in v.
func compileAll(v cue.Value, mode LoadMode) ([]*Motif, []error) {
	var (
		motifs []*Motif
		errs   []error
	)

	motifsVal := v.LookupPath(cue.ParsePath("motif"))
	if !motifsVal.Exists() {
		return nil, nil
	}

	iter, err := motifsVal.Fields()
	if err != nil {
		return nil, []error{formatCUEError(err)}
	}
	for iter.Next() {
		m, err := CompileMotif(iter.Value())
		if err != nil {
			errs = append(errs, err)
			if mode == LoadModeFailFast {
				return motifs, errs
			}
			continue
		}
		motifs = append(motifs, m)
	}
	return motifs, errs
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
