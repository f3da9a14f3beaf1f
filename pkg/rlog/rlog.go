// Package rlog reads the charge integrals of a run from the "rlog" ROOT
// tree written by the front-end acquisition.
package rlog

import (
	"fmt"
	"reflect"

	gain "github.com/next-exp/gaincal_go/pkg"
	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/riofs"
	"go-hep.org/x/hep/groot/rtree"
)

const (
	DefaultTree   = "rlog"
	DefaultBranch = "integral"
)

// Open loads the integral branch of every entry of the tree. The branch may
// hold a fixed size array (Float_t integral[64]) or a variable length one.
func Open(filename, treeName, branch string) (*gain.EventTable, error) {
	if treeName == "" {
		treeName = DefaultTree
	}
	if branch == "" {
		branch = DefaultBranch
	}

	f, err := groot.Open(filename)
	if err != nil {
		return nil, &gain.ErrOpenFile{Filename: filename, Err: err}
	}
	defer f.Close()

	obj, err := f.Get(treeName)
	if err != nil {
		return nil, &gain.ErrOpenFile{Filename: filename, Err: fmt.Errorf("tree %s: %w", treeName, err)}
	}
	tree, ok := obj.(rtree.Tree)
	if !ok {
		return nil, fmt.Errorf("object %s in %s is not a tree", treeName, filename)
	}

	var rvar *rtree.ReadVar
	rvars := rtree.NewReadVars(tree)
	for i := range rvars {
		if rvars[i].Name == branch {
			rvar = &rvars[i]
			break
		}
	}
	if rvar == nil {
		return nil, fmt.Errorf("tree %s has no branch %s", treeName, branch)
	}

	r, err := rtree.NewReader(tree, []rtree.ReadVar{*rvar})
	if err != nil {
		return nil, fmt.Errorf("error creating reader for %s: %w", filename, err)
	}
	defer r.Close()

	rows := make([][]float64, 0, tree.Entries())
	channels := -1
	err = r.Read(func(ctx rtree.RCtx) error {
		row, err := toFloats(rvar.Value)
		if err != nil {
			return fmt.Errorf("entry %d: %w", ctx.Entry, err)
		}
		if channels < 0 {
			channels = len(row)
		}
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", filename, err)
	}
	if channels < 0 {
		channels = branchWidth(rvar.Value)
	}
	return gain.NewEventTableWithChannels(rows, channels)
}

// branchWidth is the declared length of a fixed size array branch, and 0
// for variable length ones.
func branchWidth(ptr any) int {
	v := reflect.ValueOf(ptr)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if v.Kind() != reflect.Array {
		return 0
	}
	return v.Len()
}

// toFloats copies the value pointed to by ptr, an array or slice of a
// numeric type, into a new []float64.
func toFloats(ptr any) ([]float64, error) {
	v := reflect.ValueOf(ptr)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Array, reflect.Slice:
	default:
		return nil, fmt.Errorf("unsupported branch type %T", ptr)
	}
	out := make([]float64, v.Len())
	for i := range out {
		e := v.Index(i)
		switch e.Kind() {
		case reflect.Float32, reflect.Float64:
			out[i] = e.Float()
		case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			out[i] = float64(e.Int())
		case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			out[i] = float64(e.Uint())
		default:
			return nil, fmt.Errorf("unsupported element type %s", e.Type())
		}
	}
	return out, nil
}

// Write creates a ROOT file holding a single rlog tree with a variable
// length float branch, sized by an "nchannels" count branch.
func Write(filename, treeName, branch string, rows [][]float64, channels int) error {
	if treeName == "" {
		treeName = DefaultTree
	}
	if branch == "" {
		branch = DefaultBranch
	}

	f, err := groot.Create(filename)
	if err != nil {
		return &gain.ErrOpenFile{Filename: filename, Err: err}
	}
	if err := writeTree(f, treeName, branch, rows, channels); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeTree(dir riofs.Directory, treeName, branch string, rows [][]float64, channels int) error {
	var (
		n      int32
		values []float32
	)
	wvars := []rtree.WriteVar{
		{Name: "nchannels", Value: &n},
		{Name: branch, Value: &values, Count: "nchannels"},
	}
	w, err := rtree.NewWriter(dir, treeName, wvars)
	if err != nil {
		return fmt.Errorf("error creating tree %s: %w", treeName, err)
	}

	for i, row := range rows {
		if len(row) < channels {
			w.Close()
			return fmt.Errorf("row %d has %d values, want %d: %w", i, len(row), channels, gain.ErrRaggedRow)
		}
		n = int32(channels)
		values = values[:0]
		for _, x := range row[:channels] {
			values = append(values, float32(x))
		}
		if _, err := w.Write(); err != nil {
			w.Close()
			return fmt.Errorf("error writing entry %d: %w", i, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("error closing tree %s: %w", treeName, err)
	}
	return nil
}
