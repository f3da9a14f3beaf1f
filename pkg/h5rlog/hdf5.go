// Package h5rlog reads and writes rlog charge integrals stored as a
// two dimensional HDF5 dataset of shape (events, channels).
package h5rlog

import (
	"fmt"
	"path"

	hdf5 "github.com/jmbenlloch/go-hdf5"
	gain "github.com/next-exp/gaincal_go/pkg"
)

const DefaultDataset = "rlog/integral"

// Open loads the whole dataset in memory. The file is closed before
// returning.
func Open(filename, dataset string) (*gain.EventTable, error) {
	if dataset == "" {
		dataset = DefaultDataset
	}
	f, err := hdf5.OpenFile(filename, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, &gain.ErrOpenFile{Filename: filename, Err: err}
	}
	defer f.Close()

	dset, err := f.OpenDataset(dataset)
	if err != nil {
		return nil, &gain.ErrOpenFile{Filename: filename, Err: fmt.Errorf("dataset %s: %w", dataset, err)}
	}
	defer dset.Close()

	space := dset.Space()
	dims, _, err := space.SimpleExtentDims()
	space.Close()
	if err != nil {
		return nil, fmt.Errorf("error reading shape of %s: %w", dataset, err)
	}
	if len(dims) != 2 {
		return nil, fmt.Errorf("dataset %s has rank %d, want 2", dataset, len(dims))
	}
	nEvents, nChannels := int(dims[0]), int(dims[1])
	if nEvents == 0 {
		return gain.NewEventTableWithChannels(nil, nChannels)
	}

	data := make([]float32, nEvents*nChannels)
	if err := dset.Read(&data); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", dataset, err)
	}
	rows := make([][]float64, nEvents)
	for i := range rows {
		row := make([]float64, nChannels)
		for ch := range row {
			row[ch] = float64(data[i*nChannels+ch])
		}
		rows[i] = row
	}
	return gain.NewEventTableWithChannels(rows, nChannels)
}

// Writer appends rlog rows to an extensible, deflate compressed dataset.
type Writer struct {
	File      *hdf5.File
	Group     *hdf5.Group
	Integrals *hdf5.Dataset
	channels  int
	rows      int
}

// NewWriter creates (or truncates) filename with an empty dataset of the
// given width. dataset is a "group/name" path.
func NewWriter(filename, dataset string, channels int) (*Writer, error) {
	if dataset == "" {
		dataset = DefaultDataset
	}
	groupName, name := path.Split(dataset)
	groupName = path.Clean(groupName)
	if groupName == "." || name == "" {
		return nil, fmt.Errorf("dataset %q must be of the form group/name", dataset)
	}

	f, err := hdf5.CreateFile(filename, hdf5.F_ACC_TRUNC)
	if err != nil {
		return nil, &gain.ErrOpenFile{Filename: filename, Err: err}
	}
	g, err := f.CreateGroup(groupName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("error creating group %s: %w", groupName, err)
	}
	dset, err := create2dArray(g, name, channels)
	if err != nil {
		g.Close()
		f.Close()
		return nil, err
	}
	return &Writer{File: f, Group: g, Integrals: dset, channels: channels}, nil
}

func create2dArray(group *hdf5.Group, name string, nChannels int) (*hdf5.Dataset, error) {
	dims := []uint{0, uint(nChannels)}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDims := []uint{uint(unlimitedDims), uint(nChannels)}
	fileSpace, err := hdf5.CreateSimpleDataspace(dims, maxDims)
	if err != nil {
		return nil, err
	}
	defer fileSpace.Close()

	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		return nil, err
	}
	defer plist.Close()
	chunks := []uint{1024, uint(nChannels)}
	plist.SetChunk(chunks)
	plist.SetDeflate(4)

	return group.CreateDatasetWith(name, hdf5.T_NATIVE_FLOAT, fileSpace, plist)
}

// WriteRow appends one event. Rows shorter than the dataset width are
// rejected.
func (w *Writer) WriteRow(row []float64) error {
	if len(row) < w.channels {
		return fmt.Errorf("row %d has %d values, want %d: %w", w.rows, len(row), w.channels, gain.ErrRaggedRow)
	}
	data := make([]float32, w.channels)
	for ch := range data {
		data[ch] = float32(row[ch])
	}

	// extend
	newsize := []uint{uint(w.rows) + 1, uint(w.channels)}
	if err := w.Integrals.Resize(newsize); err != nil {
		return err
	}
	filespace := w.Integrals.Space()
	defer filespace.Close()

	start := []uint{uint(w.rows), 0}
	count := []uint{1, uint(w.channels)}
	if err := filespace.SelectHyperslab(start, nil, count, nil); err != nil {
		return err
	}
	dataspace, err := hdf5.CreateSimpleDataspace(count, nil)
	if err != nil {
		return err
	}
	defer dataspace.Close()

	if err := w.Integrals.WriteSubset(&data, dataspace, filespace); err != nil {
		return err
	}
	w.rows++
	return nil
}

func (w *Writer) Close() error {
	w.Integrals.Close()
	w.Group.Close()
	return w.File.Close()
}

// Write stores rows in a new file.
func Write(filename, dataset string, rows [][]float64, channels int) error {
	w, err := NewWriter(filename, dataset, channels)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.WriteRow(row); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}
