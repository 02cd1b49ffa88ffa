// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package store reads and writes the files of the axial current pipeline:

  - the (ref, par) index of a currents matrix, as a two-column CSV file
  - the current values, as numpy .npy float64 matrices, split into chunks
    of columns (time samples), numbered from 0
  - the upstream inputs: connectivity CSV, membrane potential .npy
    and its segment labels

The index is never chunked: every value chunk in a directory shares it.
*/
package store

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/goki/ki/ints"
	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

const (
	// IndexFile is the index of the axial current values
	IndexFile = "multiindex.csv"

	// MergedIndexFile is the index of the merged soma values
	MergedIndexFile = "multiindex_merged_soma.csv"

	// ChunkPrefix is the file name prefix of axial current value chunks
	ChunkPrefix = "current_values_chunk_"

	// MergedPrefix is the file name prefix of merged soma value chunks
	MergedPrefix = "merged_soma_values_"

	// NpyExt is the numpy array file extension
	NpyExt = ".npy"
)

// Dir is a directory holding an index and value chunks.
type Dir struct {
	Path string
}

// NewDir returns a Dir for given path
func NewDir(path string) *Dir {
	return &Dir{Path: path}
}

// File returns the full path of the named file in the directory
func (d *Dir) File(name string) string {
	return filepath.Join(d.Path, name)
}

// MkdirAll makes the directory if it does not yet exist
func (d *Dir) MkdirAll() error {
	if err := os.MkdirAll(d.Path, 0755); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}

// ChunkFileName returns the file name for chunk number num with given prefix
func ChunkFileName(prefix, num string) string {
	return prefix + num + NpyExt
}

// SaveValues saves the matrix as a .npy file with given name
func (d *Dir) SaveValues(name string, m *mat.Dense) error {
	fn := d.File(name)
	f, err := os.Create(fn)
	if err != nil {
		return fmt.Errorf("store.SaveValues: %w", err)
	}
	bw := bufio.NewWriter(f)
	if err := npyio.Write(bw, m); err != nil {
		f.Close()
		return fmt.Errorf("store.SaveValues %s: %w", fn, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("store.SaveValues %s: %w", fn, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("store.SaveValues %s: %w", fn, err)
	}
	return nil
}

// LoadValues loads the 2D .npy matrix with given name
func (d *Dir) LoadValues(name string) (*mat.Dense, error) {
	fn := d.File(name)
	f, err := os.Open(fn)
	if err != nil {
		return nil, fmt.Errorf("store.LoadValues: %w", err)
	}
	defer f.Close()
	var m mat.Dense
	if err := npyio.Read(f, &m); err != nil {
		return nil, fmt.Errorf("store.LoadValues %s: %w", fn, err)
	}
	return &m, nil
}

// NChunks returns the number of column chunks of size chunkSize
// needed for width columns.  chunkSize <= 0 means a single chunk.
func NChunks(width, chunkSize int) int {
	if chunkSize <= 0 || chunkSize >= width {
		return 1
	}
	n := width / chunkSize
	if width%chunkSize != 0 {
		n++
	}
	return n
}

// ChunkBounds returns the [start, end) column range of chunk i
func ChunkBounds(i, width, chunkSize int) (start, end int) {
	if chunkSize <= 0 {
		chunkSize = width
	}
	start = i * chunkSize
	end = ints.MinInt((i+1)*chunkSize, width)
	return
}

// SaveChunks saves values split along columns into chunks of chunkSize
// columns, as ChunkPrefix<i>.npy for chunk i starting at 0, making the
// directory as needed.  chunkSize <= 0 saves all columns in one chunk.
// Returns the names of the files saved.
func (d *Dir) SaveChunks(values *mat.Dense, chunkSize int) ([]string, error) {
	if err := d.MkdirAll(); err != nil {
		return nil, err
	}
	nr, nc := values.Dims()
	nch := NChunks(nc, chunkSize)
	names := make([]string, nch)
	for i := 0; i < nch; i++ {
		st, ed := ChunkBounds(i, nc, chunkSize)
		chunk := mat.DenseCopyOf(values.Slice(0, nr, st, ed))
		names[i] = ChunkFileName(ChunkPrefix, strconv.Itoa(i))
		if err := d.SaveValues(names[i], chunk); err != nil {
			return names[:i], err
		}
		fmt.Printf("Saved column chunk %d to %s\n", i, d.File(names[i]))
	}
	return names, nil
}

// ChunkFile is one value chunk file in a Dir
type ChunkFile struct {

	// file name within the directory
	Name string

	// chunk number suffix, as it appears in the file name
	Num string

	// chunk number, for ordering
	N int
}

// ChunkFiles returns the chunk files with given prefix in the directory,
// in ascending chunk number order (so chunk 10 follows chunk 9).
// Files with a non-numeric suffix are ordered after all numbered chunks,
// by name.
func (d *Dir) ChunkFiles(prefix string) ([]ChunkFile, error) {
	ents, err := os.ReadDir(d.Path)
	if err != nil {
		return nil, fmt.Errorf("store.ChunkFiles: %w", err)
	}
	var cfs []ChunkFile
	for _, ent := range ents {
		nm := ent.Name()
		if ent.IsDir() || !strings.HasPrefix(nm, prefix) || !strings.HasSuffix(nm, NpyExt) {
			continue
		}
		num := strings.TrimSuffix(strings.TrimPrefix(nm, prefix), NpyExt)
		n, err := strconv.Atoi(num)
		if err != nil {
			n = -1
		}
		cfs = append(cfs, ChunkFile{Name: nm, Num: num, N: n})
	}
	sort.SliceStable(cfs, func(i, j int) bool {
		ci, cj := cfs[i], cfs[j]
		switch {
		case ci.N < 0 && cj.N < 0:
			return ci.Name < cj.Name
		case ci.N < 0:
			return false
		case cj.N < 0:
			return true
		}
		return ci.N < cj.N
	})
	return cfs, nil
}

// LoadChunks loads all chunk files with given prefix and concatenates
// them along columns, reconstructing the unchunked matrix.
func (d *Dir) LoadChunks(prefix string) (*mat.Dense, error) {
	cfs, err := d.ChunkFiles(prefix)
	if err != nil {
		return nil, err
	}
	if len(cfs) == 0 {
		return nil, fmt.Errorf("store.LoadChunks: no %s*%s files in %s", prefix, NpyExt, d.Path)
	}
	var full *mat.Dense
	for _, cf := range cfs {
		m, err := d.LoadValues(cf.Name)
		if err != nil {
			return nil, err
		}
		if full == nil {
			full = m
			continue
		}
		fr, _ := full.Dims()
		if mr, _ := m.Dims(); mr != fr {
			return nil, fmt.Errorf("store.LoadChunks: %s has %d rows, previous chunks have %d", d.File(cf.Name), mr, fr)
		}
		var aug mat.Dense
		aug.Augment(full, m)
		full = &aug
	}
	return full, nil
}
