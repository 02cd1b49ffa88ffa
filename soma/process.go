// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package soma

import (
	"fmt"
	"log"
	"math"

	"github.com/emer/empi/v2/mpi"
	"github.com/emer/iax/iax"
	"github.com/emer/iax/store"
	"gonum.org/v1/gonum/mat"
)

// ChunkReader provides the value chunks to merge
type ChunkReader interface {
	ChunkFiles(prefix string) ([]store.ChunkFile, error)
	LoadValues(name string) (*mat.Dense, error)
}

// ChunkWriter receives the merged index and value chunks
type ChunkWriter interface {
	MkdirAll() error
	SaveIndex(name string, index []iax.Key) error
	SaveValues(name string, m *mat.Dense) error
}

// ProcessAll merges the soma of every store.ChunkPrefix value chunk in
// the input, in chunk order, saving each as store.MergedPrefix with the same
// chunk number.  All chunks share the given index, so the merge Plan and
// the merged index (store.MergedIndexFile) are computed and saved once,
// before any chunk is processed.
//
// Returns the number of chunks merged by this process.
// Under MPI, chunks are divided among the processes, and only
// rank 0 saves the merged index.
func ProcessAll(index []iax.Key, in ChunkReader, out ChunkWriter, mm *MergeMap) (int, error) {
	pl, err := NewPlan(index, mm)
	if err != nil {
		return 0, err
	}
	cfs, err := in.ChunkFiles(store.ChunkPrefix)
	if err != nil {
		return 0, err
	}
	if len(cfs) == 0 {
		log.Printf("soma.ProcessAll: no %s*%s value chunks found\n", store.ChunkPrefix, store.NpyExt)
	}
	if err := out.MkdirAll(); err != nil {
		return 0, err
	}
	rank, nproc := mpi.WorldRank(), mpi.WorldSize()
	if rank == 0 {
		if err := out.SaveIndex(store.MergedIndexFile, pl.Index); err != nil {
			return 0, err
		}
	}
	n := 0
	for ci, cf := range cfs {
		if ci%nproc != rank {
			continue
		}
		vals, err := in.LoadValues(cf.Name)
		if err != nil {
			return n, err
		}
		merged, err := pl.Apply(vals)
		if err != nil {
			return n, fmt.Errorf("soma.ProcessAll: %s: %w", cf.Name, err)
		}
		if n == 0 {
			logNetSoma(pl, merged, mm.Label, cf.Num)
		}
		if err := out.SaveValues(store.ChunkFileName(store.MergedPrefix, cf.Num), merged); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// logNetSoma logs the largest net axial current leaving the merged soma,
// as a check on the merged rows.
func logNetSoma(pl *Plan, merged *mat.Dense, label, num string) {
	if pl.NMerged() == 0 {
		return
	}
	net := iax.NetCurrent(label, &iax.Dataset{Index: pl.Index, Values: merged})
	mx := 0.0
	for _, v := range net {
		mx = math.Max(mx, math.Abs(v))
	}
	log.Printf("chunk %s: %d merged %s rows, max |net axial current| leaving %s: %g\n", num, pl.NMerged(), label, label, mx)
}
