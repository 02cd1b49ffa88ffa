// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package volt holds recorded membrane potential traces, one per segment
of a compartmental neuron morphology, indexed by segment name.

Segment names follow the NEURON section(x) convention, e.g., "dend1_0(0.5)"
or "soma(0.833333)".  All traces share the same number of time samples.
*/
package volt

import (
	"fmt"
	"log"

	"github.com/emer/etable/v2/etensor"
	"github.com/goki/kigen/ordmap"
	"github.com/goki/mat32"
)

// Table maps segment names to their membrane potential traces.
// Lookup by name is O(1) via the ordered map, which also preserves
// the original recording order of the segments.
// A Table is not modified after NewTable returns.
type Table struct {

	// segment name -> row of Traces, in recording order
	Segs *ordmap.Map[string, int]

	// membrane potential, [Segment][Time]
	Traces *etensor.Float32
}

// NewTable returns a new Table for given segment labels, which must be
// parallel to the outer (row) dimension of the 2D traces tensor.
// If a label occurs more than once, the first row is used and the
// duplicate is logged.
func NewTable(segments []string, traces *etensor.Float32) (*Table, error) {
	if traces == nil || traces.NumDims() != 2 {
		return nil, fmt.Errorf("volt.NewTable: traces must be a 2D [Segment][Time] tensor")
	}
	if len(segments) != traces.Dim(0) {
		return nil, fmt.Errorf("volt.NewTable: %d segment labels for %d traces", len(segments), traces.Dim(0))
	}
	vt := &Table{Segs: ordmap.New[string, int](), Traces: traces}
	for i, sg := range segments {
		if _, has := vt.Segs.ValByKey(sg); has {
			log.Printf("volt.NewTable: duplicate segment %s at row %d, using first\n", sg, i)
			continue
		}
		vt.Segs.Add(sg, i)
	}
	return vt, nil
}

// NewTableFromRows is a convenience constructor that copies the
// given per-segment rows into a new traces tensor.
// All rows must have the same length.
func NewTableFromRows(segments []string, rows [][]float32) (*Table, error) {
	nt := 0
	if len(rows) > 0 {
		nt = len(rows[0])
	}
	tsr := etensor.NewFloat32([]int{len(rows), nt}, nil, []string{"Segment", "Time"})
	for i, rw := range rows {
		if len(rw) != nt {
			return nil, fmt.Errorf("volt.NewTableFromRows: row %d has %d samples, expected %d", i, len(rw), nt)
		}
		copy(tsr.Values[i*nt:(i+1)*nt], rw)
	}
	return NewTable(segments, tsr)
}

// NSegments returns the number of distinct segments
func (vt *Table) NSegments() int {
	return vt.Segs.Len()
}

// NTimes returns the number of time samples per trace
func (vt *Table) NTimes() int {
	return vt.Traces.Dim(1)
}

// Trace returns the membrane potential trace for given segment,
// and false if the segment is not in the table.
// The returned slice shares storage with the table and must not be modified.
func (vt *Table) Trace(seg string) ([]float32, bool) {
	ri, has := vt.Segs.ValByKey(seg)
	if !has {
		return nil, false
	}
	nt := vt.NTimes()
	return vt.Traces.Values[ri*nt : (ri+1)*nt], true
}

// Range returns the min and max potential over all traces,
// which is useful as a quick sanity check on loaded data.
func (vt *Table) Range() (min, max float32) {
	vals := vt.Traces.Values
	if len(vals) == 0 {
		return 0, 0
	}
	min, max = vals[0], vals[0]
	for _, v := range vals[1:] {
		min = mat32.Min(min, v)
		max = mat32.Max(max, v)
	}
	return
}
