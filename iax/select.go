// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package iax

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Signed refers to a source row of a Dataset, with the sign to apply to it.
type Signed struct {
	Row  int
	Sign float64
}

// SelectRows returns all rows of index that touch segment seg, all oriented
// the same way relative to seg: first the rows where seg is the Ref, negated,
// then the rows where seg is the Par, unchanged.  As Compute stores current
// into the Ref as positive, every selected row is then positive when current
// flows from seg into the neighbor, as seen from seg taking the parent role.
func SelectRows(seg string, index []Key) []Signed {
	var sel []Signed
	for i, k := range index {
		if k.Ref == seg {
			sel = append(sel, Signed{Row: i, Sign: -1})
		}
	}
	for i, k := range index {
		if k.Par == seg {
			sel = append(sel, Signed{Row: i, Sign: 1})
		}
	}
	return sel
}

// Gather returns a new matrix with the given signed rows of values,
// in order.  Returns nil if sel is empty.
func Gather(values *mat.Dense, sel []Signed) *mat.Dense {
	if len(sel) == 0 {
		return nil
	}
	_, nc := values.Dims()
	out := mat.NewDense(len(sel), nc, nil)
	for i, s := range sel {
		row := out.RawRowView(i)
		copy(row, values.RawRowView(s.Row))
		if s.Sign != 1 {
			floats.Scale(s.Sign, row)
		}
	}
	return out
}

// SelectBySegment returns every row of ds touching seg, with the
// consistent seg-relative sign of SelectRows.  The keys of the
// returned rows are unchanged.  Returns nil if no row touches seg.
func SelectBySegment(seg string, ds *Dataset) *Dataset {
	sel := SelectRows(seg, ds.Index)
	if len(sel) == 0 {
		return nil
	}
	index := make([]Key, len(sel))
	for i, s := range sel {
		index[i] = ds.Index[s.Row]
	}
	return &Dataset{Index: index, Values: Gather(ds.Values, sel)}
}

// NetCurrent returns the sum over all rows of SelectBySegment at each time
// sample: the net axial current leaving seg toward its neighbors.
// By Kirchhoff's current law it balances the transmembrane current of seg,
// and its negation is the net axial current into seg.
func NetCurrent(seg string, ds *Dataset) []float64 {
	net := make([]float64, ds.NTimes())
	sds := SelectBySegment(seg, ds)
	if sds == nil {
		return net
	}
	for i := range sds.Index {
		floats.Add(net, sds.Row(i))
	}
	return net
}
