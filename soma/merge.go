// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package soma

import (
	"fmt"
	"strings"

	"github.com/emer/iax/iax"
	"gonum.org/v1/gonum/mat"
)

// Plan is a soma merge computed from an index alone: output row i is
// source row Rows[i].Row times Rows[i].Sign, with key Index[i].
type Plan struct {

	// number of rows in the source index
	NSrc int

	// merged index: kept non-soma rows in source order, then one
	// (Child, Label) row per MergeMap entry
	Index []iax.Key

	// source row and sign for each merged row
	Rows []iax.Signed

	// number of kept non-soma rows at the start of Index
	NKept int
}

// NewPlan returns the merge Plan for given index and merge map.
//
// For each entry, the rows touching its Subsection are selected with
// iax.SelectRows, and the first with key (Child, Subsection) is used,
// relabeled as (Child, mm.Label).  Rows whose ref or par contains mm.MatchString()
// (currents between soma subsections, and the original soma-incident rows)
// are dropped; all other rows are kept in order, ahead of the merged rows.
func NewPlan(index []iax.Key, mm *MergeMap) (*Plan, error) {
	if err := mm.Validate(); err != nil {
		return nil, err
	}
	pl := &Plan{NSrc: len(index)}
	match := mm.MatchString()
	for i, k := range index {
		if strings.Contains(k.Ref, match) || strings.Contains(k.Par, match) {
			continue
		}
		pl.Index = append(pl.Index, k)
		pl.Rows = append(pl.Rows, iax.Signed{Row: i, Sign: 1})
	}
	pl.NKept = len(pl.Rows)
	sels := make(map[string][]iax.Signed)
	for _, en := range mm.Entries {
		sel, has := sels[en.Subsection]
		if !has {
			sel = iax.SelectRows(en.Subsection, index)
			sels[en.Subsection] = sel
		}
		key := iax.Key{Ref: en.Child, Par: en.Subsection}
		found := false
		for _, s := range sel {
			if index[s.Row] == key {
				pl.Index = append(pl.Index, iax.Key{Ref: en.Child, Par: mm.Label})
				pl.Rows = append(pl.Rows, s)
				found = true
				break
			}
		}
		if !found {
			return nil, &MissingRowError{Child: en.Child, Subsection: en.Subsection}
		}
	}
	return pl, nil
}

// NMerged returns the number of relabeled soma rows
func (pl *Plan) NMerged() int {
	return len(pl.Rows) - pl.NKept
}

// Apply returns the merged values for given source values, which can be
// any column (time) chunk of the values indexed by the source index.
func (pl *Plan) Apply(values *mat.Dense) (*mat.Dense, error) {
	if r, _ := values.Dims(); r != pl.NSrc {
		return nil, fmt.Errorf("soma.Plan.Apply: values have %d rows, index has %d", r, pl.NSrc)
	}
	out := iax.Gather(values, pl.Rows)
	if out == nil {
		return nil, iax.ErrEmpty
	}
	return out, nil
}

// Merge returns a new Dataset with the soma subsections of ds merged
// into one soma node according to mm.  ds is not modified.
func Merge(ds *iax.Dataset, mm *MergeMap) (*iax.Dataset, error) {
	pl, err := NewPlan(ds.Index, mm)
	if err != nil {
		return nil, err
	}
	vals, err := pl.Apply(ds.Values)
	if err != nil {
		return nil, err
	}
	return iax.NewDataset(pl.Index, vals)
}
