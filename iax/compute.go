// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package iax

import (
	"log"

	"github.com/emer/iax/volt"
	"gonum.org/v1/gonum/mat"
)

// Compute returns the axial current Dataset for given connections, using the
// membrane potential traces in vt.  There is exactly one row per connection,
// in the same order.
//
// A connection whose Ref or Par segment is not in vt (typically the root
// segment, which has no parent) gets an all-zero row: this is logged,
// and valid[i] is false for that row, so it can be told apart from a real
// zero current.  Processing continues with the remaining connections.
func Compute(vt *volt.Table, cons []Connection) (ds *Dataset, valid []bool, err error) {
	nt := vt.NTimes()
	if len(cons) == 0 || nt == 0 {
		return nil, nil, ErrEmpty
	}
	vals := mat.NewDense(len(cons), nt, nil)
	valid = make([]bool, len(cons))
	for i, cn := range cons {
		vref, okr := vt.Trace(cn.Ref)
		vpar, okp := vt.Trace(cn.Par)
		if !okr || !okp {
			log.Printf("The following segment does not have a parent: %s\n", cn.Ref)
			continue
		}
		row := vals.RawRowView(i)
		for ti := range row {
			row[ti] = float64(vpar[ti]-vref[ti]) / cn.RiPar
		}
		valid[i] = true
	}
	return &Dataset{Index: Keys(cons), Values: vals}, valid, nil
}

// NInvalid returns the number of false entries in valid,
// i.e., the number of zero-filled rows from Compute.
func NInvalid(valid []bool) int {
	n := 0
	for _, v := range valid {
		if !v {
			n++
		}
	}
	return n
}
