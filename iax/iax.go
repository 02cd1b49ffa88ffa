// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package iax computes axial currents between connected segments of a
compartmental neuron morphology, from their membrane potential traces
and the axial resistance of each connection (Ohm's law):

	Iax(t) = (Vpar(t) - Vref(t)) / RiPar

Positive current flows from the parent into the ref (child) segment.
The result is a Dataset: a [Connection][Time] matrix of currents with a
parallel Index of (Ref, Par) keys, in the same order as the connections.
*/
package iax

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrEmpty is returned when there are no connections or no time samples,
// as there is nothing to compute.
var ErrEmpty = errors.New("iax: no connections or no time samples")

// Connection is one directed edge of the morphology: current flows
// from the Par segment into the Ref segment across resistance RiPar.
type Connection struct {

	// reference (child) segment
	Ref string

	// parent segment
	Par string

	// axial resistance between parent and ref
	RiPar float64
}

// Key identifies one row of a Dataset.
type Key struct {
	Ref string
	Par string
}

func (k Key) String() string {
	return "(" + k.Ref + ", " + k.Par + ")"
}

// Keys returns the (Ref, Par) keys of the connections, in order.
func Keys(cons []Connection) []Key {
	keys := make([]Key, len(cons))
	for i, cn := range cons {
		keys[i] = Key{Ref: cn.Ref, Par: cn.Par}
	}
	return keys
}

// Dataset is a matrix of axial currents, [Index row][Time], with
// Index[i] identifying row i of Values.  The Index is shared by all
// time chunks of the same run, so chunks of Values are column slices.
type Dataset struct {
	Index  []Key
	Values *mat.Dense
}

// NewDataset returns a Dataset after checking that the index
// is parallel to the rows of values.
func NewDataset(index []Key, values *mat.Dense) (*Dataset, error) {
	if values == nil {
		return nil, ErrEmpty
	}
	if r, _ := values.Dims(); r != len(index) {
		return nil, fmt.Errorf("iax.NewDataset: index has %d keys for %d value rows", len(index), r)
	}
	return &Dataset{Index: index, Values: values}, nil
}

// NRows returns the number of rows (connections)
func (ds *Dataset) NRows() int {
	return len(ds.Index)
}

// NTimes returns the number of time samples (columns)
func (ds *Dataset) NTimes() int {
	if ds.Values == nil {
		return 0
	}
	_, c := ds.Values.Dims()
	return c
}

// Row returns the values for given row.  It shares storage with the Dataset.
func (ds *Dataset) Row(row int) []float64 {
	return ds.Values.RawRowView(row)
}

// RowByKey returns the index of the first row with given key, or false if none.
func (ds *Dataset) RowByKey(k Key) (int, bool) {
	for i, ik := range ds.Index {
		if ik == k {
			return i, true
		}
	}
	return -1, false
}
