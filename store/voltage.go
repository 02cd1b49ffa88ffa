// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package store

import (
	"fmt"
	"os"

	"github.com/emer/etable/v2/etensor"
	"github.com/emer/iax/volt"
	"github.com/sbinet/npyio"
)

// LoadPotentials loads a 2D [Segment][Time] membrane potential .npy file
// into a float32 tensor.  float64 files are converted to float32.
func LoadPotentials(fn string) (*etensor.Float32, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, fmt.Errorf("store.LoadPotentials: %w", err)
	}
	defer f.Close()
	rd, err := npyio.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("store.LoadPotentials %s: %w", fn, err)
	}
	shp := rd.Header.Descr.Shape
	if len(shp) != 2 {
		return nil, fmt.Errorf("store.LoadPotentials %s: shape %v is not 2D [Segment][Time]", fn, shp)
	}
	nseg, nt := shp[0], shp[1]
	vals := make([]float32, nseg*nt)
	switch rd.Header.Descr.Type {
	case "<f4", "f4":
		err = rd.Read(&vals)
	case "<f8", "f8":
		var v64 []float64
		err = rd.Read(&v64)
		for i, v := range v64 {
			vals[i] = float32(v)
		}
	default:
		return nil, fmt.Errorf("store.LoadPotentials %s: unsupported dtype %s", fn, rd.Header.Descr.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("store.LoadPotentials %s: %w", fn, err)
	}
	if len(vals) != nseg*nt {
		return nil, fmt.Errorf("store.LoadPotentials %s: read %d values for shape %v", fn, len(vals), shp)
	}
	tsr := etensor.NewFloat32([]int{nseg, nt}, nil, []string{"Segment", "Time"})
	if rd.Header.Descr.Fortran {
		for si := 0; si < nseg; si++ {
			for ti := 0; ti < nt; ti++ {
				tsr.Values[si*nt+ti] = vals[ti*nseg+si]
			}
		}
	} else {
		copy(tsr.Values, vals)
	}
	return tsr, nil
}

// LoadVoltages loads the membrane potential traces and their segment
// labels into a volt.Table.
func LoadVoltages(potFile, segFile string) (*volt.Table, error) {
	tsr, err := LoadPotentials(potFile)
	if err != nil {
		return nil, err
	}
	segs, err := LoadSegments(segFile)
	if err != nil {
		return nil, err
	}
	vt, err := volt.NewTable(segs, tsr)
	if err != nil {
		return nil, fmt.Errorf("store.LoadVoltages %s, %s: %w", potFile, segFile, err)
	}
	return vt, nil
}
