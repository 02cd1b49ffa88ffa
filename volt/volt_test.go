// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package volt

import (
	"testing"

	"github.com/emer/etable/v2/etensor"
)

func TestTrace(t *testing.T) {
	vt, err := NewTableFromRows([]string{"A", "B", "soma(0.5)"}, [][]float32{{1, 2, 3}, {4, 5, 6}, {-65, -64, -63}})
	if err != nil {
		t.Fatal(err)
	}
	if vt.NSegments() != 3 || vt.NTimes() != 3 {
		t.Errorf("shape err: segs: %d, times: %d\n", vt.NSegments(), vt.NTimes())
	}
	tr, ok := vt.Trace("B")
	if !ok {
		t.Fatal("B not found")
	}
	cor := []float32{4, 5, 6}
	for i := range cor {
		if tr[i] != cor[i] {
			t.Errorf("B trace err: idx: %d, v: %v, cor: %v\n", i, tr[i], cor[i])
		}
	}
	if _, ok := vt.Trace("soma(1)"); ok {
		t.Errorf("soma(1) should not be found")
	}
	mn, mx := vt.Range()
	if mn != -65 || mx != 6 {
		t.Errorf("range err: min: %v, max: %v\n", mn, mx)
	}
}

func TestDuplicateSegment(t *testing.T) {
	vt, err := NewTableFromRows([]string{"A", "A"}, [][]float32{{1, 1}, {2, 2}})
	if err != nil {
		t.Fatal(err)
	}
	if vt.NSegments() != 1 {
		t.Errorf("duplicate should be dropped, segs: %d\n", vt.NSegments())
	}
	tr, _ := vt.Trace("A")
	if tr[0] != 1 {
		t.Errorf("first row should win, got: %v\n", tr)
	}
}

func TestShapeErrors(t *testing.T) {
	tsr := etensor.NewFloat32([]int{2, 4}, nil, nil)
	if _, err := NewTable([]string{"A"}, tsr); err == nil {
		t.Errorf("expected label count error")
	}
	if _, err := NewTable([]string{"A"}, etensor.NewFloat32([]int{4}, nil, nil)); err == nil {
		t.Errorf("expected 2D error")
	}
	if _, err := NewTableFromRows([]string{"A", "B"}, [][]float32{{1, 2}, {3}}); err == nil {
		t.Errorf("expected ragged rows error")
	}
}
