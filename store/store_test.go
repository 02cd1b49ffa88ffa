// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package store

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/emer/iax/iax"
	"github.com/goki/mat32"
	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

// difTol is the numerical difference tolerance for comparing vs. target values
const difTol = float32(1.0e-6)

func testMatrix(nr, nc int) *mat.Dense {
	m := mat.NewDense(nr, nc, nil)
	for r := 0; r < nr; r++ {
		for c := 0; c < nc; c++ {
			m.Set(r, c, float64(r)*1.0e3+float64(c)/7.0-math.Pi)
		}
	}
	return m
}

func TestChunkBounds(t *testing.T) {
	if n := NChunks(10, 3); n != 4 {
		t.Errorf("NChunks(10, 3): %d\n", n)
	}
	if n := NChunks(9, 3); n != 3 {
		t.Errorf("NChunks(9, 3): %d\n", n)
	}
	if n := NChunks(9, 0); n != 1 {
		t.Errorf("NChunks(9, 0): %d\n", n)
	}
	if n := NChunks(9, 20000); n != 1 {
		t.Errorf("NChunks(9, 20000): %d\n", n)
	}
	st, ed := ChunkBounds(3, 10, 3)
	if st != 9 || ed != 10 {
		t.Errorf("ChunkBounds(3, 10, 3): %d, %d\n", st, ed)
	}
	st, ed = ChunkBounds(0, 10, 0)
	if st != 0 || ed != 10 {
		t.Errorf("ChunkBounds(0, 10, 0): %d, %d\n", st, ed)
	}
}

func TestChunkRoundTrip(t *testing.T) {
	d := NewDir(filepath.Join(t.TempDir(), "axial_currents"))
	m := testMatrix(5, 23)
	names, err := d.SaveChunks(m, 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 6 {
		t.Fatalf("chunks saved: %v\n", names)
	}
	last, err := d.LoadValues(ChunkFileName(ChunkPrefix, "5"))
	if err != nil {
		t.Fatal(err)
	}
	if r, c := last.Dims(); r != 5 || c != 3 {
		t.Errorf("last chunk shape: %d x %d\n", r, c)
	}
	full, err := d.LoadChunks(ChunkPrefix)
	if err != nil {
		t.Fatal(err)
	}
	if !mat.Equal(full, m) {
		t.Errorf("chunk round trip differs:\n%v\n%v\n", mat.Formatted(full), mat.Formatted(m))
	}
}

func TestChunkFilesOrder(t *testing.T) {
	d := NewDir(t.TempDir())
	m := testMatrix(2, 12)
	if _, err := d.SaveChunks(m, 1); err != nil {
		t.Fatal(err)
	}
	os.WriteFile(d.File("notes.txt"), []byte("x"), 0644)
	cfs, err := d.ChunkFiles(ChunkPrefix)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfs) != 12 {
		t.Fatalf("chunk files: %v\n", cfs)
	}
	for i, cf := range cfs {
		if cf.N != i {
			t.Errorf("order err: idx: %d, chunk: %v\n", i, cf)
		}
	}
	if cfs[10].Num != "10" || cfs[10].Name != "current_values_chunk_10.npy" {
		t.Errorf("chunk 10 err: %v\n", cfs[10])
	}
}

func TestIndexRoundTrip(t *testing.T) {
	d := NewDir(t.TempDir())
	index := []iax.Key{
		{Ref: "soma(0.5)", Par: "soma(0.166667)"},
		{Ref: "dend1_0(0.5)", Par: "soma(1)"},
		{Ref: "hill(0.166667)", Par: "soma(0.5)"},
		{Ref: "axon(0.5)", Par: "hill(0.833333)"},
	}
	if err := d.SaveIndex(IndexFile, index); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(d.File(IndexFile))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if lines[0] != "ref,par" {
		t.Errorf("header err: %q\n", lines[0])
	}
	if len(lines) != len(index)+1 || lines[2] != "dend1_0(0.5),soma(1)" {
		t.Errorf("rows err: %v\n", lines)
	}
	ld, err := d.LoadIndex(IndexFile)
	if err != nil {
		t.Fatal(err)
	}
	if len(ld) != len(index) {
		t.Fatalf("loaded index: %v\n", ld)
	}
	for i := range index {
		if ld[i] != index[i] {
			t.Errorf("index err: idx: %d, key: %v, cor: %v\n", i, ld[i], index[i])
		}
	}
}

func TestLoadIndexSpacedHeader(t *testing.T) {
	d := NewDir(t.TempDir())
	if err := os.WriteFile(d.File(IndexFile), []byte("ref , par\nA,B\nB,C\n"), 0644); err != nil {
		t.Fatal(err)
	}
	ld, err := d.LoadIndex(IndexFile)
	if err != nil {
		t.Fatal(err)
	}
	cor := []iax.Key{{Ref: "A", Par: "B"}, {Ref: "B", Par: "C"}}
	if len(ld) != len(cor) {
		t.Fatalf("header read as data: %v\n", ld)
	}
	for i := range cor {
		if ld[i] != cor[i] {
			t.Errorf("index err: idx: %d, key: %v, cor: %v\n", i, ld[i], cor[i])
		}
	}
}

// TestValuesLarge saves a matrix well beyond one write buffer
func TestValuesLarge(t *testing.T) {
	d := NewDir(t.TempDir())
	if err := d.MkdirAll(); err != nil {
		t.Fatal(err)
	}
	m := testMatrix(40, 2000)
	if err := d.SaveValues("big.npy", m); err != nil {
		t.Fatal(err)
	}
	fi, err := os.Stat(d.File("big.npy"))
	if err != nil {
		t.Fatal(err)
	}
	if fi.Size() < 8*40*2000 {
		t.Errorf("file not fully flushed: %d bytes\n", fi.Size())
	}
	ld, err := d.LoadValues("big.npy")
	if err != nil {
		t.Fatal(err)
	}
	if !mat.Equal(ld, m) {
		t.Errorf("large values round trip differs")
	}
}

func TestLoadConnections(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "df_connections.csv")
	csv := ",ref,par,ri_par\n0,soma(0.5),,\n1,dend1_0(0.5),soma(1),12.5\n2,hill(0.166667),soma(0.5),0.0625\n"
	if err := os.WriteFile(fn, []byte(csv), 0644); err != nil {
		t.Fatal(err)
	}
	cons, err := LoadConnections(fn)
	if err != nil {
		t.Fatal(err)
	}
	if len(cons) != 3 {
		t.Fatalf("connections: %v\n", cons)
	}
	if cons[0].Ref != "soma(0.5)" || cons[0].Par != "" || !math.IsNaN(cons[0].RiPar) {
		t.Errorf("root connection err: %+v\n", cons[0])
	}
	if cons[1] != (iax.Connection{Ref: "dend1_0(0.5)", Par: "soma(1)", RiPar: 12.5}) {
		t.Errorf("connection 1 err: %+v\n", cons[1])
	}
	if cons[2].RiPar != 0.0625 {
		t.Errorf("connection 2 err: %+v\n", cons[2])
	}

	bad := filepath.Join(t.TempDir(), "bad.csv")
	os.WriteFile(bad, []byte("ref,parent\nA,B\n"), 0644)
	if _, err := LoadConnections(bad); err == nil {
		t.Errorf("expected missing column error")
	}
	if _, err := LoadConnections(filepath.Join(t.TempDir(), "none.csv")); err == nil {
		t.Errorf("expected missing file error")
	}
}

func TestLoadVoltages(t *testing.T) {
	dir := t.TempDir()
	vfn := filepath.Join(dir, "v.npy")
	sfn := filepath.Join(dir, "segments.csv")
	pot := mat.NewDense(3, 4, []float64{
		-65, -64.5, -64, -63.5,
		-70, -70, -70, -70,
		-60.25, -55, -50, 10,
	})
	f, err := os.Create(vfn)
	if err != nil {
		t.Fatal(err)
	}
	if err := npyio.Write(f, pot); err != nil {
		t.Fatal(err)
	}
	f.Close()
	os.WriteFile(sfn, []byte("segment\nsoma(0.5)\ndend1_0(0.5)\nhill(0.166667)\n"), 0644)

	vt, err := LoadVoltages(vfn, sfn)
	if err != nil {
		t.Fatal(err)
	}
	if vt.NSegments() != 3 || vt.NTimes() != 4 {
		t.Fatalf("shape err: %d x %d\n", vt.NSegments(), vt.NTimes())
	}
	tr, ok := vt.Trace("hill(0.166667)")
	if !ok {
		t.Fatal("hill(0.166667) not found")
	}
	for ti, v := range tr {
		cor := float32(pot.At(2, ti))
		if dif := mat32.Abs(v - cor); dif > difTol {
			t.Errorf("trace err: t: %d, v: %v, cor: %v, dif: %v\n", ti, v, cor, dif)
		}
	}

	os.WriteFile(sfn, []byte("segment\nsoma(0.5)\n"), 0644)
	if _, err := LoadVoltages(vfn, sfn); err == nil {
		t.Errorf("expected label count error")
	}
}
