// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package store

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/emer/etable/v2/etable"
	"github.com/emer/etable/v2/etensor"
	"github.com/emer/iax/iax"
)

// SaveIndex saves the index as a CSV file with a plain "ref,par" header
// and one row per key, in order.
func (d *Dir) SaveIndex(name string, index []iax.Key) error {
	dt := &etable.Table{}
	dt.SetFromSchema(etable.Schema{
		{Name: "ref", Type: etensor.STRING},
		{Name: "par", Type: etensor.STRING},
	}, len(index))
	for i, k := range index {
		dt.SetCellString("ref", i, k.Ref)
		dt.SetCellString("par", i, k.Par)
	}
	fn := d.File(name)
	f, err := os.Create(fn)
	if err != nil {
		return fmt.Errorf("store.SaveIndex: %w", err)
	}
	bw := bufio.NewWriter(f)
	// etable headers carry type prefixes, so the plain header is written here
	bw.WriteString("ref,par\n")
	err = dt.WriteCSV(bw, etable.Comma, etable.NoHeaders)
	if err == nil {
		err = bw.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("store.SaveIndex %s: %w", fn, err)
	}
	return nil
}

// LoadIndex loads an index saved by SaveIndex (or any CSV file
// with "ref" and "par" columns).
func (d *Dir) LoadIndex(name string) ([]iax.Key, error) {
	fn := d.File(name)
	dt, st, err := OpenStringTable(fn, "ref", "par")
	if err != nil {
		return nil, err
	}
	index := make([]iax.Key, 0, dt.Rows-st)
	for ri := st; ri < dt.Rows; ri++ {
		index = append(index, iax.Key{Ref: dt.CellString("ref", ri), Par: dt.CellString("par", ri)})
	}
	return index, nil
}

// LoadConnections loads the connectivity table from a CSV file with
// "ref", "par" and "ri_par" columns, in file order.  Other columns, such
// as a leading unnamed row index, are ignored.  An empty or "nan" ri_par
// (e.g., for the root segment) is read as NaN.
func LoadConnections(fn string) ([]iax.Connection, error) {
	dt, st, err := OpenStringTable(fn, "ref", "par", "ri_par")
	if err != nil {
		return nil, err
	}
	cons := make([]iax.Connection, 0, dt.Rows-st)
	for ri := st; ri < dt.Rows; ri++ {
		rs := strings.TrimSpace(dt.CellString("ri_par", ri))
		ri64 := math.NaN()
		if rs != "" && !strings.EqualFold(rs, "nan") {
			ri64, err = strconv.ParseFloat(rs, 64)
			if err != nil {
				return nil, fmt.Errorf("store.LoadConnections %s: row %d: ri_par: %w", fn, ri-st, err)
			}
		}
		cons = append(cons, iax.Connection{Ref: dt.CellString("ref", ri), Par: dt.CellString("par", ri), RiPar: ri64})
	}
	return cons, nil
}

// LoadSegments loads the segment labels of the membrane potential traces
// from a CSV file with a "segment" column, one row per trace.
func LoadSegments(fn string) ([]string, error) {
	dt, st, err := OpenStringTable(fn, "segment")
	if err != nil {
		return nil, err
	}
	segs := make([]string, 0, dt.Rows-st)
	for ri := st; ri < dt.Rows; ri++ {
		segs = append(segs, dt.CellString("segment", ri))
	}
	return segs, nil
}

// OpenStringTable opens a CSV file with a plain header row as a table of
// string columns named by the header, checking that the required columns
// are present.  Returns the table and the first data row: string columns
// keep values such as "soma(0.5)" or an empty parent exactly as written,
// independent of any type inference from the data.
func OpenStringTable(fn string, required ...string) (*etable.Table, int, error) {
	b, err := os.ReadFile(fn)
	if err != nil {
		return nil, 0, fmt.Errorf("store: %w", err)
	}
	hdrs, err := csv.NewReader(bytes.NewReader(b)).Read()
	if err != nil {
		return nil, 0, fmt.Errorf("store: %s: reading header: %w", fn, err)
	}
	has := make(map[string]bool, len(hdrs))
	sc := make(etable.Schema, len(hdrs))
	for i, h := range hdrs {
		h = strings.TrimSpace(h)
		hdrs[i] = h
		has[h] = true
		sc[i] = etable.Column{Name: h, Type: etensor.STRING}
	}
	for _, rq := range required {
		if !has[rq] {
			return nil, 0, fmt.Errorf("store: %s: missing column %q in header %v", fn, rq, hdrs)
		}
	}
	dt := &etable.Table{}
	dt.SetFromSchema(sc, 0)
	if err := dt.ReadCSV(bytes.NewReader(b), etable.Comma); err != nil {
		return nil, 0, fmt.Errorf("store: %s: %w", fn, err)
	}
	st := 0
	if len(required) > 0 && dt.Rows > 0 && strings.TrimSpace(dt.CellString(required[0], 0)) == required[0] {
		st = 1 // header row read as data
	}
	return dt, st, nil
}
