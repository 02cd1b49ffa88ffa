// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package soma merges the axial currents of a soma that is discretized into
several subsections into a single logical soma node.

Each neighbor (dendrite or axon hillock) of the soma connects to exactly one
soma subsection.  A MergeMap lists these (child, subsection) connections:
their currents are kept under the parent label "soma", while the currents
between soma subsections, and all other rows touching a subsection (any
segment name containing "soma"), are dropped.  The merge only depends on the index, so a Plan is computed once
and then applied to every time chunk of the values.
*/
package soma

import (
	"errors"
	"fmt"
	"strings"
)

// Label is the canonical parent label of the merged soma
const Label = "soma"

// Subsections are the soma subsection segments of the reference morphology
var Subsections = []string{"soma(0.166667)", "soma(0.5)", "soma(0.833333)", "soma(1)"}

// Entry is one soma-incident connection to keep: the current from
// soma Subsection into Child.
type Entry struct {

	// child segment connected to the soma, e.g., dend1_0(0.5)
	Child string

	// soma subsection segment the child connects to, e.g., soma(1)
	Subsection string
}

// MergeMap configures a soma merge for a given morphology
type MergeMap struct {

	// canonical parent label for the merged soma
	Label string

	// any row whose ref or par contains Match is removed from the output,
	// other than the relabeled Entries rows.  Empty means Label.
	Match string

	// soma-incident connections to keep, relabeled to (Child, Label), in output order
	Entries []Entry
}

// MatchString returns the substring that marks the rows to remove
func (mm *MergeMap) MatchString() string {
	if mm.Match != "" {
		return mm.Match
	}
	return mm.Label
}

// DefaultMergeMap returns the MergeMap of the reference morphology:
// five dendrites and the axon hillock attached to four soma subsections.
func DefaultMergeMap() *MergeMap {
	return &MergeMap{
		Label: Label,
		Match: Label,
		Entries: []Entry{
			{Child: "dend1_0(0.5)", Subsection: "soma(1)"},
			{Child: "dend2_0(0.5)", Subsection: "soma(0.833333)"},
			{Child: "dend3_0(0.5)", Subsection: "soma(0.5)"},
			{Child: "dend4_0(0.166667)", Subsection: "soma(1)"},
			{Child: "dend5_0(0.166667)", Subsection: "soma(1)"},
			{Child: "hill(0.166667)", Subsection: "soma(0.5)"},
		},
	}
}

// Validate checks that the merge map is usable
func (mm *MergeMap) Validate() error {
	if mm.Label == "" {
		return errors.New("soma.MergeMap: Label is empty")
	}
	match := mm.MatchString()
	for i, en := range mm.Entries {
		if en.Child == "" || en.Subsection == "" {
			return fmt.Errorf("soma.MergeMap: entry %d has an empty Child or Subsection: %+v", i, en)
		}
		if !strings.Contains(en.Subsection, match) {
			return fmt.Errorf("soma.MergeMap: entry %d Subsection %s does not contain %q, so its subsection rows would be kept", i, en.Subsection, match)
		}
	}
	return nil
}

// MissingRowError is returned when a MergeMap entry has no matching
// (Child, Subsection) row in the index.  The MergeMap does not fit the
// morphology of the data, so there is no sensible recovery.
type MissingRowError struct {
	Child      string
	Subsection string
}

func (e *MissingRowError) Error() string {
	return fmt.Sprintf("soma: no axial current row (%s, %s) for merge map entry", e.Child, e.Subsection)
}
