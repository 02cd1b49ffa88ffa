// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package iax is the overall repository for computing axial currents from the
membrane potentials recorded in a compartmental neuron simulation, and for
merging the currents of a multi-segment soma into a single soma node.

This top-level of the repository has no functional code -- everything is organized
into the following sub-repositories:

* volt: membrane potential traces, looked up by segment name.

* iax: the axial current between each connected (ref, par) pair of segments,
using Ohm's law on the potential difference and the parent axial resistance,
plus selection of all currents touching a given segment with a consistent sign.

* soma: merges the currents at the soma subsections into one "soma" node,
according to a MergeMap of the soma-incident connections to keep, and processes
all saved time chunks.

* store: the saved index (CSV) and value chunks (numpy .npy), and the
upstream connectivity and potential inputs.

* examples: the two batch programs of the pipeline: axial, then mergesoma.
Both are configured with a config.toml file and / or command-line args.
*/
package iax
