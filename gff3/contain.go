// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gff3

import (
	"github.com/biogo/store/interval"
)

// Uncontained returns the child features in g that are not completely
// contained by the root feature of their group. The first feature of
// each group is taken to be its root, so g should have had its
// hierarchy resolved.
func Uncontained(g *Groups) ([]*Feature, error) {
	var tree interval.IntTree
	for i, gene := range g.Genes() {
		feats := g.Features(gene)
		if len(feats) < 2 {
			continue
		}
		err := tree.Insert(rootInterval{uid: uintptr(i), Feature: feats[0]}, true)
		if err != nil {
			return nil, err
		}
	}
	tree.AdjustRanges()

	var bad []*Feature
	for _, gene := range g.Genes() {
		feats := g.Features(gene)
		if len(feats) < 2 {
			continue
		}
		root := feats[0]
	outer:
		for _, f := range feats[1:] {
			for _, r := range tree.Get(rootInterval{Feature: f}) {
				if r.(rootInterval).Feature == root {
					continue outer
				}
			}
			bad = append(bad, f)
		}
	}
	return bad, nil
}

type rootInterval struct {
	uid uintptr
	*Feature
}

// Overlap returns whether the root range b contains the query feature.
func (i rootInterval) Overlap(b interval.IntRange) bool {
	return b.Start <= i.FeatStart && i.FeatEnd <= b.End
}
func (i rootInterval) ID() uintptr { return i.uid }
func (i rootInterval) Range() interval.IntRange {
	return interval.IntRange{Start: i.FeatStart, End: i.FeatEnd}
}
