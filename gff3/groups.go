// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gff3

// Groups holds features grouped by gene name. Genes are kept in the
// order they were first added. The zero value is an empty Groups.
type Groups struct {
	genes  []string
	groups map[string][]*Feature
}

// Add appends f to the group for gene, creating the group if needed.
func (g *Groups) Add(gene string, f *Feature) {
	if g.groups == nil {
		g.groups = make(map[string][]*Feature)
	}
	feats, ok := g.groups[gene]
	if !ok {
		g.genes = append(g.genes, gene)
	}
	g.groups[gene] = append(feats, f)
}

// Len returns the number of gene groups.
func (g *Groups) Len() int { return len(g.genes) }

// Genes returns the gene names in first-added order.
func (g *Groups) Genes() []string { return g.genes }

// Features returns the features of the group for gene. The returned
// slice shares storage with g, so it may be reordered in place.
func (g *Groups) Features(gene string) []*Feature { return g.groups[gene] }

// All returns every feature of every group in group order.
func (g *Groups) All() []*Feature {
	var all []*Feature
	for _, gene := range g.genes {
		all = append(all, g.groups[gene]...)
	}
	return all
}
