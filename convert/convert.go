// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package convert converts EMBL feature tables into GFF3 features
// grouped by gene.
//
// Each non-source feature of an entry must be mapped by the rule table,
// otherwise the whole entry fails conversion. Features are then copied
// once for each gene they are annotated with and the copies belonging
// to a gene are linked into a hierarchy: the earliest starting, longest
// feature of the gene is the root, holding an ID attribute, and every
// other feature of the gene refers to it with a Parent attribute.
package convert

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/biogo/biogo/seq"

	"github.com/kortschak/ff2gff3/embl"
	"github.com/kortschak/ff2gff3/gff3"
	"github.com/kortschak/ff2gff3/rules"
)

// Converter converts EMBL entries to grouped GFF3 features. A Converter
// holds no state between conversions and may be used concurrently.
type Converter struct {
	// Rules is the feature mapping table. If nil,
	// rules.Default() is used.
	Rules *rules.Table

	// SingleEndPartial specifies that features that are
	// partial at only one end are given a partial attribute.
	// By default only features partial at both ends are.
	SingleEndPartial bool

	// MappedType specifies that the SO type of the matching
	// rule is used as the GFF3 type instead of the EMBL key.
	MappedType bool
}

// Convert converts the features of e into GFF3 features grouped by gene.
//
// Convert appends the version suffix ".1" to the primary and sequence
// accessions of e before conversion; the suffixed accession is used as
// the sequence ID of the returned features. Source features are not
// included in the output and features without a gene qualifier are
// checked against the rule table but otherwise dropped.
//
// Any error returned is an *Error.
func (c *Converter) Convert(e *embl.Entry) (*gff3.Groups, error) {
	e.Accession += ".1"
	e.Sequence.Accession += ".1"

	feats := make([]*embl.Feature, 0, len(e.Features))
	for _, f := range e.Features {
		if f.IsSource() {
			continue
		}
		feats = append(feats, f)
	}
	sort.Stable(byMin(feats))

	g, err := c.group(e.Accession, feats)
	if err != nil {
		return nil, err
	}
	resolve(g)
	return g, nil
}

func (c *Converter) table() *rules.Table {
	if c.Rules == nil {
		return rules.Default()
	}
	return c.Rules
}

// group classifies each feature and adds a copy of it to the group
// of each gene it refers to.
func (c *Converter) group(acc string, feats []*embl.Feature) (*gff3.Groups, error) {
	tab := c.table()
	var g gff3.Groups
	for _, f := range feats {
		r, err := tab.Classify(f)
		if err != nil {
			return nil, newError(acc, f.Key, f.Location.Text, err)
		}
		for _, gene := range f.QualifiersNamed("gene") {
			gf, err := c.feature(acc, f, r, gene.Value)
			if err != nil {
				return nil, newError(acc, f.Key, f.Location.Text, err)
			}
			g.Add(gene.Value, gf)
		}
	}
	return &g, nil
}

// feature returns the GFF3 feature for f associated with gene.
func (c *Converter) feature(acc string, f *embl.Feature, r rules.Rule, gene string) (*gff3.Feature, error) {
	var attr gff3.Attributes
	for _, q := range f.Qualifiers {
		// Genes are added individually so that
		// overlapping genes are kept distinct.
		if q.Name == "gene" {
			continue
		}
		attr.Set(q.Name, q.Value)
	}
	attr.Set("gene", gene)
	if p := partiality(f.Location, c.SingleEndPartial); p != "" {
		attr.Set("partial", p)
	}

	ph, err := phase(f)
	if err != nil {
		return nil, err
	}

	typ := f.Key
	if c.MappedType {
		typ = r.Type
	}
	return &gff3.Feature{
		SeqID:      acc,
		Source:     ".",
		Type:       typ,
		FeatStart:  f.Location.Min - 1, // Use zero-based indexing internally.
		FeatEnd:    f.Location.Max,
		Score:      ".",
		Strand:     strand(f.Location),
		Phase:      ph,
		Attributes: attr,
	}, nil
}

// partiality returns the partial attribute value for loc. Unless
// singleEnd is true, an empty string is returned for locations that
// are partial at only one end.
func partiality(loc embl.Location, singleEnd bool) string {
	var ends []string
	if loc.FivePrimePartial {
		ends = append(ends, "start")
	}
	if loc.ThreePrimePartial {
		ends = append(ends, "end")
	}
	if len(ends) > 1 || (singleEnd && len(ends) == 1) {
		return strings.Join(ends, ",")
	}
	return ""
}

func strand(loc embl.Location) seq.Strand {
	if loc.Complement {
		return seq.Minus
	}
	return seq.Plus
}

// phase returns the phase of f. An explicit phase qualifier takes
// precedence. Otherwise CDS features have their phase derived from
// codon_start, defaulting to zero, and all other features have no phase.
func phase(f *embl.Feature) (string, error) {
	if q, ok := f.FirstFold("phase"); ok {
		return q.Value, nil
	}
	if !strings.EqualFold(f.Key, "CDS") {
		return ".", nil
	}
	q, ok := f.FirstFold("codon_start")
	if !ok {
		return "0", nil
	}
	n, err := strconv.ParseInt(q.Value, 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrMalformedQualifier, q, err)
	}
	return strconv.FormatInt(n-1, 10), nil
}

// resolve orders each gene group and links its features into a
// hierarchy rooted at the first feature.
func resolve(g *gff3.Groups) {
	for _, gene := range g.Genes() {
		feats := g.Features(gene)
		sort.Stable(byStartLongestFirst(feats))

		root := feats[0]
		id := root.Type + "_" + gene
		root.Attributes.Delete("Parent")
		root.Attributes.Set("ID", id)
		for _, f := range feats[1:] {
			f.Attributes.Delete("ID")
			f.Attributes.Set("Parent", id)
			f.Attributes.Delete("gene")
		}
	}
}

// byMin satisfies the sort.Interface, ordering features by
// their lowest position.
type byMin []*embl.Feature

func (f byMin) Len() int           { return len(f) }
func (f byMin) Less(i, j int) bool { return f[i].Location.Min < f[j].Location.Min }
func (f byMin) Swap(i, j int)      { f[i], f[j] = f[j], f[i] }

// byStartLongestFirst satisfies the sort.Interface, ordering features
// by start position with longer features first.
type byStartLongestFirst []*gff3.Feature

func (f byStartLongestFirst) Len() int { return len(f) }
func (f byStartLongestFirst) Less(i, j int) bool {
	if f[i].FeatStart != f[j].FeatStart {
		return f[i].FeatStart < f[j].FeatStart
	}
	return f[i].FeatEnd > f[j].FeatEnd
}
func (f byStartLongestFirst) Swap(i, j int) { f[i], f[j] = f[j], f[i] }
