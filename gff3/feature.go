// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gff3 provides GFF3 feature types, gene grouping and a GFF3 writer.
package gff3

import (
	"github.com/biogo/biogo/feat"
	"github.com/biogo/biogo/io/featio/gff"
	"github.com/biogo/biogo/seq"
)

// Feature is a single GFF3 feature line.
//
// FeatStart and FeatEnd follow the biogo convention of zero-based
// half-open coordinates; they are written as one-based closed
// coordinates.
type Feature struct {
	SeqID  string
	Source string
	Type   string

	FeatStart int
	FeatEnd   int

	Score  string
	Strand seq.Strand
	Phase  string

	Attributes Attributes
}

var _ feat.Feature = (*Feature)(nil)

func (f *Feature) Start() int             { return f.FeatStart }
func (f *Feature) End() int               { return f.FeatEnd }
func (f *Feature) Len() int               { return f.FeatEnd - f.FeatStart }
func (f *Feature) Description() string    { return f.Type }
func (f *Feature) Location() feat.Feature { return nil }

// Name returns the ID attribute of the feature if it has one, and
// the feature type otherwise.
func (f *Feature) Name() string {
	if id := f.Attributes.Get("ID"); id != "" {
		return id
	}
	return f.Type
}

// Orientation returns the feature's orientation.
func (f *Feature) Orientation() feat.Orientation { return feat.Orientation(f.Strand) }

// Attributes is an ordered set of GFF3 attributes with unique tags.
type Attributes []gff.Attribute

// Get returns the value of the attribute with the given tag, or the
// empty string if it is not present.
func (a Attributes) Get(tag string) string {
	v, _ := a.Lookup(tag)
	return v
}

// Lookup returns the value of the attribute with the given tag and
// whether it is present.
func (a Attributes) Lookup(tag string) (string, bool) {
	for _, t := range a {
		if t.Tag == tag {
			return t.Value, true
		}
	}
	return "", false
}

// Set sets the value of the attribute with the given tag. An existing
// attribute keeps its position; a new attribute is appended.
func (a *Attributes) Set(tag, value string) {
	for i, t := range *a {
		if t.Tag == tag {
			(*a)[i].Value = value
			return
		}
	}
	*a = append(*a, gff.Attribute{Tag: tag, Value: value})
}

// Delete removes the attribute with the given tag.
func (a *Attributes) Delete(tag string) {
	for i, t := range *a {
		if t.Tag == tag {
			*a = append((*a)[:i], (*a)[i+1:]...)
			return
		}
	}
}
