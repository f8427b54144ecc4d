// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package embl provides a minimal model of EMBL flat-file entries and a
// reader for the parts of the format needed for feature conversion.
package embl

import "strings"

// Entry is a single EMBL record.
type Entry struct {
	// Accession is the primary accession of the entry.
	Accession string

	Sequence Sequence

	// Features holds the feature table in file order.
	Features []*Feature
}

// Sequence is the sequence of an entry.
type Sequence struct {
	Accession string
	Version   int
	Length    int

	// Bases is nil when the entry has no SQ block.
	Bases []byte
}

// SourceFeature returns the first feature with the key "source",
// or nil if there is none.
func (e *Entry) SourceFeature() *Feature {
	for _, f := range e.Features {
		if f.IsSource() {
			return f
		}
	}
	return nil
}

// Feature is an annotated span of an entry's sequence.
type Feature struct {
	Key        string
	Location   Location
	Qualifiers []Qualifier
}

// IsSource returns whether the feature is a source feature.
func (f *Feature) IsSource() bool {
	return strings.EqualFold(f.Key, "source")
}

// QualifiersNamed returns all qualifiers with the given name in order.
func (f *Feature) QualifiersNamed(name string) []Qualifier {
	var q []Qualifier
	for _, v := range f.Qualifiers {
		if v.Name == name {
			q = append(q, v)
		}
	}
	return q
}

// FirstFold returns the first qualifier whose name matches name
// case-insensitively.
func (f *Feature) FirstFold(name string) (Qualifier, bool) {
	for _, v := range f.Qualifiers {
		if strings.EqualFold(v.Name, name) {
			return v, true
		}
	}
	return Qualifier{}, false
}

// Qualifier is a feature annotation.
type Qualifier struct {
	Name  string
	Value string
}

// String returns the qualifier in "/name=value" form.
func (q Qualifier) String() string {
	return "/" + q.Name + "=" + q.Value
}

// Location is the extent of a feature. Positions are 1-based and inclusive.
type Location struct {
	Min, Max int

	Complement bool

	// FivePrimePartial and ThreePrimePartial indicate that
	// the feature extends beyond the given 5' or 3' end.
	FivePrimePartial  bool
	ThreePrimePartial bool

	// Text is the location as written in the feature table.
	Text string
}
