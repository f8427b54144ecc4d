// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package store provides the persisted feature store used by ff2gff3
// and audit-gff3-db.
package store

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"modernc.org/kv"

	"github.com/kortschak/ff2gff3/gff3"
)

// ByGenePosition is a kv compare function, ordering by sequence ID, gene,
// feature start and feature end with longer features first.
func ByGenePosition(x, y []byte) int {
	if bytes.Equal(x, y) {
		return 0
	}

	kx := UnmarshalFeatureKey(x)
	ky := UnmarshalFeatureKey(y)

	// Group features of the same gene.
	switch {
	case kx.SeqID < ky.SeqID:
		return -1
	case kx.SeqID > ky.SeqID:
		return 1
	}
	switch {
	case kx.Gene < ky.Gene:
		return -1
	case kx.Gene > ky.Gene:
		return 1
	}

	// Sort by start position, longer features first.
	switch {
	case kx.Start < ky.Start:
		return -1
	case kx.Start > ky.Start:
		return 1
	}
	switch {
	case kx.End > ky.End:
		return -1
	case kx.End < ky.End:
		return 1
	}

	// Ensure key uniqueness.
	switch {
	case kx.Type < ky.Type:
		return -1
	case kx.Type > ky.Type:
		return 1
	}
	switch {
	case kx.Index < ky.Index:
		return -1
	case kx.Index > ky.Index:
		return 1
	}

	panic("unreachable")
}

// FeatureKey is the key of a stored feature. Start is zero-based
// and End is exclusive. Index is the position of the feature within
// its gene group.
type FeatureKey struct {
	SeqID string
	Gene  string
	Start int64
	End   int64
	Type  string
	Index int64
}

var order = binary.BigEndian

// MarshalFeatureKey returns the kv key encoding of k.
func MarshalFeatureKey(k FeatureKey) []byte {
	var (
		buf bytes.Buffer
		b   [8]byte
	)
	writeString := func(s string) {
		order.PutUint64(b[:], uint64(len(s)))
		buf.Write(b[:])
		buf.WriteString(s)
	}
	writeInt := func(n int64) {
		order.PutUint64(b[:], uint64(n))
		buf.Write(b[:])
	}
	writeString(k.SeqID)
	writeString(k.Gene)
	writeInt(k.Start)
	writeInt(k.End)
	writeString(k.Type)
	writeInt(k.Index)
	return buf.Bytes()
}

// UnmarshalFeatureKey decodes a key encoded by MarshalFeatureKey.
func UnmarshalFeatureKey(data []byte) FeatureKey {
	var k FeatureKey
	n64 := binary.Size(uint64(0))
	readString := func() string {
		n := order.Uint64(data[:n64])
		data = data[n64:]
		s := string(data[:n])
		data = data[n:]
		return s
	}
	readInt := func() int64 {
		n := int64(order.Uint64(data[:n64]))
		data = data[n64:]
		return n
	}
	k.SeqID = readString()
	k.Gene = readString()
	k.Start = readInt()
	k.End = readInt()
	k.Type = readString()
	k.Index = readInt()
	return k
}

// Record is the JSON value of a stored feature. Start is one-based and
// End is inclusive, as written in GFF3.
type Record struct {
	SeqID      string
	Source     string
	Type       string
	Start      int
	End        int
	Score      string
	Strand     string
	Phase      string
	Attributes map[string]string
}

// RecordFor returns the Record for f.
func RecordFor(f *gff3.Feature) Record {
	r := Record{
		SeqID:      f.SeqID,
		Source:     f.Source,
		Type:       f.Type,
		Start:      f.FeatStart + 1,
		End:        f.FeatEnd,
		Score:      f.Score,
		Strand:     gff3.StrandSymbol(f.Strand),
		Phase:      f.Phase,
		Attributes: make(map[string]string, len(f.Attributes)),
	}
	for _, a := range f.Attributes {
		r.Attributes[a.Tag] = a.Value
	}
	return r
}

// Create creates a feature store at path.
func Create(path string) (*kv.DB, error) {
	return kv.Create(path, &kv.Options{Compare: ByGenePosition})
}

// Open opens the feature store at path.
func Open(path string) (*kv.DB, error) {
	return kv.Open(path, &kv.Options{Compare: ByGenePosition})
}

// Put stores every feature in g within a single transaction.
func Put(db *kv.DB, g *gff3.Groups) error {
	err := db.BeginTransaction()
	if err != nil {
		return err
	}
	for _, gene := range g.Genes() {
		for i, f := range g.Features(gene) {
			v, err := json.Marshal(RecordFor(f))
			if err != nil {
				db.Rollback()
				return err
			}
			k := MarshalFeatureKey(FeatureKey{
				SeqID: f.SeqID,
				Gene:  gene,
				Start: int64(f.FeatStart),
				End:   int64(f.FeatEnd),
				Type:  f.Type,
				Index: int64(i),
			})
			err = db.Set(k, v)
			if err != nil {
				db.Rollback()
				return fmt.Errorf("store %s %s: %w", f.SeqID, gene, err)
			}
		}
	}
	return db.Commit()
}
