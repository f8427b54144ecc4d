// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package store

import (
	"encoding/json"
	"io"
	"path/filepath"
	"sort"
	"testing"

	"github.com/biogo/biogo/seq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kortschak/ff2gff3/gff3"
)

func TestFeatureKey(t *testing.T) {
	k := FeatureKey{SeqID: "X56734.1", Gene: "xyz", Start: 9, End: 500, Type: "gene", Index: 3}
	assert.Equal(t, k, UnmarshalFeatureKey(MarshalFeatureKey(k)))
}

func TestByGenePosition(t *testing.T) {
	want := []FeatureKey{
		{SeqID: "A.1", Gene: "a", Start: 0, End: 100, Type: "gene"},
		{SeqID: "A.1", Gene: "a", Start: 0, End: 50, Type: "mRNA", Index: 1},
		{SeqID: "A.1", Gene: "a", Start: 10, End: 40, Type: "CDS", Index: 2},
		{SeqID: "A.1", Gene: "a", Start: 10, End: 40, Type: "exon", Index: 3},
		{SeqID: "A.1", Gene: "a", Start: 10, End: 40, Type: "exon", Index: 4},
		{SeqID: "A.1", Gene: "b", Start: 0, End: 10, Type: "gene"},
		{SeqID: "B.1", Gene: "a", Start: 0, End: 10, Type: "gene"},
	}
	keys := make([][]byte, len(want))
	for i, k := range want {
		keys[len(want)-1-i] = MarshalFeatureKey(k)
	}
	sort.Slice(keys, func(i, j int) bool { return ByGenePosition(keys[i], keys[j]) < 0 })

	got := make([]FeatureKey, len(keys))
	for i, k := range keys {
		got[i] = UnmarshalFeatureKey(k)
	}
	assert.Equal(t, want, got)
	assert.Equal(t, 0, ByGenePosition(keys[0], MarshalFeatureKey(want[0])))
}

func TestPut(t *testing.T) {
	var g gff3.Groups
	g.Add("xyz", &gff3.Feature{
		SeqID: "X56734.1", Source: ".", Type: "gene", FeatStart: 9, FeatEnd: 500,
		Score: ".", Strand: seq.Plus, Phase: ".",
		Attributes: gff3.Attributes{{Tag: "ID", Value: "gene_xyz"}},
	})
	g.Add("xyz", &gff3.Feature{
		SeqID: "X56734.1", Source: ".", Type: "CDS", FeatStart: 49, FeatEnd: 120,
		Score: ".", Strand: seq.Minus, Phase: "0",
		Attributes: gff3.Attributes{{Tag: "Parent", Value: "gene_xyz"}},
	})

	path := filepath.Join(t.TempDir(), "features.db")
	db, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, Put(db, &g))
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	it, err := db.SeekFirst()
	require.NoError(t, err)
	var got []Record
	for {
		k, v, err := it.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		assert.Equal(t, "xyz", UnmarshalFeatureKey(k).Gene)
		var r Record
		require.NoError(t, json.Unmarshal(v, &r))
		got = append(got, r)
	}
	assert.Equal(t, []Record{
		{
			SeqID: "X56734.1", Source: ".", Type: "gene", Start: 10, End: 500,
			Score: ".", Strand: "+", Phase: ".",
			Attributes: map[string]string{"ID": "gene_xyz"},
		},
		{
			SeqID: "X56734.1", Source: ".", Type: "CDS", Start: 50, End: 120,
			Score: ".", Strand: "-", Phase: "0",
			Attributes: map[string]string{"Parent": "gene_xyz"},
		},
	}, got)
}
