// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package embl

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoEntries = `ID   X56734; SV 1; linear; mRNA; STD; PLN; 120 BP.
XX
AC   X56734; S46826;
AC   S99999;
XX
DE   Trifolium repens mRNA for non-cyanogenic beta-glucosidase
XX
FH   Key             Location/Qualifiers
FH
FT   source          1..120
FT                   /organism="Trifolium repens"
FT                   /mol_type="mRNA"
FT                   /db_xref="taxon:3899"
FT   gene            <10..>100
FT                   /gene="bgl"
FT   CDS             join(10..40,
FT                   60..100)
FT                   /gene="bgl"
FT                   /codon_start=2
FT                   /note="a ""quoted"" note that runs onto
FT                   a second line"
FT                   /translation="MDFLYGQK
FT                   WLLT"
FT                   /pseudo
XX
SQ   Sequence 120 BP; 30 A; 30 C; 30 G; 30 T; 0 other;
     aaacaaacca atatggatgc attcgcgata gttgatgcga cgaagaaccg agcgacaaaa        60
     aaacaaacca atatggatgc attcgcgata gttgatgcga cgaagaaccg agcgacaaaa       120
//
ID   AB000001; SV 2; circular; genomic DNA; STD; PRO; 50 BP.
FT   source          1..50
FT   rRNA            complement(5..45)
FT                   /gene="rrs"
//
`

func TestReader(t *testing.T) {
	r := NewReader(strings.NewReader(twoEntries))

	e, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, "X56734", e.Accession)
	assert.Equal(t, "X56734", e.Sequence.Accession)
	assert.Equal(t, 1, e.Sequence.Version)
	assert.Equal(t, 120, e.Sequence.Length)
	assert.Len(t, e.Sequence.Bases, 120)
	assert.Equal(t, "aaacaaacca", string(e.Sequence.Bases[:10]))
	require.Len(t, e.Features, 3)

	src := e.SourceFeature()
	require.NotNil(t, src)
	assert.Equal(t, []Qualifier{
		{Name: "organism", Value: "Trifolium repens"},
		{Name: "mol_type", Value: "mRNA"},
		{Name: "db_xref", Value: "taxon:3899"},
	}, src.Qualifiers)

	gene := e.Features[1]
	assert.Equal(t, "gene", gene.Key)
	assert.Equal(t, Location{Min: 10, Max: 100, FivePrimePartial: true, ThreePrimePartial: true, Text: "<10..>100"}, gene.Location)

	cds := e.Features[2]
	assert.Equal(t, "CDS", cds.Key)
	assert.Equal(t, "join(10..40,60..100)", cds.Location.Text)
	assert.Equal(t, 10, cds.Location.Min)
	assert.Equal(t, 100, cds.Location.Max)
	assert.Equal(t, []Qualifier{
		{Name: "gene", Value: "bgl"},
		{Name: "codon_start", Value: "2"},
		{Name: "note", Value: `a "quoted" note that runs onto a second line`},
		{Name: "translation", Value: "MDFLYGQKWLLT"},
		{Name: "pseudo", Value: ""},
	}, cds.Qualifiers)

	q, ok := cds.FirstFold("CODON_START")
	assert.True(t, ok)
	assert.Equal(t, "2", q.Value)
	assert.Len(t, cds.QualifiersNamed("gene"), 1)

	e, err = r.Read()
	require.NoError(t, err)
	assert.Equal(t, "AB000001", e.Accession)
	assert.Equal(t, 2, e.Sequence.Version)
	assert.Equal(t, 50, e.Sequence.Length)
	assert.Nil(t, e.Sequence.Bases)
	require.Len(t, e.Features, 2)
	assert.True(t, e.Features[1].Location.Complement)

	_, err = r.Read()
	assert.Equal(t, io.EOF, err)
}

func TestReaderErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{
			name: "unterminated entry",
			in:   "ID   A1; SV 1; linear; DNA; STD; PRO; 10 BP.\nFT   source          1..10\n",
		},
		{
			name: "bad location",
			in:   "ID   A1; SV 1; linear; DNA; STD; PRO; 10 BP.\nFT   gene            10..1\n//\n",
		},
		{
			name: "unterminated qualifier",
			in:   "ID   A1; SV 1; linear; DNA; STD; PRO; 10 BP.\nFT   gene            1..10\nFT                   /note=\"open\n//\n",
		},
		{
			name: "bad length",
			in:   "ID   A1; SV 1; linear; DNA; STD; PRO; ten BP.\n//\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader(strings.NewReader(tt.in)).Read()
			assert.Error(t, err)
			assert.NotEqual(t, io.EOF, err)
		})
	}
}

func TestQualifierString(t *testing.T) {
	assert.Equal(t, "/gene=abc", Qualifier{Name: "gene", Value: "abc"}.String())
}
