// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gff3

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/biogo/biogo/seq"
	"github.com/biogo/biogo/seq/linear"
)

// DefaultVersion is the GFF3 version written by a Writer with no version.
const DefaultVersion = "3.1.26"

// Header holds the per-sequence directives of a GFF3 record.
type Header struct {
	// SeqID, Start and End are written as a
	// ##sequence-region directive.
	SeqID      string
	Start, End int

	// Species is written as a ##species directive
	// if it is not empty.
	Species string
}

// Writer writes GFF3 text. The ##gff-version directive is written
// before the first header or feature.
type Writer struct {
	w       io.Writer
	version string

	started bool
	fasta   bool
}

// NewWriter returns a Writer writing to w. If version is empty,
// DefaultVersion is used.
func NewWriter(w io.Writer, version string) *Writer {
	if version == "" {
		version = DefaultVersion
	}
	return &Writer{w: w, version: version}
}

func (w *Writer) start() error {
	if w.fasta {
		return errors.New("gff3: write after ##FASTA directive")
	}
	if w.started {
		return nil
	}
	w.started = true
	_, err := fmt.Fprintf(w.w, "##gff-version %s\n", w.version)
	return err
}

// WriteHeader writes the directives in h.
func (w *Writer) WriteHeader(h Header) error {
	err := w.start()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w.w, "##sequence-region %s %d %d\n", h.SeqID, h.Start, h.End)
	if err != nil {
		return err
	}
	if h.Species != "" {
		_, err = fmt.Fprintf(w.w, "##species %s\n", h.Species)
	}
	return err
}

// Write writes a single feature line.
func (w *Writer) Write(f *Feature) (n int, err error) {
	err = w.start()
	if err != nil {
		return 0, err
	}
	return fmt.Fprintf(w.w, "%s\t%s\t%s\t%d\t%d\t%s\t%s\t%s\t%s\n",
		f.SeqID,
		orDot(f.Source),
		f.Type,
		f.FeatStart+1, f.FeatEnd,
		orDot(f.Score),
		StrandSymbol(f.Strand),
		orDot(f.Phase),
		formatAttributes(f.Attributes),
	)
}

// WriteGroups writes every feature in g in group order.
func (w *Writer) WriteGroups(g *Groups) error {
	for _, f := range g.All() {
		_, err := w.Write(f)
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteFASTA writes the sequences in a ##FASTA section. No features
// may be written after the section has started.
func (w *Writer) WriteFASTA(seqs ...*linear.Seq) error {
	if !w.fasta {
		err := w.start()
		if err != nil {
			return err
		}
		_, err = io.WriteString(w.w, "##FASTA\n")
		if err != nil {
			return err
		}
		w.fasta = true
	}
	for _, s := range seqs {
		_, err := fmt.Fprintf(w.w, "%60a\n", s)
		if err != nil {
			return err
		}
	}
	return nil
}

func orDot(s string) string {
	if s == "" {
		return "."
	}
	return s
}

// StrandSymbol returns the GFF3 strand column value for s.
func StrandSymbol(s seq.Strand) string {
	switch s {
	case seq.Plus:
		return "+"
	case seq.Minus:
		return "-"
	default:
		return "."
	}
}

// escaper percent-encodes characters reserved by GFF3 in column 9.
var escaper = strings.NewReplacer(
	"%", "%25",
	";", "%3B",
	"=", "%3D",
	"&", "%26",
	",", "%2C",
	"\t", "%09",
	"\n", "%0A",
	"\r", "%0D",
)

// listEscaper is escaper without comma encoding, for the values of
// tags that hold comma-separated lists.
var listEscaper = strings.NewReplacer(
	"%", "%25",
	";", "%3B",
	"=", "%3D",
	"&", "%26",
	"\t", "%09",
	"\n", "%0A",
	"\r", "%0D",
)

// multiValued holds the tags whose values are comma-separated lists.
var multiValued = map[string]bool{
	"Parent":        true,
	"Alias":         true,
	"Note":          true,
	"Dbxref":        true,
	"Ontology_term": true,
	"partial":       true,
}

func formatAttributes(a Attributes) string {
	if len(a) == 0 {
		return "."
	}
	var buf strings.Builder
	for i, t := range a {
		if i != 0 {
			buf.WriteByte(';')
		}
		buf.WriteString(escaper.Replace(t.Tag))
		buf.WriteByte('=')
		if multiValued[t.Tag] {
			buf.WriteString(listEscaper.Replace(t.Value))
		} else {
			buf.WriteString(escaper.Replace(t.Value))
		}
	}
	return buf.String()
}
