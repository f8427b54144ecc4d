// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/seq/linear"
	"github.com/biogo/hts/fai"
	"github.com/klauspost/pgzip"

	"github.com/kortschak/ff2gff3/embl"
)

// openInput returns a reader for the named file, or stdin if path is
// empty. Files with a .gz suffix are decompressed.
func openInput(path string) (io.ReadCloser, error) {
	if path == "" {
		return ioutil.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	z, err := pgzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return gzipFile{Reader: z, f: f}, nil
}

type gzipFile struct {
	*pgzip.Reader
	f *os.File
}

func (z gzipFile) Close() error {
	err := z.Reader.Close()
	ferr := z.f.Close()
	if err != nil {
		return err
	}
	return ferr
}

// reference is an indexed FASTA file.
type reference struct {
	f   *os.File
	idx fai.Index
	fa  *fai.File
}

func openReference(path string) (*reference, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	idx, err := fai.NewIndex(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to index %s: %w", path, err)
	}
	return &reference{f: f, idx: idx, fa: fai.NewFile(f, idx)}, nil
}

// seq returns the complete named sequence.
func (r *reference) seq(name string) ([]byte, bool, error) {
	rec, ok := r.idx[name]
	if !ok {
		return nil, false, nil
	}
	s, err := r.fa.SeqRange(name, 0, rec.Length)
	if err != nil {
		return nil, true, err
	}
	b, err := ioutil.ReadAll(s)
	return b, true, err
}

func (r *reference) Close() error { return r.f.Close() }

var errNoSequence = errors.New("no sequence")

// sequenceFor returns the sequence of e. If ref is not nil the sequence
// is taken from ref, looked up by the versioned accession and then by
// the accession without version. Otherwise the entry's SQ block is used.
func sequenceFor(e *embl.Entry, ref *reference) (*linear.Seq, error) {
	id := e.Accession
	var b []byte
	if ref != nil {
		names := []string{id}
		if i := strings.LastIndexByte(id, '.'); i > 0 {
			names = append(names, id[:i])
		}
		for _, name := range names {
			s, ok, err := ref.seq(name)
			if err != nil {
				return nil, err
			}
			if ok {
				b = s
				break
			}
		}
	} else {
		b = e.Sequence.Bases
	}
	if len(b) == 0 {
		return nil, errNoSequence
	}
	return linear.NewSeq(id, alphabet.BytesToLetters(b), alphabet.DNAredundant), nil
}
