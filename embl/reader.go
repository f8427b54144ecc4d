// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package embl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Reader reads EMBL entries from an io.Reader. Only the ID, AC, FT and
// SQ line types are interpreted; all other lines are skipped.
type Reader struct {
	sc   *bufio.Scanner
	line int
}

// NewReader returns a new Reader reading from r.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 1<<20)
	return &Reader{sc: sc}
}

// Read returns the next entry. At the end of the input Read returns
// nil and io.EOF.
func (r *Reader) Read() (*Entry, error) {
	var (
		e     *Entry
		b     builder
		inSeq bool
		ac    bool
	)
	for r.sc.Scan() {
		r.line++
		line := r.sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if e == nil {
			e = &Entry{}
		}

		code := line
		if len(code) > 2 {
			code = line[:2]
		}
		var body string
		if len(line) > 5 {
			body = line[5:]
		}
		if code != "FT" {
			err := b.finish()
			if err != nil {
				return nil, err
			}
			e.Features = append(e.Features, b.feats...)
			b.feats = nil
		}

		switch code {
		case "ID":
			err := parseID(e, body)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", r.line, err)
			}
		case "AC":
			if ac {
				continue
			}
			f := strings.Fields(strings.ReplaceAll(body, ";", " "))
			if len(f) != 0 {
				e.Accession = f[0]
				ac = true
			}
		case "FT":
			err := b.add(body, r.line)
			if err != nil {
				return nil, err
			}
		case "SQ":
			inSeq = true
		case "  ":
			if !inSeq {
				continue
			}
			f := strings.Fields(line)
			for i, s := range f {
				if i == len(f)-1 {
					if _, err := strconv.Atoi(s); err == nil {
						break
					}
				}
				e.Sequence.Bases = append(e.Sequence.Bases, s...)
			}
		case "//":
			if e.Sequence.Length == 0 {
				e.Sequence.Length = len(e.Sequence.Bases)
			}
			return e, nil
		}
	}
	err := r.sc.Err()
	if err != nil {
		return nil, err
	}
	if e != nil {
		return nil, fmt.Errorf("line %d: %w", r.line, io.ErrUnexpectedEOF)
	}
	return nil, io.EOF
}

func parseID(e *Entry, body string) error {
	parts := strings.Split(body, ";")
	f := strings.Fields(parts[0])
	if len(f) == 0 {
		return errors.New("missing accession in ID line")
	}
	e.Sequence.Accession = f[0]
	if e.Accession == "" {
		e.Accession = f[0]
	}
	for _, p := range parts[1:] {
		p = strings.TrimSpace(p)
		switch {
		case strings.HasPrefix(p, "SV "):
			v, err := strconv.Atoi(strings.TrimSpace(p[3:]))
			if err != nil {
				return fmt.Errorf("invalid sequence version: %w", err)
			}
			e.Sequence.Version = v
		case strings.HasSuffix(p, "BP."):
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(p, "BP.")))
			if err != nil {
				return fmt.Errorf("invalid sequence length: %w", err)
			}
			e.Sequence.Length = n
		}
	}
	return nil
}

// builder accumulates the lines of a feature table.
type builder struct {
	feats []*Feature

	feat  *Feature
	loc   strings.Builder
	start int

	// open is true while a quoted qualifier
	// value continues onto following lines.
	open bool
}

func (b *builder) add(body string, line int) error {
	if body != "" && body[0] != ' ' {
		err := b.finish()
		if err != nil {
			return err
		}
		key := strings.Fields(body)[0]
		b.feat = &Feature{Key: key}
		b.loc.WriteString(strings.TrimSpace(body[len(key):]))
		b.start = line
		return nil
	}
	if b.feat == nil {
		// Feature table header.
		return nil
	}

	text := strings.TrimSpace(body)
	n := len(b.feat.Qualifiers)
	switch {
	case b.open:
		q := &b.feat.Qualifiers[n-1]
		if q.Name == "translation" {
			q.Value += text
		} else {
			q.Value += " " + text
		}
		b.open = !closed(q.Value)
	case strings.HasPrefix(text, "/"):
		name, value, hasValue := strings.Cut(text[1:], "=")
		b.feat.Qualifiers = append(b.feat.Qualifiers, Qualifier{Name: name, Value: value})
		b.open = hasValue && strings.HasPrefix(value, `"`) && !closed(value)
	case n == 0:
		b.loc.WriteString(text)
	default:
		b.feat.Qualifiers[n-1].Value += " " + text
	}
	return nil
}

// finish completes the pending feature.
func (b *builder) finish() error {
	if b.feat == nil {
		return nil
	}
	if b.open {
		return fmt.Errorf("line %d: unterminated qualifier value in %s feature", b.start, b.feat.Key)
	}
	loc, err := ParseLocation(b.loc.String())
	if err != nil {
		return fmt.Errorf("line %d: %w", b.start, err)
	}
	b.feat.Location = loc
	for i, q := range b.feat.Qualifiers {
		b.feat.Qualifiers[i].Value = unquote(q.Value)
	}
	b.feats = append(b.feats, b.feat)
	b.feat = nil
	b.loc.Reset()
	return nil
}

// closed returns whether the quoted qualifier value v has its closing quote.
// Embedded quotes are escaped by doubling.
func closed(v string) bool {
	if len(v) < 2 || !strings.HasPrefix(v, `"`) {
		return false
	}
	n := 0
	for i := len(v) - 1; i > 0 && v[i] == '"'; i-- {
		n++
	}
	return n%2 == 1
}

func unquote(v string) string {
	if len(v) < 2 || v[0] != '"' || v[len(v)-1] != '"' {
		return v
	}
	return strings.ReplaceAll(v[1:len(v)-1], `""`, `"`)
}
