// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package embl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ParseLocation parses an INSDC feature location.
//
// Remote spans (ACC:a..b) are accepted but do not contribute to the extent
// of the location. A location is complemented when all of its local spans
// are on the complement strand. Partiality is reported relative to the
// feature's orientation, so a '>' on the highest position of a complemented
// location marks the 5' end.
func ParseLocation(s string) (Location, error) {
	p := locParser{s: s}
	err := p.location(false)
	if err != nil {
		return Location{}, fmt.Errorf("invalid location %q: %w", s, err)
	}
	p.skipSpace()
	if p.pos != len(p.s) {
		return Location{}, fmt.Errorf("invalid location %q: trailing text at %d", s, p.pos)
	}

	loc := Location{Text: s, Complement: true}
	var (
		local             int
		lowPart, highPart bool
	)
	for _, sp := range p.spans {
		if sp.remote {
			continue
		}
		if local == 0 || sp.lo < loc.Min {
			loc.Min = sp.lo
			lowPart = sp.lowPartial
		} else if sp.lo == loc.Min {
			lowPart = lowPart || sp.lowPartial
		}
		if local == 0 || sp.hi > loc.Max {
			loc.Max = sp.hi
			highPart = sp.highPartial
		} else if sp.hi == loc.Max {
			highPart = highPart || sp.highPartial
		}
		loc.Complement = loc.Complement && sp.complement
		local++
	}
	if local == 0 {
		return Location{}, fmt.Errorf("invalid location %q: no local span", s)
	}
	if loc.Complement {
		loc.FivePrimePartial, loc.ThreePrimePartial = highPart, lowPart
	} else {
		loc.FivePrimePartial, loc.ThreePrimePartial = lowPart, highPart
	}
	return loc, nil
}

// span is a single contiguous interval of a location.
type span struct {
	lo, hi int

	lowPartial  bool
	highPartial bool
	complement  bool
	remote      bool
}

type locParser struct {
	s     string
	pos   int
	spans []span
}

var errUnexpectedEnd = errors.New("unexpected end of location")

func (p *locParser) skipSpace() {
	for p.pos < len(p.s) && (p.s[p.pos] == ' ' || p.s[p.pos] == '\t') {
		p.pos++
	}
}

func (p *locParser) location(comp bool) error {
	p.skipSpace()
	for _, op := range []string{"complement", "join", "order"} {
		if !strings.HasPrefix(p.s[p.pos:], op+"(") {
			continue
		}
		p.pos += len(op) + 1
		inner := comp
		if op == "complement" {
			inner = !comp
		}
		for {
			err := p.location(inner)
			if err != nil {
				return err
			}
			p.skipSpace()
			if p.pos >= len(p.s) {
				return errUnexpectedEnd
			}
			switch p.s[p.pos] {
			case ',':
				if op == "complement" {
					return fmt.Errorf("unexpected ',' in complement at %d", p.pos)
				}
				p.pos++
				continue
			case ')':
				p.pos++
				return nil
			default:
				return fmt.Errorf("unexpected %q at %d", p.s[p.pos], p.pos)
			}
		}
	}
	return p.span(comp)
}

func (p *locParser) span(comp bool) error {
	sp := span{complement: comp}
	// Remote references carry an accession before a colon.
	end := strings.IndexAny(p.s[p.pos:], ",)")
	if end < 0 {
		end = len(p.s) - p.pos
	}
	if i := strings.IndexByte(p.s[p.pos:p.pos+end], ':'); i >= 0 {
		sp.remote = true
		p.pos += i + 1
	}

	lo, less, greater, err := p.position()
	if err != nil {
		return err
	}
	sp.lo, sp.hi = lo, lo
	sp.lowPartial = less
	sp.highPartial = greater
	switch {
	case strings.HasPrefix(p.s[p.pos:], ".."):
		p.pos += 2
	case strings.HasPrefix(p.s[p.pos:], "^"), strings.HasPrefix(p.s[p.pos:], "."):
		p.pos++
	default:
		p.spans = append(p.spans, sp)
		return nil
	}
	hi, less, greater, err := p.position()
	if err != nil {
		return err
	}
	if hi < lo {
		return fmt.Errorf("span end %d before start %d", hi, lo)
	}
	sp.hi = hi
	sp.lowPartial = sp.lowPartial || less
	sp.highPartial = sp.highPartial || greater
	p.spans = append(p.spans, sp)
	return nil
}

func (p *locParser) position() (n int, less, greater bool, err error) {
	p.skipSpace()
	if p.pos >= len(p.s) {
		return 0, false, false, errUnexpectedEnd
	}
	switch p.s[p.pos] {
	case '<':
		less = true
		p.pos++
	case '>':
		greater = true
		p.pos++
	}
	start := p.pos
	for p.pos < len(p.s) && '0' <= p.s[p.pos] && p.s[p.pos] <= '9' {
		p.pos++
	}
	if start == p.pos {
		return 0, false, false, fmt.Errorf("expected position at %d", start)
	}
	n, err = strconv.Atoi(p.s[start:p.pos])
	return n, less, greater, err
}
