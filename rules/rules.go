// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rules provides the mapping from EMBL feature keys to Sequence
// Ontology feature types used when converting feature tables to GFF3.
package rules

import (
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kortschak/ff2gff3/embl"
)

var (
	// ErrUnknownFeatureType is returned when a feature key has
	// no rules in a Table.
	ErrUnknownFeatureType = errors.New("unknown feature type")

	// ErrUnmappedFeature is returned when none of the rules for
	// a feature key match the feature's qualifiers.
	ErrUnmappedFeature = errors.New("unmapped feature")
)

// Rule maps a feature key, conditional on qualifiers, to an SO type.
type Rule struct {
	// Feature is the EMBL feature key.
	Feature string

	// SOID and Type are the Sequence Ontology accession
	// and term of the feature's GFF3 type.
	SOID string
	Type string

	Qualifiers Qualifiers
}

// Qualifiers is the set of qualifier patterns required by a Rule.
// Each pattern has the form "/name=value" and is matched against a
// feature's qualifiers without regard to case. The zero value holds
// no patterns and is satisfied by any feature.
type Qualifiers struct {
	n    int
	pats [2]string
}

// Require returns a Qualifiers holding the given patterns. At most two
// patterns may be given.
func Require(patterns ...string) (Qualifiers, error) {
	var q Qualifiers
	if len(patterns) > len(q.pats) {
		return q, fmt.Errorf("too many qualifier patterns: %d", len(patterns))
	}
	for _, p := range patterns {
		if !strings.HasPrefix(p, "/") || !strings.Contains(p, "=") {
			return Qualifiers{}, fmt.Errorf("invalid qualifier pattern: %q", p)
		}
		q.pats[q.n] = p
		q.n++
	}
	return q, nil
}

// Len returns the number of patterns in q.
func (q Qualifiers) Len() int { return q.n }

// Patterns returns the patterns in q.
func (q Qualifiers) Patterns() []string {
	return append([]string(nil), q.pats[:q.n]...)
}

// MatchedBy returns whether every pattern in q is matched by
// at least one of quals.
func (q Qualifiers) MatchedBy(quals []embl.Qualifier) bool {
outer:
	for _, p := range q.pats[:q.n] {
		for _, v := range quals {
			if strings.EqualFold(v.String(), p) {
				continue outer
			}
		}
		return false
	}
	return true
}

// Table is a set of rules indexed by feature key. Feature keys are
// matched without regard to case. A Table is safe for concurrent use.
type Table struct {
	rules map[string][]Rule
	n     int
}

// NewTable returns a Table holding the given rules. The order of rules
// for each feature key is retained.
func NewTable(rules []Rule) *Table {
	t := &Table{rules: make(map[string][]Rule)}
	for _, r := range rules {
		k := strings.ToLower(r.Feature)
		t.rules[k] = append(t.rules[k], r)
	}
	t.n = len(rules)
	return t
}

// Len returns the number of rules in t.
func (t *Table) Len() int { return t.n }

// RulesFor returns the rules for the feature key in table order.
func (t *Table) RulesFor(key string) ([]Rule, error) {
	r, ok := t.rules[strings.ToLower(key)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFeatureType, key)
	}
	return r, nil
}

// Classify returns the first rule for the feature's key that is
// satisfied by the feature's qualifiers.
func (t *Table) Classify(f *embl.Feature) (Rule, error) {
	rules, err := t.RulesFor(f.Key)
	if err != nil {
		return Rule{}, err
	}
	for _, r := range rules {
		if r.Qualifiers.MatchedBy(f.Qualifiers) {
			return r, nil
		}
	}
	return Rule{}, fmt.Errorf("%w: %s at %s", ErrUnmappedFeature, f.Key, f.Location.Text)
}

//go:embed feature-mapping.tsv
var mapping string

var defaultTable = mustParse(mapping)

func mustParse(s string) *Table {
	t, err := Parse(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return t
}

// Default returns the built-in EMBL to SO mapping table.
func Default() *Table {
	return defaultTable
}

// Load returns a Table read from the tab-separated file at path.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Parse reads a rule table from r. Each non-comment line holds the tab
// separated SO accession, SO term, EMBL feature key and up to two
// qualifier patterns. Lines starting with '#' are ignored.
func Parse(r io.Reader) (*Table, error) {
	// column indices for the mapping table.
	const (
		SOID = iota
		Type
		Feature
		Qualifier1
	)

	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var rules []Rule
	for {
		f, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		if len(f) < Qualifier1 || len(f) > Qualifier1+2 {
			return nil, fmt.Errorf("line %d: unexpected number of fields: %q", line, f)
		}
		for i := range f {
			f[i] = strings.TrimSpace(f[i])
		}
		if f[SOID] == "" || f[Type] == "" || f[Feature] == "" {
			return nil, fmt.Errorf("line %d: empty field: %q", line, f)
		}
		var pats []string
		for _, p := range f[Qualifier1:] {
			if p != "" {
				pats = append(pats, p)
			}
		}
		q, err := Require(pats...)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rules = append(rules, Rule{
			Feature:    f[Feature],
			SOID:       f[SOID],
			Type:       f[Type],
			Qualifiers: q,
		})
	}
	if len(rules) == 0 {
		return nil, errors.New("no rules")
	}
	return NewTable(rules), nil
}
