// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package convert

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/kortschak/ff2gff3/embl"
)

// TaxonomyBrowser is the base URL of the NCBI taxonomy browser.
const TaxonomyBrowser = "https://www.ncbi.nlm.nih.gov/Taxonomy/Browser/wwwtax.cgi"

// Metadata is the organism description of an entry.
type Metadata struct {
	Organism string

	// TaxID is zero if the source feature
	// has no taxon cross-reference.
	TaxID int64

	// TaxonomyURL is empty if the source
	// feature has no organism.
	TaxonomyURL string
}

// SourceMetadata returns the organism metadata held by the first source
// feature of e. The taxonomy URL refers to the taxon identifier given by
// a db_xref="taxon:<id>" qualifier if present, and to the organism name
// otherwise.
//
// Any error returned is an *Error.
func SourceMetadata(e *embl.Entry) (Metadata, error) {
	src := e.SourceFeature()
	if src == nil {
		return Metadata{}, newError(e.Accession, "", "", ErrNoSourcePresent)
	}
	org := src.QualifiersNamed("organism")
	if len(org) == 0 {
		return Metadata{}, nil
	}
	md := Metadata{Organism: org[0].Value}
	for _, x := range src.QualifiersNamed("db_xref") {
		id, ok := cutPrefixFold(x.Value, "taxon:")
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return Metadata{}, newError(e.Accession, src.Key, src.Location.Text, fmt.Errorf("%w: %s: %v", ErrMalformedQualifier, x, err))
		}
		md.TaxID = n
		break
	}
	if md.TaxID != 0 {
		md.TaxonomyURL = fmt.Sprintf("%s?id=%d", TaxonomyBrowser, md.TaxID)
	} else {
		md.TaxonomyURL = fmt.Sprintf("%s?name=%s", TaxonomyBrowser, url.QueryEscape(md.Organism))
	}
	return md, nil
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}
	return s[len(prefix):], true
}
