// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package convert

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kortschak/ff2gff3/rules"
)

var (
	// ErrNoSourcePresent is returned when an entry has no source feature.
	ErrNoSourcePresent = errors.New("no source feature present")

	// ErrMalformedQualifier is returned when a qualifier value
	// cannot be interpreted.
	ErrMalformedQualifier = errors.New("malformed qualifier")
)

// Kind is the class of a conversion failure.
type Kind int

const (
	Unknown Kind = iota
	NoSourcePresent
	UnknownFeatureType
	UnmappedFeature
	MalformedQualifier
)

func (k Kind) String() string {
	switch k {
	case NoSourcePresent:
		return "no source present"
	case UnknownFeatureType:
		return "unknown feature type"
	case UnmappedFeature:
		return "unmapped feature"
	case MalformedQualifier:
		return "malformed qualifier"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// kindOf returns the Kind corresponding to the cause err.
func kindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrNoSourcePresent):
		return NoSourcePresent
	case errors.Is(err, rules.ErrUnknownFeatureType):
		return UnknownFeatureType
	case errors.Is(err, rules.ErrUnmappedFeature):
		return UnmappedFeature
	case errors.Is(err, ErrMalformedQualifier):
		return MalformedQualifier
	default:
		return Unknown
	}
}

// Error is the error returned by a failed conversion. Every failure of
// Convert and SourceMetadata is an *Error wrapping the original cause.
type Error struct {
	Kind Kind

	// Accession is the accession of the entry
	// being converted.
	Accession string

	// Feature and Location identify the feature
	// that failed conversion, if any.
	Feature  string
	Location string

	Err error
}

func newError(acc string, feat, loc string, err error) *Error {
	return &Error{Kind: kindOf(err), Accession: acc, Feature: feat, Location: loc, Err: err}
}

func (e *Error) Error() string {
	var buf strings.Builder
	buf.WriteString("conversion error: ")
	buf.WriteString(e.Accession)
	if e.Feature != "" {
		fmt.Fprintf(&buf, ": %s", e.Feature)
		if e.Location != "" {
			fmt.Fprintf(&buf, " at %s", e.Location)
		}
	}
	fmt.Fprintf(&buf, ": %v", e.Err)
	return buf.String()
}

func (e *Error) Unwrap() error { return e.Err }
