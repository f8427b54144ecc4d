// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config provides configuration loading for ff2gff3.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kortschak/ff2gff3/gff3"
)

// Type values select the GFF3 type column source.
const (
	// RawType uses the EMBL feature key.
	RawType = "raw"
	// MappedType uses the Sequence Ontology term of the matching rule.
	MappedType = "mapped"
)

// Config is the conversion configuration.
type Config struct {
	// GFFVersion is the version written in the
	// ##gff-version directive.
	GFFVersion string `yaml:"gff_version"`

	// Type is RawType or MappedType.
	Type string `yaml:"type"`

	Partial PartialConfig `yaml:"partial"`

	// Rules is the path to a feature mapping TSV file.
	// The built-in table is used if empty.
	Rules string `yaml:"rules"`

	// Species specifies whether ##species directives
	// are written.
	Species bool `yaml:"species"`

	// FASTA specifies whether a ##FASTA section holding
	// the entry sequences is written.
	FASTA bool `yaml:"fasta"`
}

// PartialConfig configures partial attribute output.
type PartialConfig struct {
	// SingleEnd specifies that features partial at only
	// one end are marked partial.
	SingleEnd bool `yaml:"single_end"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		GFFVersion: gff3.DefaultVersion,
		Type:       RawType,
		Species:    true,
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.GFFVersion == "" {
		return fmt.Errorf("gff_version is required")
	}
	switch c.Type {
	case RawType, MappedType:
	default:
		return fmt.Errorf("type must be %q or %q: got %q", RawType, MappedType, c.Type)
	}
	if c.Rules != "" {
		if _, err := os.Stat(c.Rules); err != nil {
			return fmt.Errorf("rules: %w", err)
		}
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file. Fields not set
// in the file retain their default values.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	c := DefaultConfig()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return c, nil
}
