// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, "3.1.26", c.GFFVersion)
	assert.Equal(t, RawType, c.Type)
	assert.False(t, c.Partial.SingleEnd)
	assert.True(t, c.Species)
	assert.False(t, c.FASTA)
	assert.Empty(t, c.Rules)
	assert.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{name: "mapped type", modify: func(c *Config) { c.Type = MappedType }},
		{name: "bad type", modify: func(c *Config) { c.Type = "so" }, wantErr: true},
		{name: "empty version", modify: func(c *Config) { c.GFFVersion = "" }, wantErr: true},
		{name: "missing rules", modify: func(c *Config) { c.Rules = filepath.Join(t.TempDir(), "none.tsv") }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.modify(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ff2gff3.yaml")
	err := os.WriteFile(path, []byte(`
type: mapped
partial:
  single_end: true
fasta: true
`), 0o644)
	require.NoError(t, err)

	c, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, MappedType, c.Type)
	assert.True(t, c.Partial.SingleEnd)
	assert.True(t, c.FASTA)
	assert.True(t, c.Species, "unset fields should keep defaults")
	assert.Equal(t, "3.1.26", c.GFFVersion)
	assert.NoError(t, c.Validate())
}

func TestLoadFromFileErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadFromFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("type: [mapped\n"), 0o644))
	_, err = LoadFromFile(path)
	assert.Error(t, err)
}
