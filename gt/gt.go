// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gt provides types and functions for invoking GenomeTools
// to check and normalise GFF3 output and interpreting its diagnostics.
package gt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/biogo/external"
)

type Validator struct {
	// Usage: gt gff3validator [option ...] [GFF3_file ...]
	//
	// For details relating to options and parameters, see the GenomeTools manual.
	//
	Cmd  string `buildarg:"{{if .}}{{.}}{{else}}gt{{end}}"`            // gt
	Tool string `buildarg:"{{if .}}{{.}}{{else}}gff3validator{{end}}"` // gff3validator

	TypeCheck string `buildarg:"{{with .}}-typecheck{{split}}{{.}}{{end}}"` // -typecheck <s>
	XRFCheck  string `buildarg:"{{with .}}-xrfcheck{{split}}{{.}}{{end}}"`  // -xrfcheck <s>
	Strict    bool   `buildarg:"{{if .}}-strict{{end}}"`                    // -strict

	In string `buildarg:"{{.}}"` // <s>

	// ExtraFlags will be passed through to gt as flags.
	ExtraFlags string
}

func (v Validator) BuildCommand() (*exec.Cmd, error) {
	if v.In == "" {
		return nil, errors.New("gff3validator: missing input filename")
	}
	return command(external.Must(external.Build(v)), v.ExtraFlags), nil
}

type Sorter struct {
	// Usage: gt gff3 -sort [option ...] [GFF3_file ...]
	//
	// For details relating to options and parameters, see the GenomeTools manual.
	//
	Cmd  string `buildarg:"{{if .}}{{.}}{{else}}gt{{end}}"`   // gt
	Tool string `buildarg:"{{if .}}{{.}}{{else}}gff3{{end}}"` // gff3

	Sort      bool   `buildarg:"{{if .}}-sort{{end}}"`              // -sort
	Tidy      bool   `buildarg:"{{if .}}-tidy{{end}}"`              // -tidy
	RetainIDs bool   `buildarg:"{{if .}}-retainids{{end}}"`         // -retainids
	Force     bool   `buildarg:"{{if .}}-force{{end}}"`             // -force
	Out       string `buildarg:"{{with .}}-o{{split}}{{.}}{{end}}"` // -o <s>

	In string `buildarg:"{{.}}"` // <s>

	// ExtraFlags will be passed through to gt as flags.
	ExtraFlags string
}

func (s Sorter) BuildCommand() (*exec.Cmd, error) {
	if s.In == "" {
		return nil, errors.New("gff3: missing input filename")
	}
	return command(external.Must(external.Build(s)), s.ExtraFlags), nil
}

func command(cl []string, flags string) *exec.Cmd {
	var extra []string
	if flags != "" {
		extra = strings.Split(flags, " ")
	}
	// Keep the input file last.
	in := len(cl) - 1
	args := append([]string(nil), cl[1:in]...)
	args = append(args, extra...)
	return exec.Command(cl[0], append(args, cl[in])...)
}

// Level is the severity of a GenomeTools diagnostic.
type Level int

const (
	Warning Level = iota
	Error
)

func (l Level) String() string {
	if l == Error {
		return "error"
	}
	return "warning"
}

// Message is a diagnostic reported by a GenomeTools tool.
type Message struct {
	Tool  string
	Level Level

	// Line is the line of the input the message
	// refers to, or zero if no line is given.
	Line int

	Text string
}

var lineRef = regexp.MustCompile(`\bline (\d+)\b`)

// ParseMessages returns the warnings and errors in the diagnostic
// output of a GenomeTools tool. Other lines are ignored.
func ParseMessages(r io.Reader) ([]Message, error) {
	var msgs []Message
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		var m Message
		if strings.HasPrefix(line, "gt ") {
			i := strings.Index(line, ": ")
			if i < 0 {
				continue
			}
			m.Tool = line[len("gt "):i]
			line = line[i+len(": "):]
		}
		switch {
		case strings.HasPrefix(line, "warning: "):
			m.Level = Warning
			m.Text = line[len("warning: "):]
		case strings.HasPrefix(line, "error: "):
			m.Level = Error
			m.Text = line[len("error: "):]
		default:
			continue
		}
		if sub := lineRef.FindStringSubmatch(m.Text); sub != nil {
			n, err := strconv.Atoi(sub[1])
			if err != nil {
				return msgs, fmt.Errorf("error in line: %s: %w", sc.Text(), err)
			}
			m.Line = n
		}
		msgs = append(msgs, m)
	}
	return msgs, sc.Err()
}
