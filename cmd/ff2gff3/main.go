// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// ff2gff3 converts EMBL flat file feature tables to GFF3.
//
// Each EMBL record read from the input is written as a GFF3 sequence
// region holding the record's features grouped by gene. Records that
// cannot be converted are logged and skipped; ff2gff3 exits with a
// non-zero status if any record failed.
//
// Conversion options may be given in a YAML configuration file with the
// -config flag. Flags given on the command line take precedence over the
// configuration file.
//
//	gff_version: 3.1.26   # version written in the ##gff-version directive
//	type: raw             # "raw" for EMBL keys or "mapped" for SO terms
//	partial:
//	  single_end: false   # mark features partial at only one end
//	rules: ""             # feature mapping TSV, built-in table if empty
//	species: true         # write ##species directives
//	fasta: false          # write a ##FASTA section
//
// If a dot flag is provided, the ID/Parent hierarchy of all converted
// records is written as a graph in DOT format. If a db flag is provided
// the converted features are stored in a kv database that can be inspected
// with audit-gff3-db.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"

	"github.com/biogo/biogo/seq/linear"
	"modernc.org/kv"

	"github.com/kortschak/ff2gff3/convert"
	"github.com/kortschak/ff2gff3/embl"
	"github.com/kortschak/ff2gff3/gff3"
	"github.com/kortschak/ff2gff3/gt"
	"github.com/kortschak/ff2gff3/internal/config"
	"github.com/kortschak/ff2gff3/internal/store"
	"github.com/kortschak/ff2gff3/rules"
)

func main() {
	in := flag.String("in", "", "specify EMBL input file (default stdin, gzip compressed if suffixed .gz)")
	out := flag.String("out", "", "specify GFF3 output file (default stdout)")
	cfgPath := flag.String("config", "", "specify YAML configuration file")
	rulesPath := flag.String("rules", "", "specify feature mapping TSV file")
	typ := flag.String("type", config.RawType, `specify type column source ("raw" or "mapped")`)
	singleEnd := flag.Bool("single-end-partial", false, "specify marking features partial at only one end")
	species := flag.Bool("species", true, "specify writing ##species directives")
	fasta := flag.Bool("fasta", false, "specify writing a ##FASTA section")
	ref := flag.String("ref", "", "specify FASTA file for the ##FASTA section instead of entry sequences")
	dotPath := flag.String("dot", "", "specify file for DOT description of the feature hierarchy")
	dbPath := flag.String("db", "", "specify kv db file for converted features")
	check := flag.Bool("check", false, "specify checking that child features are contained by their parent")
	validate := flag.Bool("validate", false, "specify validating output with gt gff3validator (requires -out)")
	sorted := flag.String("sort", "", "specify file for gt gff3 sorted output (requires -out)")
	gtCmd := flag.String("gt", "", "specify path to the gt executable")
	verbose := flag.Bool("verbose", false, "specify verbose logging")
	flag.Parse()

	if (*validate || *sorted != "") && *out == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.DefaultConfig()
	if *cfgPath != "" {
		var err error
		cfg, err = config.LoadFromFile(*cfgPath)
		if err != nil {
			log.Fatal(err)
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "rules":
			cfg.Rules = *rulesPath
		case "type":
			cfg.Type = *typ
		case "single-end-partial":
			cfg.Partial.SingleEnd = *singleEnd
		case "species":
			cfg.Species = *species
		case "fasta":
			cfg.FASTA = *fasta
		}
	})
	if *ref != "" {
		cfg.FASTA = true
	}
	err := cfg.Validate()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	table := rules.Default()
	if cfg.Rules != "" {
		table, err = rules.Load(cfg.Rules)
		if err != nil {
			log.Fatal(err)
		}
	}
	log.Printf("using %d feature mapping rules", table.Len())
	conv := convert.Converter{
		Rules:            table,
		SingleEndPartial: cfg.Partial.SingleEnd,
		MappedType:       cfg.Type == config.MappedType,
	}

	src, err := openInput(*in)
	if err != nil {
		log.Fatal(err)
	}
	defer src.Close()

	var dst io.WriteCloser = nopCloser{os.Stdout}
	if *out != "" {
		dst, err = os.Create(*out)
		if err != nil {
			log.Fatal(err)
		}
	}
	buf := bufio.NewWriter(dst)

	var refs *reference
	if *ref != "" {
		refs, err = openReference(*ref)
		if err != nil {
			log.Fatal(err)
		}
		defer refs.Close()
	}

	var db *kv.DB
	if *dbPath != "" {
		db, err = store.Create(*dbPath)
		if err != nil {
			log.Fatal(err)
		}
	}

	var hier *hierarchy
	if *dotPath != "" {
		hier = newHierarchy()
	}

	records, failed, err := run(buf, src, options{
		conv:    conv,
		version: cfg.GFFVersion,
		species: cfg.Species,
		fasta:   cfg.FASTA,
		check:   *check,
		verbose: *verbose,
		refs:    refs,
		db:      db,
		hier:    hier,
	})
	if err != nil {
		log.Fatal(err)
	}
	err = buf.Flush()
	if err != nil {
		log.Fatal(err)
	}
	err = dst.Close()
	if err != nil {
		log.Fatal(err)
	}

	if db != nil {
		err = db.Close()
		if err != nil {
			log.Fatal(err)
		}
	}
	if hier != nil {
		err = hier.writeTo(*dotPath)
		if err != nil {
			log.Fatal(err)
		}
	}

	if *validate {
		err = runGT(gt.Validator{Cmd: *gtCmd, In: *out})
		if err != nil {
			log.Fatal(err)
		}
	}
	if *sorted != "" {
		err = runGT(gt.Sorter{Cmd: *gtCmd, Sort: true, Tidy: true, RetainIDs: true, Force: true, Out: *sorted, In: *out})
		if err != nil {
			log.Fatal(err)
		}
	}

	log.Printf("converted %d of %d records", records-failed, records)
	os.Exit(exitStatus(failed))
}

// exitStatus returns the process exit status for a run with
// the given number of failed records.
func exitStatus(failed int) int {
	if failed != 0 {
		return 1
	}
	return 0
}

// options holds the settings of a conversion run.
type options struct {
	conv    convert.Converter
	version string
	species bool
	fasta   bool
	check   bool
	verbose bool

	// refs, db and hier are optional.
	refs *reference
	db   *kv.DB
	hier *hierarchy
}

// run converts the EMBL records read from src and writes them to dst as
// GFF3. Records that cannot be converted are logged, counted in failed
// and skipped. A non-nil error is returned only for read, write or store
// failures, which end the run.
func run(dst io.Writer, src io.Reader, opts options) (records, failed int, err error) {
	var seqs []*linear.Seq
	w := gff3.NewWriter(dst, opts.version)
	r := embl.NewReader(src)
	for {
		e, err := r.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return records, failed, fmt.Errorf("failed to read entry: %w", err)
		}
		records++

		md, err := convert.SourceMetadata(e)
		if err != nil {
			log.Printf("skipping record: %v", err)
			failed++
			continue
		}
		g, err := opts.conv.Convert(e)
		if err != nil {
			log.Printf("skipping record: %v", err)
			failed++
			continue
		}
		if opts.verbose {
			log.Printf("converted %s: %d genes, %s", e.Accession, g.Len(), md.Organism)
		}

		h := gff3.Header{SeqID: e.Accession, Start: 1, End: e.Sequence.Length}
		if h.End == 0 {
			h.End = len(e.Sequence.Bases)
		}
		if opts.species {
			h.Species = md.TaxonomyURL
		}
		err = w.WriteHeader(h)
		if err != nil {
			return records, failed, fmt.Errorf("failed to write header: %w", err)
		}
		err = w.WriteGroups(g)
		if err != nil {
			return records, failed, fmt.Errorf("failed to write feature: %w", err)
		}

		if opts.check {
			bad, err := gff3.Uncontained(g)
			if err != nil {
				return records, failed, err
			}
			for _, f := range bad {
				log.Printf("%s: %s %d-%d extends beyond parent %s", f.SeqID, f.Type, f.FeatStart+1, f.FeatEnd, f.Attributes.Get("Parent"))
			}
		}
		if opts.db != nil {
			err = store.Put(opts.db, g)
			if err != nil {
				return records, failed, fmt.Errorf("failed to store features: %w", err)
			}
		}
		if opts.hier != nil {
			opts.hier.add(g)
		}
		if opts.fasta {
			s, err := sequenceFor(e, opts.refs)
			if err != nil {
				log.Printf("no sequence for %s: %v", e.Accession, err)
			} else {
				seqs = append(seqs, s)
			}
		}
	}
	if len(seqs) != 0 {
		err = w.WriteFASTA(seqs...)
		if err != nil {
			return records, failed, fmt.Errorf("failed to write sequence: %w", err)
		}
	}
	return records, failed, nil
}

type commandBuilder interface {
	BuildCommand() (*exec.Cmd, error)
}

// runGT runs the gt command built by b, logging its diagnostics.
// An error is returned if the tool failed or reported an error.
func runGT(b commandBuilder) error {
	cmd, err := b.BuildCommand()
	if err != nil {
		return err
	}
	log.Println(strings.Join(cmd.Args, " "))
	var diag strings.Builder
	cmd.Stderr = &diag
	cmd.Stdout = &diag
	runErr := cmd.Run()
	msgs, err := gt.ParseMessages(strings.NewReader(diag.String()))
	if err != nil {
		return err
	}
	var errs int
	for _, m := range msgs {
		if m.Level == gt.Error {
			errs++
		}
		if m.Line != 0 {
			log.Printf("\t%s: line %d: %s", m.Level, m.Line, m.Text)
		} else {
			log.Printf("\t%s: %s", m.Level, m.Text)
		}
	}
	if runErr != nil {
		return fmt.Errorf("%s: %w", cmd.Args[0], runErr)
	}
	if errs != 0 {
		return fmt.Errorf("%s: %d errors", cmd.Args[0], errs)
	}
	return nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
