// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The audit-gff3-db command allows the feature store written by a run of
// ff2gff3 with the -db flag to be queried. Output from audit-gff3-db is a
// JSON stream on stdout ordered by sequence, gene and feature position.
//
// Each feature is written as JSON corresponding to the following Go struct.
// Start is one-based and End is inclusive.
//
//	struct {
//		SeqID      string
//		Gene       string
//		Source     string
//		Type       string
//		Start      int
//		End        int
//		Score      string
//		Strand     string
//		Phase      string
//		Attributes map[string]string
//	}
//
// The -seq and -gene flags restrict output to the features of a sequence
// and a gene.
package main

import (
	"encoding/json"
	"flag"
	"io"
	"log"
	"os"

	"github.com/kortschak/ff2gff3/internal/store"
)

func main() {
	path := flag.String("db", "", "specify db file to audit (required)")
	seqID := flag.String("seq", "", "specify sequence ID to audit")
	gene := flag.String("gene", "", "specify gene to audit")
	flag.Parse()
	if *path == "" {
		flag.Usage()
		os.Exit(2)
	}

	db, err := store.Open(*path)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	it, err := db.SeekFirst()
	if err != nil {
		if err == io.EOF {
			return
		}
		log.Fatal(err)
	}
	enc := json.NewEncoder(os.Stdout)
	for {
		k, v, err := it.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			log.Fatal(err)
		}
		key := store.UnmarshalFeatureKey(k)
		if (*seqID != "" && key.SeqID != *seqID) || (*gene != "" && key.Gene != *gene) {
			continue
		}
		var r store.Record
		err = json.Unmarshal(v, &r)
		if err != nil {
			log.Fatal(err)
		}
		err = enc.Encode(feature{
			SeqID:      r.SeqID,
			Gene:       key.Gene,
			Source:     r.Source,
			Type:       r.Type,
			Start:      r.Start,
			End:        r.End,
			Score:      r.Score,
			Strand:     r.Strand,
			Phase:      r.Phase,
			Attributes: r.Attributes,
		})
		if err != nil {
			log.Fatal(err)
		}
	}
}

type feature struct {
	SeqID      string
	Gene       string
	Source     string
	Type       string
	Start      int
	End        int
	Score      string
	Strand     string
	Phase      string
	Attributes map[string]string
}
