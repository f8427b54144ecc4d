// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io/ioutil"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/kortschak/ff2gff3/gff3"
)

// hierarchy is the ID/Parent graph of converted features. Edges are
// directed from parent to child.
type hierarchy struct {
	*simple.DirectedGraph
	idFor map[string]int64
}

func newHierarchy() *hierarchy {
	return &hierarchy{
		DirectedGraph: simple.NewDirectedGraph(),
		idFor:         make(map[string]int64),
	}
}

// add adds the features of each gene group in g.
func (h *hierarchy) add(g *gff3.Groups) {
	for _, gene := range g.Genes() {
		feats := g.Features(gene)
		root := feats[0]
		id := root.Attributes.Get("ID")
		p := h.nodeFor(root.SeqID+":"+id, root)
		for _, f := range feats[1:] {
			name := fmt.Sprintf("%s:%s/%s:%d-%d", f.SeqID, id, f.Type, f.FeatStart+1, f.FeatEnd)
			h.SetEdge(edge{f: p, t: h.nodeFor(name, f)})
		}
	}
}

func (h *hierarchy) nodeFor(name string, f *gff3.Feature) graph.Node {
	id, ok := h.idFor[name]
	if ok {
		return h.Node(id)
	}
	id = h.DirectedGraph.NewNode().ID()
	h.idFor[name] = id
	n := node{id: id, name: name, typ: f.Type}
	h.AddNode(n)
	return n
}

func (h *hierarchy) marshal() ([]byte, error) {
	return dot.Marshal(h, "hierarchy", "", "\t")
}

func (h *hierarchy) writeTo(path string) error {
	b, err := h.marshal()
	if err != nil {
		return err
	}
	return ioutil.WriteFile(path, b, 0o664)
}

type node struct {
	id   int64
	name string
	typ  string
}

func (n node) ID() int64     { return n.id }
func (n node) DOTID() string { return n.name }
func (n node) Attributes() []encoding.Attribute {
	return []encoding.Attribute{{Key: "type", Value: n.typ}}
}

type edge struct {
	f, t graph.Node
}

func (e edge) From() graph.Node         { return e.f }
func (e edge) To() graph.Node           { return e.t }
func (e edge) ReversedEdge() graph.Edge { return edge{f: e.t, t: e.f} }
