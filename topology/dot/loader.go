/*
	dot loads topologies from Graphviz DOT digraphs. Node DOT ids become the
	original vertex ids and the optional "weight" edge attribute becomes the
	edge weight.
*/

package dot

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/mycok/uPregel/topology"
)

// Options configures how DOT graphs are interpreted.
type Options struct {
	// Undirected adds every edge in both directions.
	Undirected bool
}

// LoadFile loads the DOT graph stored at path.
func LoadFile(path string, opts Options) (*topology.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Load(f, opts)
}

// Load decodes a DOT digraph from r and builds a topology from it. Vertices
// are assigned internal ids in the order in which they first appear.
func Load(r io.Reader, opts Options) (*topology.Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read DOT graph: %w", err)
	}

	dst := &dotGraph{DirectedGraph: simple.NewDirectedGraph()}
	if err := dot.Unmarshal(data, dst); err != nil {
		return nil, fmt.Errorf("failed to decode DOT graph: %w", err)
	}

	b := topology.NewBuilder()
	for _, n := range dst.nodes {
		b.AddVertex(n.dotID)
	}

	for _, e := range dst.edges {
		src, dest := e.From().(*dotNode).dotID, e.To().(*dotNode).dotID

		add := b.AddEdge
		if opts.Undirected {
			add = b.AddUndirectedEdge
		}

		if err := add(src, dest, e.weight); err != nil {
			return nil, err
		}
	}

	return b.Build(), nil
}

// dotGraph records nodes and edges in decoding order. Self-loops are kept
// in the edge list but never handed to the embedded graph, which rejects
// them.
type dotGraph struct {
	*simple.DirectedGraph

	nodes []*dotNode
	edges []*dotEdge
}

func (g *dotGraph) NewNode() graph.Node {
	return &dotNode{Node: g.DirectedGraph.NewNode()}
}

func (g *dotGraph) AddNode(n graph.Node) {
	g.DirectedGraph.AddNode(n)
	g.nodes = append(g.nodes, n.(*dotNode))
}

func (g *dotGraph) NewEdge(from, to graph.Node) graph.Edge {
	return &dotEdge{Edge: g.DirectedGraph.NewEdge(from, to), weight: 1}
}

func (g *dotGraph) SetEdge(e graph.Edge) {
	if e.From().ID() != e.To().ID() {
		g.DirectedGraph.SetEdge(e)
	}

	g.edges = append(g.edges, e.(*dotEdge))
}

type dotNode struct {
	graph.Node
	dotID string
}

// SetDOTID implements dot.DOTIDSetter.
func (n *dotNode) SetDOTID(id string) { n.dotID = id }

type dotEdge struct {
	graph.Edge
	weight float64
}

// SetAttribute implements encoding.AttributeSetter.
func (e *dotEdge) SetAttribute(attr encoding.Attribute) error {
	if attr.Key != "weight" {
		return nil
	}

	weight, err := strconv.ParseFloat(attr.Value, 64)
	if err != nil {
		return fmt.Errorf("invalid weight %q: %w", attr.Value, err)
	}

	e.weight = weight

	return nil
}
