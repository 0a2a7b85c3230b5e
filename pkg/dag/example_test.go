package dag_test

import (
	"fmt"

	"github.com/crateforge/cargo-matrix/pkg/dag"
)

func ExampleDAG_basic() {
	// Build a two-row feature-activation graph: a feature and the optional
	// dependency it activates.
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "default", Row: 0})
	_ = g.AddNode(dag.Node{ID: "dep:serde", Row: 1})
	_ = g.AddEdge(dag.Edge{From: "default", To: "dep:serde"})

	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("Rows:", g.RowCount())
	// Output:
	// Nodes: 2
	// Edges: 1
	// Rows: 2
}

func ExampleDAG_traversal() {
	// A feature that fans out to two optional dependencies.
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "full", Row: 0})
	_ = g.AddNode(dag.Node{ID: "dep:tokio", Row: 1})
	_ = g.AddNode(dag.Node{ID: "dep:tls", Row: 1})
	_ = g.AddEdge(dag.Edge{From: "full", To: "dep:tokio"})
	_ = g.AddEdge(dag.Edge{From: "full", To: "dep:tls"})

	fmt.Println("Children of full:", g.Children("full"))
	fmt.Println("Parents of dep:tokio:", g.Parents("dep:tokio"))
	fmt.Println("Out-degree of full:", g.OutDegree("full"))
	// Output:
	// Children of full: [dep:tokio dep:tls]
	// Parents of dep:tokio: [full]
	// Out-degree of full: 2
}

func ExampleDAG_Sources() {
	// Two features that both pull in the same optional dependency.
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "default", Row: 0})
	_ = g.AddNode(dag.Node{ID: "std", Row: 0})
	_ = g.AddNode(dag.Node{ID: "dep:serde", Row: 1})
	_ = g.AddEdge(dag.Edge{From: "default", To: "dep:serde"})
	_ = g.AddEdge(dag.Edge{From: "std", To: "dep:serde"})

	sources := g.Sources()
	fmt.Println("Source count:", len(sources))
	// Output:
	// Source count: 2
}

func ExampleDAG_metadata() {
	g := dag.New(dag.Metadata{"package": "demo"})
	_ = g.AddNode(dag.Node{
		ID:  "default",
		Row: 0,
		Meta: dag.Metadata{
			"explicit": true,
		},
	})

	node, _ := g.Node("default")
	fmt.Println("Feature:", node.ID)
	fmt.Println("Explicit:", node.Meta["explicit"])
	// Output:
	// Feature: default
	// Explicit: true
}

func ExampleNode_synthetic() {
	// Regular nodes come straight from the feature model; synthetic kinds
	// exist for layout algorithms this package doesn't currently run, but
	// the type still distinguishes them for any caller that does.
	regular := dag.Node{ID: "std", Kind: dag.NodeKindRegular}
	subdivider := dag.Node{ID: "std_sub_1", Kind: dag.NodeKindSubdivider, MasterID: "std"}

	fmt.Println("Regular is synthetic:", regular.IsSynthetic())
	fmt.Println("Subdivider is synthetic:", subdivider.IsSynthetic())
	fmt.Println("Subdivider effective ID:", subdivider.EffectiveID())
	// Output:
	// Regular is synthetic: false
	// Subdivider is synthetic: true
	// Subdivider effective ID: std
}

func ExampleCountLayerCrossings() {
	// Count edge crossings between two rows.
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "a", Row: 0})
	_ = g.AddNode(dag.Node{ID: "b", Row: 0})
	_ = g.AddNode(dag.Node{ID: "x", Row: 1})
	_ = g.AddNode(dag.Node{ID: "y", Row: 1})

	// Crossing edges: a→y, b→x (these cross when a is left of b).
	_ = g.AddEdge(dag.Edge{From: "a", To: "y"})
	_ = g.AddEdge(dag.Edge{From: "b", To: "x"})

	upper := []string{"a", "b"}
	lower := []string{"x", "y"}
	crossings := dag.CountLayerCrossings(g, upper, lower)
	fmt.Println("Crossings:", crossings)

	// Reorder to eliminate the crossing.
	upper = []string{"b", "a"}
	crossings = dag.CountLayerCrossings(g, upper, lower)
	fmt.Println("After reorder:", crossings)
	// Output:
	// Crossings: 1
	// After reorder: 0
}
