// Package dag provides a directed acyclic graph optimized for row-based
// layered layouts.
//
// # Overview
//
// cargo-matrix uses this structure for the `graph` sub-command: declared
// features occupy row 0, the optional dependencies and dependency features
// (`dep/feat`) they resolve to occupy row 1, and edges trace each activator. The
// row-based constraint keeps that rendering a simple two-tier diagram
// without needing a general graph layout algorithm.
//
// # Basic Usage
//
// Create a new graph with [New], add nodes with [DAG.AddNode], and edges with
// [DAG.AddEdge]. Nodes must have unique IDs, and edges can only connect
// existing nodes in consecutive rows (From.Row+1 == To.Row):
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "default", Row: 0})
//	g.AddNode(dag.Node{ID: "serde", Row: 1})
//	g.AddEdge(dag.Edge{From: "default", To: "serde"})
//
// Query the graph structure with [DAG.Children], [DAG.Parents], [DAG.NodesInRow],
// and related methods. Use [DAG.Validate] to verify structural integrity before
// rendering.
//
// # Node Types
//
// The package supports three node kinds to handle real-world graph structures:
//
//   - [NodeKindRegular]: Original graph vertices
//   - [NodeKindSubdivider]: Synthetic nodes that break long edges into segments
//   - [NodeKindAuxiliary]: Helper nodes for layout (e.g., separator beams)
//
// cargo-matrix's feature graphs are small and flat enough that only
// [NodeKindRegular] is ever produced; the other two kinds exist for larger
// diagrams this structure was originally built to support.
//
// # Edge Crossings
//
// The [CountCrossings] and [CountLayerCrossings] functions use a Fenwick tree
// (binary indexed tree) to count inversions in O(E log V) time.
//
// # Metadata
//
// Both nodes and the graph itself support arbitrary metadata via [Metadata] maps.
// Metadata maps are never nil after creation - empty maps are automatically
// initialized.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. Callers must synchronize access
// if multiple goroutines read or modify the same graph.
package dag
