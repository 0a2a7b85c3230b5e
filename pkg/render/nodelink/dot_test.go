package nodelink

import (
	"strings"
	"testing"

	"github.com/crateforge/cargo-matrix/pkg/dag"
)

func TestToDOTPlain(t *testing.T) {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "default", Row: 0})
	_ = g.AddNode(dag.Node{ID: "dep:serde", Row: 1})
	_ = g.AddEdge(dag.Edge{From: "default", To: "dep:serde"})

	dot := ToDOT(g, Options{Detailed: false})

	if !strings.Contains(dot, `"default"`) {
		t.Errorf("ToDOT output missing default node: %s", dot)
	}
	if !strings.Contains(dot, `"dep:serde"`) {
		t.Errorf("ToDOT output missing dep:serde node: %s", dot)
	}
	if !strings.Contains(dot, `"default" -> "dep:serde"`) {
		t.Errorf("ToDOT output missing edge: %s", dot)
	}
	if strings.Contains(dot, "row:") {
		t.Error("non-detailed output should not include row metadata")
	}
}

func TestToDOTDetailed(t *testing.T) {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "std", Row: 0, Meta: dag.Metadata{"explicit": true}})

	dot := ToDOT(g, Options{Detailed: true})

	if !strings.Contains(dot, "row: 0") {
		t.Errorf("detailed output should include the row number: %s", dot)
	}
	if !strings.Contains(dot, "explicit: true") {
		t.Errorf("detailed output should include node metadata: %s", dot)
	}
}

func TestToDOTSubdividerStyling(t *testing.T) {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "std", Row: 0})
	_ = g.AddNode(dag.Node{ID: "std_sub_1", Row: 1, Kind: dag.NodeKindSubdivider, MasterID: "std"})
	_ = g.AddEdge(dag.Edge{From: "std", To: "std_sub_1"})

	dot := ToDOT(g, Options{})

	if !strings.Contains(dot, "dashed") {
		t.Errorf("subdivider node should render with a dashed style: %s", dot)
	}
}
