package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	cmerrors "github.com/crateforge/cargo-matrix/pkg/errors"
	"github.com/crateforge/cargo-matrix/pkg/dag"
	"github.com/crateforge/cargo-matrix/pkg/features"
	"github.com/crateforge/cargo-matrix/pkg/manifest"
	"github.com/crateforge/cargo-matrix/pkg/render"
	"github.com/crateforge/cargo-matrix/pkg/render/nodelink"
	"github.com/crateforge/cargo-matrix/pkg/workspace"
)

// graphCommand renders a package's feature-activation graph: declared
// features in row 0, the optional dependencies and dependency features
// (`dep/feat`) they resolve to in row 1. It is a pure debug aid over the Feature Model
// and never touches the Run Plan.
func (c *CLI) graphCommand() *cobra.Command {
	var manifestPath, out, format string

	cmd := &cobra.Command{
		Use:   "graph <package>",
		Short: "Render a package's feature-activation graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := workspaceRoot(manifestPath)
			if err != nil {
				return err
			}
			_, ws, err := manifest.Parse(filepath.Join(root, "Cargo.toml"))
			if err != nil {
				return err
			}
			members, err := workspace.Discover(root, ws)
			if err != nil {
				return err
			}

			var mem *workspace.Member
			for i := range members {
				if members[i].Package.Name == args[0] {
					mem = &members[i]
					break
				}
			}
			if mem == nil {
				return cmerrors.New(cmerrors.CodeNoMatchingPackage, "package %q not found", args[0])
			}

			g := featureGraph(mem)
			dot := nodelink.ToDOT(g, nodelink.Options{Detailed: false})

			if format == "dot" || out == "" {
				fmt.Fprint(os.Stdout, dot)
				return nil
			}

			svg, err := nodelink.RenderSVG(dot)
			if err != nil {
				return cmerrors.Wrap(cmerrors.CodeIO, err, "rendering feature graph")
			}

			switch format {
			case "svg":
				return os.WriteFile(out, svg, 0o644)
			case "pdf":
				pdf, err := render.ToPDF(svg)
				if err != nil {
					return cmerrors.Wrap(cmerrors.CodeIO, err, "converting feature graph to pdf")
				}
				return os.WriteFile(out, pdf, 0o644)
			case "png":
				png, err := render.ToPNG(svg, 2.0)
				if err != nil {
					return cmerrors.Wrap(cmerrors.CodeIO, err, "converting feature graph to png")
				}
				return os.WriteFile(out, png, 0o644)
			default:
				return cmerrors.New(cmerrors.CodeConfig, "unknown --format %q", format).
					WithHint("use one of dot, svg, pdf, png")
			}
		},
	}

	cmd.Flags().StringVar(&manifestPath, "manifest-path", "", "path to the workspace or package manifest")
	cmd.Flags().StringVar(&out, "out", "", "write the rendered diagram to this path instead of stdout")
	cmd.Flags().StringVar(&format, "format", "dot", "output format: dot, svg, pdf, or png")

	return cmd
}

// featureGraph builds a two-row DAG from mem's feature model: row 0 holds
// every atom (explicit or implicit feature), row 1 holds the optional
// dependencies and dependency features those atoms resolve to, and an edge
// connects an atom to each row-1 node its closure activates; features
// activated through the closure get no edge.
func featureGraph(mem *workspace.Member) *dag.DAG {
	model := features.NewModel(mem.Package)
	g := dag.New(nil)

	atoms := append(append([]string(nil), model.ExplicitFeatures()...), model.ImplicitFeatures()...)
	leaves := map[string]bool{}

	for _, a := range atoms {
		_ = g.AddNode(dag.Node{ID: a, Row: 0})
	}
	for _, a := range atoms {
		cl := model.Close([]string{a})
		for dep := range cl.Deps {
			leaves[dep] = true
		}
		for depFeat := range cl.DepFeatures {
			leaves[depFeat] = true
		}
	}
	for leaf := range leaves {
		_ = g.AddNode(dag.Node{ID: leafNodeID(leaf), Row: 1})
	}
	for _, a := range atoms {
		cl := model.Close([]string{a})
		for dep := range cl.Deps {
			_ = g.AddEdge(dag.Edge{From: a, To: leafNodeID(dep)})
		}
		for depFeat := range cl.DepFeatures {
			_ = g.AddEdge(dag.Edge{From: a, To: leafNodeID(depFeat)})
		}
	}
	return g
}

// leafNodeID disambiguates a row-1 node from a same-named row-0 atom
// (e.g. an implicit feature and the dependency it wraps share a name).
func leafNodeID(name string) string {
	if strings.Contains(name, "/") {
		return name
	}
	return "dep:" + name
}
