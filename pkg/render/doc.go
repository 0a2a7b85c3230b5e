// Package render provides visualization rendering for feature-activation
// graphs.
//
// # Overview
//
// This package converts the [dag.DAG] built by the `graph` sub-command into a
// viewable diagram. It provides:
//
//   - Generic format conversion (SVG to PDF/PNG)
//   - Node-link diagrams (in [nodelink] subpackage), rendered via Graphviz
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [dag.DAG]: github.com/crateforge/cargo-matrix/pkg/dag
// [nodelink]: github.com/crateforge/cargo-matrix/pkg/render/nodelink
package render
