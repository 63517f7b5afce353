// Package render draws a problem instance laid out by an ordering.
//
// [ToDOT] places the items left to right in ordering position and draws
// every constraint (A, B, C) as an arc between A and B labelled with C.
// Arcs of violated constraints are red, and items sitting inside an arc
// they must stay out of are shaded. The DOT text can be rendered in
// process with [RenderSVG], which uses [github.com/goccy/go-graphviz], or
// converted further with [ToPDF] and [ToPNG], which require librsvg
// (rsvg-convert).
//
//	dot := render.ToDOT(inst, ordering, render.Options{})
//	svg, err := render.RenderSVG(ctx, dot)
package render
