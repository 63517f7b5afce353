package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/betwixt/pkg/model"
)

// Formats accepted by [Render].
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPDF = "pdf"
	FormatPNG = "png"
)

// Options configures diagram rendering.
type Options struct {
	// ViolatedOnly omits the arcs of satisfied constraints.
	ViolatedOnly bool
	// Positions appends each item's position to its label.
	Positions bool
}

// ToDOT converts an instance laid out by o to Graphviz DOT.
func ToDOT(inst *model.Instance, o model.Ordering, opts Options) string {
	set, _ := inst.Set()
	inside := make(map[model.Item]bool)
	for _, c := range set.Violated(o) {
		inside[c.C] = true
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=20, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  edge [fontsize=14];\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	for p := range o.Len() {
		it := o.At(p)
		label := inst.Name(it)
		if opts.Positions {
			label = fmt.Sprintf("%s\n#%d", label, p)
		}
		attrs := []string{fmt.Sprintf("label=%q", label)}
		if inside[it] {
			attrs = append(attrs, "fillcolor=\"#f8d7da\"")
		}
		fmt.Fprintf(&buf, "  %s [%s];\n", nodeID(it), strings.Join(attrs, ", "))
	}

	if o.Len() > 1 {
		buf.WriteString("\n  ")
		for p := range o.Len() {
			if p > 0 {
				buf.WriteString(" -- ")
			}
			buf.WriteString(nodeID(o.At(p)))
		}
		buf.WriteString(" [style=invis, weight=100];\n")
	}

	buf.WriteString("\n")
	for _, c := range set.All() {
		violated := c.ViolatedBy(o)
		if opts.ViolatedOnly && !violated {
			continue
		}
		color := "grey60"
		if violated {
			color = "red"
		}
		fmt.Fprintf(&buf, "  %s -- %s [label=%q, color=%s, fontcolor=%s, constraint=false];\n",
			nodeID(c.A), nodeID(c.B), inst.Name(c.C), color, color)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(it model.Item) string {
	return "i" + strconv.Itoa(int(it))
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// Render produces the diagram in the given format.
func Render(ctx context.Context, inst *model.Instance, o model.Ordering, opts Options, format string) ([]byte, error) {
	dot := ToDOT(inst, o, opts)
	if format == FormatDOT {
		return []byte(dot), nil
	}
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatSVG:
		return svg, nil
	case FormatPDF:
		return ToPDF(ctx, svg)
	case FormatPNG:
		return ToPNG(ctx, svg, 2.0)
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
