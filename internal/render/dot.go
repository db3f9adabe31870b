package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/samdwyer/dungeonlayout/internal/errors"
	"github.com/samdwyer/dungeonlayout/internal/snapshot"
)

// pointsPerInch converts layout units to Graphviz node sizes.
const pointsPerInch = 72.0

// ToDOT describes the rooms and their connectivity edges as an undirected
// Graphviz graph. Each node carries its room's position in pos, so a
// position-honoring engine such as neato -n reproduces the layout.
func ToDOT(s snapshot.Snapshot) string {
	var buf bytes.Buffer
	buf.WriteString("graph layout {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=filled, fontsize=10, fixedsize=true];\n")
	buf.WriteString("\n")

	for i, r := range s.Rooms {
		attrs := fmt.Sprintf("label=\"%d\", pos=\"%g,%g!\", width=%g, height=%g, fillcolor=%q",
			i, r.X+r.W/2, -(r.Y + r.H/2), r.W/pointsPerInch, r.H/pointsPerInch, r.Fill)
		if r.Outline != "" {
			attrs += fmt.Sprintf(", color=%q", r.Outline)
		}
		if r.Kind != "" {
			attrs += fmt.Sprintf(", class=%q", r.Kind)
		}
		fmt.Fprintf(&buf, "  r%d [%s];\n", i, attrs)
	}

	buf.WriteString("\n")
	for _, e := range s.Edges {
		fmt.Fprintf(&buf, "  r%d -- r%d;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG lays out a DOT graph with Graphviz and returns the SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render")
	}
	return buf.Bytes(), nil
}
