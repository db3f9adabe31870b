package render

import (
	"io"

	"github.com/gogpu/gg"

	"github.com/samdwyer/dungeonlayout/internal/errors"
	"github.com/samdwyer/dungeonlayout/internal/geom"
	"github.com/samdwyer/dungeonlayout/internal/snapshot"
	"github.com/samdwyer/dungeonlayout/internal/tilemap"
)

// PNGOptions configures raster export.
type PNGOptions struct {
	Width      int
	Height     int
	Margin     float64 // pixels kept clear around the rooms
	Background string  // hex color
	// Debug draws the triangulation and its circumcircles over the rooms.
	Debug bool
}

// DefaultPNGOptions returns a 1920x1080 dark canvas without the overlay.
func DefaultPNGOptions() PNGOptions {
	return PNGOptions{Width: 1920, Height: 1080, Margin: 16, Background: "#111111"}
}

// PNG draws s and writes it as PNG to w.
func PNG(w io.Writer, s snapshot.Snapshot, opts PNGOptions) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "image size must be positive, got %dx%d", opts.Width, opts.Height)
	}

	inner := geom.Rect{
		W: float64(opts.Width) - 2*opts.Margin,
		H: float64(opts.Height) - 2*opts.Margin,
	}
	if opts.Margin < 0 || int(inner.W) < 1 || int(inner.H) < 1 {
		return errors.New(errors.ErrCodeInvalidInput,
			"margin %g leaves no drawing area in a %dx%d image", opts.Margin, opts.Width, opts.Height)
	}

	dc := gg.NewContext(opts.Width, opts.Height)
	defer dc.Close()
	dc.ClearWithColor(gg.Hex(opts.Background))

	tr := tilemap.Fit(tilemap.Bounds(s.Rects()), int(inner.W), int(inner.H), 1)
	px := func(p geom.Point) (float64, float64) {
		return (p.X-tr.Origin.X)/tr.ScaleX + opts.Margin, (p.Y-tr.Origin.Y)/tr.ScaleY + opts.Margin
	}

	dc.SetLineWidth(1)
	for _, r := range s.Rooms {
		x, y := px(geom.Point{X: r.X, Y: r.Y})
		w, h := r.W/tr.ScaleX, r.H/tr.ScaleY

		dc.SetHexColor(r.Fill)
		dc.DrawRectangle(x, y, w, h)
		if err := dc.Fill(); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "fill room")
		}
		if r.Outline != "" {
			dc.SetHexColor(r.Outline)
			dc.DrawRectangle(x, y, w, h)
			if err := dc.Stroke(); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "outline room")
			}
		}
	}

	dc.SetLineWidth(2)
	dc.SetHexColor("#f1c40f")
	for _, e := range s.Edges {
		a, b := s.Vertices[e.A], s.Vertices[e.B]
		x1, y1 := px(geom.Point{X: a.X, Y: a.Y})
		x2, y2 := px(geom.Point{X: b.X, Y: b.Y})
		dc.DrawLine(x1, y1, x2, y2)
		if err := dc.Stroke(); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "draw edge")
		}
	}

	if opts.Debug {
		dc.SetLineWidth(1)
		dc.SetRGBA(0.2, 0.8, 1, 0.35)
		for _, c := range s.Circumcircles {
			x, y := px(geom.Point{X: c.Center.X, Y: c.Center.Y})
			dc.DrawCircle(x, y, c.Radius/tr.ScaleX)
			if err := dc.Stroke(); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "draw circumcircle")
			}
		}
	}

	return dc.EncodePNG(w)
}
