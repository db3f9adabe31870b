package cli

import (
	"bytes"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/samdwyer/dungeonlayout/internal/errors"
	"github.com/samdwyer/dungeonlayout/internal/render"
	"github.com/samdwyer/dungeonlayout/internal/snapshot"
)

// generateOpts holds the output flags of the generate command. Every path
// may be "-" for stdout.
type generateOpts struct {
	png    string
	svg    string
	dot    string
	json   string
	ascii  string
	width  int
	height int
	cols   int
	rows   int
	debug  bool
}

func newGenerateCmd(root *rootOpts) *cobra.Command {
	png := render.DefaultPNGOptions()
	opts := generateOpts{width: png.Width, height: png.Height, cols: 120, rows: 40}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a layout and write it to files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := loadConfig(cmd, root)
			if err != nil {
				return err
			}
			p, err := pipelineFactory(cfg, logger)()
			if err != nil {
				return err
			}

			prog := newProgress(logger)
			if err := p.Run(ctx); err != nil {
				if !errors.Is(err, errors.ErrCodeNotConverged) {
					return err
				}
				logger.Warn("writing unconverged layout", "err", errors.UserMessage(err))
			}
			snap := snapshot.Take(p)
			prog.done("generated layout",
				"run", snap.RunID,
				"seed", snap.Seed,
				"rooms", len(snap.Rooms),
				"major", snap.MajorCount(),
				"passes", snap.Passes)

			stdout := cmd.OutOrStdout()
			if opts.json != "" {
				data, err := snap.JSON()
				if err != nil {
					return err
				}
				if err := writeOutput(opts.json, append(data, '\n'), stdout); err != nil {
					return err
				}
			}
			if opts.ascii != "" {
				if err := writeOutput(opts.ascii, []byte(render.ASCII(snap, opts.cols, opts.rows)), stdout); err != nil {
					return err
				}
			}
			dot := render.ToDOT(snap)
			if opts.dot != "" {
				if err := writeOutput(opts.dot, []byte(dot), stdout); err != nil {
					return err
				}
			}
			if opts.svg != "" {
				svg, err := render.RenderSVG(ctx, dot)
				if err != nil {
					return err
				}
				if err := writeOutput(opts.svg, svg, stdout); err != nil {
					return err
				}
			}
			if opts.png != "" {
				png.Width, png.Height, png.Debug = opts.width, opts.height, opts.debug
				var buf bytes.Buffer
				if err := render.PNG(&buf, snap, png); err != nil {
					return err
				}
				if err := writeOutput(opts.png, buf.Bytes(), stdout); err != nil {
					return err
				}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.png, "png", "", "write a PNG image to this path")
	f.StringVar(&opts.svg, "svg", "", "write the connectivity graph as SVG to this path")
	f.StringVar(&opts.dot, "dot", "", "write the connectivity graph as Graphviz DOT to this path")
	f.StringVar(&opts.json, "json", "", "write the layout snapshot as JSON to this path")
	f.StringVar(&opts.ascii, "ascii", "", "write an ASCII tile map to this path")
	f.IntVar(&opts.width, "width", opts.width, "PNG width in pixels")
	f.IntVar(&opts.height, "height", opts.height, "PNG height in pixels")
	f.IntVar(&opts.cols, "cols", opts.cols, "ASCII map columns")
	f.IntVar(&opts.rows, "rows", opts.rows, "ASCII map rows")
	f.BoolVar(&opts.debug, "debug", false, "draw circumcircles in the PNG")

	return cmd
}

// writeOutput writes data to path, or to stdout when path is "-".
func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == "-" {
		if _, err := stdout.Write(data); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "write stdout")
		}
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "write %s", path)
	}
	return nil
}
