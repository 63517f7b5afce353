package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/betwixt/pkg/io"
	"github.com/matzehuels/betwixt/pkg/model"
	"github.com/matzehuels/betwixt/pkg/render"
)

type renderOpts struct {
	output       string
	format       string
	json         bool
	violatedOnly bool
	positions    bool
}

func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <instance> [ordering]",
		Short: "Draw an instance as a diagram",
		Long: `Render lays out the items along a line in the given order (the canonical
order if none is given) and draws every constraint as an arc from A to B
labeled with C. Violated constraints and the items caught between their
endpoints are highlighted.

The format is taken from -o's extension when -f is not given. PDF and PNG
need rsvg-convert on the PATH.`,
		Example: `  betwixt render instance.txt solution.txt -o solution.svg
  betwixt render instance.txt -f dot | dot -Tpng > canonical.png`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, err := readInstance(cmd.InOrStdin(), args[0], opts.json)
			if err != nil {
				return err
			}
			o := model.Identity(inst.N())
			if len(args) == 2 {
				if o, err = pkgio.ImportOrdering(inst, args[1]); err != nil {
					return err
				}
			}
			return runRender(cmd.Context(), cmd.OutOrStdout(), inst, o, &opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	f.StringVarP(&opts.format, "format", "f", "", "dot, svg, pdf or png (default from -o, else svg)")
	f.BoolVar(&opts.json, "json", false, "read the instance as JSON")
	f.BoolVar(&opts.violatedOnly, "violated-only", false, "draw only violated constraints")
	f.BoolVar(&opts.positions, "positions", false, "label items with their position")
	_ = cmd.RegisterFlagCompletionFunc("format", fixedCompletion(render.FormatDOT, render.FormatSVG, render.FormatPDF, render.FormatPNG))
	return cmd
}

// renderFormat picks the diagram format from the flag or the output name.
func renderFormat(flag, output string) (string, error) {
	format := strings.ToLower(flag)
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
		if format == "gv" {
			format = render.FormatDOT
		}
	}
	switch format {
	case "":
		return render.FormatSVG, nil
	case render.FormatDOT, render.FormatSVG, render.FormatPDF, render.FormatPNG:
		return format, nil
	}
	return "", fmt.Errorf("unsupported diagram format %q", format)
}

func runRender(ctx context.Context, stdout io.Writer, inst *model.Instance, o model.Ordering, opts *renderOpts) error {
	format, err := renderFormat(opts.format, opts.output)
	if err != nil {
		return err
	}
	data, err := render.Render(ctx, inst, o, render.Options{
		ViolatedOnly: opts.violatedOnly,
		Positions:    opts.positions,
	}, format)
	if err != nil {
		return err
	}

	if opts.output == "" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return err
	}
	if violated := inst.Violated(o); len(violated) > 0 {
		printWarning("%d constraints violated", len(violated))
	}
	printSuccess("Rendered %s", strings.ToUpper(format))
	printFile(opts.output)
	return nil
}
