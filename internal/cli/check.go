package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/betwixt/pkg/errors"
	pkgio "github.com/matzehuels/betwixt/pkg/io"
	"github.com/matzehuels/betwixt/pkg/model"
	"github.com/matzehuels/betwixt/pkg/oracle"
)

type checkOpts struct {
	count  bool
	json   bool
	format string
}

func (c *CLI) checkCommand() *cobra.Command {
	var opts checkOpts

	cmd := &cobra.Command{
		Use:   "check <instance> [ordering]",
		Short: "Check an ordering, or search a small instance exhaustively",
		Long: `With an ordering file, check reports every constraint the ordering violates
and exits non-zero if there is any.

Without one, check enumerates all orderings of the instance (up to ` + fmt.Sprint(oracle.MaxItems) + ` items)
and prints the first satisfying ordering. With --count it enumerates them all
and reports how many satisfy the instance.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, err := readInstance(cmd.InOrStdin(), args[0], opts.json)
			if err != nil {
				return err
			}
			if len(args) == 2 {
				return runCheckOrdering(inst, args[1])
			}
			return c.runCheckSearch(cmd.Context(), cmd.OutOrStdout(), inst, &opts)
		},
	}

	cmd.Flags().BoolVar(&opts.count, "count", false, "count every satisfying ordering")
	cmd.Flags().BoolVar(&opts.json, "json", false, "read the instance as JSON")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "ordering layout: newline (default), space")
	_ = cmd.RegisterFlagCompletionFunc("format", fixedCompletion(string(pkgio.FormatNewline), string(pkgio.FormatSpace)))

	return cmd
}

func runCheckOrdering(inst *model.Instance, path string) error {
	o, err := pkgio.ImportOrdering(inst, path)
	if err != nil {
		return err
	}
	set, _ := inst.Set()
	if oracle.IsSatisfied(o, set) {
		printSuccess("All %d constraints satisfied", set.Len())
		return nil
	}
	violated := inst.Violated(o)
	printError("%s of %d constraints violated", StyleError.Render(fmt.Sprint(len(violated))), set.Len())
	for _, v := range violated {
		printDetail("%s lies between %s and %s", inst.Name(v.C), inst.Name(v.A), inst.Name(v.B))
	}
	return errors.New(errors.ErrCodeInvalidOrdering, "ordering violates %d constraints", len(violated))
}

func (c *CLI) runCheckSearch(ctx context.Context, stdout io.Writer, inst *model.Instance, opts *checkOpts) error {
	format, err := c.outputFormat(opts.format)
	if err != nil {
		return err
	}
	set, _ := inst.Set()
	search := oracle.Search
	if opts.count {
		search = oracle.Count
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Enumerating %d! orderings...", inst.N()))
	spinner.Start()
	rep, err := search(ctx, inst.N(), set)
	spinner.Stop()
	if err != nil {
		return err
	}

	printKeyValue("visited", fmt.Sprint(rep.Visited))
	if opts.count {
		printKeyValue("solutions", fmt.Sprint(rep.Solutions))
	}
	printKeyValue("elapsed", rep.Elapsed.Round(time.Microsecond).String())
	if !rep.Found {
		printError("No ordering satisfies all %d constraints", set.Len())
		return errors.New(errors.ErrCodeNotFound, "instance is unsatisfiable")
	}
	printKeyValue("first after", rep.TimeToFirst.Round(time.Microsecond).String())
	return pkgio.WriteOrdering(inst, rep.First, format, stdout)
}
