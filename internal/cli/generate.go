package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/betwixt/pkg/generate"
	pkgio "github.com/matzehuels/betwixt/pkg/io"
	"github.com/matzehuels/betwixt/pkg/pipeline"
)

// generateOpts holds the command-line flags for the generate command.
type generateOpts struct {
	output   string
	strategy string
	n        int
	k        int
	ratio    float64
	seed     uint64
	json     bool
	noCache  bool
	refresh  bool
}

func (c *CLI) generateCommand() *cobra.Command {
	var opts generateOpts

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a constraint set satisfied by the canonical order",
		Long: `Generate draws k distinct non-betweenness constraints over items 0..n-1,
all satisfied by the order 0, 1, ..., n-1. Without -k the count is derived
from the ratio (k = ratio·n + 1), which defaults to the hardest ratio known
for the annealing solver.

Strategies: ` + strings.Join(generate.Strategies(), ", ") + `.`,
		Example: `  betwixt generate -n 20 > instance.txt
  betwixt generate -n 50 --strategy single-side-neighbor --seed 7
  betwixt generate -n 12 -k 30 --json -o instance.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd.Context(), cmd, cmd.OutOrStdout(), &opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "write the instance to a file instead of stdout")
	f.StringVarP(&opts.strategy, "strategy", "s", "", "generation strategy (default from config: random)")
	f.IntVarP(&opts.n, "items", "n", 20, "number of items")
	f.IntVarP(&opts.k, "constraints", "k", 0, "number of constraints (default ratio·n + 1)")
	f.Float64Var(&opts.ratio, "ratio", 0, "constraints per item when -k is not given")
	f.Uint64Var(&opts.seed, "seed", 0, "random seed (0 = from clock, never cached)")
	f.BoolVar(&opts.json, "json", false, "write JSON instead of the text format")
	f.BoolVar(&opts.noCache, "no-cache", false, "disable the instance cache")
	f.BoolVar(&opts.refresh, "refresh", false, "ignore cached instances")
	_ = cmd.RegisterFlagCompletionFunc("strategy", fixedCompletion(generate.Strategies()...))

	return cmd
}

// generateOptions merges flags over the generator config.
func (c *CLI) generateOptions(cmd *cobra.Command, opts *generateOpts) pipeline.GenerateOptions {
	g := c.Config.Generator
	out := pipeline.GenerateOptions{
		Strategy:   g.Strategy,
		N:          opts.n,
		K:          opts.k,
		Ratio:      g.Ratio,
		Seed:       g.Seed,
		MaxRetries: g.MaxRetries,
		Refresh:    opts.refresh,
	}
	f := cmd.Flags()
	if f.Changed("strategy") {
		out.Strategy = opts.strategy
	}
	if f.Changed("ratio") {
		out.Ratio = opts.ratio
	}
	if f.Changed("seed") {
		out.Seed = opts.seed
	}
	return out
}

func (c *CLI) runGenerate(ctx context.Context, cmd *cobra.Command, stdout io.Writer, opts *generateOpts) error {
	logger := loggerFromContext(ctx)
	gopts := c.generateOptions(cmd, opts)
	gopts.Logger = logger

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	inst, hit, err := runner.GenerateWithCacheInfo(ctx, gopts)
	if err != nil {
		return err
	}
	set, _ := inst.Set()
	if err := generate.Verify(set, inst.N()); err != nil {
		return fmt.Errorf("generated instance failed verification: %w", err)
	}
	printStats(inst.N(), len(inst.Constraints), 0, hit)

	write := pkgio.WriteInstance
	export := pkgio.ExportInstance
	if opts.json {
		write, export = pkgio.WriteJSON, pkgio.ExportJSON
	}
	if opts.output == "" {
		return write(inst, stdout)
	}
	if err := export(inst, opts.output); err != nil {
		return err
	}
	printSuccess("Instance written (%s)", gopts.Strategy)
	printFile(opts.output)
	printNextStep("Solve it", "betwixt solve "+opts.output)
	return nil
}
