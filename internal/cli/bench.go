package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/betwixt/pkg/bench"
	"github.com/matzehuels/betwixt/pkg/generate"
	"github.com/matzehuels/betwixt/pkg/store"
)

// benchOpts holds the flags shared by bench and sweep.
type benchOpts struct {
	strategy string
	n        int
	seed     uint64
	workers  int
	noStore  bool

	k     int
	ratio float64
	runs  int
}

func (c *CLI) benchCommand() *cobra.Command {
	var opts benchOpts

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure the solve rate on generated instances",
		Long: `Bench generates --runs instances of n items and k constraints, solves each
with a random starting ordering, and reports the success rate and the mean
time to solution. Results are recorded in the configured store.`,
		Example: `  betwixt bench -n 20 --runs 100
  betwixt bench -n 30 -k 80 --strategy balanced --workers 4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBench(cmd.Context(), cmd, &opts)
		},
	}

	addBenchFlags(cmd, &opts)
	cmd.Flags().IntVarP(&opts.k, "constraints", "k", 0, "constraints per instance (default ratio·n + 1)")
	cmd.Flags().Float64Var(&opts.ratio, "ratio", 0, "constraints per item when -k is not given")
	cmd.Flags().IntVar(&opts.runs, "runs", 20, "number of instances")

	cmd.AddCommand(c.historyCommand())
	return cmd
}

func addBenchFlags(cmd *cobra.Command, opts *benchOpts) {
	f := cmd.Flags()
	f.StringVarP(&opts.strategy, "strategy", "s", "", "generation strategy (default from config)")
	f.IntVarP(&opts.n, "items", "n", 20, "number of items")
	f.Uint64Var(&opts.seed, "seed", 0, "seed of the first instance (0 = from clock)")
	f.IntVarP(&opts.workers, "workers", "w", 0, "concurrent solves (default GOMAXPROCS)")
	f.BoolVar(&opts.noStore, "no-store", false, "do not record results")
	_ = cmd.RegisterFlagCompletionFunc("strategy", fixedCompletion(generate.Strategies()...))
}

// newBenchRunner builds a runner from the config and the shared flags.
// The returned close function releases the store.
func (c *CLI) newBenchRunner(ctx context.Context, cmd *cobra.Command, opts *benchOpts) (*bench.Runner, func(), error) {
	name := c.Config.Generator.Strategy
	if cmd.Flags().Changed("strategy") {
		name = opts.strategy
	}
	strategy, err := generate.ParseStrategy(name)
	if err != nil {
		return nil, nil, err
	}

	r := bench.NewRunner(c.Config.Solver, strategy, loggerFromContext(ctx))
	r.Workers = opts.workers
	closeFn := func() {}
	if !opts.noStore {
		s, err := c.openStore(ctx)
		if err != nil {
			return nil, nil, err
		}
		if s != nil {
			r.Store = s
			closeFn = func() { _ = s.Close() }
		}
	}
	return r, closeFn, nil
}

func (c *CLI) runBench(ctx context.Context, cmd *cobra.Command, opts *benchOpts) error {
	r, closeStore, err := c.newBenchRunner(ctx, cmd, opts)
	if err != nil {
		return err
	}
	defer closeStore()

	k := opts.k
	if k == 0 {
		ratio := c.Config.Generator.Ratio
		if cmd.Flags().Changed("ratio") {
			ratio = opts.ratio
		}
		k = generate.ConstraintsFor(opts.n, ratio)
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Solving %d instances (n=%d, k=%d)...", opts.runs, opts.n, k))
	spinner.Start()
	rep, err := r.Run(ctx, bench.Options{N: opts.n, K: k, Runs: opts.runs, Seed: opts.seed})
	spinner.Stop()
	if rep == nil {
		return err
	}

	printSummary(rep.Summary)
	printDetail("batch %s · %s", rep.BatchID, rep.Duration.Round(time.Millisecond))
	if err != nil {
		printWarning("Results not stored: %v", err)
	}
	return nil
}

func (c *CLI) historyCommand() *cobra.Command {
	var (
		filter store.Filter
		runs   bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded benchmark results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			if s == nil {
				return fmt.Errorf("no result store configured")
			}
			defer s.Close()

			recs, err := s.List(ctx, filter)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				printInfo("No recorded results")
				return nil
			}
			if runs {
				printRecords(recs)
				return nil
			}
			printSummary(store.Summarize(recs))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&filter.BatchID, "batch", "", "only this batch")
	f.StringVar(&filter.Kind, "kind", "", "only bench or sweep records")
	f.IntVarP(&filter.N, "items", "n", 0, "only instances of this size")
	f.IntVar(&filter.Limit, "limit", 0, "newest records to read (0 = all)")
	f.BoolVar(&runs, "runs", false, "list individual runs instead of summaries")
	return cmd
}

func printSummary(sums []store.Summary) {
	rows := make([][]string, len(sums))
	for i, s := range sums {
		rate := fmt.Sprintf("%.1f%%", 100*s.SuccessRate())
		if s.SuccessRate() < 1 {
			rate = StyleWarning.Render(rate)
		} else {
			rate = StyleSuccess.Render(rate)
		}
		solutions := "—"
		if s.MeanSolutions >= 0 {
			solutions = fmt.Sprintf("%.1f", s.MeanSolutions)
		}
		rows[i] = []string{
			s.Strategy,
			fmt.Sprint(s.N),
			fmt.Sprint(s.K),
			fmt.Sprintf("%d/%d", s.Solved, s.Runs),
			rate,
			s.MeanDuration.Round(time.Millisecond).String(),
			fmt.Sprintf("%.1f", s.MeanAttempts),
			solutions,
		}
	}
	printTable([]string{"strategy", "n", "k", "solved", "rate", "mean time", "attempts", "solutions"}, rows)
}

func printRecords(recs []store.Record) {
	rows := make([][]string, len(recs))
	for i, r := range recs {
		status := StyleSuccess.Render(iconSuccess)
		if !r.Solved {
			status = StyleError.Render(fmt.Sprintf("%s %d", iconError, r.Energy))
		}
		rows[i] = []string{
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Kind,
			r.Strategy,
			fmt.Sprint(r.N),
			fmt.Sprint(r.K),
			status,
			fmt.Sprint(r.Attempts),
			r.Duration.Round(time.Millisecond).String(),
		}
	}
	printTable([]string{"time", "kind", "strategy", "n", "k", "solved", "attempts", "duration"}, rows)
}
