package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/betwixt/pkg/bench"
)

type sweepOpts struct {
	benchOpts
	kmin, kmax, kstep int
	reps              int
	exhaustive        bool
}

func (c *CLI) sweepCommand() *cobra.Command {
	var opts sweepOpts

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Find the constraint count that is hardest to solve",
		Long: `Sweep generates --reps instances at every constraint count from --kmin to
--kmax and measures the mean time to the first solution. With --exhaustive it
also counts every satisfying ordering with the oracle, which limits n.

The reported ratio k/n is a good value for generator.ratio in the config.`,
		Example: `  betwixt sweep -n 10 --kmin 10 --kmax 40 --exhaustive
  betwixt sweep -n 30 --kmin 40 --kmax 100 --kstep 5 --reps 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSweep(cmd.Context(), cmd, &opts)
		},
	}

	addBenchFlags(cmd, &opts.benchOpts)
	f := cmd.Flags()
	f.IntVar(&opts.kmin, "kmin", 1, "smallest constraint count")
	f.IntVar(&opts.kmax, "kmax", 0, "largest constraint count (default 4·n)")
	f.IntVar(&opts.kstep, "kstep", 1, "constraint count increment")
	f.IntVar(&opts.reps, "reps", 5, "instances per constraint count")
	f.BoolVar(&opts.exhaustive, "exhaustive", false, "count solutions with the oracle")
	return cmd
}

func (c *CLI) runSweep(ctx context.Context, cmd *cobra.Command, opts *sweepOpts) error {
	r, closeStore, err := c.newBenchRunner(ctx, cmd, &opts.benchOpts)
	if err != nil {
		return err
	}
	defer closeStore()

	kmax := opts.kmax
	if kmax == 0 {
		kmax = 4 * opts.n
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Sweeping k=%d..%d (n=%d)...", opts.kmin, kmax, opts.n))
	spinner.Start()
	rep, err := r.Sweep(ctx, bench.SweepOptions{
		N:          opts.n,
		KMin:       opts.kmin,
		KMax:       kmax,
		KStep:      opts.kstep,
		Reps:       opts.reps,
		Seed:       opts.seed,
		Exhaustive: opts.exhaustive,
	})
	spinner.Stop()
	if rep == nil {
		return err
	}

	printSweep(rep)
	if err != nil {
		printWarning("Results not stored: %v", err)
	}
	return nil
}

func printSweep(rep *bench.SweepReport) {
	rows := make([][]string, len(rep.Points))
	for i, p := range rep.Points {
		k := fmt.Sprint(p.K)
		if p.K == rep.BestK {
			k = StyleNumber.Render(k + " " + iconArrow)
		}
		solutions := "—"
		if p.MeanSolutions >= 0 {
			solutions = fmt.Sprintf("%.1f", p.MeanSolutions)
		}
		rows[i] = []string{
			k,
			p.MeanTime.Round(time.Microsecond).String(),
			fmt.Sprintf("%.0f%%", 100*p.SuccessRate),
			solutions,
		}
	}
	printTable([]string{"k", "mean time", "success", "solutions"}, rows)

	if len(rep.Points) == 0 {
		printWarning("No constraint count could be generated")
		return
	}
	printKeyValue("hardest k", StyleNumber.Render(fmt.Sprint(rep.BestK)))
	printKeyValue("ratio", StyleValue.Render(fmt.Sprintf("%.3f", rep.Ratio)))
	printDetail("batch %s · %s", rep.BatchID, rep.Duration.Round(time.Millisecond))
}
