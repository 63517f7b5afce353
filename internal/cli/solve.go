package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/betwixt/pkg/io"
	"github.com/matzehuels/betwixt/pkg/model"
	"github.com/matzehuels/betwixt/pkg/pipeline"
	"github.com/matzehuels/betwixt/pkg/solver"
)

// maxViolatedShown caps the violated constraints listed after a failed solve.
const maxViolatedShown = 10

// solveOpts holds the command-line flags for the solve command.
// Solver flags override the config file only when set explicitly.
type solveOpts struct {
	output     string // ordering output file (default stdout)
	format     string // "newline" or "space"
	start      string // ordering file to start from
	checkpoint string // checkpoint file, resumed if present
	dir        string // solve every instance in this directory
	outDir     string // output directory for --dir
	json       bool   // input is JSON
	tui        bool   // interactive progress display
	noCache    bool
	refresh    bool
	workers    int

	seed     uint64
	moves    []string
	window   int
	attempts int
	steps    int
	timeout  time.Duration
	verify   bool
}

func (c *CLI) solveCommand() *cobra.Command {
	var opts solveOpts

	cmd := &cobra.Command{
		Use:   "solve [file]",
		Short: "Find an ordering that satisfies every constraint",
		Long: `Solve reads an instance (n, k, then k lines "A B C") from a file or stdin
and searches for an ordering in which no C lies between its A and B.

The ordering is written to stdout, one item per line by default. The command
exits non-zero if no satisfying ordering was found within the attempt budget.`,
		Example: `  betwixt solve instance.txt
  betwixt generate -n 20 | betwixt solve --format space
  betwixt solve --dir inputs/ --out-dir solutions/`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.solverConfig(cmd, &opts)
			if err != nil {
				return err
			}
			if opts.dir != "" {
				if len(args) > 0 {
					return fmt.Errorf("--dir cannot be combined with an input file")
				}
				return c.runSolveDir(cmd.Context(), cfg, &opts)
			}
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			return c.runSolve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), path, cfg, &opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "write the ordering to a file instead of stdout")
	f.StringVarP(&opts.format, "format", "f", "", "ordering layout: newline (default), space")
	f.StringVar(&opts.start, "start", "", "ordering file to start the first attempt from")
	f.StringVar(&opts.checkpoint, "checkpoint", "", "save the best ordering after each attempt and resume from it")
	f.StringVar(&opts.dir, "dir", "", "solve every instance in a directory, stopping at the first failure")
	f.StringVar(&opts.outDir, "out-dir", "solutions", "output directory for --dir")
	f.BoolVar(&opts.json, "json", false, "read the instance as JSON")
	f.BoolVar(&opts.tui, "tui", false, "show live progress")
	f.BoolVar(&opts.noCache, "no-cache", false, "disable the solution cache")
	f.BoolVar(&opts.refresh, "refresh", false, "ignore cached solutions")
	f.IntVarP(&opts.workers, "workers", "w", 1, "independent solves to run in parallel")
	f.Uint64Var(&opts.seed, "seed", 0, "random seed (0 = from clock)")
	f.StringSliceVar(&opts.moves, "moves", nil, "comma-separated move kinds: "+strings.Join(moveNames(), ", "))
	f.IntVar(&opts.window, "window", 0, "window length for the window move")
	f.IntVar(&opts.attempts, "attempts", 0, "maximum annealing attempts")
	f.IntVar(&opts.steps, "steps", 0, "steps per attempt")
	f.DurationVar(&opts.timeout, "timeout", 0, "wall-clock limit for the whole solve")
	f.BoolVar(&opts.verify, "verify", false, "recompute the energy after every step (slow)")
	_ = cmd.RegisterFlagCompletionFunc("format", fixedCompletion(string(pkgio.FormatNewline), string(pkgio.FormatSpace)))
	_ = cmd.RegisterFlagCompletionFunc("moves", fixedCompletion(moveNames()...))

	return cmd
}

func moveNames() []string {
	moves := solver.Moves()
	names := make([]string, len(moves))
	for i, m := range moves {
		names[i] = string(m)
	}
	return names
}

// solverConfig applies explicitly set flags over the configured solver.
func (c *CLI) solverConfig(cmd *cobra.Command, opts *solveOpts) (solver.Config, error) {
	cfg := c.Config.Solver
	f := cmd.Flags()
	if f.Changed("seed") {
		cfg.Seed = opts.seed
	}
	if f.Changed("moves") {
		moves, err := solver.ParseMoves(opts.moves)
		if err != nil {
			return cfg, err
		}
		cfg.Moves = moves
	}
	if f.Changed("window") {
		cfg.Window = opts.window
	}
	if f.Changed("attempts") {
		cfg.MaxAttempts = opts.attempts
	}
	if f.Changed("steps") {
		cfg.Steps = opts.steps
	}
	if f.Changed("timeout") {
		cfg.Timeout = opts.timeout
	}
	if f.Changed("verify") {
		cfg.Verify = opts.verify
	}
	return cfg, cfg.Validate()
}

func (c *CLI) outputFormat(flag string) (pkgio.Format, error) {
	if flag == "" {
		flag = c.Config.Output.Format
	}
	return pkgio.ParseFormat(flag)
}

func (c *CLI) runSolve(ctx context.Context, stdin io.Reader, stdout io.Writer, path string, cfg solver.Config, opts *solveOpts) error {
	logger := loggerFromContext(ctx)
	format, err := c.outputFormat(opts.format)
	if err != nil {
		return err
	}
	inst, err := readInstance(stdin, path, opts.json)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	sopts := pipeline.SolveOptions{
		Config:     cfg,
		Checkpoint: opts.checkpoint,
		Workers:    opts.workers,
		Refresh:    opts.refresh,
		Logger:     logger,
	}
	if opts.start != "" {
		start, err := pkgio.ImportOrdering(inst, opts.start)
		if err != nil {
			return err
		}
		sopts.Start = &start
	}

	prog := newProgress(logger)
	var (
		res *solver.Result
		hit bool
	)
	if opts.tui {
		res, hit, err = runSolveTUI(ctx, runner, inst, sopts)
	} else {
		sl := newSolveLogger(logger, cfg.MaxAttempts)
		sopts.OnProgress = sl.onProgress
		sopts.OnAttempt = sl.onAttempt
		res, hit, err = runner.SolveWithCacheInfo(ctx, inst, sopts)
	}
	if res == nil {
		return err
	}

	printStats(inst.N(), res.Input, res.Duplicates(), hit)
	if err != nil {
		reportFailure(inst, res)
		return err
	}
	if !hit {
		prog.done(fmt.Sprintf("Solved %d items in %d attempts", inst.N(), res.Attempts))
	}

	if opts.output == "" {
		return pkgio.WriteOrdering(inst, res.Ordering, format, stdout)
	}
	if err := pkgio.ExportOrdering(inst, res.Ordering, format, opts.output); err != nil {
		return err
	}
	printSuccess("Ordering written")
	printFile(opts.output)
	return nil
}

// runSolveDir solves every regular file in opts.dir and writes each
// ordering to opts.outDir under the input's base name with an .out
// extension. It stops at the first instance that fails.
func (c *CLI) runSolveDir(ctx context.Context, cfg solver.Config, opts *solveOpts) error {
	logger := loggerFromContext(ctx)
	format, err := c.outputFormat(opts.format)
	if err != nil {
		return err
	}
	entries, err := os.ReadDir(opts.dir)
	if err != nil {
		return fmt.Errorf("read input directory: %w", err)
	}
	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	solved := 0
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		in := filepath.Join(opts.dir, e.Name())
		inst, err := readInstance(nil, in, opts.json)
		if err != nil {
			return fmt.Errorf("%s: %w", e.Name(), err)
		}

		res, hit, err := runner.SolveWithCacheInfo(ctx, inst, pipeline.SolveOptions{
			Config:  cfg,
			Workers: opts.workers,
			Refresh: opts.refresh,
			Logger:  logger,
		})
		if err != nil {
			if res != nil {
				reportFailure(inst, res)
			}
			return fmt.Errorf("%s: %w", e.Name(), err)
		}

		out := filepath.Join(opts.outDir, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))+".out")
		if err := pkgio.ExportOrdering(inst, res.Ordering, format, out); err != nil {
			return err
		}
		solved++
		status := iconFresh
		if hit {
			status = iconCached
		}
		printSuccess("%s %s", e.Name(), StyleDim.Render(fmt.Sprintf("(%d items, %s)", inst.N(), status)))
	}
	prog.done(fmt.Sprintf("Solved %d instances", solved))
	return nil
}

// readInstance loads an instance from path, or from stdin when path is
// empty or "-". JSON is selected by flag or a .json extension.
func readInstance(stdin io.Reader, path string, asJSON bool) (*model.Instance, error) {
	if path == "" || path == "-" {
		if stdin == nil {
			stdin = os.Stdin
		}
		if asJSON {
			return pkgio.ReadJSON(stdin)
		}
		return pkgio.ReadInstance(stdin)
	}
	if asJSON || strings.EqualFold(filepath.Ext(path), ".json") {
		return pkgio.ImportJSON(path)
	}
	return pkgio.ImportInstance(path)
}

// reportFailure prints the best energy of an unsolved result and the
// first violated constraints.
func reportFailure(inst *model.Instance, res *solver.Result) {
	printError("No satisfying ordering: best energy %s after %d attempts",
		StyleError.Render(fmt.Sprint(res.Energy)), res.Attempts)
	violated := inst.Violated(res.Ordering)
	for i, v := range violated {
		if i == maxViolatedShown {
			printDetail("... and %d more", len(violated)-i)
			break
		}
		printDetail("%s lies between %s and %s", inst.Name(v.C), inst.Name(v.A), inst.Name(v.B))
	}
}
