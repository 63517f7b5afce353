// Package pkg provides the core libraries for betwixt, a toolkit for the
// non-betweenness ordering problem.
//
// # Overview
//
// An instance fixes n items and a set of constraints (A, B, C), each
// demanding that C does not lie between A and B. betwixt searches for an
// ordering of the items that satisfies every constraint, manufactures hard
// instances with a known solution, and measures how hard they are. The pkg
// directory is organized into four areas:
//
//  1. Domain: [model], [io], [generate], [oracle], [perm]
//  2. Search: [anneal], [solver]
//  3. Orchestration: [pipeline], [bench], [render]
//  4. Infrastructure: [cache], [checkpoint], [store], [config], [errors],
//     [observability], [buildinfo]
//
// # Architecture
//
// The typical data flow:
//
//	generate.Generate or io.ReadInstance
//	         ↓
//	    [model] package (instance, constraint set, ordering)
//	         ↓
//	    [solver] package (warm-restarted annealing over [anneal])
//	         ↓
//	    ordering text, checkpoint, or diagram
//
// [pipeline] wraps the generate and solve stages with caching, and [bench]
// repeats them over many seeds, recording results in a [store].
//
// # Quick Start
//
//	inst, _ := io.ImportInstance("instance.txt")
//	res, err := solver.New(solver.DefaultConfig()).Solve(ctx, inst, nil)
//	if err != nil {
//	    // res still holds the best ordering found
//	}
//	_ = io.WriteOrdering(inst, res.Ordering, io.FormatNewline, os.Stdout)
//
// # Main Packages
//
// [model] - Items, constraints in canonical form, constraint sets with
// duplicate removal and a stable fingerprint, and orderings that keep both
// the sequence and the position view.
//
// [anneal] - A generic simulated-annealing engine with an exponential
// cooling schedule. It knows nothing about orderings; states supply their
// own move, undo and energy.
//
// [solver] - The ordering search state, the move kinds (window, swap,
// adjacent, repair) and the restart driver that warm-starts each attempt
// from the previous best ordering.
//
// [generate] - Constraint generation strategies that keep the canonical
// order a solution.
//
// [oracle] - Exhaustive search over all permutations for small instances.
//
// [render] - Graphviz diagrams of an instance laid out by an ordering.
//
// [pipeline] - The generate and solve stages behind the solution cache,
// shared by every command.
//
// [bench] - Solve-rate benchmarks and constraint-count sweeps.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/solver/...             # Specific package
//	go test -run Example ./pkg/...       # Examples only
//
// [model]: https://pkg.go.dev/github.com/matzehuels/betwixt/pkg/model
// [io]: https://pkg.go.dev/github.com/matzehuels/betwixt/pkg/io
// [generate]: https://pkg.go.dev/github.com/matzehuels/betwixt/pkg/generate
// [oracle]: https://pkg.go.dev/github.com/matzehuels/betwixt/pkg/oracle
// [perm]: https://pkg.go.dev/github.com/matzehuels/betwixt/pkg/perm
// [anneal]: https://pkg.go.dev/github.com/matzehuels/betwixt/pkg/anneal
// [solver]: https://pkg.go.dev/github.com/matzehuels/betwixt/pkg/solver
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/betwixt/pkg/pipeline
// [bench]: https://pkg.go.dev/github.com/matzehuels/betwixt/pkg/bench
// [render]: https://pkg.go.dev/github.com/matzehuels/betwixt/pkg/render
// [cache]: https://pkg.go.dev/github.com/matzehuels/betwixt/pkg/cache
// [checkpoint]: https://pkg.go.dev/github.com/matzehuels/betwixt/pkg/checkpoint
// [store]: https://pkg.go.dev/github.com/matzehuels/betwixt/pkg/store
// [config]: https://pkg.go.dev/github.com/matzehuels/betwixt/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/betwixt/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/betwixt/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/betwixt/pkg/buildinfo
package pkg
