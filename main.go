// Command csolve reads a finite-domain constraint problem and searches
// for satisfying assignments, optionally minimising or maximising an
// objective, enumerating all solutions, or stopping at the first one.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rhartert/csolve/internal/config"
	"github.com/rhartert/csolve/internal/csp"
	"github.com/rhartert/csolve/internal/lang"
	"github.com/rhartert/csolve/internal/registry"
	"github.com/rhartert/csolve/internal/report"
)

const version = "1.0.0"

func input(cfg *config.Config) (io.ReadCloser, error) {
	if cfg.InputFile == "" {
		return os.Stdin, nil
	}
	return os.Open(cfg.InputFile)
}

func run(cfg *config.Config) error {
	in, err := input(cfg)
	if err != nil {
		return err
	}
	defer in.Close()

	reg := registry.New()
	prob, err := lang.Parse(in, reg)
	if err != nil {
		return err
	}

	opts := csp.Options{
		BindTrailSize:    cfg.BindSize,
		PatchTrailSize:   cfg.PatchSize,
		ArenaSize:        cfg.ArenaSize,
		ConflArenaSize:   cfg.ConflArenaSize,
		CreateConflicts:  cfg.CreateConflicts,
		PreferFailing:    cfg.PreferFailing,
		ComputeWeights:   cfg.ComputeWeights,
		Order:            cfg.Order,
		RestartFrequency: cfg.RestartFreq,
		StatsFrequency:   cfg.StatsFreq,
		MaxWorkers:       cfg.Workers,
		Objective:        prob.Objective,
		ObjectiveVar:     prob.ObjectiveVar,
	}

	ctx := context.Background()
	if cfg.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.TimeLimit)*time.Second)
		defer cancel()
	}

	rep := report.New(os.Stdout)
	solver := csp.NewSolver(ctx, opts, reg.Vars(), prob.Root, rep.Solution, rep.Stats)

	// Initial pass: normalise the root, attach clause lists, propagate
	// the root to a fixpoint, and check that every variable ended up
	// with a bounded domain. Clause lists go on first so that a
	// contradiction discovered during the initial propagation can
	// already learn a conflict clause.
	csp.Normalize(prob.Root, solver.Patches, solver.Arena)
	reg.BindClauses(prob.Root)
	if !solver.PropagateRoot() {
		rep.Shutdown(false, 0)
		return nil
	}
	if err := reg.Validate(); err != nil {
		return err
	}
	if cfg.ComputeWeights {
		reg.Weigh(prob.Root)
		for _, v := range reg.Vars() {
			solver.Heap.Update(v)
		}
	}

	solver.Solve()
	solver.Wait()
	rep.Shutdown(solver.TimedOut(), solver.Solutions())
	return nil
}

func main() {
	cfg, err := config.ParseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(1)
	}
	if cfg.Help {
		config.PrintUsage(os.Stdout)
		return
	}
	if cfg.Version {
		fmt.Println("csolve " + version)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			if fe, ok := r.(csp.FatalError); ok {
				fmt.Fprintf(os.Stderr, "csolve: %s\n", fe.Error())
				os.Exit(1)
			}
			panic(r)
		}
	}()

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "csolve: %s\n", err)
		os.Exit(1)
	}
}
