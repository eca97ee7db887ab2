package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/cadobr"
	"github.com/etnz/cadobr/dataset"
	"github.com/etnz/cadobr/logger"
	"github.com/etnz/cadobr/reconcile"
	"github.com/google/subcommands"
)

type reconcileCmd struct {
	normalized string
	monetary   string
	output     string
	dataset    string
	pattern    string
	stopAfter  string
	window     int
	workers    int
	checkpoint bool
}

func (*reconcileCmd) Name() string     { return "reconcile" }
func (*reconcileCmd) Synopsis() string { return "consolidate the documents into a dataset" }
func (*reconcileCmd) Usage() string {
	return `cadobr reconcile [-normalized <dir>] [-monetary <dir>] [-output <dir>] [-dataset <name>]
                 [-stop-after A|B|C|D|E|ALL] [-window <days>] [-checkpoint]

  Runs the reconciler layers A to E on the normalized and valued trees and
  writes the dataset under <output>/<dataset>.

  Exit status is 2 when an input directory is missing, 1 when a complete run
  misses a collection or breaks an identity invariant.
`
}

func (c *reconcileCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.normalized, "normalized", settings.Paths.Normalized, "Directory of normalized documents.")
	f.StringVar(&c.monetary, "monetary", settings.Paths.Monetary, "Directory of valued documents.")
	f.StringVar(&c.output, "output", settings.Paths.Output, "Parent directory of the dataset.")
	f.StringVar(&c.dataset, "dataset", settings.Paths.Dataset, "Name of the dataset directory.")
	f.StringVar(&c.pattern, "pattern", settings.Paths.Pattern, "Glob pattern of the document file names.")
	f.StringVar(&c.stopAfter, "stop-after", "ALL", "Last layer to run: A, B, C, D, E or ALL.")
	f.IntVar(&c.window, "window", settings.Reconcile.NovationWindowDays, "Novation window in days.")
	f.IntVar(&c.workers, "workers", settings.Reconcile.Workers, "Number of documents parsed at once. 0 means one per CPU.")
	f.BoolVar(&c.checkpoint, "checkpoint", false, "Also write the dataset after each layer, under checkpoints/<layer>.")
}

func (c *reconcileCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	stop, err := reconcile.ParseStage(c.stopAfter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.window <= 0 {
		fmt.Fprintf(os.Stderr, "Error: -window must be positive, got %d\n", c.window)
		return subcommands.ExitUsageError
	}
	dir := filepath.Join(c.output, c.dataset)

	manifest := dataset.NewManifest()
	manifest.Normalized = c.normalized
	manifest.Monetary = c.monetary
	manifest.Window = c.window
	ctx = logger.WithRunID(ctx, manifest.RunID)
	log := logger.WithContext(ctx)

	r := &reconcile.Reconciler{
		Normalized: c.normalized,
		Monetary:   c.monetary,
		Pattern:    c.pattern,
		Window:     c.window,
		Workers:    c.workers,
		Logger:     log,
	}
	if c.checkpoint {
		r.Checkpoint = func(s reconcile.Stage, ds *cadobr.Dataset) error {
			return dataset.Write(filepath.Join(dir, "checkpoints", s.String()), ds)
		}
	}

	ds, err := r.Run(ctx, stop)
	switch {
	case errors.Is(err, reconcile.ErrMissingInput):
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error reconciling: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := dataset.Write(dir, ds); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing dataset: %v\n", err)
		return subcommands.ExitFailure
	}
	manifest.Finish(ds, stop.String(), stop == reconcile.All)
	if err := dataset.WriteManifest(dir, manifest); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing dataset: %v\n", err)
		return subcommands.ExitFailure
	}
	log.Info("dataset written", "dir", dir, "stop_after", stop.String())

	if stop != reconcile.All {
		fmt.Printf("Layers A to %s done. Partial dataset in %s\n", stop, dir)
		return subcommands.ExitSuccess
	}
	fmt.Printf("Layers A to E done. Dataset in %s\n", dir)
	if missing := dataset.Missing(dir); len(missing) > 0 {
		fmt.Fprintf(os.Stderr, "Missing collections: %s\n", strings.Join(missing, ", "))
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
