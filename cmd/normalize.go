package cmd

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/etnz/cadobr"
	"github.com/google/subcommands"
)

type normalizeCmd struct {
	input   string
	output  string
	pattern string
	workers int
}

func (*normalizeCmd) Name() string     { return "normalize" }
func (*normalizeCmd) Synopsis() string { return "rewrite extracted documents in canonical form" }
func (*normalizeCmd) Usage() string {
	return `cadobr normalize [-input <dir>] [-output <dir>] [-pattern <glob>] [-workers <n>]

  Rewrites every document of the input tree into the output tree: amounts as
  "93.354,27", dates as "2001-02-10", CPF, CNPJ and document numbers as digits.
  Documents that are not valid JSON are copied unchanged.
`
}

func (c *normalizeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.input, "input", settings.Paths.Raw, "Directory of extracted documents.")
	f.StringVar(&c.output, "output", settings.Paths.Normalized, "Directory to write normalized documents to.")
	f.StringVar(&c.pattern, "pattern", settings.Paths.Pattern, "Glob pattern of the document file names.")
	f.IntVar(&c.workers, "workers", settings.Reconcile.Workers, "Number of documents processed at once. 0 means one per CPU.")
}

func (c *normalizeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := requireDirs(c.input); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	var mu sync.Mutex
	var total cadobr.NormalizeStats
	res, err := cadobr.RunStage(ctx, c.input, c.output, c.pattern, c.workers, func(raw []byte, folder string) ([]byte, error) {
		out, stats, err := cadobr.Normalize(raw, folder)
		if err != nil {
			return nil, err
		}
		mu.Lock()
		total.Add(stats)
		mu.Unlock()
		return out, nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error normalizing %q: %v\n", c.input, err)
		return subcommands.ExitFailure
	}
	slog.Info("normalize done", "files", res.Files, "failed", len(res.Failed),
		"dates", total.Dates, "tax_ids", total.TaxIDs, "numbers", total.Numbers, "liens", total.Liens, "sales", total.Sales)

	fmt.Printf("Normalized %d documents into %s (%d copied unchanged).\n", res.Files-len(res.Failed), c.output, len(res.Failed))
	return subcommands.ExitSuccess
}

// requireDirs checks that every path is an existing directory.
func requireDirs(paths ...string) error {
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("invalid directory %q: %w", p, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("invalid directory %q: not a directory", p)
		}
	}
	return nil
}
