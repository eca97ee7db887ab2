package cmd

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"slices"
	"sync"

	"github.com/etnz/cadobr"
	"github.com/etnz/cadobr/bacen"
	"github.com/etnz/cadobr/monetary"
	"github.com/google/subcommands"
)

type monetaryCmd struct {
	input      string
	output     string
	pattern    string
	indexTable string
	workers    int
}

func (*monetaryCmd) Name() string     { return "monetary" }
func (*monetaryCmd) Synopsis() string { return "add the present value of every lien" }
func (*monetaryCmd) Usage() string {
	return `cadobr monetary [-input <dir>] [-output <dir>] [-index-table <csv>] [-pattern <glob>] [-workers <n>]

  Values the liens of the normalized property deeds and writes the whole tree,
  valued, into the output directory. Without an index table, liens indexed on
  TR are valued on their interest alone and say so in tr_motivo.

  See "cadobr topic monetary" for the rules.
`
}

func (c *monetaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.input, "input", settings.Paths.Normalized, "Directory of normalized documents.")
	f.StringVar(&c.output, "output", settings.Paths.Monetary, "Directory to write valued documents to.")
	f.StringVar(&c.pattern, "pattern", settings.Paths.Pattern, "Glob pattern of the document file names.")
	f.StringVar(&c.indexTable, "index-table", settings.Paths.IndexTable, "Bacen CSV of the monthly TR rates.")
	f.IntVar(&c.workers, "workers", settings.Reconcile.Workers, "Number of documents processed at once. 0 means one per CPU.")
}

func (c *monetaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := requireDirs(c.input); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	// a nil *bacen.Table must not be wrapped in the interface
	var index monetary.IndexSource
	if c.indexTable != "" {
		table, err := bacen.Load(c.indexTable)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading index table %q: %v\n", c.indexTable, err)
			return subcommands.ExitFailure
		}
		slog.Info("index table loaded", "file", c.indexTable, "months", table.Len())
		index = table
	}
	engine := monetary.NewEngine(index)

	var mu sync.Mutex
	rules := make(monetary.Report)
	res, err := cadobr.RunStage(ctx, c.input, c.output, c.pattern, c.workers, func(raw []byte, folder string) ([]byte, error) {
		out, report, err := engine.Enrich(raw, folder)
		if err != nil {
			return nil, err
		}
		mu.Lock()
		rules.Add(report)
		mu.Unlock()
		return out, nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error valuing %q: %v\n", c.input, err)
		return subcommands.ExitFailure
	}

	var computed, total int
	for _, rule := range slices.Sorted(maps.Keys(rules)) {
		total += rules[rule]
		if rule == monetary.RuleComputed {
			computed += rules[rule]
		}
		slog.Debug("valuation rule", "rule", rule, "liens", rules[rule])
	}
	fmt.Printf("Valued %d of %d liens in %d documents into %s.\n", computed, total, res.Files, c.output)
	return subcommands.ExitSuccess
}
