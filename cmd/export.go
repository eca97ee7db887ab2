package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/cadobr/dataset"
	"github.com/google/subcommands"
)

type exportCmd struct {
	dataset string
	db      string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "copy a dataset into a SQLite database" }
func (*exportCmd) Usage() string {
	return `cadobr export [-dataset <dir>] -db <file>

  Copies the nine collections of a dataset into a SQLite database, one table
  per collection. The tables of an existing database are replaced.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dataset, "dataset", settings.DatasetDir(), "Dataset directory.")
	f.StringVar(&c.db, "db", "", "SQLite database file to write.")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.db == "" {
		fmt.Fprintln(os.Stderr, "Error: -db is required")
		return subcommands.ExitUsageError
	}
	if err := requireDirs(c.dataset); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	ds, err := dataset.Read(c.dataset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading dataset %q: %v\n", c.dataset, err)
		return subcommands.ExitFailure
	}

	store, err := dataset.Open(c.db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening %q: %v\n", c.db, err)
		return subcommands.ExitFailure
	}
	defer store.Close()
	if err := store.Export(ctx, ds); err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting to %q: %v\n", c.db, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Exported %s into %s\n", c.dataset, store.Path())
	return subcommands.ExitSuccess
}
