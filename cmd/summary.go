package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/etnz/cadobr/dataset"
	"github.com/etnz/cadobr/identity"
	"github.com/etnz/cadobr/renderer"
	"github.com/google/subcommands"
)

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	dataset  string
	property string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display an overview of a dataset" }
func (*summaryCmd) Usage() string {
	return `cadobr summary [-dataset <dir>] [-property <matricula>]

  Displays the record counts, obligations, pendencies and the best novation
  candidates of a dataset, or the liens and timeline of one property.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dataset, "dataset", settings.DatasetDir(), "Dataset directory.")
	f.StringVar(&c.property, "property", "", "Matrícula of a property to report on.")
}

func (c *summaryCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := requireDirs(c.dataset); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	ds, err := dataset.Read(c.dataset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading dataset %q: %v\n", c.dataset, err)
		return subcommands.ExitFailure
	}

	if c.property != "" {
		pid := identity.Property(c.property)
		if pid == "" {
			fmt.Fprintf(os.Stderr, "Error: %q is not a matrícula\n", c.property)
			return subcommands.ExitUsageError
		}
		printMarkdown(renderer.PropertyMarkdown(ds, pid))
		return subcommands.ExitSuccess
	}

	title := "Dataset " + filepath.Base(c.dataset)
	if m, err := dataset.ReadManifest(c.dataset); err == nil && !m.Complete {
		title += fmt.Sprintf(" (partial, layers A to %s)", m.StopAfter)
	}
	printMarkdown(renderer.SummaryMarkdown(renderer.NewSummary(title, ds)))
	return subcommands.ExitSuccess
}
