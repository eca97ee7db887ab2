// Command cadobr consolidates the extracted CAD-OBR documents into a dataset.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"

	"github.com/etnz/cadobr/cmd"
	"github.com/google/subcommands"
)

func main() {
	name := path.Base(os.Args[0])
	commander := subcommands.NewCommander(flag.CommandLine, name)
	commander.Register(commander.HelpCommand(), "help")
	commander.Register(commander.FlagsCommand(), "help")
	commander.Register(commander.CommandsCommand(), "help")

	for _, c := range cmd.Commands {
		commander.Register(c.Command, c.Group)
	}

	// answers the shell completion requests and exits, does nothing otherwise.
	cmd.Completion().Complete(name)

	flag.Parse()
	if err := cmd.Setup(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(int(subcommands.ExitUsageError))
	}
	os.Exit(int(commander.Execute(context.Background())))
}
