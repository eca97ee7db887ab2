package cmd

import (
	"flag"
	"io"

	"github.com/etnz/cadobr/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// directory flags complete with directories, file flags with files.
var (
	dirFlags  = map[string]bool{"input": true, "output": true, "normalized": true, "monetary": true, "dataset": true}
	fileFlags = map[string]string{"config": "*.toml", "index-table": "*.csv", "db": "*.db"}
)

// Completion returns the shell completion of the command line, subcommands and flags included.
func Completion() *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: flagPredictors(flag.CommandLine),
	}
	for _, c := range Commands {
		f := flag.NewFlagSet(c.Command.Name(), flag.ContinueOnError)
		f.SetOutput(io.Discard)
		c.Command.SetFlags(f)
		root.Sub[c.Command.Name()] = &complete.Command{Flags: flagPredictors(f)}
	}
	if topics, err := docs.GetAllTopics(); err == nil {
		root.Sub["topic"].Args = predict.Set(topics)
	}
	return root
}

func flagPredictors(f *flag.FlagSet) map[string]complete.Predictor {
	flags := make(map[string]complete.Predictor)
	f.VisitAll(func(fl *flag.Flag) {
		if b, ok := fl.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			flags[fl.Name] = predict.Nothing
			return
		}
		switch {
		case dirFlags[fl.Name]:
			flags[fl.Name] = predict.Dirs("*")
		case fileFlags[fl.Name] != "":
			flags[fl.Name] = predict.Files(fileFlags[fl.Name])
		case fl.Name == "stop-after":
			flags[fl.Name] = predict.Set{"A", "B", "C", "D", "E", "ALL"}
		case fl.Name == "log-level":
			flags[fl.Name] = predict.Set{"debug", "info", "warn", "error"}
		case fl.Name == "log-format":
			flags[fl.Name] = predict.Set{"text", "json"}
		default:
			flags[fl.Name] = predict.Something
		}
	})
	return flags
}
