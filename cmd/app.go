// Package cmd implements the cadobr command line.
package cmd

import (
	"flag"
	"fmt"

	"github.com/etnz/cadobr/config"
	"github.com/etnz/cadobr/logger"
	"github.com/google/subcommands"
)

// Commands lists the subcommands, by group, in pipeline order.
var Commands = []struct {
	Group   string
	Command subcommands.Command
}{
	{"pipeline", &normalizeCmd{}},
	{"pipeline", &monetaryCmd{}},
	{"pipeline", &reconcileCmd{}},
	{"dataset", &exportCmd{}},
	{"dataset", &summaryCmd{}},
	{"help", &topicCmd{}},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFile = flag.String("config", "", "Configuration file. Defaults to "+config.DefaultFile+" when present.")
	logLevel   = flag.String("log-level", "", "Log level: debug, info, warn or error. Overrides the configuration.")
	logFormat  = flag.String("log-format", "", "Log format: text or json. Overrides the configuration.")
)

// settings are the configuration values, used as flag defaults by the subcommands.
var settings = config.Default()

// Setup loads the configuration and installs the logger. It must be called
// after the global flags are parsed and before a subcommand runs.
func Setup() error {
	c, err := config.Load(*configFile)
	if err != nil {
		return err
	}
	if *logLevel != "" {
		c.Log.Level = *logLevel
	}
	if *logFormat != "" {
		c.Log.Format = *logFormat
	}
	if err := logger.Init(logger.Config{Level: c.Log.Level, Format: c.Log.Format}); err != nil {
		return fmt.Errorf("invalid log configuration: %w", err)
	}
	settings = c
	return nil
}
