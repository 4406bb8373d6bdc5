package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
	log "github.com/sirupsen/logrus"
)

const (
	programName       = "mclauncher"
	defaultConfigFile = "launcher-setup-config.yaml"
)

func main() {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	verbose := fs.Bool("v", false, "enable debug logging")

	cdr := subcommands.NewCommander(fs, programName)
	cdr.Register(&InstallCommand{}, "")
	cdr.Register(&LaunchCommand{}, "")
	cdr.Register(&VersionsCommand{}, "")
	cdr.Register(cdr.HelpCommand(), "help")
	cdr.Register(cdr.FlagsCommand(), "help")
	cdr.Register(cdr.CommandsCommand(), "help")

	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	ctx := context.Background()
	switch cdr.Execute(ctx) {
	case subcommands.ExitFailure:
		os.Exit(1)
	case subcommands.ExitUsageError:
		os.Exit(2)
	}
}
