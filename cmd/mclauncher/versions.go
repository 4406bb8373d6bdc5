package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	log "github.com/sirupsen/logrus"
)

type VersionsCommand struct {
	Config string
	Type   string
}

func (*VersionsCommand) Name() string     { return "versions" }
func (*VersionsCommand) Synopsis() string { return "list versions published upstream" }
func (*VersionsCommand) Usage() string {
	return `Usage: mclauncher versions [-c config] [-type release|snapshot|old_beta|old_alpha]

	Lists the version catalog, newest first.

Flags:
`
}

func (cmd *VersionsCommand) SetFlags(fs *flag.FlagSet) {
	fs.StringVar(&cmd.Config, "c", defaultConfigFile, "path to launcher setup config yaml file")
	fs.StringVar(&cmd.Type, "type", "", "only list versions of this type")
}

func (cmd *VersionsCommand) Execute(ctx context.Context, fs *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	env, err := buildEnv(cmd.Config)
	if err != nil {
		log.Errorf("setup: %v", err)
		return subcommands.ExitFailure
	}

	versions, err := env.catalog.Versions(ctx)
	if err != nil {
		log.Errorf("versions: %v", err)
		return subcommands.ExitFailure
	}
	release, snapshot, err := env.catalog.Latest(ctx)
	if err != nil {
		log.Errorf("versions: %v", err)
		return subcommands.ExitFailure
	}

	for _, v := range versions {
		if cmd.Type != "" && v.Type != cmd.Type {
			continue
		}
		marker := ""
		if v.ID == release || v.ID == snapshot {
			marker = " (latest)"
		}
		fmt.Printf("%-24s %s%s\n", v.ID, v.Type, marker)
	}
	return subcommands.ExitSuccess
}
