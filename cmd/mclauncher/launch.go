package main

import (
	"context"
	"flag"

	"github.com/google/subcommands"
	log "github.com/sirupsen/logrus"

	"github.com/Strange-Account/go-mc-launcher/provision"
)

type LaunchCommand struct {
	Config   string
	Version  string
	Username string
	Ram      int
}

func (*LaunchCommand) Name() string     { return "launch" }
func (*LaunchCommand) Synopsis() string { return "provision and start the game" }
func (*LaunchCommand) Usage() string {
	return `Usage: mclauncher launch [-c config] [-version id] [-username name] [-ram gb]

	Provisions the requested version and starts it detached.

Flags:
`
}

func (cmd *LaunchCommand) SetFlags(fs *flag.FlagSet) {
	fs.StringVar(&cmd.Config, "c", defaultConfigFile, "path to launcher setup config yaml file")
	fs.StringVar(&cmd.Version, "version", "", "version id to launch (overrides config)")
	fs.StringVar(&cmd.Username, "username", "", "player name (overrides config)")
	fs.IntVar(&cmd.Ram, "ram", 0, "heap allocation in gigabytes (overrides config)")
}

func (cmd *LaunchCommand) Execute(ctx context.Context, fs *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	env, err := buildEnv(cmd.Config)
	if err != nil {
		log.Errorf("setup: %v", err)
		return subcommands.ExitFailure
	}
	req := env.request(cmd.Version, cmd.Username, cmd.Ram)
	if req.VersionID == "" {
		log.Error("no version id given; use -version or set launch.version in the config")
		return subcommands.ExitUsageError
	}

	greeting(env, req)

	inv, err := env.prov.Provision(ctx, req)
	if err != nil {
		log.Errorf("launch %s: %v", req.VersionID, err)
		return subcommands.ExitFailure
	}

	var spawner provision.Spawner = provision.ExecSpawner{}
	if err := spawner.Spawn(inv); err != nil {
		log.Errorf("launch %s: %v", req.VersionID, err)
		return subcommands.ExitFailure
	}
	log.Infof("Launched %s for %s.", req.VersionID, req.Username)
	return subcommands.ExitSuccess
}

// Greeting screen
func greeting(env *env, req provision.Request) {
	log.Info(":::::::::::::::::::::::::::::::::::::::::::::::::::::::::::::::")
	log.Infof("   %s %s", env.cfg.Launcher.Name, env.cfg.Launcher.Version)
	log.Info(":::::::::::::::::::::::::::::::::::::::::::::::::::::::::::::::")
	log.Infof("You are playing %s as %s", req.VersionID, req.Username)
	log.Info("Starting to install/launch the game, lean back!")
	log.Info(":::::::::::::::::::::::::::::::::::::::::::::::::::::::::::::::")
}
