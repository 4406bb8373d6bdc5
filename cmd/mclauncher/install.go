package main

import (
	"context"
	"flag"
	"time"

	"github.com/google/subcommands"
	log "github.com/sirupsen/logrus"

	"github.com/Strange-Account/go-mc-launcher/config"
)

type InstallCommand struct {
	Config  string
	Version string
	Force   bool
}

func (*InstallCommand) Name() string     { return "install" }
func (*InstallCommand) Synopsis() string { return "provision a version without starting it" }
func (*InstallCommand) Usage() string {
	return `Usage: mclauncher install [-c config] [-version id] [-force]

	Resolves the version, downloads all libraries, natives and assets
	and verifies every artifact. Safe to re-run; verified files are
	never downloaded twice.

Flags:
`
}

func (cmd *InstallCommand) SetFlags(fs *flag.FlagSet) {
	fs.StringVar(&cmd.Config, "c", defaultConfigFile, "path to launcher setup config yaml file")
	fs.StringVar(&cmd.Version, "version", "", "version id to install (overrides config)")
	fs.BoolVar(&cmd.Force, "force", false, "install even if the lock file says it is current")
}

func (cmd *InstallCommand) Execute(ctx context.Context, fs *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	env, err := buildEnv(cmd.Config)
	if err != nil {
		log.Errorf("setup: %v", err)
		return subcommands.ExitFailure
	}
	req := env.request(cmd.Version, "", 0)
	if req.VersionID == "" {
		log.Error("no version id given; use -version or set launch.version in the config")
		return subcommands.ExitUsageError
	}

	lockfile := config.NewLockFile()
	if err := lockfile.Read(env.root); err != nil {
		log.Errorf("read lock file: %v", err)
		return subcommands.ExitFailure
	}
	if !cmd.Force && !lockfile.CheckShouldInstall(req.VersionID) {
		log.Infof("Version %s is already installed, use -force to reinstall.", req.VersionID)
		return subcommands.ExitSuccess
	}

	inv, err := env.prov.Provision(ctx, req)
	if err != nil {
		log.Errorf("install %s: %v", req.VersionID, err)
		return subcommands.ExitFailure
	}
	log.Debugf("Synthesized command: %s", inv)

	spec, err := env.prov.Resolver.Resolve(ctx, req.VersionID)
	if err != nil {
		log.Errorf("install %s: %v", req.VersionID, err)
		return subcommands.ExitFailure
	}
	lockfile.Installed = true
	lockfile.Version = spec.ID
	lockfile.Loader = spec.Loader
	lockfile.InstalledAt = time.Now()
	if err := lockfile.Write(env.root); err != nil {
		log.Errorf("write lock file: %v", err)
		return subcommands.ExitFailure
	}
	log.Infof("Installed %s.", req.VersionID)
	return subcommands.ExitSuccess
}
