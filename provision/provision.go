// Package provision orchestrates the full pipeline for one launch
// request: resolve the version, materialize libraries and assets, stage
// profile mods and synthesize the process invocation. It is the only
// layer that turns typed failures into user-facing messages.
package provision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	log "github.com/sirupsen/logrus"

	"github.com/Strange-Account/go-mc-launcher/assets"
	"github.com/Strange-Account/go-mc-launcher/launch"
	"github.com/Strange-Account/go-mc-launcher/library"
	"github.com/Strange-Account/go-mc-launcher/manifest"
)

// ErrJavaUnavailable is returned when the runtime provisioner cannot
// supply an executable. The launch aborts before artifacts are fetched.
var ErrJavaUnavailable = errors.New("java runtime unavailable")

const defaultJavaMajor = 8

// JavaProvider supplies a runtime executable for a required minimum
// major version. Implementations signal "not available" with an error
// wrapping ErrJavaUnavailable; provisioning the runtime itself lives
// outside this module.
type JavaProvider interface {
	Locate(ctx context.Context, major int) (string, error)
}

// Spawner starts and detaches the synthesized process.
type Spawner interface {
	Spawn(inv *launch.Invocation) error
}

// ProfileStore exposes the active mod profile read-only: an ordered
// list of mod artifact filenames.
type ProfileStore interface {
	Mods(profile string) ([]string, error)
}

// Request carries everything one launch needs from the caller. It is
// immutable; no session state is shared between pipeline components.
type Request struct {
	VersionID    string
	RAMGigabytes int
	Username     string
	Profile      string
}

// Provisioner wires the pipeline together.
type Provisioner struct {
	Root     string // absolute host path of the install root
	Files    billy.Filesystem
	Resolver *manifest.Resolver
	Library  *library.Resolver
	Assets   *assets.Syncer
	Java     JavaProvider
	Profiles ProfileStore // optional

	ModsSource      string // directory holding installed mod files, relative to Files
	LauncherName    string
	LauncherVersion string
	ExtraFlags      []string // interpreter flags prepended to the argv
}

// Provision runs resolve, materialize, asset sync and synthesis for the
// request and returns the ready-to-spawn invocation.
func (p *Provisioner) Provision(ctx context.Context, req Request) (*launch.Invocation, error) {
	spec, err := p.Resolver.Resolve(ctx, req.VersionID)
	if err != nil {
		return nil, err
	}

	major := defaultJavaMajor
	if spec.JavaVersion != nil && spec.JavaVersion.MajorVersion > 0 {
		major = spec.JavaVersion.MajorVersion
	}
	java, err := p.Java.Locate(ctx, major)
	if err != nil {
		return nil, fmt.Errorf("locate java %d: %w", major, err)
	}

	result, err := p.Library.Materialize(ctx, spec)
	if err != nil {
		return nil, err
	}
	if err := p.Assets.Sync(ctx, spec); err != nil {
		return nil, err
	}
	if err := p.stageMods(spec, req.Profile); err != nil {
		return nil, err
	}

	classpath := make([]string, len(result.Classpath))
	for i, rel := range result.Classpath {
		classpath[i] = p.abs(rel)
	}
	nativesDir := p.abs(result.NativesDir)

	ph := p.placeholders(spec, req, nativesDir)
	sz := &launch.Synthesizer{
		Java:       java,
		MemoryGB:   req.RAMGigabytes,
		ExtraFlags: p.ExtraFlags,
	}
	inv, err := sz.Synthesize(spec, classpath, nativesDir, ph)
	if err != nil {
		return nil, err
	}
	inv.Dir = p.Root
	log.Infof("Provisioned %s for %s", spec.ID, req.Username)
	return inv, nil
}

func (p *Provisioner) placeholders(spec *manifest.VersionSpec, req Request, nativesDir string) launch.Placeholders {
	ph := launch.Placeholders{
		launch.TokenPlayerName:  req.Username,
		launch.TokenUUID:        launch.OfflineUUID(req.Username),
		launch.TokenAccessToken: "0",
		launch.TokenUserType:    "legacy",
		launch.TokenVersionName: spec.ID,
		launch.TokenVersionType: spec.Type,
		launch.TokenGameDir:     p.Root,
		launch.TokenAssetsRoot:  filepath.Join(p.Root, "assets"),
		launch.TokenNativesDir:  nativesDir,
		launch.TokenLauncher:    p.LauncherName,
		launch.TokenLauncherVer: p.LauncherVersion,
	}
	if spec.AssetIndex != nil {
		ph[launch.TokenAssetsIndex] = spec.AssetIndex.ID
	}
	return ph
}

// stageMods repopulates the mods directory from the active profile for
// loader-based versions. The profile store is never written.
func (p *Provisioner) stageMods(spec *manifest.VersionSpec, profile string) error {
	if !spec.Modded() || p.Profiles == nil {
		return nil
	}
	mods, err := p.Profiles.Mods(profile)
	if err != nil {
		return err
	}
	if err := util.RemoveAll(p.Files, "mods"); err != nil {
		return err
	}
	if err := p.Files.MkdirAll("mods", 0755); err != nil {
		return err
	}
	for _, name := range mods {
		src := path.Join(p.ModsSource, name)
		if _, err := p.Files.Stat(src); err != nil {
			log.Warnf("Profile mod %s missing from %s, skipping", name, p.ModsSource)
			continue
		}
		if err := p.copyFile(src, path.Join("mods", name)); err != nil {
			return err
		}
		log.Debugf("Staged mod %s", name)
	}
	return nil
}

func (p *Provisioner) copyFile(src, dest string) error {
	in, err := p.Files.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := p.Files.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	_, err = io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return err
}

func (p *Provisioner) abs(rel string) string {
	return filepath.Join(p.Root, filepath.FromSlash(rel))
}
