package main

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"

	"github.com/Strange-Account/go-mc-launcher/assets"
	"github.com/Strange-Account/go-mc-launcher/config"
	"github.com/Strange-Account/go-mc-launcher/fetcher"
	"github.com/Strange-Account/go-mc-launcher/library"
	"github.com/Strange-Account/go-mc-launcher/manifest"
	"github.com/Strange-Account/go-mc-launcher/provision"
)

// env is everything a command needs, wired from one setup file.
type env struct {
	cfg     *config.ConfigFile
	root    string
	catalog *manifest.Catalog
	prov    *provision.Provisioner
}

func buildEnv(configPath string) (*env, error) {
	cfg, err := config.Read(configPath)
	if os.IsNotExist(err) {
		cfg = config.Default()
	} else if err != nil {
		return nil, err
	}

	root, err := filepath.Abs(cfg.Install.RootPath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(root, os.ModePerm); err != nil {
		return nil, err
	}

	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, err
	}
	client := &http.Client{Timeout: timeout}
	files := osfs.New(root)

	dl := &fetcher.Fetcher{
		Files:    files,
		Client:   client,
		Attempts: cfg.Install.FetchAttempts,
		Workers:  cfg.Install.DownloadWorkers,
	}
	catalog := &manifest.Catalog{Client: client, URL: cfg.Install.CatalogURL}

	profiles, err := config.ReadProfiles(filepath.Join(root, "config", "profiles.yaml"))
	if err != nil {
		return nil, err
	}

	prov := &provision.Provisioner{
		Root:     root,
		Files:    files,
		Resolver: &manifest.Resolver{Files: files, Fetch: dl, Source: catalog},
		Library: &library.Resolver{
			Files:   files,
			Fetch:   dl,
			BaseURL: cfg.Install.LibraryBaseURL,
			Exclude: cfg.Install.NativesExclude,
		},
		Assets:          &assets.Syncer{Files: files, Fetch: dl, BaseURL: cfg.Install.AssetBaseURL},
		Java:            provision.PathJavaProvider{ForcedPath: cfg.Launch.ForcedJavaPath},
		Profiles:        profiles,
		ModsSource:      cfg.Install.InstalledModsPath,
		LauncherName:    cfg.Launcher.Name,
		LauncherVersion: cfg.Launcher.Version,
		ExtraFlags:      cfg.Launch.JavaArgs,
	}
	return &env{cfg: cfg, root: root, catalog: catalog, prov: prov}, nil
}

func (e *env) request(version, username string, ram int) provision.Request {
	req := provision.Request{
		VersionID:    e.cfg.Launch.Version,
		RAMGigabytes: e.cfg.Launch.MaxRam,
		Username:     e.cfg.Launch.Username,
		Profile:      e.cfg.Launch.Profile,
	}
	if version != "" {
		req.VersionID = version
	}
	if username != "" {
		req.Username = username
	}
	if ram > 0 {
		req.RAMGigabytes = ram
	}
	return req
}
