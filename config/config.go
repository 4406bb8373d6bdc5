// Package config reads the launcher setup file and the install lock
// and profile files kept next to the game directory.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

const CURRENT_SPEC = 1

type ConfigFile struct {
	SpecVer  int64          `yaml:"_specver"`
	Launcher LauncherConfig `yaml:"launcher"`
	Install  InstallConfig  `yaml:"install"`
	Launch   LaunchConfig   `yaml:"launch"`
}

type LauncherConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type InstallConfig struct {
	RootPath          string   `yaml:"rootPath"`
	CatalogURL        string   `yaml:"catalogUrl"`
	LibraryBaseURL    string   `yaml:"libraryBaseUrl"`
	AssetBaseURL      string   `yaml:"assetBaseUrl"`
	InstalledModsPath string   `yaml:"installedModsPath"`
	FetchAttempts     int      `yaml:"fetchAttempts"`
	FetchTimeout      string   `yaml:"fetchTimeout"`
	DownloadWorkers   int      `yaml:"downloadWorkers"`
	NativesExclude    []string `yaml:"nativesExclude"`
}

type LaunchConfig struct {
	Version        string   `yaml:"version"`
	MaxRam         int      `yaml:"maxRam"` // gigabytes
	Username       string   `yaml:"username"`
	Profile        string   `yaml:"profile"`
	ForcedJavaPath string   `yaml:"forcedJavaPath"`
	JavaArgs       []string `yaml:"javaArgs"`
}

// Read loads a setup file and fills defaults for anything omitted.
func Read(path string) (*ConfigFile, error) {
	c := Default()

	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(yamlFile, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if c.SpecVer < CURRENT_SPEC {
		return nil, fmt.Errorf("%s uses an older version of the specification", path)
	}
	c.fill()
	return c, nil
}

// Default returns a usable configuration for a fresh install.
func Default() *ConfigFile {
	c := &ConfigFile{SpecVer: CURRENT_SPEC}
	c.fill()
	return c
}

func (c *ConfigFile) fill() {
	if c.Launcher.Name == "" {
		c.Launcher.Name = "go-mc-launcher"
	}
	if c.Launcher.Version == "" {
		c.Launcher.Version = "1.0"
	}
	if c.Install.RootPath == "" {
		c.Install.RootPath = ".minecraft"
	}
	if c.Install.InstalledModsPath == "" {
		c.Install.InstalledModsPath = "installed_mods"
	}
	if c.Install.FetchAttempts <= 0 {
		c.Install.FetchAttempts = 3
	}
	if c.Install.FetchTimeout == "" {
		c.Install.FetchTimeout = "2m"
	}
	if c.Install.DownloadWorkers <= 0 {
		c.Install.DownloadWorkers = 5
	}
	if c.Launch.MaxRam <= 0 {
		c.Launch.MaxRam = 4
	}
	if c.Launch.Username == "" {
		c.Launch.Username = "Player"
	}
}

// Timeout parses the per-fetch timeout.
func (c *ConfigFile) Timeout() (time.Duration, error) {
	return time.ParseDuration(c.Install.FetchTimeout)
}
