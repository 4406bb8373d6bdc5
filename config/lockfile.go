package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"
)

const lockFileName = "launcher.lock"

// LockFile records what the last successful provisioning installed so
// the CLI can report an already-prepared install. Resolution itself
// never consults it; the on-disk version cache is authoritative.
type LockFile struct {
	Installed   bool      `yaml:"installed"`
	Version     string    `yaml:"version"`
	Loader      string    `yaml:"loader"`
	InstalledAt time.Time `yaml:"installedAt"`
}

func NewLockFile() *LockFile {
	return &LockFile{}
}

func (l *LockFile) Read(basePath string) error {
	lockFile := filepath.Join(basePath, lockFileName)

	f, err := os.Open(lockFile)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	d := yaml.NewDecoder(f)
	return d.Decode(l)
}

func (l *LockFile) Write(basePath string) error {
	lockFile := filepath.Join(basePath, lockFileName)

	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		return err
	}
	f, err := os.Create(lockFile)
	if err != nil {
		return err
	}
	defer f.Close()

	e := yaml.NewEncoder(f)
	if err := e.Encode(l); err != nil {
		return err
	}
	return e.Close()
}

// CheckShouldInstall reports whether the requested version differs from
// what the lock records.
func (l *LockFile) CheckShouldInstall(version string) bool {
	return !l.Installed || l.Version != version
}
