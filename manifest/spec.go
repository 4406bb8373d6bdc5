// Package manifest models version manifests and resolves a requested
// version id into a fully merged specification, recursing through
// inheritsFrom chains and caching merged documents on disk.
package manifest

import (
	"encoding/json"
	"path"
	"runtime"
)

// Loader kinds. An empty loader means a plain base version.
const (
	LoaderNone   = ""
	LoaderFabric = "fabric"
	LoaderForge  = "forge"
)

// VersionSpec is one version manifest. Instances are immutable once
// parsed; Merge produces new values instead of mutating.
type VersionSpec struct {
	ID                 string         `json:"id"`
	Type               string         `json:"type,omitempty"`
	Loader             string         `json:"loader,omitempty"`
	InheritsFrom       string         `json:"inheritsFrom,omitempty"`
	MainClass          string         `json:"mainClass,omitempty"`
	Libraries          []Library      `json:"libraries,omitempty"`
	Arguments          *Arguments     `json:"arguments,omitempty"`
	MinecraftArguments string         `json:"minecraftArguments,omitempty"`
	AssetIndex         *AssetIndexRef `json:"assetIndex,omitempty"`
	Downloads          *Downloads     `json:"downloads,omitempty"`
	JavaVersion        *JavaVersion   `json:"javaVersion,omitempty"`
}

// Modded reports whether the spec carries a modloader overlay.
func (s *VersionSpec) Modded() bool {
	return s.Loader != LoaderNone && s.Loader != "none"
}

// Library is a maven-coordinate dependency entry, optionally carrying
// explicit download descriptors, a per-OS native classifier map and
// inclusion rules.
type Library struct {
	Name      string            `json:"name"`
	Downloads *LibraryDownloads `json:"downloads,omitempty"`
	Natives   map[string]string `json:"natives,omitempty"`
	Rules     []Rule            `json:"rules,omitempty"`
}

type LibraryDownloads struct {
	Artifact    *Download            `json:"artifact,omitempty"`
	Classifiers map[string]*Download `json:"classifiers,omitempty"`
}

// Download mirrors fetcher.Artifact on the wire: url, sha1, size and an
// optional repository-relative path.
type Download struct {
	Path string `json:"path,omitempty"`
	URL  string `json:"url"`
	SHA1 string `json:"sha1,omitempty"`
	Size int64  `json:"size,omitempty"`
}

type Downloads struct {
	Client *Download `json:"client,omitempty"`
}

type AssetIndexRef struct {
	ID   string `json:"id"`
	URL  string `json:"url,omitempty"`
	SHA1 string `json:"sha1,omitempty"`
	Size int64  `json:"size,omitempty"`
}

type JavaVersion struct {
	Component    string `json:"component,omitempty"`
	MajorVersion int    `json:"majorVersion"`
}

// Arguments holds the jvm and game argument template lists.
type Arguments struct {
	JVM  []Argument `json:"jvm,omitempty"`
	Game []Argument `json:"game,omitempty"`
}

// Argument is one element of an argument template list: either a bare
// string or a rule-guarded object whose value is a string or a list of
// strings. The raw form is kept verbatim so merged documents round-trip
// and so the launch layer can flatten it with an explicit depth bound.
type Argument struct {
	raw json.RawMessage
}

func RawArgument(raw json.RawMessage) Argument { return Argument{raw: raw} }

func (a Argument) Raw() json.RawMessage { return a.raw }

func (a *Argument) UnmarshalJSON(b []byte) error {
	a.raw = append(a.raw[:0], b...)
	return nil
}

func (a Argument) MarshalJSON() ([]byte, error) {
	if a.raw == nil {
		return []byte("null"), nil
	}
	return a.raw, nil
}

// CurrentOS returns the manifest OS name for the running platform.
func CurrentOS() string {
	if runtime.GOOS == "darwin" {
		return "osx"
	}
	return runtime.GOOS
}

// ManifestPath is the cache location of a version document.
func ManifestPath(id string) string {
	return path.Join("versions", id, id+".json")
}

// JarPath is the cache location of a version's runtime jar. After a
// successful resolve the jar exists here for every resolved id,
// inherited versions included.
func JarPath(id string) string {
	return path.Join("versions", id, id+".jar")
}
