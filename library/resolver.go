package library

import (
	"context"
	"fmt"
	"path"

	"github.com/go-git/go-billy/v5"
	log "github.com/sirupsen/logrus"

	"github.com/Strange-Account/go-mc-launcher/fetcher"
	"github.com/Strange-Account/go-mc-launcher/manifest"
)

// DefaultBaseURL is the repository used for library entries that carry
// no explicit download descriptor.
const DefaultBaseURL = "https://libraries.minecraft.net"

const librariesDir = "libraries"

// Result is the output of Materialize: classpath entries in manifest
// order (version jar last) and the directory natives were extracted
// into. Paths are slash-separated, relative to the cache root.
type Result struct {
	Classpath  []string
	NativesDir string
}

// Resolver walks a merged spec's library list and materializes every
// included entry on disk.
type Resolver struct {
	Files   billy.Filesystem
	Fetch   *fetcher.Fetcher
	BaseURL string   // defaults to DefaultBaseURL
	OS      string   // rule-evaluation OS name, defaults to the running platform
	Exclude []string // native extraction exclusion globs, defaults to META-INF/**
}

type nativeJar struct {
	coord Coordinate
	path  string
}

// Materialize fetches every library included for the current OS,
// preserving manifest order in the returned classpath regardless of
// download completion order, then extracts the natives declared for
// this OS. A failed fetch of an included entry fails the whole call.
func (r *Resolver) Materialize(ctx context.Context, spec *manifest.VersionSpec) (*Result, error) {
	osName := r.OS
	if osName == "" {
		osName = manifest.CurrentOS()
	}
	nativesDir := path.Join("versions", spec.ID, "natives")
	if err := r.Files.MkdirAll(nativesDir, 0755); err != nil {
		return nil, err
	}

	var (
		jobs      []fetcher.Artifact
		classpath []string
		natives   []nativeJar
	)
	for _, lib := range spec.Libraries {
		if !manifest.Included(lib.Rules, osName, nil) {
			log.Debugf("Skipping %s: excluded for %s", lib.Name, osName)
			continue
		}
		coord, err := ParseCoordinate(lib.Name)
		if err != nil {
			return nil, err
		}

		art := r.artifactFor(coord, primaryDownload(lib))
		jobs = append(jobs, art)
		classpath = append(classpath, art.Path)

		classifier, ok := lib.Natives[osName]
		if !ok {
			continue
		}
		ncoord := coord.WithClassifier(classifier)
		nart := r.artifactFor(ncoord, classifierDownload(lib, classifier))
		jobs = append(jobs, nart)
		natives = append(natives, nativeJar{coord: ncoord, path: nart.Path})
	}

	log.Infof("Materializing %d artifacts for %s", len(jobs), spec.ID)
	if err := r.Fetch.All(ctx, jobs); err != nil {
		return nil, fmt.Errorf("materialize %s: %w", spec.ID, err)
	}

	for _, n := range natives {
		log.Debugf("Extracting natives from %s", n.coord)
		if err := r.extract(n.path, nativesDir); err != nil {
			return nil, fmt.Errorf("extract natives %s: %w", n.coord, err)
		}
	}

	jar := manifest.JarPath(spec.ID)
	if _, err := r.Files.Stat(jar); err == nil {
		classpath = append(classpath, jar)
	}
	return &Result{Classpath: classpath, NativesDir: nativesDir}, nil
}

// artifactFor resolves the fetch descriptor for a coordinate: an
// explicit manifest download wins, otherwise the location is derived
// from the coordinate against the base repository.
func (r *Resolver) artifactFor(coord Coordinate, dl *manifest.Download) fetcher.Artifact {
	base := r.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	rel := coord.RelPath()
	art := fetcher.Artifact{
		URL:  base + "/" + rel,
		Path: path.Join(librariesDir, rel),
	}
	if dl == nil {
		return art
	}
	if dl.URL != "" {
		art.URL = dl.URL
	}
	if dl.Path != "" {
		art.Path = path.Join(librariesDir, dl.Path)
	}
	art.SHA1 = dl.SHA1
	art.Size = dl.Size
	return art
}

func primaryDownload(lib manifest.Library) *manifest.Download {
	if lib.Downloads == nil {
		return nil
	}
	return lib.Downloads.Artifact
}

func classifierDownload(lib manifest.Library, classifier string) *manifest.Download {
	if lib.Downloads == nil {
		return nil
	}
	return lib.Downloads.Classifiers[classifier]
}
