package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	log "github.com/sirupsen/logrus"

	"github.com/Strange-Account/go-mc-launcher/fetcher"
)

// CycleError reports a self-referential inheritsFrom chain.
type CycleError struct {
	ID string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("inheritance cycle detected at %q", e.ID)
}

// UnavailableError reports that a version document could not be fetched
// or parsed. Resolution aborts without writing a partial cache entry.
type UnavailableError struct {
	ID  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("version manifest %q unavailable: %v", e.ID, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// Source maps a version id to the artifact describing its manifest
// document.
type Source interface {
	Manifest(ctx context.Context, id string) (fetcher.Artifact, error)
}

// Resolver turns a version id into a fully merged VersionSpec. Merged
// documents are cached under versions/<id>/<id>.json; a second resolve
// for the same id is served from disk without network access. Safe to
// call concurrently for different ids.
type Resolver struct {
	Files  billy.Filesystem
	Fetch  *fetcher.Fetcher
	Source Source
}

// Resolve resolves the id, recursing into inheritsFrom parents. On
// success versions/<id>/<id>.json and, when the spec declares a client
// download, versions/<id>/<id>.jar exist and verify.
func (r *Resolver) Resolve(ctx context.Context, id string) (*VersionSpec, error) {
	return r.resolve(ctx, id, make(map[string]bool))
}

// resolving is the set of ids on the active call chain, used only for
// cycle detection. It lives for one top-level Resolve call.
func (r *Resolver) resolve(ctx context.Context, id string, resolving map[string]bool) (*VersionSpec, error) {
	if resolving[id] {
		return nil, &CycleError{ID: id}
	}
	if spec := r.cached(id); spec != nil {
		if err := r.materializeJar(ctx, spec, ""); err != nil {
			return nil, err
		}
		return spec, nil
	}
	resolving[id] = true
	defer delete(resolving, id)

	log.Infof("Resolving version %s", id)
	spec, err := r.fetchDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	parentID := spec.InheritsFrom
	if parentID != "" {
		parent, err := r.resolve(ctx, parentID, resolving)
		if err != nil {
			return nil, err
		}
		spec = Merge(parent, spec)
	}
	if err := r.persist(spec); err != nil {
		return nil, &UnavailableError{ID: id, Err: err}
	}
	if err := r.materializeJar(ctx, spec, parentID); err != nil {
		return nil, err
	}
	return spec, nil
}

// cached loads a previously merged document. A document that no longer
// parses is dropped so the next resolve replaces it.
func (r *Resolver) cached(id string) *VersionSpec {
	b, err := util.ReadFile(r.Files, ManifestPath(id))
	if err != nil {
		return nil
	}
	spec := &VersionSpec{}
	if err := json.Unmarshal(b, spec); err != nil {
		log.Warnf("corrupt cached manifest for %s, refetching: %v", id, err)
		_ = r.Files.Remove(ManifestPath(id))
		return nil
	}
	return spec
}

// fetchDocument pulls the raw version document into a staging file and
// parses it. The staging file is always removed; only persist writes
// the final cache entry, so an aborted resolve leaves no partial cache.
func (r *Resolver) fetchDocument(ctx context.Context, id string) (*VersionSpec, error) {
	art, err := r.Source.Manifest(ctx, id)
	if err != nil {
		return nil, &UnavailableError{ID: id, Err: err}
	}
	art.Path = ManifestPath(id) + ".part"
	defer func() {
		if rerr := r.Files.Remove(art.Path); rerr != nil && !os.IsNotExist(rerr) {
			log.Warnf("remove %q: %v", art.Path, rerr)
		}
	}()
	if err := r.Fetch.Fetch(ctx, art); err != nil {
		return nil, &UnavailableError{ID: id, Err: err}
	}
	b, err := util.ReadFile(r.Files, art.Path)
	if err != nil {
		return nil, &UnavailableError{ID: id, Err: err}
	}
	spec := &VersionSpec{}
	if err := json.Unmarshal(b, spec); err != nil {
		return nil, &UnavailableError{ID: id, Err: err}
	}
	return spec, nil
}

func (r *Resolver) persist(spec *VersionSpec) error {
	b, err := json.Marshal(spec)
	if err != nil {
		return err
	}
	fpath := ManifestPath(spec.ID)
	if err := r.Files.MkdirAll(path.Dir(fpath), 0755); err != nil {
		return err
	}
	return util.WriteFile(r.Files, fpath, b, 0644)
}

// materializeJar ensures versions/<id>/<id>.jar exists and verifies.
// When the jar was already fetched for a parent version it is copied
// instead of downloaded again; hash mismatches on a fresh download are
// fatal here, retries happen inside the Fetcher.
func (r *Resolver) materializeJar(ctx context.Context, spec *VersionSpec, parentID string) error {
	if spec.Downloads == nil || spec.Downloads.Client == nil {
		return nil
	}
	client := spec.Downloads.Client
	dest := JarPath(spec.ID)
	if parentID != "" {
		if _, err := r.Files.Stat(JarPath(parentID)); err == nil {
			if err := r.copyFile(JarPath(parentID), dest); err != nil {
				return err
			}
		}
	}
	return r.Fetch.Fetch(ctx, fetcher.Artifact{
		URL:  client.URL,
		Path: dest,
		SHA1: client.SHA1,
		Size: client.Size,
	})
}

func (r *Resolver) copyFile(src, dest string) error {
	if _, err := r.Files.Stat(dest); err == nil {
		return nil
	}
	in, err := r.Files.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	if err := r.Files.MkdirAll(path.Dir(dest), 0755); err != nil {
		return err
	}
	out, err := r.Files.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	_, err = io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return err
}
