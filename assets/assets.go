// Package assets populates the shared asset object store from a
// version's asset index. Objects are stored content-addressed under a
// two-character hash prefix.
package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	log "github.com/sirupsen/logrus"

	"github.com/Strange-Account/go-mc-launcher/fetcher"
	"github.com/Strange-Account/go-mc-launcher/manifest"
)

// DefaultBaseURL serves asset objects by hash prefix.
const DefaultBaseURL = "https://resources.download.minecraft.net"

// Object is one entry of an asset index.
type Object struct {
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

// Index maps logical asset paths to their content hash and length.
type Index struct {
	Objects map[string]Object `json:"objects"`
}

// IndexPath is the cache location of an asset index document.
func IndexPath(id string) string {
	return path.Join("assets", "indexes", id+".json")
}

// ObjectPath is the store location of an asset object.
func ObjectPath(hash string) string {
	return path.Join("assets", "objects", hash[:2], hash)
}

// Syncer downloads asset indexes and fills the object store.
type Syncer struct {
	Files   billy.Filesystem
	Fetch   *fetcher.Fetcher
	BaseURL string // defaults to DefaultBaseURL
}

// Sync fetches the spec's asset index, verifies it, and materializes
// every object it references. A spec without an asset index reference
// is a no-op.
func (s *Syncer) Sync(ctx context.Context, spec *manifest.VersionSpec) error {
	ref := spec.AssetIndex
	if ref == nil || ref.URL == "" {
		return nil
	}
	indexPath := IndexPath(ref.ID)
	err := s.Fetch.Fetch(ctx, fetcher.Artifact{
		URL:  ref.URL,
		Path: indexPath,
		SHA1: ref.SHA1,
		Size: ref.Size,
	})
	if err != nil {
		return fmt.Errorf("asset index %s: %w", ref.ID, err)
	}

	b, err := util.ReadFile(s.Files, indexPath)
	if err != nil {
		return err
	}
	var index Index
	if err := json.Unmarshal(b, &index); err != nil {
		return fmt.Errorf("asset index %s: %w", ref.ID, err)
	}

	base := s.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	jobs := make([]fetcher.Artifact, 0, len(index.Objects))
	for name, obj := range index.Objects {
		if len(obj.Hash) < 2 {
			return fmt.Errorf("asset index %s: bad hash for %q", ref.ID, name)
		}
		jobs = append(jobs, fetcher.Artifact{
			URL:  fmt.Sprintf("%s/%s/%s", base, obj.Hash[:2], obj.Hash),
			Path: ObjectPath(obj.Hash),
			SHA1: obj.Hash,
			Size: obj.Size,
		})
	}
	// Index iteration order is random; keep submissions stable.
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Path < jobs[j].Path })

	log.Infof("Syncing %d asset objects for index %s", len(jobs), ref.ID)
	return s.Fetch.All(ctx, jobs)
}
