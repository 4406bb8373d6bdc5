package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/Strange-Account/go-mc-launcher/fetcher"
)

// DefaultCatalogURL is the upstream index of published versions.
const DefaultCatalogURL = "https://launchermeta.mojang.com/mc/game/version_manifest_v2.json"

var ErrUnknownVersion = errors.New("unknown version")

// Version is one entry of the upstream catalog.
type Version struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	URL  string `json:"url"`
	SHA1 string `json:"sha1,omitempty"`
}

// Catalog fetches the upstream version index and maps version ids to
// their manifest documents. It implements Source. The index is loaded
// lazily on first use and kept for the lifetime of the Catalog.
type Catalog struct {
	Client *http.Client
	URL    string

	mu       sync.Mutex
	versions map[string]Version
	order    []string
	latest   struct {
		Release  string `json:"release"`
		Snapshot string `json:"snapshot"`
	}
}

// Refresh downloads the version index.
func (c *Catalog) Refresh(ctx context.Context) error {
	url := c.URL
	if url == "" {
		url = DefaultCatalogURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("version catalog: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("version catalog: unexpected status %s", resp.Status)
	}
	var index struct {
		Latest struct {
			Release  string `json:"release"`
			Snapshot string `json:"snapshot"`
		} `json:"latest"`
		Versions []Version `json:"versions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&index); err != nil {
		return fmt.Errorf("version catalog: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions = make(map[string]Version, len(index.Versions))
	c.order = c.order[:0]
	for _, v := range index.Versions {
		c.versions[v.ID] = v
		c.order = append(c.order, v.ID)
	}
	c.latest.Release = index.Latest.Release
	c.latest.Snapshot = index.Latest.Snapshot
	return nil
}

// Manifest implements Source.
func (c *Catalog) Manifest(ctx context.Context, id string) (fetcher.Artifact, error) {
	if err := c.ensure(ctx); err != nil {
		return fetcher.Artifact{}, err
	}
	c.mu.Lock()
	v, ok := c.versions[id]
	c.mu.Unlock()
	if !ok {
		return fetcher.Artifact{}, fmt.Errorf("%w: %q", ErrUnknownVersion, id)
	}
	return fetcher.Artifact{URL: v.URL, SHA1: v.SHA1}, nil
}

// Versions returns the catalog entries in upstream order.
func (c *Catalog) Versions(ctx context.Context) ([]Version, error) {
	if err := c.ensure(ctx); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Version, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.versions[id])
	}
	return out, nil
}

// Latest returns the latest release and snapshot ids.
func (c *Catalog) Latest(ctx context.Context) (release, snapshot string, err error) {
	if err := c.ensure(ctx); err != nil {
		return "", "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest.Release, c.latest.Snapshot, nil
}

func (c *Catalog) ensure(ctx context.Context) error {
	c.mu.Lock()
	loaded := c.versions != nil
	c.mu.Unlock()
	if loaded {
		return nil
	}
	return c.Refresh(ctx)
}
