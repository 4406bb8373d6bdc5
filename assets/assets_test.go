package assets

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Strange-Account/go-mc-launcher/fetcher"
	"github.com/Strange-Account/go-mc-launcher/manifest"
)

func sha1hex(b []byte) string {
	return fmt.Sprintf("%x", sha1.Sum(b))
}

// assetWorld is a tiny upstream: an index document plus the objects it
// references, served by hash like the real object store.
type assetWorld struct {
	indexBody []byte
	objects   map[string][]byte // hash -> content
}

func newAssetWorld(t *testing.T, logical map[string][]byte) *assetWorld {
	t.Helper()
	w := &assetWorld{objects: map[string][]byte{}}
	index := Index{Objects: map[string]Object{}}
	for name, content := range logical {
		hash := sha1hex(content)
		w.objects[hash] = content
		index.Objects[name] = Object{Hash: hash, Size: int64(len(content))}
	}
	var err error
	w.indexBody, err = json.Marshal(index)
	require.NoError(t, err)
	return w
}

func (w *assetWorld) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/indexes/5.json" {
		rw.Write(w.indexBody)
		return
	}
	// object paths look like /<prefix>/<hash>
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/"), "/")
	if len(parts) == 2 {
		if content, ok := w.objects[parts[1]]; ok && parts[0] == parts[1][:2] {
			rw.Write(content)
			return
		}
	}
	http.NotFound(rw, r)
}

func newSyncer(t *testing.T, w *assetWorld) (*Syncer, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(w)
	t.Cleanup(srv.Close)
	files := memfs.New()
	return &Syncer{
		Files:   files,
		Fetch:   &fetcher.Fetcher{Files: files, Client: srv.Client(), Workers: 4},
		BaseURL: srv.URL,
	}, srv
}

func TestSyncMaterializesObjectStore(t *testing.T) {
	logical := map[string][]byte{
		"minecraft/sounds/ambient/cave/cave1.ogg": []byte("ogg bytes"),
		"minecraft/lang/en_us.json":               []byte(`{"menu.quit":"Quit Game"}`),
		"pack.mcmeta":                             []byte(`{"pack":{}}`),
	}
	w := newAssetWorld(t, logical)
	s, srv := newSyncer(t, w)

	spec := &manifest.VersionSpec{
		ID: "1.20.1",
		AssetIndex: &manifest.AssetIndexRef{
			ID:   "5",
			URL:  srv.URL + "/indexes/5.json",
			SHA1: sha1hex(w.indexBody),
			Size: int64(len(w.indexBody)),
		},
	}
	require.NoError(t, s.Sync(context.Background(), spec))

	// The index lands under assets/indexes.
	got, err := util.ReadFile(s.Files, IndexPath("5"))
	require.NoError(t, err)
	assert.Equal(t, w.indexBody, got)

	// Every object is stored content-addressed under its hash prefix.
	for _, content := range logical {
		hash := sha1hex(content)
		stored, err := util.ReadFile(s.Files, ObjectPath(hash))
		require.NoError(t, err)
		assert.Equal(t, content, stored)
		assert.Equal(t, "assets/objects/"+hash[:2]+"/"+hash, ObjectPath(hash))
	}
}

func TestSyncWithoutIndexIsNoOp(t *testing.T) {
	s, _ := newSyncer(t, newAssetWorld(t, nil))

	require.NoError(t, s.Sync(context.Background(), &manifest.VersionSpec{ID: "1.20.1"}))
	require.NoError(t, s.Sync(context.Background(), &manifest.VersionSpec{
		ID:         "1.20.1",
		AssetIndex: &manifest.AssetIndexRef{ID: "5"},
	}))

	_, err := s.Files.Stat("assets")
	assert.Error(t, err, "nothing should be written without an index url")
}

func TestSyncRejectsTamperedIndex(t *testing.T) {
	w := newAssetWorld(t, map[string][]byte{"a": []byte("content")})
	s, srv := newSyncer(t, w)
	s.Fetch.Attempts = 1

	spec := &manifest.VersionSpec{
		ID: "1.20.1",
		AssetIndex: &manifest.AssetIndexRef{
			ID:   "5",
			URL:  srv.URL + "/indexes/5.json",
			SHA1: sha1hex([]byte("a different document")),
		},
	}
	err := s.Sync(context.Background(), spec)
	require.Error(t, err)
	assert.ErrorIs(t, err, fetcher.ErrChecksumMismatch)
}

func TestSyncFailsOnMissingObject(t *testing.T) {
	w := newAssetWorld(t, map[string][]byte{"a": []byte("present")})
	// Drop the object from the upstream but keep it in the index.
	for hash := range w.objects {
		delete(w.objects, hash)
	}
	s, srv := newSyncer(t, w)
	s.Fetch.Attempts = 1

	spec := &manifest.VersionSpec{
		ID: "1.20.1",
		AssetIndex: &manifest.AssetIndexRef{
			ID:   "5",
			URL:  srv.URL + "/indexes/5.json",
			SHA1: sha1hex(w.indexBody),
		},
	}
	assert.Error(t, s.Sync(context.Background(), spec))
}

func TestSyncIsIdempotent(t *testing.T) {
	w := newAssetWorld(t, map[string][]byte{"a": []byte("stable content")})
	s, srv := newSyncer(t, w)

	spec := &manifest.VersionSpec{
		ID: "1.20.1",
		AssetIndex: &manifest.AssetIndexRef{
			ID:   "5",
			URL:  srv.URL + "/indexes/5.json",
			SHA1: sha1hex(w.indexBody),
		},
	}
	require.NoError(t, s.Sync(context.Background(), spec))
	require.NoError(t, s.Sync(context.Background(), spec))
}
