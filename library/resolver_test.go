package library

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha1"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

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

// zipBytes builds an in-memory jar from name->content entries.
func zipBytes(t *testing.T, entries map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

type libServer struct {
	files map[string][]byte
	delay map[string]time.Duration
}

func (s *libServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if d, ok := s.delay[r.URL.Path]; ok {
		time.Sleep(d)
	}
	b, ok := s.files[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Write(b)
}

func newLibResolver(t *testing.T, srv *libServer) *Resolver {
	t.Helper()
	server := httptest.NewServer(srv)
	t.Cleanup(server.Close)
	files := memfs.New()
	return &Resolver{
		Files:   files,
		Fetch:   &fetcher.Fetcher{Files: files, Client: server.Client(), Workers: 4},
		BaseURL: server.URL,
		OS:      "linux",
	}
}

func plainLib(name string, body []byte) (manifest.Library, string) {
	coord, _ := ParseCoordinate(name)
	return manifest.Library{Name: name}, "/" + coord.RelPath()
}

func TestMaterializeClasspathKeepsManifestOrder(t *testing.T) {
	srv := &libServer{files: map[string][]byte{}, delay: map[string]time.Duration{}}

	var libs []manifest.Library
	var rels []string
	for i := 0; i < 6; i++ {
		body := []byte(fmt.Sprintf("jar %d", i))
		lib, urlPath := plainLib(fmt.Sprintf("org.example:lib%d:1.0", i), body)
		srv.files[urlPath] = body
		libs = append(libs, lib)
		rels = append(rels, urlPath)
	}
	// Make early entries finish last so completion order differs from
	// manifest order.
	srv.delay[rels[0]] = 80 * time.Millisecond
	srv.delay[rels[1]] = 40 * time.Millisecond

	r := newLibResolver(t, srv)
	spec := &manifest.VersionSpec{ID: "1.20.1", Libraries: libs}

	res, err := r.Materialize(context.Background(), spec)
	require.NoError(t, err)
	require.Len(t, res.Classpath, 6)
	for i, cp := range res.Classpath {
		assert.Equal(t, "libraries"+rels[i], cp, "classpath entry %d out of order", i)
	}
}

func TestMaterializeAppendsVersionJarLast(t *testing.T) {
	body := []byte("the only lib")
	lib, urlPath := plainLib("org.example:solo:1.0", body)
	srv := &libServer{files: map[string][]byte{urlPath: body}}

	r := newLibResolver(t, srv)
	require.NoError(t, util.WriteFile(r.Files, manifest.JarPath("1.20.1"), []byte("client"), 0644))

	res, err := r.Materialize(context.Background(), &manifest.VersionSpec{
		ID:        "1.20.1",
		Libraries: []manifest.Library{lib},
	})
	require.NoError(t, err)
	require.Len(t, res.Classpath, 2)
	assert.Equal(t, manifest.JarPath("1.20.1"), res.Classpath[1])
}

func TestMaterializeSkipsExcludedLibraries(t *testing.T) {
	body := []byte("universal")
	universal, urlPath := plainLib("org.example:universal:1.0", body)
	windowsOnly := manifest.Library{
		Name:  "org.example:winonly:1.0",
		Rules: []manifest.Rule{{Action: manifest.ActionAllow, OS: &manifest.OSRule{Name: "windows"}}},
	}
	srv := &libServer{files: map[string][]byte{urlPath: body}}

	r := newLibResolver(t, srv)
	res, err := r.Materialize(context.Background(), &manifest.VersionSpec{
		ID:        "1.20.1",
		Libraries: []manifest.Library{universal, windowsOnly},
	})
	require.NoError(t, err)
	require.Len(t, res.Classpath, 1)
	assert.Equal(t, "libraries"+urlPath, res.Classpath[0])
}

func TestMaterializeExplicitDownloadWins(t *testing.T) {
	body := []byte("hosted elsewhere")
	srv := &libServer{files: map[string][]byte{"/mirror/custom.jar": body}}
	r := newLibResolver(t, srv)

	res, err := r.Materialize(context.Background(), &manifest.VersionSpec{
		ID: "1.20.1",
		Libraries: []manifest.Library{{
			Name: "org.example:custom:1.0",
			Downloads: &manifest.LibraryDownloads{
				Artifact: &manifest.Download{
					Path: "mirror/custom.jar",
					URL:  r.BaseURL + "/mirror/custom.jar",
					SHA1: sha1hex(body),
				},
			},
		}},
	})
	require.NoError(t, err)
	require.Len(t, res.Classpath, 1)
	assert.Equal(t, "libraries/mirror/custom.jar", res.Classpath[0])
	got, err := util.ReadFile(r.Files, res.Classpath[0])
	require.NoError(t, err)
	assert.Equal(t, body, got)
}

func TestMaterializeMalformedCoordinateFails(t *testing.T) {
	r := newLibResolver(t, &libServer{files: map[string][]byte{}})
	_, err := r.Materialize(context.Background(), &manifest.VersionSpec{
		ID:        "1.20.1",
		Libraries: []manifest.Library{{Name: "not-a-coordinate"}},
	})
	assert.Error(t, err)
}

func TestMaterializeExtractsNatives(t *testing.T) {
	native := zipBytes(t, map[string][]byte{
		"liblwjgl.so":          []byte("elf bytes"),
		"sub/libopenal.so":     []byte("more elf bytes"),
		"META-INF/MANIFEST.MF": []byte("Manifest-Version: 1.0"),
		"META-INF/SIGN.SF":     []byte("signature"),
	})
	jarBody := []byte("plain jar")
	coord, _ := ParseCoordinate("org.lwjgl:lwjgl:3.3.1")
	nrel := "/" + coord.WithClassifier("natives-linux").RelPath()
	jrel := "/" + coord.RelPath()

	srv := &libServer{files: map[string][]byte{jrel: jarBody, nrel: native}}
	r := newLibResolver(t, srv)

	res, err := r.Materialize(context.Background(), &manifest.VersionSpec{
		ID: "1.20.1",
		Libraries: []manifest.Library{{
			Name:    "org.lwjgl:lwjgl:3.3.1",
			Natives: map[string]string{"linux": "natives-linux"},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "versions/1.20.1/natives", res.NativesDir)

	got, err := util.ReadFile(r.Files, res.NativesDir+"/liblwjgl.so")
	require.NoError(t, err)
	assert.Equal(t, []byte("elf bytes"), got)
	_, err = r.Files.Stat(res.NativesDir + "/sub/libopenal.so")
	assert.NoError(t, err)

	// Signing metadata stays out of the natives directory.
	_, err = r.Files.Stat(res.NativesDir + "/META-INF/MANIFEST.MF")
	assert.True(t, os.IsNotExist(err))

	// The native jar itself is fetched but not on the classpath.
	require.Len(t, res.Classpath, 1)
	assert.Equal(t, "libraries"+jrel, res.Classpath[0])
}

func TestMaterializeSkipsNativesForOtherOS(t *testing.T) {
	jarBody := []byte("plain jar")
	lib, urlPath := plainLib("org.lwjgl:lwjgl:3.3.1", jarBody)
	lib.Natives = map[string]string{"windows": "natives-windows"}
	srv := &libServer{files: map[string][]byte{urlPath: jarBody}}

	r := newLibResolver(t, srv)
	res, err := r.Materialize(context.Background(), &manifest.VersionSpec{
		ID:        "1.20.1",
		Libraries: []manifest.Library{lib},
	})
	require.NoError(t, err)
	require.Len(t, res.Classpath, 1)

	entries, err := r.Files.ReadDir(res.NativesDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no natives should be extracted for another platform")
}

func TestExtractRejectsEscapingEntries(t *testing.T) {
	evil := zipBytes(t, map[string][]byte{
		"../../evil.so": []byte("escape attempt"),
		"/abs/evil.so":  []byte("absolute entry"),
		"ok.so":         []byte("fine"),
	})
	r := newLibResolver(t, &libServer{files: map[string][]byte{}})
	require.NoError(t, util.WriteFile(r.Files, "tmp/native.jar", evil, 0644))
	require.NoError(t, r.Files.MkdirAll("versions/x/natives", 0755))

	require.NoError(t, r.extract("tmp/native.jar", "versions/x/natives"))

	_, err := r.Files.Stat("versions/x/natives/ok.so")
	assert.NoError(t, err)
	_, err = r.Files.Stat("evil.so")
	assert.True(t, os.IsNotExist(err))
	_, err = r.Files.Stat("versions/evil.so")
	assert.True(t, os.IsNotExist(err))
}

func TestExtractHonorsCustomExclusions(t *testing.T) {
	jar := zipBytes(t, map[string][]byte{
		"keep.so":    []byte("keep"),
		"skip.txt":   []byte("skip"),
		"docs/a.txt": []byte("skip too"),
	})
	r := newLibResolver(t, &libServer{files: map[string][]byte{}})
	r.Exclude = []string{"**.txt"}
	require.NoError(t, util.WriteFile(r.Files, "tmp/native.jar", jar, 0644))
	require.NoError(t, r.Files.MkdirAll("natives", 0755))

	require.NoError(t, r.extract("tmp/native.jar", "natives"))

	_, err := r.Files.Stat("natives/keep.so")
	assert.NoError(t, err)
	_, err = r.Files.Stat("natives/skip.txt")
	assert.True(t, os.IsNotExist(err))
	_, err = r.Files.Stat("natives/docs/a.txt")
	assert.True(t, os.IsNotExist(err))
}

func TestMaterializeFailsWhenLibraryMissing(t *testing.T) {
	r := newLibResolver(t, &libServer{files: map[string][]byte{}})
	r.Fetch.Attempts = 1

	_, err := r.Materialize(context.Background(), &manifest.VersionSpec{
		ID:        "1.20.1",
		Libraries: []manifest.Library{{Name: "org.example:gone:1.0"}},
	})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "1.20.1"))
}
