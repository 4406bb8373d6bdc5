package library

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5/util"
	"github.com/gobwas/glob"
	log "github.com/sirupsen/logrus"
)

// defaultExclude keeps archive signing metadata out of the natives
// directory.
var defaultExclude = []string{"META-INF/**"}

// extract unpacks a native jar into nativesDir. Entries matching an
// exclusion glob are skipped, as is any entry whose normalized path
// would land outside nativesDir.
func (r *Resolver) extract(jarPath, nativesDir string) error {
	patterns := r.Exclude
	if len(patterns) == 0 {
		patterns = defaultExclude
	}
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return err
		}
		globs = append(globs, g)
	}

	b, err := util.ReadFile(r.Files, jarPath)
	if err != nil {
		return err
	}
	z, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return err
	}
	for _, f := range z.File {
		if strings.HasSuffix(f.Name, "/") || f.FileInfo().IsDir() {
			continue
		}
		name := path.Clean(f.Name)
		if excluded(globs, name) {
			continue
		}
		dest := path.Join(nativesDir, name)
		if escapes(dest, nativesDir) {
			log.Warnf("Skipping unsafe archive entry %q in %s", f.Name, jarPath)
			continue
		}
		if err := r.extractFile(f, dest); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) extractFile(f *zip.File, dest string) error {
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	if err := r.Files.MkdirAll(path.Dir(dest), 0755); err != nil {
		return err
	}
	w, err := r.Files.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	return err
}

func excluded(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// escapes reports whether dest, already path.Clean'ed via path.Join,
// falls outside dir. Catches absolute entries and ".." traversal.
func escapes(dest, dir string) bool {
	if path.IsAbs(dest) && !path.IsAbs(dir) {
		return true
	}
	return dest != dir && !strings.HasPrefix(dest, dir+"/")
}
