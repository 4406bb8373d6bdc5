// Package fetcher downloads checksum-verified artifacts into a local
// file cache. Fetches are idempotent: a destination that already holds
// verified content is never downloaded again.
package fetcher

import (
	"context"
	"crypto/sha1"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-git/go-billy/v5"
	"github.com/remeh/sizedwaitgroup"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const defaultAttempts = 3

var ErrChecksumMismatch = errors.New("checksum mismatch")

// Artifact describes one downloadable file: where it comes from, where
// it lands relative to the cache root, and what its content must hash
// to. SHA1 is a lowercase hex digest; an empty SHA1 disables
// verification. A zero Size means the length is unknown.
type Artifact struct {
	URL  string `json:"url"`
	Path string `json:"path,omitempty"`
	SHA1 string `json:"sha1,omitempty"`
	Size int64  `json:"size,omitempty"`
}

// FetchError reports that all download attempts for an artifact failed.
type FetchError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %d attempts failed: %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher is safe for concurrent use. Concurrent fetches for the same
// destination path are collapsed into a single download; distinct
// destinations never contend.
type Fetcher struct {
	Files    billy.Filesystem
	Client   *http.Client
	Attempts int // download attempts per artifact, default 3
	Workers  int // pool width for All, default 4

	group singleflight.Group
}

// Fetch guarantees on success that a.Path exists, is non-empty and
// matches a.SHA1. If the destination already verifies no network I/O
// happens at all.
func (dl *Fetcher) Fetch(ctx context.Context, a Artifact) error {
	if a.Path == "" {
		return fmt.Errorf("fetch %s: artifact has no destination path", a.URL)
	}
	_, err, _ := dl.group.Do(a.Path, func() (interface{}, error) {
		return nil, dl.fetch(ctx, a)
	})
	return err
}

// All fetches artifacts through a bounded worker pool. Results are
// gathered per artifact, so callers keep their own ordering regardless
// of completion order. Cancelling ctx stops further submissions while
// in-flight downloads drain.
func (dl *Fetcher) All(ctx context.Context, artifacts []Artifact) error {
	width := dl.Workers
	if width <= 0 {
		width = 4
	}
	swg := sizedwaitgroup.New(width)
	errs := make([]error, len(artifacts))
	for i := range artifacts {
		if err := swg.AddWithContext(ctx); err != nil {
			errs[i] = err
			break
		}
		go func(i int) {
			defer swg.Done()
			errs[i] = dl.Fetch(ctx, artifacts[i])
		}(i)
	}
	swg.Wait()
	return errors.Join(errs...)
}

func (dl *Fetcher) fetch(ctx context.Context, a Artifact) error {
	if dl.verified(a) {
		log.Debugf("cached %s", a.Path)
		return nil
	}
	attempts := dl.Attempts
	if attempts <= 0 {
		attempts = defaultAttempts
	}
	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(attempts-1)),
		ctx,
	)
	n := 0
	op := func() error {
		n++
		return dl.download(ctx, a)
	}
	notify := func(err error, _ time.Duration) {
		log.Warnf("download %s: %v, retrying", a.URL, err)
	}
	if err := backoff.RetryNotify(op, bo, notify); err != nil {
		return &FetchError{URL: a.URL, Attempts: n, Err: err}
	}
	return nil
}

// verified reports whether the destination already holds acceptable
// content: non-empty, expected length when known, expected digest when
// known.
func (dl *Fetcher) verified(a Artifact) bool {
	fi, err := dl.Files.Stat(a.Path)
	if err != nil || fi.Size() == 0 {
		return false
	}
	if a.Size > 0 && fi.Size() != a.Size {
		return false
	}
	if a.SHA1 == "" {
		return true
	}
	sum, err := dl.checksum(a.Path)
	if err != nil {
		return false
	}
	return sum == a.SHA1
}

func (dl *Fetcher) checksum(fpath string) (string, error) {
	f, err := dl.Files.Open(fpath)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// download performs a single attempt. A partial, empty or mismatched
// result is removed before returning so it never lingers between
// attempts or across runs.
func (dl *Fetcher) download(ctx context.Context, a Artifact) error {
	if err := dl.Files.MkdirAll(path.Dir(a.Path), 0755); err != nil {
		return backoff.Permanent(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.URL, nil)
	if err != nil {
		return backoff.Permanent(err)
	}
	resp, err := dl.Client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			log.Debugf("close %q: %v", a.URL, cerr)
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	f, err := dl.Files.OpenFile(a.Path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return backoff.Permanent(err)
	}
	h := sha1.New()
	n, err := io.Copy(io.MultiWriter(f, h), resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		dl.discard(a.Path)
		return err
	}
	if n == 0 {
		dl.discard(a.Path)
		return fmt.Errorf("%q: empty response body", a.Path)
	}
	if a.SHA1 != "" {
		if sum := fmt.Sprintf("%x", h.Sum(nil)); sum != a.SHA1 {
			dl.discard(a.Path)
			return fmt.Errorf("%q: sha1 %s, want %s: %w", a.Path, sum, a.SHA1, ErrChecksumMismatch)
		}
	}
	log.Debugf("fetched %s -> %s", a.URL, a.Path)
	return nil
}

func (dl *Fetcher) discard(fpath string) {
	if err := dl.Files.Remove(fpath); err != nil && !os.IsNotExist(err) {
		log.Warnf("remove %q: %v", fpath, err)
	}
}
