// Package store owns the local directory that holds downloaded video assets.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ASHISH26940/manim-asset-gateway/pkg/errs"
	log "github.com/sirupsen/logrus"
)

// Policy selects the filename strategy for written assets.
type Policy int

const (
	// PolicyStable names files `<key>.mp4` and clears the directory before
	// each write, so at most one asset is resident at a time.
	PolicyStable Policy = iota
	// PolicyTimestamped names files `<key>_<unixms>.mp4` and keeps every
	// historical download.
	PolicyTimestamped
)

// ParsePolicy maps a config string to a Policy. Defaults to stable.
func ParsePolicy(s string) Policy {
	if s == "timestamped" {
		return PolicyTimestamped
	}
	return PolicyStable
}

// Store is an asset directory with a resolved base path. It is the only
// shared mutable resource in the gateway; callers serialize writes per key
// (the gateway does this through its single-flight group).
type Store struct {
	dir          string
	publicPrefix string
	policy       Policy
}

// New builds a Store rooted at dir. Public references are formed by joining
// publicPrefix with a file's base name ("/videos" yields "/videos/Foo.mp4").
func New(dir, publicPrefix string, policy Policy) *Store {
	return &Store{
		dir:          dir,
		publicPrefix: strings.TrimRight(publicPrefix, "/"),
		policy:       policy,
	}
}

// Dir returns the resolved base directory.
func (s *Store) Dir() string { return s.dir }

// Policy returns the active filename policy.
func (s *Store) Policy() Policy { return s.policy }

// EnsureDirectory creates the base directory (and parents) if absent.
// Idempotent.
func (s *Store) EnsureDirectory() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errs.E(errs.KindStorage, "store.EnsureDirectory", err)
	}
	return nil
}

// FileName returns the name a write for key would use under the current
// policy. Under PolicyTimestamped successive calls return distinct names.
func (s *Store) FileName(key string) string {
	if s.policy == PolicyTimestamped {
		return fmt.Sprintf("%s_%d.mp4", key, time.Now().UnixMilli())
	}
	return key + ".mp4"
}

// Write persists data for key and returns the absolute file path. The write
// is all-or-nothing: data goes to a temp file in the same directory which is
// then renamed over the final path, so a crash mid-write never leaves a
// truncated file visible.
func (s *Store) Write(key string, data []byte) (string, error) {
	if err := validKey(key); err != nil {
		return "", errs.E(errs.KindStorage, "store.Write", err)
	}

	path := filepath.Join(s.dir, s.FileName(key))

	tmp, err := os.CreateTemp(s.dir, "."+key+"-*.tmp")
	if err != nil {
		return "", errs.E(errs.KindStorage, "store.Write", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", errs.E(errs.KindStorage, "store.Write", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", errs.E(errs.KindStorage, "store.Write", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", errs.E(errs.KindStorage, "store.Write", err)
	}

	log.Debugf("Asset for key %q written to %s (%d bytes)", key, path, len(data))
	return path, nil
}

// Clear deletes every regular file in the directory. Used by the stable
// policy before each write to uphold at-most-one-resident-asset semantics.
func (s *Store) Clear() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errs.E(errs.KindStorage, "store.Clear", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			return errs.E(errs.KindStorage, "store.Clear", err)
		}
	}
	return nil
}

// PublicReference maps an internal file path to the URL the HTTP layer
// serves it under. Pure, no I/O.
func (s *Store) PublicReference(path string) string {
	return s.publicPrefix + "/" + filepath.Base(path)
}

// validKey rejects keys that could escape the store directory. Upstream
// class names are plain identifiers; anything else is a storage error.
func validKey(key string) error {
	if key == "" {
		return fmt.Errorf("empty asset key")
	}
	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return fmt.Errorf("asset key %q is not filesystem-safe", key)
	}
	return nil
}
