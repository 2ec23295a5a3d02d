// Package prefix lays out and initializes the user-owned install tree.
package prefix

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// ErrBusy indicates another lilith invocation holds the prefix lock.
var ErrBusy = errors.New("prefix is busy: another lilith instance is running")

// subdirs are the tree directories created at init time. Ancillary
// directories appear on demand during extraction.
var subdirs = []string{"bin", "sbin", "lib", "libdata", "include", "share"}

// Layout resolves every well-known path under the prefix root.
type Layout struct {
	Root string
}

// New returns a Layout rooted at root.
func New(root string) *Layout {
	return &Layout{Root: root}
}

func (l *Layout) LibDir() string        { return filepath.Join(l.Root, "lib") }
func (l *Layout) InstalledFile() string { return filepath.Join(l.Root, "installed_packages.txt") }
func (l *Layout) ManifestsDir() string  { return filepath.Join(l.Root, "manifests") }
func (l *Layout) CacheDir() string      { return filepath.Join(l.Root, "cache") }
func (l *Layout) TmpDir() string        { return filepath.Join(l.Root, "tmp") }
func (l *Layout) HistoryDB() string     { return filepath.Join(l.Root, "history.db") }
func (l *Layout) LockFile() string      { return filepath.Join(l.Root, ".lock") }

// Init creates the prefix tree if missing. Idempotent.
func (l *Layout) Init() error {
	for _, sub := range subdirs {
		if err := os.MkdirAll(filepath.Join(l.Root, sub), 0o755); err != nil {
			return fmt.Errorf("create prefix directory %s: %w", sub, err)
		}
	}
	for _, dir := range []string{l.ManifestsDir(), l.CacheDir(), l.TmpDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create prefix directory %s: %w", dir, err)
		}
	}
	return nil
}

// Translate maps an absolute upstream path (e.g. /usr/local/bin/foo) to
// its location under the prefix. Paths outside upstreamPrefix map to "".
func (l *Layout) Translate(upstreamPrefix, path string) string {
	rel, err := filepath.Rel(upstreamPrefix, path)
	if err != nil || rel == ".." || filepath.IsAbs(rel) || len(rel) >= 3 && rel[:3] == ".."+string(os.PathSeparator) {
		return ""
	}
	if rel == "." {
		return l.Root
	}
	return filepath.Join(l.Root, rel)
}

// Lock takes an advisory exclusive lock on the prefix, serializing
// concurrent invocations. Returns ErrBusy when another process holds it.
// The returned release function unlocks and closes the lock file; the
// file itself stays in place.
// Lock runs before Init on a first use, so it creates the prefix root
// itself.
func (l *Layout) Lock() (func(), error) {
	if err := os.MkdirAll(l.Root, 0o755); err != nil {
		return nil, fmt.Errorf("create prefix: %w", err)
	}
	f, err := os.OpenFile(l.LockFile(), os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if err == unix.EWOULDBLOCK {
			return nil, ErrBusy
		}
		return nil, fmt.Errorf("lock prefix: %w", err)
	}
	return func() {
		unix.Flock(int(f.Fd()), unix.LOCK_UN)
		f.Close()
	}, nil
}

// NewTempDir creates a uniquely named scratch directory under tmp/ for
// one extraction.
func (l *Layout) NewTempDir() (string, error) {
	if err := os.MkdirAll(l.TmpDir(), 0o755); err != nil {
		return "", fmt.Errorf("create tmp directory: %w", err)
	}
	dir, err := os.MkdirTemp(l.TmpDir(), "extract-*")
	if err != nil {
		return "", fmt.Errorf("create scratch directory: %w", err)
	}
	return dir, nil
}

// SweepTmp removes scratch directories left behind by a crashed
// invocation. Best effort.
func (l *Layout) SweepTmp() {
	entries, err := os.ReadDir(l.TmpDir())
	if err != nil {
		return
	}
	for _, e := range entries {
		os.RemoveAll(filepath.Join(l.TmpDir(), e.Name()))
	}
}

// PruneEmptyDirs removes every empty directory below the prefix,
// bottom-up. The well-known top-level directories stay in place.
func (l *Layout) PruneEmptyDirs() error {
	var dirs []string
	err := filepath.WalkDir(l.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && path != l.Root {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk prefix: %w", err)
	}

	// Deepest first.
	for i := len(dirs) - 1; i >= 0; i-- {
		dir := dirs[i]
		if l.isTopLevel(dir) {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			continue
		}
		os.Remove(dir)
	}
	return nil
}

// isTopLevel reports whether dir is one of the fixed prefix directories.
func (l *Layout) isTopLevel(dir string) bool {
	if filepath.Dir(dir) != l.Root {
		return false
	}
	base := filepath.Base(dir)
	for _, sub := range subdirs {
		if base == sub {
			return true
		}
	}
	switch base {
	case "manifests", "cache", "tmp":
		return true
	}
	return false
}
