// Package linkfarm maintains the versioned shared-library aliases inside
// prefix/lib so the dynamic linker can resolve every SONAME produced by
// installed packages.
package linkfarm

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Farm manages the flat alias collection at the top of a lib directory.
type Farm struct {
	libDir string
}

// New returns a Farm over libDir.
func New(libDir string) *Farm {
	return &Farm{libDir: libDir}
}

// Reindex walks every regular shared-object file below the lib directory
// at depth two or more and creates the missing aliases at depth one: the
// file's basename, the major-minor truncation, the major-only truncation,
// and the unversioned bare name, each as a relative symlink. Existing
// entries are never overwritten.
func (f *Farm) Reindex() error {
	if _, err := os.Stat(f.libDir); os.IsNotExist(err) {
		return nil
	}

	return filepath.WalkDir(f.libDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		// Depth 1 files already live where the linker looks.
		if filepath.Dir(path) == f.libDir {
			return nil
		}
		base := filepath.Base(path)
		if !isSharedObject(base) {
			return nil
		}

		rel, err := filepath.Rel(f.libDir, path)
		if err != nil {
			return fmt.Errorf("relativize %s: %w", path, err)
		}

		for _, alias := range Aliases(base) {
			link := filepath.Join(f.libDir, alias)
			if _, err := os.Lstat(link); err == nil {
				continue
			}
			if err := os.Symlink(rel, link); err != nil {
				return fmt.Errorf("create alias %s: %w", alias, err)
			}
		}
		return nil
	})
}

// Purge deletes every depth-one symlink whose target no longer exists.
func (f *Farm) Purge() error {
	entries, err := os.ReadDir(f.libDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read lib directory: %w", err)
	}

	for _, e := range entries {
		if e.Type()&os.ModeSymlink == 0 {
			continue
		}
		link := filepath.Join(f.libDir, e.Name())
		if _, err := os.Stat(link); err != nil {
			if err := os.Remove(link); err != nil {
				return fmt.Errorf("remove dead link %s: %w", e.Name(), err)
			}
		}
	}
	return nil
}

// Aliases computes the alias names for a shared-object basename, without
// duplicates. For "libfoo.so.5.40.2" that is the basename itself,
// "libfoo.so.5.40", "libfoo.so.5", and "libfoo.so".
func Aliases(base string) []string {
	idx := strings.LastIndex(base, ".so")
	if idx < 0 {
		return nil
	}
	stem := base[:idx+len(".so")]
	suffix := strings.TrimPrefix(base[idx+len(".so"):], ".")

	var names []string
	add := func(n string) {
		for _, seen := range names {
			if seen == n {
				return
			}
		}
		names = append(names, n)
	}

	add(base)
	if suffix != "" {
		parts := strings.Split(suffix, ".")
		if len(parts) >= 3 {
			add(stem + "." + strings.Join(parts[:2], "."))
		}
		if len(parts) >= 2 {
			add(stem + "." + parts[0])
		}
	}
	add(stem)
	return names
}

// isSharedObject reports whether base matches *.so or *.so.*.
func isSharedObject(base string) bool {
	return strings.HasSuffix(base, ".so") || strings.Contains(base, ".so.")
}
