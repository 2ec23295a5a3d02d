package state

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest is the per-package metadata document shipped inside each
// archive as +MANIFEST and kept under manifests/<name>.manifest once the
// package is installed. Only the keys of Deps and Files are significant.
type Manifest struct {
	Version string         `yaml:"version"`
	Comment string         `yaml:"comment"`
	Origin  string         `yaml:"origin"`
	Deps    map[string]any `yaml:"deps"`
	Files   map[string]any `yaml:"files"`
}

// DepNames returns the sorted key set of the deps mapping.
func (m *Manifest) DepNames() []string {
	if len(m.Deps) == 0 {
		return nil
	}
	deps := make([]string, 0, len(m.Deps))
	for dep := range m.Deps {
		deps = append(deps, dep)
	}
	sort.Strings(deps)
	return deps
}

// FilePaths returns the sorted key set of the files mapping. Keys are
// absolute paths under the upstream install prefix.
func (m *Manifest) FilePaths() []string {
	if len(m.Files) == 0 {
		return nil
	}
	paths := make([]string, 0, len(m.Files))
	for p := range m.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// DependsOn reports whether dep (exact, or hyphen-version-suffixed) names
// base among this manifest's dependency keys.
func (m *Manifest) DependsOn(base string) bool {
	for dep := range m.Deps {
		if dep == base || DepBase(dep) == base {
			return true
		}
	}
	return false
}

// DepBase strips the version suffix from a dependency token: everything
// from the first hyphen followed by a digit, inclusive. "foo-bar-1.2"
// becomes "foo-bar"; "foo-bar" is unchanged.
func DepBase(dep string) string {
	for i := 0; i+1 < len(dep); i++ {
		if dep[i] == '-' && dep[i+1] >= '0' && dep[i+1] <= '9' {
			return dep[:i]
		}
	}
	return dep
}

// Manifests stores one manifest file per installed package, named exactly
// <name>.manifest.
type Manifests struct {
	dir string
}

// NewManifests returns a Manifests rooted at dir.
func NewManifests(dir string) *Manifests {
	return &Manifests{dir: dir}
}

// Dir returns the manifests directory.
func (ms *Manifests) Dir() string {
	return ms.dir
}

// Path returns the manifest file location for name.
func (ms *Manifests) Path(name string) string {
	return filepath.Join(ms.dir, name+".manifest")
}

// Exists reports whether a manifest for name is stored.
func (ms *Manifests) Exists(name string) bool {
	_, err := os.Stat(ms.Path(name))
	return err == nil
}

// Save copies the manifest document at srcPath into the manifests
// directory under name.
func (ms *Manifests) Save(name, srcPath string) error {
	if err := os.MkdirAll(ms.dir, 0o755); err != nil {
		return fmt.Errorf("create manifests directory: %w", err)
	}
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open manifest: %w", err)
	}
	defer src.Close()

	dst, err := os.OpenFile(ms.Path(name), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create manifest for %s: %w", name, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(ms.Path(name))
		return fmt.Errorf("write manifest for %s: %w", name, err)
	}
	return dst.Close()
}

// Load parses the stored manifest for name.
func (ms *Manifests) Load(name string) (*Manifest, error) {
	data, err := os.ReadFile(ms.Path(name))
	if err != nil {
		return nil, fmt.Errorf("read manifest for %s: %w", name, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest for %s: %w", name, err)
	}
	return &m, nil
}

// Delete removes the stored manifest for name. Missing files are fine.
func (ms *Manifests) Delete(name string) error {
	if err := os.Remove(ms.Path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete manifest for %s: %w", name, err)
	}
	return nil
}

// Names returns the canonical names of every stored manifest, sorted.
func (ms *Manifests) Names() ([]string, error) {
	entries, err := os.ReadDir(ms.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read manifests directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".manifest") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".manifest"))
	}
	sort.Strings(names)
	return names, nil
}
