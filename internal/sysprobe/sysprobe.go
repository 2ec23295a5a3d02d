// Package sysprobe decides whether the host operating system already
// provides a named package, so dependency installation can skip it.
package sysprobe

import (
	"os"
	"os/exec"
	"path/filepath"
)

// Probe checks host-provided binaries, shared libraries, and pkg-config
// registrations. The zero value checks only the executable search path;
// New also fills in the host library directories and pkg-config.
type Probe struct {
	// LibDirs are the directories scanned for lib<name>.so / <name>.so.
	LibDirs []string
	// PkgConfig is the package-config tool consulted for <name> and
	// lib<name>. Left empty, pkg-config checks are skipped.
	PkgConfig string
	// LookPath resolves an executable on the search path. Defaults to
	// exec.LookPath.
	LookPath func(string) (string, error)
}

// New returns a Probe with the host defaults.
func New() *Probe {
	return &Probe{
		LibDirs:   []string{"/usr/lib", "/usr/local/lib"},
		PkgConfig: "pkg-config",
		LookPath:  exec.LookPath,
	}
}

// Provided reports whether the host satisfies name: an executable of that
// name on the search path, a shared library under one of LibDirs, or a
// pkg-config entry for name or lib<name>.
func (p *Probe) Provided(name string) bool {
	if p.LookPath == nil {
		p.LookPath = exec.LookPath
	}

	if _, err := p.LookPath(name); err == nil {
		return true
	}

	for _, dir := range p.LibDirs {
		for _, lib := range []string{"lib" + name + ".so", name + ".so"} {
			if fileExists(filepath.Join(dir, lib)) {
				return true
			}
		}
	}

	if p.PkgConfig != "" {
		if _, err := p.LookPath(p.PkgConfig); err == nil {
			for _, query := range []string{name, "lib" + name} {
				if exec.Command(p.PkgConfig, "--exists", query).Run() == nil {
					return true
				}
			}
		}
	}

	return false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
