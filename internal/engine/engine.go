// Package engine implements the package-management core: dependency
// resolution, install and remove operations, and the query surface.
package engine

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/lilithpkg/lilith/internal/abi"
	"github.com/lilithpkg/lilith/internal/config"
	"github.com/lilithpkg/lilith/internal/history"
	"github.com/lilithpkg/lilith/internal/linkfarm"
	"github.com/lilithpkg/lilith/internal/output"
	"github.com/lilithpkg/lilith/internal/prefix"
	"github.com/lilithpkg/lilith/internal/repo"
	"github.com/lilithpkg/lilith/internal/state"
	"github.com/lilithpkg/lilith/internal/sysprobe"
)

// unknownField is the sentinel recorded when a manifest omits a value.
const unknownField = "unknown"

// Engine carries the state shared by every operation: the prefix layout,
// the installed set, the catalogue, and the cached ABI triple.
type Engine struct {
	cfg       config.Config
	out       output.Sink
	layout    *prefix.Layout
	store     *state.Store
	manifests *state.Manifests
	index     *repo.Index
	farm      *linkfarm.Farm
	probe     *sysprobe.Probe

	hostABI *abi.ABI
}

// New builds an Engine over the configured prefix. Nothing touches the
// filesystem until an operation runs.
func New(cfg config.Config, out output.Sink) *Engine {
	layout := prefix.New(cfg.Prefix)
	return &Engine{
		cfg:       cfg,
		out:       out,
		layout:    layout,
		store:     state.NewStore(layout.InstalledFile()),
		manifests: state.NewManifests(layout.ManifestsDir()),
		index:     repo.NewIndex(layout.CacheDir()),
		farm:      linkfarm.New(layout.LibDir()),
		probe:     sysprobe.New(),
	}
}

// SetABI pins the ABI triple instead of probing the host. Tests use this
// to point the engine at a fixture repository.
func (e *Engine) SetABI(a abi.ABI) {
	e.hostABI = &a
}

// SetProbe replaces the system-shadow probe.
func (e *Engine) SetProbe(p *sysprobe.Probe) {
	e.probe = p
}

// resolveABI probes the host once and caches the triple for the process.
func (e *Engine) resolveABI() (abi.ABI, error) {
	if e.hostABI != nil {
		return *e.hostABI, nil
	}
	a, err := abi.Probe()
	if err != nil {
		return abi.ABI{}, fmt.Errorf("%w: %v", ErrEnvProbe, err)
	}
	e.hostABI = &a
	e.out.Infof("host ABI: %s", a)
	return a, nil
}

// ensureCatalogue loads the cached catalogue. With autoRefresh it
// downloads the catalogue when the cache is absent; otherwise the
// metadata-missing error surfaces to the caller.
func (e *Engine) ensureCatalogue(autoRefresh bool) error {
	err := e.index.Load()
	if err == nil {
		return nil
	}
	if !errors.Is(err, repo.ErrMetadataMissing) || !autoRefresh {
		return err
	}
	return e.refreshCatalogue()
}

// refreshCatalogue downloads and reparses the upstream catalogue.
func (e *Engine) refreshCatalogue() error {
	a, err := e.resolveABI()
	if err != nil {
		return err
	}
	url := a.MetadataURL(e.cfg.RepoScheme, e.cfg.RepoHost, e.cfg.Branch)
	e.out.Infof("updating package metadata from %s", url)
	if err := e.index.Refresh(url); err != nil {
		return err
	}
	e.out.Successf("package metadata updated")
	return nil
}

// recordEvent appends to the operation journal. Journal trouble is a
// warning, never a command failure.
func (e *Engine) recordEvent(name, version, action string) {
	j, err := history.Open(e.layout.HistoryDB())
	if err != nil {
		e.out.Warningf("history journal unavailable: %v", err)
		return
	}
	defer j.Close()
	if err := j.Record(name, version, action); err != nil {
		e.out.Warningf("history journal write failed: %v", err)
	}
}

// mirror copies the usr/local subtree of an extracted package into the
// prefix, preserving relative paths, permissions, and symlinks.
func (e *Engine) mirror(tempDir string) error {
	src := filepath.Join(tempDir, "usr", "local")
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return nil
	}

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		dst := filepath.Join(e.layout.Root, rel)

		info, err := os.Lstat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", rel, err)
		}

		switch {
		case info.Mode()&os.ModeSymlink != 0:
			target, err := os.Readlink(path)
			if err != nil {
				return fmt.Errorf("read link %s: %w", rel, err)
			}
			if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
				return fmt.Errorf("create directory for %s: %w", rel, err)
			}
			os.Remove(dst)
			if err := os.Symlink(target, dst); err != nil {
				return fmt.Errorf("create symlink %s: %w", rel, err)
			}
		case d.IsDir():
			if err := os.MkdirAll(dst, info.Mode().Perm()|0o700); err != nil {
				return fmt.Errorf("create directory %s: %w", rel, err)
			}
		default:
			if err := copyFile(path, dst, info.Mode().Perm()); err != nil {
				return fmt.Errorf("copy %s: %w", rel, err)
			}
		}
		return nil
	})
}

func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	os.Remove(dst)
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
