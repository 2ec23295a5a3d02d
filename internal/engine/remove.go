package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/lilithpkg/lilith/internal/history"
	"github.com/lilithpkg/lilith/internal/state"
)

// RemoveOpts controls a remove operation.
type RemoveOpts struct {
	// Force removes the package even when other installed packages
	// depend on it.
	Force bool
	// NoAutoRemove suppresses the orphaned-dependency sweep.
	NoAutoRemove bool

	// noCleanup suppresses the dead-link purge inside recursive orphan
	// removals; the purge runs once at the top call.
	noCleanup bool
}

// Remove removes name using its manifest, then sweeps orphaned
// dependencies unless told otherwise.
func (e *Engine) Remove(name string, opts RemoveOpts) error {
	release, err := e.layout.Lock()
	if err != nil {
		return err
	}
	defer release()

	return e.remove(name, opts)
}

func (e *Engine) remove(name string, opts RemoveOpts) error {
	installed, err := e.store.Contains(name)
	if err != nil {
		return err
	}
	if !installed {
		return fmt.Errorf("%w: %s", ErrNotInstalled, name)
	}

	if !opts.Force {
		dependents, err := e.requiredBy(name)
		if err != nil {
			return err
		}
		if len(dependents) > 0 {
			return &RequiredByError{Name: name, Dependents: dependents}
		}
	}

	// Snapshot the dependency keys before the manifest goes away.
	var deps []string
	man, err := e.manifests.Load(name)
	switch {
	case err == nil:
		deps = man.DepNames()
		if err := e.removeFiles(man); err != nil {
			return err
		}
	case errors.Is(err, fs.ErrNotExist):
		e.out.Warningf("no manifest for %s, removing store entry only", name)
	default:
		return err
	}

	if err := e.layout.PruneEmptyDirs(); err != nil {
		return err
	}

	rec, _, err := e.store.Get(name)
	if err != nil {
		return err
	}
	if err := e.store.Remove(name); err != nil {
		return err
	}
	if err := e.manifests.Delete(name); err != nil {
		return err
	}

	e.recordEvent(name, rec.Version, history.ActionRemove)
	e.out.Successf("removed %s", name)

	if !opts.NoAutoRemove {
		if err := e.removeOrphans(deps, opts); err != nil {
			return err
		}
	}

	if !opts.noCleanup {
		if err := e.farm.Purge(); err != nil {
			return err
		}
	}
	return nil
}

// removeFiles unlinks every manifest-listed file after translating it
// from the upstream prefix into the user prefix. Directory keys are only
// removed when empty.
func (e *Engine) removeFiles(man *state.Manifest) error {
	for _, path := range man.FilePaths() {
		target := e.layout.Translate(e.cfg.UpstreamPrefix, path)
		if target == "" {
			continue
		}
		info, err := os.Lstat(target)
		if err != nil {
			continue
		}
		if info.IsDir() {
			// Only goes away when nothing else lives there.
			os.Remove(target)
			continue
		}
		if err := os.Remove(target); err != nil {
			return fmt.Errorf("unlink %s: %w", target, err)
		}
	}
	return nil
}

// removeOrphans recursively removes saved dependencies that are installed
// and no longer required by anything. The dead-link purge is deferred to
// the top-level call.
func (e *Engine) removeOrphans(deps []string, opts RemoveOpts) error {
	for _, dep := range deps {
		base := state.DepBase(dep)

		installed, err := e.store.Contains(base)
		if err != nil {
			return err
		}
		if !installed {
			continue
		}
		dependents, err := e.requiredBy(base)
		if err != nil {
			return err
		}
		if len(dependents) > 0 {
			continue
		}

		e.out.Infof("removing orphaned dependency %s", base)
		child := opts
		child.noCleanup = true
		if err := e.remove(base, child); err != nil {
			return err
		}
	}
	return nil
}

// requiredBy returns the installed packages whose manifests list name
// (exact or hyphen-version-suffixed) among their dependency keys.
func (e *Engine) requiredBy(name string) ([]string, error) {
	records, err := e.store.List()
	if err != nil {
		return nil, err
	}

	var dependents []string
	for _, rec := range records {
		if rec.Name == name {
			continue
		}
		man, err := e.manifests.Load(rec.Name)
		if err != nil {
			continue
		}
		if man.DependsOn(name) {
			dependents = append(dependents, rec.Name)
		}
	}
	sort.Strings(dependents)
	return dependents, nil
}
