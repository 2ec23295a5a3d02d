package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lilithpkg/lilith/internal/archive"
	"github.com/lilithpkg/lilith/internal/fetch"
	"github.com/lilithpkg/lilith/internal/history"
	"github.com/lilithpkg/lilith/internal/state"
)

// InstallOpts controls dependency handling for an install.
type InstallOpts struct {
	// FullDeps installs dependencies even when the host already
	// provides them.
	FullDeps bool
	// NoDeps skips dependency installation for the requested package
	// only; dependencies of anything that does get installed are still
	// resolved. NoDeps wins when both flags are set.
	NoDeps bool
}

// Install installs name and its missing dependencies.
func (e *Engine) Install(name string, opts InstallOpts) error {
	release, err := e.layout.Lock()
	if err != nil {
		return err
	}
	defer release()

	e.layout.SweepTmp()

	if err := e.layout.Init(); err != nil {
		return err
	}
	if _, err := e.resolveABI(); err != nil {
		return err
	}
	if err := e.ensureCatalogue(true); err != nil {
		return err
	}

	return e.install(name, opts, map[string]bool{})
}

// install is the recursive resolver. stack holds the names currently
// being installed in this chain; revisiting one cuts the cycle.
func (e *Engine) install(name string, opts InstallOpts, stack map[string]bool) error {
	if stack[name] {
		e.out.Warningf("dependency cycle detected at %s, skipping", name)
		return nil
	}
	stack[name] = true
	defer delete(stack, name)

	fullName, ok := e.index.FindFullname(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	installed, err := e.store.Contains(name)
	if err != nil {
		return err
	}
	if installed {
		e.out.Warningf("%s is already installed", name)
		return nil
	}

	if !opts.NoDeps {
		if err := e.installDeps(fullName, opts, stack); err != nil {
			return err
		}
	}

	return e.installOne(name, fullName)
}

// installDeps resolves and installs the missing dependencies of fullName.
// NoDeps never propagates; FullDeps does.
func (e *Engine) installDeps(fullName string, opts InstallOpts, stack map[string]bool) error {
	for _, dep := range e.index.Deps(fullName) {
		base := state.DepBase(dep)

		installed, err := e.store.Contains(base)
		if err != nil {
			return err
		}
		if installed {
			continue
		}
		if !opts.FullDeps && e.probe.Provided(base) {
			e.out.Infof("dependency %s is provided by the system, skipping", base)
			continue
		}

		e.out.Infof("installing dependency %s", base)
		if err := e.install(base, InstallOpts{FullDeps: opts.FullDeps}, stack); err != nil {
			return err
		}
	}
	return nil
}

// installOne fetches, extracts, and records a single package. The
// installed store and manifest are only written once the prefix mirror
// completed, so a failed install retries cleanly.
func (e *Engine) installOne(name, fullName string) error {
	rec, ok := e.index.Lookup(fullName)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, fullName)
	}
	filename := filepath.Base(rec.Path)
	if filename == "." || filename == "/" || filename == "" {
		return fmt.Errorf("catalogue entry for %s has no archive path", fullName)
	}

	a, err := e.resolveABI()
	if err != nil {
		return err
	}
	url := a.RepoBaseURL(e.cfg.RepoScheme, e.cfg.RepoHost, e.cfg.Branch) + "/" + filename

	archivePath := filepath.Join(e.layout.TmpDir(), filename)
	e.out.Infof("fetching %s", url)
	if err := fetch.Fetch(url, archivePath); err != nil {
		return err
	}
	defer os.Remove(archivePath)

	tempDir, err := e.layout.NewTempDir()
	if err != nil {
		return err
	}
	defer os.RemoveAll(tempDir)

	if err := archive.Extract(archivePath, tempDir); err != nil {
		return err
	}

	if err := e.mirror(tempDir); err != nil {
		return err
	}

	if err := e.farm.Reindex(); err != nil {
		return err
	}

	// The manifest and store line land last, back to back, so a failure
	// anywhere above leaves neither behind and a retry starts clean.
	manifestSrc := filepath.Join(tempDir, "+MANIFEST")
	haveManifest := false
	if _, err := os.Stat(manifestSrc); err == nil {
		if err := e.manifests.Save(name, manifestSrc); err != nil {
			return err
		}
		haveManifest = true
	}

	storeRec := state.Record{
		Name:    name,
		Version: unknownField,
		Comment: unknownField,
		Origin:  unknownField,
	}
	if haveManifest {
		if man, err := e.manifests.Load(name); err == nil {
			if man.Version != "" {
				storeRec.Version = man.Version
			}
			if man.Comment != "" {
				storeRec.Comment = man.Comment
			}
			if man.Origin != "" {
				storeRec.Origin = man.Origin
			}
		}
	}
	if err := e.store.Add(storeRec); err != nil {
		// Keep the manifest and store line paired: no line, no manifest.
		e.manifests.Delete(name)
		return err
	}

	e.recordEvent(name, storeRec.Version, history.ActionInstall)
	e.out.Successf("installed %s-%s", name, storeRec.Version)
	return nil
}
