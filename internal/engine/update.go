package engine

import (
	"fmt"

	"github.com/lilithpkg/lilith/internal/history"
)

// Update refreshes the catalogue and reinstalls name when the upstream
// version differs from the installed one.
func (e *Engine) Update(name string) error {
	release, err := e.layout.Lock()
	if err != nil {
		return err
	}
	defer release()

	rec, installed, err := e.store.Get(name)
	if err != nil {
		return err
	}
	if !installed {
		return fmt.Errorf("%w: %s", ErrNotInstalled, name)
	}

	if err := e.layout.Init(); err != nil {
		return err
	}
	if err := e.refreshCatalogue(); err != nil {
		return err
	}

	fullName, ok := e.index.FindFullname(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	latest, _ := e.index.Field(fullName, "version")

	if latest == rec.Version {
		e.out.Infof("%s is already at the latest version (%s)", name, rec.Version)
		return nil
	}

	e.out.Infof("updating %s: %s -> %s", name, rec.Version, latest)
	if err := e.remove(name, RemoveOpts{}); err != nil {
		return err
	}
	if err := e.install(name, InstallOpts{}, map[string]bool{}); err != nil {
		return err
	}

	e.recordEvent(name, latest, history.ActionUpdate)
	return nil
}
