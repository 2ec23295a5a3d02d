package engine

import (
	"fmt"

	"github.com/lilithpkg/lilith/internal/history"
	"github.com/lilithpkg/lilith/internal/repo"
	"github.com/lilithpkg/lilith/internal/state"
)

// List returns the installed records in store order.
func (e *Engine) List() ([]state.Record, error) {
	return e.store.List()
}

// Search queries the catalogue. The catalogue must already be present;
// run update-metadata first.
func (e *Engine) Search(query string, mode repo.SearchMode) ([]repo.SearchResult, error) {
	if err := e.index.Load(); err != nil {
		return nil, err
	}
	return e.index.Search(query, mode)
}

// Info returns the catalogue record for name using an exact-name lookup
// only, plus whether the package is installed locally.
func (e *Engine) Info(name string) (*repo.Record, bool, error) {
	if err := e.index.Load(); err != nil {
		return nil, false, err
	}
	rec, ok := e.index.LookupExact(name)
	if !ok {
		return nil, false, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	installed, err := e.store.Contains(name)
	if err != nil {
		return nil, false, err
	}
	return rec, installed, nil
}

// UpdateMetadata downloads a fresh catalogue.
func (e *Engine) UpdateMetadata() error {
	release, err := e.layout.Lock()
	if err != nil {
		return err
	}
	defer release()

	if err := e.layout.Init(); err != nil {
		return err
	}
	return e.refreshCatalogue()
}

// FixSymlinks purges dead links and rebuilds the shared-library aliases.
func (e *Engine) FixSymlinks() error {
	release, err := e.layout.Lock()
	if err != nil {
		return err
	}
	defer release()

	if err := e.farm.Purge(); err != nil {
		return err
	}
	if err := e.farm.Reindex(); err != nil {
		return err
	}
	e.out.Successf("symlink farm rebuilt")
	return nil
}

// History returns up to limit journal events, newest first.
func (e *Engine) History(limit int) ([]history.Event, error) {
	j, err := history.Open(e.layout.HistoryDB())
	if err != nil {
		return nil, err
	}
	defer j.Close()
	return j.Recent(limit)
}

// HistoryFor returns every journal event for name, newest first.
func (e *Engine) HistoryFor(name string) ([]history.Event, error) {
	j, err := history.Open(e.layout.HistoryDB())
	if err != nil {
		return nil, err
	}
	defer j.Close()
	return j.ForPackage(name)
}
