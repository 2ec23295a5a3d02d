package engine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lilithpkg/lilith/internal/history"
	"github.com/lilithpkg/lilith/internal/repo"
)

func TestSearchRequiresMetadata(t *testing.T) {
	f := newFixture(t, helloPkg())
	eng := newTestEngine(t, f)

	if _, err := eng.Search("hel", repo.SearchNames); !errors.Is(err, repo.ErrMetadataMissing) {
		t.Errorf("Search() before refresh error = %v, want ErrMetadataMissing", err)
	}
}

func TestSearchAfterUpdateMetadata(t *testing.T) {
	f := newFixture(t, helloPkg())
	eng := newTestEngine(t, f)

	if err := eng.UpdateMetadata(); err != nil {
		t.Fatalf("UpdateMetadata() error: %v", err)
	}

	results, err := eng.Search("hel", repo.SearchNames)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 1 || results[0].Name != "hello" || results[0].Version != "2.12" {
		t.Errorf("Search(hel) = %v", results)
	}
}

func TestInfoExactLookupOnly(t *testing.T) {
	pkg := helloPkg()
	pkg.name = "hello-traditional"
	f := newFixture(t, pkg)
	eng := newTestEngine(t, f)

	if err := eng.UpdateMetadata(); err != nil {
		t.Fatalf("UpdateMetadata() error: %v", err)
	}

	// The hyphen-prefix fallback must not apply to info.
	if _, _, err := eng.Info("hello"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Info(hello) error = %v, want ErrNotFound", err)
	}

	rec, installed, err := eng.Info("hello-traditional")
	if err != nil {
		t.Fatalf("Info() error: %v", err)
	}
	if rec.Version != "2.12" {
		t.Errorf("Info().Version = %q", rec.Version)
	}
	if installed {
		t.Error("Info() reports an uninstalled package as installed")
	}
}

func TestListReflectsStoreOrder(t *testing.T) {
	f := newFixture(t, withDep()...)
	eng := newTestEngine(t, f)

	if err := eng.Install("hello", InstallOpts{}); err != nil {
		t.Fatalf("Install() error: %v", err)
	}

	records, err := eng.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	// Dependencies install before their dependents.
	if len(records) != 2 || records[0].Name != "gettext-runtime" || records[1].Name != "hello" {
		t.Errorf("List() = %v", records)
	}
}

func TestHistoryRecordsOperations(t *testing.T) {
	f := newFixture(t, helloPkg())
	eng := newTestEngine(t, f)

	if err := eng.Install("hello", InstallOpts{}); err != nil {
		t.Fatalf("Install() error: %v", err)
	}
	if err := eng.Remove("hello", RemoveOpts{}); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}

	events, err := eng.History(10)
	if err != nil {
		t.Fatalf("History() error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("History() returned %d events, want 2", len(events))
	}
	if events[0].Action != history.ActionRemove || events[1].Action != history.ActionInstall {
		t.Errorf("event order = %s, %s", events[0].Action, events[1].Action)
	}
}

func TestHistoryForPackage(t *testing.T) {
	f := newFixture(t, withDep()...)
	eng := newTestEngine(t, f)

	if err := eng.Install("hello", InstallOpts{}); err != nil {
		t.Fatalf("Install() error: %v", err)
	}

	events, err := eng.HistoryFor("gettext-runtime")
	if err != nil {
		t.Fatalf("HistoryFor() error: %v", err)
	}
	if len(events) != 1 || events[0].Package != "gettext-runtime" {
		t.Errorf("HistoryFor(gettext-runtime) = %+v", events)
	}
	if events[0].Action != history.ActionInstall {
		t.Errorf("event action = %s, want install", events[0].Action)
	}
}

func TestFixSymlinks(t *testing.T) {
	f := newFixture(t, helloPkg())
	eng := newTestEngine(t, f)
	if err := eng.layout.Init(); err != nil {
		t.Fatalf("Init() error: %v", err)
	}

	// A dead link at depth one and an unlinked library at depth two.
	lib := eng.layout.LibDir()
	if err := os.Symlink("gone.so.1", filepath.Join(lib, "libgone.so")); err != nil {
		t.Fatalf("Symlink: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(lib, "sub"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(lib, "sub", "libnew.so.2"), []byte("elf"), 0o755); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := eng.FixSymlinks(); err != nil {
		t.Fatalf("FixSymlinks() error: %v", err)
	}

	if _, err := os.Lstat(filepath.Join(lib, "libgone.so")); !os.IsNotExist(err) {
		t.Error("dead link survived fix-symlinks")
	}
	if _, err := os.Stat(filepath.Join(lib, "libnew.so")); err != nil {
		t.Errorf("missing rebuilt alias: %v", err)
	}
}
