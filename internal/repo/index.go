package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/lilithpkg/lilith/internal/archive"
	"github.com/lilithpkg/lilith/internal/fetch"
)

// ErrMetadataMissing indicates the catalogue has never been downloaded.
var ErrMetadataMissing = errors.New("package metadata not present, run 'lilith update-metadata'")

// catalogueMember is the single file extracted from the packagesite
// archive.
const catalogueMember = "packagesite.yaml"

// SearchMode selects which fields a search query matches.
type SearchMode int

const (
	// SearchNames matches on package names only.
	SearchNames SearchMode = iota
	// SearchAll matches on names and comments.
	SearchAll
)

// Index caches the parsed upstream catalogue. The cache directory holds
// the downloaded packagesite.tzst and the extracted packagesite.yaml.
type Index struct {
	cacheDir string
	records  []Record
	loaded   bool
}

// NewIndex returns an Index backed by cacheDir. Nothing is read until
// Load or Refresh.
func NewIndex(cacheDir string) *Index {
	return &Index{cacheDir: cacheDir}
}

// CataloguePath returns the location of the extracted catalogue file.
func (ix *Index) CataloguePath() string {
	return filepath.Join(ix.cacheDir, catalogueMember)
}

// ArchivePath returns the location of the last downloaded packagesite
// archive.
func (ix *Index) ArchivePath() string {
	return filepath.Join(ix.cacheDir, "packagesite.tzst")
}

// Refresh downloads the packagesite archive from metadataURL, extracts
// the catalogue file into the cache directory, and reloads the records.
func (ix *Index) Refresh(metadataURL string) error {
	if err := os.MkdirAll(ix.cacheDir, 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	if err := fetch.Fetch(metadataURL, ix.ArchivePath()); err != nil {
		return err
	}
	if err := archive.ExtractSingle(ix.ArchivePath(), catalogueMember, ix.CataloguePath()); err != nil {
		return err
	}
	ix.loaded = false
	return ix.Load()
}

// Load parses the cached catalogue. Returns ErrMetadataMissing when the
// cache file does not exist. Idempotent once loaded.
func (ix *Index) Load() error {
	if ix.loaded {
		return nil
	}
	f, err := os.Open(ix.CataloguePath())
	if err != nil {
		if os.IsNotExist(err) {
			return ErrMetadataMissing
		}
		return fmt.Errorf("open catalogue: %w", err)
	}
	defer f.Close()

	records, err := ParseCatalogue(f)
	if err != nil {
		return fmt.Errorf("parse catalogue: %w", err)
	}
	ix.records = records
	ix.loaded = true
	return nil
}

// Loaded reports whether the catalogue has been parsed into memory.
func (ix *Index) Loaded() bool {
	return ix.loaded
}

// Lookup finds the record for name: first an exact name match, then the
// first record whose name starts with name + "-" (the hyphen-then-version
// convention). Prefix ties resolve to the lexicographically smallest
// name, so lookups are deterministic under the same catalogue.
func (ix *Index) Lookup(name string) (*Record, bool) {
	for i := range ix.records {
		if ix.records[i].Name == name {
			return &ix.records[i], true
		}
	}

	var hits []*Record
	prefix := name + "-"
	for i := range ix.records {
		if len(ix.records[i].Name) > len(prefix) && ix.records[i].Name[:len(prefix)] == prefix {
			hits = append(hits, &ix.records[i])
		}
	}
	if len(hits) == 0 {
		return nil, false
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Name < hits[j].Name })
	return hits[0], true
}

// LookupExact finds the record whose name equals name, with no
// hyphen-version prefix fallback.
func (ix *Index) LookupExact(name string) (*Record, bool) {
	for i := range ix.records {
		if ix.records[i].Name == name {
			return &ix.records[i], true
		}
	}
	return nil, false
}

// FindFullname returns the exact name field of the record matching name,
// or "" when absent.
func (ix *Index) FindFullname(name string) (string, bool) {
	rec, ok := ix.Lookup(name)
	if !ok {
		return "", false
	}
	return rec.Name, true
}

// Field returns the named scalar field of the record matching name.
func (ix *Index) Field(name, field string) (string, bool) {
	rec, ok := ix.Lookup(name)
	if !ok {
		return "", false
	}
	switch field {
	case "name":
		return rec.Name, true
	case "version":
		return rec.Version, true
	case "comment":
		return rec.Comment, true
	case "maintainer":
		return rec.Maintainer, true
	case "www":
		return rec.WWW, true
	case "arch":
		return rec.Arch, true
	case "origin":
		return rec.Origin, true
	case "licenselogic":
		return rec.LicenseLogic, true
	case "path":
		return rec.Path, true
	case "pkgsize":
		return fmt.Sprintf("%d", rec.PkgSize), true
	case "flatsize":
		return fmt.Sprintf("%d", rec.FlatSize), true
	default:
		return "", false
	}
}

// Deps returns the sorted key set of the deps mapping for name; empty if
// the package has no dependencies or is unknown.
func (ix *Index) Deps(name string) []string {
	rec, ok := ix.Lookup(name)
	if !ok || len(rec.Deps) == 0 {
		return nil
	}
	deps := make([]string, 0, len(rec.Deps))
	for dep := range rec.Deps {
		deps = append(deps, dep)
	}
	sort.Strings(deps)
	return deps
}

// SearchResult is one catalogue hit.
type SearchResult struct {
	Name    string
	Version string
	Comment string
}

// Search runs a case-insensitive regular-expression match over the
// catalogue. SearchNames matches names only; SearchAll also matches
// comments. Results come back in catalogue order.
func (ix *Index) Search(query string, mode SearchMode) ([]SearchResult, error) {
	re, err := regexp.Compile("(?i)" + query)
	if err != nil {
		return nil, fmt.Errorf("invalid search pattern %q: %w", query, err)
	}

	var results []SearchResult
	for i := range ix.records {
		rec := &ix.records[i]
		if re.MatchString(rec.Name) || (mode == SearchAll && re.MatchString(rec.Comment)) {
			results = append(results, SearchResult{
				Name:    rec.Name,
				Version: rec.Version,
				Comment: rec.Comment,
			})
		}
	}
	return results, nil
}
