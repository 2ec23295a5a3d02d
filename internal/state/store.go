// Package state persists the installed-package set and per-package
// manifests under the prefix.
package state

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Record is one line of the installed store.
type Record struct {
	Name    string
	Version string
	Comment string
	Origin  string
}

// Store is the line-oriented installed-package file. One line per
// package: name:version:comment:origin.
type Store struct {
	path string
}

// NewStore returns a Store backed by path. The file is created lazily on
// first Add.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file location.
func (s *Store) Path() string {
	return s.path
}

// validateField rejects values that would corrupt the line format.
func validateField(kind, value string) error {
	if strings.ContainsAny(value, ":\n") {
		return fmt.Errorf("invalid %s %q: must not contain ':' or newline", kind, value)
	}
	return nil
}

// Add appends a record for name. Idempotent: if a line for name already
// exists the call is a no-op.
func (s *Store) Add(rec Record) error {
	if err := validateField("package name", rec.Name); err != nil {
		return err
	}
	if err := validateField("version", rec.Version); err != nil {
		return err
	}

	present, err := s.Contains(rec.Name)
	if err != nil {
		return err
	}
	if present {
		return nil
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open installed store: %w", err)
	}
	defer f.Close()

	comment := strings.ReplaceAll(rec.Comment, "\n", " ")
	origin := strings.ReplaceAll(rec.Origin, "\n", " ")
	if _, err := fmt.Fprintf(f, "%s:%s:%s:%s\n", rec.Name, rec.Version, comment, origin); err != nil {
		return fmt.Errorf("append installed store: %w", err)
	}
	return nil
}

// Remove rewrites the store without the line for name. Removing an absent
// name is a no-op.
func (s *Store) Remove(name string) error {
	records, err := s.List()
	if err != nil {
		return err
	}

	var sb strings.Builder
	for _, rec := range records {
		if rec.Name == name {
			continue
		}
		fmt.Fprintf(&sb, "%s:%s:%s:%s\n", rec.Name, rec.Version, rec.Comment, rec.Origin)
	}

	if err := os.WriteFile(s.path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("rewrite installed store: %w", err)
	}
	return nil
}

// Contains reports whether a record for name exists.
func (s *Store) Contains(name string) (bool, error) {
	records, err := s.List()
	if err != nil {
		return false, err
	}
	for _, rec := range records {
		if rec.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// Get returns the record for name.
func (s *Store) Get(name string) (Record, bool, error) {
	records, err := s.List()
	if err != nil {
		return Record{}, false, err
	}
	for _, rec := range records {
		if rec.Name == name {
			return rec, true, nil
		}
	}
	return Record{}, false, nil
}

// List returns all records in file order. A missing store file is an
// empty set, not an error.
func (s *Store) List() ([]Record, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open installed store: %w", err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ":", 4)
		if len(parts) != 4 {
			continue
		}
		records = append(records, Record{
			Name:    parts[0],
			Version: parts[1],
			Comment: parts[2],
			Origin:  parts[3],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read installed store: %w", err)
	}
	return records, nil
}
