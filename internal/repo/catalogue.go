// Package repo downloads, caches, and queries the upstream package
// catalogue.
package repo

import (
	"bufio"
	"io"

	"gopkg.in/yaml.v3"
)

// Record is one catalogue entry, keyed by canonical (unversioned) name.
// The catalogue feed carries one document per line; unknown fields are
// ignored and malformed lines are skipped.
type Record struct {
	Name         string         `yaml:"name"`
	Version      string         `yaml:"version"`
	Comment      string         `yaml:"comment"`
	Maintainer   string         `yaml:"maintainer"`
	WWW          string         `yaml:"www"`
	Arch         string         `yaml:"arch"`
	Origin       string         `yaml:"origin"`
	Categories   []string       `yaml:"categories"`
	LicenseLogic string         `yaml:"licenselogic"`
	Licenses     []string       `yaml:"licenses"`
	PkgSize      int64          `yaml:"pkgsize"`
	FlatSize     int64          `yaml:"flatsize"`
	Deps         map[string]any `yaml:"deps"`
	Path         string         `yaml:"path"`
}

// maxRecordLine bounds a single catalogue line. Records listing thousands
// of files run long; one megabyte covers the feed with room to spare.
const maxRecordLine = 1 << 20

// ParseCatalogue reads the newline-delimited feed and returns the records
// in feed order. Lines that do not decode, or that carry no name, are
// skipped rather than failing the whole catalogue.
func ParseCatalogue(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxRecordLine)

	var records []Record
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := yaml.Unmarshal(line, &rec); err != nil {
			continue
		}
		if rec.Name == "" {
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
