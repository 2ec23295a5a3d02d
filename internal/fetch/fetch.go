// Package fetch downloads repository files over HTTP.
package fetch

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// Fetch downloads url into destPath. The body is written to a temporary
// file in the destination directory and renamed into place on success, so
// destPath never holds a partial download. No retries; the caller decides.
func Fetch(url, destPath string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create download directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(destPath)+".part-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("download %s: %w", url, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("finalize download: %w", err)
	}

	return nil
}
