// Package archive unpacks zstd-compressed tar streams.
package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// ErrUnsafePath is returned when an archive entry would escape the
// destination directory.
var ErrUnsafePath = errors.New("archive entry escapes destination")

// Extract decompresses and unpacks the zstd tar stream at srcPath into
// destDir. Relative paths and permissions are preserved; symlinks are
// recreated. Entries that would escape destDir abort the extraction.
func Extract(srcPath, destDir string) error {
	f, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return fmt.Errorf("zstd reader: %w", err)
	}
	defer zr.Close()

	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read archive %s: %w", srcPath, err)
		}
		if err := writeEntry(tr, hdr, destDir); err != nil {
			return err
		}
	}
}

// ExtractSingle extracts the entry named member from the archive at
// srcPath and writes it to destPath. Fails if the member is absent.
func ExtractSingle(srcPath, member, destPath string) error {
	f, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return fmt.Errorf("zstd reader: %w", err)
	}
	defer zr.Close()

	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return fmt.Errorf("archive %s: member %q not found", srcPath, member)
		}
		if err != nil {
			return fmt.Errorf("read archive %s: %w", srcPath, err)
		}
		if cleanName(hdr.Name) != member {
			continue
		}

		if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
		out, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			return fmt.Errorf("create %s: %w", destPath, err)
		}
		if _, err := io.Copy(out, tr); err != nil {
			out.Close()
			os.Remove(destPath)
			return fmt.Errorf("extract %s: %w", member, err)
		}
		return out.Close()
	}
}

// writeEntry materializes one tar entry under destDir, rejecting paths
// that resolve outside it.
func writeEntry(tr *tar.Reader, hdr *tar.Header, destDir string) error {
	name := cleanName(hdr.Name)
	if name == "" || name == "." {
		return nil
	}

	target, err := securePath(destDir, name)
	if err != nil {
		return err
	}

	switch hdr.Typeflag {
	case tar.TypeDir:
		if err := os.MkdirAll(target, os.FileMode(hdr.Mode)|0o700); err != nil {
			return fmt.Errorf("create directory %s: %w", name, err)
		}
	case tar.TypeSymlink:
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("create directory for %s: %w", name, err)
		}
		os.Remove(target)
		if err := os.Symlink(hdr.Linkname, target); err != nil {
			return fmt.Errorf("create symlink %s: %w", name, err)
		}
	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("create directory for %s: %w", name, err)
		}
		out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, os.FileMode(hdr.Mode))
		if err != nil {
			return fmt.Errorf("create %s: %w", name, err)
		}
		if _, err := io.Copy(out, tr); err != nil {
			out.Close()
			return fmt.Errorf("extract %s: %w", name, err)
		}
		if err := out.Close(); err != nil {
			return fmt.Errorf("close %s: %w", name, err)
		}
	default:
		// Hard links, devices, and other entry types are not part of
		// upstream packages; skip them.
	}

	return nil
}

// securePath joins name onto destDir and verifies the result stays inside
// destDir.
func securePath(destDir, name string) (string, error) {
	target := filepath.Join(destDir, name)
	base := filepath.Clean(destDir)
	if target != base && !strings.HasPrefix(target, base+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return target, nil
}

// cleanName normalizes a tar entry name: collapses the path and strips
// the leading "./" or "/" that upstream archives carry, so every entry
// lands relative to the destination.
func cleanName(name string) string {
	name = filepath.Clean(name)
	name = strings.TrimPrefix(name, "./")
	return strings.TrimPrefix(name, "/")
}
