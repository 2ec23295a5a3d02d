package engine

import (
	"archive/tar"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/lilithpkg/lilith/internal/abi"
	"github.com/lilithpkg/lilith/internal/config"
	"github.com/lilithpkg/lilith/internal/output"
	"github.com/lilithpkg/lilith/internal/sysprobe"
)

// testPkg describes one package served by the fixture repository.
type testPkg struct {
	name    string
	version string
	comment string
	origin  string
	deps    map[string]string // dep name -> version
	files   map[string]string // upstream path -> content
}

// fixture is an in-memory upstream repository: a packagesite archive plus
// one package archive per testPkg, served over HTTP.
type fixture struct {
	t        *testing.T
	metadata []byte
	archives map[string][]byte
	srv      *httptest.Server
}

func newFixture(t *testing.T, pkgs ...testPkg) *fixture {
	t.Helper()
	f := &fixture{t: t}
	f.setPackages(pkgs...)
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.srv.Close)
	return f
}

// setPackages rebuilds the catalogue and archives, replacing whatever the
// fixture served before. Tests use this to publish a new upstream state.
func (f *fixture) setPackages(pkgs ...testPkg) {
	f.archives = make(map[string][]byte)

	var lines []string
	for _, p := range pkgs {
		filename := p.name + "-" + p.version + ".pkg"
		f.archives[filename] = f.buildPackage(p)

		deps := make(map[string]any, len(p.deps))
		for dep, v := range p.deps {
			deps[dep] = map[string]string{"version": v}
		}
		files := make(map[string]any, len(p.files))
		for fp := range p.files {
			files[fp] = "1$0000000000000000000000000000000000000000000000000000000000000000"
		}
		record := map[string]any{
			"name":    p.name,
			"version": p.version,
			"comment": p.comment,
			"origin":  p.origin,
			"arch":    "freebsd:14:x86:64",
			"path":    "All/" + filename,
			"deps":    deps,
			"files":   files,
		}
		line, err := json.Marshal(record)
		if err != nil {
			f.t.Fatalf("marshal catalogue record: %v", err)
		}
		lines = append(lines, string(line))
	}

	f.metadata = buildTzst(f.t, map[string]string{
		"packagesite.yaml": strings.Join(lines, "\n"),
	})
}

// buildPackage assembles a package archive: +MANIFEST at the root and the
// payload under usr/local.
func (f *fixture) buildPackage(p testPkg) []byte {
	deps := make(map[string]any, len(p.deps))
	for dep, v := range p.deps {
		deps[dep] = map[string]string{"origin": "misc/" + dep, "version": v}
	}
	files := make(map[string]any, len(p.files))
	for fp := range p.files {
		files[fp] = "1$0000000000000000000000000000000000000000000000000000000000000000"
	}
	manifest, err := json.Marshal(map[string]any{
		"name":    p.name,
		"version": p.version,
		"comment": p.comment,
		"origin":  p.origin,
		"deps":    deps,
		"files":   files,
	})
	if err != nil {
		f.t.Fatalf("marshal manifest: %v", err)
	}

	entries := map[string]string{"+MANIFEST": string(manifest)}
	for fp, content := range p.files {
		entries[fp] = content
	}
	return buildTzst(f.t, entries)
}

func (f *fixture) handle(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasSuffix(r.URL.Path, "/packagesite.tzst"):
		w.Write(f.metadata)
	case strings.Contains(r.URL.Path, "/All/"):
		if body, ok := f.archives[path.Base(r.URL.Path)]; ok {
			w.Write(body)
			return
		}
		http.NotFound(w, r)
	default:
		http.NotFound(w, r)
	}
}

// buildTzst packs entries (name -> content) into a zstd tar stream.
func buildTzst(t *testing.T, entries map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatalf("zstd.NewWriter: %v", err)
	}
	tw := tar.NewWriter(zw)

	// Stable order keeps archives reproducible across runs.
	var names []string
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		content := entries[name]
		hdr := &tar.Header{
			Name:     name,
			Mode:     0o755,
			Size:     int64(len(content)),
			Typeflag: tar.TypeReg,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("WriteHeader(%s): %v", name, err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatalf("Write(%s): %v", name, err)
		}
	}

	if err := tw.Close(); err != nil {
		t.Fatalf("tar close: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zstd close: %v", err)
	}
	return buf.Bytes()
}

// neverProvided is a system probe that finds nothing on the host.
func neverProvided() *sysprobe.Probe {
	return &sysprobe.Probe{
		LookPath: func(string) (string, error) { return "", exec.ErrNotFound },
	}
}

// newTestEngine wires an Engine against the fixture repository with a
// fresh prefix and a probe that shadows nothing.
func newTestEngine(t *testing.T, f *fixture) *Engine {
	t.Helper()

	cfg := config.Config{
		Prefix:         filepath.Join(t.TempDir(), "prefix"),
		RepoScheme:     "http",
		RepoHost:       strings.TrimPrefix(f.srv.URL, "http://"),
		Branch:         "quarterly",
		UpstreamPrefix: "/usr/local",
	}

	eng := New(cfg, output.Discard{})
	eng.SetABI(abi.ABI{OSType: "FreeBSD", Major: 14, Arch: "amd64"})
	eng.SetProbe(neverProvided())
	return eng
}
