package state

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDepBase(t *testing.T) {
	tests := []struct {
		dep  string
		want string
	}{
		{"gettext-runtime-0.22.5", "gettext-runtime"},
		{"foo-bar", "foo-bar"},
		{"foo-2", "foo"},
		{"foo-bar-1.2", "foo-bar"},
		{"foo", "foo"},
		{"foo-", "foo-"},
		{"-1", ""},
		{"a-1b-2", "a"},
	}
	for _, tt := range tests {
		if got := DepBase(tt.dep); got != tt.want {
			t.Errorf("DepBase(%q) = %q, want %q", tt.dep, got, tt.want)
		}
	}
}

func TestManifestDependsOn(t *testing.T) {
	m := &Manifest{Deps: map[string]any{
		"libiconv-1.17": nil,
		"gettext":       nil,
	}}

	tests := []struct {
		base string
		want bool
	}{
		{"libiconv", true},
		{"gettext", true},
		{"libxml2", false},
		{"lib", false},
	}
	for _, tt := range tests {
		if got := m.DependsOn(tt.base); got != tt.want {
			t.Errorf("DependsOn(%q) = %v, want %v", tt.base, got, tt.want)
		}
	}
}

func TestManifestKeySets(t *testing.T) {
	m := &Manifest{
		Deps: map[string]any{"b": nil, "a": nil},
		Files: map[string]any{
			"/usr/local/bin/foo": "x",
			"/usr/local/bin/bar": "y",
		},
	}

	if got := m.DepNames(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("DepNames() = %v, want [a b]", got)
	}
	wantFiles := []string{"/usr/local/bin/bar", "/usr/local/bin/foo"}
	if got := m.FilePaths(); !reflect.DeepEqual(got, wantFiles) {
		t.Errorf("FilePaths() = %v, want %v", got, wantFiles)
	}

	empty := &Manifest{}
	if empty.DepNames() != nil || empty.FilePaths() != nil {
		t.Error("empty manifest should return nil key sets")
	}
}

func TestManifestsSaveLoadDelete(t *testing.T) {
	dir := t.TempDir()
	ms := NewManifests(filepath.Join(dir, "manifests"))

	doc := `{"version":"2.12","comment":"greeter","origin":"misc/hello",` +
		`"deps":{"libfoo-1.0":{"origin":"devel/libfoo"}},` +
		`"files":{"/usr/local/bin/hello":"sha256"}}`
	src := filepath.Join(dir, "+MANIFEST")
	if err := os.WriteFile(src, []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if ms.Exists("hello") {
		t.Error("Exists(hello) = true before Save")
	}
	if err := ms.Save("hello", src); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if !ms.Exists("hello") {
		t.Error("Exists(hello) = false after Save")
	}

	m, err := ms.Load("hello")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if m.Version != "2.12" || m.Origin != "misc/hello" {
		t.Errorf("Load() = %+v, wrong fields", m)
	}
	if !m.DependsOn("libfoo") {
		t.Error("loaded manifest should depend on libfoo")
	}
	if got := m.FilePaths(); len(got) != 1 || got[0] != "/usr/local/bin/hello" {
		t.Errorf("FilePaths() = %v", got)
	}

	names, err := ms.Names()
	if err != nil {
		t.Fatalf("Names() error: %v", err)
	}
	if len(names) != 1 || names[0] != "hello" {
		t.Errorf("Names() = %v, want [hello]", names)
	}

	if err := ms.Delete("hello"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if ms.Exists("hello") {
		t.Error("Exists(hello) = true after Delete")
	}
	// Deleting again is fine.
	if err := ms.Delete("hello"); err != nil {
		t.Errorf("second Delete() error: %v", err)
	}
}

func TestManifestsNamesMissingDir(t *testing.T) {
	ms := NewManifests(filepath.Join(t.TempDir(), "absent"))
	names, err := ms.Names()
	if err != nil {
		t.Fatalf("Names() error: %v", err)
	}
	if names != nil {
		t.Errorf("Names() = %v, want nil", names)
	}
}
