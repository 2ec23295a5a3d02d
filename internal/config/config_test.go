package config

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg := Load()

	if cfg.RepoScheme != "https" {
		t.Errorf("RepoScheme = %q, want https", cfg.RepoScheme)
	}
	if cfg.RepoHost != "pkg.freebsd.org" {
		t.Errorf("RepoHost = %q, want pkg.freebsd.org", cfg.RepoHost)
	}
	if cfg.Branch != "quarterly" {
		t.Errorf("Branch = %q, want quarterly", cfg.Branch)
	}
	if cfg.UpstreamPrefix != "/usr/local" {
		t.Errorf("UpstreamPrefix = %q, want /usr/local", cfg.UpstreamPrefix)
	}
	if !strings.HasSuffix(cfg.Prefix, ".lilith") {
		t.Errorf("Prefix = %q, want a .lilith directory", cfg.Prefix)
	}
}

func TestLoadRespectsOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("prefix", "/srv/pkgs")
	viper.Set("branch", "latest")

	cfg := Load()
	if cfg.Prefix != "/srv/pkgs" {
		t.Errorf("Prefix = %q, want /srv/pkgs", cfg.Prefix)
	}
	if cfg.Branch != "latest" {
		t.Errorf("Branch = %q, want latest", cfg.Branch)
	}
	// Unset keys still get defaults.
	if cfg.RepoHost != "pkg.freebsd.org" {
		t.Errorf("RepoHost = %q, want default", cfg.RepoHost)
	}
}

func TestInitEnvOverride(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("LILITH_BRANCH", "latest")
	Init("")

	cfg := Load()
	if cfg.Branch != "latest" {
		t.Errorf("Branch = %q, want env override latest", cfg.Branch)
	}
}
