// Package config provides runtime configuration for lilith.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for a lilith invocation.
// Values are populated from .lilith.yaml, LILITH_* env vars, and CLI flags.
type Config struct {
	Prefix         string `mapstructure:"prefix"`
	RepoScheme     string `mapstructure:"repo_scheme"`
	RepoHost       string `mapstructure:"repo_host"`
	Branch         string `mapstructure:"branch"`
	UpstreamPrefix string `mapstructure:"upstream_prefix"`
}

// Init wires viper to the config file and environment. cfgFile overrides
// the default search path when non-empty. Missing config files are fine;
// defaults apply.
func Init(cfgFile string) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".lilith")
		viper.SetConfigType("yaml")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("LILITH")
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() Config {
	viper.SetDefault("prefix", defaultPrefix())
	viper.SetDefault("repo_scheme", "https")
	viper.SetDefault("repo_host", "pkg.freebsd.org")
	viper.SetDefault("branch", "quarterly")
	viper.SetDefault("upstream_prefix", "/usr/local")

	var cfg Config
	_ = viper.Unmarshal(&cfg)
	return cfg
}

// defaultPrefix returns $HOME/.lilith, falling back to a relative
// directory when the home directory cannot be determined.
func defaultPrefix() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lilith"
	}
	return filepath.Join(home, ".lilith")
}
