package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/rileyhilliard/dmontop/internal/errors"
)

const (
	// ConfigFileName is the per-directory config file name.
	ConfigFileName = ".dmontop.yaml"
	// GlobalConfigDir holds the per-user config, relative to $HOME.
	GlobalConfigDir = ".config/dmontop"
	// GlobalConfigFile is the per-user config file name.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix prefixes environment overrides, e.g. DMONTOP_INTERVAL=250ms.
	EnvPrefix = "DMONTOP"
)

// Load reads the config file at path. DMONTOP_* environment variables
// override what the file sets.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found: "+path,
				"Run 'dmontop init' to create one, or point --config at an existing file")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Can't read config file "+path,
			"Check that the file is valid YAML")
	}
	return decode(v, path)
}

// Find returns the config file to use, or "" when there is none. An explicit
// path must exist. Otherwise the first existing file wins among:
//
//	./.dmontop.yaml
//	../.dmontop.yaml, ... up to the git root, stopping below $HOME
//	~/.config/dmontop/config.yaml
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Can't use config file "+explicit,
				"Check the path passed to --config")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Pass --config with an absolute path")
	}
	home, _ := os.UserHomeDir()

	for _, candidate := range searchPaths(cwd, home) {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", nil
}

// searchPaths lists the places Find looks, nearest first.
func searchPaths(cwd, home string) []string {
	paths := []string{filepath.Join(cwd, ConfigFileName)}

	for dir := cwd; !isGitRoot(dir); {
		parent := filepath.Dir(dir)
		if parent == dir || (home != "" && parent == home) {
			break
		}
		dir = parent
		paths = append(paths, filepath.Join(dir, ConfigFileName))
	}

	if home != "" {
		paths = append(paths, filepath.Join(home, GlobalConfigDir, GlobalConfigFile))
	}
	return paths
}

// LoadOrDefault loads the file Find picks. With no file, the result is the
// defaults plus any environment overrides, and the returned path is empty.
func LoadOrDefault(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		cfg, err := decode(newViper(), "the environment")
		return cfg, "", err
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// newViper returns a viper instance with every key defaulted, so partial
// files only override what they mention, and every key bound to DMONTOP_<KEY>.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := DefaultConfig()
	for key, value := range map[string]interface{}{
		"version":      d.Version,
		"interval":     d.Interval,
		"poll":         d.Poll,
		"history":      d.History,
		"catalog":      d.Catalog,
		"entity_id":    d.EntityID,
		"entity_tag":   d.EntityTag,
		"percentiles":  d.Percentiles,
		"active_only":  d.ActiveOnly,
		"dcgmi":        d.Dcgmi,
		"log_file":     d.LogFile,
		"metrics_addr": d.MetricsAddr,
		"color":        d.Color,
	} {
		v.SetDefault(key, value)
	}
	return v
}

// decode unmarshals v over the defaults. origin names where the values came
// from in error messages.
func decode(v *viper.Viper, origin string) (*Config, error) {
	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config values in "+origin,
			"Check value types, e.g. interval: 100ms, history: 300")
	}
	return cfg, nil
}

// isGitRoot checks if a directory is a git repository root.
func isGitRoot(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}
