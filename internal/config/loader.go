package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvConfigPath names the environment variable that points at an explicit
// config file. When set, the search path is skipped entirely.
const EnvConfigPath = "CAIRN_CONFIG_PATH"

// Loader handles Viper-based configuration loading.
//
// A Loader is single-use: create one with [NewLoader], then call [Loader.Load]
// or [Loader.LoadFromFile] once.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader with environment variable
// support wired up. Variables use the CAIRN_ prefix with dots replaced by
// underscores, e.g. CAIRN_OUTPUT_FORMAT overrides output.format.
func NewLoader() *Loader {
	v := viper.New()
	v.SetEnvPrefix("CAIRN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &Loader{v: v}
}

// Load reads configuration from the standard locations.
//
// When CAIRN_CONFIG_PATH is set, only that file is read and a missing file is
// an error. Otherwise the repo-local .cairn directory is searched first, then
// the platform user config directory, and a missing file is fine: defaults
// and environment overrides still apply.
func (l *Loader) Load() (*Config, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return l.LoadFromFile(path)
	}

	l.setDefaults()
	l.v.SetConfigName("config")
	l.v.AddConfigPath(filepath.Join(".", ".cairn"))
	if dir, err := ConfigDir(); err == nil {
		l.v.AddConfigPath(dir)
	}

	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "error reading config file")
		}
	}
	return l.unmarshal()
}

// LoadFromFile reads configuration from an explicit file path.
func (l *Loader) LoadFromFile(path string) (*Config, error) {
	l.setDefaults()
	l.v.SetConfigFile(path)
	if err := l.v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, "error reading config file")
	}
	return l.unmarshal()
}

// MustLoad loads configuration from the standard locations and panics on
// error. Intended for initialization paths that cannot report errors.
func MustLoad() *Config {
	cfg, err := NewLoader().Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func (l *Loader) unmarshal() (*Config, error) {
	cfg := &Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "error parsing config file")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every leaf so Viper knows the full key set. Without
// this, environment overrides would not reach Unmarshal for keys absent from
// the config file.
func (l *Loader) setDefaults() {
	def := DefaultConfig()
	l.v.SetDefault("output.format", def.Output.Format)
	l.v.SetDefault("output.thoughts_limit", def.Output.ThoughtsLimit)
	l.v.SetDefault("gate.advisory_threshold", def.Gate.AdvisoryThreshold)
	l.v.SetDefault("gate.iteration_limit", def.Gate.IterationLimit)
	l.v.SetDefault("dispatch.program", def.Dispatch.Program)
	// Per-role defaults so a partial models block merges instead of
	// replacing the whole map.
	for role, model := range def.Dispatch.Models {
		l.v.SetDefault("dispatch.models."+role, model)
	}
	l.v.SetDefault("resources.dirs", def.Resources.Dirs)
	l.v.SetDefault("artifacts.base_path", def.Artifacts.BasePath)
	l.v.SetDefault("artifacts.plan_path", def.Artifacts.PlanPath)
	l.v.SetDefault("artifacts.catalog_path", def.Artifacts.CatalogPath)
	l.v.SetDefault("artifacts.packs_path", def.Artifacts.PacksPath)
	l.v.SetDefault("log.level", def.Log.Level)
	l.v.SetDefault("log.format", def.Log.Format)
}

// ConfigDir returns the cairn directory under the platform user config
// directory, e.g. ~/.config/cairn on Linux.
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to locate user config directory")
	}
	return filepath.Join(base, "cairn"), nil
}

// DefaultConfigPath returns the user-global config file location.
func DefaultConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// EnsureConfigDir creates the user config directory if it does not exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}
