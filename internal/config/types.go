// Package config provides configuration loading and management for cairn.
//
// Configuration is loaded using Viper, supporting YAML config files and
// environment variable overrides. The package provides sensible defaults that
// work out of the box, with the ability to customize output rendering, gate
// thresholds, dispatch models, and artifact locations.
//
// Key types:
//   - [Config] is the root configuration container with all settings
//   - [Loader] handles Viper-based configuration loading
//   - [GateConfig] tunes the verification checkpoint behavior
//   - [DispatchConfig] assigns models to sub-agent roles
//
// Configuration priority (highest to lowest):
//  1. Environment variables (CAIRN_ prefix)
//  2. Config file specified by CAIRN_CONFIG_PATH
//  3. ./.cairn/config.yaml (repo-local)
//  4. User config directory (platform-standard):
//     - Linux: ~/.config/cairn/config.yaml
//     - macOS: ~/Library/Application Support/cairn/config.yaml
//     - Windows: %APPDATA%\cairn\config.yaml
//  5. [DefaultConfig] defaults
package config

import (
	"path/filepath"

	"github.com/pkg/errors"
)

// Config represents the root configuration structure.
//
// This is the main configuration container loaded by [Loader] and used
// throughout the application. Use [DefaultConfig] to get sensible defaults.
type Config struct {
	// Output contains guidance rendering configuration.
	Output OutputConfig `mapstructure:"output"`

	// Gate contains verification checkpoint configuration shared by all
	// skills that route through a quality gate.
	Gate GateConfig `mapstructure:"gate"`

	// Dispatch contains sub-agent hand-off configuration.
	Dispatch DispatchConfig `mapstructure:"dispatch"`

	// Resources contains convention document discovery configuration.
	Resources ResourcesConfig `mapstructure:"resources"`

	// Artifacts contains locations of the shared files under .cairn.
	Artifacts ArtifactsConfig `mapstructure:"artifacts"`

	// Log contains diagnostic logging configuration. Logs go to stderr;
	// stdout is reserved for guidance output.
	Log LogConfig `mapstructure:"log"`
}

// OutputConfig contains guidance rendering configuration.
type OutputConfig struct {
	// Format is the default guidance format: "text" or "tags".
	// The --format flag overrides it per invocation.
	// Default: "text"
	Format string `mapstructure:"format"`

	// ThoughtsLimit is the maximum byte length of a --thoughts payload
	// echoed into a follow-up command. Longer payloads are cut at a rune
	// boundary and marked. Zero disables truncation.
	// Default: 320
	ThoughtsLimit int `mapstructure:"thoughts_limit"`
}

// GateConfig contains verification checkpoint configuration.
type GateConfig struct {
	// AdvisoryThreshold is the fix round at which gate guidance adds a
	// continue/skip/abort decision point. Rounds are never hard-capped;
	// the threshold only changes what the guidance says.
	// Default: 3
	AdvisoryThreshold int `mapstructure:"advisory_threshold"`

	// IterationLimit is the advisory round bound for skills that drive
	// their own --iteration loops, such as deepthink critique rounds.
	// Default: 4
	IterationLimit int `mapstructure:"iteration_limit"`
}

// DispatchConfig contains sub-agent hand-off configuration.
type DispatchConfig struct {
	// Program is the binary name embedded in generated commands.
	// Default: "cairn"
	Program string `mapstructure:"program"`

	// Models maps agent role names to model names.
	// Examples: "opus", "sonnet", "haiku".
	// A models block in a config file merges into the defaults per role.
	Models map[string]string `mapstructure:"models"`
}

// ResourcesConfig contains convention document discovery configuration.
type ResourcesConfig struct {
	// Dirs is an explicit search path for convention documents, highest
	// precedence first. When empty the standard order applies:
	// ./.cairn/conventions, then ~/.cairn/conventions. Directories
	// contributed by installed packs are appended in both cases.
	Dirs []string `mapstructure:"dirs"`
}

// ArtifactsConfig contains locations of the shared files under .cairn.
type ArtifactsConfig struct {
	// BasePath is the project root that the .cairn directory hangs off.
	// Empty means the current working directory.
	BasePath string `mapstructure:"base_path"`

	// PlanPath overrides the plan document location. The CAIRN_PLAN_PATH
	// environment variable and the --plan flag take priority over it.
	PlanPath string `mapstructure:"plan_path"`

	// CatalogPath is the skill catalog location, relative to BasePath
	// unless absolute.
	// Default: ".cairn/skills.csv"
	CatalogPath string `mapstructure:"catalog_path"`

	// PacksPath is the pack manifest location, relative to BasePath
	// unless absolute.
	// Default: ".cairn/packs.yaml"
	PacksPath string `mapstructure:"packs_path"`
}

// LogConfig contains diagnostic logging configuration.
type LogConfig struct {
	// Level is a logrus level name: "debug", "info", "warn", "error".
	// Default: "warn"
	Level string `mapstructure:"level"`

	// Format is the log line format: "text" or "json".
	// Default: "text"
	Format string `mapstructure:"format"`
}

// DefaultConfig returns a new [Config] with sensible defaults.
//
// The defaults render text guidance, place the advisory decision point at
// fix round three, dispatch reviewers on opus and developers on sonnet, and
// look for shared artifacts under ./.cairn. They work out of the box without
// any configuration file.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Format:        "text",
			ThoughtsLimit: 320,
		},
		Gate: GateConfig{
			AdvisoryThreshold: 3,
			IterationLimit:    4,
		},
		Dispatch: DispatchConfig{
			Program: "cairn",
			Models: map[string]string{
				"reviewer":         "opus",
				"developer":        "sonnet",
				"technical-writer": "sonnet",
				"explorer":         "haiku",
				"general-purpose":  "sonnet",
			},
		},
		Resources: ResourcesConfig{},
		Artifacts: ArtifactsConfig{
			CatalogPath: filepath.Join(".cairn", "skills.csv"),
			PacksPath:   filepath.Join(".cairn", "packs.yaml"),
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Validate checks that the configuration values are usable.
//
// It rejects unknown output formats, non-positive gate thresholds, an empty
// dispatch program, and unknown log formats. Unknown role names in
// Dispatch.Models are allowed; they are simply never consulted.
func (c *Config) Validate() error {
	switch c.Output.Format {
	case "text", "tags":
	default:
		return errors.Errorf("output.format %q is not valid (want text or tags)", c.Output.Format)
	}
	if c.Output.ThoughtsLimit < 0 {
		return errors.Errorf("output.thoughts_limit must not be negative, got %d", c.Output.ThoughtsLimit)
	}
	if c.Gate.AdvisoryThreshold < 1 {
		return errors.Errorf("gate.advisory_threshold must be at least 1, got %d", c.Gate.AdvisoryThreshold)
	}
	if c.Gate.IterationLimit < 1 {
		return errors.Errorf("gate.iteration_limit must be at least 1, got %d", c.Gate.IterationLimit)
	}
	if c.Dispatch.Program == "" {
		return errors.New("dispatch.program must not be empty")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.Errorf("log.format %q is not valid (want text or json)", c.Log.Format)
	}
	return nil
}
