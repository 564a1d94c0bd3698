// Package config provides configuration management for pdparty.
// It supports YAML or TOML configuration files, environment variables, and
// sensible defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"dario.cat/mergo"
	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/klauern/pdparty/internal/registry"
	"github.com/klauern/pdparty/internal/treesync"
	"github.com/klauern/pdparty/internal/util"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "PDPARTY_"

// Config represents the complete pdparty configuration.
type Config struct {
	// Paths locates the resource and user trees
	Paths PathsConfig `yaml:"paths" toml:"paths" envPrefix:"PATHS_"`

	// Sync configures tree synchronization
	Sync SyncConfig `yaml:"sync" toml:"sync" envPrefix:"SYNC_"`

	// Subsystems configures the registry and its subsystems
	Subsystems SubsystemsConfig `yaml:"subsystems" toml:"subsystems" envPrefix:"SUBSYSTEMS_"`

	// App holds lifecycle policy flags
	App AppConfig `yaml:"app" toml:"app" envPrefix:"APP_"`

	// Metrics configures the Prometheus endpoint
	Metrics MetricsConfig `yaml:"metrics" toml:"metrics" envPrefix:"METRICS_"`

	// Output configures display preferences
	Output OutputConfig `yaml:"output" toml:"output" envPrefix:"OUTPUT_"`
}

// PathsConfig holds filesystem roots. Paths can use ~ for the home directory.
type PathsConfig struct {
	// Resources is the read-only bundled resource root
	Resources string `yaml:"resources" toml:"resources" env:"RESOURCES"`
	// User is the user-writable documents root
	User string `yaml:"user" toml:"user" env:"USER"`
	// Locks holds cross-process lock files; empty disables them
	Locks string `yaml:"locks" toml:"locks" env:"LOCKS"`
}

// TreeOptions tunes synchronization of one tree. Zero fields inherit from
// SyncConfig.Defaults.
type TreeOptions struct {
	// Workers bounds concurrent entry processing
	Workers int `yaml:"workers,omitempty" toml:"workers,omitempty" env:"WORKERS"`
	// Compare is content or metadata
	Compare string `yaml:"compare,omitempty" toml:"compare,omitempty" env:"COMPARE"`
	// Ignore lists doublestar patterns skipped during copy and comparison
	Ignore []string `yaml:"ignore,omitempty" toml:"ignore,omitempty" env:"IGNORE" envSeparator:","`
}

// SyncConfig holds synchronization settings.
type SyncConfig struct {
	// Trees lists the tree names synchronized at launch, in order
	Trees []string `yaml:"trees" toml:"trees" env:"TREES" envSeparator:","`
	// Defaults apply to every tree
	Defaults TreeOptions `yaml:"defaults" toml:"defaults" envPrefix:"DEFAULT_"`
	// Overrides holds per-tree options keyed by tree name
	Overrides map[string]TreeOptions `yaml:"overrides,omitempty" toml:"overrides,omitempty"`
}

// SubsystemsConfig holds registry settings.
type SubsystemsConfig struct {
	// Order is the initialization order; variants not listed are not started
	Order []string `yaml:"order" toml:"order" env:"ORDER" envSeparator:","`
	// OSC configures the OSC endpoint
	OSC OSCConfig `yaml:"osc" toml:"osc" envPrefix:"OSC_"`
	// MIDI configures the virtual MIDI ports
	MIDI MIDIConfig `yaml:"midi" toml:"midi" envPrefix:"MIDI_"`
}

// OSCConfig holds OSC endpoint settings.
type OSCConfig struct {
	// Addr is the UDP listen address
	Addr string `yaml:"addr" toml:"addr" env:"ADDR"`
}

// MIDIConfig holds MIDI port settings.
type MIDIConfig struct {
	Inputs  []string `yaml:"inputs,omitempty" toml:"inputs,omitempty" env:"INPUTS" envSeparator:","`
	Outputs []string `yaml:"outputs,omitempty" toml:"outputs,omitempty" env:"OUTPUTS" envSeparator:","`
}

// AppConfig holds lifecycle policy flags.
type AppConfig struct {
	// RunsInBackground keeps subsystems active while backgrounded
	RunsInBackground bool `yaml:"runs_in_background" toml:"runs_in_background" env:"RUNS_IN_BACKGROUND"`
	// LockScreenDisabled keeps the screen awake while a scene is open
	LockScreenDisabled bool `yaml:"lock_screen_disabled" toml:"lock_screen_disabled" env:"LOCK_SCREEN_DISABLED"`
	// Scene is opened at startup, relative to the user root
	Scene string `yaml:"scene,omitempty" toml:"scene,omitempty" env:"SCENE"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	// Addr serves /metrics when set (e.g. ":9464")
	Addr string `yaml:"addr,omitempty" toml:"addr,omitempty" env:"ADDR"`
}

// OutputConfig holds display preferences.
type OutputConfig struct {
	// Color controls color output (auto, always, never)
	Color string `yaml:"color" toml:"color" env:"COLOR"`
	// Progress shows a progress bar during sync (auto, always, never)
	Progress string `yaml:"progress" toml:"progress" env:"PROGRESS"`
	// Verbose enables verbose output
	Verbose bool `yaml:"verbose" toml:"verbose" env:"VERBOSE"`
}

// Default returns the default configuration.
func Default() *Config {
	order := make([]string, 0, len(registry.DefaultOrder))
	for _, v := range registry.DefaultOrder {
		order = append(order, string(v))
	}

	return &Config{
		Paths: PathsConfig{
			Resources: util.ResourcesPath(),
			User:      util.DocumentsPath(),
			Locks:     util.LocksPath(),
		},
		Sync: SyncConfig{
			Trees: slices.Clone(treesync.DefaultTrees),
			Defaults: TreeOptions{
				Workers: treesync.DefaultWorkers,
				Compare: string(treesync.CompareContent),
				Ignore:  []string{"**/.DS_Store"},
			},
		},
		Subsystems: SubsystemsConfig{
			Order: order,
			OSC:   OSCConfig{Addr: "127.0.0.1:9000"},
		},
		Output: OutputConfig{
			Color:    "auto",
			Progress: "auto",
		},
	}
}

// File names searched in the config directory, in order.
const (
	configFileName     = "config.yaml"
	tomlConfigFileName = "config.toml"
)

// FilePath returns the path to the config file. An existing TOML file is
// used when no YAML file exists.
func FilePath() string {
	dir := util.ConfigPath()
	yamlPath := filepath.Join(dir, configFileName)
	if _, err := os.Stat(yamlPath); err == nil {
		return yamlPath
	}
	tomlPath := filepath.Join(dir, tomlConfigFileName)
	if _, err := os.Stat(tomlPath); err == nil {
		return tomlPath
	}
	return yamlPath
}

// Load loads the configuration from the default file, merging with defaults.
// If the config file doesn't exist, returns the default configuration with
// environment overrides.
func Load() (*Config, error) {
	cfg, err := LoadFromPath(FilePath())
	if errors.Is(err, os.ErrNotExist) {
		cfg = Default()
		if err := cfg.applyEnvironment(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return cfg, err
}

// LoadFromPath loads configuration from a specific path. Files ending in
// .toml are parsed as TOML, everything else as YAML.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	// #nosec G304 - path is provided by caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if isTOML(path) {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.applyEnvironment(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveToPath(FilePath())
}

// SaveToPath writes the configuration to a specific path, in TOML when the
// path ends in .toml.
func (c *Config) SaveToPath(path string) error {
	data, err := c.Marshal(isTOML(path))
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}

	// #nosec G306 - config file should be readable by user
	return os.WriteFile(path, data, 0o644)
}

// Marshal encodes the configuration as YAML, or TOML when asTOML is set.
func (c *Config) Marshal(asTOML bool) ([]byte, error) {
	if !asTOML {
		return yaml.Marshal(c)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// applyEnvironment applies environment variable overrides.
// Environment variables follow the pattern PDPARTY_<SECTION>_<KEY>; unset
// variables leave the field alone.
func (c *Config) applyEnvironment() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("error getting env configs: %w", err)
	}
	return nil
}

// Tree returns the effective options for a tree: its override block with
// unset fields filled from Sync.Defaults.
func (c *Config) Tree(name string) (TreeOptions, error) {
	opts := c.Sync.Overrides[name]
	opts.Ignore = slices.Clone(opts.Ignore)
	if err := mergo.Merge(&opts, c.Sync.Defaults); err != nil {
		return TreeOptions{}, fmt.Errorf("error merging options for %s: %w", name, err)
	}
	return opts, nil
}

// Pair returns the synchronization pair for a tree name, with paths
// expanded relative to the working directory.
func (c *Config) Pair(name string) treesync.Pair {
	cwd, _ := os.Getwd()
	return treesync.NewPair(name,
		util.ExpandPath(c.Paths.Resources, cwd),
		util.ExpandPath(c.Paths.User, cwd),
	)
}

// UserRoot returns the expanded user root.
func (c *Config) UserRoot() string {
	cwd, _ := os.Getwd()
	return util.ExpandPath(c.Paths.User, cwd)
}

// LockDir returns the expanded lock directory, or "" when disabled.
func (c *Config) LockDir() string {
	cwd, _ := os.Getwd()
	return util.ExpandPath(c.Paths.Locks, cwd)
}

// Variants returns the initialization order as registry variants.
func (c *Config) Variants() ([]registry.Variant, error) {
	out := make([]registry.Variant, 0, len(c.Subsystems.Order))
	for _, name := range c.Subsystems.Order {
		v, ok := registry.ParseVariant(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("unknown subsystem %q", name)
		}
		if slices.Contains(out, v) {
			return nil, fmt.Errorf("subsystem %q listed twice", name)
		}
		out = append(out, v)
	}
	return out, nil
}

var (
	validTrees = []string{treesync.TreeLib, treesync.TreeSamples, treesync.TreeTests}
	validModes = []string{"auto", "always", "never"}
)

// Validate checks the configuration for errors. All problems are reported.
func (c *Config) Validate() error {
	var errs []error

	if c.Paths.Resources == "" {
		errs = append(errs, errors.New("paths.resources is required"))
	}
	if c.Paths.User == "" {
		errs = append(errs, errors.New("paths.user is required"))
	}

	for _, name := range c.Sync.Trees {
		if !slices.Contains(validTrees, name) {
			errs = append(errs, fmt.Errorf("sync.trees: unknown tree %q", name))
		}
	}
	errs = append(errs, validateTree("sync.defaults", c.Sync.Defaults)...)
	for name, opts := range c.Sync.Overrides {
		if !slices.Contains(validTrees, name) {
			errs = append(errs, fmt.Errorf("sync.overrides: unknown tree %q", name))
		}
		errs = append(errs, validateTree("sync.overrides."+name, opts)...)
	}

	if _, err := c.Variants(); err != nil {
		errs = append(errs, fmt.Errorf("subsystems.order: %w", err))
	}

	if !slices.Contains(validModes, c.Output.Color) {
		errs = append(errs, fmt.Errorf("output.color: invalid value %q", c.Output.Color))
	}
	if !slices.Contains(validModes, c.Output.Progress) {
		errs = append(errs, fmt.Errorf("output.progress: invalid value %q", c.Output.Progress))
	}

	return errors.Join(errs...)
}

func validateTree(section string, o TreeOptions) []error {
	var errs []error
	if o.Workers < 0 {
		errs = append(errs, fmt.Errorf("%s.workers: must not be negative", section))
	}
	if o.Compare != "" && !treesync.CompareMode(o.Compare).IsValid() {
		errs = append(errs, fmt.Errorf("%s.compare: invalid mode %q", section, o.Compare))
	}
	return errs
}

// Exists returns true if a config file exists.
func Exists() bool {
	_, err := os.Stat(FilePath())
	return err == nil
}
