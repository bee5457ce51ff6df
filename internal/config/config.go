// Package config provides configuration management for boxsync.
// It supports YAML or TOML configuration files, environment variables,
// a working-directory .env file, and sensible defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/klauern/boxsync/internal/model"
	"github.com/klauern/boxsync/internal/util"
)

// Config represents the complete boxsync configuration.
type Config struct {
	// Hosts holds the registered devices and the single-host override
	Hosts HostsConfig `yaml:"hosts" toml:"hosts"`

	// Sync configures target detection and fan-out
	Sync SyncConfig `yaml:"sync" toml:"sync"`

	// Transport configures how requests reach a device
	Transport TransportConfig `yaml:"transport" toml:"transport"`

	// Output configures display preferences
	Output OutputConfig `yaml:"output" toml:"output"`

	path string

	// file holds the values decoded from disk and loaded the values right
	// after environment overrides were applied. Save uses both to keep
	// env-only values out of the file.
	file   *Config
	loaded *Config
}

// HostsConfig holds the persisted host list.
type HostsConfig struct {
	// List is the ordered set of named devices
	List []model.Host `yaml:"list" toml:"list"`
	// Override is a bare address used when List is empty
	Override string `yaml:"override,omitempty" toml:"override,omitempty"`
}

// SyncConfig holds synchronization settings.
type SyncConfig struct {
	// AutoUpload syncs on every save of a watched file
	AutoUpload bool `yaml:"auto_upload" toml:"auto_upload"`
	// Markers are the entries that identify a project root
	Markers []string `yaml:"markers" toml:"markers"`
	// OutputDir is the directory inside a project root that holds archives
	OutputDir string `yaml:"output_dir" toml:"output_dir"`
	// Concurrency bounds how many hosts are contacted at once
	Concurrency int `yaml:"concurrency" toml:"concurrency"`
	// Debounce coalesces bursts of file change events
	Debounce time.Duration `yaml:"debounce" toml:"debounce"`
}

// TransportConfig holds connection settings.
type TransportConfig struct {
	// Timeout bounds a single request
	Timeout time.Duration `yaml:"timeout" toml:"timeout"`
	// SSHKeyFile is the private key used for sftp:// hosts
	SSHKeyFile string `yaml:"ssh_key_file,omitempty" toml:"ssh_key_file,omitempty"`
	// Password is used for ftp:// and sftp:// hosts without one in the URL
	Password string `yaml:"password,omitempty" toml:"password,omitempty"`
	// KnownHosts is the known_hosts file checked for sftp:// hosts
	KnownHosts string `yaml:"known_hosts,omitempty" toml:"known_hosts,omitempty"`
	// InsecureHostKey disables host key verification
	InsecureHostKey bool `yaml:"insecure_host_key" toml:"insecure_host_key"`
}

// OutputConfig holds display preferences.
type OutputConfig struct {
	// Color controls color output (auto, always, never)
	Color string `yaml:"color" toml:"color"`
	// Verbose enables verbose output
	Verbose bool `yaml:"verbose" toml:"verbose"`
}

// DefaultOutputDir is the archive directory created inside a project root.
const DefaultOutputDir = ".output"

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Hosts: HostsConfig{
			List: []model.Host{},
		},
		Sync: SyncConfig{
			AutoUpload:  false,
			Markers:     model.DefaultMarkerSet(),
			OutputDir:   DefaultOutputDir,
			Concurrency: 4,
			Debounce:    300 * time.Millisecond,
		},
		Transport: TransportConfig{
			Timeout:    30 * time.Second,
			KnownHosts: util.KnownHostsPath(),
		},
		Output: OutputConfig{
			Color:   "auto",
			Verbose: false,
		},
	}
}

// configFileName is the name of the config file.
const configFileName = "config.yaml"

// FilePath returns the path to the default config file.
func FilePath() string {
	return filepath.Join(util.BoxsyncConfigPath(), configFileName)
}

// Load loads the configuration from the default file, merging with defaults.
// If the config file doesn't exist, returns default configuration.
func Load() (*Config, error) {
	return LoadFromPath(FilePath())
}

// LoadFromPath loads configuration from a specific path. A missing file yields
// defaults; Save will then create it at the same path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	cfg.path = path

	// #nosec G304 - path is provided by caller
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else if err := decode(path, data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.file = cfg.clone()
	cfg.applyEnvironment()
	cfg.loaded = cfg.clone()
	return cfg, nil
}

// Path returns the file this configuration is persisted to.
func (c *Config) Path() string {
	if c.path == "" {
		return FilePath()
	}
	return c.path
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	return c.SaveToPath(c.Path())
}

// SaveToPath writes the configuration to a specific path. The format follows
// the file extension: .toml writes TOML, anything else YAML. Fields that
// still hold an environment override keep their file value.
func (c *Config) SaveToPath(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}

	persisted := c.persisted()
	data, err := encode(path, persisted)
	if err != nil {
		return err
	}

	// The file can hold a transport password.
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if c.file != nil {
		c.file = persisted
		c.loaded = c.clone()
	}
	return nil
}

func (c *Config) clone() *Config {
	cp := *c
	cp.Hosts.List = slices.Clone(c.Hosts.List)
	cp.Sync.Markers = slices.Clone(c.Sync.Markers)
	cp.file, cp.loaded = nil, nil
	return &cp
}

// persisted returns the configuration as it should be written: every field
// left untouched since load reverts to the value decoded from the file.
func (c *Config) persisted() *Config {
	out := c.clone()
	if c.file == nil || c.loaded == nil {
		return out
	}
	restoreUnchanged(reflect.ValueOf(out).Elem(), reflect.ValueOf(c.loaded).Elem(), reflect.ValueOf(c.file).Elem())
	return out
}

func restoreUnchanged(cur, loaded, file reflect.Value) {
	for i := 0; i < cur.NumField(); i++ {
		f := cur.Field(i)
		if !f.CanSet() {
			continue
		}
		if f.Kind() == reflect.Struct {
			restoreUnchanged(f, loaded.Field(i), file.Field(i))
			continue
		}
		if reflect.DeepEqual(f.Interface(), loaded.Field(i).Interface()) {
			f.Set(file.Field(i))
		}
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func decode(path string, data []byte, cfg *Config) error {
	if isTOML(path) {
		_, err := toml.Decode(string(data), cfg)
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func encode(path string, cfg *Config) ([]byte, error) {
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return yaml.Marshal(cfg)
}

// LoadDotEnv loads KEY=value pairs from a .env file into the process
// environment without overriding variables that are already set.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

// applyEnvironment applies environment variable overrides.
// Environment variables follow the pattern BOXSYNC_<SECTION>_<KEY>.
func (c *Config) applyEnvironment() {
	if v := os.Getenv("BOXSYNC_HOSTS_OVERRIDE"); v != "" {
		c.Hosts.Override = strings.TrimSpace(v)
	}

	// Sync settings
	if v := os.Getenv("BOXSYNC_SYNC_AUTO_UPLOAD"); v != "" {
		c.Sync.AutoUpload = parseBool(v)
	}
	if v := os.Getenv("BOXSYNC_SYNC_MARKERS"); v != "" {
		c.Sync.Markers = splitList(v)
	}
	if v := os.Getenv("BOXSYNC_SYNC_OUTPUT_DIR"); v != "" {
		c.Sync.OutputDir = v
	}
	if v := os.Getenv("BOXSYNC_SYNC_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Sync.Concurrency = n
		}
	}
	if v := os.Getenv("BOXSYNC_SYNC_DEBOUNCE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Sync.Debounce = d
		}
	}

	// Transport settings
	if v := os.Getenv("BOXSYNC_TRANSPORT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Transport.Timeout = d
		}
	}
	if v := os.Getenv("BOXSYNC_TRANSPORT_SSH_KEY_FILE"); v != "" {
		c.Transport.SSHKeyFile = v
	}
	if v := os.Getenv("BOXSYNC_TRANSPORT_PASSWORD"); v != "" {
		c.Transport.Password = v
	}
	if v := os.Getenv("BOXSYNC_TRANSPORT_KNOWN_HOSTS"); v != "" {
		c.Transport.KnownHosts = v
	}
	if v := os.Getenv("BOXSYNC_TRANSPORT_INSECURE_HOST_KEY"); v != "" {
		c.Transport.InsecureHostKey = parseBool(v)
	}

	// Output settings
	if v := os.Getenv("BOXSYNC_OUTPUT_COLOR"); v != "" {
		c.Output.Color = v
	}
	if v := os.Getenv("BOXSYNC_OUTPUT_VERBOSE"); v != "" {
		c.Output.Verbose = parseBool(v)
	}
}

// parseBool parses a boolean from common string representations.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// splitList splits a comma-separated string, dropping empty segments.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// MarkerSet returns the configured project markers, falling back to the
// defaults when none are set.
func (c *Config) MarkerSet() model.MarkerSet {
	if len(c.Sync.Markers) == 0 {
		return model.DefaultMarkerSet()
	}
	return model.MarkerSet(c.Sync.Markers)
}

// Exists returns true if a config file exists at the configured path.
func (c *Config) Exists() bool {
	_, err := os.Stat(c.Path())
	return err == nil
}
