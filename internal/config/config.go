package config

import (
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vango-dev/hyperdom/internal/errors"
)

const (
	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "hyperc.json"

	DefaultHost       = "localhost"
	DefaultPort       = 3000
	DefaultSuffix     = "_gsx.go"
	DefaultDebounce   = 100 * time.Millisecond
	DefaultReloadPath = "/_hyper/reload"
)

// Config is the content of hyperc.json.
type Config struct {
	Source SourceConfig `json:"source"`
	Build  BuildConfig  `json:"build"`
	Dev    DevConfig    `json:"dev"`

	// configPath is where the config was loaded from or saved to.
	configPath string
}

// SourceConfig selects the .gsx files to compile.
type SourceConfig struct {
	// Dirs are searched recursively. Relative paths are resolved against
	// the directory holding hyperc.json.
	Dirs []string `json:"dirs,omitempty"`

	// Exclude holds filepath.Match patterns tested against base names of
	// files and directories.
	Exclude []string `json:"exclude,omitempty"`
}

// BuildConfig controls the generated files.
type BuildConfig struct {
	// Suffix replaces ".gsx" in output file names.
	Suffix string `json:"suffix,omitempty"`

	// Header writes the "Code generated" comment and the //line directive.
	Header bool `json:"header"`

	// Format runs gofmt over the output. It disables source maps.
	Format bool `json:"format,omitempty"`

	// SourceMaps writes a .map file next to every output file.
	SourceMaps bool `json:"sourceMaps,omitempty"`
}

// DevConfig configures hyperc dev.
type DevConfig struct {
	Host string `json:"host,omitempty"`
	Port int    `json:"port,omitempty"`

	// Static is a directory served at the root of the dev server.
	Static string `json:"static,omitempty"`

	// Debounce delays rebuilds until changes settle, e.g. "150ms".
	Debounce string `json:"debounce,omitempty"`

	// ReloadPath is where the websocket reload endpoint is mounted.
	ReloadPath string `json:"reloadPath,omitempty"`

	// Metrics serves Prometheus metrics at /metrics.
	Metrics bool `json:"metrics"`
}

// New returns a Config with default values.
func New() *Config {
	return &Config{
		Source: SourceConfig{
			Dirs:    []string{"."},
			Exclude: []string{".*", "node_modules", "vendor", "testdata"},
		},
		Build: BuildConfig{
			Suffix: DefaultSuffix,
			Header: true,
		},
		Dev: DevConfig{
			Host:       DefaultHost,
			Port:       DefaultPort,
			Debounce:   DefaultDebounce.String(),
			ReloadPath: DefaultReloadPath,
			Metrics:    true,
		},
	}
}

// Load reads hyperc.json from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadOrDefault reads hyperc.json from dir, falling back to defaults when
// the file does not exist.
func LoadOrDefault(dir string) (*Config, error) {
	if !Exists(dir) {
		cfg := New()
		cfg.configPath = filepath.Join(dir, ConfigFileName)
		return cfg, nil
	}
	return Load(dir)
}

// LoadFile reads configuration from path. Fields missing from the file
// keep their defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("C001").
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path))
		}
		return nil, errors.New("C002").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("C002").
			WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error()).
			Wrap(err)
	}

	cfg.configPath = path
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration back to where it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("C002").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New("C002").Wrap(err)
	}
	c.configPath = path
	return nil
}

func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory holding the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return "."
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills fields that were explicitly emptied in the file.
func (c *Config) applyDefaults() {
	if len(c.Source.Dirs) == 0 {
		c.Source.Dirs = []string{"."}
	}
	if c.Build.Suffix == "" {
		c.Build.Suffix = DefaultSuffix
	}
	if c.Dev.Host == "" {
		c.Dev.Host = DefaultHost
	}
	if c.Dev.Port == 0 {
		c.Dev.Port = DefaultPort
	}
	if c.Dev.Debounce == "" {
		c.Dev.Debounce = DefaultDebounce.String()
	}
	if c.Dev.ReloadPath == "" {
		c.Dev.ReloadPath = DefaultReloadPath
	}
}

// Validate checks the configuration for values hyperc cannot use.
func (c *Config) Validate() error {
	invalid := func(detail string) error {
		return errors.New("C002").WithDetail(detail)
	}

	if c.Dev.Port < 0 || c.Dev.Port > 65535 {
		return invalid("dev.port must be between 0 and 65535")
	}
	if !strings.HasSuffix(c.Build.Suffix, ".go") || strings.HasSuffix(c.Build.Suffix, "_test.go") {
		return invalid("build.suffix must end in .go and must not name a test file")
	}
	if c.Build.Format && c.Build.SourceMaps {
		return invalid("build.format and build.sourceMaps cannot both be set: formatting moves lines")
	}
	if _, err := time.ParseDuration(c.Dev.Debounce); err != nil {
		return invalid("dev.debounce: " + err.Error())
	}
	if !strings.HasPrefix(c.Dev.ReloadPath, "/") {
		return invalid("dev.reloadPath must start with /")
	}
	for _, pattern := range c.Source.Exclude {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return invalid("source.exclude: bad pattern " + strconv.Quote(pattern))
		}
	}
	return nil
}

// DevAddress returns the listen address of the dev server.
func (c *Config) DevAddress() string {
	return net.JoinHostPort(c.Dev.Host, strconv.Itoa(c.Dev.Port))
}

// DebounceDuration returns Dev.Debounce parsed, or the default if it does
// not parse.
func (c *Config) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(c.Dev.Debounce)
	if err != nil {
		return DefaultDebounce
	}
	return d
}

// SourceDirs returns Source.Dirs resolved against Dir.
func (c *Config) SourceDirs() []string {
	dirs := make([]string, len(c.Source.Dirs))
	for i, d := range c.Source.Dirs {
		if filepath.IsAbs(d) {
			dirs[i] = d
		} else {
			dirs[i] = filepath.Join(c.Dir(), d)
		}
	}
	return dirs
}

// Excluded reports whether a file or directory base name matches an
// exclude pattern.
func (c *Config) Excluded(name string) bool {
	for _, pattern := range c.Source.Exclude {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// OutputName returns the generated file name for a .gsx file.
func (c *Config) OutputName(path string) string {
	return strings.TrimSuffix(path, ".gsx") + c.Build.Suffix
}

// Exists reports whether dir holds a config file.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up from startDir to the first directory holding
// hyperc.json.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for {
		if Exists(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("C001").
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}
