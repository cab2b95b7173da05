// Package config loads asmexplorer settings from a YAML file and the
// environment. Settings are read-only; nothing is written back.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"asmexplorer/internal/cache"
	"asmexplorer/internal/objdump"
)

// Config is the on-disk configuration.
type Config struct {
	Objdump ObjdumpConfig `yaml:"objdump" json:"objdump" jsonschema:"title=Disassembler,description=External disassembler invocation"`
	Cache   CacheConfig   `yaml:"cache" json:"cache" jsonschema:"title=Cache,description=Disassembly output cache"`
	Display DisplayConfig `yaml:"display" json:"display" jsonschema:"title=Display,description=Listing presentation"`
	Logging LoggingConfig `yaml:"logging" json:"logging" jsonschema:"title=Logging"`
}

type ObjdumpConfig struct {
	Path string   `yaml:"path" json:"path" jsonschema:"title=Path,description=Disassembler executable (name or path),default=objdump"`
	Args []string `yaml:"args" json:"args" jsonschema:"title=Arguments,description=Flags placed before the input file"`
}

type CacheConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled" jsonschema:"title=Enabled,default=true"`
	Dir     string `yaml:"dir" json:"dir" jsonschema:"title=Directory,description=Where the cache database lives"`
}

type DisplayConfig struct {
	Demangle bool `yaml:"demangle" json:"demangle" jsonschema:"title=Demangle,description=Demangle names the disassembler left mangled"`
	Bytes    bool `yaml:"bytes" json:"bytes" jsonschema:"title=Raw bytes,description=Show the raw encoding column"`
	NoColor  bool `yaml:"no_color" json:"no_color" jsonschema:"title=No color,description=Disable syntax highlighting"`
}

type LoggingConfig struct {
	Level string `yaml:"level" json:"level" jsonschema:"title=Level,enum=debug,enum=info,enum=warn,enum=error,default=info"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Objdump: ObjdumpConfig{
			Path: objdump.DefaultPath,
			Args: append([]string(nil), objdump.DefaultArgs...),
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     DefaultDataDir(),
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// DefaultDataDir is $XDG_CACHE_HOME/asmexplorer or its platform equivalent.
func DefaultDataDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "asmexplorer")
	}
	return filepath.Join(dir, "asmexplorer")
}

// DefaultPath is the config file consulted when none is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "asmexplorer", "config.yaml")
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides settings from the environment:
//
//	ASMEXPLORER_OBJDUMP    disassembler path
//	ASMEXPLORER_NO_COLOR   any non-empty value disables color
//	ASMEXPLORER_LOG_LEVEL  debug, info, warn or error
func (c *Config) ApplyEnv() {
	if v := os.Getenv("ASMEXPLORER_OBJDUMP"); v != "" {
		c.Objdump.Path = v
	}
	if os.Getenv("ASMEXPLORER_NO_COLOR") != "" {
		c.Display.NoColor = true
	}
	if v := os.Getenv("ASMEXPLORER_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
}

// Runner builds the disassembler runner described by c.
func (c *Config) Runner() *objdump.Runner {
	return &objdump.Runner{Path: c.Objdump.Path, Args: c.Objdump.Args}
}

// CachePath is the cache database location.
func (c *Config) CachePath() string {
	return filepath.Join(c.Cache.Dir, cache.FileName)
}
