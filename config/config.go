// Package config loads and validates vanarize's runtime configuration:
// heap arena sizing, executable-memory protection policy, compiler
// limits, and diagnostic tracing.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config is the full runtime configuration for a vanarize invocation.
type Config struct {
	Heap struct {
		ArenaSize    uint64 `toml:"arena_size"`    // bytes reserved for the bump arena
		RootCapacity int    `toml:"root_capacity"` // initial GC root-set capacity
		CollectOnOOM bool   `toml:"collect_on_oom"`
	} `toml:"heap"`

	ExecMem struct {
		// RWXDirect maps pages read+write+execute at allocation time (the
		// MVP behaviour). When false, pages are mapped RW and a later
		// ProtectExec call transitions them to RX before first call.
		RWXDirect bool `toml:"rwx_direct"`
	} `toml:"execmem"`

	Compiler struct {
		MaxSourceBytes int    `toml:"max_source_bytes"`
		ImportPath     string `toml:"import_path"`
		// FatalOnUnsupportedNode must be true: the MVP has no recovery
		// path for an AST node the code generator doesn't know how to
		// lower, and silently skipping one would miscompile the program.
		FatalOnUnsupportedNode bool `toml:"fatal_on_unsupported_node"`
	} `toml:"compiler"`

	Diagnostics struct {
		TraceLexer   bool `toml:"trace_lexer"`
		TraceParser  bool `toml:"trace_parser"`
		TraceCodegen bool `toml:"trace_codegen"`
		TraceGC      bool `toml:"trace_gc"`
	} `toml:"diagnostics"`
}

// DefaultConfig returns a configuration valid on its own, with no file on disk.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Heap.ArenaSize = 256 * 1024 * 1024 // 256 MiB, spec.md §4.3
	cfg.Heap.RootCapacity = 1024
	cfg.Heap.CollectOnOOM = true

	cfg.ExecMem.RWXDirect = true

	cfg.Compiler.MaxSourceBytes = 16 * 1024 * 1024
	cfg.Compiler.ImportPath = "."
	cfg.Compiler.FatalOnUnsupportedNode = true

	return cfg
}

// Validate rejects configurations the runtime cannot operate under.
func (c *Config) Validate() error {
	if c.Heap.ArenaSize == 0 {
		return fmt.Errorf("config: heap.arena_size must be greater than zero")
	}
	if c.Heap.RootCapacity <= 0 {
		return fmt.Errorf("config: heap.root_capacity must be greater than zero")
	}
	if c.Compiler.MaxSourceBytes <= 0 {
		return fmt.Errorf("config: compiler.max_source_bytes must be greater than zero")
	}
	if !c.Compiler.FatalOnUnsupportedNode {
		return fmt.Errorf("config: compiler.fatal_on_unsupported_node=false is not supported by this build")
	}
	return nil
}

// GetConfigPath returns the platform-specific config file path for vanarize.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "vanarize")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "vanarize")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the default config path, falling back to
// DefaultConfig() when no file is present.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from path, falling back to DefaultConfig()
// when path does not exist.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
