package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Heap.ArenaSize != 256*1024*1024 {
		t.Errorf("expected ArenaSize=256MiB, got %d", cfg.Heap.ArenaSize)
	}
	if cfg.Heap.RootCapacity != 1024 {
		t.Errorf("expected RootCapacity=1024, got %d", cfg.Heap.RootCapacity)
	}
	if !cfg.ExecMem.RWXDirect {
		t.Error("expected ExecMem.RWXDirect=true by default")
	}
	if !cfg.Compiler.FatalOnUnsupportedNode {
		t.Error("expected Compiler.FatalOnUnsupportedNode=true by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestGetConfigPath(t *testing.T) {
	path := GetConfigPath()

	if path == "" {
		t.Error("GetConfigPath returned empty string")
	}
	if filepath.Base(path) != "config.toml" {
		t.Errorf("expected path to end with config.toml, got %s", path)
	}

	switch runtime.GOOS {
	case "darwin", "linux":
		dir := filepath.Dir(path)
		if filepath.Base(dir) != "vanarize" && path != "config.toml" {
			t.Errorf("expected path in vanarize directory or fallback, got %s", path)
		}
	}
}

func TestLoadNonExistent(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nonexistent.toml")

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom should not error on non-existent file: %v", err)
	}
	if cfg.Heap.ArenaSize != DefaultConfig().Heap.ArenaSize {
		t.Error("expected default config when file doesn't exist")
	}
}

func TestLoadValidTOML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.toml")

	contents := `
[heap]
arena_size = 1048576
root_capacity = 64
collect_on_oom = true

[execmem]
rwx_direct = false

[compiler]
max_source_bytes = 4096
import_path = "."
fatal_on_unsupported_node = true

[diagnostics]
trace_gc = true
`
	if err := os.WriteFile(configPath, []byte(contents), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Heap.ArenaSize != 1048576 {
		t.Errorf("expected ArenaSize=1048576, got %d", cfg.Heap.ArenaSize)
	}
	if cfg.ExecMem.RWXDirect {
		t.Error("expected RWXDirect=false")
	}
	if !cfg.Diagnostics.TraceGC {
		t.Error("expected TraceGC=true")
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "invalid.toml")

	invalidTOML := `
[heap]
arena_size = "not a number"
`
	if err := os.WriteFile(configPath, []byte(invalidTOML), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	if _, err := LoadFrom(configPath); err == nil {
		t.Error("expected error when loading invalid TOML")
	}
}

func TestValidateRejectsZeroArena(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Heap.ArenaSize = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero arena size")
	}
}

func TestValidateRejectsNonFatalUnsupportedNode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Compiler.FatalOnUnsupportedNode = false
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when fatal_on_unsupported_node is false")
	}
}
