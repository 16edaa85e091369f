package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	src := `
data_dir: /tmp/rg
seed: 42
sound: true
serve:
  address: ":2222"
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.DataDir != "/tmp/rg" {
		t.Errorf("DataDir = %q, expected /tmp/rg", cfg.DataDir)
	}
	if cfg.Seed != 42 {
		t.Errorf("Seed = %d, expected 42", cfg.Seed)
	}
	if !cfg.Sound {
		t.Error("Sound not set")
	}
	if cfg.Serve.Address != ":2222" {
		t.Errorf("Serve.Address = %q, expected :2222", cfg.Serve.Address)
	}

	// Unset fields fall back to defaults derived from the file's values.
	if cfg.DBPath != filepath.Join("/tmp/rg", "results.db") {
		t.Errorf("DBPath = %q, expected it derived from data_dir", cfg.DBPath)
	}
}

func TestLoadExplicitPathErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() of a missing explicit path succeeded")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(bad, []byte(":\tnot yaml ["), 0o644)
	if _, err := Load(bad); err == nil {
		t.Error("Load() of unparseable yaml succeeded")
	}
}

func TestLoadEmbeddedDefault(t *testing.T) {
	// Run from an empty directory with HOME pointed away from any real
	// user config so the embedded default is the only source.
	t.Setenv("HOME", t.TempDir())
	wd, _ := os.Getwd()
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer os.Chdir(wd)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	def := DefaultConfig()
	if cfg.DataDir != def.DataDir {
		t.Errorf("DataDir = %q, expected default %q", cfg.DataDir, def.DataDir)
	}
	if cfg.Seed != def.Seed {
		t.Errorf("Seed = %d, expected default %d", cfg.Seed, def.Seed)
	}
	if !cfg.UI.AltScreen || !cfg.UI.ShowHelp {
		t.Errorf("UI = %+v, expected alt_screen and show_help on", cfg.UI)
	}
	if cfg.Serve.Address != ":23235" {
		t.Errorf("Serve.Address = %q, expected :23235", cfg.Serve.Address)
	}
}

func TestLoadUserConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, ".rulegrid")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("seed: 99\n"), 0o644)

	wd, _ := os.Getwd()
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer os.Chdir(wd)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Seed != 99 {
		t.Errorf("Seed = %d, expected the user config's 99", cfg.Seed)
	}
	if cfg.DataDir != "~/.rulegrid" {
		t.Errorf("DataDir = %q, expected the default for an unset field", cfg.DataDir)
	}
}

func TestSavePath(t *testing.T) {
	cfg := Config{DataDir: "/data"}
	if got := cfg.SavePath("crates"); got != filepath.Join("/data", "saves", "crates.json") {
		t.Errorf("SavePath = %q", got)
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if got := ExpandPath("~/x/y"); got != filepath.Join(home, "x", "y") {
		t.Errorf("ExpandPath(~/x/y) = %q", got)
	}
	if got := ExpandPath("/abs/path"); got != "/abs/path" {
		t.Errorf("ExpandPath(/abs/path) = %q", got)
	}
	if got := ExpandPath("rel"); got != "rel" {
		t.Errorf("ExpandPath(rel) = %q", got)
	}
	if got := ExpandPath("~"); !strings.HasPrefix(got, home) {
		t.Errorf("ExpandPath(~) = %q, expected the home directory", got)
	}
}

func TestHostKeyPath(t *testing.T) {
	cfg := Config{DataDir: "/data"}
	if got := cfg.HostKeyPath(); got != filepath.Join("/data", "host_key") {
		t.Errorf("HostKeyPath = %q, expected the data dir fallback", got)
	}
	cfg.Serve.HostKey = "/keys/hk"
	if got := cfg.HostKeyPath(); got != "/keys/hk" {
		t.Errorf("HostKeyPath = %q, expected the configured key", got)
	}
}
