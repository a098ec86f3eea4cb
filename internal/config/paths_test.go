package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestDefaultPathsXDG(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("XDG paths are Unix-only")
	}
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	t.Setenv("XDG_DATA_HOME", "/xdg/data")

	p := DefaultPaths()
	if p.ConfigDir != filepath.Join("/xdg/config", "dorg") {
		t.Errorf("ConfigDir = %q", p.ConfigDir)
	}
	if p.DataDir != filepath.Join("/xdg/data", "dorg") {
		t.Errorf("DataDir = %q", p.DataDir)
	}
}

func TestPathHelpers(t *testing.T) {
	p := &Paths{ConfigDir: "/c", DataDir: "/d"}

	if p.ConfigFile() != filepath.Join("/c", "config.yaml") {
		t.Errorf("ConfigFile = %q", p.ConfigFile())
	}
	if p.LogFile() != filepath.Join("/d", "naming_history.csv") {
		t.Errorf("LogFile = %q", p.LogFile())
	}
	if p.DatabaseFile() != filepath.Join("/d", "naming_history.db") {
		t.Errorf("DatabaseFile = %q", p.DatabaseFile())
	}
	if !strings.HasSuffix(p.DataHome(), "data") {
		t.Errorf("DataHome = %q", p.DataHome())
	}
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	p := &Paths{
		ConfigDir: filepath.Join(root, "config"),
		DataDir:   filepath.Join(root, "data"),
	}
	if err := p.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{p.ConfigDir, p.DataDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("missing directory %s: %v", dir, err)
		}
	}
}
