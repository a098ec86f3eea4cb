// Package config provides configuration management for dorg.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Paths holds all the path configurations for dorg.
type Paths struct {
	// ConfigDir is the directory for configuration files (~/.config/dorg)
	ConfigDir string

	// DataDir is the directory for dorg's own data (~/.local/share/dorg)
	DataDir string
}

// DefaultPaths returns the default paths based on XDG Base Directory
// spec. On Windows, it uses %APPDATA% instead.
func DefaultPaths() *Paths {
	home := homeDir()

	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			localAppData = filepath.Join(home, "AppData", "Local")
		}
		return &Paths{
			ConfigDir: filepath.Join(appData, "dorg"),
			DataDir:   filepath.Join(localAppData, "dorg"),
		}
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(home, ".config")
	}
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = filepath.Join(home, ".local", "share")
	}

	return &Paths{
		ConfigDir: filepath.Join(configHome, "dorg"),
		DataDir:   filepath.Join(dataHome, "dorg"),
	}
}

// ConfigFile returns the path to the main configuration file.
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.ConfigDir, "config.yaml")
}

// DataHome returns the default root of the organized directory tree.
func (p *Paths) DataHome() string {
	return filepath.Join(homeDir(), "data")
}

// LogFile returns the default CSV naming history path.
func (p *Paths) LogFile() string {
	return filepath.Join(p.DataDir, "naming_history.csv")
}

// DatabaseFile returns the default SQLite naming history path.
func (p *Paths) DatabaseFile() string {
	return filepath.Join(p.DataDir, "naming_history.db")
}

// EnsureDirectories creates all necessary directories.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.ConfigDir, p.DataDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		if runtime.GOOS == "windows" {
			return os.Getenv("USERPROFILE")
		}
		return os.Getenv("HOME")
	}
	return home
}
