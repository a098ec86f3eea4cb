package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the dorg configuration.
type Config struct {
	DataHome string         `yaml:"data_home"` // Root of the organized tree (empty = default)
	Naming   NamingConfig   `yaml:"naming"`
	Analyzer AnalyzerConfig `yaml:"analyzer"`
	Audio    AudioConfig    `yaml:"audio"`
	Log      LogConfig      `yaml:"log"`
	Feedback FeedbackConfig `yaml:"feedback"`
}

// NamingConfig holds name-generation settings.
type NamingConfig struct {
	MaxAttempts    int    `yaml:"max_attempts"`    // Retry budget per session
	Model          string `yaml:"model"`           // Claude model (empty = CLI default)
	TimeoutSeconds int    `yaml:"timeout_seconds"` // Per-request timeout
}

// AnalyzerConfig holds directory-analysis limits.
type AnalyzerConfig struct {
	MaxDepth       int `yaml:"max_depth"`        // File tree depth cap
	MaxFiles       int `yaml:"max_files"`        // Max files sampled for snippets
	MaxSnippetLen  int `yaml:"max_snippet_len"`  // Max snippet length in bytes
	LinesToExtract int `yaml:"lines_to_extract"` // Lines read per file
}

// AudioConfig holds audio intake settings.
type AudioConfig struct {
	Transcriber    string `yaml:"transcriber"`     // Command run per audio file
	TimeoutMinutes int    `yaml:"timeout_minutes"` // Per-file timeout
}

// LogConfig holds telemetry settings.
type LogConfig struct {
	Backend string `yaml:"backend"` // csv or sqlite
	Path    string `yaml:"path"`    // Log file path (empty = default)
}

// FeedbackRule is one configurable classification rule.
type FeedbackRule struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

// FeedbackConfig holds feedback classification settings.
type FeedbackConfig struct {
	// Rules override the built-in rule table when non-empty. Order
	// matters: categories are emitted in rule order.
	Rules []FeedbackRule `yaml:"rules"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DataHome: "", // Use default from paths
		Naming: NamingConfig{
			MaxAttempts:    3,
			Model:          "",
			TimeoutSeconds: 60,
		},
		Analyzer: AnalyzerConfig{
			MaxDepth:       3,
			MaxFiles:       25,
			MaxSnippetLen:  500,
			LinesToExtract: 10,
		},
		Audio: AudioConfig{
			Transcriber:    "whisper",
			TimeoutMinutes: 10,
		},
		Log: LogConfig{
			Backend: "csv",
			Path:    "", // Use default from paths
		},
	}
}

// Load loads configuration from the default path.
func Load() (*Config, error) {
	paths := DefaultPaths()
	return LoadFromFile(paths.ConfigFile())
}

// LoadFromFile loads configuration from the specified file.
// If the file doesn't exist, returns default configuration.
// Environment variable overrides are applied after file loading.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Save saves the configuration to the default path.
func (c *Config) Save() error {
	paths := DefaultPaths()
	return c.SaveToFile(paths.ConfigFile())
}

// SaveToFile saves the configuration to the specified file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Get retrieves a configuration value by dot-separated key.
// For example: "naming.max_attempts" or "log.backend"
func (c *Config) Get(key string) (string, error) {
	if key == "data_home" {
		return c.DataHome, nil
	}

	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return "", errors.New("key must be in format 'section.key'")
	}

	section, field := parts[0], parts[1]
	switch section {
	case "naming":
		return c.getNamingField(field)
	case "analyzer":
		return c.getAnalyzerField(field)
	case "audio":
		return c.getAudioField(field)
	case "log":
		return c.getLogField(field)
	default:
		return "", fmt.Errorf("unknown section: %s", section)
	}
}

// Set sets a configuration value by dot-separated key.
func (c *Config) Set(key, value string) error {
	if key == "data_home" {
		c.DataHome = value
		return nil
	}

	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return errors.New("key must be in format 'section.key'")
	}

	section, field := parts[0], parts[1]
	switch section {
	case "naming":
		return c.setNamingField(field, value)
	case "analyzer":
		return c.setAnalyzerField(field, value)
	case "audio":
		return c.setAudioField(field, value)
	case "log":
		return c.setLogField(field, value)
	default:
		return fmt.Errorf("unknown section: %s", section)
	}
}

func (c *Config) getNamingField(field string) (string, error) {
	switch field {
	case "max_attempts":
		return strconv.Itoa(c.Naming.MaxAttempts), nil
	case "model":
		return c.Naming.Model, nil
	case "timeout_seconds":
		return strconv.Itoa(c.Naming.TimeoutSeconds), nil
	default:
		return "", fmt.Errorf("unknown field: naming.%s", field)
	}
}

func (c *Config) setNamingField(field, value string) error {
	switch field {
	case "max_attempts":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for max_attempts: %w", err)
		}
		if v < 1 {
			return fmt.Errorf("invalid max_attempts: must be >= 1")
		}
		c.Naming.MaxAttempts = v
	case "model":
		c.Naming.Model = value
	case "timeout_seconds":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for timeout_seconds: %w", err)
		}
		if v < 1 {
			return fmt.Errorf("invalid timeout_seconds: must be >= 1")
		}
		c.Naming.TimeoutSeconds = v
	default:
		return fmt.Errorf("unknown field: naming.%s", field)
	}
	return nil
}

func (c *Config) getAnalyzerField(field string) (string, error) {
	switch field {
	case "max_depth":
		return strconv.Itoa(c.Analyzer.MaxDepth), nil
	case "max_files":
		return strconv.Itoa(c.Analyzer.MaxFiles), nil
	case "max_snippet_len":
		return strconv.Itoa(c.Analyzer.MaxSnippetLen), nil
	case "lines_to_extract":
		return strconv.Itoa(c.Analyzer.LinesToExtract), nil
	default:
		return "", fmt.Errorf("unknown field: analyzer.%s", field)
	}
}

func (c *Config) setAnalyzerField(field, value string) error {
	v, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", field, err)
	}
	if v < 1 {
		return fmt.Errorf("invalid %s: must be >= 1", field)
	}
	switch field {
	case "max_depth":
		c.Analyzer.MaxDepth = v
	case "max_files":
		c.Analyzer.MaxFiles = v
	case "max_snippet_len":
		c.Analyzer.MaxSnippetLen = v
	case "lines_to_extract":
		c.Analyzer.LinesToExtract = v
	default:
		return fmt.Errorf("unknown field: analyzer.%s", field)
	}
	return nil
}

func (c *Config) getAudioField(field string) (string, error) {
	switch field {
	case "transcriber":
		return c.Audio.Transcriber, nil
	case "timeout_minutes":
		return strconv.Itoa(c.Audio.TimeoutMinutes), nil
	default:
		return "", fmt.Errorf("unknown field: audio.%s", field)
	}
}

func (c *Config) setAudioField(field, value string) error {
	switch field {
	case "transcriber":
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("invalid transcriber: must not be empty")
		}
		c.Audio.Transcriber = value
	case "timeout_minutes":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for timeout_minutes: %w", err)
		}
		if v < 1 {
			return fmt.Errorf("invalid timeout_minutes: must be >= 1")
		}
		c.Audio.TimeoutMinutes = v
	default:
		return fmt.Errorf("unknown field: audio.%s", field)
	}
	return nil
}

func (c *Config) getLogField(field string) (string, error) {
	switch field {
	case "backend":
		return c.Log.Backend, nil
	case "path":
		return c.Log.Path, nil
	default:
		return "", fmt.Errorf("unknown field: log.%s", field)
	}
}

func (c *Config) setLogField(field, value string) error {
	switch field {
	case "backend":
		if !isValidLogBackend(value) {
			return fmt.Errorf("invalid backend: %s (must be csv or sqlite)", value)
		}
		c.Log.Backend = value
	case "path":
		c.Log.Path = value
	default:
		return fmt.Errorf("unknown field: log.%s", field)
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Naming.MaxAttempts < 1 {
		return errors.New("naming.max_attempts must be >= 1")
	}
	if c.Naming.TimeoutSeconds < 1 {
		return errors.New("naming.timeout_seconds must be >= 1")
	}
	if c.Analyzer.MaxDepth < 1 {
		return errors.New("analyzer.max_depth must be >= 1")
	}
	if c.Analyzer.MaxFiles < 1 {
		return errors.New("analyzer.max_files must be >= 1")
	}
	if c.Analyzer.MaxSnippetLen < 1 {
		return errors.New("analyzer.max_snippet_len must be >= 1")
	}
	if c.Analyzer.LinesToExtract < 1 {
		return errors.New("analyzer.lines_to_extract must be >= 1")
	}
	if strings.TrimSpace(c.Audio.Transcriber) == "" {
		return errors.New("audio.transcriber must not be empty")
	}
	if c.Audio.TimeoutMinutes < 1 {
		return errors.New("audio.timeout_minutes must be >= 1")
	}
	if !isValidLogBackend(c.Log.Backend) {
		return fmt.Errorf("log.backend must be csv or sqlite (got: %s)", c.Log.Backend)
	}
	for i, r := range c.Feedback.Rules {
		if r.Category == "" {
			return fmt.Errorf("feedback.rules[%d]: category must not be empty", i)
		}
		if len(r.Keywords) == 0 {
			return fmt.Errorf("feedback.rules[%d]: keywords must not be empty", i)
		}
	}
	return nil
}

func isValidLogBackend(backend string) bool {
	switch backend {
	case "csv", "sqlite":
		return true
	default:
		return false
	}
}

// ApplyEnvOverrides applies environment variable overrides to the
// config. DORG_DATA_HOME wins over DATA_HOME.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("DORG_DATA_HOME"); v != "" {
		c.DataHome = v
	} else if v := os.Getenv("DATA_HOME"); v != "" {
		c.DataHome = v
	}
	if v := os.Getenv("DORG_LOG_PATH"); v != "" {
		c.Log.Path = v
	}
	if v := os.Getenv("DORG_MODEL"); v != "" {
		c.Naming.Model = v
	}
}

// ResolvedDataHome returns the configured data home, falling back to
// the default location.
func (c *Config) ResolvedDataHome() string {
	if c.DataHome != "" {
		return c.DataHome
	}
	return DefaultPaths().DataHome()
}

// ResolvedLogPath returns the configured log path, falling back to the
// backend's default location.
func (c *Config) ResolvedLogPath() string {
	if c.Log.Path != "" {
		return c.Log.Path
	}
	paths := DefaultPaths()
	if c.Log.Backend == "sqlite" {
		return paths.DatabaseFile()
	}
	return paths.LogFile()
}

// ListKeys returns user-facing configuration keys.
func ListKeys() []string {
	return []string{
		"data_home",
		"naming.max_attempts",
		"naming.model",
		"naming.timeout_seconds",
		"analyzer.max_depth",
		"analyzer.max_files",
		"analyzer.max_snippet_len",
		"analyzer.lines_to_extract",
		"audio.transcriber",
		"audio.timeout_minutes",
		"log.backend",
		"log.path",
	}
}
