package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
)

// ConfigFileName is the project config file looked up in the working directory.
const ConfigFileName = ".sqlcrud.json"

// Config holds all CLI configuration options.
type Config struct {
	// From config files (serialized)
	DB          string `json:"db"`
	Table       string `json:"table,omitempty"`
	LogLevel    string `json:"log_level,omitempty"`
	HistoryFile string `json:"history_file,omitempty"`

	// Resolved values (computed, not serialized)
	EffectiveCwd   string `json:"-"` // Absolute working directory (from -C flag or os.Getwd)
	DBAbs          string `json:"-"` // Absolute path to the database file
	HistoryFileAbs string `json:"-"` // Absolute path to the REPL history file, empty disables history

	// Sources tracks which config files were loaded (for diagnostics)
	Sources ConfigSources `json:"-"`
}

// ConfigSources tracks which config files were loaded.
type ConfigSources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project config if loaded, empty otherwise
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		DB:       "sqlcrud.db",
		LogLevel: "warn",
	}
}

// LoadConfigInput holds the inputs for LoadConfig.
type LoadConfigInput struct {
	WorkDirOverride string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath      string            // -c/--config flag value
	Overrides       Config            // --db, --table and --log-level flag values; empty fields are ignored
	DBOverridden    bool              // --db was given, even if empty
	Env             map[string]string // environment variables
}

// LoadConfig loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config ($XDG_CONFIG_HOME/sqlcrud/config.json or ~/.config/sqlcrud/config.json)
// 3. Project config file (.sqlcrud.json) or the explicit --config file
// 4. CLI overrides.
//
// All paths in the returned Config are resolved to absolute paths.
func LoadConfig(input LoadConfigInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	workDir, err := filepath.Abs(workDir)
	if err != nil {
		return Config{}, fmt.Errorf("cannot resolve working directory: %w", err)
	}

	cfg := DefaultConfig()

	globalPath := globalConfigPath(input.Env)
	if globalPath != "" {
		globalCfg, loaded, err := loadConfigFile(globalPath, false)
		if err != nil {
			return Config{}, err
		}

		if loaded {
			cfg.Sources.Global = globalPath
			cfg = mergeConfig(cfg, globalCfg)
		}
	}

	projectCfg, projectPath, err := loadProjectConfig(workDir, input.ConfigPath)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Project = projectPath
	cfg = mergeConfig(cfg, projectCfg)

	cfg = mergeConfig(cfg, input.Overrides)
	if input.DBOverridden && input.Overrides.DB == "" {
		return Config{}, ErrDBPathEmpty
	}

	if cfg.HistoryFile == "" {
		cfg.HistoryFile = defaultHistoryFile(input.Env)
	}

	cfg.EffectiveCwd = workDir
	cfg.DBAbs = resolvePath(workDir, cfg.DB)
	cfg.HistoryFileAbs = resolvePath(workDir, cfg.HistoryFile)

	return cfg, nil
}

// globalConfigPath returns the path to the global config file, or "" if
// neither XDG_CONFIG_HOME nor HOME is set.
func globalConfigPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "sqlcrud", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "sqlcrud", "config.json")
	}

	return ""
}

func defaultHistoryFile(env map[string]string) string {
	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".sqlcrud_history")
	}

	return ""
}

// loadProjectConfig loads .sqlcrud.json from workDir, or the explicit config
// file when configPath is set. Returns the config and the path if loaded.
func loadProjectConfig(workDir, configPath string) (Config, string, error) {
	if configPath == "" {
		cfgFile := filepath.Join(workDir, ConfigFileName)

		cfg, loaded, err := loadConfigFile(cfgFile, false)
		if err != nil || !loaded {
			return Config{}, "", err
		}

		return cfg, cfgFile, nil
	}

	cfgFile := resolvePath(workDir, configPath)

	_, statErr := os.Stat(cfgFile)
	if statErr != nil {
		return Config{}, "", fmt.Errorf("%w: %s", ErrConfigFileNotFound, configPath)
	}

	cfg, _, err := loadConfigFile(cfgFile, true)
	if err != nil {
		return Config{}, "", err
	}

	return cfg, cfgFile, nil
}

// loadConfigFile loads a config file. If mustExist is false, missing files
// return a zero config. Returns whether the file was loaded.
func loadConfigFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return Config{}, false, nil
		}

		return Config{}, false, fmt.Errorf("%w: %s", ErrConfigFileRead, path)
	}

	cfg, err := parseConfig(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	return cfg, true, nil
}

func parseConfig(data []byte) (Config, error) {
	// Standardize JSONC to JSON
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var raw map[string]any

	err = json.Unmarshal(standardized, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", err)
	}

	if val, ok := raw["db"]; ok {
		if str, isStr := val.(string); isStr && strings.TrimSpace(str) == "" {
			return Config{}, ErrDBPathEmpty
		}
	}

	var cfg Config

	err = json.Unmarshal(standardized, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", err)
	}

	return cfg, nil
}

func mergeConfig(base, overlay Config) Config {
	if overlay.DB != "" {
		base.DB = overlay.DB
	}

	if overlay.Table != "" {
		base.Table = overlay.Table
	}

	if overlay.LogLevel != "" {
		base.LogLevel = overlay.LogLevel
	}

	if overlay.HistoryFile != "" {
		base.HistoryFile = overlay.HistoryFile
	}

	return base
}

// FormatConfig renders the serializable part of cfg as indented JSON.
func FormatConfig(cfg Config) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("format config: %w", err)
	}

	return string(data), nil
}

func resolvePath(workDir, path string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(workDir, path)
}
