package sheet

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
	"github.com/tailscale/hujson"

	"github.com/calvinalkan/jobsheet/internal/kv"
	"github.com/calvinalkan/jobsheet/internal/logging"
)

// Config holds all configuration options.
type Config struct {
	// From config files (serialized)
	DataDir    string `json:"data_dir"`
	Storage    string `json:"storage"`
	RedisURL   string `json:"redis_url,omitempty"`
	LogLevel   string `json:"log_level"`
	Listen     string `json:"listen"`
	LoginDelay string `json:"login_delay"`

	// Resolved values (computed, not serialized)
	EffectiveCwd string `json:"-"` // Absolute working directory (from -C flag or os.Getwd)
	DataDirAbs   string `json:"-"` // Absolute path to data directory

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
		DataDir:    ".jobsheet",
		Storage:    kv.BackendFile,
		LogLevel:   "warn",
		Listen:     ":8080",
		LoginDelay: "0s",
	}
}

// ConfigFileName is the default project config file name.
const ConfigFileName = ".jr.json"

// DebugEnv forces debug logging when set to "1".
const DebugEnv = "JR_DEBUG"

// LoginDelayDuration returns the parsed login delay. Validated configs never
// fail to parse.
func (c Config) LoginDelayDuration() time.Duration {
	d, err := time.ParseDuration(c.LoginDelay)
	if err != nil {
		return 0
	}

	return d
}

// StorageOptions returns the kv options for this config.
func (c Config) StorageOptions() kv.Options {
	return kv.Options{Backend: c.Storage, Dir: c.DataDirAbs, RedisURL: c.RedisURL}
}

// getGlobalConfigPath returns $XDG_CONFIG_HOME/jr/config.json if set,
// otherwise ~/.config/jr/config.json, or "" without a home directory.
func getGlobalConfigPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "jr", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "jr", "config.json")
	}

	return ""
}

// LoadConfigInput holds the inputs for LoadConfig.
type LoadConfigInput struct {
	WorkDirOverride string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath      string            // -c/--config flag value
	DataDirOverride string            // --data-dir flag value; empty means no override
	StorageOverride string            // --storage flag value; empty means no override
	Env             map[string]string // environment variables
}

// LoadConfig loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config (~/.config/jr/config.json or $XDG_CONFIG_HOME/jr/config.json)
// 3. Project config file at default location (.jr.json, if exists)
// 4. Explicit config file via configPath (if non-empty)
// 5. CLI overrides and JR_DEBUG.
//
// DataDirAbs in the returned Config is absolute.
func LoadConfig(input LoadConfigInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	} else if !filepath.IsAbs(workDir) {
		abs, err := filepath.Abs(workDir)
		if err != nil {
			return Config{}, fmt.Errorf("cannot resolve working directory: %w", err)
		}

		workDir = abs
	}

	cfg := DefaultConfig()

	globalCfg, globalPath, err := loadGlobalConfig(input.Env)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Global = globalPath
	cfg = mergeConfig(cfg, globalCfg)

	projectCfg, projectPath, err := loadProjectConfig(workDir, input.ConfigPath)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Project = projectPath
	cfg = mergeConfig(cfg, projectCfg)

	if input.DataDirOverride != "" {
		cfg.DataDir = input.DataDirOverride
	}

	if input.StorageOverride != "" {
		cfg.Storage = input.StorageOverride
	}

	if input.Env[DebugEnv] == "1" {
		cfg.LogLevel = "debug"
	}

	validateErr := validateConfig(cfg)
	if validateErr != nil {
		return Config{}, validateErr
	}

	cfg.EffectiveCwd = workDir

	if filepath.IsAbs(cfg.DataDir) {
		cfg.DataDirAbs = cfg.DataDir
	} else {
		cfg.DataDirAbs = filepath.Join(workDir, cfg.DataDir)
	}

	return cfg, nil
}

func loadGlobalConfig(env map[string]string) (Config, string, error) {
	globalCfgPath := getGlobalConfigPath(env)
	if globalCfgPath == "" {
		return Config{}, "", nil
	}

	globalCfg, explicitEmpty, loaded, err := loadConfigFile(globalCfgPath, false)
	if err != nil {
		return Config{}, "", err
	}

	if !loaded {
		return Config{}, "", nil
	}

	if explicitEmpty["data_dir"] {
		return Config{}, "", fmt.Errorf("%w %s: %w", ErrConfigInvalid, globalCfgPath, ErrDataDirEmpty)
	}

	return globalCfg, globalCfgPath, nil
}

// loadProjectConfig loads .jr.json from workDir, or the explicit configPath
// which then must exist.
func loadProjectConfig(workDir, configPath string) (Config, string, error) {
	var cfgFile string

	var mustExist bool

	if configPath != "" {
		cfgFile = configPath
		if !filepath.IsAbs(cfgFile) {
			cfgFile = filepath.Join(workDir, cfgFile)
		}

		mustExist = true

		_, statErr := os.Stat(cfgFile)
		if statErr != nil {
			return Config{}, "", fmt.Errorf("%w: %s", ErrConfigFileNotFound, configPath)
		}
	} else {
		cfgFile = filepath.Join(workDir, ConfigFileName)
		mustExist = false
	}

	fileCfg, explicitEmpty, loaded, err := loadConfigFile(cfgFile, mustExist)
	if err != nil {
		return Config{}, "", err
	}

	if !loaded {
		return Config{}, "", nil
	}

	if explicitEmpty["data_dir"] {
		return Config{}, "", fmt.Errorf("%w %s: %w", ErrConfigInvalid, cfgFile, ErrDataDirEmpty)
	}

	return fileCfg, cfgFile, nil
}

// loadConfigFile returns the config, the fields explicitly set to "", and
// whether a file was read. A missing optional file is not an error.
func loadConfigFile(path string, mustExist bool) (Config, map[string]bool, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return Config{}, nil, false, nil
		}

		if mustExist {
			return Config{}, nil, false, fmt.Errorf("%w: %s", ErrConfigFileRead, path)
		}

		return Config{}, nil, false, nil
	}

	cfg, explicitEmpty, parseErr := parseConfig(data)
	if parseErr != nil {
		return Config{}, nil, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, parseErr)
	}

	return cfg, explicitEmpty, true, nil
}

func parseConfig(data []byte) (Config, map[string]bool, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, nil, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config

	unmarshalErr := sonic.ConfigStd.Unmarshal(standardized, &cfg)
	if unmarshalErr != nil {
		return Config{}, nil, fmt.Errorf("invalid JSON: %w", unmarshalErr)
	}

	var raw map[string]any

	_ = sonic.ConfigStd.Unmarshal(standardized, &raw)

	explicitEmpty := make(map[string]bool)

	if val, exists := raw["data_dir"]; exists {
		if str, ok := val.(string); ok && str == "" {
			explicitEmpty["data_dir"] = true
		}
	}

	return cfg, explicitEmpty, nil
}

func mergeConfig(base, overlay Config) Config {
	if overlay.DataDir != "" {
		base.DataDir = overlay.DataDir
	}

	if overlay.Storage != "" {
		base.Storage = overlay.Storage
	}

	if overlay.RedisURL != "" {
		base.RedisURL = overlay.RedisURL
	}

	if overlay.LogLevel != "" {
		base.LogLevel = overlay.LogLevel
	}

	if overlay.Listen != "" {
		base.Listen = overlay.Listen
	}

	if overlay.LoginDelay != "" {
		base.LoginDelay = overlay.LoginDelay
	}

	return base
}

func validateConfig(cfg Config) error {
	if cfg.DataDir == "" {
		return ErrDataDirEmpty
	}

	if !kv.IsValidBackend(cfg.Storage) {
		return fmt.Errorf("%w: %q", ErrInvalidStorage, cfg.Storage)
	}

	if cfg.Storage == kv.BackendRedis && cfg.RedisURL == "" {
		return ErrRedisURLRequired
	}

	if !logging.IsValidLevel(cfg.LogLevel) {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, cfg.LogLevel)
	}

	d, err := time.ParseDuration(cfg.LoginDelay)
	if err != nil || d < 0 {
		return fmt.Errorf("%w: %q", ErrInvalidLoginDelay, cfg.LoginDelay)
	}

	return nil
}
