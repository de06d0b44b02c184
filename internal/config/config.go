// Package config resolves tuimorrow's configuration from defaults, JSONC
// config files and command line overrides.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"
	"github.com/sirupsen/logrus"
	"github.com/tailscale/hujson"

	"github.com/calvinalkan/tuimorrow/internal/store"
)

const appName = "tuimorrow"

// Config holds all configuration options.
type Config struct {
	// From config files (serialized)
	DataDir       string `json:"data_dir,omitempty"`
	LogLevel      string `json:"log_level,omitempty"`
	BusyTimeoutMS int    `json:"busy_timeout_ms,omitempty"`
	OpTimeoutMS   int    `json:"op_timeout_ms,omitempty"`
	LockTimeoutMS int    `json:"lock_timeout_ms,omitempty"`

	// Resolved (computed, not serialized)
	EffectiveCwd string `json:"-"` // Absolute working directory
	DataDirAbs   string `json:"-"` // Absolute path to the data directory
	DBPath       string `json:"-"` // Absolute path to the database file

	// Sources tracks which config files were loaded (for diagnostics)
	Sources Sources `json:"-"`
}

// Sources tracks which config files were loaded.
type Sources struct {
	Global   string // Path to global config if loaded, empty otherwise
	Explicit string // Path to the -c config if given, empty otherwise
}

// Default returns the default configuration. DataDir is left empty and
// resolved from the XDG environment by [Load].
func Default() Config {
	return Config{
		LogLevel:      "warn",
		BusyTimeoutMS: int(store.DefaultBusyTimeout / time.Millisecond),
		OpTimeoutMS:   int(store.DefaultOpTimeout / time.Millisecond),
		LockTimeoutMS: int(store.DefaultLockTimeout / time.Millisecond),
	}
}

// GlobalPath returns the path to the global config file.
// Uses $XDG_CONFIG_HOME/tuimorrow/config.json if set, otherwise
// ~/.config/tuimorrow/config.json. Returns "" if neither is known.
func GlobalPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, appName, "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", appName, "config.json")
	}

	return ""
}

// DefaultDataDir returns $XDG_DATA_HOME/tuimorrow, else
// ~/.local/share/tuimorrow, else "".
func DefaultDataDir(env map[string]string) string {
	if xdgData := env["XDG_DATA_HOME"]; xdgData != "" {
		return filepath.Join(xdgData, appName)
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".local", "share", appName)
	}

	return ""
}

// LoadInput holds the inputs for Load.
type LoadInput struct {
	WorkDir            string            // base for relative paths; os.Getwd() if empty
	ConfigPath         string            // -c/--config flag value
	DataDirOverride    string            // --data-dir flag value
	HasDataDirOverride bool              // --data-dir was given, even if empty
	LogLevelOverride   string            // set by -v; empty means no override
	Env                map[string]string // environment variables
}

// Load resolves configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config (~/.config/tuimorrow/config.json or $XDG_CONFIG_HOME/tuimorrow/config.json)
// 3. Explicit config file via ConfigPath (if non-empty)
// 4. CLI overrides.
//
// All paths in the returned Config are absolute.
func Load(input LoadInput) (Config, error) {
	workDir := input.WorkDir
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	cfg := Default()

	globalPath := GlobalPath(input.Env)
	if globalPath != "" {
		globalCfg, loaded, err := loadFile(globalPath, false)
		if err != nil {
			return Config{}, err
		}

		if loaded {
			cfg = merge(cfg, globalCfg)
			cfg.Sources.Global = globalPath
		}
	}

	if input.ConfigPath != "" {
		path := input.ConfigPath
		if !filepath.IsAbs(path) {
			path = filepath.Join(workDir, path)
		}

		_, statErr := os.Stat(path)
		if statErr != nil {
			return Config{}, fmt.Errorf("%w: %s", ErrConfigFileNotFound, input.ConfigPath)
		}

		fileCfg, _, err := loadFile(path, true)
		if err != nil {
			return Config{}, err
		}

		cfg = merge(cfg, fileCfg)
		cfg.Sources.Explicit = path
	}

	if input.HasDataDirOverride {
		if input.DataDirOverride == "" {
			return Config{}, ErrDataDirEmpty
		}

		cfg.DataDir = input.DataDirOverride
	}

	if input.LogLevelOverride != "" {
		cfg.LogLevel = input.LogLevelOverride
	}

	err := Validate(cfg)
	if err != nil {
		return Config{}, err
	}

	cfg.EffectiveCwd = workDir

	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = DefaultDataDir(input.Env)
		if dataDir == "" {
			return Config{}, ErrDataDirUnknown
		}
	}

	if !filepath.IsAbs(dataDir) {
		dataDir = filepath.Join(workDir, dataDir)
	}

	cfg.DataDirAbs = filepath.Clean(dataDir)
	cfg.DBPath = store.PathIn(cfg.DataDirAbs)

	return cfg, nil
}

// loadFile reads one config file. A missing file is only an error when
// mustExist is set.
func loadFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return Config{}, false, nil
		}

		return Config{}, false, fmt.Errorf("%w: %s", ErrConfigFileRead, path)
	}

	cfg, explicitEmpty, err := Parse(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	if explicitEmpty["data_dir"] {
		return Config{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, ErrDataDirEmpty)
	}

	return cfg, true, nil
}

// Parse decodes a JSONC config document. It also reports which fields were
// present but explicitly empty.
func Parse(data []byte) (Config, map[string]bool, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, nil, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config

	dec := json.NewDecoder(bytes.NewReader(standardized))
	dec.DisallowUnknownFields()

	err = dec.Decode(&cfg)
	if err != nil {
		return Config{}, nil, fmt.Errorf("invalid JSON: %w", err)
	}

	var raw map[string]any

	_ = json.Unmarshal(standardized, &raw)

	explicitEmpty := make(map[string]bool)

	if val, exists := raw["data_dir"]; exists {
		if str, ok := val.(string); ok && str == "" {
			explicitEmpty["data_dir"] = true
		}
	}

	return cfg, explicitEmpty, nil
}

func merge(base, overlay Config) Config {
	if overlay.DataDir != "" {
		base.DataDir = overlay.DataDir
	}

	if overlay.LogLevel != "" {
		base.LogLevel = overlay.LogLevel
	}

	if overlay.BusyTimeoutMS != 0 {
		base.BusyTimeoutMS = overlay.BusyTimeoutMS
	}

	if overlay.OpTimeoutMS != 0 {
		base.OpTimeoutMS = overlay.OpTimeoutMS
	}

	if overlay.LockTimeoutMS != 0 {
		base.LockTimeoutMS = overlay.LockTimeoutMS
	}

	return base
}

// Validate checks values that would otherwise fail later with a less
// helpful error.
func Validate(cfg Config) error {
	_, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrLogLevelInvalid, cfg.LogLevel)
	}

	for name, ms := range map[string]int{
		"busy_timeout_ms": cfg.BusyTimeoutMS,
		"op_timeout_ms":   cfg.OpTimeoutMS,
		"lock_timeout_ms": cfg.LockTimeoutMS,
	} {
		if ms < 0 {
			return fmt.Errorf("%w: %s=%d", ErrTimeoutNegative, name, ms)
		}
	}

	return nil
}

// Level returns the parsed log level. Load has already validated it.
func (c Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.WarnLevel
	}

	return lvl
}

// StoreOptions maps the config onto [store.Options].
func (c Config) StoreOptions(log logrus.FieldLogger) store.Options {
	return store.Options{
		Path:        c.DBPath,
		BusyTimeout: time.Duration(c.BusyTimeoutMS) * time.Millisecond,
		OpTimeout:   time.Duration(c.OpTimeoutMS) * time.Millisecond,
		LockTimeout: time.Duration(c.LockTimeoutMS) * time.Millisecond,
		Logger:      log,
	}
}

// Format renders the serialized fields as indented JSON.
func Format(cfg Config) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("formatting config: %w", err)
	}

	return string(data), nil
}

// WriteDefault writes the default config to path, creating parent
// directories. The write is atomic; an existing file is left untouched
// unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		_, err := os.Stat(path)
		if err == nil {
			return fmt.Errorf("%w: %s", ErrConfigFileExists, path)
		}
	}

	formatted, err := Format(Default())
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(path), 0o750)
	if err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	err = atomic.WriteFile(path, bytes.NewReader([]byte(formatted+"\n")))
	if err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}
