package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/linklocal/internal/foundation/errors"
	"git.home.luguber.info/inful/linklocal/internal/foundation/normalization"
	"git.home.luguber.info/inful/linklocal/internal/pathtemplate"
	"git.home.luguber.info/inful/linklocal/internal/retry"
)

// templateVars are never taken from the environment so store_path and
// store_file_name placeholders survive expansion.
var templateVars = map[string]bool{
	pathtemplate.VarPath:         true,
	pathtemplate.VarNoteName:     true,
	pathtemplate.VarTitle:        true,
	pathtemplate.VarDate:         true,
	pathtemplate.VarTime:         true,
	pathtemplate.VarDateTime:     true,
	pathtemplate.VarOriginalName: true,
	pathtemplate.VarMD5:          true,
}

// Load reads a configuration file, expanding ${VAR} references from the
// environment (after loading .env or .env.local next to the file).
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		return nil, ferrors.ConfigError("configuration file not found").
			WithContext("path", configPath).
			Build()
	}
	if envFile, err := loadEnvFile(filepath.Dir(configPath)); err == nil {
		slog.Debug("Loaded environment file", "path", envFile)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to read config file").
			WithContext("path", configPath).
			Fatal().
			Build()
	}
	return Parse(data)
}

// LoadOptional loads configPath when it exists and falls back to Default when
// it does not. found reports which happened.
func LoadOptional(configPath string) (cfg *Config, found bool, err error) {
	if _, statErr := os.Stat(configPath); errors.Is(statErr, os.ErrNotExist) {
		return Default(), false, nil
	}
	cfg, err = Load(configPath)
	return cfg, err == nil, err
}

// Parse decodes raw YAML on top of the defaults.
func Parse(data []byte) (*Config, error) {
	expanded := expandEnv(string(data))

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to parse config").Fatal().Build()
	}

	normalize(cfg)
	applyDefaults(cfg)
	if err := validateStructure(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// expandEnv substitutes environment variables. Unset variables and template
// placeholders are written back unchanged.
func expandEnv(s string) string {
	return os.Expand(s, func(name string) string {
		if templateVars[name] {
			return "${" + name + "}"
		}
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		return "${" + name + "}"
	})
}

// loadEnvFile loads the first of .env and .env.local found in dir. Existing
// process variables are not overridden.
func loadEnvFile(dir string) (string, error) {
	for _, name := range []string{".env", ".env.local"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return "", fmt.Errorf("load %s: %w", path, err)
		}
		return path, nil
	}
	return "", errors.New("no .env file found")
}

var retryModes = normalization.NewEnum("retry mode", retry.ModeFixed, retry.ModeLinear, retry.ModeExponential)

// normalize canonicalizes spellings. Unknown values are kept as written for
// validation to report.
func normalize(cfg *Config) {
	cfg.Scope = scopeEnum.Normalize(cfg.Scope)
	for i, t := range cfg.Tasks {
		cfg.Tasks[i] = taskEnum.Normalize(t)
	}
	for i, ext := range cfg.CustomExtensions {
		cfg.CustomExtensions[i] = strings.ToLower(strings.TrimSpace(ext))
	}
	for i, name := range cfg.PresetExtensions {
		cfg.PresetExtensions[i] = strings.TrimSpace(name)
	}
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))
	cfg.HTTP.Retry.Mode = retryModes.Normalize(cfg.HTTP.Retry.Mode)
}

// validateStructure rejects values that cannot be interpreted at all. Pipeline
// settings are checked separately by ValidateSettings.
func validateStructure(cfg *Config) error {
	if cfg.Version != CurrentVersion {
		return ferrors.ConfigError(fmt.Sprintf("unsupported configuration version: %s (expected %s)", cfg.Version, CurrentVersion)).Build()
	}
	for field, raw := range map[string]string{
		"http.timeout":       cfg.HTTP.Timeout,
		"http.retry.initial": cfg.HTTP.Retry.Initial,
		"http.retry.max":     cfg.HTTP.Retry.Max,
	} {
		if _, err := time.ParseDuration(raw); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryConfig, fmt.Sprintf("invalid duration for %s: %q", field, raw)).Fatal().Build()
		}
	}
	switch cfg.HTTP.Retry.Mode {
	case retry.ModeFixed, retry.ModeLinear, retry.ModeExponential:
	default:
		return ferrors.ConfigError(fmt.Sprintf("invalid http.retry.mode: %s", cfg.HTTP.Retry.Mode)).Build()
	}
	if cfg.HTTP.Retry.MaxRetries < 0 {
		return ferrors.ConfigError("http.retry.max_retries cannot be negative").Build()
	}
	if cfg.HTTP.RateLimit < 0 {
		return ferrors.ConfigError("http.rate_limit cannot be negative").Build()
	}
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return ferrors.ConfigError(fmt.Sprintf("invalid logging.level: %s", cfg.Logging.Level)).Build()
	}
	switch cfg.Logging.Format {
	case "text", "json":
	default:
		return ferrors.ConfigError(fmt.Sprintf("invalid logging.format: %s", cfg.Logging.Format)).Build()
	}
	return nil
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return ferrors.ConfigError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath)).Build()
	}

	example := Default()
	example.History.Enabled = true

	data, err := yaml.Marshal(example)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to marshal config").Build()
	}
	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create config directory").Build()
		}
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).
			Build()
	}
	return nil
}
