package config

import (
	"git.home.luguber.info/inful/linklocal/internal/retry"
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Version:          CurrentVersion,
		Tasks:            []Task{TaskExtract, TaskDownload, TaskReplace},
		Scope:            ScopeCurrentFile,
		PresetExtensions: []string{"image", "officeFile"},
		CustomExtensions: []string{},
		StorePath:        "assets/${path}",
		StoreFileName:    "${originalName}",
		Vault:            ".",
		HTTP: HTTPConfig{
			Timeout:   "30s",
			UserAgent: "linklocal",
			Retry: RetryConfig{
				Mode:       retry.ModeLinear,
				Initial:    "1s",
				Max:        "30s",
				MaxRetries: 0,
			},
		},
		History: HistoryConfig{Path: ".linklocal/history.db"},
		Notify:  NotifyConfig{Subject: "linklocal.downloads"},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// applyDefaults fills ambient settings left empty by the file. The pipeline
// settings (tasks, extensions, templates) are not defaulted here because an
// explicit empty value is something ValidateSettings must report.
func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Version == "" {
		cfg.Version = CurrentVersion
	}
	if cfg.Scope == "" {
		cfg.Scope = def.Scope
	}
	if cfg.Vault == "" {
		cfg.Vault = def.Vault
	}
	if cfg.HTTP.Timeout == "" {
		cfg.HTTP.Timeout = def.HTTP.Timeout
	}
	if cfg.HTTP.UserAgent == "" {
		cfg.HTTP.UserAgent = def.HTTP.UserAgent
	}
	if cfg.HTTP.RateLimit > 0 && cfg.HTTP.Burst <= 0 {
		cfg.HTTP.Burst = 1
	}
	if cfg.HTTP.Retry.Mode == "" {
		cfg.HTTP.Retry.Mode = def.HTTP.Retry.Mode
	}
	if cfg.HTTP.Retry.Initial == "" {
		cfg.HTTP.Retry.Initial = def.HTTP.Retry.Initial
	}
	if cfg.HTTP.Retry.Max == "" {
		cfg.HTTP.Retry.Max = def.HTTP.Retry.Max
	}
	if cfg.History.Path == "" {
		cfg.History.Path = def.History.Path
	}
	if cfg.Notify.Subject == "" {
		cfg.Notify.Subject = def.Notify.Subject
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = def.Logging.Format
	}
}
