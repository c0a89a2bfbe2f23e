// Package config loads and validates linklocal configuration files.
package config

import (
	"time"

	"git.home.luguber.info/inful/linklocal/internal/foundation/normalization"
	"git.home.luguber.info/inful/linklocal/internal/presets"
	"git.home.luguber.info/inful/linklocal/internal/retry"
	"git.home.luguber.info/inful/linklocal/internal/util/sets"
)

// CurrentVersion is the only configuration schema version understood by Load.
const CurrentVersion = "1"

// DefaultFileName is the configuration file looked up when --config is not given.
const DefaultFileName = "linklocal.yaml"

// Scope selects the set of documents a run processes.
type Scope string

const (
	ScopeCurrentFile   Scope = "currentFile"
	ScopeCurrentFolder Scope = "currentFolder"
	ScopeAllFiles      Scope = "allFiles"
	ScopeChanged       Scope = "changed"
)

// Scopes lists the accepted scope values in display order.
var Scopes = []Scope{ScopeCurrentFile, ScopeCurrentFolder, ScopeAllFiles, ScopeChanged}

var scopeEnum = normalization.NewEnum("scope", Scopes...)

// ParseScope accepts any spelling of a scope that differs only in case,
// hyphens, underscores or spaces, such as "all-files".
func ParseScope(raw string) (Scope, error) { return scopeEnum.Parse(raw) }

// Valid reports whether s is one of Scopes.
func (s Scope) Valid() bool {
	for _, v := range Scopes {
		if s == v {
			return true
		}
	}
	return false
}

// Config is the complete linklocal configuration.
type Config struct {
	Version          string   `yaml:"version"`
	Tasks            []Task   `yaml:"tasks"`
	Scope            Scope    `yaml:"scope"`
	PresetExtensions []string `yaml:"preset_extensions"`
	CustomExtensions []string `yaml:"custom_extensions"`
	StorePath        string   `yaml:"store_path"`
	StoreFileName    string   `yaml:"store_file_name"`
	// Vault is the storage root. Document and attachment paths are relative to it.
	Vault string `yaml:"vault"`

	Extract ExtractConfig `yaml:"extract"`
	HTTP    HTTPConfig    `yaml:"http"`
	History HistoryConfig `yaml:"history"`
	Notify  NotifyConfig  `yaml:"notify"`
	Rewrite RewriteConfig `yaml:"rewrite"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ExtractConfig tunes link discovery.
type ExtractConfig struct {
	// ExcludeImages makes image links subject to extension filtering like any other link.
	ExcludeImages bool `yaml:"exclude_images"`
	// SkipCode ignores links inside fenced, indented and inline code.
	SkipCode bool `yaml:"skip_code"`
	// HTMLImages also recognizes <img src="..."> tags.
	HTMLImages bool `yaml:"html_images"`
}

// HTTPConfig configures the download transport.
type HTTPConfig struct {
	Timeout   string            `yaml:"timeout"`
	UserAgent string            `yaml:"user_agent"`
	Headers   map[string]string `yaml:"headers,omitempty"`
	// RateLimit is the maximum number of requests per second. Zero disables limiting.
	RateLimit float64     `yaml:"rate_limit"`
	Burst     int         `yaml:"burst"`
	Retry     RetryConfig `yaml:"retry"`
}

// RetryConfig mirrors retry.Policy with duration strings.
type RetryConfig struct {
	Mode       retry.Mode `yaml:"mode"`
	Initial    string     `yaml:"initial"`
	Max        string     `yaml:"max"`
	MaxRetries int        `yaml:"max_retries"`
}

// HistoryConfig controls the sqlite run journal.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// NotifyConfig controls NATS download events. An empty URL disables publishing.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// RewriteConfig tunes the document write step.
type RewriteConfig struct {
	RefreshFingerprint bool `yaml:"refresh_fingerprint"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// ActiveExtensions returns the union of the enabled presets and custom extensions.
func (c *Config) ActiveExtensions() sets.Set[string] {
	return presets.Active(c.PresetExtensions, c.CustomExtensions)
}

// TaskSet returns the enabled tasks. Unknown task names are ignored here;
// ValidateSettings reports them.
func (c *Config) TaskSet() TaskSet {
	var ts TaskSet
	for _, t := range c.Tasks {
		if t.Valid() {
			ts.set(t, true)
		}
	}
	return ts
}

// TimeoutDuration returns the parsed HTTP timeout. Load guarantees it parses.
func (h HTTPConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(h.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// Policy converts the retry block into a retry.Policy.
func (r RetryConfig) Policy() retry.Policy {
	initial, _ := time.ParseDuration(r.Initial)
	maxDelay, _ := time.ParseDuration(r.Max)
	return retry.NewPolicy(r.Mode, initial, maxDelay, r.MaxRetries)
}
