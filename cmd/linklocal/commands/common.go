package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/linklocal/internal/config"
	"git.home.luguber.info/inful/linklocal/internal/download"
	"git.home.luguber.info/inful/linklocal/internal/fetch"
	"git.home.luguber.info/inful/linklocal/internal/gitscope"
	"git.home.luguber.info/inful/linklocal/internal/history"
	"git.home.luguber.info/inful/linklocal/internal/metrics"
	"git.home.luguber.info/inful/linklocal/internal/notify"
	"git.home.luguber.info/inful/linklocal/internal/pipeline"
	"git.home.luguber.info/inful/linklocal/internal/progress"
	"git.home.luguber.info/inful/linklocal/internal/vault"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
	// Out receives user-facing output.
	Out io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"linklocal.yaml" type:"path"`
	Vault   string           `help:"Vault root (overrides the vault setting)" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Quiet   bool             `short:"q" help:"Only log, do not print progress"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Run         RunCmd         `cmd:"" help:"Localize the links of the documents in scope"`
	Get         GetCmd         `cmd:"" help:"Download a single URL"`
	Extract     ExtractCmd     `cmd:"" help:"Print the downloadable links of a document"`
	Presets     PresetsCmd     `cmd:"" help:"List the extension presets"`
	Validate    ValidateCmd    `cmd:"" help:"Validate the configuration"`
	Init        InitCmd        `cmd:"" help:"Initialize a new configuration file"`
	Watch       WatchCmd       `cmd:"" help:"Watch the vault and localize documents as they change"`
	History     HistoryCmd     `cmd:"" help:"Show recorded runs"`
	InstallHook InstallHookCmd `cmd:"" name:"install-hook" help:"Install a git pre-commit hook running linklocal on changed notes"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	setLogger(level, "text")
	return nil
}

func setLogger(level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// loadConfig reads the configuration file when present. The logging section
// takes over from the flag defaults unless --verbose was given.
func (c *CLI) loadConfig(g *Global) (*config.Config, error) {
	cfg, found, err := config.LoadOptional(c.Config)
	if err != nil {
		return nil, err
	}
	if !found {
		slog.Debug("No configuration file, using defaults", "path", c.Config)
	}

	switch {
	case c.Vault != "":
		cfg.Vault = c.Vault
	case found && !filepath.IsAbs(cfg.Vault):
		cfg.Vault = filepath.Join(filepath.Dir(c.Config), cfg.Vault)
	}

	level := parseLevel(cfg.Logging.Level)
	if c.Verbose {
		level = slog.LevelDebug
	}
	g.Logger = setLogger(level, cfg.Logging.Format)
	return cfg, nil
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// services holds everything a pipeline run needs, built from the configuration.
type services struct {
	cfg      *config.Config
	vault    *vault.DirVault
	runner   *pipeline.Runner
	recorder *metrics.PrometheusRecorder
	closers  []func() error
}

// newServices wires the vault, transport, journal, notifications and metrics.
func (c *CLI) newServices(g *Global, cfg *config.Config) (*services, error) {
	v, err := vault.NewDirVault(cfg.Vault)
	if err != nil {
		return nil, err
	}

	fetcher := fetch.NewHTTPFetcher(fetch.Options{
		Timeout:   cfg.HTTP.TimeoutDuration(),
		UserAgent: cfg.HTTP.UserAgent,
		Headers:   cfg.HTTP.Headers,
		RateLimit: cfg.HTTP.RateLimit,
		Burst:     cfg.HTTP.Burst,
		Retry:     cfg.HTTP.Retry.Policy(),
	})
	downloader := download.New(v, fetcher, cfg.StorePath, cfg.StoreFileName)

	s := &services{
		cfg:      cfg,
		vault:    v,
		recorder: metrics.NewPrometheusRecorder(nil),
	}
	opts := []pipeline.Option{
		pipeline.WithSink(c.sink(g)),
		pipeline.WithRecorder(s.recorder),
	}

	if cfg.History.Enabled {
		dbPath := cfg.History.Path
		if !filepath.IsAbs(dbPath) {
			dbPath = filepath.Join(v.Root(), dbPath)
		}
		store, err := history.Open(dbPath)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, store.Close)
		opts = append(opts, pipeline.WithJournal(store))
	}

	if cfg.Notify.NATSURL != "" {
		pub, err := notify.Connect(cfg.Notify.NATSURL, cfg.Notify.Subject)
		if err != nil {
			slog.Warn("Notifications disabled", "error", err)
		} else {
			s.closers = append(s.closers, pub.Close)
			opts = append(opts, pipeline.WithPublisher(pub))
		}
	}

	s.runner = pipeline.New(cfg, v, downloader, opts...)
	return s, nil
}

func (c *CLI) sink(g *Global) pipeline.Sink {
	logSink := progress.NewLogSink(g.Logger)
	switch {
	case c.Quiet:
		return logSink
	case c.Verbose:
		return progress.MultiSink{progress.NewTerminalSink(g.Out), logSink}
	default:
		return progress.NewTerminalSink(g.Out)
	}
}

// changedFunc resolves the changed scope against the vault's git work tree.
func (s *services) changedFunc() pipeline.ChangedFunc {
	return func() ([]string, error) { return gitscope.ChangedMarkdown(s.vault.Root()) }
}

// runScope resolves scope and runs the pipeline over it.
func (s *services) runScope(ctx context.Context, scope config.Scope, file string) (pipeline.Stats, error) {
	docs, err := pipeline.ResolveScope(ctx, scope, s.docPath(file), s.vault, s.changedFunc())
	if err != nil {
		return pipeline.Stats{}, err
	}
	return s.runner.Run(ctx, docs)
}

// docPath converts a file argument to a vault-relative path. Paths that
// exist on disk are made relative to the vault root.
func (s *services) docPath(file string) string {
	if file == "" {
		return ""
	}
	if _, err := os.Stat(file); err == nil {
		if rel, err := s.vault.Rel(file); err == nil {
			return rel
		}
	}
	return filepath.ToSlash(file)
}

// close writes the metrics textfile and releases resources.
func (s *services) close() {
	if s.cfg.Metrics.Textfile != "" {
		if err := s.recorder.WriteTextfile(s.cfg.Metrics.Textfile); err != nil {
			slog.Warn("Failed to write metrics textfile", "path", s.cfg.Metrics.Textfile, "error", err)
		}
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			slog.Warn("Close failed", "error", err)
		}
	}
}

// printf writes user-facing output.
func printf(g *Global, format string, args ...any) {
	_, _ = fmt.Fprintf(g.Out, format, args...)
}
