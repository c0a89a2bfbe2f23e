package commands

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/linklocal/internal/config"
	"git.home.luguber.info/inful/linklocal/internal/daemon"
	"git.home.luguber.info/inful/linklocal/internal/metrics"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Debounce      time.Duration `help:"Quiet window after a note is written before it is processed" default:"2s"`
	Every         time.Duration `help:"Also sweep the whole vault at this interval (0 disables)" default:"0"`
	Initial       bool          `help:"Sweep the whole vault once at startup"`
	MetricsListen string        `name:"metrics-listen" help:"Serve Prometheus metrics on this address (e.g. :9105)"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	if res := config.ValidateSettings(cfg); !res.Valid {
		return res.Err()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc, err := root.newServices(g, cfg)
	if err != nil {
		return err
	}
	defer svc.close()

	d, err := daemon.New(daemon.Options{
		Root:        svc.vault.Root(),
		Debounce:    w.Debounce,
		Every:       w.Every,
		MetricsAddr: w.MetricsListen,
		Metrics:     metrics.HTTPHandler(svc.recorder.Registry()),
		Handler:     svc.handleJob,
	})
	if err != nil {
		return err
	}
	if w.Initial {
		d.Queue().Enqueue(daemon.Job{Sweep: true})
	}

	return d.Run(ctx)
}

// handleJob runs the pipeline for one daemon job.
func (s *services) handleJob(ctx context.Context, job daemon.Job) error {
	if job.Sweep {
		_, err := s.runScope(ctx, config.ScopeAllFiles, "")
		return err
	}
	_, err := s.runner.Run(ctx, []string{job.Doc})
	return err
}
