// Package daemon keeps a vault localized while it is being edited: changed
// documents are debounced and processed one at a time, with optional
// periodic sweeps of the whole vault.
package daemon

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	ferrors "git.home.luguber.info/inful/linklocal/internal/foundation/errors"
)

// DefaultDebounce is the quiet window applied to document writes.
const DefaultDebounce = 2 * time.Second

// Options configures a Daemon.
type Options struct {
	// Root is the vault directory to watch.
	Root string
	// Debounce is the quiet window per document; DefaultDebounce when zero.
	Debounce time.Duration
	// Every enables periodic sweeps when positive.
	Every time.Duration
	// MetricsAddr serves Metrics on /metrics when both are set.
	MetricsAddr string
	Metrics     http.Handler
	// Handler processes queued jobs.
	Handler Handler
}

// Daemon wires the watcher, scheduler and worker together.
type Daemon struct {
	opts  Options
	queue *Queue

	mu       sync.Mutex
	listener net.Addr
}

// New validates opts and returns a daemon.
func New(opts Options) (*Daemon, error) {
	if opts.Root == "" {
		return nil, ferrors.ValidationError("vault root is required").Build()
	}
	if opts.Handler == nil {
		return nil, ferrors.ValidationError("job handler is required").Build()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Every < 0 {
		return nil, ferrors.ValidationError("sweep interval must not be negative").Build()
	}
	return &Daemon{opts: opts, queue: NewQueue(opts.Handler)}, nil
}

// Queue returns the job queue, for enqueueing an initial sweep.
func (d *Daemon) Queue() *Queue { return d.queue }

// MetricsAddr returns the bound metrics address once Run has started the server.
func (d *Daemon) MetricsAddr() net.Addr {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.listener
}

// Run blocks until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	debouncer := NewDebouncer(d.opts.Debounce, func(doc string) {
		d.queue.Enqueue(Job{Doc: doc})
	})
	defer debouncer.Stop()

	watcher, err := NewWatcher(d.opts.Root, debouncer.Touch)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		watcher.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		d.queue.Run(ctx)
	}()

	if d.opts.Every > 0 {
		sched, err := NewScheduler(d.opts.Every, func() { d.queue.Enqueue(Job{Sweep: true}) })
		if err != nil {
			cancel()
			wg.Wait()
			return err
		}
		sched.Start()
		defer func() {
			if err := sched.Stop(); err != nil {
				slog.Warn("Scheduler shutdown failed", "error", err)
			}
		}()
	}

	if d.opts.MetricsAddr != "" && d.opts.Metrics != nil {
		srv, err := d.serveMetrics(ctx)
		if err != nil {
			cancel()
			wg.Wait()
			return err
		}
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	slog.Info("Watching vault", "root", d.opts.Root, "debounce", d.opts.Debounce, "every", d.opts.Every)
	<-ctx.Done()
	wg.Wait()
	slog.Info("Watch stopped")
	return nil
}

func (d *Daemon) serveMetrics(ctx context.Context) (*http.Server, error) {
	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", d.opts.MetricsAddr)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryNetwork, "failed to listen for metrics").
			WithContext("addr", d.opts.MetricsAddr).Build()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", d.opts.Metrics)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	d.mu.Lock()
	d.listener = ln.Addr()
	d.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server failed", "error", err)
		}
	}()
	slog.Info("Serving metrics", "addr", ln.Addr().String())
	return srv, nil
}
