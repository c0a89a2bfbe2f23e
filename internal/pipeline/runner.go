package pipeline

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"git.home.luguber.info/inful/linklocal/internal/config"
	"git.home.luguber.info/inful/linklocal/internal/download"
	"git.home.luguber.info/inful/linklocal/internal/extract"
	ferrors "git.home.luguber.info/inful/linklocal/internal/foundation/errors"
	"git.home.luguber.info/inful/linklocal/internal/frontmatter"
	"git.home.luguber.info/inful/linklocal/internal/history"
	"git.home.luguber.info/inful/linklocal/internal/logfields"
	"git.home.luguber.info/inful/linklocal/internal/metrics"
	"git.home.luguber.info/inful/linklocal/internal/notify"
	"git.home.luguber.info/inful/linklocal/internal/pathtemplate"
	"git.home.luguber.info/inful/linklocal/internal/replace"
	"git.home.luguber.info/inful/linklocal/internal/vault"
	"github.com/google/uuid"
)

// Downloader stores one remote file. *download.Downloader implements it.
type Downloader interface {
	DownloadFile(ctx context.Context, vars pathtemplate.Vars, rawURL, fileName string, isImage bool) download.Result
}

// Runner executes the configured tasks over documents.
type Runner struct {
	cfg        *config.Config
	vault      vault.Vault
	downloader Downloader
	extractor  *extract.Extractor
	replacer   *replace.Replacer
	sink       Sink
	journal    Journal
	publisher  notify.Publisher
	recorder   metrics.Recorder
	now        func() time.Time
	newID      func() string
}

// Option configures a Runner.
type Option func(*Runner)

// WithSink sets the progress sink.
func WithSink(s Sink) Option {
	return func(r *Runner) {
		if s != nil {
			r.sink = s
		}
	}
}

// WithJournal records runs and attempts.
func WithJournal(j Journal) Option {
	return func(r *Runner) {
		if j != nil {
			r.journal = j
		}
	}
}

// WithPublisher publishes download outcomes.
func WithPublisher(p notify.Publisher) Option {
	return func(r *Runner) {
		if p != nil {
			r.publisher = p
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(m metrics.Recorder) Option {
	return func(r *Runner) {
		if m != nil {
			r.recorder = m
		}
	}
}

// WithClock overrides time.Now, used for template dates and durations.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// WithRunID overrides run id generation.
func WithRunID(newID func() string) Option {
	return func(r *Runner) { r.newID = newID }
}

// New returns a Runner for cfg reading and writing documents in v.
func New(cfg *config.Config, v vault.Vault, d Downloader, options ...Option) *Runner {
	r := &Runner{
		cfg:        cfg,
		vault:      v,
		downloader: d,
		extractor: extract.New(cfg.ActiveExtensions(), extract.Options{
			ExcludeImages: cfg.Extract.ExcludeImages,
			SkipCode:      cfg.Extract.SkipCode,
			HTMLImages:    cfg.Extract.HTMLImages,
		}),
		replacer: replace.New(replace.Options{
			HTMLImages: cfg.Extract.HTMLImages,
			SkipCode:   cfg.Extract.SkipCode,
		}),
		sink:      NopSink{},
		journal:   nopJournal{},
		publisher: notify.Nop{},
		recorder:  metrics.NoopRecorder{},
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Extractor returns the extractor built from the configuration.
func (r *Runner) Extractor() *extract.Extractor { return r.extractor }

// Run processes docs in order. Settings are validated before any document is
// touched. Per-link failures are counted, not returned. The returned error is
// a validation error or the context error when ctx is cancelled between
// documents.
func (r *Runner) Run(ctx context.Context, docs []string) (Stats, error) {
	if res := config.ValidateSettings(r.cfg); !res.Valid {
		return Stats{}, res.Err()
	}

	run := r.begin(ctx, len(docs))
	if len(docs) == 0 {
		slog.Info("No documents in scope", logfields.RunID(run.stats.RunID), logfields.Scope(string(r.cfg.Scope)))
	}

	var err error
	for _, doc := range docs {
		if err = ctx.Err(); err != nil {
			break
		}
		r.processDocument(ctx, run, doc, nil)
	}

	r.finish(ctx, run)
	return run.stats, err
}

// Get downloads a single URL on behalf of note. The URL must qualify for
// download under the same rules as extracted links. When rewrite is set and
// note is not empty, occurrences of the URL in the note are replaced.
func (r *Runner) Get(ctx context.Context, rawURL, note string, rewrite bool) (Stats, error) {
	if res := config.ValidateSettings(r.cfg); !res.Valid {
		return Stats{}, res.Err()
	}

	link, ok := r.extractor.Qualify(rawURL)
	if !ok {
		return Stats{}, ferrors.ValidationError("URL does not qualify for download").
			WithContext("url", rawURL).Build()
	}

	doc := ""
	if note != "" {
		var err error
		if doc, err = vault.Clean(note); err != nil {
			return Stats{}, err
		}
	}

	run := r.begin(ctx, 1)
	run.stats.Links = 1
	r.recorder.AddLinksFound(1)
	switch {
	case doc == "":
		r.downloadLinks(ctx, run, "", urlVars(rawURL, r.now()), []extract.Link{link})
		run.stats.Processed++
	case rewrite:
		r.processDocument(ctx, run, doc, &link)
	default:
		r.downloadLinks(ctx, run, doc, pathtemplate.DocumentVars(doc, r.now()), []extract.Link{link})
		run.stats.Processed++
	}

	r.finish(ctx, run)
	return run.stats, nil
}

type runState struct {
	stats   Stats
	started time.Time
}

func (r *Runner) begin(ctx context.Context, docs int) *runState {
	run := &runState{
		stats:   Stats{RunID: r.newID(), Documents: docs},
		started: r.now(),
	}
	if err := r.journal.StartRun(ctx, run.stats.RunID, string(r.cfg.Scope), run.started); err != nil {
		slog.Warn("Failed to record run start", logfields.RunID(run.stats.RunID), logfields.Error(err))
	}
	return run
}

func (r *Runner) finish(ctx context.Context, run *runState) {
	stats := run.stats
	finished := r.now()

	if err := r.journal.FinishRun(ctx, stats.RunID, stats.summary(), finished); err != nil {
		slog.Warn("Failed to record run summary", logfields.RunID(stats.RunID), logfields.Error(err))
	}
	if err := r.publisher.Publish(ctx, notify.Event{
		Type:       notify.TypeRunFinished,
		RunID:      stats.RunID,
		Success:    stats.Failed == 0 && stats.Errors == 0,
		Downloaded: stats.Downloaded,
		Failed:     stats.Failed,
	}); err != nil {
		slog.Warn("Failed to publish run summary", logfields.RunID(stats.RunID), logfields.Error(err))
	}

	r.recorder.ObserveRunDuration(finished.Sub(run.started))
	r.recorder.IncRunOutcome(outcome(stats))
	r.sink.Finished(stats)
}

// processDocument runs the enabled tasks over one document. When only is
// set, that link is used instead of the extracted ones.
func (r *Runner) processDocument(ctx context.Context, run *runState, doc string, only *extract.Link) {
	text, err := r.vault.Read(ctx, doc)
	if err != nil {
		run.stats.Errors++
		slog.Error("Failed to read document", logfields.Document(doc), logfields.Error(err))
		return
	}

	var links []extract.Link
	if only != nil {
		links = []extract.Link{*only}
	} else {
		links = r.extractor.Extract(text)
		run.stats.Links += len(links)
		r.recorder.AddLinksFound(len(links))
		r.sink.Extracted(doc, links)
	}

	tasks := r.cfg.TaskSet()
	if !tasks.Has(config.TaskDownload) || len(links) == 0 {
		run.stats.Processed++
		return
	}

	mapping := r.downloadLinks(ctx, run, doc, pathtemplate.DocumentVars(doc, r.now()), links)
	if !tasks.Has(config.TaskReplace) || mapping.Len() == 0 {
		run.stats.Processed++
		return
	}

	out, changes := r.replacer.Replace(text, mapping)
	if r.cfg.Rewrite.RefreshFingerprint && out != text {
		refreshed, _, ferr := frontmatter.RefreshFingerprint(out)
		if ferr != nil {
			slog.Warn("Failed to refresh fingerprint", logfields.Document(doc), logfields.Error(ferr))
		} else {
			out = refreshed
		}
	}

	if out != text {
		if err := r.vault.Write(ctx, doc, out); err != nil {
			run.stats.Errors++
			slog.Error("Failed to write document", logfields.Document(doc), logfields.Error(err))
			return
		}
		run.stats.Rewritten++
		r.recorder.IncDocumentsRewritten()
	}
	r.sink.Replaced(doc, changes)
	run.stats.Processed++
}

// downloadLinks fetches links one by one and returns the successful mappings.
func (r *Runner) downloadLinks(ctx context.Context, run *runState, doc string, vars pathtemplate.Vars, links []extract.Link) *replace.Map {
	mapping := replace.NewMap()
	for _, link := range links {
		res := r.downloader.DownloadFile(ctx, vars, link.OriginalLink, link.FileName, link.IsImage())

		label := metrics.ResultSuccess
		if res.Success {
			run.stats.Downloaded++
			mapping.Set(link.OriginalLink, res.LocalPath)
		} else {
			run.stats.Failed++
			label = metrics.ResultFailed
		}
		r.recorder.ObserveDownload(res.Duration, label)
		r.record(ctx, run.stats.RunID, doc, link, res)
		r.sink.Downloaded(doc, link, res)
	}
	return mapping
}

func (r *Runner) record(ctx context.Context, runID, doc string, link extract.Link, res download.Result) {
	if err := r.journal.RecordAttempt(ctx, history.Attempt{
		RunID:      runID,
		Document:   doc,
		URL:        link.OriginalLink,
		LocalPath:  res.LocalPath,
		Success:    res.Success,
		StatusCode: res.StatusCode,
		Bytes:      int64(res.Bytes),
		Duration:   res.Duration,
		Error:      res.Error,
		CreatedAt:  r.now(),
	}); err != nil {
		slog.Warn("Failed to record download attempt", logfields.URL(link.OriginalLink), logfields.Error(err))
	}

	if err := r.publisher.Publish(ctx, notify.Event{
		Type:       notify.TypeDownload,
		RunID:      runID,
		Document:   doc,
		URL:        link.OriginalLink,
		LocalPath:  res.LocalPath,
		Success:    res.Success,
		StatusCode: res.StatusCode,
		Error:      res.Error,
	}); err != nil {
		slog.Warn("Failed to publish download event", logfields.URL(link.OriginalLink), logfields.Error(err))
	}
}

func outcome(s Stats) string {
	switch {
	case s.Failed == 0 && s.Errors == 0:
		return metrics.OutcomeSuccess
	case s.Downloaded > 0 || s.Rewritten > 0:
		return metrics.OutcomePartial
	default:
		return metrics.OutcomeFailed
	}
}

// urlVars builds template variables for a download without a note: the URL
// host and path stand in for the document path.
func urlVars(rawURL string, now time.Time) pathtemplate.Vars {
	doc := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		doc = u.Host + u.Path
	}
	return pathtemplate.DocumentVars(doc, now)
}
