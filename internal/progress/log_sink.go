// Package progress reports pipeline progress to logs and terminals.
package progress

import (
	"log/slog"

	"git.home.luguber.info/inful/linklocal/internal/download"
	"git.home.luguber.info/inful/linklocal/internal/extract"
	"git.home.luguber.info/inful/linklocal/internal/logfields"
	"git.home.luguber.info/inful/linklocal/internal/pipeline"
	"git.home.luguber.info/inful/linklocal/internal/replace"
)

// LogSink writes one structured log record per pipeline event.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink logs to logger, or slog.Default when nil.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Extracted(doc string, links []extract.Link) {
	s.logger.Info("Extracted links", logfields.Document(doc), logfields.Links(len(links)))
	for _, l := range links {
		s.logger.Debug("Candidate link", logfields.Document(doc), logfields.URL(l.OriginalLink),
			slog.String("kind", string(l.Kind)), slog.String("file_name", l.FileName))
	}
}

func (s *LogSink) Downloaded(doc string, link extract.Link, res download.Result) {
	if res.Success {
		s.logger.Info("Downloaded file",
			logfields.Document(doc),
			logfields.URL(link.OriginalLink),
			logfields.LocalPath(res.LocalPath),
			logfields.DurationMS(float64(res.Duration.Microseconds())/1000))
		return
	}
	s.logger.Warn("Download failed",
		logfields.Document(doc),
		logfields.URL(link.OriginalLink),
		logfields.Status(res.StatusCode),
		slog.String(logfields.KeyError, res.Error))
}

func (s *LogSink) Replaced(doc string, changes []replace.Change) {
	total := 0
	for _, c := range changes {
		total += c.Count
	}
	s.logger.Info("Replaced links", logfields.Document(doc), logfields.Links(total))
}

func (s *LogSink) Finished(stats pipeline.Stats) {
	s.logger.Info("Run finished",
		logfields.RunID(stats.RunID),
		slog.Int("documents", stats.Documents),
		slog.Int("processed", stats.Processed),
		logfields.Links(stats.Links),
		slog.Int("downloaded", stats.Downloaded),
		slog.Int("failed", stats.Failed),
		slog.Int("rewritten", stats.Rewritten),
		slog.Int("errors", stats.Errors))
}
