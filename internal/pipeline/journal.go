package pipeline

import (
	"context"
	"time"

	"git.home.luguber.info/inful/linklocal/internal/history"
)

// Journal persists runs and attempts. *history.SQLiteStore implements it.
type Journal interface {
	StartRun(ctx context.Context, id, scope string, startedAt time.Time) error
	RecordAttempt(ctx context.Context, a history.Attempt) error
	FinishRun(ctx context.Context, id string, sum history.Summary, finishedAt time.Time) error
}

type nopJournal struct{}

func (nopJournal) StartRun(context.Context, string, string, time.Time) error { return nil }
func (nopJournal) RecordAttempt(context.Context, history.Attempt) error      { return nil }
func (nopJournal) FinishRun(context.Context, string, history.Summary, time.Time) error {
	return nil
}

func (s Stats) summary() history.Summary {
	return history.Summary{
		Documents:  s.Documents,
		Processed:  s.Processed,
		Links:      s.Links,
		Downloaded: s.Downloaded,
		Failed:     s.Failed,
		Rewritten:  s.Rewritten,
	}
}
