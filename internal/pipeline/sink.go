package pipeline

import (
	"git.home.luguber.info/inful/linklocal/internal/download"
	"git.home.luguber.info/inful/linklocal/internal/extract"
	"git.home.luguber.info/inful/linklocal/internal/replace"
)

// Stats are the aggregate counts reported at the end of a run.
type Stats struct {
	RunID      string
	Documents  int
	Processed  int
	Links      int
	Downloaded int
	Failed     int
	Rewritten  int
	// Errors counts documents that could not be read or written.
	Errors int
}

// Sink receives progress callbacks. It is informational only; nothing in the
// pipeline depends on what a sink does.
type Sink interface {
	Extracted(doc string, links []extract.Link)
	Downloaded(doc string, link extract.Link, res download.Result)
	Replaced(doc string, changes []replace.Change)
	Finished(stats Stats)
}

// NopSink ignores all callbacks.
type NopSink struct{}

func (NopSink) Extracted(string, []extract.Link)                  {}
func (NopSink) Downloaded(string, extract.Link, download.Result) {}
func (NopSink) Replaced(string, []replace.Change)                 {}
func (NopSink) Finished(Stats)                                    {}
