package progress

import (
	"git.home.luguber.info/inful/linklocal/internal/download"
	"git.home.luguber.info/inful/linklocal/internal/extract"
	"git.home.luguber.info/inful/linklocal/internal/pipeline"
	"git.home.luguber.info/inful/linklocal/internal/replace"
)

// MultiSink fans callbacks out to several sinks in order.
type MultiSink []pipeline.Sink

func (m MultiSink) Extracted(doc string, links []extract.Link) {
	for _, s := range m {
		s.Extracted(doc, links)
	}
}

func (m MultiSink) Downloaded(doc string, link extract.Link, res download.Result) {
	for _, s := range m {
		s.Downloaded(doc, link, res)
	}
}

func (m MultiSink) Replaced(doc string, changes []replace.Change) {
	for _, s := range m {
		s.Replaced(doc, changes)
	}
}

func (m MultiSink) Finished(stats pipeline.Stats) {
	for _, s := range m {
		s.Finished(stats)
	}
}
