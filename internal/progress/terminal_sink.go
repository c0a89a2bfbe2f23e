package progress

import (
	"io"
	"os"
	"strconv"

	"github.com/pterm/pterm"

	"git.home.luguber.info/inful/linklocal/internal/download"
	"git.home.luguber.info/inful/linklocal/internal/extract"
	"git.home.luguber.info/inful/linklocal/internal/pipeline"
	"git.home.luguber.info/inful/linklocal/internal/replace"
)

// TerminalSink prints human-oriented progress lines and a final stats table.
type TerminalSink struct {
	w io.Writer
}

// NewTerminalSink writes to w, or stdout when nil.
func NewTerminalSink(w io.Writer) *TerminalSink {
	if w == nil {
		w = os.Stdout
	}
	return &TerminalSink{w: w}
}

func (s *TerminalSink) Extracted(doc string, links []extract.Link) {
	if len(links) == 0 {
		pterm.Fprintln(s.w, pterm.Info.Sprintf("%s: no downloadable links", doc))
		return
	}
	pterm.Fprintln(s.w, pterm.DefaultSection.Sprintf("%s (%d links)", doc, len(links)))
}

func (s *TerminalSink) Downloaded(_ string, link extract.Link, res download.Result) {
	if res.Success {
		pterm.Fprintln(s.w, pterm.Success.Sprintf("%s -> %s", link.OriginalLink, res.LocalPath))
		return
	}
	pterm.Fprintln(s.w, pterm.Error.Sprintf("%s: %s", link.OriginalLink, res.Error))
}

func (s *TerminalSink) Replaced(doc string, changes []replace.Change) {
	if len(changes) > 0 {
		pterm.Fprintln(s.w, pterm.Info.Sprintf("%s: %d link(s) rewritten", doc, len(changes)))
	}
}

func (s *TerminalSink) Finished(stats pipeline.Stats) {
	data := pterm.TableData{
		{"Documents", "Processed", "Links", "Downloaded", "Failed", "Rewritten"},
		{
			strconv.Itoa(stats.Documents),
			strconv.Itoa(stats.Processed),
			strconv.Itoa(stats.Links),
			strconv.Itoa(stats.Downloaded),
			strconv.Itoa(stats.Failed),
			strconv.Itoa(stats.Rewritten),
		},
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Srender()
	if err != nil {
		pterm.Fprintln(s.w, pterm.Warning.Sprintf("render stats: %v", err))
		return
	}
	pterm.Fprintln(s.w, table)

	switch {
	case stats.Errors > 0:
		pterm.Fprintln(s.w, pterm.Warning.Sprintf("%d document(s) could not be read or written", stats.Errors))
	case stats.Failed > 0:
		pterm.Fprintln(s.w, pterm.Warning.Sprintf("%d download(s) failed", stats.Failed))
	}
}
