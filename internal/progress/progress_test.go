package progress

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"

	"git.home.luguber.info/inful/linklocal/internal/download"
	"git.home.luguber.info/inful/linklocal/internal/extract"
	"git.home.luguber.info/inful/linklocal/internal/pipeline"
	"git.home.luguber.info/inful/linklocal/internal/replace"
)

var (
	okLink  = extract.Link{OriginalLink: "https://x.test/d.png", FileName: "d.png", Kind: extract.KindLink}
	badLink = extract.Link{OriginalLink: "https://x.test/gone.pdf", FileName: "gone.pdf", Kind: extract.KindBare}
)

func feed(s pipeline.Sink) {
	s.Extracted("note.md", []extract.Link{okLink, badLink})
	s.Downloaded("note.md", okLink, download.Result{Success: true, LocalPath: "assets/d.png", Duration: 3 * time.Millisecond})
	s.Downloaded("note.md", badLink, download.Result{Error: "Failed to download file: 404", StatusCode: 404})
	s.Replaced("note.md", []replace.Change{{OriginalLink: okLink.OriginalLink, Target: "d.png", Context: replace.ContextLink, Count: 1}})
	s.Finished(pipeline.Stats{RunID: "r1", Documents: 1, Processed: 1, Links: 2, Downloaded: 1, Failed: 1, Rewritten: 1})
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	feed(NewLogSink(logger))

	out := buf.String()
	assert.Contains(t, out, `msg="Extracted links" document=note.md links=2`)
	assert.Contains(t, out, "local_path=assets/d.png")
	assert.Contains(t, out, `msg="Download failed"`)
	assert.Contains(t, out, "status=404")
	assert.Contains(t, out, "run_id=r1")
	assert.Contains(t, out, "failed=1")
}

func TestTerminalSink(t *testing.T) {
	pterm.DisableStyling()
	t.Cleanup(pterm.EnableStyling)

	var buf bytes.Buffer
	feed(NewTerminalSink(&buf))

	out := buf.String()
	assert.Contains(t, out, "note.md (2 links)")
	assert.Contains(t, out, "https://x.test/d.png -> assets/d.png")
	assert.Contains(t, out, "https://x.test/gone.pdf: Failed to download file: 404")
	assert.Contains(t, out, "Downloaded")
	assert.Contains(t, out, "1 download(s) failed")
}

type countSink struct {
	pipeline.NopSink
	finished int
}

func (c *countSink) Finished(pipeline.Stats) { c.finished++ }

func TestMultiSink(t *testing.T) {
	a, b := &countSink{}, &countSink{}
	feed(MultiSink{a, b})
	assert.Equal(t, 1, a.finished)
	assert.Equal(t, 1, b.finished)
}
