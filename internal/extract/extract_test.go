package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/linklocal/internal/util/sets"
)

func newExtractor(opts Options, exts ...string) *Extractor {
	return New(sets.New(exts...), opts)
}

func TestExtract_DiagramLink(t *testing.T) {
	links := newExtractor(Options{}, ".png").Extract("See [diagram](https://x.test/d.png) here.")

	require.Len(t, links, 1)
	l := links[0]
	assert.Equal(t, "https://x.test/d.png", l.OriginalLink)
	assert.Equal(t, ".png", l.FileExtension)
	assert.Equal(t, "diagram.png", l.FileName)
	assert.False(t, l.IsMarkdownImage)
	assert.Equal(t, KindLink, l.Kind)
	assert.Equal(t, Position{Start: 4, End: 35}, l.Position)
}

func TestExtract_NoExtensionsSelected(t *testing.T) {
	links := newExtractor(Options{}).Extract("Read https://x.test/report.pdf now")
	assert.Empty(t, links)
}

func TestExtract_DedupePrefersHigherPrecedence(t *testing.T) {
	tests := []struct {
		name string
		text string
		kind Kind
	}{
		{"bare then link", "https://x.test/a.png and [pic](https://x.test/a.png)", KindLink},
		{"link then image", "[pic](https://x.test/a.png) ![alt](https://x.test/a.png)", KindImage},
		{"bare then image", "https://x.test/a.png\n![alt](https://x.test/a.png)", KindImage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			links := newExtractor(Options{}, ".png").Extract(tt.text)
			require.Len(t, links, 1)
			assert.Equal(t, tt.kind, links[0].Kind)
			assert.Equal(t, tt.kind == KindImage, links[0].IsMarkdownImage)
		})
	}
}

func TestExtract_ImagesBypassExtensionFilter(t *testing.T) {
	text := "![chart](https://x.test/render?id=1)"

	links := newExtractor(Options{}, ".pdf").Extract(text)
	require.Len(t, links, 1)
	assert.Equal(t, "", links[0].FileExtension)
	assert.Equal(t, "chart", links[0].FileName)
	assert.True(t, links[0].IsImage())

	assert.Empty(t, newExtractor(Options{ExcludeImages: true}, ".pdf").Extract(text))
}

func TestExtract_OnlyExternalLinks(t *testing.T) {
	text := "![a](local/a.png) [b](ftp://x.test/b.png) [c](mailto:c@x.test) ![d](//x.test/d.png)"
	assert.Empty(t, newExtractor(Options{}, ".png").Extract(text))
}

func TestExtract_ExtensionIgnoresQueryAndCase(t *testing.T) {
	links := newExtractor(Options{}, ".jpg").Extract("get https://x.test/Photo.JPG?w=100#top please")
	require.Len(t, links, 1)
	assert.Equal(t, "https://x.test/Photo.JPG?w=100#top", links[0].OriginalLink)
	assert.Equal(t, ".jpg", links[0].FileExtension)
	assert.Equal(t, "Photo.jpg", links[0].FileName)
	assert.Equal(t, KindBare, links[0].Kind)
}

func TestExtract_BareURLBoundaries(t *testing.T) {
	text := `a "https://x.test/q.pdf" b (https://x.test/p.pdf) c https://x.test/s.pdf. d`
	links := newExtractor(Options{}, ".pdf").Extract(text)

	var got []string
	for _, l := range links {
		got = append(got, l.OriginalLink)
	}
	assert.Equal(t, []string{"https://x.test/q.pdf", "https://x.test/p.pdf", "https://x.test/s.pdf"}, got)
}

func TestExtract_BareURLInsideLinkTitleIgnored(t *testing.T) {
	links := newExtractor(Options{}, ".pdf").Extract("[https://x.test/title.pdf](https://x.test/real.pdf)")
	require.Len(t, links, 1)
	assert.Equal(t, "https://x.test/real.pdf", links[0].OriginalLink)
}

func TestExtract_LinkTitleAndAngleBrackets(t *testing.T) {
	text := `[a](https://x.test/a.pdf "Deck") and [b](<https://x.test/b.pdf>)`
	links := newExtractor(Options{}, ".pdf").Extract(text)
	require.Len(t, links, 2)
	assert.Equal(t, "https://x.test/a.pdf", links[0].OriginalLink)
	assert.Equal(t, "https://x.test/b.pdf", links[1].OriginalLink)
}

func TestExtract_OrderIsByPositionAndStable(t *testing.T) {
	text := "https://x.test/1.pdf [two](https://x.test/2.pdf) ![three](https://x.test/3.png)"
	ex := newExtractor(Options{}, ".pdf")
	first := ex.Extract(text)
	require.Len(t, first, 3)
	assert.Equal(t, "https://x.test/1.pdf", first[0].OriginalLink)
	assert.Equal(t, "https://x.test/2.pdf", first[1].OriginalLink)
	assert.Equal(t, "https://x.test/3.png", first[2].OriginalLink)
	assert.Equal(t, first, ex.Extract(text))
}

func TestExtract_SkipCode(t *testing.T) {
	text := "" +
		"`https://x.test/inline.pdf`\n" +
		"\n" +
		"```\n" +
		"![x](https://x.test/fenced.png)\n" +
		"```\n" +
		"\n" +
		"[real](https://x.test/real.pdf)\n"

	all := newExtractor(Options{}, ".pdf").Extract(text)
	assert.Len(t, all, 3)

	links := newExtractor(Options{SkipCode: true}, ".pdf").Extract(text)
	require.Len(t, links, 1)
	assert.Equal(t, "https://x.test/real.pdf", links[0].OriginalLink)
}

func TestExtract_HTMLImages(t *testing.T) {
	text := `<p><img alt="Logo" src="https://x.test/logo.svg"></p> and https://x.test/logo.svg`

	assert.Len(t, newExtractor(Options{}, ".svg").Extract(text), 1)

	links := newExtractor(Options{HTMLImages: true}).Extract(text)
	require.Len(t, links, 1)
	assert.Equal(t, KindHTMLImage, links[0].Kind)
	assert.Equal(t, "Logo.svg", links[0].FileName)
	assert.False(t, links[0].IsMarkdownImage)
	assert.True(t, links[0].IsImage())
}

func TestExtract_NeverPanics(t *testing.T) {
	inputs := []string{
		"",
		"![](https://x.test/%zz.png)",
		"[x](https://%41:80:90/a.png)",
		"https://",
		"https://x.test/a.",
		"![broken](http://[::1/a.png)",
		"[a](b",
		"<img src=",
		"<img src='https://x.test/a.png'",
		"\x00https://x.test/\xff.png",
	}
	ex := newExtractor(Options{SkipCode: true, HTMLImages: true}, ".png")
	for _, in := range inputs {
		assert.NotPanics(t, func() { ex.Extract(in) }, in)
	}
}

func TestExtract_InvalidPercentEncodingDegrades(t *testing.T) {
	links := newExtractor(Options{}, ".png").Extract("![](https://x.test/%zz.png)")
	require.Len(t, links, 1)
	assert.Equal(t, ".png", links[0].FileExtension)
	assert.Equal(t, "zz.png", links[0].FileName)
}

func TestQualify(t *testing.T) {
	e := newExtractor(Options{}, ".pdf")

	link, ok := e.Qualify("https://x.test/paper.pdf?")
	require.True(t, ok)
	assert.Equal(t, "https://x.test/paper.pdf?", link.OriginalLink)
	assert.Equal(t, ".pdf", link.FileExtension)
	assert.Equal(t, "paper.pdf", link.FileName)
	assert.Equal(t, KindBare, link.Kind)

	_, ok = e.Qualify("https://x.test/movie.mp4")
	assert.False(t, ok)
	_, ok = e.Qualify("ftp://x.test/paper.pdf")
	assert.False(t, ok)
}
