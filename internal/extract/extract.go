// Package extract finds downloadable remote links in markdown text.
package extract

import (
	"regexp"
	"sort"
	"strings"

	"git.home.luguber.info/inful/linklocal/internal/markdown"
	"git.home.luguber.info/inful/linklocal/internal/util/sets"
)

// Kind is the syntactic shape a link was found in.
type Kind string

const (
	KindImage     Kind = "image"
	KindHTMLImage Kind = "html_image"
	KindLink      Kind = "link"
	KindBare      Kind = "bare"
)

// Position is the byte span of the match in the scanned text.
type Position struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Link is one candidate for download. It is built per scan and never mutated.
type Link struct {
	// OriginalLink is the URL text exactly as it appears in the document.
	OriginalLink    string   `json:"original_link"`
	FileExtension   string   `json:"file_extension"`
	FileName        string   `json:"file_name"`
	Position        Position `json:"position"`
	IsMarkdownImage bool     `json:"is_markdown_image"`
	Kind            Kind     `json:"kind"`
}

// IsImage reports whether the link was written with image syntax.
func (l Link) IsImage() bool {
	return l.Kind == KindImage || l.Kind == KindHTMLImage
}

// Options tunes which shapes are scanned and how images are treated.
type Options struct {
	ExcludeImages bool
	SkipCode      bool
	HTMLImages    bool
}

var (
	mdImageRe = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)
	// mdLinkRe also matches image syntax; matches preceded by '!' are dropped.
	mdLinkRe = regexp.MustCompile(`\[([^\]]*)\]\(([^)]+)\)`)
	bareRe   = regexp.MustCompile("https?://[^\\s<>)\\]\"'`]+")
)

// Extractor scans text for links eligible for download.
type Extractor struct {
	extensions sets.Set[string]
	opts       Options
}

// New returns an Extractor accepting the given lowercase extensions.
func New(extensions sets.Set[string], opts Options) *Extractor {
	exts := sets.New[string]()
	for ext := range extensions {
		exts.Add(strings.ToLower(ext))
	}
	return &Extractor{extensions: exts, opts: opts}
}

type scan struct {
	e      *Extractor
	text   string
	code   markdown.Ranges
	seen   sets.Set[string]
	spans  []markdown.Range
	result []Link
}

// Extract returns the candidate links of text, one per distinct URL, ordered
// by position. A URL found in several shapes keeps the first shape in the
// order image, html image, link, bare.
func (e *Extractor) Extract(text string) []Link {
	s := &scan{e: e, text: text, seen: sets.New[string]()}
	if e.opts.SkipCode {
		s.code = markdown.CodeRanges([]byte(text))
	}

	for _, m := range mdImageRe.FindAllStringSubmatchIndex(text, -1) {
		s.spans = append(s.spans, markdown.Range{Start: m[0], End: m[1]})
		title, dest := text[m[2]:m[3]], destination(text[m[4]:m[5]])
		s.add(KindImage, title, dest, m[0], m[1])
	}

	if e.opts.HTMLImages {
		for _, tag := range htmlImages(text) {
			s.spans = append(s.spans, markdown.Range{Start: tag.start, End: tag.end})
			s.add(KindHTMLImage, tag.alt, tag.src, tag.start, tag.end)
		}
	}

	for _, m := range mdLinkRe.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > 0 && text[m[0]-1] == '!' {
			continue
		}
		s.spans = append(s.spans, markdown.Range{Start: m[0], End: m[1]})
		title, dest := text[m[2]:m[3]], destination(text[m[4]:m[5]])
		s.add(KindLink, title, dest, m[0], m[1])
	}

	wrapped := markdown.NewRanges(s.spans)
	for _, m := range bareRe.FindAllStringIndex(text, -1) {
		if wrapped.Contains(m[0]) {
			continue
		}
		raw := trimTrailingPunct(text[m[0]:m[1]])
		s.add(KindBare, "", raw, m[0], m[0]+len(raw))
	}

	sort.SliceStable(s.result, func(i, j int) bool {
		return s.result[i].Position.Start < s.result[j].Position.Start
	})
	return s.result
}

// Qualify reports whether raw, taken as a whole bare URL, is eligible for
// download and returns its link. Unlike Extract no trailing punctuation is
// trimmed, so URLs ending in '?' or '.' are kept as given.
func (e *Extractor) Qualify(raw string) (Link, bool) {
	s := &scan{e: e, seen: sets.New[string]()}
	s.add(KindBare, "", raw, 0, len(raw))
	if len(s.result) == 0 {
		return Link{}, false
	}
	return s.result[0], true
}

func (s *scan) add(kind Kind, title, raw string, start, end int) {
	if raw == "" || s.seen.Has(raw) {
		return
	}
	if s.code != nil && s.code.Contains(start) {
		return
	}
	if !IsExternal(raw) {
		return
	}
	image := kind == KindImage || kind == KindHTMLImage
	ext := Extension(raw)
	if !(image && !s.e.opts.ExcludeImages) && !s.e.extensions.Has(ext) {
		return
	}

	s.seen.Add(raw)
	s.result = append(s.result, Link{
		OriginalLink:    raw,
		FileExtension:   ext,
		FileName:        FileName(title, raw),
		Position:        Position{Start: start, End: end},
		IsMarkdownImage: kind == KindImage,
		Kind:            kind,
	})
}

// destination strips an optional title (`url "title"`) and angle brackets.
func destination(inner string) string {
	d := strings.TrimSpace(inner)
	if strings.HasPrefix(d, "<") {
		if end := strings.IndexByte(d, '>'); end > 0 {
			return d[1:end]
		}
	}
	if i := strings.IndexAny(d, " \t\n"); i >= 0 {
		d = d[:i]
	}
	return d
}

func trimTrailingPunct(raw string) string {
	return strings.TrimRight(raw, ".,;:!?")
}
