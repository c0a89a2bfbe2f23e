// Package replace rewrites remote links in a document to point at their
// downloaded copies while keeping each link's syntax.
package replace

import (
	"regexp"
	"strings"

	"git.home.luguber.info/inful/linklocal/internal/extract"
	"git.home.luguber.info/inful/linklocal/internal/markdown"
)

// Map is an insertion-ordered mapping from original link to local path.
type Map struct {
	keys   []string
	values map[string]string
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{values: make(map[string]string)}
}

// Set records original → localPath. Re-setting a key keeps its position.
func (m *Map) Set(original, localPath string) {
	if _, ok := m.values[original]; !ok {
		m.keys = append(m.keys, original)
	}
	m.values[original] = localPath
}

// Get returns the local path recorded for original.
func (m *Map) Get(original string) (string, bool) {
	v, ok := m.values[original]
	return v, ok
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the original links in insertion order.
func (m *Map) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Context is the syntax an entry was rewritten in.
type Context string

const (
	ContextNone      Context = ""
	ContextImage     Context = "image"
	ContextHTMLImage Context = "html_image"
	ContextLink      Context = "link"
	ContextBare      Context = "bare"
)

// Change describes the rewrite applied for one map entry.
type Change struct {
	OriginalLink string
	Target       string
	Context      Context
	Count        int
}

// Target returns the reference written into the document for localPath: its
// final path segment.
func Target(localPath string) string {
	if i := strings.LastIndex(localPath, "/"); i >= 0 {
		return localPath[i+1:]
	}
	return localPath
}

// Options selects the syntax the replacer recognizes. It mirrors the
// extractor's options so a link is rewritten in the context it was found in.
type Options struct {
	// HTMLImages rewrites <img src> attributes.
	HTMLImages bool
	// SkipCode leaves fenced, indented and inline code untouched.
	SkipCode bool
}

// Replacer rewrites mapped links in text.
type Replacer struct {
	opts Options
}

// New returns a Replacer using opts.
func New(opts Options) *Replacer {
	return &Replacer{opts: opts}
}

// ReplaceInText rewrites every entry of m in text with default options. See Replace.
func ReplaceInText(text string, m *Map) string {
	out, _ := New(Options{}).Replace(text, m)
	return out
}

// Replace rewrites every entry of m in text with default options.
func Replace(text string, m *Map) (string, []Change) {
	return New(Options{}).Replace(text, m)
}

// Replace rewrites each entry of m, in insertion order, in the first syntax
// it is found in: image, html image (when enabled), link, then bare URL.
// Image and link rewrites keep the alt text or title; a bare URL becomes
// [name](name). Every occurrence in the chosen syntax is rewritten.
func (r *Replacer) Replace(text string, m *Map) (string, []Change) {
	var changes []Change
	if m == nil {
		return text, nil
	}
	for _, original := range m.keys {
		localPath := m.values[original]
		if original == "" || localPath == "" {
			continue
		}
		target := Target(localPath)
		var (
			ctx   Context
			count int
		)
		text, ctx, count = r.replaceOne(text, original, target)
		if count > 0 {
			changes = append(changes, Change{OriginalLink: original, Target: target, Context: ctx, Count: count})
		}
	}
	return text, changes
}

// replaceOne rewrites original in the first context that has a match outside
// code. Code ranges are recomputed per entry because earlier entries shift offsets.
func (r *Replacer) replaceOne(text, original, target string) (string, Context, int) {
	var code markdown.Ranges
	if r.opts.SkipCode {
		code = markdown.CodeRanges([]byte(text))
	}
	esc := regexp.QuoteMeta(original)
	tail := `>?((?:\s+[^)]*)?)\)`

	imageRe := regexp.MustCompile(`!\[([^\]]*)\]\(\s*<?` + esc + tail)
	var edits []markdown.Edit
	for _, mt := range imageRe.FindAllStringSubmatchIndex(text, -1) {
		if code.Contains(mt[0]) {
			continue
		}
		alt, rest := text[mt[2]:mt[3]], text[mt[4]:mt[5]]
		edits = append(edits, markdown.Edit{Start: mt[0], End: mt[1], Replacement: "![" + alt + "](" + target + rest + ")"})
	}
	if out, n := apply(text, edits); n > 0 {
		return out, ContextImage, n
	}

	if r.opts.HTMLImages {
		edits = edits[:0]
		for _, sp := range extract.ImageSources(text, original) {
			if code.Contains(sp.Start) {
				continue
			}
			edits = append(edits, markdown.Edit{Start: sp.Start, End: sp.End, Replacement: target})
		}
		if out, n := apply(text, edits); n > 0 {
			return out, ContextHTMLImage, n
		}
	}

	linkRe := regexp.MustCompile(`\[([^\]]*)\]\(\s*<?` + esc + tail)
	edits = edits[:0]
	for _, mt := range linkRe.FindAllStringSubmatchIndex(text, -1) {
		if mt[0] > 0 && text[mt[0]-1] == '!' {
			continue
		}
		if code.Contains(mt[0]) {
			continue
		}
		title, rest := text[mt[2]:mt[3]], text[mt[4]:mt[5]]
		edits = append(edits, markdown.Edit{Start: mt[0], End: mt[1], Replacement: "[" + title + "](" + target + rest + ")"})
	}
	if out, n := apply(text, edits); n > 0 {
		return out, ContextLink, n
	}

	edits = edits[:0]
	replacement := "[" + target + "](" + target + ")"
	for from := 0; from < len(text); {
		i := strings.Index(text[from:], original)
		if i < 0 {
			break
		}
		start := from + i
		end := start + len(original)
		if urlEndsAt(text, end) && !code.Contains(start) {
			edits = append(edits, markdown.Edit{Start: start, End: end, Replacement: replacement})
		}
		from = end
	}
	if out, n := apply(text, edits); n > 0 {
		return out, ContextBare, n
	}
	return text, ContextNone, 0
}

func apply(text string, edits []markdown.Edit) (string, int) {
	if len(edits) == 0 {
		return text, 0
	}
	out, err := markdown.ApplyEdits(text, edits)
	if err != nil {
		return text, 0
	}
	return out, len(edits)
}

// urlEndsAt reports whether a URL ending at end is not the prefix of a
// longer one. Sentence punctuation only ends a URL when nothing but more
// punctuation follows before whitespace, a closing character or the end.
func urlEndsAt(text string, end int) bool {
	for i := end; i < len(text); i++ {
		switch text[i] {
		case ' ', '\t', '\n', '\r', '\f', '\v', '<', '>', ')', ']', '"', '\'', '`':
			return true
		case '.', ',', ';', ':', '!', '?':
			continue
		default:
			return false
		}
	}
	return true
}
