// Package markdown provides the small amount of Markdown structure the
// extractor and replacer need: where code lives and byte-range editing.
package markdown

import (
	"sort"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Range is a half-open byte range [Start, End) into a document.
type Range struct {
	Start int
	End   int
}

// Ranges is a sorted, non-overlapping list of ranges.
type Ranges []Range

// Contains reports whether pos falls inside any range.
func (r Ranges) Contains(pos int) bool {
	i := sort.Search(len(r), func(i int) bool { return r[i].End > pos })
	return i < len(r) && r[i].Start <= pos
}

// CodeRanges returns the byte ranges of fenced code blocks, indented code
// blocks and inline code spans in body.
func CodeRanges(body []byte) Ranges {
	root := goldmark.New().Parser().Parse(text.NewReader(body))

	var out []Range
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.FencedCodeBlock:
			r, ok := linesRange(node.Lines())
			if node.Info != nil {
				info := node.Info.Segment
				if !ok {
					r, ok = Range{Start: info.Start, End: info.Stop}, true
				} else if info.Start < r.Start {
					r.Start = info.Start
				}
			}
			if ok {
				out = append(out, r)
			}
			return gmast.WalkSkipChildren, nil
		case *gmast.CodeBlock:
			if r, ok := linesRange(node.Lines()); ok {
				out = append(out, r)
			}
			return gmast.WalkSkipChildren, nil
		case *gmast.CodeSpan:
			if r, ok := childTextRange(node); ok {
				out = append(out, r)
			}
			return gmast.WalkSkipChildren, nil
		}
		return gmast.WalkContinue, nil
	})
	return NewRanges(out)
}

func linesRange(lines *text.Segments) (Range, bool) {
	if lines == nil || lines.Len() == 0 {
		return Range{}, false
	}
	first, last := lines.At(0), lines.At(lines.Len()-1)
	return Range{Start: first.Start, End: last.Stop}, true
}

func childTextRange(n gmast.Node) (Range, bool) {
	r := Range{Start: -1}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		t, ok := c.(*gmast.Text)
		if !ok {
			continue
		}
		if r.Start < 0 || t.Segment.Start < r.Start {
			r.Start = t.Segment.Start
		}
		if t.Segment.Stop > r.End {
			r.End = t.Segment.Stop
		}
	}
	return r, r.Start >= 0 && r.End > r.Start
}

// NewRanges sorts in and merges overlapping or touching ranges.
func NewRanges(in []Range) Ranges {
	if len(in) == 0 {
		return nil
	}
	in = append([]Range(nil), in...)
	sort.Slice(in, func(i, j int) bool { return in[i].Start < in[j].Start })
	out := Ranges{in[0]}
	for _, r := range in[1:] {
		last := &out[len(out)-1]
		if r.Start <= last.End {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		out = append(out, r)
	}
	return out
}
