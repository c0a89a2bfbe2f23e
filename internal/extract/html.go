package extract

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// imgTag is an <img> tag found in markdown text. src is the attribute value
// exactly as written.
type imgTag struct {
	start, end int
	src        string
	srcStart   int
	alt        string
}

var srcAttrRe = regexp.MustCompile(`(?i)\ssrc\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s"'>]+))`)

// htmlImages tokenizes text as HTML and returns every <img> tag with a src.
// Offsets are recovered by summing raw token lengths.
func htmlImages(text string) []imgTag {
	var tags []imgTag
	z := html.NewTokenizer(strings.NewReader(text))
	offset := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return tags
		}
		raw := string(z.Raw())
		start := offset
		offset += len(raw)

		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		name, hasAttr := z.TagName()
		if string(name) != "img" || !hasAttr {
			continue
		}
		tag := imgTag{start: start, end: offset}
		for {
			key, val, more := z.TagAttr()
			if string(key) == "alt" {
				tag.alt = string(val)
			}
			if !more {
				break
			}
		}
		m := srcAttrRe.FindStringSubmatchIndex(raw)
		if m == nil {
			continue
		}
		for g := 2; g <= 6; g += 2 {
			if m[g] >= 0 {
				tag.src = raw[m[g]:m[g+1]]
				tag.srcStart = start + m[g]
				break
			}
		}
		if tag.src != "" {
			tags = append(tags, tag)
		}
	}
}

// ImageSources returns the byte span of every <img src> value that equals src.
func ImageSources(text, src string) []Position {
	var out []Position
	for _, tag := range htmlImages(text) {
		if tag.src == src {
			out = append(out, Position{Start: tag.srcStart, End: tag.srcStart + len(tag.src)})
		}
	}
	return out
}
