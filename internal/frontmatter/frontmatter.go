// Package frontmatter splits YAML frontmatter from markdown documents and
// keeps an existing content fingerprint current after the body is rewritten.
package frontmatter

import (
	"errors"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// Document is a markdown document split at its frontmatter delimiters.
type Document struct {
	// Raw is the frontmatter text between the delimiters, including its final newline.
	Raw     string
	Body    string
	Had     bool
	Newline string
}

// Split separates YAML frontmatter (`---` delimited) from the markdown body.
//
// If the content does not start with a delimiter, Had is false and Body is the full input.
func Split(content string) (Document, error) {
	nl := detectNewline(content)
	doc := Document{Body: content, Newline: nl}

	open := "---" + nl
	if !strings.HasPrefix(content, open) {
		return doc, nil
	}

	rest := content[len(open):]
	if after, ok := strings.CutPrefix(rest, "---"+nl); ok {
		return Document{Body: after, Had: true, Newline: nl}, nil
	}

	idx := strings.Index(rest, nl+"---"+nl)
	if idx < 0 {
		return doc, ErrMissingClosingDelimiter
	}

	return Document{
		Raw:     rest[:idx+len(nl)],
		Body:    rest[idx+len(nl)+len("---"+nl):],
		Had:     true,
		Newline: nl,
	}, nil
}

// String reassembles the document. Split followed by String is lossless.
func (d Document) String() string {
	if !d.Had {
		return d.Body
	}
	nl := d.Newline
	if nl == "" {
		nl = "\n"
	}
	var b strings.Builder
	b.Grow(len(d.Raw) + len(d.Body) + 2*len("---"+nl))
	b.WriteString("---" + nl)
	b.WriteString(d.Raw)
	b.WriteString("---" + nl)
	b.WriteString(d.Body)
	return b.String()
}

// Fields parses the frontmatter into a map. An empty block yields an empty map.
func (d Document) Fields() (map[string]any, error) {
	fields := map[string]any{}
	if strings.TrimSpace(d.Raw) == "" {
		return fields, nil
	}
	if err := yaml.Unmarshal([]byte(d.Raw), &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func detectNewline(content string) string {
	if i := strings.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
