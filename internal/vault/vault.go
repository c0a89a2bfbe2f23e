// Package vault is the storage capability the pipeline reads documents from
// and writes attachments to. Every path is slash-separated and relative to
// the vault root.
package vault

import (
	"context"
	"path"
	"strings"

	ferrors "git.home.luguber.info/inful/linklocal/internal/foundation/errors"
)

// Vault reads and writes documents and attachments.
type Vault interface {
	// Read returns the full text of a document.
	Read(ctx context.Context, p string) (string, error)
	// Write overwrites a document with content.
	Write(ctx context.Context, p string, content string) error
	// MkdirAll creates dir and its parents. Existing directories are not an error.
	MkdirAll(ctx context.Context, dir string) error
	// WriteBinary stores data at p, replacing any existing file.
	WriteBinary(ctx context.Context, p string, data []byte) error
}

// Lister enumerates markdown documents. Both vault implementations provide it.
type Lister interface {
	// ListMarkdown returns the .md documents under dir, sorted. Hidden
	// directories are skipped. When recursive is false only direct children
	// are returned.
	ListMarkdown(ctx context.Context, dir string, recursive bool) ([]string, error)
}

// Clean normalizes p to a slash-separated path relative to the vault root.
// Absolute paths and paths escaping the root are rejected.
func Clean(p string) (string, error) {
	p = strings.ReplaceAll(p, "\\", "/")
	if strings.HasPrefix(p, "/") {
		return "", ferrors.FileSystemError("path must be relative to the vault").WithContext("path", p).Build()
	}
	c := path.Clean(p)
	if c == ".." || strings.HasPrefix(c, "../") {
		return "", ferrors.FileSystemError("path escapes the vault").WithContext("path", p).Build()
	}
	return c, nil
}

// IsMarkdown reports whether p names a markdown document.
func IsMarkdown(p string) bool {
	return strings.EqualFold(path.Ext(p), ".md")
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
