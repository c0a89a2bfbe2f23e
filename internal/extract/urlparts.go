package extract

import (
	"net/url"
	"regexp"
	"strings"
)

var nameRunRe = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// lastSegment returns the final path segment of raw with any query or
// fragment removed. Parse failures degrade to plain string handling.
func lastSegment(raw string) string {
	if u, err := url.Parse(raw); err == nil {
		p := u.Path
		if p == "" && u.Opaque != "" {
			p = u.Opaque
		}
		return p[strings.LastIndex(p, "/")+1:]
	}
	s := raw
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	return s[strings.LastIndex(s, "/")+1:]
}

// Extension returns the lowercase extension of the URL's last path segment
// including the leading dot, or "" when there is none.
func Extension(raw string) string {
	seg := lastSegment(raw)
	dot := strings.LastIndex(seg, ".")
	if dot < 0 || dot == len(seg)-1 {
		return ""
	}
	return strings.ToLower(seg[dot:])
}

// IsExternal reports whether raw is an http or https URL.
func IsExternal(raw string) bool {
	if u, err := url.Parse(raw); err == nil {
		scheme := strings.ToLower(u.Scheme)
		return (scheme == "http" || scheme == "https") && u.Host != ""
	}
	lower := strings.ToLower(raw)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// CleanName reduces base to [A-Za-z0-9_-] (runs of anything else become a
// single underscore, outer underscores trimmed) and appends ext. An empty
// result becomes "untitled".
func CleanName(base, ext string) string {
	if ext != "" && strings.HasSuffix(strings.ToLower(base), ext) {
		base = base[:len(base)-len(ext)]
	}
	clean := strings.Trim(nameRunRe.ReplaceAllString(base, "_"), "_")
	if clean == "" {
		clean = "untitled"
	}
	return clean + ext
}

// FileName derives the display name for a link from its title, falling back
// to the URL's last path segment.
func FileName(title, raw string) string {
	ext := Extension(raw)
	if strings.TrimSpace(title) != "" {
		return CleanName(title, ext)
	}
	return CleanName(lastSegment(raw), ext)
}
