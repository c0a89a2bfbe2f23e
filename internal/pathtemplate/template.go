// Package pathtemplate substitutes ${name} placeholders into storage path and
// file name templates and makes the result safe for common filesystems.
package pathtemplate

import (
	"crypto/md5" // #nosec G501 -- naming digest, not a security boundary
	"encoding/hex"
	"path"
	"regexp"
	"strings"
	"time"
)

// Variable names understood by the default templates.
const (
	VarPath         = "path"
	VarNoteName     = "notename"
	VarTitle        = "title"
	VarDate         = "date"
	VarTime         = "time"
	VarDateTime     = "datetime"
	VarOriginalName = "originalName"
	VarMD5          = "md5"
)

// Vars maps placeholder names to values. A fresh set is built for every download.
type Vars map[string]string

// With returns a copy of v extended with key=value.
func (v Vars) With(key, value string) Vars {
	out := make(Vars, len(v)+1)
	for k, val := range v {
		out[k] = val
	}
	out[key] = value
	return out
}

var (
	placeholderRe = regexp.MustCompile(`\$\{([A-Za-z0-9_]+)\}`)
	unsafeRe      = regexp.MustCompile(`[\s<>:"\\|?*]`)
)

// Expand replaces every ${name} with vars[name]. Unknown placeholders stay verbatim.
func Expand(template string, vars Vars) string {
	return placeholderRe.ReplaceAllStringFunc(template, func(m string) string {
		name := m[2 : len(m)-1]
		if val, ok := vars[name]; ok {
			return val
		}
		return m
	})
}

// Sanitize replaces whitespace and the characters <>:"\|?* with underscores.
func Sanitize(s string) string {
	return unsafeRe.ReplaceAllString(s, "_")
}

// Render expands template and sanitizes the result. Sanitizing happens after
// substitution so variable values cannot reintroduce unsafe characters.
func Render(template string, vars Vars) string {
	return Sanitize(Expand(template, vars))
}

// FileName renders a file name template and makes sure the name ends with ext.
func FileName(template string, vars Vars, ext string) string {
	name := Expand(template, vars)
	if ext != "" && !strings.HasSuffix(name, ext) {
		name += ext
	}
	return Sanitize(name)
}

// Join combines a rendered directory and file name with a single slash.
func Join(dir, file string) string {
	dir = strings.TrimRight(dir, "/")
	file = strings.TrimLeft(file, "/")
	if dir == "" {
		return file
	}
	return dir + "/" + file
}

// StoragePath renders both templates and joins them.
func StoragePath(dirTemplate, fileTemplate string, vars Vars, ext string) string {
	return Join(Render(dirTemplate, vars), FileName(fileTemplate, vars, ext))
}

// MD5Hex returns the hex md5 digest of s.
func MD5Hex(s string) string {
	sum := md5.Sum([]byte(s)) // #nosec G401
	return hex.EncodeToString(sum[:])
}

// DocumentVars builds the per-document variables for a vault-relative
// document path such as "notes/a.md".
func DocumentVars(docPath string, now time.Time) Vars {
	docPath = strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(docPath, "\\", "/")), "/")
	withoutExt := strings.TrimSuffix(docPath, path.Ext(docPath))
	base := path.Base(withoutExt)
	if withoutExt == "" {
		base = ""
	}
	return Vars{
		VarPath:     withoutExt,
		VarNoteName: base,
		VarTitle:    base,
		VarDate:     now.Format("2006-01-02"),
		VarTime:     now.Format("15-04-05"),
		VarDateTime: now.Format("2006-01-02T15-04-05"),
	}
}
