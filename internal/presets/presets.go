// Package presets holds the named extension sets a user can opt into instead of
// typing extensions by hand.
package presets

import (
	"sort"
	"strings"

	"git.home.luguber.info/inful/linklocal/internal/util/sets"
)

var catalog = map[string][]string{
	"image": {".png", ".jpg", ".jpeg", ".gif", ".bmp", ".svg", ".webp", ".tiff", ".ico", ".raw", ".heic", ".heif", ".avif", ".jfif"},

	"officeFile": {".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx", ".pdf", ".odt", ".ods", ".odp", ".rtf", ".txt", ".csv", ".epub", ".pages", ".numbers", ".key"},

	"archivePackage": {".zip", ".rar", ".7z", ".tar", ".gz", ".bz2", ".xz", ".iso", ".tgz", ".z", ".bzip2", ".cab"},

	"music": {".mp3", ".wav", ".flac", ".m4a", ".ogg", ".aac", ".wma", ".aiff", ".alac", ".mid", ".midi", ".opus", ".amr"},

	"video": {".mp4", ".avi", ".mkv", ".mov", ".wmv", ".flv", ".webm", ".m4v", ".mpg", ".mpeg", ".3gp", ".ogv", ".ts", ".vob"},

	"code": {".js", ".ts", ".jsx", ".tsx", ".html", ".css", ".scss", ".json", ".xml", ".yaml", ".yml", ".md", ".py", ".java", ".cpp", ".c", ".cs", ".php", ".rb", ".go", ".rs", ".swift"},

	"font": {".ttf", ".otf", ".woff", ".woff2", ".eot"},

	// 3D and design files
	"design": {".psd", ".ai", ".eps", ".sketch", ".fig", ".xd", ".blend", ".obj", ".fbx", ".stl", ".3ds", ".dae"},

	"database": {".sql", ".db", ".sqlite", ".mdb", ".accdb", ".csv", ".tsv"},

	"ebook": {".epub", ".mobi", ".azw", ".azw3", ".fb2", ".lit", ".djvu"},

	// Research and academic
	"academic": {".bib", ".tex", ".sty", ".cls", ".csl", ".nb", ".mat", ".r", ".rmd", ".ipynb"},
}

// Names returns the preset names in ascending order.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns a copy of the extensions of a preset.
func Lookup(name string) ([]string, bool) {
	exts, ok := catalog[name]
	if !ok {
		return nil, false
	}
	return append([]string(nil), exts...), true
}

// Known reports whether name is a preset.
func Known(name string) bool {
	_, ok := catalog[name]
	return ok
}

// Active returns the union of the extensions reachable from the enabled preset
// names plus the custom extensions, lowercased. Unknown preset names add nothing.
func Active(presetNames []string, custom []string) sets.Set[string] {
	active := sets.New[string]()
	for _, name := range presetNames {
		for _, ext := range catalog[name] {
			active.Add(ext)
		}
	}
	for _, ext := range custom {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" {
			active.Add(ext)
		}
	}
	return active
}

// IsImage reports whether ext belongs to the image preset.
func IsImage(ext string) bool {
	ext = strings.ToLower(ext)
	for _, e := range catalog["image"] {
		if e == ext {
			return true
		}
	}
	return false
}
