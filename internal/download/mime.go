package download

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// UnknownExtension marks a file whose type could not be determined.
const UnknownExtension = ".unknown"

var mimeToExt = map[string]string{
	"image/jpeg":      ".jpg",
	"image/jpg":       ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"image/svg+xml":   ".svg",
	"image/bmp":       ".bmp",
	"image/tiff":      ".tiff",
	"application/pdf": ".pdf",
	"video/mp4":       ".mp4",
	"video/webm":      ".webm",
	"audio/mpeg":      ".mp3",
	"audio/wav":       ".wav",
	"audio/webm":      ".weba",
}

// ExtensionForContentType maps a Content-Type header value to an extension.
// Parameters are ignored. Unmapped types return UnknownExtension.
func ExtensionForContentType(contentType string) string {
	base := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	if ext, ok := mimeToExt[base]; ok {
		return ext
	}
	return UnknownExtension
}

// sniffExtension inspects body when the server sent no usable type.
func sniffExtension(body []byte) string {
	detected := mimetype.Detect(body)
	for m := detected; m != nil; m = m.Parent() {
		if ext, ok := mimeToExt[m.String()]; ok {
			return ext
		}
	}
	if strings.HasPrefix(detected.String(), "image/") && detected.Extension() != "" {
		return detected.Extension()
	}
	return UnknownExtension
}

// imageExtension resolves the extension of an image download whose name
// carried none.
func imageExtension(contentType string, body []byte) string {
	base := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	if base == "" || base == "application/octet-stream" {
		return sniffExtension(body)
	}
	return ExtensionForContentType(contentType)
}
