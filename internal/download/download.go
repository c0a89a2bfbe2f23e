// Package download fetches remote files and stores them in the vault under a
// templated path.
package download

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"git.home.luguber.info/inful/linklocal/internal/fetch"
	ferrors "git.home.luguber.info/inful/linklocal/internal/foundation/errors"
	"git.home.luguber.info/inful/linklocal/internal/pathtemplate"
	"git.home.luguber.info/inful/linklocal/internal/vault"
)

// DefaultFileNameTemplate is used when no file name template is configured.
const DefaultFileNameTemplate = "${originalName}"

const bodyPreviewLimit = 200

// Result is the outcome of one download attempt. Success implies LocalPath
// names a completely written file; failure implies LocalPath is empty.
type Result struct {
	Success   bool
	LocalPath string
	// Error is the human-readable failure reason.
	Error string
	// Err is the classified cause of a failure.
	Err        error
	StatusCode int
	Bytes      int
	Duration   time.Duration
}

// Downloader fetches links and writes them to a vault.
type Downloader struct {
	vault         vault.Vault
	fetcher       fetch.Fetcher
	storePath     string
	storeFileName string
	now           func() time.Time
}

// New returns a Downloader using the directory and file name templates.
func New(v vault.Vault, f fetch.Fetcher, storePath, storeFileName string) *Downloader {
	if storeFileName == "" {
		storeFileName = DefaultFileNameTemplate
	}
	return &Downloader{vault: v, fetcher: f, storePath: storePath, storeFileName: storeFileName, now: time.Now}
}

// DownloadFile fetches rawURL and stores it. vars holds the document
// variables; originalName and md5 are added per download. fileName is the
// extractor's display name, used for the extension. Failures are reported in
// the Result, never as a panic or error return.
func (d *Downloader) DownloadFile(ctx context.Context, vars pathtemplate.Vars, rawURL, fileName string, isImage bool) Result {
	start := d.now()
	res := d.download(ctx, vars, rawURL, fileName, isImage)
	res.Duration = d.now().Sub(start)
	return res
}

func (d *Downloader) download(ctx context.Context, vars pathtemplate.Vars, rawURL, fileName string, isImage bool) Result {
	resp, err := d.fetcher.Get(ctx, rawURL)
	if err != nil {
		return failure(fmt.Sprintf("Error downloading file: %v", err), err, 0)
	}
	if !resp.OK() {
		msg := strings.TrimSpace(fmt.Sprintf("Failed to download file: %d %s", resp.StatusCode, preview(resp.Body)))
		cause := ferrors.HTTPError(fmt.Sprintf("unexpected status %d", resp.StatusCode)).
			WithContext("url", rawURL).
			WithContext("status", resp.StatusCode).
			Build()
		return failure(msg, cause, resp.StatusCode)
	}

	ext := extensionOf(fileName)
	if isImage && (ext == "" || ext == UnknownExtension) {
		ext = imageExtension(resp.ContentType(), resp.Body)
	}

	fileVars := vars.
		With(pathtemplate.VarOriginalName, CleanOriginalName(rawURL)).
		With(pathtemplate.VarMD5, pathtemplate.MD5Hex(rawURL))
	localPath := pathtemplate.StoragePath(d.storePath, d.storeFileName, fileVars, ext)

	if dir := path.Dir(localPath); dir != "." && dir != "/" {
		if err := d.vault.MkdirAll(ctx, dir); err != nil {
			return failure(fmt.Sprintf("Error downloading file: %v", err), err, resp.StatusCode)
		}
	}
	if err := d.vault.WriteBinary(ctx, localPath, resp.Body); err != nil {
		return failure(fmt.Sprintf("Error downloading file: %v", err), err, resp.StatusCode)
	}

	return Result{Success: true, LocalPath: localPath, StatusCode: resp.StatusCode, Bytes: len(resp.Body)}
}

func failure(msg string, err error, status int) Result {
	return Result{Success: false, LocalPath: "", Error: msg, Err: err, StatusCode: status}
}

func preview(body []byte) string {
	if len(body) > bodyPreviewLimit {
		body = body[:bodyPreviewLimit]
	}
	return strings.TrimSpace(string(body))
}

// extensionOf returns the lowercase extension of name, or "".
func extensionOf(name string) string {
	dot := strings.LastIndex(name, ".")
	if dot < 0 {
		return ""
	}
	return strings.ToLower(name[dot:])
}

// CleanOriginalName returns the last path segment of rawURL. URLs without a
// usable segment get the first eight hex digits of md5(rawURL).
func CleanOriginalName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return pathtemplate.MD5Hex(rawURL)[:8]
	}
	name := u.Path[strings.LastIndex(u.Path, "/")+1:]
	if name == "" {
		return pathtemplate.MD5Hex(rawURL)[:8]
	}
	return name
}
