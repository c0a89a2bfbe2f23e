package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyDocument   = "document"
	KeyURL        = "url"
	KeyLocalPath  = "local_path"
	KeyStage      = "stage"
	KeyScope      = "scope"
	KeyLinks      = "links"
	KeyStatus     = "status"
	KeyAttempt    = "attempt"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr        { return slog.String(KeyRunID, id) }
func Document(p string) slog.Attr      { return slog.String(KeyDocument, p) }
func URL(u string) slog.Attr           { return slog.String(KeyURL, u) }
func LocalPath(p string) slog.Attr     { return slog.String(KeyLocalPath, p) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func Scope(s string) slog.Attr         { return slog.String(KeyScope, s) }
func Links(n int) slog.Attr            { return slog.Int(KeyLinks, n) }
func Status(code int) slog.Attr        { return slog.Int(KeyStatus, code) }
func Attempt(n int) slog.Attr          { return slog.Int(KeyAttempt, n) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
