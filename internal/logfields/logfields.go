package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyStage      = "stage"
	KeyPath       = "path"
	KeyEntry      = "entry"
	KeyTarget     = "target"
	KeyTheme      = "theme"
	KeyWorkspace  = "workspace"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyBuildID    = "build_id"
	KeyURL        = "url"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Entry(target string) slog.Attr   { return slog.String(KeyEntry, target) }
func Target(p string) slog.Attr       { return slog.String(KeyTarget, p) }
func Theme(name string) slog.Attr     { return slog.String(KeyTheme, name) }
func Workspace(p string) slog.Attr    { return slog.String(KeyWorkspace, p) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
