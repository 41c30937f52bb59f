package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRepo       = "repository"
	KeyPath       = "path"
	KeyPattern    = "pattern"
	KeyDialect    = "dialect"
	KeyCategory   = "category"
	KeyVersion    = "version"
	KeyConfigPath = "config_path"
	KeyReloadID   = "reload_id"
	KeyDurationMS = "duration_ms"
	KeyCount      = "count"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Repository(r string) slog.Attr   { return slog.String(KeyRepo, r) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Pattern(p string) slog.Attr      { return slog.String(KeyPattern, p) }
func Dialect(d string) slog.Attr      { return slog.String(KeyDialect, d) }
func Category(c string) slog.Attr     { return slog.String(KeyCategory, c) }
func Version(v string) slog.Attr      { return slog.String(KeyVersion, v) }
func ConfigPath(p string) slog.Attr   { return slog.String(KeyConfigPath, p) }
func ReloadID(id string) slog.Attr    { return slog.String(KeyReloadID, id) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
