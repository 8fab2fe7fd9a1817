package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPath       = "path"
	KeyTarget     = "target"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeySection    = "section"
	KeyTaxonomy   = "taxonomy"
	KeyCount      = "count"
	KeyURL        = "url"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Target(t string) slog.Attr       { return slog.String(KeyTarget, t) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Section(s string) slog.Attr      { return slog.String(KeySection, s) }
func Taxonomy(name string) slog.Attr  { return slog.String(KeyTaxonomy, name) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
