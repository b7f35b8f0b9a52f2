package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyPage       = "page"
	KeyFile       = "file"
	KeyPath       = "path"
	KeyHeading    = "heading"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyCount      = "count"
	KeyFailed     = "failed"
	KeySkipped    = "skipped"
	KeyURL        = "url"
	KeySubject    = "subject"
	KeyOp         = "op"
	KeyError      = "error"
	KeyCategory   = "category"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr      { return slog.String(KeyBuildID, id) }
func Page(name string) slog.Attr       { return slog.String(KeyPage, name) }
func File(name string) slog.Attr       { return slog.String(KeyFile, name) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Heading(text string) slog.Attr    { return slog.String(KeyHeading, text) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d)/float64(time.Millisecond))
}
func Count(n int) slog.Attr            { return slog.Int(KeyCount, n) }
func Failed(n int) slog.Attr           { return slog.Int(KeyFailed, n) }
func Skipped(n int) slog.Attr          { return slog.Int(KeySkipped, n) }
func URL(u string) slog.Attr           { return slog.String(KeyURL, u) }
func Subject(s string) slog.Attr       { return slog.String(KeySubject, s) }
func Op(op string) slog.Attr           { return slog.String(KeyOp, op) }
func Category(c string) slog.Attr      { return slog.String(KeyCategory, c) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
