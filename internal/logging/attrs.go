package logging

import (
	"log/slog"
	"path/filepath"
	"strings"
	"time"
)

// Structured keys shared by every byebye component. Log readers and the
// `byebye logs --grep` filter depend on these names staying stable.
const (
	FieldComponent     = "component"
	FieldItemID        = "item_id"
	FieldSKU           = "sku"
	FieldReleaseID     = "release_id"
	FieldBatchID       = "batch_id"
	FieldCorrelationID = "correlation_id"
	// FieldEventType classifies a line for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint carries the operator's next step.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
	FieldAlert  = "alert"
	FieldError  = "error"
)

// One file per local day: byebye-YYYYMMDD.log.
const (
	logFilePrefix = "byebye-"
	logFileSuffix = ".log"
	logFileDate   = "20060102"
)

// LogFilePath returns the dated log file for day.
func LogFilePath(dir string, day time.Time) string {
	return filepath.Join(dir, logFilePrefix+day.Format(logFileDate)+logFileSuffix)
}

// LogFilePattern is the glob matching every dated log file in dir.
func LogFilePattern(dir string) string {
	return filepath.Join(dir, logFilePrefix+"*"+logFileSuffix)
}

// LogFileDay parses the day out of a dated log file name.
func LogFileDay(name string) (time.Time, bool) {
	stamp, ok := strings.CutPrefix(filepath.Base(name), logFilePrefix)
	if !ok {
		return time.Time{}, false
	}
	stamp, ok = strings.CutSuffix(stamp, logFileSuffix)
	if !ok {
		return time.Time{}, false
	}
	day, err := time.ParseInLocation(logFileDate, stamp, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

type Attr = slog.Attr

var (
	Any      = slog.Any
	Bool     = slog.Bool
	Duration = slog.Duration
	Int      = slog.Int
	Int64    = slog.Int64
	String   = slog.String
)

func Alert(value string) Attr { return slog.String(FieldAlert, value) }

// Error keeps the key present for nil errors so warning lines stay uniform.
func Error(err error) Attr {
	if err == nil {
		return slog.String(FieldError, "<nil>")
	}
	return slog.Any(FieldError, err)
}

func Args(attrs ...Attr) []any {
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}
	return args
}

func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// NewComponentLogger tags logger with a component name. A nil logger yields
// a no-op base.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

func HasAttrKey(attrs []Attr, key string) bool {
	for _, a := range attrs {
		if a.Key == key {
			return true
		}
	}
	return false
}

func withDefault(attrs []Attr, key, value string) []Attr {
	if HasAttrKey(attrs, key) {
		return attrs
	}
	return append(attrs, String(key, value))
}

// WarnWithContext logs a warning that always carries event_type, error_hint
// and impact, filling generic values for whichever the caller left out.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	attrs = withDefault(attrs, FieldEventType, eventType)
	attrs = withDefault(attrs, FieldErrorHint, "check logs for details")
	attrs = withDefault(attrs, FieldImpact, "operation completed with warnings")
	logger.Warn(msg, Args(attrs...)...)
}

// ErrorWithContext is WarnWithContext at error level, without the impact default.
func ErrorWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	attrs = withDefault(attrs, FieldEventType, eventType)
	attrs = withDefault(attrs, FieldErrorHint, "check logs for details")
	logger.Error(msg, Args(attrs...)...)
}
