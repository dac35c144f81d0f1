package distances

import (
	"io"
	"log/slog"
	"math"
	"os"
)

// Logger wraps slog.Logger with consistent field names for index and
// query events.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses a text handler to stderr at info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)}))}
}

// WithK adds a k (neighbor count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{Logger: l.Logger.With("k", k)}
}

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{Logger: l.Logger.With("dimension", dim)}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{Logger: l.Logger.With("count", count)}
}

// LogOpen logs an index construction.
func (l *Logger) LogOpen(tree TreeKind, searchPoints, open int, err error) {
	if err != nil {
		l.Error("index open failed",
			"tree", tree,
			"search_points", searchPoints,
			"error", err,
		)
		return
	}
	l.Debug("index opened",
		"tree", tree,
		"search_points", searchPoints,
		"open_indices", open,
	)
}

// LogClose logs an index release.
func (l *Logger) LogClose(open int, err error) {
	if err != nil {
		l.Warn("index close reported an error",
			"open_indices", open,
			"error", err,
		)
		return
	}
	l.Debug("index closed",
		"open_indices", open,
	)
}

// LogSearch logs a k-NN query batch. radius is 0 for unbounded searches.
// Scope the logger with WithK first.
func (l *Logger) LogSearch(queries, ok int, radius float64, err error) {
	if err != nil {
		l.Error("search failed",
			"queries", queries,
			"error", err,
		)
		return
	}
	if ok < queries {
		l.Debug("search completed with rejected queries",
			"radius", radius,
			"queries", queries,
			"ok", ok,
			"rejected", queries-ok,
		)
		return
	}
	l.Debug("search completed",
		"radius", radius,
		"queries", queries,
	)
}

// LogScan logs a farthest-point scan. Scope the logger with WithCount to
// record the number of queries.
func (l *Logger) LogScan(searchPoints int, err error) {
	if err != nil {
		l.Error("farthest scan failed",
			"search_points", searchPoints,
			"error", err,
		)
		return
	}
	l.Debug("farthest scan completed",
		"search_points", searchPoints,
	)
}
