package logger

import (
	"log/slog"

	"portfolio_tracker/internal/app/port"
)

// slogAdapter implements port.Logger on top of a *slog.Logger.
// A nil logger delegates to the package-level global logger.
type slogAdapter struct {
	l *slog.Logger
}

// NewSlogAdapter returns a port.Logger backed by the global slog logger.
func NewSlogAdapter() port.Logger {
	return &slogAdapter{}
}

// NewSlogAdapterFor returns a port.Logger backed by l.
func NewSlogAdapterFor(l *slog.Logger) port.Logger {
	return &slogAdapter{l: l}
}

// NewNop returns a port.Logger that discards everything. Handy in tests.
func NewNop() port.Logger {
	return &slogAdapter{l: slog.New(slog.DiscardHandler)}
}

func (a *slogAdapter) logger() *slog.Logger {
	if a.l != nil {
		return a.l
	}
	ensureInitialized()
	return globalLogger
}

func (a *slogAdapter) Info(msg string, args ...any) {
	a.logger().Info(msg, args...)
}

func (a *slogAdapter) Debug(msg string, args ...any) {
	a.logger().Debug(msg, args...)
}

func (a *slogAdapter) Warn(msg string, args ...any) {
	a.logger().Warn(msg, args...)
}

func (a *slogAdapter) Error(msg string, args ...any) {
	a.logger().Error(msg, args...)
}

func (a *slogAdapter) With(args ...any) port.Logger {
	return &slogAdapter{l: a.logger().With(args...)}
}
