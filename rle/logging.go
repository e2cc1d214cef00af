package rle

// Logger is the injectable diagnostics sink the Design Notes call for
// ("route human-readable diagnostics through an injectable logging
// trait rather than global writes"). *zap.SugaredLogger satisfies this
// interface directly, so callers can pass the same logger the rest of
// the teacher's stack uses (internal/logging.New).
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}
