package taskrt

import (
	"io"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// logifaceLogger adapts a github.com/joeycumines/logiface Logger, backed
// by the stumpy JSON encoder, to the runtime's Logger interface. This is
// the runtime's concrete structured-logging backend, wired the same way
// the source corpus wires its own pluggable logging: a small internal
// interface in front of a real third-party logging stack.
type logifaceLogger struct {
	level Level
	log   *logiface.Logger[*stumpy.Event]
}

// NewLogifaceLogger builds a Logger that writes newline-delimited JSON
// through stumpy to w, filtering out records below level.
func NewLogifaceLogger(level Level, w io.Writer) Logger {
	return &logifaceLogger{
		level: level,
		log: logiface.New[*stumpy.Event](
			stumpy.L.WithStumpy(stumpy.WithWriter(w)),
		),
	}
}

func (l *logifaceLogger) Enabled(level Level) bool {
	return level >= l.level
}

func (l *logifaceLogger) Log(level Level, msg string, fields ...Field) {
	if !l.Enabled(level) {
		return
	}
	b := l.builder(level)
	if b == nil {
		return
	}
	for _, f := range fields {
		if err, ok := f.Value.(error); ok {
			b = b.Err(err)
			continue
		}
		b = b.Any(f.Key, f.Value)
	}
	b.Log(msg)
}

func (l *logifaceLogger) builder(level Level) *logiface.Builder[*stumpy.Event] {
	switch level {
	case LevelDebug:
		return l.log.Debug()
	case LevelInfo:
		return l.log.Info()
	case LevelWarn:
		return l.log.Warning()
	case LevelError:
		return l.log.Err()
	default:
		return l.log.Info()
	}
}
