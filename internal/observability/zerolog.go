package observability

import "github.com/rs/zerolog"

// ZerologLogger adapts a zerolog.Logger to the Logger interface, matching
// the per-component child-logger convention used across the pack's services
// (logger.With().Str("component", name).Logger()).
type ZerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger wraps logger, tagging every entry with component=name.
func NewZerologLogger(logger zerolog.Logger, component string) ZerologLogger {
	return ZerologLogger{logger: logger.With().Str("component", component).Logger()}
}

func (z ZerologLogger) Log(level Level, message string, fields ...Field) {
	event := z.eventFor(level)
	for _, f := range fields {
		event = event.Interface(f.Key, f.Value)
	}
	event.Msg(message)
}

func (z ZerologLogger) eventFor(level Level) *zerolog.Event {
	switch level {
	case LevelDebug:
		return z.logger.Debug()
	case LevelWarn:
		return z.logger.Warn()
	case LevelError:
		return z.logger.Error()
	default:
		return z.logger.Info()
	}
}
