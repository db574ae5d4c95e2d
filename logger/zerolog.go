package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/ivancley/gestao-conhecimento-back/utils"
)

// ZerologLogger implements Interface using zerolog
type ZerologLogger struct {
	Logger   zerolog.Logger
	LogLevel LogLevel
}

// NewZerologLogger creates a new logger using zerolog
func NewZerologLogger(logger zerolog.Logger, config Config) Interface {
	return &ZerologLogger{
		Logger:   logger,
		LogLevel: config.LogLevel,
	}
}

// NewZerologLoggerWithConfig creates a new zerolog logger with a default
// console writer when no context is supplied
func NewZerologLoggerWithConfig(config Config, output ...zerolog.Context) Interface {
	var logger zerolog.Logger

	if len(output) > 0 {
		logger = output[0].Logger()
	} else {
		consoleWriter := zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.Out = os.Stdout
			w.TimeFormat = time.RFC3339
		})
		logger = zerolog.New(consoleWriter).
			Level(ZerologLevel(config.LogLevel)).
			With().
			Timestamp().
			Logger()
	}

	return NewZerologLogger(logger, config)
}

// ZerologLevel converts LogLevel to zerolog.Level
func ZerologLevel(level LogLevel) zerolog.Level {
	switch level {
	case Silent:
		return zerolog.Disabled
	case Error:
		return zerolog.ErrorLevel
	case Warn:
		return zerolog.WarnLevel
	case Info:
		return zerolog.InfoLevel
	default:
		return zerolog.DebugLevel
	}
}

// LogMode sets the log level
func (l *ZerologLogger) LogMode(level LogLevel) Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

// Debug logs debug messages
func (l *ZerologLogger) Debug(msg string, data ...interface{}) {
	if l.LogLevel >= Debug {
		l.Logger.Debug().Str("file", utils.FileWithLineNum()).Msgf(msg, data...)
	}
}

// Info logs info messages
func (l *ZerologLogger) Info(msg string, data ...interface{}) {
	if l.LogLevel >= Info {
		l.Logger.Info().Str("file", utils.FileWithLineNum()).Msgf(msg, data...)
	}
}

// Warn logs warning messages
func (l *ZerologLogger) Warn(msg string, data ...interface{}) {
	if l.LogLevel >= Warn {
		l.Logger.Warn().Str("file", utils.FileWithLineNum()).Msgf(msg, data...)
	}
}

// Error logs error messages
func (l *ZerologLogger) Error(msg string, data ...interface{}) {
	if l.LogLevel >= Error {
		l.Logger.Error().Str("file", utils.FileWithLineNum()).Msgf(msg, data...)
	}
}
