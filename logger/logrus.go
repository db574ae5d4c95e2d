package logger

import (
	"github.com/sirupsen/logrus"

	"github.com/ivancley/gestao-conhecimento-back/utils"
)

// LogrusLogger implements Interface using logrus
type LogrusLogger struct {
	Logger   *logrus.Logger
	LogLevel LogLevel
}

// NewLogrusLogger creates a new logger using logrus
func NewLogrusLogger(logger *logrus.Logger, config Config) Interface {
	return &LogrusLogger{
		Logger:   logger,
		LogLevel: config.LogLevel,
	}
}

// NewLogrusLoggerWithConfig creates a new logrus logger with default configuration
func NewLogrusLoggerWithConfig(config Config) Interface {
	logger := logrus.New()
	logger.SetLevel(LogrusLevel(config.LogLevel))
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return NewLogrusLogger(logger, config)
}

// LogrusLevel converts LogLevel to logrus.Level
func LogrusLevel(level LogLevel) logrus.Level {
	switch level {
	case Silent:
		return logrus.PanicLevel
	case Error:
		return logrus.ErrorLevel
	case Warn:
		return logrus.WarnLevel
	case Info:
		return logrus.InfoLevel
	default:
		return logrus.DebugLevel
	}
}

// LogMode sets the log level
func (l *LogrusLogger) LogMode(level LogLevel) Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

// Debug logs debug messages
func (l *LogrusLogger) Debug(msg string, data ...interface{}) {
	if l.LogLevel >= Debug {
		l.Logger.WithField("file", utils.FileWithLineNum()).Debugf(msg, data...)
	}
}

// Info logs info messages
func (l *LogrusLogger) Info(msg string, data ...interface{}) {
	if l.LogLevel >= Info {
		l.Logger.WithField("file", utils.FileWithLineNum()).Infof(msg, data...)
	}
}

// Warn logs warning messages
func (l *LogrusLogger) Warn(msg string, data ...interface{}) {
	if l.LogLevel >= Warn {
		l.Logger.WithField("file", utils.FileWithLineNum()).Warnf(msg, data...)
	}
}

// Error logs error messages
func (l *LogrusLogger) Error(msg string, data ...interface{}) {
	if l.LogLevel >= Error {
		l.Logger.WithField("file", utils.FileWithLineNum()).Errorf(msg, data...)
	}
}
