package logger

import (
	"fmt"
	"log"
	"os"

	"github.com/ivancley/gestao-conhecimento-back/utils"
)

// Interface logger interface
type Interface interface {
	LogMode(LogLevel) Interface
	Debug(msg string, data ...interface{})
	Info(msg string, data ...interface{})
	Warn(msg string, data ...interface{})
	Error(msg string, data ...interface{})
}

// LogLevel log level
type LogLevel int

const (
	// Silent silent log level
	Silent LogLevel = iota
	// Error print errors
	Error
	// Warn print warn messages and errors
	Warn
	// Info print info, warn messages and errors
	Info
	// Debug print everything, including per-clause compile traces
	Debug
)

// Config logger config
type Config struct {
	LogLevel LogLevel
}

// Writer log writer interface
type Writer interface {
	Printf(string, ...interface{})
}

// Default default logger, writes through the standard library
var Default = New(log.New(os.Stdout, "\r\n", log.LstdFlags), Config{LogLevel: Warn})

// Discard logger will print any log to io.Discard
var Discard = New(log.New(discardWriter{}, "", 0), Config{LogLevel: Silent})

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// New initialize logger
func New(writer Writer, config Config) Interface {
	return &logger{Writer: writer, Config: config}
}

type logger struct {
	Writer
	Config
}

// LogMode log mode
func (l *logger) LogMode(level LogLevel) Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

// Debug print debug messages
func (l *logger) Debug(msg string, data ...interface{}) {
	if l.LogLevel >= Debug {
		l.Printf("[debug] %s (%s)", fmt.Sprintf(msg, data...), utils.FileWithLineNum())
	}
}

// Info print info messages
func (l *logger) Info(msg string, data ...interface{}) {
	if l.LogLevel >= Info {
		l.Printf("[info] %s (%s)", fmt.Sprintf(msg, data...), utils.FileWithLineNum())
	}
}

// Warn print warn messages
func (l *logger) Warn(msg string, data ...interface{}) {
	if l.LogLevel >= Warn {
		l.Printf("[warn] %s (%s)", fmt.Sprintf(msg, data...), utils.FileWithLineNum())
	}
}

// Error print error messages
func (l *logger) Error(msg string, data ...interface{}) {
	if l.LogLevel >= Error {
		l.Printf("[error] %s (%s)", fmt.Sprintf(msg, data...), utils.FileWithLineNum())
	}
}
