package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the severity level of a log message
type LogLevel int

// Log levels
const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

var (
	defaultLogger *Logger
	defaultOnce   sync.Once
	nopLogger     = &Logger{sugar: zap.NewNop().Sugar(), level: zap.NewAtomicLevelAt(zapcore.FatalLevel)}
)

// Logger handles logging functionalities
type Logger struct {
	sugar     *zap.SugaredLogger
	level     zap.AtomicLevel
	file      *os.File
	useColors bool
}

// ParseLevel converts a level name to a LogLevel, defaulting to INFO
func ParseLevel(levelStr string) LogLevel {
	switch strings.ToLower(levelStr) {
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "warn":
		return WARN
	case "error":
		return ERROR
	case "fatal":
		return FATAL
	default:
		return INFO
	}
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case DEBUG:
		return zapcore.DebugLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	case FATAL:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// NewLogger creates a new logger with the specified log level writing to stdout
func NewLogger(levelStr string) *Logger {
	useColors := true
	if fileInfo, err := os.Stdout.Stat(); err != nil || (fileInfo.Mode()&os.ModeCharDevice) == 0 {
		useColors = false
	}
	l := newLogger(levelStr, os.Stdout, useColors, nil)
	defaultOnce.Do(func() { defaultLogger = l })
	return l
}

// NewWriterLogger creates a logger writing to w without colors
func NewWriterLogger(levelStr string, w io.Writer) *Logger {
	return newLogger(levelStr, w, false, nil)
}

// NewFileLogger creates a new logger that writes to a file
func NewFileLogger(levelStr, filePath string) (*Logger, error) {
	file, err := openLogFile(filePath)
	if err != nil {
		return nil, err
	}
	return newLogger(levelStr, file, false, file), nil
}

// NewMultiLogger creates a logger that writes to both console and file
func NewMultiLogger(levelStr, filePath string) (*Logger, error) {
	file, err := openLogFile(filePath)
	if err != nil {
		return nil, err
	}
	l := newLogger(levelStr, io.MultiWriter(os.Stdout, file), false, file)
	defaultOnce.Do(func() { defaultLogger = l })
	return l, nil
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return nopLogger
}

// Default returns the first console logger created by the process, or a no-op logger
func Default() *Logger {
	if defaultLogger == nil {
		return nopLogger
	}
	return defaultLogger
}

func openLogFile(filePath string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return file, nil
}

func newLogger(levelStr string, w io.Writer, useColors bool, file *os.File) *Logger {
	level := zap.NewAtomicLevelAt(ParseLevel(levelStr).zapLevel())

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05")
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if useColors {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), level)
	// one extra frame for the wrapper methods below
	z := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))

	return &Logger{
		sugar:     z.Sugar(),
		level:     level,
		file:      file,
		useColors: useColors,
	}
}

// Debug logs a debug message
func (l *Logger) Debug(v ...interface{}) { l.sugar.Debug(v...) }

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, v ...interface{}) { l.sugar.Debugf(format, v...) }

// Info logs an info message
func (l *Logger) Info(v ...interface{}) { l.sugar.Info(v...) }

// Infof logs a formatted info message
func (l *Logger) Infof(format string, v ...interface{}) { l.sugar.Infof(format, v...) }

// Warn logs a warning message
func (l *Logger) Warn(v ...interface{}) { l.sugar.Warn(v...) }

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, v ...interface{}) { l.sugar.Warnf(format, v...) }

// Error logs an error message
func (l *Logger) Error(v ...interface{}) { l.sugar.Error(v...) }

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, v ...interface{}) { l.sugar.Errorf(format, v...) }

// Fatal logs a fatal message and exits the program
func (l *Logger) Fatal(v ...interface{}) {
	l.sugar.Fatal(v...)
}

// Fatalf logs a formatted fatal message and exits the program
func (l *Logger) Fatalf(format string, v ...interface{}) {
	l.sugar.Fatalf(format, v...)
}

// With returns a child logger carrying the given key/value pairs
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{
		sugar:     l.sugar.With(keysAndValues...),
		level:     l.level,
		useColors: l.useColors,
	}
}

// SetLevel sets the log level
func (l *Logger) SetLevel(levelStr string) {
	l.level.SetLevel(ParseLevel(levelStr).zapLevel())
}

// Enabled reports whether messages at level are written
func (l *Logger) Enabled(level LogLevel) bool {
	return l.level.Enabled(level.zapLevel())
}

// Sync flushes buffered entries
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

// Close flushes and closes the logger's file if it exists
func (l *Logger) Close() {
	_ = l.sugar.Sync()
	if l.file != nil {
		_ = l.file.Sync()
		l.file.Close()
		l.file = nil
	}
}
