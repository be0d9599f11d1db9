// Package logger is the bot's levelled logger. Every line carries a prefix
// naming the subsystem ("Engine", "Actuator", "WebServer") and goes to the
// console, to log files and, above a level, to Discord webhooks.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	LevelCritical LogLevel = iota
	LevelError
	LevelWarn
	LevelSuccess
	LevelInfo
	LevelDebug
	LevelSystem
)

// levelStyle is how one level looks on each sink.
type levelStyle struct {
	name   string
	ansi   string
	embed  int
	filter logrus.Level
}

// Critical stays on ErrorLevel so logrus never panics or exits on our behalf.
var levelStyles = [...]levelStyle{
	LevelCritical: {"CRITICAL", "\033[1;31m", 0xFF0000, logrus.ErrorLevel},
	LevelError:    {"ERROR", "\033[31m", 0xFF0000, logrus.ErrorLevel},
	LevelWarn:     {"WARN", "\033[33m", 0xFFFF00, logrus.WarnLevel},
	LevelSuccess:  {"SUCCESS", "\033[32m", 0x00FF00, logrus.InfoLevel},
	LevelInfo:     {"INFO", "\033[36m", 0x0000FF, logrus.InfoLevel},
	LevelDebug:    {"DEBUG", "\033[35m", 0x800080, logrus.DebugLevel},
	LevelSystem:   {"SYSTEM", "\033[34m", 0x808080, logrus.InfoLevel},
}

var unknownStyle = levelStyle{"UNKNOWN", colorReset, 0xFFFFFF, logrus.InfoLevel}

func (l LogLevel) style() levelStyle {
	if l < 0 || int(l) >= len(levelStyles) {
		return unknownStyle
	}
	return levelStyles[l]
}

func (l LogLevel) String() string { return l.style().name }

// Color returns the ANSI color code for console output
func (l LogLevel) Color() string { return l.style().ansi }

// DiscordColor returns the webhook embed color
func (l LogLevel) DiscordColor() int { return l.style().embed }

func (l LogLevel) logrusLevel() logrus.Level { return l.style().filter }

const colorReset = "\033[0m"

// Field keys carried on every entry.
const (
	fieldLevel  = "pancy_level"
	fieldPrefix = "prefix"
)

// Options configures a Logger.
type Options struct {
	ErrorWebhook string
	LogsWebhook  string
	// LogsDir holds combined.log and error.log. Empty disables file output.
	LogsDir string
	// Level is a logrus level name ("debug", "info", ...). Empty means debug.
	Level string
}

// Logger is the main logging structure
type Logger struct {
	logrus *logrus.Logger
	files  *fileHook
}

// logger is the global logger instance
var (
	logger *Logger
	once   sync.Once
)

// Init initializes the global logger instance
func Init(opts Options) *Logger {
	once.Do(func() {
		logger = NewLogger(opts)
	})
	return logger
}

// Get returns the global logger instance
func Get() *Logger {
	once.Do(func() {
		logger = NewLogger(Options{})
	})
	return logger
}

// NewLogger creates a new Logger instance
func NewLogger(opts Options) *Logger {
	l := &Logger{logrus: logrus.New()}

	l.logrus.SetOutput(os.Stdout)
	l.logrus.SetFormatter(&lineFormatter{colors: true})

	level := logrus.DebugLevel
	if opts.Level != "" {
		if parsed, err := logrus.ParseLevel(opts.Level); err == nil {
			level = parsed
		} else {
			fmt.Printf("Nivel de log desconocido %q, usando debug\n", opts.Level)
		}
	}
	l.logrus.SetLevel(level)

	if opts.LogsDir != "" {
		hook, err := newFileHook(opts.LogsDir)
		if err != nil {
			fmt.Printf("Error creating log files in %s: %v\n", filepath.Clean(opts.LogsDir), err)
		} else {
			l.files = hook
			l.logrus.AddHook(hook)
		}
	}

	if opts.ErrorWebhook != "" || opts.LogsWebhook != "" {
		l.logrus.AddHook(newWebhookHook(opts.ErrorWebhook, opts.LogsWebhook))
	}

	return l
}

// log is the internal logging function
func (l *Logger) log(level LogLevel, message string, prefix string) {
	l.logrus.WithFields(logrus.Fields{
		fieldLevel:  level,
		fieldPrefix: prefix,
	}).Log(level.logrusLevel(), message)
}

// Close closes the log files
func (l *Logger) Close() {
	if l.files != nil {
		l.files.Close()
	}
}

// Critical is for failures that stop the bot or one of its subsystems.
func (l *Logger) Critical(message string, prefix string) {
	l.log(LevelCritical, message, prefix)
}

func (l *Logger) Error(message string, prefix string) {
	l.log(LevelError, message, prefix)
}

// Warn logs a warning message
func (l *Logger) Warn(message string, prefix string) {
	l.log(LevelWarn, message, prefix)
}

func (l *Logger) Success(message string, prefix string) {
	l.log(LevelSuccess, message, prefix)
}

func (l *Logger) Info(message string, prefix string) {
	l.log(LevelInfo, message, prefix)
}

func (l *Logger) Debug(message string, prefix string) {
	l.log(LevelDebug, message, prefix)
}

func (l *Logger) System(message string, prefix string) {
	l.log(LevelSystem, message, prefix)
}

// The package-level functions log through the global logger, creating a
// default one on first use.

func Critical(message string, prefix string) {
	Get().Critical(message, prefix)
}

func Error(message string, prefix string) {
	Get().Error(message, prefix)
}

// Warn logs a warning message using the global logger
func Warn(message string, prefix string) {
	Get().Warn(message, prefix)
}

func Success(message string, prefix string) {
	Get().Success(message, prefix)
}

func Info(message string, prefix string) {
	Get().Info(message, prefix)
}

func Debug(message string, prefix string) {
	Get().Debug(message, prefix)
}

func System(message string, prefix string) {
	Get().System(message, prefix)
}
