/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: logger.go
Description: Logging system for glitch. Provides structured logging with timestamped
files, text, JSON and custom formats, an async queue for hot paths and helpers for
scan, corruption, artifact and sweep events.
*/

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// LogLevel represents the logging level
type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warn"
	LogLevelError   LogLevel = "error"
	LogLevelFatal   LogLevel = "fatal"
)

// LogFormat represents the logging format
type LogFormat string

const (
	LogFormatJSON   LogFormat = "json"
	LogFormatText   LogFormat = "text"
	LogFormatCustom LogFormat = "custom"
)

// logFilePrefix names every log file glitch_<timestamp>.log
const logFilePrefix = "glitch_"

// LoggerConfig holds the configuration for the logger
type LoggerConfig struct {
	Level     LogLevel  `json:"level"`
	Format    LogFormat `json:"format"`
	OutputDir string    `json:"output_dir"` // Empty disables file output
	MaxFiles  int       `json:"max_files"`
	Timestamp bool      `json:"timestamp"`
	Caller    bool      `json:"caller"`
	Colors    bool      `json:"colors"`
	Compress  bool      `json:"compress"` // Gzip older log files on close

	Console io.Writer `json:"-"` // Defaults to stdout
}

// DefaultLoggerConfig returns the configuration used when none is given
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:     LogLevelInfo,
		Format:    LogFormatCustom,
		OutputDir: "./logs",
		MaxFiles:  10,
		Timestamp: true,
		Caller:    false,
		Colors:    true,
	}
}

// Validate checks the LoggerConfig for invalid or missing values.
func (c *LoggerConfig) Validate() error {
	if c.OutputDir != "" && c.MaxFiles <= 0 {
		return fmt.Errorf("max_files must be positive")
	}
	switch c.Format {
	case LogFormatJSON, LogFormatText, LogFormatCustom:
		// ok
	default:
		return fmt.Errorf("unsupported log format: %s", c.Format)
	}
	switch c.Level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError, LogLevelFatal:
		// ok
	default:
		return fmt.Errorf("unsupported log level: %s", c.Level)
	}
	return nil
}

type logEntry struct {
	level  logrus.Level
	msg    string
	fields logrus.Fields
}

// Logger wraps logrus with file output and an async queue
type Logger struct {
	config     *LoggerConfig
	logger     *logrus.Logger
	console    io.Writer
	fileHandle *os.File
	filePath   string
	startTime  time.Time

	logQueue chan logEntry
	done     chan struct{}
	mu       sync.RWMutex
	closed   bool
}

// NewLogger creates a new logger instance
func NewLogger(config *LoggerConfig) (*Logger, error) {
	if config == nil {
		config = DefaultLoggerConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	l := &Logger{
		config:    config,
		logger:    logrus.New(),
		startTime: time.Now(),
		logQueue:  make(chan logEntry, 1024),
		done:      make(chan struct{}),
	}

	if err := l.setup(); err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}

	go l.runLogQueue()

	return l, nil
}

// setup configures the logger with the given configuration
func (l *Logger) setup() error {
	level, err := logrus.ParseLevel(string(l.config.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.logger.SetLevel(level)
	l.logger.SetReportCaller(l.config.Caller)

	if err := l.setFormatter(); err != nil {
		return err
	}

	console := l.config.Console
	if console == nil {
		console = os.Stdout
	}
	l.console = console
	l.logger.SetOutput(console)

	return l.setupFileOutput(console)
}

// setFormatter configures the log formatter
func (l *Logger) setFormatter() error {
	switch l.config.Format {
	case LogFormatJSON:
		l.logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
			CallerPrettyfier: func(f *runtime.Frame) (string, string) {
				filename := filepath.Base(f.File)
				return "", fmt.Sprintf("%s:%d", filename, f.Line)
			},
		})

	case LogFormatText:
		l.logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   l.config.Timestamp,
			TimestampFormat: time.RFC3339,
			ForceColors:     l.config.Colors,
			DisableColors:   !l.config.Colors,
			CallerPrettyfier: func(f *runtime.Frame) (string, string) {
				filename := filepath.Base(f.File)
				return "", fmt.Sprintf("%s:%d", filename, f.Line)
			},
		})

	case LogFormatCustom:
		l.logger.SetFormatter(&GlitchFormatter{
			CustomFormatter: CustomFormatter{
				Timestamp: l.config.Timestamp,
				Caller:    l.config.Caller,
				Colors:    l.config.Colors,
			},
		})

	default:
		return fmt.Errorf("unsupported log format: %s", l.config.Format)
	}

	return nil
}

// setupFileOutput tees the console into a timestamped log file
func (l *Logger) setupFileOutput(console io.Writer) error {
	if l.config.OutputDir == "" {
		return nil
	}

	if err := os.MkdirAll(l.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05.000000")
	filename := fmt.Sprintf("%s%s.log", logFilePrefix, timestamp)
	path := filepath.Join(l.config.OutputDir, filename)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	l.fileHandle = file
	l.filePath = path
	l.logger.SetOutput(io.MultiWriter(console, file))

	l.logger.WithFields(logrus.Fields{
		"start_time": l.startTime.Format(time.RFC3339),
		"log_file":   path,
		"level":      l.config.Level,
		"format":     l.config.Format,
	}).Debug("glitch logging system initialized")

	return nil
}

// runLogQueue flushes queued entries until the queue is closed
func (l *Logger) runLogQueue() {
	defer close(l.done)
	for entry := range l.logQueue {
		l.logger.WithFields(entry.fields).Log(entry.level, entry.msg)
	}
}

func (l *Logger) enqueue(level logrus.Level, msg string, fields map[string]interface{}) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		l.logger.WithFields(fields).Log(level, msg)
		return
	}
	l.logQueue <- logEntry{level: level, msg: msg, fields: fields}
}

func withDefaults(fields map[string]interface{}) map[string]interface{} {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	return fields
}

// LogScan logs one detected scan range
func (l *Logger) LogScan(input string, index int, start, end uint64) {
	l.logger.WithFields(logrus.Fields{
		"input":  input,
		"scan":   index,
		"start":  start,
		"end":    end,
		"length": end - start,
	}).Info("Scan range detected")
}

// LogCorruption logs the corruption applied by one strategy
func (l *Logger) LogCorruption(strategyID string, overwrites int, bytesChanged int, fields map[string]interface{}) {
	fields = withDefaults(fields)
	fields["strategy"] = strategyID
	fields["overwrites"] = overwrites
	fields["bytes_changed"] = bytesChanged

	l.logger.WithFields(fields).Debug("Scan corrupted")
}

// LogArtifact logs a written artifact
func (l *Logger) LogArtifact(strategyID string, path string, overwrites int, fields map[string]interface{}) {
	fields = withDefaults(fields)
	fields["strategy"] = strategyID
	fields["path"] = path
	fields["overwrites"] = overwrites

	l.logger.WithFields(fields).Info("Artifact written")
}

// LogProbe logs a decode probe outcome
func (l *Logger) LogProbe(path string, status string, fields map[string]interface{}) {
	fields = withDefaults(fields)
	fields["path"] = path
	fields["status"] = status

	if status == "ok" {
		l.logger.WithFields(fields).Debug("Probe decoded artifact")
		return
	}
	l.logger.WithFields(fields).Warning("Probe rejected artifact")
}

// LogSweep logs the start of a sweep over one input
func (l *Logger) LogSweep(input string, strategies int, workers int, seed int64, fields map[string]interface{}) {
	fields = withDefaults(fields)
	fields["input"] = input
	fields["strategies"] = strategies
	fields["workers"] = workers
	fields["seed"] = seed

	l.logger.WithFields(fields).Info("Sweep started")
}

// LogStats logs run totals
func (l *Logger) LogStats(inputs int64, artifacts int64, overwrites int64, probeFailures int64, fields map[string]interface{}) {
	fields = withDefaults(fields)
	fields["inputs"] = inputs
	fields["artifacts"] = artifacts
	fields["overwrites"] = overwrites
	fields["probe_failures"] = probeFailures
	fields["uptime"] = time.Since(l.startTime)

	l.logger.WithFields(fields).Info("Statistics update")
}

// Close drains the async queue, closes the log file and prunes old files
func (l *Logger) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.logQueue)
	l.mu.Unlock()

	<-l.done

	if l.fileHandle == nil {
		return nil
	}
	if err := l.fileHandle.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}

	manager := NewLogManager(l.config.OutputDir, l.config.MaxFiles, l.config.Compress)
	if err := manager.CompressLogs(l.filePath); err != nil {
		return fmt.Errorf("failed to compress log files: %w", err)
	}
	if err := manager.CleanupOldLogs(); err != nil {
		return fmt.Errorf("failed to cleanup log files: %w", err)
	}

	// The file is gone, later entries go to the console only
	l.logger.SetOutput(l.console)

	stats, err := manager.GetLogStats()
	if err != nil {
		return fmt.Errorf("failed to read log stats: %w", err)
	}
	l.logger.WithFields(logrus.Fields{
		"log_dir":      l.config.OutputDir,
		"files":        stats.TotalFiles,
		"compressed":   stats.CompressedFiles,
		"uncompressed": stats.UncompressedFiles,
		"size":         stats.TotalSize,
	}).Debug("Log files retained")

	return nil
}

// GetLogger returns the underlying logrus logger
func (l *Logger) GetLogger() *logrus.Logger {
	return l.logger
}

// FilePath returns the current log file, empty when file output is off
func (l *Logger) FilePath() string {
	return l.filePath
}

// Debug logs a debug message (async)
func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.enqueue(logrus.DebugLevel, msg, fields)
}

// Info logs an info message (async)
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.enqueue(logrus.InfoLevel, msg, fields)
}

// Warning logs a warning message (async)
func (l *Logger) Warning(msg string, fields map[string]interface{}) {
	l.enqueue(logrus.WarnLevel, msg, fields)
}

// Error logs an error message (async)
func (l *Logger) Error(msg string, fields map[string]interface{}) {
	l.enqueue(logrus.ErrorLevel, msg, fields)
}
