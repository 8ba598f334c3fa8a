/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: logging_test.go
Description: Tests for the logging system. Covers configuration validation, file
output, event helpers, formatter tags, queue draining and log retention.
*/

package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for the queue goroutine
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestLogger(t *testing.T, format LogFormat, dir string) (*Logger, *syncBuffer) {
	t.Helper()
	console := &syncBuffer{}
	logger, err := NewLogger(&LoggerConfig{
		Level:     LogLevelDebug,
		Format:    format,
		OutputDir: dir,
		MaxFiles:  5,
		Console:   console,
	})
	require.NoError(t, err)
	return logger, console
}

func TestLoggerConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultLoggerConfig().Validate())

	bad := DefaultLoggerConfig()
	bad.Format = "xml"
	assert.Error(t, bad.Validate())

	bad = DefaultLoggerConfig()
	bad.Level = "loud"
	assert.Error(t, bad.Validate())

	bad = DefaultLoggerConfig()
	bad.MaxFiles = 0
	assert.Error(t, bad.Validate())

	_, err := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "xml"})
	assert.Error(t, err)
}

func TestLoggerWritesFile(t *testing.T) {
	dir := t.TempDir()
	logger, console := newTestLogger(t, LogFormatText, dir)

	logger.LogSweep("photo.jpg", 144, 4, 42, nil)
	path := logger.FilePath()
	require.NoError(t, logger.Close())

	assert.True(t, strings.HasPrefix(filepath.Base(path), "glitch_"))
	assert.Equal(t, ".log", filepath.Ext(path))

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(contents), "Sweep started")
	assert.Contains(t, string(contents), "strategies=144")
	assert.Contains(t, console.String(), "Sweep started")
}

func TestCloseReportsRetainedLogs(t *testing.T) {
	dir := t.TempDir()
	logger, console := newTestLogger(t, LogFormatText, dir)
	logger.Info("before close", nil)
	require.NoError(t, logger.Close())

	out := console.String()
	assert.Contains(t, out, "Log files retained")
	assert.Contains(t, out, "files=1")

	// Entries after close reach the console without touching the closed file
	logger.Error("after close", nil)
	assert.Contains(t, console.String(), "after close")
	contents, err := os.ReadFile(logger.FilePath())
	require.NoError(t, err)
	assert.NotContains(t, string(contents), "after close")
	assert.NotContains(t, string(contents), "Log files retained")
}

func TestLoggerWithoutFile(t *testing.T) {
	logger, console := newTestLogger(t, LogFormatJSON, "")
	logger.LogScan("photo.jpg", 0, 600, 4094)
	require.NoError(t, logger.Close())

	assert.Empty(t, logger.FilePath())
	assert.Contains(t, console.String(), `"msg":"Scan range detected"`)
	assert.Contains(t, console.String(), `"length":3494`)
}

func TestAsyncQueueDrainsOnClose(t *testing.T) {
	logger, console := newTestLogger(t, LogFormatText, "")

	for i := 0; i < 200; i++ {
		logger.Info("queued message", map[string]interface{}{"i": i})
	}
	require.NoError(t, logger.Close())

	assert.Equal(t, 200, strings.Count(console.String(), "queued message"))

	// Logging after close is synchronous and does not panic
	logger.Warning("late message", nil)
	assert.Contains(t, console.String(), "late message")
	assert.NoError(t, logger.Close())
}

func TestEventHelpers(t *testing.T) {
	logger, console := newTestLogger(t, LogFormatCustom, "")

	logger.LogScan("photo.jpg", 1, 16, 32)
	logger.LogCorruption("Random_16_3_128", 16, 15, nil)
	logger.LogArtifact("Random_16_3_128", "/out/Random_16_3_128.jpg", 16, nil)
	logger.LogProbe("/out/Random_16_3_128.jpg", "error", map[string]interface{}{"error": "bad huffman code"})
	logger.LogSweep("photo.jpg", 144, 1, 7, nil)
	logger.LogStats(1, 144, 2304, 3, nil)
	require.NoError(t, logger.Close())

	out := console.String()
	for _, tag := range []string{"[SCAN]", "[CORRUPT]", "[WRITE]", "[PROBE]", "[SWEEP]", "[STATS]"} {
		assert.Contains(t, out, tag)
	}
	assert.Contains(t, out, "start=0x10")
	assert.Contains(t, out, "path=/out/Random_16_3_128.jpg")
}

func TestEventPrefix(t *testing.T) {
	tests := map[string]string{
		"Scan range detected":     "SCAN",
		"Scan state transition":   "SCAN",
		"Scan detection complete": "SCAN",
		"Scan corrupted":          "CORRUPT",
		"Artifact written":        "WRITE",
		"Manifest written":        "WRITE",
		"Gallery generated":       "WRITE",
		"Sweep complete":          "SWEEP",
		"Probe rejected artifact": "PROBE",
		"Statistics update":       "STATS",
		"something else":          "",
	}
	for message, want := range tests {
		assert.Equal(t, want, EventPrefix(message), message)
	}
}

func TestCustomFormatterSortsFields(t *testing.T) {
	formatter := &CustomFormatter{}
	entry := &logrus.Entry{
		Time:    time.Now(),
		Level:   logrus.InfoLevel,
		Message: "hello",
		Data:    logrus.Fields{"b": 2, "a": 1, "c": "x"},
	}

	out, err := formatter.Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "INFO hello a=1 b=2 c=x\n", string(out))
}

func TestLogRetention(t *testing.T) {
	dir := t.TempDir()
	old := time.Now().Add(-time.Hour)
	for i := 0; i < 4; i++ {
		path := filepath.Join(dir, "glitch_old"+string(rune('a'+i))+".log")
		require.NoError(t, os.WriteFile(path, []byte("old log line\n"), 0644))
		require.NoError(t, os.Chtimes(path, old, old.Add(time.Duration(i)*time.Minute)))
	}

	console := &syncBuffer{}
	logger, err := NewLogger(&LoggerConfig{
		Level:     LogLevelInfo,
		Format:    LogFormatText,
		OutputDir: dir,
		MaxFiles:  3,
		Compress:  true,
		Console:   console,
	})
	require.NoError(t, err)
	current := logger.FilePath()
	require.NoError(t, logger.Close())

	stats, err := NewLogManager(dir, 3, true).GetLogStats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalFiles)
	assert.Equal(t, 2, stats.CompressedFiles)
	assert.Equal(t, 1, stats.UncompressedFiles)

	_, err = os.Stat(current)
	assert.NoError(t, err)
}
