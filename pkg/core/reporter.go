/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: reporter.go
Description: Reporter interface and implementations for glitch run events. Reporters
are notified once per input with the detected scan ranges and once per written artifact.
*/

package core

import (
	"sync"

	"github.com/prayerslayer/glitch/pkg/jpeg"
	"github.com/prayerslayer/glitch/pkg/logging"
)

// Reporter defines the interface for run event hooks.
// Implementations must be safe for concurrent use; artifacts are reported
// from worker goroutines.
type Reporter interface {
	// OnScanDetected is called once per input after detection.
	OnScanDetected(input string, ranges []jpeg.ScanRange)
	// OnArtifactWritten is called after an artifact is on disk.
	OnArtifactWritten(result *RunResult)
}

// LoggerReporter logs run events through the glitch logger.
type LoggerReporter struct {
	logger *logging.Logger
}

// NewLoggerReporter creates a new LoggerReporter.
func NewLoggerReporter(logger *logging.Logger) *LoggerReporter {
	return &LoggerReporter{logger: logger}
}

// OnScanDetected logs each detected range.
func (r *LoggerReporter) OnScanDetected(input string, ranges []jpeg.ScanRange) {
	for i, sr := range ranges {
		r.logger.LogScan(input, i, sr.Start, sr.End)
	}
}

// OnArtifactWritten logs the corruption, the artifact and its decode probe.
func (r *LoggerReporter) OnArtifactWritten(result *RunResult) {
	r.logger.LogCorruption(result.StrategyID, result.Overwrites, result.BytesChanged, map[string]interface{}{
		"seed":         result.Seed,
		"test_case_id": result.TestCaseID,
	})
	r.logger.LogArtifact(result.StrategyID, result.Path, result.Overwrites, map[string]interface{}{
		"duration": result.Duration,
	})
	if result.Probe != nil {
		r.logger.LogProbe(result.Path, string(result.Probe.Status), map[string]interface{}{
			"error":    result.Probe.Error,
			"width":    result.Probe.Width,
			"height":   result.Probe.Height,
			"agree":    result.Probe.Agree,
			"decoders": result.Probe.Verdicts(),
		})
	}
}

// CollectingReporter keeps every event in memory.
type CollectingReporter struct {
	mu        sync.Mutex
	Ranges    map[string][]jpeg.ScanRange
	Artifacts []*RunResult
}

// NewCollectingReporter creates an empty CollectingReporter.
func NewCollectingReporter() *CollectingReporter {
	return &CollectingReporter{Ranges: make(map[string][]jpeg.ScanRange)}
}

// OnScanDetected records the ranges for input.
func (r *CollectingReporter) OnScanDetected(input string, ranges []jpeg.ScanRange) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Ranges[input] = append([]jpeg.ScanRange(nil), ranges...)
}

// OnArtifactWritten records the result.
func (r *CollectingReporter) OnArtifactWritten(result *RunResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Artifacts = append(r.Artifacts, result)
}

// ArtifactCount returns the number of recorded artifacts.
func (r *CollectingReporter) ArtifactCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Artifacts)
}
