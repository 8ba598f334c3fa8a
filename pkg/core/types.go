/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: types.go
Description: Core types for glitch runs. Defines per-artifact results, the run report
handed to reporting, and sweep statistics updated concurrently by strategy jobs.
*/

package core

import (
	"sync/atomic"
	"time"

	"github.com/prayerslayer/glitch/pkg/analysis"
	"github.com/prayerslayer/glitch/pkg/jpeg"
	"github.com/prayerslayer/glitch/pkg/strategies"
)

// RunResult describes one corrupted artifact
type RunResult struct {
	StrategyID   string                `json:"strategy_id"`
	Strategy     strategies.Strategy   `json:"strategy"`
	TestCaseID   string                `json:"test_case_id"`
	Path         string                `json:"path"`
	Seed         int64                 `json:"seed"`
	Overwrites   int                   `json:"overwrites"`
	BytesChanged int                   `json:"bytes_changed"`
	Probe        *analysis.ProbeResult `json:"probe,omitempty"`
	Duration     time.Duration         `json:"duration"`
}

// RunReport summarizes one input processed by the whole sweep
type RunReport struct {
	RunID     string           `json:"run_id"`
	Input     string           `json:"input"`
	InputSize int              `json:"input_size"`
	OutputDir string           `json:"output_dir"`
	Seed      int64            `json:"seed"`
	Ranges    []jpeg.ScanRange `json:"ranges"`
	Results   []RunResult      `json:"results"` // In sweep order
	StartedAt time.Time        `json:"started_at"`
	Duration  time.Duration    `json:"duration"`
}

// TotalOverwrites sums overwrites across all results
func (r *RunReport) TotalOverwrites() int {
	total := 0
	for _, res := range r.Results {
		total += res.Overwrites
	}
	return total
}

// SweepStats tracks overall run statistics
// Uses atomic operations for thread-safe updates
type SweepStats struct {
	Inputs        int64     `json:"inputs"`         // Inputs processed
	Artifacts     int64     `json:"artifacts"`      // Artifacts written
	Overwrites    int64     `json:"overwrites"`     // Bytes overwritten across artifacts
	BytesChanged  int64     `json:"bytes_changed"`  // Bytes that actually differ from the input
	ScanRanges    int64     `json:"scan_ranges"`    // Scan ranges detected
	ProbeFailures int64     `json:"probe_failures"` // Artifacts a decoder rejected
	Disagreements int64     `json:"disagreements"`  // Artifacts the decoders split on
	StartTime     time.Time `json:"start_time"`
}

// IncrementInputs atomically increments the input counter
func (s *SweepStats) IncrementInputs() {
	atomic.AddInt64(&s.Inputs, 1)
}

// AddRanges atomically adds detected scan ranges
func (s *SweepStats) AddRanges(n int) {
	atomic.AddInt64(&s.ScanRanges, int64(n))
}

// RecordArtifact atomically folds one artifact into the totals
func (s *SweepStats) RecordArtifact(result *RunResult) {
	atomic.AddInt64(&s.Artifacts, 1)
	atomic.AddInt64(&s.Overwrites, int64(result.Overwrites))
	atomic.AddInt64(&s.BytesChanged, int64(result.BytesChanged))
	if result.Probe != nil {
		if !result.Probe.OK() {
			atomic.AddInt64(&s.ProbeFailures, 1)
		}
		if !result.Probe.Agree {
			atomic.AddInt64(&s.Disagreements, 1)
		}
	}
}

// Snapshot returns a consistent copy of the counters
func (s *SweepStats) Snapshot() SweepStats {
	return SweepStats{
		Inputs:        atomic.LoadInt64(&s.Inputs),
		Artifacts:     atomic.LoadInt64(&s.Artifacts),
		Overwrites:    atomic.LoadInt64(&s.Overwrites),
		BytesChanged:  atomic.LoadInt64(&s.BytesChanged),
		ScanRanges:    atomic.LoadInt64(&s.ScanRanges),
		ProbeFailures: atomic.LoadInt64(&s.ProbeFailures),
		Disagreements: atomic.LoadInt64(&s.Disagreements),
		StartTime:     s.StartTime,
	}
}
