/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: engine.go
Description: Main glitch engine implementation. Reads one JPEG, detects its scan ranges
once, then runs every strategy of the sweep as an independent seeded job on a bounded
worker group, writing one corrupted artifact per strategy.
*/

package core

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prayerslayer/glitch/pkg/analysis"
	"github.com/prayerslayer/glitch/pkg/interfaces"
	"github.com/prayerslayer/glitch/pkg/jpeg"
	"github.com/prayerslayer/glitch/pkg/strategies"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Options configures an engine run
type Options struct {
	Workers   int          // Concurrent strategy jobs, <= 0 means 1
	Seed      int64        // Base seed, 0 means derive from the clock
	Detector  jpeg.Options // Scan detection behaviour
	OutputDir string       // Empty means <input>-bad
	Probe     bool         // Decode every artifact after writing
}

// Engine runs a strategy sweep over input files
type Engine struct {
	options    Options
	prober     *analysis.Prober
	strategies []strategies.Strategy
	reporters  []Reporter
	logger     *logrus.Logger
	stats      *SweepStats

	mu sync.RWMutex
}

// NewEngine creates a new engine with no strategies configured
func NewEngine(options Options) *Engine {
	if options.Workers <= 0 {
		options.Workers = 1
	}
	return &Engine{
		options: options,
		prober:  analysis.NewProber(),
		logger:  logrus.New(),
		stats: &SweepStats{
			StartTime: time.Now(),
		},
	}
}

// SetLogger sets the logger used for engine and detector output
func (e *Engine) SetLogger(logger *logrus.Logger) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.logger = logger
}

// SetStrategies replaces the sweep. Strategy ids name artifacts, so two
// strategies with the same id are rejected with ErrDuplicateStrategy.
func (e *Engine) SetStrategies(list []strategies.Strategy) error {
	seen := make(map[string]bool, len(list))
	for _, s := range list {
		if err := s.Validate(); err != nil {
			return err
		}
		id := s.ID()
		if seen[id] {
			return fmt.Errorf("%w: %s", ErrDuplicateStrategy, id)
		}
		seen[id] = true
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.strategies = append([]strategies.Strategy(nil), list...)
	return nil
}

// Strategies returns a copy of the configured sweep
func (e *Engine) Strategies() []strategies.Strategy {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]strategies.Strategy(nil), e.strategies...)
}

// SetDecoders replaces the decoders artifacts are probed with
func (e *Engine) SetDecoders(decoders ...analysis.Decoder) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.prober = analysis.NewProber(decoders...)
}

// AddReporter registers a reporter for run events
func (e *Engine) AddReporter(r Reporter) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reporters = append(e.reporters, r)
}

// GetStats returns a snapshot of the engine counters
func (e *Engine) GetStats() SweepStats {
	return e.stats.Snapshot()
}

// Run corrupts inputPath once per strategy. The first failed job cancels
// the rest and its error is returned.
func (e *Engine) Run(ctx context.Context, inputPath string) (*RunReport, error) {
	e.mu.RLock()
	strats := append([]strategies.Strategy(nil), e.strategies...)
	reporters := append([]Reporter(nil), e.reporters...)
	logger := e.logger
	prober := e.prober
	e.mu.RUnlock()

	if len(strats) == 0 {
		return nil, ErrNoStrategies
	}

	startedAt := time.Now()

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInputNotFound, err)
	}
	e.stats.IncrementInputs()

	detector := jpeg.NewDetector(e.options.Detector, logger)
	ranges := detector.Detect(data)
	e.stats.AddRanges(len(ranges))

	logger.WithFields(logrus.Fields{
		"input":  inputPath,
		"size":   len(data),
		"ranges": len(ranges),
	}).Info("Scan detection complete")

	for _, r := range reporters {
		r.OnScanDetected(inputPath, ranges)
	}

	outputDir := e.options.OutputDir
	if outputDir == "" {
		outputDir = OutputDirFor(inputPath)
	}
	writer, err := NewArtifactWriter(outputDir)
	if err != nil {
		return nil, err
	}

	seed := e.options.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	parent := &interfaces.TestCase{
		ID:        uuid.New().String(),
		Data:      data,
		CreatedAt: startedAt,
		Metadata:  map[string]interface{}{"path": inputPath},
	}

	results := make([]RunResult, len(strats))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.options.Workers)

	for i, s := range strats {
		jobSeed := seed + int64(i)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			jobStart := time.Now()

			mutator := strategies.NewScanMutator(s, detector, rand.New(rand.NewSource(jobSeed)))
			child, err := mutator.MutateRanges(parent, ranges)
			if err != nil {
				return fmt.Errorf("strategy %s: %w", s.ID(), err)
			}

			path, err := writer.Write(s.ID(), child.Data)
			if err != nil {
				return err
			}

			result := &results[i]
			*result = RunResult{
				StrategyID:   s.ID(),
				Strategy:     s,
				TestCaseID:   child.ID,
				Path:         path,
				Seed:         jobSeed,
				Overwrites:   metadataInt(child.Metadata, "overwrites"),
				BytesChanged: metadataInt(child.Metadata, "bytes_changed"),
			}
			if e.options.Probe {
				probe := prober.Decode(child.Data)
				result.Probe = &probe
			}
			result.Duration = time.Since(jobStart)

			e.stats.RecordArtifact(result)
			for _, r := range reporters {
				r.OnArtifactWritten(result)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.WithError(err).WithField("input", inputPath).Error("Sweep aborted")
		return nil, err
	}

	report := &RunReport{
		RunID:     uuid.New().String(),
		Input:     inputPath,
		InputSize: len(data),
		OutputDir: writer.Dir(),
		Seed:      seed,
		Ranges:    ranges,
		Results:   results,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
	}

	logger.WithFields(logrus.Fields{
		"input":      inputPath,
		"artifacts":  len(results),
		"overwrites": report.TotalOverwrites(),
		"output_dir": report.OutputDir,
		"duration":   report.Duration,
	}).Info("Sweep complete")

	return report, nil
}

func metadataInt(m map[string]interface{}, key string) int {
	if v, ok := m[key].(int); ok {
		return v
	}
	return 0
}
