/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: mutators.go
Description: Scan corruption mutator. Wraps detection, planning and overwriting behind
the Mutator interface so every strategy in a sweep produces a child test case with
its lineage and corruption metadata attached.
*/

package strategies

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prayerslayer/glitch/pkg/interfaces"
	"github.com/prayerslayer/glitch/pkg/jpeg"
)

var _ interfaces.Mutator = (*ScanMutator)(nil)

// ScanMutator corrupts the entropy-coded scans of a JPEG test case
type ScanMutator struct {
	strategy Strategy
	detector *jpeg.Detector
	rng      interfaces.RandomSource
}

// NewScanMutator creates a scan mutator. The random source is owned by the
// mutator; do not share it with other goroutines.
func NewScanMutator(strategy Strategy, detector *jpeg.Detector, rng interfaces.RandomSource) *ScanMutator {
	if detector == nil {
		detector = jpeg.NewDetector(jpeg.DefaultOptions(), nil)
	}
	return &ScanMutator{
		strategy: strategy,
		detector: detector,
		rng:      rng,
	}
}

// Mutate detects the scan ranges of the test case and corrupts them
func (m *ScanMutator) Mutate(testCase *interfaces.TestCase) (*interfaces.TestCase, error) {
	return m.MutateRanges(testCase, m.detector.Detect(testCase.Data))
}

// MutateRanges corrupts precomputed scan ranges of the test case. Callers
// that run many strategies over one input detect once and reuse the ranges.
func (m *ScanMutator) MutateRanges(testCase *interfaces.TestCase, ranges []jpeg.ScanRange) (*interfaces.TestCase, error) {
	if testCase == nil {
		return nil, fmt.Errorf("nil test case")
	}
	if err := m.strategy.Validate(); err != nil {
		return nil, err
	}

	mutatedData, overwrites := Corrupt(testCase.Data, ranges, m.strategy, m.rng)

	mutated := &interfaces.TestCase{
		ID:         uuid.New().String(),
		Data:       mutatedData,
		ParentID:   testCase.ID,
		Generation: testCase.Generation + 1,
		CreatedAt:  time.Now(),
		Metadata:   make(map[string]interface{}),
	}

	mutated.Metadata["mutator"] = m.Name()
	mutated.Metadata["strategy"] = m.strategy.ID()
	mutated.Metadata["ranges"] = len(ranges)
	mutated.Metadata["overwrites"] = overwrites
	mutated.Metadata["bytes_changed"] = countChanged(testCase.Data, mutatedData)

	return mutated, nil
}

// Strategy returns the strategy this mutator applies
func (m *ScanMutator) Strategy() Strategy {
	return m.strategy
}

// Name returns the name of this mutator
func (m *ScanMutator) Name() string {
	return "ScanMutator"
}

// Description returns a description of this mutator
func (m *ScanMutator) Description() string {
	return fmt.Sprintf("Corrupts entropy-coded scan bytes with %s placement and %s overwrites",
		m.strategy.Placement, m.strategy.Overwrite)
}

func countChanged(a, b []byte) int {
	n := 0
	for i := range a {
		if i < len(b) && a[i] != b[i] {
			n++
		}
	}
	return n
}
