/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: sweep.go
Description: Parameter sweep. Expands exponent bounds for overwrite counts, offset
magnitudes and gap widths into the ordered list of strategies a run tries.
*/

package core

import (
	"fmt"

	"github.com/prayerslayer/glitch/pkg/strategies"
)

// SweepConfig holds half-open exponent bounds [Min, Max) for each axis.
//
//	overwrites:  2^k                     for k in [OverwritesMin, OverwritesMax)
//	max offset:  2^k - 1 (min offset 1)  for k in [OffsetMin, OffsetMax)
//	gap:         [2^k, 2^(k+1)]          for k in [GapMin, GapMax), Gap placement only
type SweepConfig struct {
	OverwritesMin int `json:"overwrites_min"`
	OverwritesMax int `json:"overwrites_max"`
	OffsetMin     int `json:"offset_min"`
	OffsetMax     int `json:"offset_max"`
	GapMin        int `json:"gap_min"`
	GapMax        int `json:"gap_max"`

	Placements []strategies.Placement     `json:"placements"`
	Kinds      []strategies.OverwriteKind `json:"kinds"`
}

// DefaultSweepConfig returns the historical grid: 4 overwrite counts, 3 offset
// magnitudes, 6 gap widths, both overwrite kinds, Gap placement. 144 strategies.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		OverwritesMin: 4,
		OverwritesMax: 8,
		OffsetMin:     2,
		OffsetMax:     5,
		GapMin:        6,
		GapMax:        12,
		Placements:    []strategies.Placement{strategies.PlacementGap},
		Kinds:         []strategies.OverwriteKind{strategies.OverwriteRandom, strategies.OverwriteRelativeOffset},
	}
}

// Validate checks the exponent bounds fit the strategy field widths
func (c SweepConfig) Validate() error {
	if c.OverwritesMin < 0 || c.OverwritesMin >= c.OverwritesMax || c.OverwritesMax > 32 {
		return fmt.Errorf("overwrite exponents must satisfy 0 <= min < max <= 32, got [%d, %d)", c.OverwritesMin, c.OverwritesMax)
	}
	if c.OffsetMin < 1 || c.OffsetMin >= c.OffsetMax || c.OffsetMax > 9 {
		return fmt.Errorf("offset exponents must satisfy 1 <= min < max <= 9, got [%d, %d)", c.OffsetMin, c.OffsetMax)
	}
	if c.GapMin < 0 || c.GapMin >= c.GapMax || c.GapMax > 31 {
		return fmt.Errorf("gap exponents must satisfy 0 <= min < max <= 31, got [%d, %d)", c.GapMin, c.GapMax)
	}
	if len(c.Placements) == 0 {
		return fmt.Errorf("at least one placement is required")
	}
	if len(c.Kinds) == 0 {
		return fmt.Errorf("at least one overwrite kind is required")
	}
	return nil
}

// Strategies expands the grid in a fixed order: placement, overwrite count,
// offset magnitude, gap width, overwrite kind. It fails with
// ErrDuplicateStrategy if two strategies would share an artifact name.
func (c SweepConfig) Strategies() ([]strategies.Strategy, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var out []strategies.Strategy
	seen := make(map[string]bool)
	add := func(s strategies.Strategy) error {
		if err := s.Validate(); err != nil {
			return err
		}
		id := s.ID()
		if seen[id] {
			return fmt.Errorf("%w: %s", ErrDuplicateStrategy, id)
		}
		seen[id] = true
		out = append(out, s)
		return nil
	}

	for _, placement := range c.Placements {
		for ow := c.OverwritesMin; ow < c.OverwritesMax; ow++ {
			for off := c.OffsetMin; off < c.OffsetMax; off++ {
				base := strategies.Strategy{
					Placement:      placement,
					OverwriteCount: uint32(1) << ow,
					MinOffset:      1,
					MaxOffset:      uint8((1 << off) - 1),
				}

				if placement != strategies.PlacementGap {
					for _, kind := range c.Kinds {
						s := base
						s.Overwrite = kind
						if err := add(s); err != nil {
							return nil, err
						}
					}
					continue
				}

				for gap := c.GapMin; gap < c.GapMax; gap++ {
					for _, kind := range c.Kinds {
						s := base
						s.Overwrite = kind
						s.MinGap = uint32(1) << gap
						s.MaxGap = uint32(1) << (gap + 1)
						if err := add(s); err != nil {
							return nil, err
						}
					}
				}
			}
		}
	}

	return out, nil
}
