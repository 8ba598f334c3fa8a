/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: planner.go
Description: Overwrite planner. Chooses which byte offsets inside a scan range get
corrupted, using constant spacing, distinct random draws, or a random-gap walk. All
placements produce a sorted, duplicate-free set strictly inside the range.
*/

package strategies

import (
	"sort"

	"github.com/prayerslayer/glitch/pkg/interfaces"
	"github.com/prayerslayer/glitch/pkg/jpeg"
)

// Plan returns the offsets to overwrite inside r.
func Plan(r jpeg.ScanRange, s Strategy, rng interfaces.RandomSource) []uint64 {
	switch s.Placement {
	case PlacementConstant:
		return planConstant(r, s.OverwriteCount)
	case PlacementRandom:
		return planRandom(r, s.OverwriteCount, rng)
	case PlacementGap:
		return planGap(r, s.OverwriteCount, s.MinGap, s.MaxGap, rng)
	}
	return nil
}

// planConstant spaces count offsets by (End-Start)/count.
func planConstant(r jpeg.ScanRange, count uint32) []uint64 {
	if count == 0 || r.End <= r.Start {
		return nil
	}
	interval := (r.End - r.Start) / uint64(count)
	if interval == 0 {
		return nil
	}

	offsets := make([]uint64, 0, count)
	for k := uint64(1); k <= uint64(count); k++ {
		offset := r.Start + k*interval
		if offset >= r.End {
			break
		}
		offsets = append(offsets, offset)
	}
	return offsets
}

// planRandom draws count distinct offsets by rejection sampling. The count is
// clamped to the interior size so the loop always terminates.
func planRandom(r jpeg.ScanRange, count uint32, rng interfaces.RandomSource) []uint64 {
	slots := r.Interior()
	want := uint64(count)
	if want > slots {
		want = slots
	}
	if want == 0 {
		return nil
	}

	seen := make(map[uint64]struct{}, want)
	offsets := make([]uint64, 0, want)
	for uint64(len(offsets)) < want {
		offset := r.Start + 1 + uint64(rng.Int63n(int64(slots)))
		if _, dup := seen[offset]; dup {
			continue
		}
		seen[offset] = struct{}{}
		offsets = append(offsets, offset)
	}

	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })
	return offsets
}

// planGap advances a cursor from Start by a random gap in [minGap, maxGap]
// per hit, stopping at End or after maxHits hits.
func planGap(r jpeg.ScanRange, maxHits, minGap, maxGap uint32, rng interfaces.RandomSource) []uint64 {
	if maxHits == 0 || minGap == 0 || minGap > maxGap {
		return nil
	}

	var offsets []uint64
	cursor := r.Start
	for uint32(len(offsets)) < maxHits {
		cursor += uniform(rng, uint64(minGap), uint64(maxGap))
		if cursor >= r.End {
			break
		}
		offsets = append(offsets, cursor)
	}
	return offsets
}

// uniform returns a value in [lo, hi].
func uniform(rng interfaces.RandomSource, lo, hi uint64) uint64 {
	if hi <= lo {
		return lo
	}
	return lo + uint64(rng.Int63n(int64(hi-lo+1)))
}
