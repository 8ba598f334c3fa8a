/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: corruptor.go
Description: Corruption engine. Rewrites planned offsets with the strategy's overwrite
rule and runs the range-by-range pipeline over every detected scan.
*/

package strategies

import (
	"github.com/prayerslayer/glitch/pkg/interfaces"
	"github.com/prayerslayer/glitch/pkg/jpeg"
)

// Apply returns a copy of data with every offset rewritten by the strategy's
// overwrite rule. Offsets past the end of data are ignored.
func Apply(data []byte, offsets []uint64, s Strategy, rng interfaces.RandomSource) []byte {
	out := make([]byte, len(data))
	copy(out, data)
	applyInPlace(out, offsets, s, rng)
	return out
}

// Corrupt runs plan-then-apply over each range in order. Each range sees the
// output of the ones before it; ranges are disjoint so no offset is touched
// twice. It returns the corrupted copy and the number of overwritten offsets.
func Corrupt(data []byte, ranges []jpeg.ScanRange, s Strategy, rng interfaces.RandomSource) ([]byte, int) {
	out := make([]byte, len(data))
	copy(out, data)

	overwrites := 0
	for _, r := range ranges {
		offsets := Plan(r, s, rng)
		overwrites += applyInPlace(out, offsets, s, rng)
	}
	return out, overwrites
}

func applyInPlace(data []byte, offsets []uint64, s Strategy, rng interfaces.RandomSource) int {
	n := 0
	for _, offset := range offsets {
		if offset >= uint64(len(data)) {
			continue
		}
		data[offset] = OverwriteByte(data[offset], s, rng)
		n++
	}
	return n
}

// OverwriteByte applies the strategy's overwrite rule to a single byte.
//
// Random yields a value in [1, 255]; zero is excluded so no new stuffing
// sequence appears. RelativeOffset subtracts a magnitude drawn from
// [MinOffset, MaxOffset] and leaves v unchanged when the subtraction would
// go below zero.
func OverwriteByte(v byte, s Strategy, rng interfaces.RandomSource) byte {
	switch s.Overwrite {
	case OverwriteRandom:
		return byte(1 + rng.Intn(255))
	case OverwriteRelativeOffset:
		m := byte(uniform(rng, uint64(s.MinOffset), uint64(s.MaxOffset)))
		if m > v {
			return v
		}
		return v - m
	}
	return v
}
