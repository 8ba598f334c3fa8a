/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: strategy.go
Description: Corruption strategy values. A strategy says where overwrites land inside
a scan range (placement) and how each chosen byte is rewritten (overwrite kind), and
carries a canonical identifier used to name output artifacts.
*/

package strategies

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidStrategy is returned by Validate for inconsistent strategy fields
var ErrInvalidStrategy = errors.New("invalid strategy")

// Placement selects how overwrite offsets are chosen inside a scan range
type Placement int

const (
	// PlacementGap walks the range with uniformly random gaps
	PlacementGap Placement = iota
	// PlacementConstant spaces offsets evenly
	PlacementConstant
	// PlacementRandom draws distinct uniform offsets
	PlacementRandom
)

// String returns the placement name
func (p Placement) String() string {
	switch p {
	case PlacementGap:
		return "Gap"
	case PlacementConstant:
		return "Constant"
	case PlacementRandom:
		return "Random"
	default:
		return fmt.Sprintf("Placement(%d)", int(p))
	}
}

// MarshalText encodes the placement by name
func (p Placement) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a placement name
func (p *Placement) UnmarshalText(text []byte) error {
	parsed, err := ParsePlacement(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePlacement parses a placement name, case-insensitively
func ParsePlacement(s string) (Placement, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gap":
		return PlacementGap, nil
	case "constant":
		return PlacementConstant, nil
	case "random":
		return PlacementRandom, nil
	}
	return 0, fmt.Errorf("%w: unknown placement %q", ErrInvalidStrategy, s)
}

// OverwriteKind selects how a chosen byte is rewritten
type OverwriteKind int

const (
	// OverwriteRandom replaces the byte with a value in [1, 255]
	OverwriteRandom OverwriteKind = iota
	// OverwriteRelativeOffset subtracts a bounded magnitude, never wrapping
	OverwriteRelativeOffset
)

// String returns the overwrite kind name
func (k OverwriteKind) String() string {
	switch k {
	case OverwriteRandom:
		return "Random"
	case OverwriteRelativeOffset:
		return "RelativeOffset"
	default:
		return fmt.Sprintf("OverwriteKind(%d)", int(k))
	}
}

// MarshalText encodes the overwrite kind by name
func (k OverwriteKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes an overwrite kind name
func (k *OverwriteKind) UnmarshalText(text []byte) error {
	parsed, err := ParseOverwriteKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseOverwriteKind parses an overwrite kind name, case-insensitively
func ParseOverwriteKind(s string) (OverwriteKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "random":
		return OverwriteRandom, nil
	case "relativeoffset", "relative-offset", "relative_offset":
		return OverwriteRelativeOffset, nil
	}
	return 0, fmt.Errorf("%w: unknown overwrite kind %q", ErrInvalidStrategy, s)
}

// Strategy is an immutable corruption configuration.
//
// OverwriteCount is the number of offsets for Constant and Random placement
// and the per-range hit cap for Gap placement. MinGap and MaxGap are only
// read by Gap placement; MinOffset and MaxOffset only by RelativeOffset.
type Strategy struct {
	Placement      Placement     `json:"placement"`
	Overwrite      OverwriteKind `json:"overwrite"`
	OverwriteCount uint32        `json:"overwrite_count"`
	MinGap         uint32        `json:"min_gap"`
	MaxGap         uint32        `json:"max_gap"`
	MinOffset      uint8         `json:"min_offset"`
	MaxOffset      uint8         `json:"max_offset"`
}

// Validate checks the strategy invariants
func (s Strategy) Validate() error {
	if s.MinOffset > s.MaxOffset {
		return fmt.Errorf("%w: min offset %d exceeds max offset %d", ErrInvalidStrategy, s.MinOffset, s.MaxOffset)
	}
	switch s.Placement {
	case PlacementGap:
		if s.MinGap == 0 {
			return fmt.Errorf("%w: gap placement needs a min gap of at least 1", ErrInvalidStrategy)
		}
		if s.MinGap > s.MaxGap {
			return fmt.Errorf("%w: min gap %d exceeds max gap %d", ErrInvalidStrategy, s.MinGap, s.MaxGap)
		}
	case PlacementConstant, PlacementRandom:
	default:
		return fmt.Errorf("%w: unknown placement %d", ErrInvalidStrategy, int(s.Placement))
	}
	switch s.Overwrite {
	case OverwriteRandom, OverwriteRelativeOffset:
	default:
		return fmt.Errorf("%w: unknown overwrite kind %d", ErrInvalidStrategy, int(s.Overwrite))
	}
	return nil
}

// ID returns the canonical identifier used as the artifact file name.
//
// Gap strategies keep the historical Kind_Count_MaxOffset_MaxGap form, e.g.
// RelativeOffset_16_7_128. Other placements add the placement name:
// Random_Constant_32_15.
func (s Strategy) ID() string {
	if s.Placement == PlacementGap {
		return fmt.Sprintf("%s_%d_%d_%d", s.Overwrite, s.OverwriteCount, s.MaxOffset, s.MaxGap)
	}
	return fmt.Sprintf("%s_%s_%d_%d", s.Overwrite, s.Placement, s.OverwriteCount, s.MaxOffset)
}

func (s Strategy) String() string {
	return s.ID()
}
