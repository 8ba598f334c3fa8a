/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: detector.go
Description: Scan boundary detector. Walks a JPEG byte stream once, tracking marker
structure byte pair by byte pair, and reports the byte ranges that hold
entropy-coded scan data so corruption never lands on headers or markers.
*/

package jpeg

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// ScanState is the detector's position in the marker structure.
type ScanState int

const (
	LookingForScanStart ScanState = iota
	ReadingHeaderLength
	ReadingEntropyData
	Terminated
)

// String returns the state name
func (s ScanState) String() string {
	switch s {
	case LookingForScanStart:
		return "LookingForScanStart"
	case ReadingHeaderLength:
		return "ReadingHeaderLength"
	case ReadingEntropyData:
		return "ReadingEntropyData"
	case Terminated:
		return "Terminated"
	default:
		return fmt.Sprintf("ScanState(%d)", int(s))
	}
}

// ScanRange is one entropy-coded region. Start is the offset of the first
// entropy byte; End is the offset of the 0xFF opening the marker that closed
// the scan (len(data) for a flushed trailing scan). Only offsets strictly
// between the two are eligible for corruption.
type ScanRange struct {
	Start uint64 `json:"start"`
	End   uint64 `json:"end"`
}

// Interior returns the number of offsets strictly inside the range.
func (r ScanRange) Interior() uint64 {
	if r.End <= r.Start+1 {
		return 0
	}
	return r.End - r.Start - 1
}

// Contains reports whether offset lies strictly inside the range.
func (r ScanRange) Contains(offset uint64) bool {
	return offset > r.Start && offset < r.End
}

func (r ScanRange) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}

// Options controls end-of-scan and end-of-stream handling.
type Options struct {
	// StopAfterFirstScan moves the detector to Terminated at the first
	// genuine marker after entropy data. When false it keeps looking for
	// further Start-Of-Scan markers, as progressive images need.
	StopAfterFirstScan bool
	// FlushTrailingScan emits a range for entropy data that runs to the end
	// of the stream without a closing marker.
	FlushTrailingScan bool
}

// DefaultOptions stops after the first scan and never flushes a trailing one.
func DefaultOptions() Options {
	return Options{StopAfterFirstScan: true}
}

// Detector finds scan ranges. It holds no per-pass state and is safe for
// concurrent use.
type Detector struct {
	options Options
	logger  *logrus.Logger
}

// NewDetector creates a detector. A nil logger discards transition logs.
func NewDetector(options Options, logger *logrus.Logger) *Detector {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Detector{options: options, logger: logger}
}

// Options returns the detector configuration
func (d *Detector) Options() Options {
	return d.options
}

// Detect runs one forward pass over data and returns the scan ranges in
// stream order.
//
// The scan header length is read from the low byte of the SOS length field
// only, so headers of 256 bytes or more are undercounted and the reported
// range starts early. Malformed structure never produces an error.
func (d *Detector) Detect(data []byte) []ScanRange {
	var (
		ranges       []ScanRange
		state        = LookingForScanStart
		headerStart  uint64
		headerLength uint64
		scanStart    uint64
		haveStart    bool
	)

	for i := 1; i < len(data) && state != Terminated; i++ {
		b0, b1 := data[i-1], data[i]
		offset := uint64(i)

		next := d.step(state, b0, b1)
		if state == ReadingEntropyData && next == LookingForScanStart {
			// the closing marker may itself be the next scan's SOS
			next = d.step(LookingForScanStart, b0, b1)
		}

		if next != state {
			d.logger.WithFields(logrus.Fields{
				"from":   state.String(),
				"to":     next.String(),
				"offset": offset,
				"b0":     fmt.Sprintf("%02x", b0),
				"b1":     fmt.Sprintf("%02x", b1),
			}).Debug("Scan state transition")
		}

		if state == ReadingHeaderLength {
			// low byte of the big-endian length field
			headerLength = uint64(b1)
		}

		if state == ReadingEntropyData && next != ReadingEntropyData {
			if haveStart {
				r := ScanRange{Start: scanStart, End: offset - 1}
				ranges = append(ranges, r)
				d.logger.WithFields(logrus.Fields{
					"start":   r.Start,
					"end":     r.End,
					"marker":  MarkerName(b1),
					"restart": IsRestart(b1),
				}).Debug("Scan range closed")
			}
			haveStart = false
		}

		if next == ReadingHeaderLength && state != ReadingHeaderLength {
			headerStart = offset
			headerLength = 0
			haveStart = false
		}

		if next == ReadingEntropyData && !haveStart && offset >= headerStart+headerLength+1 {
			scanStart = offset
			haveStart = true
		}

		state = next
	}

	if d.options.FlushTrailingScan && state == ReadingEntropyData && haveStart {
		ranges = append(ranges, ScanRange{Start: scanStart, End: uint64(len(data))})
	}

	return ranges
}

// step is the pure transition function over one byte pair.
func (d *Detector) step(state ScanState, b0, b1 byte) ScanState {
	switch state {
	case LookingForScanStart:
		if b0 == MarkerPrefix && b1 == MarkerSOS {
			return ReadingHeaderLength
		}
		return LookingForScanStart

	case ReadingHeaderLength:
		if (b0 == MarkerPrefix && b1 == MarkerSOS) || b0 == MarkerSOS {
			return ReadingHeaderLength
		}
		return ReadingEntropyData

	case ReadingEntropyData:
		if b0 == MarkerPrefix && b1 != StuffedByte {
			if d.options.StopAfterFirstScan {
				return Terminated
			}
			return LookingForScanStart
		}
		return ReadingEntropyData
	}

	return Terminated
}

// Detect runs a detector with default options and no logging.
func Detect(data []byte) []ScanRange {
	return NewDetector(DefaultOptions(), nil).Detect(data)
}
