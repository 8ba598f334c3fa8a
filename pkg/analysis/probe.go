/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: probe.go
Description: Differential decode probe for corrupted artifacts. Runs every configured
JPEG decoder over the same bytes under a recover guard, classifies each outcome and
records whether the implementations agree, so a sweep can tell which strategies still
produce viewable images and which split or break the decoders.
*/

package analysis

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gen2brain/jpegn"
)

// ProbeStatus classifies a decode attempt
type ProbeStatus string

const (
	ProbeOK    ProbeStatus = "ok"
	ProbeError ProbeStatus = "error"
	ProbePanic ProbeStatus = "panic"
)

// severity orders statuses so the worst outcome wins
func (s ProbeStatus) severity() int {
	switch s {
	case ProbeOK:
		return 0
	case ProbeError:
		return 1
	default:
		return 2
	}
}

// Decoder is one JPEG implementation under test
type Decoder struct {
	Name   string
	Decode func(r io.Reader) (image.Image, error)
}

// DefaultDecoders returns the standard library decoder and jpegn.
// jpegn hands progressive and CMYK streams to the standard library, so those
// always agree.
func DefaultDecoders() []Decoder {
	return []Decoder{
		{Name: "stdlib", Decode: jpeg.Decode},
		{Name: "jpegn", Decode: func(r io.Reader) (image.Image, error) {
			return jpegn.Decode(r)
		}},
	}
}

// DecoderResult is the outcome of one decoder on one artifact
type DecoderResult struct {
	Decoder  string        `json:"decoder"`
	Status   ProbeStatus   `json:"status"`
	Error    string        `json:"error,omitempty"`
	Width    int           `json:"width,omitempty"`
	Height   int           `json:"height,omitempty"`
	Duration time.Duration `json:"duration"`
}

// ProbeResult is the combined outcome of decoding one artifact.
// Status is the worst decoder status; Width and Height come from the first
// decoder that accepted the data.
type ProbeResult struct {
	Status   ProbeStatus     `json:"status"`
	Error    string          `json:"error,omitempty"`
	Width    int             `json:"width,omitempty"`
	Height   int             `json:"height,omitempty"`
	Duration time.Duration   `json:"duration"`
	Decoders []DecoderResult `json:"decoders,omitempty"`
	Agree    bool            `json:"agree"`
}

// OK reports whether every decoder accepted the data
func (r ProbeResult) OK() bool {
	return r.Status == ProbeOK
}

// Verdicts renders the per-decoder statuses, e.g. "stdlib=ok jpegn=error"
func (r ProbeResult) Verdicts() string {
	parts := make([]string, 0, len(r.Decoders))
	for _, d := range r.Decoders {
		parts = append(parts, fmt.Sprintf("%s=%s", d.Decoder, d.Status))
	}
	return strings.Join(parts, " ")
}

// Prober decodes artifacts with several implementations and compares them
type Prober struct {
	decoders []Decoder
}

// NewProber creates a prober. With no decoders it uses DefaultDecoders.
func NewProber(decoders ...Decoder) *Prober {
	if len(decoders) == 0 {
		decoders = DefaultDecoders()
	}
	return &Prober{decoders: decoders}
}

// Decode runs every decoder over data. It never panics.
func (p *Prober) Decode(data []byte) ProbeResult {
	start := time.Now()
	result := ProbeResult{Status: ProbeOK, Agree: true}

	for _, decoder := range p.decoders {
		dr := decodeOne(decoder, data)
		result.Decoders = append(result.Decoders, dr)

		if dr.Status.severity() > result.Status.severity() {
			result.Status = dr.Status
		}
		if dr.Status != ProbeOK && result.Error == "" {
			result.Error = fmt.Sprintf("%s: %s", dr.Decoder, dr.Error)
		}
		if dr.Status == ProbeOK && result.Width == 0 && result.Height == 0 {
			result.Width, result.Height = dr.Width, dr.Height
		}
	}

	result.Agree = agree(result.Decoders)
	result.Duration = time.Since(start)
	return result
}

// File reads path and probes its contents
func (p *Prober) File(path string) (ProbeResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ProbeResult{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return p.Decode(data), nil
}

// decodeOne runs a single decoder under a recover guard
func decodeOne(decoder Decoder, data []byte) (result DecoderResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			result = DecoderResult{
				Decoder: decoder.Name,
				Status:  ProbePanic,
				Error:   fmt.Sprintf("%v", r),
			}
		}
		result.Duration = time.Since(start)
	}()

	img, err := decoder.Decode(bytes.NewReader(data))
	if err != nil {
		return DecoderResult{Decoder: decoder.Name, Status: ProbeError, Error: err.Error()}
	}

	bounds := img.Bounds()
	return DecoderResult{
		Decoder: decoder.Name,
		Status:  ProbeOK,
		Width:   bounds.Dx(),
		Height:  bounds.Dy(),
	}
}

// agree reports whether all decoders reached the same status and, when they
// all decoded, the same dimensions
func agree(results []DecoderResult) bool {
	if len(results) == 0 {
		return true
	}
	first := results[0]
	for _, r := range results[1:] {
		if r.Status != first.Status {
			return false
		}
		if r.Status == ProbeOK && (r.Width != first.Width || r.Height != first.Height) {
			return false
		}
	}
	return true
}

var defaultProber = NewProber()

// ProbeDecode decodes data with the default decoders
func ProbeDecode(data []byte) ProbeResult {
	return defaultProber.Decode(data)
}

// ProbeFile reads path and probes it with the default decoders
func ProbeFile(path string) (ProbeResult, error) {
	return defaultProber.File(path)
}
