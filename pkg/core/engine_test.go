/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: engine_test.go
Description: Tests for the glitch engine and artifact writer. Runs small sweeps over
synthetic streams in temp directories and checks artifacts, determinism across worker
counts, reporter events and every fatal error kind.
*/

package core

import (
	"bytes"
	"context"
	"errors"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prayerslayer/glitch/pkg/analysis"
	"github.com/prayerslayer/glitch/pkg/jpeg"
	"github.com/prayerslayer/glitch/pkg/logging"
	"github.com/prayerslayer/glitch/pkg/strategies"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syntheticJPEG is SOI, an SOS with a 4-byte header, n entropy bytes of 0x80 and EOI.
// The single scan range is [8, 8+n).
func syntheticJPEG(n int) []byte {
	data := []byte{0xFF, 0xD8, 0xFF, 0xDA, 0x00, 0x04, 0x01, 0x00}
	data = append(data, bytes.Repeat([]byte{0x80}, n)...)
	return append(data, 0xFF, 0xD9)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func writeInput(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.jpg")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func testStrategies() []strategies.Strategy {
	var list []strategies.Strategy
	for _, kind := range []strategies.OverwriteKind{strategies.OverwriteRandom, strategies.OverwriteRelativeOffset} {
		list = append(list,
			strategies.Strategy{Placement: strategies.PlacementRandom, Overwrite: kind, OverwriteCount: 8, MinOffset: 1, MaxOffset: 15},
			strategies.Strategy{Placement: strategies.PlacementConstant, Overwrite: kind, OverwriteCount: 16, MinOffset: 1, MaxOffset: 7},
			strategies.Strategy{Placement: strategies.PlacementGap, Overwrite: kind, OverwriteCount: 32, MinGap: 4, MaxGap: 8, MinOffset: 1, MaxOffset: 3},
		)
	}
	return list
}

func newTestEngine(t *testing.T, options Options) *Engine {
	t.Helper()
	engine := NewEngine(options)
	engine.SetLogger(quietLogger())
	require.NoError(t, engine.SetStrategies(testStrategies()))
	return engine
}

func TestEngineRunWritesArtifacts(t *testing.T) {
	input := writeInput(t, syntheticJPEG(200))
	engine := newTestEngine(t, Options{Workers: 2, Seed: 7, Detector: jpeg.DefaultOptions()})

	collector := NewCollectingReporter()
	engine.AddReporter(collector)

	report, err := engine.Run(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, OutputDirFor(input), report.OutputDir)
	assert.Equal(t, int64(7), report.Seed)
	assert.Equal(t, []jpeg.ScanRange{{Start: 8, End: 208}}, report.Ranges)
	require.Len(t, report.Results, 6)

	original, err := os.ReadFile(input)
	require.NoError(t, err)

	for i, res := range report.Results {
		assert.Equal(t, testStrategies()[i].ID(), res.StrategyID)
		assert.Equal(t, filepath.Join(report.OutputDir, res.StrategyID+".jpg"), res.Path)
		assert.Equal(t, int64(7+i), res.Seed)
		assert.Nil(t, res.Probe)

		artifact, err := os.ReadFile(res.Path)
		require.NoError(t, err)
		require.Len(t, artifact, len(original))
		// Header and trailer bytes are never touched
		assert.Equal(t, original[:9], artifact[:9])
		assert.Equal(t, original[len(original)-2:], artifact[len(artifact)-2:])
		assert.Positive(t, res.Overwrites)
	}

	assert.Equal(t, []jpeg.ScanRange{{Start: 8, End: 208}}, collector.Ranges[input])
	assert.Equal(t, 6, collector.ArtifactCount())

	stats := engine.GetStats()
	assert.Equal(t, int64(1), stats.Inputs)
	assert.Equal(t, int64(6), stats.Artifacts)
	assert.Equal(t, int64(1), stats.ScanRanges)
	assert.Equal(t, int64(report.TotalOverwrites()), stats.Overwrites)
}

func TestEngineDeterministicAcrossWorkers(t *testing.T) {
	input := writeInput(t, syntheticJPEG(300))
	dirA := filepath.Join(t.TempDir(), "a")
	dirB := filepath.Join(t.TempDir(), "b")

	reportA, err := newTestEngine(t, Options{Workers: 1, Seed: 42, OutputDir: dirA}).Run(context.Background(), input)
	require.NoError(t, err)
	reportB, err := newTestEngine(t, Options{Workers: 4, Seed: 42, OutputDir: dirB}).Run(context.Background(), input)
	require.NoError(t, err)

	require.Len(t, reportB.Results, len(reportA.Results))
	for i := range reportA.Results {
		a, err := os.ReadFile(reportA.Results[i].Path)
		require.NoError(t, err)
		b, err := os.ReadFile(reportB.Results[i].Path)
		require.NoError(t, err)
		assert.Equal(t, a, b, reportA.Results[i].StrategyID)
		assert.Equal(t, reportA.Results[i].Overwrites, reportB.Results[i].Overwrites)
	}
}

func TestEngineRerunOverwritesArtifacts(t *testing.T) {
	input := writeInput(t, syntheticJPEG(100))
	engine := newTestEngine(t, Options{Seed: 1})

	first, err := engine.Run(context.Background(), input)
	require.NoError(t, err)
	second, err := engine.Run(context.Background(), input)
	require.NoError(t, err)

	entries, err := os.ReadDir(second.OutputDir)
	require.NoError(t, err)
	assert.Len(t, entries, len(first.Results))
}

func TestEngineProbe(t *testing.T) {
	input := writeInput(t, syntheticJPEG(50))
	engine := newTestEngine(t, Options{Seed: 3, Probe: true})

	report, err := engine.Run(context.Background(), input)
	require.NoError(t, err)

	for _, res := range report.Results {
		require.NotNil(t, res.Probe)
		// The synthetic stream has no frame header, so no decoder accepts it
		assert.False(t, res.Probe.OK())
		assert.True(t, res.Probe.Agree)
		assert.Len(t, res.Probe.Decoders, 2)
	}
	assert.Equal(t, int64(len(report.Results)), engine.GetStats().ProbeFailures)
	assert.Zero(t, engine.GetStats().Disagreements)
}

func TestEngineCountsDecoderDisagreements(t *testing.T) {
	input := writeInput(t, syntheticJPEG(50))
	engine := newTestEngine(t, Options{Seed: 3, Probe: true})
	engine.SetDecoders(
		analysis.Decoder{Name: "lenient", Decode: func(io.Reader) (image.Image, error) {
			return image.NewGray(image.Rect(0, 0, 4, 4)), nil
		}},
		analysis.Decoder{Name: "strict", Decode: func(io.Reader) (image.Image, error) {
			return nil, errors.New("invalid huffman code")
		}},
	)

	report, err := engine.Run(context.Background(), input)
	require.NoError(t, err)

	for _, res := range report.Results {
		require.NotNil(t, res.Probe)
		assert.False(t, res.Probe.Agree)
		assert.Equal(t, "lenient=ok strict=error", res.Probe.Verdicts())
	}
	stats := engine.GetStats()
	assert.Equal(t, int64(len(report.Results)), stats.Disagreements)
	assert.Equal(t, int64(len(report.Results)), stats.ProbeFailures)
}

func TestEngineNoScanStillWrites(t *testing.T) {
	data := []byte{0xFF, 0xD8, 0x01, 0x02, 0xFF, 0xD9}
	input := writeInput(t, data)
	engine := newTestEngine(t, Options{Seed: 5})

	report, err := engine.Run(context.Background(), input)
	require.NoError(t, err)
	assert.Empty(t, report.Ranges)

	for _, res := range report.Results {
		assert.Zero(t, res.Overwrites)
		artifact, err := os.ReadFile(res.Path)
		require.NoError(t, err)
		assert.Equal(t, data, artifact)
	}
}

func TestEngineErrors(t *testing.T) {
	t.Run("no strategies", func(t *testing.T) {
		_, err := NewEngine(Options{}).Run(context.Background(), "whatever.jpg")
		assert.ErrorIs(t, err, ErrNoStrategies)
	})

	t.Run("missing input", func(t *testing.T) {
		engine := newTestEngine(t, Options{Seed: 1})
		_, err := engine.Run(context.Background(), filepath.Join(t.TempDir(), "missing.jpg"))
		assert.ErrorIs(t, err, ErrInputNotFound)
	})

	t.Run("duplicate strategy", func(t *testing.T) {
		engine := NewEngine(Options{})
		s := testStrategies()[0]
		err := engine.SetStrategies([]strategies.Strategy{s, s})
		assert.True(t, errors.Is(err, ErrDuplicateStrategy))
	})

	t.Run("invalid strategy", func(t *testing.T) {
		engine := NewEngine(Options{})
		err := engine.SetStrategies([]strategies.Strategy{{Placement: strategies.PlacementGap}})
		assert.ErrorIs(t, err, strategies.ErrInvalidStrategy)
	})

	t.Run("output directory unwritable", func(t *testing.T) {
		input := writeInput(t, syntheticJPEG(10))
		blocker := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(blocker, nil, 0644))

		engine := newTestEngine(t, Options{Seed: 1, OutputDir: filepath.Join(blocker, "out")})
		_, err := engine.Run(context.Background(), input)
		assert.ErrorIs(t, err, ErrOutputDirectoryUnwritable)
	})

	t.Run("artifact write failed", func(t *testing.T) {
		input := writeInput(t, syntheticJPEG(10))
		dir := t.TempDir()
		// A directory squatting on the artifact name makes the rename fail
		squat := filepath.Join(dir, testStrategies()[0].ID()+ArtifactExtension, "child")
		require.NoError(t, os.MkdirAll(squat, 0755))

		engine := newTestEngine(t, Options{Seed: 1, OutputDir: dir})
		_, err := engine.Run(context.Background(), input)
		assert.ErrorIs(t, err, ErrOutputWriteFailed)
	})

	t.Run("cancelled context", func(t *testing.T) {
		input := writeInput(t, syntheticJPEG(10))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		engine := newTestEngine(t, Options{Seed: 1})
		_, err := engine.Run(ctx, input)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestArtifactWriter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	writer, err := NewArtifactWriter(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, writer.Dir())

	path, err := writer.Write("Random_16_3_128", []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Random_16_3_128.jpg"), path)

	_, err = writer.Write("Random_16_3_128", []byte{4})
	require.NoError(t, err)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{4}, got)

	assert.Equal(t, "photo.jpg-bad", OutputDirFor("photo.jpg"))
}

func TestLoggerReporter(t *testing.T) {
	var out bytes.Buffer
	logger, err := logging.NewLogger(&logging.LoggerConfig{
		Level:   logging.LogLevelDebug,
		Format:  logging.LogFormatCustom,
		Console: &out,
	})
	require.NoError(t, err)

	input := writeInput(t, syntheticJPEG(100))
	engine := newTestEngine(t, Options{Seed: 11, Probe: true})
	engine.AddReporter(NewLoggerReporter(logger))

	report, err := engine.Run(context.Background(), input)
	require.NoError(t, err)
	require.NoError(t, logger.Close())

	text := out.String()
	assert.Equal(t, 1, strings.Count(text, "Scan range detected"))
	assert.Equal(t, len(report.Results), strings.Count(text, "Artifact written"))
	assert.Equal(t, len(report.Results), strings.Count(text, "Scan corrupted"))
	assert.Equal(t, len(report.Results), strings.Count(text, "Probe rejected artifact"))
}
