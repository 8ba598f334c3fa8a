/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: commands_test.go
Description: End-to-end tests for the glitch command tree. Drives each command through
cobra with a fresh viper state and checks the files and tables it produces.
*/

package commands

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prayerslayer/glitch/pkg/reporting"
	"github.com/prayerslayer/glitch/pkg/strategies"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestJPEG(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 5), B: uint8(x ^ y), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}))

	path := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	stdout, _, err := executeWithLogs(t, args...)
	return stdout, err
}

// executeWithLogs also returns stderr, where the console log goes
func executeWithLogs(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args, "--log-colors=false"))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCorruptCommand(t *testing.T) {
	input := writeTestJPEG(t)

	out, err := execute(t, "corrupt",
		"--seed", "5", "--workers", "2", "--probe", "--gallery",
		"--overwrites-min", "2", "--overwrites-max", "3",
		"--offset-min", "2", "--offset-max", "3",
		"--gap-min", "2", "--gap-max", "4",
		input,
	)
	require.NoError(t, err)

	dir := input + "-bad"
	for _, id := range []string{"Random_4_3_8", "RelativeOffset_4_3_8", "Random_4_3_16", "RelativeOffset_4_3_16"} {
		_, err := os.Stat(filepath.Join(dir, id+".jpg"))
		assert.NoError(t, err, id)
		assert.Contains(t, out, id)
	}
	assert.Contains(t, out, "seed 5")

	report, err := reporting.ReadManifest(filepath.Join(dir, reporting.ManifestName))
	require.NoError(t, err)
	assert.Len(t, report.Results, 4)
	assert.Equal(t, int64(5), report.Seed)
	for _, res := range report.Results {
		require.NotNil(t, res.Probe)
	}

	_, err = os.Stat(filepath.Join(dir, reporting.GalleryName))
	assert.NoError(t, err)
}

func TestCorruptCommandIsReproducible(t *testing.T) {
	input := writeTestJPEG(t)
	outA := filepath.Join(t.TempDir(), "a")
	outB := filepath.Join(t.TempDir(), "b")
	sweep := []string{"--overwrites-min", "3", "--overwrites-max", "4", "--offset-min", "3", "--offset-max", "4", "--gap-min", "3", "--gap-max", "4"}

	_, err := execute(t, append(append([]string{"corrupt", "--seed", "77", "--workers", "1", "--output", outA}, sweep...), input)...)
	require.NoError(t, err)
	_, err = execute(t, append(append([]string{"corrupt", "--seed", "77", "--workers", "3", "--output", outB}, sweep...), input)...)
	require.NoError(t, err)

	for _, id := range []string{"Random_8_7_16", "RelativeOffset_8_7_16"} {
		a, err := os.ReadFile(filepath.Join(outA, id+".jpg"))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(outB, id+".jpg"))
		require.NoError(t, err)
		assert.Equal(t, a, b, id)
	}
}

func TestCorruptCommandMissingInput(t *testing.T) {
	_, err := execute(t, "corrupt", filepath.Join(t.TempDir(), "missing.jpg"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input not found")
}

func TestCorruptCommandLogs(t *testing.T) {
	input := writeTestJPEG(t)
	logDir := filepath.Join(t.TempDir(), "logs")

	_, logs, err := executeWithLogs(t, "corrupt",
		"--seed", "9", "--log-level", "debug", "--log-dir", logDir,
		"--overwrites-min", "2", "--overwrites-max", "3",
		"--offset-min", "2", "--offset-max", "3",
		"--gap-min", "2", "--gap-max", "3",
		input,
	)
	require.NoError(t, err)
	assert.Contains(t, logs, "Sweep configuration")
	assert.Contains(t, logs, "Statistics update")
	assert.Contains(t, logs, "Log files retained")

	entries, err := os.ReadDir(logDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, logs, err = executeWithLogs(t, "corrupt", filepath.Join(t.TempDir(), "missing.jpg"))
	require.Error(t, err)
	assert.Contains(t, logs, "Sweep failed")
}

func TestCorruptCommandBadSweep(t *testing.T) {
	_, err := execute(t, "corrupt", "--kinds", "sideways", writeTestJPEG(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, strategies.ErrInvalidStrategy)
}

func TestScanCommand(t *testing.T) {
	out, err := execute(t, "scan", writeTestJPEG(t))
	require.NoError(t, err)
	assert.Contains(t, out, "photo.jpg")
	assert.Contains(t, out, "SCANS 1")
}

func TestStrategiesCommand(t *testing.T) {
	out, err := execute(t, "strategies")
	require.NoError(t, err)
	assert.Contains(t, out, "Random_16_3_128")
	assert.Contains(t, out, "144 strategies")

	out, err = execute(t, "strategies", "--placements", "constant,random", "--kinds", "random")
	require.NoError(t, err)
	assert.Contains(t, out, "Random_Constant_16_3")
	assert.Contains(t, out, "24 strategies")
}

func TestStrategiesCommandEnvOverride(t *testing.T) {
	t.Setenv("GLITCH_SWEEP_KINDS", "relative-offset")

	out, err := execute(t, "strategies")
	require.NoError(t, err)
	assert.Contains(t, out, "72 strategies")
	assert.NotContains(t, out, "Random_16_3_128")
}

func TestProbeCommand(t *testing.T) {
	good := writeTestJPEG(t)
	bad := filepath.Join(t.TempDir(), "bad.jpg")
	require.NoError(t, os.WriteFile(bad, []byte("not a jpeg"), 0644))

	out, err := execute(t, "probe", good, bad)
	require.NoError(t, err)
	assert.Contains(t, out, "64x48")
	assert.Contains(t, out, "stdlib=ok jpegn=ok")
	assert.Contains(t, out, "stdlib=error jpegn=error")
	assert.Contains(t, strings.ToLower(out), "1 failed")
	assert.Contains(t, strings.ToLower(out), "0 disagree")
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"gap", "random", "constant"}, splitList([]string{"gap, random", " constant ", ""}))
	assert.Empty(t, splitList(nil))
}
