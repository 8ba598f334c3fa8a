/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: summary.go
Description: Terminal and manifest reporting for glitch runs. Renders the artifact
table and the detected scan ranges with tablewriter and writes the run manifest
next to the artifacts.
*/

package reporting

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"github.com/olekukonko/tablewriter"
	"github.com/prayerslayer/glitch/pkg/core"
	"github.com/prayerslayer/glitch/pkg/jpeg"
)

// ManifestName is the manifest file written into the output directory
const ManifestName = "manifest.json"

// previewBytes is how many entropy bytes RenderRanges shows per range
const previewBytes = 8

// RenderSummary writes one row per artifact with a totals footer
func RenderSummary(w io.Writer, report *core.RunReport) error {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Strategy", "Overwrites", "Changed", "Probe", "Decoders", "Agree", "Path"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_LEFT,
	})

	changed := 0
	probeFailures := 0
	disagreements := 0
	probed := false
	for _, res := range report.Results {
		probe, verdicts, agree := "-", "-", "-"
		if res.Probe != nil {
			probed = true
			probe = string(res.Probe.Status)
			verdicts = res.Probe.Verdicts()
			agree = "yes"
			if !res.Probe.OK() {
				probeFailures++
			}
			if !res.Probe.Agree {
				agree = "no"
				disagreements++
			}
		}
		changed += res.BytesChanged
		table.Append([]string{
			res.StrategyID,
			fmt.Sprintf("%d", res.Overwrites),
			fmt.Sprintf("%d", res.BytesChanged),
			probe,
			verdicts,
			agree,
			res.Path,
		})
	}

	probeFooter, agreeFooter := "-", "-"
	if probed {
		probeFooter = fmt.Sprintf("%d failed", probeFailures)
		agreeFooter = fmt.Sprintf("%d disagree", disagreements)
	}
	table.SetFooter([]string{
		fmt.Sprintf("Artifacts %d", len(report.Results)),
		fmt.Sprintf("%d", report.TotalOverwrites()),
		fmt.Sprintf("%d", changed),
		probeFooter,
		"",
		agreeFooter,
		"",
	})

	table.Render()
	_, err := fmt.Fprintf(w, "\n%s", buf.String())
	return err
}

// RenderRanges writes the scan ranges detected in data
func RenderRanges(w io.Writer, data []byte, ranges []jpeg.ScanRange) error {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Scan", "Start", "End", "Interior", "First bytes"})
	table.SetBorder(false)
	table.SetCenterSeparator("")

	var interior uint64
	for i, r := range ranges {
		interior += r.Interior()
		table.Append([]string{
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%d", r.Start),
			fmt.Sprintf("%d", r.End),
			fmt.Sprintf("%d", r.Interior()),
			preview(data, r),
		})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Scans %d", len(ranges)),
		"",
		"",
		fmt.Sprintf("%d", interior),
		fmt.Sprintf("of %d bytes", len(data)),
	})

	table.Render()
	_, err := fmt.Fprintf(w, "\n%s", buf.String())
	return err
}

func preview(data []byte, r jpeg.ScanRange) string {
	end := r.Start + previewBytes
	if end > r.End {
		end = r.End
	}
	if end > uint64(len(data)) || r.Start >= end {
		return ""
	}
	return hex.EncodeToString(data[r.Start:end])
}

// WriteManifest stores report as JSON in dir and returns the manifest path
func WriteManifest(dir string, report *core.RunReport) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode manifest: %w", err)
	}

	path := filepath.Join(dir, ManifestName)
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("%w: %s: %w", core.ErrOutputWriteFailed, path, err)
	}
	return path, nil
}

// ReadManifest loads a manifest written by WriteManifest
func ReadManifest(path string) (*core.RunReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var report core.RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return &report, nil
}
