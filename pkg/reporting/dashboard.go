/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: dashboard.go
Description: HTML gallery for glitch runs. Renders every artifact of a run as a card
with its strategy parameters, overwrite counts and decode probe, next to the original,
so a whole sweep can be compared in one browser tab.
*/

package reporting

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"
	"github.com/prayerslayer/glitch/pkg/core"
	"github.com/prayerslayer/glitch/pkg/jpeg"
	"github.com/sirupsen/logrus"
)

// GalleryName is the gallery page written into the output directory
const GalleryName = "index.html"

// DashboardGenerator renders run galleries
type DashboardGenerator struct {
	outputDir string
	logger    *logrus.Logger
	templates *template.Template
}

// DashboardData contains all data for gallery generation
type DashboardData struct {
	Title       string           `json:"title"`
	GeneratedAt time.Time        `json:"generated_at"`
	RunID       string           `json:"run_id"`
	Input       string           `json:"input"`
	Original    string           `json:"original"` // Input path relative to the gallery
	InputSize   int              `json:"input_size"`
	Seed        int64            `json:"seed"`
	Duration    time.Duration    `json:"duration"`
	Ranges      []jpeg.ScanRange `json:"ranges"`
	Stats       *GalleryStats    `json:"stats"`
	Items       []GalleryItem    `json:"items"`
}

// GalleryStats contains run totals shown in the header
type GalleryStats struct {
	Artifacts     int  `json:"artifacts"`
	Overwrites    int  `json:"overwrites"`
	BytesChanged  int  `json:"bytes_changed"`
	Probed        bool `json:"probed"`
	Decodable     int  `json:"decodable"`
	ProbeFailures int  `json:"probe_failures"`
	Disagreements int  `json:"disagreements"`
}

// GalleryItem is one artifact card
type GalleryItem struct {
	StrategyID   string `json:"strategy_id"`
	File         string `json:"file"` // Relative to the gallery
	Placement    string `json:"placement"`
	Overwrite    string `json:"overwrite"`
	Overwrites   int    `json:"overwrites"`
	BytesChanged int    `json:"bytes_changed"`
	Probe        string `json:"probe"`
	ProbeError   string `json:"probe_error,omitempty"`
	Decoders     string `json:"decoders,omitempty"`
	Disagree     bool   `json:"disagree"`
}

// NewDashboardGenerator creates a new gallery generator
func NewDashboardGenerator(outputDir string, logger *logrus.Logger) *DashboardGenerator {
	if logger == nil {
		logger = logrus.New()
	}
	return &DashboardGenerator{
		outputDir: outputDir,
		logger:    logger,
		templates: template.Must(template.New("gallery").Parse(galleryTemplate)),
	}
}

// BuildDashboardData converts a run report into gallery data
func (dg *DashboardGenerator) BuildDashboardData(report *core.RunReport) *DashboardData {
	data := &DashboardData{
		Title:       filepath.Base(report.Input),
		GeneratedAt: time.Now(),
		RunID:       report.RunID,
		Input:       report.Input,
		Original:    dg.relative(report.Input),
		InputSize:   report.InputSize,
		Seed:        report.Seed,
		Duration:    report.Duration,
		Ranges:      report.Ranges,
		Stats:       &GalleryStats{Artifacts: len(report.Results)},
	}

	for _, res := range report.Results {
		item := GalleryItem{
			StrategyID:   res.StrategyID,
			File:         dg.relative(res.Path),
			Placement:    res.Strategy.Placement.String(),
			Overwrite:    res.Strategy.Overwrite.String(),
			Overwrites:   res.Overwrites,
			BytesChanged: res.BytesChanged,
			Probe:        "-",
		}
		data.Stats.Overwrites += res.Overwrites
		data.Stats.BytesChanged += res.BytesChanged

		if res.Probe != nil {
			data.Stats.Probed = true
			item.Probe = string(res.Probe.Status)
			item.ProbeError = res.Probe.Error
			item.Decoders = res.Probe.Verdicts()
			item.Disagree = !res.Probe.Agree
			if item.Disagree {
				data.Stats.Disagreements++
			}
			if res.Probe.OK() {
				data.Stats.Decodable++
			} else {
				data.Stats.ProbeFailures++
			}
		}
		data.Items = append(data.Items, item)
	}

	return data
}

// GenerateDashboard writes the gallery page for report and returns its path
func (dg *DashboardGenerator) GenerateDashboard(report *core.RunReport) (string, error) {
	if err := os.MkdirAll(dg.outputDir, 0755); err != nil {
		return "", fmt.Errorf("%w: %s: %w", core.ErrOutputDirectoryUnwritable, dg.outputDir, err)
	}

	data := dg.BuildDashboardData(report)

	var buf bytes.Buffer
	if err := dg.templates.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	outputFile := filepath.Join(dg.outputDir, GalleryName)
	if err := atomic.WriteFile(outputFile, &buf); err != nil {
		return "", fmt.Errorf("%w: %s: %w", core.ErrOutputWriteFailed, outputFile, err)
	}

	dg.logger.WithFields(logrus.Fields{
		"gallery":   outputFile,
		"artifacts": len(data.Items),
	}).Info("Gallery generated")
	return outputFile, nil
}

// relative returns path relative to the gallery directory, or the
// absolute path when no relative form exists.
func (dg *DashboardGenerator) relative(path string) string {
	absDir, err := filepath.Abs(dg.outputDir)
	if err != nil {
		return path
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(absDir, absPath)
	if err != nil {
		return absPath
	}
	return filepath.ToSlash(rel)
}
