/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: corrupt.go
Description: Corrupt command implementation for glitch. Expands the configured sweep,
runs it over one JPEG and writes the artifacts, manifest, optional gallery and a
summary table.
*/

package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/prayerslayer/glitch/pkg/core"
	"github.com/prayerslayer/glitch/pkg/reporting"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RunCorrupt runs the strategy sweep over the input file. The input is the
// last positional argument.
func RunCorrupt(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing input file")
	}
	input := args[len(args)-1]

	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := SetupLogging(cmd)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer logger.Close()

	sweep, err := SweepConfig()
	if err != nil {
		return fmt.Errorf("invalid sweep configuration: %w", err)
	}
	list, err := sweep.Strategies()
	if err != nil {
		return fmt.Errorf("failed to expand sweep: %w", err)
	}

	logger.Debug("Sweep configuration", map[string]interface{}{
		"overwrites": fmt.Sprintf("2^[%d,%d)", sweep.OverwritesMin, sweep.OverwritesMax),
		"offsets":    fmt.Sprintf("2^[%d,%d)-1", sweep.OffsetMin, sweep.OffsetMax),
		"gaps":       fmt.Sprintf("2^[%d,%d)", sweep.GapMin, sweep.GapMax),
		"placements": len(sweep.Placements),
		"kinds":      len(sweep.Kinds),
	})

	workers := viper.GetInt("workers")
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	engine := core.NewEngine(core.Options{
		Workers:   workers,
		Seed:      viper.GetInt64("seed"),
		Detector:  DetectorOptions(),
		OutputDir: viper.GetString("output_dir"),
		Probe:     viper.GetBool("probe"),
	})
	engine.SetLogger(logger.GetLogger())
	engine.AddReporter(core.NewLoggerReporter(logger))
	if err := engine.SetStrategies(list); err != nil {
		return err
	}

	logger.LogSweep(input, len(list), workers, viper.GetInt64("seed"), map[string]interface{}{
		"all_scans":      viper.GetBool("all_scans"),
		"flush_trailing": viper.GetBool("flush_trailing"),
		"probe":          viper.GetBool("probe"),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := engine.Run(ctx, input)
	if err != nil {
		logger.Error("Sweep failed", map[string]interface{}{"input": input, "error": err.Error()})
		return err
	}

	if viper.GetBool("manifest") {
		path, err := reporting.WriteManifest(report.OutputDir, report)
		if err != nil {
			return err
		}
		logger.Info("Manifest written", map[string]interface{}{"path": path})
	}

	if viper.GetBool("gallery") {
		generator := reporting.NewDashboardGenerator(report.OutputDir, logger.GetLogger())
		if _, err := generator.GenerateDashboard(report); err != nil {
			return err
		}
	}

	if err := reporting.RenderSummary(cmd.OutOrStdout(), report); err != nil {
		return err
	}
	printf(cmd, "\nseed %d, %d scan range(s), %d artifact(s) in %s\n",
		report.Seed, len(report.Ranges), len(report.Results), report.Duration)

	stats := engine.GetStats()
	if stats.ProbeFailures > 0 || stats.Disagreements > 0 {
		logger.Warning("Decoders rejected or split on artifacts", map[string]interface{}{
			"probe_failures": stats.ProbeFailures,
			"disagreements":  stats.Disagreements,
		})
	}
	logger.LogStats(stats.Inputs, stats.Artifacts, stats.Overwrites, stats.ProbeFailures, map[string]interface{}{
		"disagreements": stats.Disagreements,
	})

	return nil
}
