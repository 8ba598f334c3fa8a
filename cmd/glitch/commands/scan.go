/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: scan.go
Description: Scan command implementation for glitch. Detects the entropy-coded scan
ranges of each file and prints them without writing anything.
*/

package commands

import (
	"fmt"
	"os"

	"github.com/prayerslayer/glitch/pkg/core"
	"github.com/prayerslayer/glitch/pkg/jpeg"
	"github.com/prayerslayer/glitch/pkg/reporting"
	"github.com/spf13/cobra"
)

// RunScan prints the scan ranges of every file argument
func RunScan(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := SetupLogging(cmd)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer logger.Close()

	detector := jpeg.NewDetector(DetectorOptions(), logger.GetLogger())

	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("%w: %w", core.ErrInputNotFound, err)
		}

		ranges := detector.Detect(data)
		for i, r := range ranges {
			logger.LogScan(path, i, r.Start, r.End)
		}

		printf(cmd, "%s\n", path)
		if err := reporting.RenderRanges(cmd.OutOrStdout(), data, ranges); err != nil {
			return err
		}
	}

	return nil
}
