/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: probe.go
Description: Probe command implementation for glitch. Decodes existing artifacts with
every configured decoder and reports which ones still decode and where the decoders
disagree.
*/

package commands

import (
	"bytes"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/prayerslayer/glitch/pkg/analysis"
	"github.com/spf13/cobra"
)

// RunProbe decodes every file argument and prints a status table
func RunProbe(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := SetupLogging(cmd)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer logger.Close()

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"File", "Status", "Size", "Decoders", "Agree", "Error"})
	table.SetBorder(false)
	table.SetCenterSeparator("")

	prober := analysis.NewProber()
	failures, disagreements := 0, 0
	for _, path := range args {
		result, err := prober.File(path)
		if err != nil {
			logger.Error("Probe could not read file", map[string]interface{}{"path": path, "error": err.Error()})
			return err
		}
		logger.LogProbe(path, string(result.Status), map[string]interface{}{
			"error":    result.Error,
			"agree":    result.Agree,
			"decoders": result.Verdicts(),
		})

		size := "-"
		if result.OK() {
			size = fmt.Sprintf("%dx%d", result.Width, result.Height)
		} else {
			failures++
		}
		agree := "yes"
		if !result.Agree {
			agree = "no"
			disagreements++
		}
		table.Append([]string{path, string(result.Status), size, result.Verdicts(), agree, result.Error})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Files %d", len(args)),
		fmt.Sprintf("%d failed", failures),
		"",
		"",
		fmt.Sprintf("%d disagree", disagreements),
		"",
	})
	table.Render()
	printf(cmd, "\n%s", buf.String())
	return nil
}
