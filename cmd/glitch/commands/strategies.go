/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: strategies.go
Description: Strategies command implementation for glitch. Lists the strategy ids the
configured sweep expands to, in run order.
*/

package commands

import (
	"fmt"

	"github.com/prayerslayer/glitch/pkg/strategies"
	"github.com/spf13/cobra"
)

// ListStrategies prints one strategy per line
func ListStrategies(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	sweep, err := SweepConfig()
	if err != nil {
		return fmt.Errorf("invalid sweep configuration: %w", err)
	}
	list, err := sweep.Strategies()
	if err != nil {
		return fmt.Errorf("failed to expand sweep: %w", err)
	}

	for _, s := range list {
		mutator := strategies.NewScanMutator(s, nil, nil)
		printf(cmd, "%-32s %s\n", s.ID(), mutator.Description())
	}
	printf(cmd, "\n%d strategies\n", len(list))
	return nil
}
