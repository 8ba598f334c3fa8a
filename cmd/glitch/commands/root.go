/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: root.go
Description: Command tree for glitch. Declares every flag and binds it to the viper
key the command implementations read.
*/

package commands

import (
	"github.com/prayerslayer/glitch/pkg/core"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCommand builds the glitch command tree
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "glitch",
		Short: "glitch - JPEG scan data corruptor",
		Long: `glitch finds the entropy-coded scan data of a JPEG file and writes one
corrupted copy per strategy of a parameter sweep. Headers and markers are left
intact so most artifacts still decode, with visible glitches.`,
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags
	rootCmd.PersistentFlags().String("config", "", "Configuration file path")
	rootCmd.PersistentFlags().String("log-level", "info", "Logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-dir", "", "Log output directory (empty disables log files)")
	rootCmd.PersistentFlags().String("log-format", "custom", "Log format (text, json, custom)")
	rootCmd.PersistentFlags().Int("log-max-files", 10, "Maximum number of log files to keep")
	rootCmd.PersistentFlags().Bool("log-compress", false, "Compress older log files")
	rootCmd.PersistentFlags().Bool("log-colors", true, "Colorize console log output")
	rootCmd.PersistentFlags().Bool("all-scans", false, "Keep scanning after the first scan range")
	rootCmd.PersistentFlags().Bool("flush-trailing", false, "Report a scan that runs to end of file")

	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_dir", rootCmd.PersistentFlags().Lookup("log-dir"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("log_max_files", rootCmd.PersistentFlags().Lookup("log-max-files"))
	viper.BindPFlag("log_compress", rootCmd.PersistentFlags().Lookup("log-compress"))
	viper.BindPFlag("log_colors", rootCmd.PersistentFlags().Lookup("log-colors"))
	viper.BindPFlag("all_scans", rootCmd.PersistentFlags().Lookup("all-scans"))
	viper.BindPFlag("flush_trailing", rootCmd.PersistentFlags().Lookup("flush-trailing"))

	// Sweep flags are shared by corrupt and strategies
	defaults := core.DefaultSweepConfig()
	rootCmd.PersistentFlags().Int("overwrites-min", defaults.OverwritesMin, "Smallest overwrite count exponent (2^k)")
	rootCmd.PersistentFlags().Int("overwrites-max", defaults.OverwritesMax, "Overwrite count exponent bound, exclusive")
	rootCmd.PersistentFlags().Int("offset-min", defaults.OffsetMin, "Smallest max-offset exponent (2^k - 1)")
	rootCmd.PersistentFlags().Int("offset-max", defaults.OffsetMax, "Max-offset exponent bound, exclusive")
	rootCmd.PersistentFlags().Int("gap-min", defaults.GapMin, "Smallest gap exponent ([2^k, 2^(k+1)])")
	rootCmd.PersistentFlags().Int("gap-max", defaults.GapMax, "Gap exponent bound, exclusive")
	rootCmd.PersistentFlags().StringSlice("placements", []string{"gap"}, "Placements to sweep (gap, constant, random)")
	rootCmd.PersistentFlags().StringSlice("kinds", []string{"random", "relative-offset"}, "Overwrite kinds to sweep (random, relative-offset)")

	viper.BindPFlag("sweep.overwrites_min", rootCmd.PersistentFlags().Lookup("overwrites-min"))
	viper.BindPFlag("sweep.overwrites_max", rootCmd.PersistentFlags().Lookup("overwrites-max"))
	viper.BindPFlag("sweep.offset_min", rootCmd.PersistentFlags().Lookup("offset-min"))
	viper.BindPFlag("sweep.offset_max", rootCmd.PersistentFlags().Lookup("offset-max"))
	viper.BindPFlag("sweep.gap_min", rootCmd.PersistentFlags().Lookup("gap-min"))
	viper.BindPFlag("sweep.gap_max", rootCmd.PersistentFlags().Lookup("gap-max"))
	viper.BindPFlag("sweep.placements", rootCmd.PersistentFlags().Lookup("placements"))
	viper.BindPFlag("sweep.kinds", rootCmd.PersistentFlags().Lookup("kinds"))

	// Corrupt command
	corruptCmd := &cobra.Command{
		Use:   "corrupt [flags] <file>",
		Short: "Write one corrupted copy of a JPEG per sweep strategy",
		Long: `Detect the scan ranges of a JPEG once, then run every strategy of the sweep
over them. Artifacts are written to <file>-bad/<strategy-id>.jpg unless --output
is given. The same --seed reproduces the same artifacts.`,
		Args: cobra.MinimumNArgs(1),
		RunE: RunCorrupt,
	}

	corruptCmd.Flags().Int("workers", 0, "Number of parallel strategy jobs (0 = auto-detect)")
	corruptCmd.Flags().Int64("seed", 0, "Base random seed (0 = derive from the clock)")
	corruptCmd.Flags().String("output", "", "Artifact directory (default <file>-bad)")
	corruptCmd.Flags().Bool("probe", false, "Decode every artifact after writing it")
	corruptCmd.Flags().Bool("manifest", true, "Write manifest.json next to the artifacts")
	corruptCmd.Flags().Bool("gallery", false, "Write an index.html gallery next to the artifacts")

	viper.BindPFlag("workers", corruptCmd.Flags().Lookup("workers"))
	viper.BindPFlag("seed", corruptCmd.Flags().Lookup("seed"))
	viper.BindPFlag("output_dir", corruptCmd.Flags().Lookup("output"))
	viper.BindPFlag("probe", corruptCmd.Flags().Lookup("probe"))
	viper.BindPFlag("manifest", corruptCmd.Flags().Lookup("manifest"))
	viper.BindPFlag("gallery", corruptCmd.Flags().Lookup("gallery"))

	rootCmd.AddCommand(corruptCmd)

	// Scan command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "scan <file>...",
		Short: "Print the scan ranges of JPEG files",
		Long: `Run scan detection only and print each detected range with its interior
size and first entropy bytes. Nothing is written.`,
		Args: cobra.MinimumNArgs(1),
		RunE: RunScan,
	})

	// Strategies command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "strategies",
		Short: "List the strategies the sweep expands to",
		Long: `List every strategy id of the configured sweep in run order. Ids double as
artifact file names.`,
		Args: cobra.NoArgs,
		RunE: ListStrategies,
	})

	// Probe command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "probe <file>...",
		Short: "Check which artifacts still decode",
		Long: `Decode each file with a JPEG decoder and report ok, error or panic along
with the decoded dimensions.`,
		Args: cobra.MinimumNArgs(1),
		RunE: RunProbe,
	})

	return rootCmd
}
