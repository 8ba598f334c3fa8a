/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Shared utilities for the glitch commands. Provides configuration loading,
logging setup and the translation of viper keys into detector, engine and sweep
settings used across all command implementations.
*/

package commands

import (
	"fmt"
	"strings"

	"github.com/prayerslayer/glitch/pkg/core"
	"github.com/prayerslayer/glitch/pkg/jpeg"
	"github.com/prayerslayer/glitch/pkg/logging"
	"github.com/prayerslayer/glitch/pkg/strategies"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. GLITCH_WORKERS
const EnvPrefix = "GLITCH"

// LoadConfig loads configuration from files and environment
func LoadConfig() error {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	return nil
}

// SetupLogging builds the glitch logger from the log_* keys. Console output
// goes to the command's stderr so tables on stdout stay clean.
func SetupLogging(cmd *cobra.Command) (*logging.Logger, error) {
	config := &logging.LoggerConfig{
		Level:     logging.LogLevel(viper.GetString("log_level")),
		Format:    logging.LogFormat(viper.GetString("log_format")),
		OutputDir: viper.GetString("log_dir"),
		MaxFiles:  viper.GetInt("log_max_files"),
		Timestamp: true,
		Caller:    viper.GetString("log_level") == string(logging.LogLevelDebug),
		Colors:    viper.GetBool("log_colors"),
		Compress:  viper.GetBool("log_compress"),
		Console:   cmd.ErrOrStderr(),
	}
	if config.Level == "" {
		config.Level = logging.LogLevelInfo
	}
	if config.Format == "" {
		config.Format = logging.LogFormatCustom
	}
	if config.OutputDir != "" && config.MaxFiles <= 0 {
		config.MaxFiles = 10
	}

	logger, err := logging.NewLogger(config)
	if err != nil {
		return nil, fmt.Errorf("invalid logging configuration: %w", err)
	}
	return logger, nil
}

// DetectorOptions reads the scan detection keys
func DetectorOptions() jpeg.Options {
	return jpeg.Options{
		StopAfterFirstScan: !viper.GetBool("all_scans"),
		FlushTrailingScan:  viper.GetBool("flush_trailing"),
	}
}

// SweepConfig reads the sweep.* keys, falling back to the default grid
func SweepConfig() (core.SweepConfig, error) {
	cfg := core.DefaultSweepConfig()

	intKeys := map[string]*int{
		"sweep.overwrites_min": &cfg.OverwritesMin,
		"sweep.overwrites_max": &cfg.OverwritesMax,
		"sweep.offset_min":     &cfg.OffsetMin,
		"sweep.offset_max":     &cfg.OffsetMax,
		"sweep.gap_min":        &cfg.GapMin,
		"sweep.gap_max":        &cfg.GapMax,
	}
	for key, target := range intKeys {
		if viper.IsSet(key) {
			*target = viper.GetInt(key)
		}
	}

	if names := splitList(viper.GetStringSlice("sweep.placements")); len(names) > 0 {
		cfg.Placements = nil
		for _, name := range names {
			p, err := strategies.ParsePlacement(name)
			if err != nil {
				return cfg, err
			}
			cfg.Placements = append(cfg.Placements, p)
		}
	}

	if names := splitList(viper.GetStringSlice("sweep.kinds")); len(names) > 0 {
		cfg.Kinds = nil
		for _, name := range names {
			k, err := strategies.ParseOverwriteKind(name)
			if err != nil {
				return cfg, err
			}
			cfg.Kinds = append(cfg.Kinds, k)
		}
	}

	return cfg, cfg.Validate()
}

// splitList flattens comma-separated entries, which env overrides produce
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// printf writes to the command's stdout
func printf(cmd *cobra.Command, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
