// Package cli holds the gpxpack command tree.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/planbiir/gpxpack/internal/codec"
	"github.com/planbiir/gpxpack/internal/config"
	"github.com/planbiir/gpxpack/internal/gpx"
	"github.com/planbiir/gpxpack/internal/logger"
	"github.com/planbiir/gpxpack/internal/upload"
)

var (
	configPath string
	logLevel   string
	verbose    bool

	// cfg is filled by the root pre-run hook.
	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "gpxpack",
	Short: "Shrink, inspect and restore GPX track logs",
	Long: `gpxpack reduces GPX track logs to a compact coordinate form,
gzips the result and reports what the reduction saved.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (yaml, toml or json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "shorthand for --log-level debug")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg = loaded

	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	if verbose {
		level = "debug"
	}

	logger.Init(logger.Options{
		Level:  level,
		Format: cfg.LogFormat,
		Output: cmd.ErrOrStderr(),
	})
	return nil
}

// readInput loads a local file as GPX text. Only the .gz suffix matters
// here; the stricter upload file-name rules apply to the HTTP surface.
func readInput(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	if upload.IsCompressed(path) {
		return codec.DecompressLimit(data, gpx.MaxInputBytes)
	}
	if len(data) > gpx.MaxInputBytes {
		return "", gpx.ErrInputTooLarge
	}
	return string(data), nil
}

// defaultOutput replaces the .gpx or .gpx.gz suffix of path with ext.
func defaultOutput(path, ext string) string {
	base := path
	for _, suffix := range []string{".gz", ".gpx"} {
		if filepath.Ext(base) == suffix {
			base = base[:len(base)-len(suffix)]
		}
	}
	return base + ext
}
