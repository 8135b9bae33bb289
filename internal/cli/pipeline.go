package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/planbiir/gpxpack/internal/analyze"
	"github.com/planbiir/gpxpack/internal/processor"
	"github.com/planbiir/gpxpack/internal/validate"
)

var (
	shrinkOutput  string
	inflateOutput string
	processOutput string
	analyzeJSON   bool
)

var validateCmd = &cobra.Command{
	Use:   "validate <file.gpx>",
	Short: "Check that a file passes the pre-flight gate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(args[0])
		if err != nil {
			return err
		}
		if err := validate.Check(text); err != nil {
			cmd.Printf("invalid: %v\n", err)
			return err
		}
		cmd.Println("valid")
		return nil
	},
}

var shrinkCmd = &cobra.Command{
	Use:   "shrink <file.gpx>",
	Short: "Reduce and gzip a GPX file",
	Long: `Reduces every track point to two-decimal coordinates and writes the
gzipped result. The output defaults to <input>.gpxz.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(args[0])
		if err != nil {
			return err
		}

		data, err := processor.ReduceCompressGPX(text)
		if err != nil {
			return err
		}

		out := shrinkOutput
		if out == "" {
			out = defaultOutput(args[0], ".gpxz")
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}

		cmd.Printf("%s: %d -> %d bytes\n", out, len(text), len(data))
		return nil
	},
}

var inflateCmd = &cobra.Command{
	Use:   "inflate <file.gpxz>",
	Short: "Decompress a shrunk file back to its reduced text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}

		text, err := processor.DecompressGPX(data)
		if err != nil {
			return err
		}

		if inflateOutput == "" {
			cmd.Println(text)
			return nil
		}
		if err := os.WriteFile(inflateOutput, []byte(text), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", inflateOutput, err)
		}
		return nil
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file.gpx>",
	Short: "Report what the pipeline does to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(args[0])
		if err != nil {
			return err
		}

		analysis, err := processor.AnalyzeGPX(text)
		if err != nil {
			return err
		}

		if analyzeJSON {
			return printJSON(cmd, analysis)
		}
		printAnalysis(cmd, analysis)
		return nil
	},
}

var processCmd = &cobra.Command{
	Use:   "process <file.gpx>",
	Short: "Analyze a file and write its shrunk form",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(args[0])
		if err != nil {
			return err
		}

		result, err := processor.ProcessGPXWithAnalytics(text)
		if err != nil {
			return err
		}

		out := processOutput
		if out == "" {
			out = defaultOutput(args[0], ".gpxz")
		}
		if err := os.WriteFile(out, result.Data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}

		return printJSON(cmd, result.Analysis)
	},
}

func init() {
	shrinkCmd.Flags().StringVarP(&shrinkOutput, "output", "o", "", "output file (default <input>.gpxz)")
	inflateCmd.Flags().StringVarP(&inflateOutput, "output", "o", "", "output file (default stdout)")
	processCmd.Flags().StringVarP(&processOutput, "output", "o", "", "output file (default <input>.gpxz)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the analysis as JSON")

	rootCmd.AddCommand(validateCmd, shrinkCmd, inflateCmd, analyzeCmd, processCmd)
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func printAnalysis(cmd *cobra.Command, a analyze.Analysis) {
	cmd.Printf("Size:        %d -> %d -> %d bytes (%.1f%% saved)\n",
		a.OriginalSizeBytes, a.ReducedSizeBytes, a.CompressedSizeBytes, a.CompressionRatio*100)
	cmd.Printf("Points:      %d (%d tracks, %d segments)\n", a.PointCount, a.TracksCount, a.SegmentsCount)
	if a.ElevationRange != nil {
		cmd.Printf("Elevation:   %.1f .. %.1f m\n", a.ElevationRange.Min(), a.ElevationRange.Max())
	}
	if b := a.BoundingBox; b != nil {
		cmd.Printf("Bounds:      %.5f,%.5f .. %.5f,%.5f\n", b.MinLat, b.MinLon, b.MaxLat, b.MaxLon)
	}
	cmd.Printf("Distance:    %.2f km\n", a.DistanceKm)
	if a.DurationSec > 0 {
		cmd.Printf("Duration:    %.0f s\n", a.DurationSec)
	}
	if a.DecompressedValid {
		cmd.Printf("Round trip:  ok (%d bytes)\n", a.DecompressedSize)
	} else if a.DecompressedError != nil {
		cmd.Printf("Round trip:  failed: %s\n", *a.DecompressedError)
	}
}
