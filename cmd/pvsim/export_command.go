package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandiegoi-PV/AI-PVSim/landmarkio"
)

func newExportCommand() *cobra.Command {
	var outDir string
	var overwrite bool
	var copySource bool

	cmd := &cobra.Command{
		Use:         "export <landmarks>",
		Short:       "Normalize a landmark file into frames.jsonl and manifest.json",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			inputPath := args[0]
			if strings.TrimSpace(outDir) == "" {
				base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
				outDir = filepath.Join(".", "exports", base+"_"+landmarkio.ExportFormatVersion)
			}

			result, err := landmarkio.ExportFile(inputPath, outDir, landmarkio.ExportOptions{
				Overwrite:      overwrite,
				CopySourceFile: copySource,
			})
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Output dir: %s\n", result.OutputDir)
			fmt.Fprintf(out, "Manifest:   %s\n", result.ManifestPath)
			fmt.Fprintf(out, "Frames:     %s\n", result.FramesPath)
			if result.SourceCopyPath != "" {
				fmt.Fprintf(out, "Source:     %s\n", result.SourceCopyPath)
			}
			fmt.Fprintf(out, "Frames:     %d (%d with pose, %d dropped as incomplete)\n", result.FrameCount, result.DetectedFrames, result.DroppedFrames)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (default ./exports/<name>_<format version>)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", true, "Allow writing to non-empty output directories")
	cmd.Flags().BoolVar(&copySource, "copy-source", true, "Copy the original landmark file into the export directory")
	return cmd
}
