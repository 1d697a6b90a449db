package landmarkio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ExportFile parses a landmark file and writes a normalized bundle.
// Output files:
//   - manifest.json
//   - frames.jsonl
//   - source.json (optional)
func ExportFile(inputPath, outputDir string, opts ExportOptions) (*ExportResult, error) {
	if strings.TrimSpace(outputDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}

	bundle, err := ParseFile(inputPath)
	if err != nil {
		return nil, err
	}

	if err := EnsureOutputDir(outputDir, opts.Overwrite); err != nil {
		return nil, err
	}
	return WriteBundle(bundle, inputPath, outputDir, opts)
}

// WriteBundle writes manifest.json and frames.jsonl for an already parsed
// bundle into an existing directory.
func WriteBundle(bundle *ParsedBundle, inputPath, outputDir string, opts ExportOptions) (*ExportResult, error) {
	framesPath := filepath.Join(outputDir, "frames.jsonl")
	if err := writeFramesJSONL(framesPath, bundle); err != nil {
		return nil, fmt.Errorf("write frames.jsonl: %w", err)
	}

	manifest := BuildManifest(bundle, inputPath, time.Now())
	manifestPath := filepath.Join(outputDir, "manifest.json")
	if err := writeJSON(manifestPath, manifest); err != nil {
		return nil, fmt.Errorf("write manifest.json: %w", err)
	}

	sourceCopyPath := ""
	if opts.CopySourceFile && inputPath != "" {
		sourceCopyPath = filepath.Join(outputDir, "source"+sourceExt(inputPath))
		if err := copyFile(inputPath, sourceCopyPath); err != nil {
			return nil, fmt.Errorf("copy source landmark file: %w", err)
		}
	}

	return &ExportResult{
		OutputDir:       outputDir,
		ManifestPath:    manifestPath,
		FramesPath:      framesPath,
		SourceCopyPath:  sourceCopyPath,
		FrameCount:      len(bundle.Frames),
		DetectedFrames:  bundle.DetectedFrames,
		DroppedFrames:   bundle.DroppedFrames,
		SourceSHA256:    bundle.SourceSHA256,
		SourceSizeBytes: bundle.SourceSizeBytes,
	}, nil
}

// EnsureOutputDir creates path and refuses a non-empty directory unless overwrite is set.
func EnsureOutputDir(path string, overwrite bool) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("read output directory: %w", err)
	}
	if len(entries) > 0 && !overwrite {
		return fmt.Errorf("output directory is not empty: %s (set overwrite=true to allow)", path)
	}
	return nil
}

func sourceExt(path string) string {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".jsonl", ".ndjson":
		return ".jsonl"
	default:
		return ".json"
	}
}

func writeJSON(path string, v any) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func writeFramesJSONL(path string, bundle *ParsedBundle) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := encodeJSONL(f, bundle); err != nil {
		return err
	}
	return f.Sync()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
