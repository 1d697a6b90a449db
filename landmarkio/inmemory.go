package landmarkio

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	pvsim "github.com/sandiegoi-PV/AI-PVSim"
)

// ParsedBundle is the in-memory representation of a decoded landmark source.
type ParsedBundle struct {
	Video           pvsim.VideoInfo
	SourceFormat    string
	Frames          []pvsim.LandmarkFrame
	DetectedFrames  int
	DroppedFrames   int
	Warnings        []string
	SourceSHA256    string
	SourceSizeBytes int64
}

// ParseBytes parses a landmark JSON document or JSONL stream.
func ParseBytes(data []byte) (*ParsedBundle, error) {
	parsed, err := parseLandmarkBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parse landmarks: %w", err)
	}
	sum := sha256.Sum256(data)
	return &ParsedBundle{
		Video:           parsed.Video,
		SourceFormat:    parsed.SourceFormat,
		Frames:          parsed.Frames,
		DetectedFrames:  pvsim.CountDetected(parsed.Frames),
		DroppedFrames:   parsed.Dropped,
		Warnings:        dedupeStrings(parsed.Warnings),
		SourceSHA256:    hex.EncodeToString(sum[:]),
		SourceSizeBytes: int64(len(data)),
	}, nil
}

// ParseFile reads and parses a landmark file.
func ParseFile(path string) (*ParsedBundle, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("input path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read landmark file: %w", err)
	}
	return ParseBytes(data)
}

// ParseReader parses landmarks from r.
func ParseReader(r io.Reader) (*ParsedBundle, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read landmarks: %w", err)
	}
	return ParseBytes(data)
}

// BuildManifest describes the normalized export of bundle. sourcePath may be
// empty for in-memory sources.
func BuildManifest(bundle *ParsedBundle, sourcePath string, generatedAt time.Time) Manifest {
	m := Manifest{
		FormatVersion:     ExportFormatVersion,
		GeneratedAt:       generatedAt.UTC(),
		SourceSHA256:      bundle.SourceSHA256,
		SourceSizeBytes:   bundle.SourceSizeBytes,
		SourceFormat:      bundle.SourceFormat,
		Coordinates:       CoordinatesPixel,
		Video:             bundle.Video,
		FramesPath:        "frames.jsonl",
		FrameCount:        len(bundle.Frames),
		DetectedFrames:    bundle.DetectedFrames,
		DroppedFrames:     bundle.DroppedFrames,
		Warnings:          bundle.Warnings,
		SchemaDescription: manifestSchema(),
	}
	if sourcePath != "" {
		m.SourceFile = sourcePath
		m.SourceFileName = filepath.Base(sourcePath)
	}
	return m
}

// MarshalJSON renders indented JSON with deterministic key order.
func MarshalJSON(v any) ([]byte, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	out = append(out, '\n')
	return out, nil
}

// MarshalJSONL renders the bundle as a header line followed by one line per frame.
func MarshalJSONL(bundle *ParsedBundle) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeJSONL(&buf, bundle); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeJSONL(w io.Writer, bundle *ParsedBundle) error {
	bw := bufio.NewWriterSize(w, 1<<20)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(Header{VideoInfo: bundle.Video, Coordinates: CoordinatesPixel}); err != nil {
		return err
	}
	for i, frame := range bundle.Frames {
		if err := enc.Encode(FrameEnvelope{FrameIndex: i, Landmarks: frame}); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
