package landmarkio

import (
	"time"

	pvsim "github.com/sandiegoi-PV/AI-PVSim"
)

const (
	// ExportFormatVersion identifies the on-disk schema for normalized landmark bundles.
	ExportFormatVersion = "pvsim_landmarks_jsonl_v1"
)

// Source encodings accepted by the parser.
const (
	SourceDocument = "json_document"
	SourceJSONL    = "jsonl"
)

// Coordinate systems a source may declare.
const (
	CoordinatesPixel      = "pixel"
	CoordinatesNormalized = "normalized"
)

// ExportOptions controls export behavior.
type ExportOptions struct {
	// Overwrite allows writing into a non-empty output directory.
	Overwrite bool

	// CopySourceFile writes a byte-for-byte copy of the source landmark file to the output directory.
	CopySourceFile bool
}

// ExportResult describes generated files.
type ExportResult struct {
	OutputDir       string `json:"output_dir"`
	ManifestPath    string `json:"manifest_path"`
	FramesPath      string `json:"frames_path"`
	SourceCopyPath  string `json:"source_copy_path,omitempty"`
	FrameCount      int    `json:"frame_count"`
	DetectedFrames  int    `json:"detected_frames"`
	DroppedFrames   int    `json:"dropped_frames"`
	SourceSHA256    string `json:"source_sha256"`
	SourceSizeBytes int64  `json:"source_size_bytes"`
}

// Manifest captures export metadata and pointers to exported files.
type Manifest struct {
	FormatVersion     string          `json:"format_version"`
	GeneratedAt       time.Time       `json:"generated_at"`
	SourceFile        string          `json:"source_file,omitempty"`
	SourceFileName    string          `json:"source_file_name,omitempty"`
	SourceSHA256      string          `json:"source_sha256"`
	SourceSizeBytes   int64           `json:"source_size_bytes"`
	SourceFormat      string          `json:"source_format"`
	Coordinates       string          `json:"coordinates"`
	Video             pvsim.VideoInfo `json:"video_info"`
	FramesPath        string          `json:"frames_path"`
	FrameCount        int             `json:"frame_count"`
	DetectedFrames    int             `json:"detected_frames"`
	DroppedFrames     int             `json:"dropped_frames"`
	Warnings          []string        `json:"warnings,omitempty"`
	SchemaDescription SchemaDetails   `json:"schema_description"`
}

// SchemaDetails documents the record shape for downstream applications.
type SchemaDetails struct {
	RecordType string   `json:"record_type"`
	Notes      []string `json:"notes"`
}

// FrameEnvelope is one JSONL line: a frame index and its landmarks, or null
// when no pose was detected.
type FrameEnvelope struct {
	FrameIndex int                 `json:"frame_index"`
	Landmarks  pvsim.LandmarkFrame `json:"landmarks"`
}

// Header is the first JSONL line of a landmark stream.
type Header struct {
	VideoInfo   pvsim.VideoInfo `json:"video_info"`
	Coordinates string          `json:"coordinates,omitempty"`
}

// Document is the single-object landmark encoding.
type Document struct {
	VideoInfo   pvsim.VideoInfo       `json:"video_info"`
	Coordinates string                `json:"coordinates,omitempty"`
	Frames      []pvsim.LandmarkFrame `json:"frames"`
}

func manifestSchema() SchemaDetails {
	return SchemaDetails{
		RecordType: "JSONL line-per-video-frame in frame order",
		Notes: []string{
			"First line carries video_info; every following line is {frame_index, landmarks}.",
			"landmarks is null when no pose was detected or a required body point was missing.",
			"Coordinates are frame pixels; z is a normalized depth proxy.",
			"frame_index is contiguous from 0 so the line number minus one equals the frame index.",
		},
	}
}
