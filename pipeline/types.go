package pipeline

import (
	"log/slog"
	"time"

	pvsim "github.com/sandiegoi-PV/AI-PVSim"
)

// ReportSchemaVersion identifies the layout of report.json.
const ReportSchemaVersion = "pvsim_report_v1"

// Series formats.
const (
	FormatParquet = "parquet"
	FormatCSV     = "csv"
)

// Artifact file names.
const (
	ReportFile   = "report.json"
	PhasesFile   = "phases.json"
	SummaryFile  = "summary.md"
	ManifestFile = "manifest.json"
	FramesFile   = "frames.jsonl"
	seriesBase   = "energy_series"
)

// Options configures a file-based analysis run.
type Options struct {
	LandmarksPath  string
	OutDir         string
	Athlete        pvsim.Config
	MassExplicit   bool // Athlete.MassKG was set by the caller and beats a FIT profile
	AthleteFITPath string
	Format         string // parquet|csv
	Overwrite      bool
	CopySource     bool
	Logger         *slog.Logger
}

// Result returns generated output paths.
type Result struct {
	AnalysisID       string          `json:"analysis_id"`
	OutputDir        string          `json:"output_dir"`
	ReportPath       string          `json:"report_path"`
	PhasesPath       string          `json:"phases_path"`
	EnergySeriesPath string          `json:"energy_series_path"`
	SummaryPath      string          `json:"summary_path"`
	ManifestPath     string          `json:"manifest_path"`
	FramesPath       string          `json:"frames_path"`
	SourceCopyPath   string          `json:"source_copy_path,omitempty"`
	Warnings         []string        `json:"warnings,omitempty"`
	Analysis         *pvsim.Analysis `json:"-"`
}

// BytesOptions configures an in-memory run.
type BytesOptions struct {
	SourceFileName string
	LandmarkData   []byte
	Athlete        pvsim.Config
	MassExplicit   bool
	AthleteFIT     []byte
	Format         string
	CopySource     bool
	Logger         *slog.Logger
}

// BytesResult holds generated artifacts keyed by file name.
type BytesResult struct {
	AnalysisID string
	Files      map[string][]byte
	Warnings   []string
	Analysis   *pvsim.Analysis
}

// SourceInfo identifies the landmark input of a report.
type SourceInfo struct {
	FileName       string          `json:"file_name,omitempty"`
	Format         string          `json:"format"`
	SHA256         string          `json:"sha256"`
	SizeBytes      int64           `json:"size_bytes"`
	Video          pvsim.VideoInfo `json:"video_info"`
	FrameCount     int             `json:"frame_count"`
	DetectedFrames int             `json:"detected_frames"`
	DroppedFrames  int             `json:"dropped_frames"`
}

// AthleteInfo records the body metrics used and where mass came from.
type AthleteInfo struct {
	pvsim.Config
	Name       string `json:"name,omitempty"`
	MassSource string `json:"mass_source"` // options|fit_profile

	warnings []string
}

// ReportDocument is the content of report.json.
type ReportDocument struct {
	SchemaVersion string          `json:"schema_version"`
	AnalysisID    string          `json:"analysis_id"`
	GeneratedAt   time.Time       `json:"generated_at"`
	Source        SourceInfo      `json:"source"`
	Athlete       AthleteInfo     `json:"athlete"`
	Analysis      *pvsim.Analysis `json:"analysis"`
	Warnings      []string        `json:"warnings,omitempty"`
}

// PhasesDocument is the content of phases.json.
type PhasesDocument struct {
	AnalysisID string                 `json:"analysis_id"`
	FPS        float64                `json:"fps"`
	Phases     []pvsim.PhaseInterval  `json:"phases"`
	Structure  pvsim.AttemptStructure `json:"structure"`
}

// SeriesRow is one row of the per-frame energy series.
type SeriesRow struct {
	Frame      int
	TimeS      float64
	Phase      string
	Segment    int
	Detected   bool
	KineticJ   float64
	PotentialJ float64
	TotalJ     float64
}

var seriesHeader = []string{"frame", "time_s", "phase", "segment", "detected", "kinetic_j", "potential_j", "total_j"}
