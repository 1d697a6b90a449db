package pipeline

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	pvsim "github.com/sandiegoi-PV/AI-PVSim"
	"github.com/sandiegoi-PV/AI-PVSim/athletefit"
	"github.com/sandiegoi-PV/AI-PVSim/landmarkio"
	"github.com/sandiegoi-PV/AI-PVSim/logging"
)

// ErrOutputLocked is returned when another run holds the output directory.
var ErrOutputLocked = errors.New("output directory is locked by another run")

// Run analyzes one landmark file and writes all artifacts into opts.OutDir.
func Run(opts Options) (*Result, error) {
	if strings.TrimSpace(opts.LandmarksPath) == "" {
		return nil, fmt.Errorf("landmarks path is required")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	format, err := normalizeFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	logger := logging.OrDiscard(opts.Logger).With("component", "pipeline")

	unlock, err := lockOutputDir(opts.OutDir)
	if err != nil {
		return nil, err
	}
	defer unlock()

	bundle, err := landmarkio.ParseFile(opts.LandmarksPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("landmarks parsed", "path", opts.LandmarksPath, "frames", len(bundle.Frames), "detected", bundle.DetectedFrames)

	var profile *athletefit.Profile
	if strings.TrimSpace(opts.AthleteFITPath) != "" {
		if profile, err = athletefit.LoadFile(opts.AthleteFITPath); err != nil {
			return nil, fmt.Errorf("athlete profile: %w", err)
		}
	}
	athlete := resolveAthlete(opts.Athlete, profile, opts.MassExplicit)

	analysis, err := pvsim.Analyze(bundle.Frames, bundle.Video, athlete.Config)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", filepath.Base(opts.LandmarksPath), err)
	}

	if err := landmarkio.EnsureOutputDir(opts.OutDir, opts.Overwrite); err != nil {
		return nil, err
	}
	export, err := landmarkio.WriteBundle(bundle, opts.LandmarksPath, opts.OutDir, landmarkio.ExportOptions{
		Overwrite:      opts.Overwrite,
		CopySourceFile: opts.CopySource,
	})
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	docs := buildDocuments(id, time.Now(), filepath.Base(opts.LandmarksPath), bundle, athlete, analysis)

	reportPath := filepath.Join(opts.OutDir, ReportFile)
	if err := writeJSON(reportPath, docs.report); err != nil {
		return nil, fmt.Errorf("write %s: %w", ReportFile, err)
	}
	phasesPath := filepath.Join(opts.OutDir, PhasesFile)
	if err := writeJSON(phasesPath, docs.phases); err != nil {
		return nil, fmt.Errorf("write %s: %w", PhasesFile, err)
	}
	summaryPath := filepath.Join(opts.OutDir, SummaryFile)
	if err := os.WriteFile(summaryPath, []byte(docs.summary), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", SummaryFile, err)
	}

	rows := BuildSeriesRows(bundle.Frames, analysis)
	seriesPath := filepath.Join(opts.OutDir, seriesBase+"."+format)
	switch format {
	case FormatCSV:
		if err := writeSeriesCSVFile(seriesPath, rows); err != nil {
			return nil, fmt.Errorf("write energy series csv: %w", err)
		}
	case FormatParquet:
		if err := writeSeriesParquet(seriesPath, rows); err != nil {
			return nil, fmt.Errorf("write energy series parquet: %w", err)
		}
	}

	logger.Info("analysis complete",
		"analysis_id", id,
		"frames", analysis.TotalFrames,
		"phases", len(analysis.Phases),
		"reference", analysis.BestReference,
		"out_dir", opts.OutDir,
	)
	for _, w := range docs.report.Warnings {
		logger.Warn(w, "analysis_id", id)
	}

	return &Result{
		AnalysisID:       id,
		OutputDir:        opts.OutDir,
		ReportPath:       reportPath,
		PhasesPath:       phasesPath,
		EnergySeriesPath: seriesPath,
		SummaryPath:      summaryPath,
		ManifestPath:     export.ManifestPath,
		FramesPath:       export.FramesPath,
		SourceCopyPath:   export.SourceCopyPath,
		Warnings:         docs.report.Warnings,
		Analysis:         analysis,
	}, nil
}

// RunBytes runs the same analysis on in-memory input and returns the
// artifacts without touching the filesystem.
func RunBytes(opts BytesOptions) (*BytesResult, error) {
	if len(opts.LandmarkData) == 0 {
		return nil, fmt.Errorf("landmark data is required")
	}
	format, err := normalizeFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	logger := logging.OrDiscard(opts.Logger).With("component", "pipeline")

	sourceName := strings.TrimSpace(opts.SourceFileName)
	if sourceName == "" {
		sourceName = "landmarks.json"
	}

	bundle, err := landmarkio.ParseBytes(opts.LandmarkData)
	if err != nil {
		return nil, err
	}

	var profile *athletefit.Profile
	if len(opts.AthleteFIT) > 0 {
		if profile, err = athletefit.DecodeBytes(opts.AthleteFIT); err != nil {
			return nil, fmt.Errorf("athlete profile: %w", err)
		}
	}
	athlete := resolveAthlete(opts.Athlete, profile, opts.MassExplicit)

	analysis, err := pvsim.Analyze(bundle.Frames, bundle.Video, athlete.Config)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", sourceName, err)
	}

	id := uuid.NewString()
	now := time.Now()
	docs := buildDocuments(id, now, sourceName, bundle, athlete, analysis)

	files := make(map[string][]byte, 8)
	for name, v := range map[string]any{
		ReportFile:   docs.report,
		PhasesFile:   docs.phases,
		ManifestFile: landmarkio.BuildManifest(bundle, sourceName, now),
	} {
		data, err := landmarkio.MarshalJSON(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", name, err)
		}
		files[name] = data
	}
	files[SummaryFile] = []byte(docs.summary)

	frames, err := landmarkio.MarshalJSONL(bundle)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", FramesFile, err)
	}
	files[FramesFile] = frames

	rows := BuildSeriesRows(bundle.Frames, analysis)
	var series []byte
	switch format {
	case FormatCSV:
		series, err = marshalSeriesCSV(rows)
	case FormatParquet:
		series, err = marshalSeriesParquet(rows)
	}
	if err != nil {
		return nil, fmt.Errorf("encode energy series: %w", err)
	}
	files[seriesBase+"."+format] = series

	if opts.CopySource {
		files["source"+sourceExt(sourceName)] = append([]byte(nil), opts.LandmarkData...)
	}

	logger.Info("analysis complete", "analysis_id", id, "phases", len(analysis.Phases), "reference", analysis.BestReference)

	return &BytesResult{
		AnalysisID: id,
		Files:      files,
		Warnings:   docs.report.Warnings,
		Analysis:   analysis,
	}, nil
}

type documents struct {
	report  ReportDocument
	phases  PhasesDocument
	summary string
}

func buildDocuments(id string, now time.Time, sourceName string, bundle *landmarkio.ParsedBundle, athlete AthleteInfo, analysis *pvsim.Analysis) documents {
	warnings := append([]string(nil), bundle.Warnings...)
	warnings = append(warnings, athlete.warnings...)
	if analysis.DetectedFrames < analysis.TotalFrames {
		warnings = append(warnings, fmt.Sprintf("%d of %d frames have no pose", analysis.TotalFrames-analysis.DetectedFrames, analysis.TotalFrames))
	}
	if len(analysis.Structure.MissingPhases) > 0 {
		names := make([]string, len(analysis.Structure.MissingPhases))
		for i, p := range analysis.Structure.MissingPhases {
			names[i] = p.String()
		}
		warnings = append(warnings, "phases not detected: "+strings.Join(names, ", "))
	}
	for _, r := range analysis.Structure.RepeatedPhases {
		warnings = append(warnings, fmt.Sprintf("phase %s detected in %d separate intervals; energies are aggregated", r.Phase, r.Count))
	}

	report := ReportDocument{
		SchemaVersion: ReportSchemaVersion,
		AnalysisID:    id,
		GeneratedAt:   now.UTC(),
		Source: SourceInfo{
			FileName:       sourceName,
			Format:         bundle.SourceFormat,
			SHA256:         bundle.SourceSHA256,
			SizeBytes:      bundle.SourceSizeBytes,
			Video:          bundle.Video,
			FrameCount:     len(bundle.Frames),
			DetectedFrames: bundle.DetectedFrames,
			DroppedFrames:  bundle.DroppedFrames,
		},
		Athlete:  athlete,
		Analysis: analysis,
		Warnings: warnings,
	}
	phases := PhasesDocument{
		AnalysisID: id,
		FPS:        analysis.Video.FPS,
		Phases:     analysis.Phases,
		Structure:  analysis.Structure,
	}
	return documents{report: report, phases: phases, summary: renderSummary(id, sourceName, athlete, analysis, warnings)}
}

func renderSummary(id, sourceName string, athlete AthleteInfo, analysis *pvsim.Analysis, warnings []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Vault analysis: %s\n\n", sourceName)
	fmt.Fprintf(&b, "- Analysis ID: `%s`\n", id)
	if athlete.Name != "" {
		fmt.Fprintf(&b, "- Athlete: %s\n", athlete.Name)
	}
	fmt.Fprintf(&b, "- Mass source: %s\n", athlete.MassSource)
	if analysis.BestReference != "" {
		fmt.Fprintf(&b, "- Closest reference: %s (score %.1f)\n", analysis.BestReference, analysis.Comparisons[analysis.BestReference].OverallScore)
	}
	if len(warnings) > 0 {
		b.WriteString("\n## Warnings\n\n")
		for _, w := range warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	b.WriteString("\n```text\n")
	b.WriteString(analysis.Notes)
	b.WriteString("\n```\n")
	return b.String()
}

// resolveAthlete merges the caller's config with an optional FIT profile.
// The profile mass wins unless massExplicit is set, in which case the
// conflict is reported as a warning.
func resolveAthlete(cfg pvsim.Config, profile *athletefit.Profile, massExplicit bool) AthleteInfo {
	if cfg == (pvsim.Config{}) {
		cfg = pvsim.DefaultConfig()
	}
	if cfg.PixelToMeter == 0 {
		cfg.PixelToMeter = pvsim.DefaultPixelToMeter
	}
	info := AthleteInfo{Config: cfg, MassSource: "options"}
	if profile != nil {
		info.Config = profile.Apply(cfg)
		info.Name = profile.Name
		info.MassSource = "fit_profile"
		if massExplicit && cfg.MassKG > 0 && profile.MassKG > 0 {
			info.MassKG = cfg.MassKG
			info.MassSource = "options"
			if profile.MassKG != cfg.MassKG {
				info.warnings = append(info.warnings, fmt.Sprintf("fit profile mass %.1f kg ignored; explicit mass %.1f kg used", profile.MassKG, cfg.MassKG))
			}
		}
	}
	return info
}

// BuildSeriesRows flattens the per-frame energy series of analysis.
func BuildSeriesRows(frames []pvsim.LandmarkFrame, analysis *pvsim.Analysis) []SeriesRow {
	samples := pvsim.EnergySeries(frames, analysis.Phases, analysis.EnergyParams())
	rows := make([]SeriesRow, len(samples))
	for i, s := range samples {
		rows[i] = SeriesRow{
			Frame:      s.Frame,
			TimeS:      float64(s.Frame) / analysis.Video.FPS,
			Phase:      s.Phase.String(),
			Segment:    s.Segment,
			Detected:   s.Detected,
			KineticJ:   s.Kinetic,
			PotentialJ: s.Potential,
			TotalJ:     s.Total,
		}
	}
	return rows
}

func normalizeFormat(format string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatParquet
	}
	if format != FormatParquet && format != FormatCSV {
		return "", fmt.Errorf("unsupported format %q (expected parquet|csv)", format)
	}
	return format, nil
}

// lockOutputDir takes an exclusive lock on a sibling "<dir>.lock" file.
func lockOutputDir(dir string) (func(), error) {
	lockPath := filepath.Clean(dir) + ".lock"
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire output lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOutputLocked, dir)
	}
	return func() {
		_ = lock.Unlock()
		_ = os.Remove(lockPath)
	}, nil
}

func sourceExt(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jsonl", ".ndjson":
		return ".jsonl"
	default:
		return ".json"
	}
}

func writeJSON(path string, v any) error {
	data, err := landmarkio.MarshalJSON(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func writeSeriesCSVFile(path string, rows []SeriesRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := writeSeriesCSV(f, rows); err != nil {
		return err
	}
	return f.Sync()
}

func marshalSeriesCSV(rows []SeriesRow) ([]byte, error) {
	var b strings.Builder
	if err := writeSeriesCSV(&b, rows); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

func writeSeriesCSV(out io.Writer, rows []SeriesRow) error {
	w := csv.NewWriter(out)
	if err := w.Write(seriesHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			strconv.Itoa(r.Frame),
			formatFloat(r.TimeS),
			r.Phase,
			strconv.Itoa(r.Segment),
			strconv.FormatBool(r.Detected),
			formatFloat(r.KineticJ),
			formatFloat(r.PotentialJ),
			formatFloat(r.TotalJ),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
