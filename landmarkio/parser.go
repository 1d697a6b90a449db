package landmarkio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	pvsim "github.com/sandiegoi-PV/AI-PVSim"
)

var (
	ErrEmptyInput       = errors.New("landmark input is empty")
	ErrMissingVideoInfo = errors.New("landmark input has no video_info")
	ErrFrameIndexRange  = errors.New("frame_index out of range")
)

// MaxStreamFrames bounds gap filling in JSONL streams that do not declare
// total_frames.
const MaxStreamFrames = 1 << 20

type parsedStream struct {
	Video        pvsim.VideoInfo
	Coordinates  string
	SourceFormat string
	Frames       []pvsim.LandmarkFrame
	Dropped      int
	Warnings     []string
}

// rawEnvelope keeps frame_index optional so unnumbered lines can be appended
// in order.
type rawEnvelope struct {
	FrameIndex *int                `json:"frame_index"`
	Landmarks  pvsim.LandmarkFrame `json:"landmarks"`
}

func parseLandmarkBytes(data []byte) (*parsedStream, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyInput
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	var first map[string]json.RawMessage
	if err := dec.Decode(&first); err != nil {
		return nil, fmt.Errorf("decode first value: %w", err)
	}

	var (
		out *parsedStream
		err error
	)
	switch {
	case first["frames"] != nil:
		out, err = parseDocument(first, dec)
	case first["video_info"] != nil:
		out, err = parseStream(first, dec)
	default:
		return nil, ErrMissingVideoInfo
	}
	if err != nil {
		return nil, err
	}

	if err := normalizeCoordinates(out); err != nil {
		return nil, err
	}
	if err := validateVideo(out); err != nil {
		return nil, err
	}
	dropIncompleteFrames(out)
	return out, nil
}

func parseDocument(first map[string]json.RawMessage, dec *json.Decoder) (*parsedStream, error) {
	if first["video_info"] == nil {
		return nil, ErrMissingVideoInfo
	}
	var doc Document
	if err := json.Unmarshal(first["video_info"], &doc.VideoInfo); err != nil {
		return nil, fmt.Errorf("decode video_info: %w", err)
	}
	if raw := first["coordinates"]; raw != nil {
		if err := json.Unmarshal(raw, &doc.Coordinates); err != nil {
			return nil, fmt.Errorf("decode coordinates: %w", err)
		}
	}
	if err := json.Unmarshal(first["frames"], &doc.Frames); err != nil {
		return nil, fmt.Errorf("decode frames: %w", err)
	}
	if err := expectEOF(dec); err != nil {
		return nil, err
	}
	return &parsedStream{
		Video:        doc.VideoInfo,
		Coordinates:  doc.Coordinates,
		SourceFormat: SourceDocument,
		Frames:       doc.Frames,
	}, nil
}

func parseStream(first map[string]json.RawMessage, dec *json.Decoder) (*parsedStream, error) {
	var header Header
	if err := json.Unmarshal(first["video_info"], &header.VideoInfo); err != nil {
		return nil, fmt.Errorf("decode video_info: %w", err)
	}
	if raw := first["coordinates"]; raw != nil {
		if err := json.Unmarshal(raw, &header.Coordinates); err != nil {
			return nil, fmt.Errorf("decode coordinates: %w", err)
		}
	}

	out := &parsedStream{
		Video:        header.VideoInfo,
		Coordinates:  header.Coordinates,
		SourceFormat: SourceJSONL,
	}
	limit := MaxStreamFrames
	if header.VideoInfo.TotalFrames > 0 {
		limit = min(header.VideoInfo.TotalFrames, MaxStreamFrames)
	}
	for {
		offset := dec.InputOffset()
		var env rawEnvelope
		err := dec.Decode(&env)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode frame at byte %d: %w", offset, err)
		}

		idx := len(out.Frames)
		if env.FrameIndex != nil {
			idx = *env.FrameIndex
		}
		switch {
		case idx < len(out.Frames):
			return nil, fmt.Errorf("frame_index %d out of order at byte %d (expected >= %d)", idx, offset, len(out.Frames))
		case idx > len(out.Frames):
			if idx >= limit {
				return nil, fmt.Errorf("%w: %d at byte %d (limit %d frames)", ErrFrameIndexRange, idx, offset, limit)
			}
			out.Warnings = append(out.Warnings, fmt.Sprintf("frames %d-%d missing from stream; treated as undetected", len(out.Frames), idx-1))
			for len(out.Frames) < idx {
				out.Frames = append(out.Frames, nil)
			}
		}
		out.Frames = append(out.Frames, env.Landmarks)
	}
	return out, nil
}

func expectEOF(dec *json.Decoder) error {
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err != nil {
			return fmt.Errorf("decode trailing data: %w", err)
		}
		return fmt.Errorf("unexpected trailing data after landmark document")
	}
	return nil
}

func normalizeCoordinates(p *parsedStream) error {
	switch strings.ToLower(strings.TrimSpace(p.Coordinates)) {
	case "", CoordinatesPixel:
		p.Coordinates = CoordinatesPixel
		return nil
	case CoordinatesNormalized:
	default:
		return fmt.Errorf("unsupported coordinates %q (want %s or %s)", p.Coordinates, CoordinatesPixel, CoordinatesNormalized)
	}

	if p.Video.Width <= 0 || p.Video.Height <= 0 {
		return fmt.Errorf("normalized coordinates need video width and height, got %dx%d", p.Video.Width, p.Video.Height)
	}
	w, h := float64(p.Video.Width), float64(p.Video.Height)
	for _, f := range p.Frames {
		for name, lm := range f {
			lm.X *= w
			lm.Y *= h
			lm.Z *= w
			f[name] = lm
		}
	}
	p.Coordinates = CoordinatesPixel
	return nil
}

func validateVideo(p *parsedStream) error {
	if p.Video.FPS <= 0 {
		return fmt.Errorf("%w: video_info.fps=%v", pvsim.ErrInvalidFPS, p.Video.FPS)
	}
	switch {
	case p.Video.TotalFrames == 0:
		p.Video.TotalFrames = len(p.Frames)
	case p.Video.TotalFrames != len(p.Frames):
		p.Warnings = append(p.Warnings, fmt.Sprintf("video_info.total_frames=%d but input has %d frames", p.Video.TotalFrames, len(p.Frames)))
	}
	return nil
}

// dropIncompleteFrames turns frames missing a required landmark into
// undetected frames.
func dropIncompleteFrames(p *parsedStream) {
	missing := make(map[string]int)
	for i, f := range p.Frames {
		if f == nil || f.HasRequired() {
			continue
		}
		for _, name := range pvsim.RequiredLandmarks {
			if _, ok := f[name]; !ok {
				missing[name]++
			}
		}
		p.Frames[i] = nil
		p.Dropped++
	}
	for _, name := range pvsim.RequiredLandmarks {
		if n := missing[name]; n > 0 {
			p.Warnings = append(p.Warnings, fmt.Sprintf("%d frames missing %s; treated as undetected", n, name))
		}
	}
}
