package pvsim

import (
	"fmt"
	"math"
	"strings"
)

// PhaseKind is one of the seven canonical technique segments of a vault.
type PhaseKind int

const (
	PhaseRun PhaseKind = iota
	PhasePlant
	PhaseTakeoff
	PhaseSwingUp
	PhaseExtensionInversion
	PhasePushOff
	PhasePike
)

var phaseNames = [...]string{
	PhaseRun:                "run",
	PhasePlant:              "plant",
	PhaseTakeoff:            "take-off",
	PhaseSwingUp:            "swing-up",
	PhaseExtensionInversion: "extension/inversion",
	PhasePushOff:            "push-off",
	PhasePike:               "pike",
}

// AllPhases returns the phase kinds in canonical vault order.
func AllPhases() []PhaseKind {
	return []PhaseKind{
		PhaseRun,
		PhasePlant,
		PhaseTakeoff,
		PhaseSwingUp,
		PhaseExtensionInversion,
		PhasePushOff,
		PhasePike,
	}
}

func (p PhaseKind) Valid() bool {
	return p >= PhaseRun && p <= PhasePike
}

func (p PhaseKind) String() string {
	if !p.Valid() {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// ParsePhaseKind accepts the wire name ("take-off") or the constant-style
// name ("TAKEOFF", "swing_up").
func ParsePhaseKind(s string) (PhaseKind, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for i, name := range phaseNames {
		if key == name {
			return PhaseKind(i), nil
		}
	}
	switch strings.NewReplacer("-", "", "_", "", "/", "", " ", "").Replace(key) {
	case "run":
		return PhaseRun, nil
	case "plant":
		return PhasePlant, nil
	case "takeoff":
		return PhaseTakeoff, nil
	case "swingup":
		return PhaseSwingUp, nil
	case "extensioninversion":
		return PhaseExtensionInversion, nil
	case "pushoff":
		return PhasePushOff, nil
	case "pike":
		return PhasePike, nil
	}
	return 0, fmt.Errorf("unknown phase %q", s)
}

func (p PhaseKind) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid phase %d", int(p))
	}
	return []byte(phaseNames[p]), nil
}

func (p *PhaseKind) UnmarshalText(text []byte) error {
	parsed, err := ParsePhaseKind(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// VelocityStats summarizes raw horizontal centre velocity (px/s) over an interval.
type VelocityStats struct {
	Max     float64 `json:"max"`
	Min     float64 `json:"min"`
	Average float64 `json:"average"`
	Initial float64 `json:"initial"`
	Final   float64 `json:"final"`
}

// PhaseInterval is a contiguous frame range assigned to one phase kind.
// StartFrame and EndFrame are inclusive.
type PhaseInterval struct {
	Phase           PhaseKind     `json:"phase"`
	StartFrame      int           `json:"start_frame"`
	EndFrame        int           `json:"end_frame"`
	DurationSeconds float64       `json:"duration"`
	VelocityStats   VelocityStats `json:"velocity_stats"`
}

// Frames returns the number of frames covered by the interval.
func (iv PhaseInterval) Frames() int {
	return iv.EndFrame - iv.StartFrame + 1
}

// Signal is the classifier input for one frame.
type Signal struct {
	Velocity float64 `json:"velocity"`
	Height   float64 `json:"height"`
	Angle    float64 `json:"angle"`
}

// PhaseRule pairs a predicate with the phase it selects.
type PhaseRule struct {
	Phase PhaseKind
	Match func(Signal) bool
}

// SmoothingRadius is the number of frames averaged on each side of a frame
// before classification.
const SmoothingRadius = 5

// PhaseRules is the ordered classifier. The first matching rule wins and
// PhaseRun is the fallback. Thresholds are raw pixels and degrees and assume a
// consistent camera framing.
var PhaseRules = []PhaseRule{
	{PhaseRun, func(s Signal) bool {
		return s.Velocity > 50 && s.Height < 150 && math.Abs(s.Angle) < 30
	}},
	{PhasePlant, func(s Signal) bool {
		return s.Velocity > 20 && s.Velocity < 50 && s.Height > 100 && s.Height < 200
	}},
	{PhaseTakeoff, func(s Signal) bool {
		return s.Velocity > 0 && s.Height > 150 && s.Height < 300 && math.Abs(s.Angle) < 60
	}},
	{PhaseSwingUp, func(s Signal) bool {
		a := math.Abs(s.Angle)
		return s.Height > 200 && a > 30 && a < 90
	}},
	{PhaseExtensionInversion, func(s Signal) bool {
		return s.Height > 250 && math.Abs(s.Angle) > 80
	}},
	{PhasePushOff, func(s Signal) bool {
		a := math.Abs(s.Angle)
		return s.Height > 300 && a > 45 && a < 90
	}},
	{PhasePike, func(s Signal) bool {
		return s.Height > 200 && math.Abs(s.Angle) < 45
	}},
}

// ClassifyPhase maps a smoothed signal triple onto a phase kind.
func ClassifyPhase(s Signal) PhaseKind {
	for _, rule := range PhaseRules {
		if rule.Match(s) {
			return rule.Phase
		}
	}
	return PhaseRun
}

// SmoothWindow returns the mean of values over [i-radius, i+radius] for every
// index, clipped at the slice boundaries.
func SmoothWindow(values []float64, radius int) []float64 {
	out := make([]float64, len(values))
	if radius < 0 {
		radius = 0
	}
	for i := range values {
		lo := max(0, i-radius)
		hi := min(len(values), i+radius+1)
		out[i] = average(values[lo:hi])
	}
	return out
}

// ComputeSignals derives the raw per-frame classifier signals. Frames without
// pose data contribute zero to every signal.
func ComputeSignals(frames []LandmarkFrame, fps float64) []Signal {
	signals := make([]Signal, len(frames))
	for i, f := range frames {
		if !f.Detected() {
			continue
		}
		cx, cy := f.CenterOfMass()
		if i > 0 && frames[i-1].Detected() {
			px, _ := frames[i-1].CenterOfMass()
			signals[i].Velocity = (cx - px) * fps
		}
		signals[i].Height = f.GroundY() - cy

		sx, sy := f.shoulderMid()
		hx, hy := f.hipMid()
		signals[i].Angle = math.Atan2(hy-sy, hx-sx) * 180 / math.Pi
	}
	return signals
}

// SmoothSignals applies SmoothWindow to each signal component independently.
func SmoothSignals(signals []Signal, radius int) []Signal {
	v := make([]float64, len(signals))
	h := make([]float64, len(signals))
	a := make([]float64, len(signals))
	for i, s := range signals {
		v[i], h[i], a[i] = s.Velocity, s.Height, s.Angle
	}
	v = SmoothWindow(v, radius)
	h = SmoothWindow(h, radius)
	a = SmoothWindow(a, radius)

	out := make([]Signal, len(signals))
	for i := range out {
		out[i] = Signal{Velocity: v[i], Height: h[i], Angle: a[i]}
	}
	return out
}

// Segment splits a landmark sequence into contiguous phase intervals.
//
// Frames without pose data never start a new interval; they are absorbed
// into whichever interval surrounds them, so the returned intervals always
// partition [0, len(frames)-1]. An empty or entirely undetected sequence
// yields nil.
func Segment(frames []LandmarkFrame, fps float64) []PhaseInterval {
	if len(frames) == 0 || fps <= 0 || CountDetected(frames) == 0 {
		return nil
	}

	raw := ComputeSignals(frames, fps)
	smoothed := SmoothSignals(raw, SmoothingRadius)

	var (
		intervals []PhaseInterval
		current   PhaseKind
		open      bool
		start     int
	)
	for i, f := range frames {
		if !f.Detected() {
			continue
		}
		phase := ClassifyPhase(smoothed[i])
		if open && phase == current {
			continue
		}
		if open {
			intervals = append(intervals, closeInterval(current, start, i-1, raw, fps))
			start = i
		}
		current = phase
		open = true
	}
	intervals = append(intervals, closeInterval(current, start, len(frames)-1, raw, fps))
	return intervals
}

func closeInterval(phase PhaseKind, start, end int, raw []Signal, fps float64) PhaseInterval {
	return PhaseInterval{
		Phase:           phase,
		StartFrame:      start,
		EndFrame:        end,
		DurationSeconds: float64(end-start+1) / fps,
		VelocityStats:   velocityStats(raw[start : end+1]),
	}
}

func velocityStats(window []Signal) VelocityStats {
	moving := make([]float64, 0, len(window))
	for _, s := range window {
		if s.Velocity != 0 {
			moving = append(moving, s.Velocity)
		}
	}
	if len(moving) == 0 {
		return VelocityStats{}
	}
	return VelocityStats{
		Max:     maxValue(moving),
		Min:     minValue(moving),
		Average: average(moving),
		Initial: window[0].Velocity,
		Final:   window[len(window)-1].Velocity,
	}
}
