package pvsim

import "math"

// Gravity is standard gravitational acceleration in m/s^2.
const Gravity = 9.81

// EnergyStats summarizes one per-frame energy series in joules.
type EnergyStats struct {
	Initial float64 `json:"initial"`
	Final   float64 `json:"final"`
	Max     float64 `json:"max"`
	Average float64 `json:"average"`
}

// PhaseEnergy is the energy record for one phase kind. When the kind occurs
// as several disjoint intervals, Initial comes from the first interval, Final
// from the last, Max and Average span every frame, and EnergyGenerated and
// DurationSeconds are summed across intervals. EnergyGenerated equals
// Total.Final - Total.Initial only when Segments == 1; SpanGenerated always
// holds that difference.
type PhaseEnergy struct {
	Kinetic         EnergyStats `json:"kinetic_energy"`
	Potential       EnergyStats `json:"potential_energy"`
	Total           EnergyStats `json:"total_energy"`
	EnergyGenerated float64     `json:"energy_generated"`
	SpanGenerated   float64     `json:"span_generated"`
	DurationSeconds float64     `json:"duration"`
	Segments        int         `json:"segments"`
}

// EnergySample is the per-frame energy of the body centre.
type EnergySample struct {
	Frame     int       `json:"frame"`
	Phase     PhaseKind `json:"phase"`
	Segment   int       `json:"segment"`
	Detected  bool      `json:"detected"`
	Kinetic   float64   `json:"kinetic_j"`
	Potential float64   `json:"potential_j"`
	Total     float64   `json:"total_j"`
}

// EnergyParams are the athlete-specific constants of the energy model.
type EnergyParams struct {
	FPS          float64
	MassKG       float64
	PixelToMeter float64
}

type intervalSeries struct {
	kinetic   []float64
	potential []float64
	total     []float64
}

// ComputeEnergies returns one PhaseEnergy per phase kind present in phases.
// An empty phase list yields an empty map.
func ComputeEnergies(frames []LandmarkFrame, phases []PhaseInterval, p EnergyParams) map[PhaseKind]PhaseEnergy {
	grouped := make(map[PhaseKind][]intervalSeries)
	durations := make(map[PhaseKind]float64)
	for _, iv := range phases {
		slice := sliceFrames(frames, iv)
		if slice == nil {
			continue
		}
		grouped[iv.Phase] = append(grouped[iv.Phase], computeIntervalSeries(slice, p))
		durations[iv.Phase] += iv.DurationSeconds
	}

	out := make(map[PhaseKind]PhaseEnergy, len(grouped))
	for kind, series := range grouped {
		out[kind] = aggregateEnergy(series, durations[kind])
	}
	return out
}

// EnergySeries returns the per-frame kinetic, potential and total energy for
// every frame covered by phases, in frame order. Segment counts repeated
// occurrences of the same phase kind from zero.
func EnergySeries(frames []LandmarkFrame, phases []PhaseInterval, p EnergyParams) []EnergySample {
	var samples []EnergySample
	seen := make(map[PhaseKind]int)
	for _, iv := range phases {
		slice := sliceFrames(frames, iv)
		if slice == nil {
			continue
		}
		segment := seen[iv.Phase]
		seen[iv.Phase]++

		s := computeIntervalSeries(slice, p)
		for i := range slice {
			samples = append(samples, EnergySample{
				Frame:     iv.StartFrame + i,
				Phase:     iv.Phase,
				Segment:   segment,
				Detected:  slice[i].Detected(),
				Kinetic:   s.kinetic[i],
				Potential: s.potential[i],
				Total:     s.total[i],
			})
		}
	}
	return samples
}

func sliceFrames(frames []LandmarkFrame, iv PhaseInterval) []LandmarkFrame {
	start := max(iv.StartFrame, 0)
	end := min(iv.EndFrame, len(frames)-1)
	if start > end {
		return nil
	}
	return frames[start : end+1]
}

func computeIntervalSeries(slice []LandmarkFrame, p EnergyParams) intervalSeries {
	ke := kineticSeries(slice, p)
	pe := potentialSeries(slice, p)
	total := make([]float64, len(slice))
	for i := range total {
		total[i] = ke[i] + pe[i]
	}
	return intervalSeries{kinetic: ke, potential: pe, total: total}
}

func kineticSeries(slice []LandmarkFrame, p EnergyParams) []float64 {
	out := make([]float64, len(slice))
	for i := 1; i < len(slice); i++ {
		if !slice[i].Detected() || !slice[i-1].Detected() {
			continue
		}
		cx, cy := slice[i].CenterOfMass()
		px, py := slice[i-1].CenterOfMass()
		dist := math.Hypot(cx-px, cy-py) * p.PixelToMeter
		v := dist * p.FPS
		out[i] = 0.5 * p.MassKG * v * v
	}
	return out
}

// potentialSeries measures height against the lowest ankle position seen
// anywhere in the slice.
func potentialSeries(slice []LandmarkFrame, p EnergyParams) []float64 {
	ground := 0.0
	for _, f := range slice {
		if f.Detected() {
			ground = max(ground, f.GroundY())
		}
	}

	out := make([]float64, len(slice))
	for i, f := range slice {
		if !f.Detected() {
			continue
		}
		_, cy := f.CenterOfMass()
		heightM := (ground - cy) * p.PixelToMeter
		out[i] = max(0, p.MassKG*Gravity*heightM)
	}
	return out
}

func aggregateEnergy(series []intervalSeries, duration float64) PhaseEnergy {
	var ke, pe, total [][]float64
	generated := 0.0
	for _, s := range series {
		ke = append(ke, s.kinetic)
		pe = append(pe, s.potential)
		total = append(total, s.total)
		generated += lastValue(s.total) - firstValue(s.total)
	}
	totals := summarizeSeries(total)
	return PhaseEnergy{
		Kinetic:         summarizeSeries(ke),
		Potential:       summarizeSeries(pe),
		Total:           totals,
		EnergyGenerated: generated,
		SpanGenerated:   totals.Final - totals.Initial,
		DurationSeconds: duration,
		Segments:        len(series),
	}
}

func summarizeSeries(parts [][]float64) EnergyStats {
	if len(parts) == 0 {
		return EnergyStats{}
	}
	var all []float64
	for _, part := range parts {
		all = append(all, part...)
	}
	return EnergyStats{
		Initial: firstValue(parts[0]),
		Final:   lastValue(parts[len(parts)-1]),
		Max:     maxValue(all),
		Average: average(all),
	}
}

// TotalEnergyGenerated sums EnergyGenerated across phases.
func TotalEnergyGenerated(energies map[PhaseKind]PhaseEnergy) float64 {
	values := make([]float64, 0, len(energies))
	for _, kind := range AllPhases() {
		if e, ok := energies[kind]; ok {
			values = append(values, e.EnergyGenerated)
		}
	}
	return sum(values)
}
