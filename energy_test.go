package pvsim

import "testing"

var defaultParams = EnergyParams{FPS: 30, MassKG: 70, PixelToMeter: 0.01}

func TestComputeEnergiesStaticPose(t *testing.T) {
	phases := []PhaseInterval{{Phase: PhaseRun, StartFrame: 0, EndFrame: 29, DurationSeconds: 1.0}}
	energies := ComputeEnergies(staticFrames(30), phases, defaultParams)

	run, ok := energies[PhaseRun]
	if !ok {
		t.Fatalf("expected run energy, got %+v", energies)
	}
	if run.Kinetic.Max != 0 {
		t.Fatalf("kinetic max = %v, want 0", run.Kinetic.Max)
	}
	// 250 px above the ankles at 0.01 m/px.
	assertClose(t, "potential max", run.Potential.Max, 70*9.81*2.5, 1e-9)
	assertClose(t, "potential avg", run.Potential.Average, 70*9.81*2.5, 1e-9)
	assertClose(t, "generated", run.EnergyGenerated, 0, 1e-9)
	assertClose(t, "duration", run.DurationSeconds, 1.0, 1e-12)
	if run.Segments != 1 {
		t.Fatalf("segments = %d, want 1", run.Segments)
	}
}

func TestKineticEnergyFromDisplacement(t *testing.T) {
	frames := make([]LandmarkFrame, 5)
	for i := range frames {
		d := float64(i)
		frames[i] = poseFrame(300+3*d, 200+4*d, 310+3*d, 300+4*d, 700)
	}
	phases := []PhaseInterval{{Phase: PhaseRun, StartFrame: 0, EndFrame: 4, DurationSeconds: 5.0 / 30}}

	run := ComputeEnergies(frames, phases, defaultParams)[PhaseRun]
	// 5 px per frame -> 0.05 m * 30 fps = 1.5 m/s.
	assertClose(t, "kinetic initial", run.Kinetic.Initial, 0, 1e-12)
	assertClose(t, "kinetic max", run.Kinetic.Max, 78.75, 1e-9)
	assertClose(t, "kinetic final", run.Kinetic.Final, 78.75, 1e-9)
	assertClose(t, "kinetic average", run.Kinetic.Average, 78.75*4/5, 1e-9)

	heavy := defaultParams
	heavy.MassKG = 140
	doubled := ComputeEnergies(frames, phases, heavy)[PhaseRun]
	assertClose(t, "doubled kinetic max", doubled.Kinetic.Max, 2*run.Kinetic.Max, 1e-9)
}

func TestEnergyUndetectedFrames(t *testing.T) {
	frames := runFrames(8, 5)
	frames[4] = nil
	phases := []PhaseInterval{{Phase: PhaseRun, StartFrame: 0, EndFrame: 7, DurationSeconds: 8.0 / 30}}

	series := EnergySeries(frames, phases, defaultParams)
	if len(series) != 8 {
		t.Fatalf("expected 8 samples, got %d", len(series))
	}
	if series[4].Detected || series[4].Kinetic != 0 || series[4].Potential != 0 {
		t.Fatalf("undetected frame should carry no energy: %+v", series[4])
	}
	if series[5].Kinetic != 0 {
		t.Fatalf("frame after a gap should have no kinetic energy: %+v", series[5])
	}
	assertClose(t, "kinetic before gap", series[3].Kinetic, 78.75, 1e-9)
	assertClose(t, "kinetic after recovery", series[6].Kinetic, 78.75, 1e-9)
}

func TestPotentialEnergyNeverNegative(t *testing.T) {
	frames := []LandmarkFrame{
		poseFrame(300, 200, 310, 300, 500),
		// Centre far below the phase ground level.
		poseFrame(300, 900, 310, 950, 300),
	}
	phases := []PhaseInterval{{Phase: PhasePike, StartFrame: 0, EndFrame: 1, DurationSeconds: 2.0 / 30}}
	for _, s := range EnergySeries(frames, phases, defaultParams) {
		if s.Potential < 0 {
			t.Fatalf("negative potential energy at frame %d: %v", s.Frame, s.Potential)
		}
	}
	if got := EnergySeries(frames, phases, defaultParams)[1].Potential; got != 0 {
		t.Fatalf("expected clamped potential, got %v", got)
	}
}

func TestComputeEnergiesAggregatesRepeatedPhases(t *testing.T) {
	frames := runFrames(15, 5)
	phases := []PhaseInterval{
		{Phase: PhaseRun, StartFrame: 0, EndFrame: 4, DurationSeconds: 5.0 / 30},
		{Phase: PhasePlant, StartFrame: 5, EndFrame: 9, DurationSeconds: 5.0 / 30},
		{Phase: PhaseRun, StartFrame: 10, EndFrame: 14, DurationSeconds: 5.0 / 30},
	}
	energies := ComputeEnergies(frames, phases, defaultParams)
	if len(energies) != 2 {
		t.Fatalf("expected two phase kinds, got %d", len(energies))
	}

	run := energies[PhaseRun]
	if run.Segments != 2 {
		t.Fatalf("segments = %d, want 2", run.Segments)
	}
	assertClose(t, "duration", run.DurationSeconds, 10.0/30, 1e-12)
	assertClose(t, "generated", run.EnergyGenerated, 2*78.75, 1e-9)
	assertClose(t, "span generated", run.SpanGenerated, run.Total.Final-run.Total.Initial, 1e-12)
	assertClose(t, "span generated value", run.SpanGenerated, 78.75, 1e-9)
	assertClose(t, "kinetic initial", run.Kinetic.Initial, 0, 1e-12)
	assertClose(t, "kinetic average", run.Kinetic.Average, 8*78.75/10, 1e-9)

	series := EnergySeries(frames, phases, defaultParams)
	if len(series) != 15 {
		t.Fatalf("expected 15 samples, got %d", len(series))
	}
	if series[10].Phase != PhaseRun || series[10].Segment != 1 {
		t.Fatalf("expected second run segment at frame 10, got %+v", series[10])
	}
	if series[0].Segment != 0 || series[5].Phase != PhasePlant {
		t.Fatalf("unexpected segment labels: %+v %+v", series[0], series[5])
	}
}

func TestComputeEnergiesEmptyPhases(t *testing.T) {
	if got := ComputeEnergies(staticFrames(3), nil, defaultParams); len(got) != 0 {
		t.Fatalf("expected empty map, got %+v", got)
	}
	out := ComputeEnergies(staticFrames(3), []PhaseInterval{{Phase: PhaseRun, StartFrame: 5, EndFrame: 9}}, defaultParams)
	if len(out) != 0 {
		t.Fatalf("out of range interval should be ignored, got %+v", out)
	}
}

func TestTotalEnergyGenerated(t *testing.T) {
	energies := map[PhaseKind]PhaseEnergy{
		PhaseRun:  {EnergyGenerated: 100},
		PhasePike: {EnergyGenerated: -40},
	}
	assertClose(t, "total", TotalEnergyGenerated(energies), 60, 1e-12)
}
