package pvsim

import (
	"strings"
	"testing"
)

func TestInferAttemptStructureComplete(t *testing.T) {
	var phases []PhaseInterval
	for i, kind := range AllPhases() {
		phases = append(phases, PhaseInterval{Phase: kind, StartFrame: i * 10, EndFrame: i*10 + 9, DurationSeconds: 10.0 / 30})
	}
	as := InferAttemptStructure(phases, nil, 30)
	if !as.CanonicalOrder || !as.Contiguous {
		t.Fatalf("expected canonical contiguous attempt: %+v", as)
	}
	if len(as.MissingPhases) != 0 || len(as.RepeatedPhases) != 0 {
		t.Fatalf("unexpected missing/repeated: %+v", as)
	}
	if !strings.HasSuffix(as.CanonicalLabel, "(complete)") {
		t.Fatalf("unexpected label %q", as.CanonicalLabel)
	}
	if len(as.Blocks) != 7 {
		t.Fatalf("expected 7 blocks, got %d", len(as.Blocks))
	}
	assertClose(t, "end offset", as.Blocks[6].EndOffsetSeconds, 70.0/30, 1e-12)
}

func TestInferAttemptStructureFlagsRepeatsAndOrder(t *testing.T) {
	frames := staticFrames(30)
	frames[12] = nil
	phases := []PhaseInterval{
		{Phase: PhaseRun, StartFrame: 0, EndFrame: 9},
		{Phase: PhaseSwingUp, StartFrame: 10, EndFrame: 19},
		{Phase: PhaseRun, StartFrame: 20, EndFrame: 29},
	}
	as := InferAttemptStructure(phases, frames, 30)
	if len(as.RepeatedPhases) != 1 || as.RepeatedPhases[0] != (PhaseRepeat{Phase: PhaseRun, Count: 2}) {
		t.Fatalf("unexpected repeats %+v", as.RepeatedPhases)
	}
	if len(as.MissingPhases) != 5 {
		t.Fatalf("expected 5 missing phases, got %v", as.MissingPhases)
	}
	if as.Blocks[1].UndetectedFrames != 1 {
		t.Fatalf("expected one undetected frame in swing-up block, got %d", as.Blocks[1].UndetectedFrames)
	}
	if as.Blocks[2].Occurrence != 1 {
		t.Fatalf("second run block should be occurrence 1, got %d", as.Blocks[2].Occurrence)
	}
	if !strings.Contains(as.CanonicalLabel, "1 repeated") {
		t.Fatalf("label should mention repeat: %q", as.CanonicalLabel)
	}

	out := InferAttemptStructure([]PhaseInterval{
		{Phase: PhasePike, StartFrame: 0, EndFrame: 4},
		{Phase: PhaseRun, StartFrame: 5, EndFrame: 9},
	}, nil, 30)
	if out.CanonicalOrder {
		t.Fatalf("pike before run should not be canonical")
	}
}

func TestInferAttemptStructureEmpty(t *testing.T) {
	as := InferAttemptStructure(nil, nil, 30)
	if as.Confidence != 0 || len(as.MissingPhases) != 7 || as.Contiguous {
		t.Fatalf("unexpected empty structure %+v", as)
	}
}
