package pvsim

import (
	"math"
	"testing"
)

// poseFrame builds a frame with both shoulders at (shX, shY), both hips at
// (hipX, hipY) and both ankles directly under the hips at ankleY.
func poseFrame(shX, shY, hipX, hipY, ankleY float64) LandmarkFrame {
	return LandmarkFrame{
		LeftShoulder:  {X: shX, Y: shY, Visibility: 1},
		RightShoulder: {X: shX, Y: shY, Visibility: 1},
		LeftHip:       {X: hipX, Y: hipY, Visibility: 1},
		RightHip:      {X: hipX, Y: hipY, Visibility: 1},
		LeftAnkle:     {X: hipX, Y: ankleY, Visibility: 1},
		RightAnkle:    {X: hipX, Y: ankleY, Visibility: 1},
	}
}

// staticFrames repeats a standing pose: centre (305, 250), height 250 px,
// tilt about 84 degrees.
func staticFrames(n int) []LandmarkFrame {
	frames := make([]LandmarkFrame, n)
	for i := range frames {
		frames[i] = poseFrame(300, 200, 310, 300, 500)
	}
	return frames
}

// runFrames moves an upright runner dx px per frame: height 95 px, tilt
// about 6 degrees.
func runFrames(n int, dx float64) []LandmarkFrame {
	frames := make([]LandmarkFrame, n)
	for i := range frames {
		x := float64(i) * dx
		frames[i] = poseFrame(100+x, 400, 200+x, 410, 500)
	}
	return frames
}

// invertedFrames holds an inverted pose: height 300 px, tilt about -96 degrees.
func invertedFrames(n int) []LandmarkFrame {
	frames := make([]LandmarkFrame, n)
	for i := range frames {
		frames[i] = poseFrame(400, 400, 380, 200, 600)
	}
	return frames
}

func assertClose(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("%s = %v, want %v (tol %v)", name, got, want, tol)
	}
}

func assertPartition(t *testing.T, phases []PhaseInterval, n int) {
	t.Helper()
	if len(phases) == 0 {
		t.Fatalf("expected phases for %d frames", n)
	}
	if phases[0].StartFrame != 0 {
		t.Fatalf("first interval starts at %d, want 0", phases[0].StartFrame)
	}
	if last := phases[len(phases)-1].EndFrame; last != n-1 {
		t.Fatalf("last interval ends at %d, want %d", last, n-1)
	}
	for i := 1; i < len(phases); i++ {
		if phases[i].StartFrame != phases[i-1].EndFrame+1 {
			t.Fatalf("gap or overlap between interval %d (%d-%d) and %d (%d-%d)",
				i-1, phases[i-1].StartFrame, phases[i-1].EndFrame,
				i, phases[i].StartFrame, phases[i].EndFrame)
		}
		if phases[i].Phase == phases[i-1].Phase {
			t.Fatalf("adjacent intervals %d and %d share phase %s", i-1, i, phases[i].Phase)
		}
	}
}
