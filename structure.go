package pvsim

import (
	"fmt"
	"strings"
)

const attemptStructureSchemaVersion = "attempt_structure_v1"

// AttemptStructure is a semantic view of the segmented attempt.
type AttemptStructure struct {
	SchemaVersion  string        `json:"schema_version"`
	Confidence     float64       `json:"confidence"`
	CanonicalLabel string        `json:"canonical_label"`
	Blocks         []PhaseBlock  `json:"blocks,omitempty"`
	MissingPhases  []PhaseKind   `json:"missing_phases,omitempty"`
	RepeatedPhases []PhaseRepeat `json:"repeated_phases,omitempty"`
	CanonicalOrder bool          `json:"canonical_order"`
	Contiguous     bool          `json:"contiguous"`
	UndetectedPct  float64       `json:"undetected_pct"`
}

// PhaseBlock is one interval placed on the attempt timeline.
type PhaseBlock struct {
	Phase              PhaseKind `json:"phase"`
	Occurrence         int       `json:"occurrence"`
	StartFrame         int       `json:"start_frame"`
	EndFrame           int       `json:"end_frame"`
	StartOffsetSeconds float64   `json:"start_offset_seconds"`
	EndOffsetSeconds   float64   `json:"end_offset_seconds"`
	DurationSeconds    float64   `json:"duration_seconds"`
	UndetectedFrames   int       `json:"undetected_frames"`
	Description        string    `json:"description"`
}

// PhaseRepeat records a phase kind that occurs as more than one interval.
type PhaseRepeat struct {
	Phase PhaseKind `json:"phase"`
	Count int       `json:"count"`
}

var phaseDescriptions = map[PhaseKind]string{
	PhaseRun:                "Approach run building horizontal speed",
	PhasePlant:              "Pole plant into the box",
	PhaseTakeoff:            "Take-off from the ground",
	PhaseSwingUp:            "Swing up with the trail leg",
	PhaseExtensionInversion: "Extension and inversion on the pole",
	PhasePushOff:            "Push-off from the pole",
	PhasePike:               "Pike over the bar",
}

// InferAttemptStructure checks the segmentation against the canonical phase
// sequence. frames is used for timing and undetected-frame counts and may be
// nil.
func InferAttemptStructure(phases []PhaseInterval, frames []LandmarkFrame, fps float64) AttemptStructure {
	as := AttemptStructure{
		SchemaVersion: attemptStructureSchemaVersion,
		Confidence:    0.2,
	}
	if len(phases) == 0 {
		as.CanonicalLabel = "unable to infer attempt structure (no phases detected)"
		as.MissingPhases = AllPhases()
		as.Confidence = 0
		return as
	}

	counts := make(map[PhaseKind]int)
	var order []PhaseKind
	undetected := 0
	for _, iv := range phases {
		if counts[iv.Phase] == 0 {
			order = append(order, iv.Phase)
		}
		block := buildPhaseBlock(iv, counts[iv.Phase], frames, fps)
		undetected += block.UndetectedFrames
		as.Blocks = append(as.Blocks, block)
		counts[iv.Phase]++
	}

	for _, kind := range AllPhases() {
		switch n := counts[kind]; {
		case n == 0:
			as.MissingPhases = append(as.MissingPhases, kind)
		case n > 1:
			as.RepeatedPhases = append(as.RepeatedPhases, PhaseRepeat{Phase: kind, Count: n})
		}
	}

	as.CanonicalOrder = isCanonicalOrder(order)
	as.Contiguous = isContiguous(phases)

	total := phases[len(phases)-1].EndFrame - phases[0].StartFrame + 1
	as.UndetectedPct = safeDiv(float64(undetected), float64(total)) * 100

	as.Confidence += 0.1 * float64(len(order))
	if as.CanonicalOrder {
		as.Confidence += 0.05
	}
	as.Confidence -= 0.05 * float64(len(as.RepeatedPhases))
	as.Confidence -= as.UndetectedPct / 200
	as.Confidence = clamp(as.Confidence, 0.05, 0.99)

	as.CanonicalLabel = buildAttemptLabel(order, as)
	return as
}

func buildPhaseBlock(iv PhaseInterval, occurrence int, frames []LandmarkFrame, fps float64) PhaseBlock {
	block := PhaseBlock{
		Phase:           iv.Phase,
		Occurrence:      occurrence,
		StartFrame:      iv.StartFrame,
		EndFrame:        iv.EndFrame,
		DurationSeconds: iv.DurationSeconds,
		Description:     phaseDescriptions[iv.Phase],
	}
	if fps > 0 {
		block.StartOffsetSeconds = float64(iv.StartFrame) / fps
		block.EndOffsetSeconds = float64(iv.EndFrame+1) / fps
	}
	for i := iv.StartFrame; i <= iv.EndFrame && i < len(frames); i++ {
		if i >= 0 && !frames[i].Detected() {
			block.UndetectedFrames++
		}
	}
	if occurrence > 0 {
		block.Description = fmt.Sprintf("%s (repeat %d)", block.Description, occurrence+1)
	}
	return block
}

func isCanonicalOrder(order []PhaseKind) bool {
	for i := 1; i < len(order); i++ {
		if order[i] < order[i-1] {
			return false
		}
	}
	return true
}

func isContiguous(phases []PhaseInterval) bool {
	if len(phases) == 0 || phases[0].StartFrame != 0 {
		return false
	}
	for i := 1; i < len(phases); i++ {
		if phases[i].StartFrame != phases[i-1].EndFrame+1 {
			return false
		}
	}
	return true
}

func buildAttemptLabel(order []PhaseKind, as AttemptStructure) string {
	names := make([]string, len(order))
	for i, kind := range order {
		names[i] = kind.String()
	}
	label := strings.Join(names, " > ")

	var notes []string
	if len(as.MissingPhases) > 0 {
		missing := make([]string, len(as.MissingPhases))
		for i, kind := range as.MissingPhases {
			missing[i] = kind.String()
		}
		notes = append(notes, "missing "+strings.Join(missing, ", "))
	}
	if len(as.RepeatedPhases) > 0 {
		notes = append(notes, fmt.Sprintf("%d repeated", len(as.RepeatedPhases)))
	}
	if !as.CanonicalOrder {
		notes = append(notes, "out of order")
	}
	if len(notes) == 0 {
		return label + " (complete)"
	}
	return fmt.Sprintf("%s (%s)", label, strings.Join(notes, "; "))
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
