package pvsim

// Landmark names emitted by the pose-estimation service.
const (
	Nose           = "nose"
	LeftShoulder   = "left_shoulder"
	RightShoulder  = "right_shoulder"
	LeftElbow      = "left_elbow"
	RightElbow     = "right_elbow"
	LeftWrist      = "left_wrist"
	RightWrist     = "right_wrist"
	LeftHip        = "left_hip"
	RightHip       = "right_hip"
	LeftKnee       = "left_knee"
	RightKnee      = "right_knee"
	LeftAnkle      = "left_ankle"
	RightAnkle     = "right_ankle"
	LeftHeel       = "left_heel"
	RightHeel      = "right_heel"
	LeftFootIndex  = "left_foot_index"
	RightFootIndex = "right_foot_index"
)

// LandmarkNames lists every body point in the order the pose service reports them.
var LandmarkNames = []string{
	Nose,
	LeftShoulder, RightShoulder,
	LeftElbow, RightElbow,
	LeftWrist, RightWrist,
	LeftHip, RightHip,
	LeftKnee, RightKnee,
	LeftAnkle, RightAnkle,
	LeftHeel, RightHeel,
	LeftFootIndex, RightFootIndex,
}

// RequiredLandmarks are the points the analysis reads. A frame missing any of
// them cannot be analyzed.
var RequiredLandmarks = []string{
	LeftShoulder, RightShoulder,
	LeftHip, RightHip,
	LeftAnkle, RightAnkle,
}

var torsoLandmarks = [4]string{LeftHip, RightHip, LeftShoulder, RightShoulder}

// Landmark is one body point in frame-pixel units. Z is a normalized depth
// proxy, not a metric distance.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// LandmarkFrame maps landmark names to positions for one video frame.
// A nil frame means no pose was detected.
type LandmarkFrame map[string]Landmark

// VideoInfo is the static metadata of the analyzed video.
type VideoInfo struct {
	FPS         float64 `json:"fps"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	TotalFrames int     `json:"total_frames"`
}

// Detected reports whether the frame carries pose data.
func (f LandmarkFrame) Detected() bool {
	return f != nil
}

// HasRequired reports whether every landmark the analysis reads is present.
func (f LandmarkFrame) HasRequired() bool {
	if f == nil {
		return false
	}
	for _, name := range RequiredLandmarks {
		if _, ok := f[name]; !ok {
			return false
		}
	}
	return true
}

// CenterOfMass approximates the body centre as the mean of the four torso points.
func (f LandmarkFrame) CenterOfMass() (x, y float64) {
	for _, name := range torsoLandmarks {
		lm := f[name]
		x += lm.X
		y += lm.Y
	}
	return x / float64(len(torsoLandmarks)), y / float64(len(torsoLandmarks))
}

// GroundY is the y of the lower ankle. Image y grows downward, so the lower
// foot has the larger value.
func (f LandmarkFrame) GroundY() float64 {
	return max(f[LeftAnkle].Y, f[RightAnkle].Y)
}

func (f LandmarkFrame) shoulderMid() (x, y float64) {
	l, r := f[LeftShoulder], f[RightShoulder]
	return (l.X + r.X) / 2, (l.Y + r.Y) / 2
}

func (f LandmarkFrame) hipMid() (x, y float64) {
	l, r := f[LeftHip], f[RightHip]
	return (l.X + r.X) / 2, (l.Y + r.Y) / 2
}

// CountDetected returns the number of frames with pose data.
func CountDetected(frames []LandmarkFrame) int {
	n := 0
	for _, f := range frames {
		if f.Detected() {
			n++
		}
	}
	return n
}
