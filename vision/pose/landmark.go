// Package pose validates body landmarks produced by an external pose estimator and derives the
// torso quadrilateral an overlay is warped onto.
package pose

import (
	"strings"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// LandmarkType identifies a skeletal joint. Values follow the 33 point BlazePose topology.
type LandmarkType int

// The known joints.
const (
	Nose LandmarkType = iota
	LeftEyeInner
	LeftEye
	LeftEyeOuter
	RightEyeInner
	RightEye
	RightEyeOuter
	LeftEar
	RightEar
	LeftMouth
	RightMouth
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftPinky
	RightPinky
	LeftIndex
	RightIndex
	LeftThumb
	RightThumb
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle
	LeftHeel
	RightHeel
	LeftFootIndex
	RightFootIndex
	numLandmarkTypes
)

var landmarkNames = [numLandmarkTypes]string{
	"nose",
	"left_eye_inner", "left_eye", "left_eye_outer",
	"right_eye_inner", "right_eye", "right_eye_outer",
	"left_ear", "right_ear",
	"left_mouth", "right_mouth",
	"left_shoulder", "right_shoulder",
	"left_elbow", "right_elbow",
	"left_wrist", "right_wrist",
	"left_pinky", "right_pinky",
	"left_index", "right_index",
	"left_thumb", "right_thumb",
	"left_hip", "right_hip",
	"left_knee", "right_knee",
	"left_ankle", "right_ankle",
	"left_heel", "right_heel",
	"left_foot_index", "right_foot_index",
}

func (t LandmarkType) String() string {
	if t < 0 || t >= numLandmarkTypes {
		return "unknown"
	}
	return landmarkNames[t]
}

// ParseLandmarkType looks a joint up by name, ignoring case.
func ParseLandmarkType(name string) (LandmarkType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range landmarkNames {
		if n == name {
			return LandmarkType(i), nil
		}
	}
	return 0, errors.Errorf("unknown landmark type %q", name)
}

// MarshalText encodes the joint by name.
func (t LandmarkType) MarshalText() ([]byte, error) {
	if t < 0 || t >= numLandmarkTypes {
		return nil, errors.Errorf("unknown landmark type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText decodes a joint name.
func (t *LandmarkType) UnmarshalText(text []byte) error {
	parsed, err := ParseLandmarkType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Landmark is a detected joint with its position and a confidence score in [0, 1].
type Landmark struct {
	Type       LandmarkType
	Position   r2.Point
	Confidence float64
}

type landmarkJSON struct {
	Type       LandmarkType `json:"type"`
	X          float64      `json:"x"`
	Y          float64      `json:"y"`
	Confidence float64      `json:"confidence"`
}

// MarshalJSON encodes the landmark as {"type", "x", "y", "confidence"}.
func (l Landmark) MarshalJSON() ([]byte, error) {
	return json.Marshal(landmarkJSON{Type: l.Type, X: l.Position.X, Y: l.Position.Y, Confidence: l.Confidence})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (l *Landmark) UnmarshalJSON(data []byte) error {
	var raw landmarkJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = Landmark{Type: raw.Type, Position: r2.Point{X: raw.X, Y: raw.Y}, Confidence: raw.Confidence}
	return nil
}
