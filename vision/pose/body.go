package pose

import (
	"github.com/golang/geo/r2"

	"go.viam.com/tryon/rimage/transform"
	"go.viam.com/tryon/utils"
)

const (
	// DefaultConfidenceThreshold is the minimum confidence each torso landmark needs.
	DefaultConfidenceThreshold = 0.7

	// minVertexLength is the distance from the center under which a vertex has no direction.
	minVertexLength = 1e-6
)

// Body holds the four torso landmark positions of one detection.
type Body struct {
	LeftShoulder  r2.Point
	RightShoulder r2.Point
	RightHip      r2.Point
	LeftHip       r2.Point
}

// Validate extracts the shoulders and hips from landmarks. It fails when any of the four is
// missing, has a non-finite position, or is less confident than threshold. When a joint is
// reported more than once the first report wins.
func Validate(landmarks []Landmark, threshold float64) (*Body, bool) {
	var (
		found [4]bool
		pos   [4]r2.Point
	)
	for _, lm := range landmarks {
		idx := torsoIndex(lm.Type)
		if idx < 0 || found[idx] {
			continue
		}
		found[idx] = true
		if !(lm.Confidence >= threshold) || !utils.IsFinite(lm.Position.X, lm.Position.Y) {
			return nil, false
		}
		pos[idx] = lm.Position
	}
	for _, ok := range found {
		if !ok {
			return nil, false
		}
	}
	return &Body{LeftShoulder: pos[0], RightShoulder: pos[1], RightHip: pos[2], LeftHip: pos[3]}, true
}

// NewBodyFromLandmarks validates landmarks with DefaultConfidenceThreshold.
func NewBodyFromLandmarks(landmarks []Landmark) (*Body, bool) {
	return Validate(landmarks, DefaultConfidenceThreshold)
}

// torsoIndex returns the position of t in quad order, or -1.
func torsoIndex(t LandmarkType) int {
	switch t {
	case LeftShoulder:
		return 0
	case RightShoulder:
		return 1
	case RightHip:
		return 2
	case LeftHip:
		return 3
	default:
		return -1
	}
}

// Center is the midpoint between the shoulder midpoint and the hip midpoint.
func (b Body) Center() r2.Point {
	shoulders := b.LeftShoulder.Add(b.RightShoulder).Mul(0.5)
	hips := b.LeftHip.Add(b.RightHip).Mul(0.5)
	return shoulders.Add(hips).Mul(0.5)
}

// ShoulderWidth is the distance between the shoulders.
func (b Body) ShoulderWidth() float64 {
	return b.RightShoulder.Sub(b.LeftShoulder).Norm()
}

// Quad returns left shoulder, right shoulder, right hip, left hip.
func (b Body) Quad() transform.Quad {
	return transform.Quad{b.LeftShoulder, b.RightShoulder, b.RightHip, b.LeftHip}
}

// Map moves every point of the body into another coordinate space.
func (b Body) Map(mapper CoordinateMapper) Body {
	return Body{
		LeftShoulder:  mapper.Map(b.LeftShoulder),
		RightShoulder: mapper.Map(b.RightShoulder),
		RightHip:      mapper.Map(b.RightHip),
		LeftHip:       mapper.Map(b.LeftHip),
	}
}

// ScaledOffsetQuad keeps the direction of every vertex from the body center but resizes it
// independently to the length of the matching corner of a targetWidth x targetHeight rectangle
// centered at the origin. The result is moved by (offsetX, offsetY). A vertex lying on the center
// collapses onto it.
func (b Body) ScaledOffsetQuad(targetWidth, targetHeight, offsetX, offsetY float64) transform.Quad {
	center := b.Center()
	anchor := center.Add(r2.Point{X: offsetX, Y: offsetY})
	hw, hh := targetWidth/2, targetHeight/2
	corners := transform.Quad{{X: -hw, Y: -hh}, {X: hw, Y: -hh}, {X: hw, Y: hh}, {X: -hw, Y: hh}}

	var out transform.Quad
	for i, vertex := range b.Quad() {
		v := vertex.Sub(center)
		length := v.Norm()
		var scaled r2.Point
		if length > minVertexLength {
			scaled = v.Mul(corners[i].Norm() / length)
		}
		out[i] = anchor.Add(scaled)
	}
	return out
}

// Landmarks returns the body as four fully confident landmarks.
func (b Body) Landmarks() []Landmark {
	return []Landmark{
		{Type: LeftShoulder, Position: b.LeftShoulder, Confidence: 1},
		{Type: RightShoulder, Position: b.RightShoulder, Confidence: 1},
		{Type: RightHip, Position: b.RightHip, Confidence: 1},
		{Type: LeftHip, Position: b.LeftHip, Confidence: 1},
	}
}
