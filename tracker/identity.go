package tracker

import (
	"github.com/linewatch/go-linewatch/detect"
)

// Identity is the long-lived record for one physical subject, decoupled
// from the transient per-frame ID the external detector produces.  Stable
// IDs are monotonically increasing and never reused.  Identities are
// owned exclusively by the Resolver's identity table, other components
// reference them by stable ID only.
type Identity struct {
	// id is the stable identity number
	id int64
	// transientID is the detector assigned ID last bound to this identity
	transientID int64
	// rect is the current bounding box
	rect Rect
	// lastSeen is the frame number this identity was last matched on
	lastSeen int
	// filter smooths the center position stream
	filter *PositionFilter
	// keyPoints caches the most recent skeleton, nil when the detector
	// has no pose capability
	keyPoints []detect.KeyPoint
	// manualGround is an operator supplied ground point override.  When
	// set it takes precedence over extraction.
	manualGround    detect.GroundPoint
	hasManualGround bool
}

// ID returns the stable identity number
func (n *Identity) ID() int64 {
	return n.id
}

// TransientID returns the detector ID currently bound to this identity
func (n *Identity) TransientID() int64 {
	return n.transientID
}

// Rect returns the current bounding box
func (n *Identity) Rect() Rect {
	return n.rect
}

// Center returns the current measured center position
func (n *Identity) Center() (x, y float32) {
	return n.rect.CenterX(), n.rect.CenterY()
}

// LastSeen returns the frame number this identity was last matched on
func (n *Identity) LastSeen() int {
	return n.lastSeen
}

// Filter returns the identity's position filter
func (n *Identity) Filter() *PositionFilter {
	return n.filter
}

// KeyPoints returns the cached skeleton keypoints from the most recent
// matched detection, nil if the detector provided none
func (n *Identity) KeyPoints() []detect.KeyPoint {
	return n.keyPoints
}

// Detection rebuilds a detection view of the identity's current state for
// ground contact extraction
func (n *Identity) Detection() *detect.Detection {
	return &detect.Detection{
		X1:          n.rect.X1,
		Y1:          n.rect.Y1,
		X2:          n.rect.X2,
		Y2:          n.rect.Y2,
		TransientID: n.transientID,
		KeyPoints:   n.keyPoints,
	}
}

// SetManualGround sets an operator supplied ground point that suppresses
// skeleton and bbox extraction for this identity
func (n *Identity) SetManualGround(x, y float32) {
	n.manualGround = detect.GroundPoint{
		X:          x,
		Y:          y,
		Landmark:   detect.ManualPoint,
		Confidence: 1.0,
	}
	n.hasManualGround = true
}

// ClearManualGround removes the manual override
func (n *Identity) ClearManualGround() {
	n.manualGround = detect.GroundPoint{}
	n.hasManualGround = false
}

// ManualGround returns the manual override ground point if one is set
func (n *Identity) ManualGround() (detect.GroundPoint, bool) {
	return n.manualGround, n.hasManualGround
}

// update records a matched detection against this identity
func (n *Identity) update(det *detect.Detection, frameNum int) {
	n.transientID = det.TransientID
	n.rect = NewRect(det.X1, det.Y1, det.X2, det.Y2)
	n.lastSeen = frameNum
	n.keyPoints = det.KeyPoints
}
