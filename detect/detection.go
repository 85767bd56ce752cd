/*
Package detect defines the raw detection data model produced by an external
object or pose detector, the capability interfaces those detectors expose,
and ground-contact point extraction from skeleton keypoints or bounding
boxes.
*/
package detect

// Landmark names a skeleton keypoint.  The lower body set matters for
// ground-contact extraction, the rest are carried for rendering.
type Landmark string

const (
	Nose           Landmark = "nose"
	LeftShoulder   Landmark = "left_shoulder"
	RightShoulder  Landmark = "right_shoulder"
	LeftElbow      Landmark = "left_elbow"
	RightElbow     Landmark = "right_elbow"
	LeftWrist      Landmark = "left_wrist"
	RightWrist     Landmark = "right_wrist"
	LeftHip        Landmark = "left_hip"
	RightHip       Landmark = "right_hip"
	LeftKnee       Landmark = "left_knee"
	RightKnee      Landmark = "right_knee"
	LeftAnkle      Landmark = "left_ankle"
	RightAnkle     Landmark = "right_ankle"
	LeftHeel       Landmark = "left_heel"
	RightHeel      Landmark = "right_heel"
	LeftFootIndex  Landmark = "left_foot_index"
	RightFootIndex Landmark = "right_foot_index"

	// BoxBottom is the synthetic landmark reported when no skeleton is
	// available and the bounding box bottom-center is used instead
	BoxBottom Landmark = "box_bottom"

	// ManualPoint is the synthetic landmark reported for an operator
	// supplied ground point override
	ManualPoint Landmark = "manual"
)

// KeyPoint is a single named skeleton landmark with its visibility score
type KeyPoint struct {
	Landmark   Landmark
	X          float32
	Y          float32
	Visibility float32
}

// Detection is one detected subject in one frame
type Detection struct {
	// Bounding box corners, X1 < X2 and Y1 < Y2
	X1, Y1, X2, Y2 float32
	// Score is the detector confidence for this detection
	Score float32
	// TransientID is the detector assigned tracking ID.  It is not
	// guaranteed stable across frames and may switch mid track.
	TransientID int64
	// KeyPoints holds named skeleton landmarks when the detector has pose
	// capability, nil otherwise
	KeyPoints []KeyPoint
}

// CenterX returns the x coordinate of the bounding box center
func (d *Detection) CenterX() float32 {
	return (d.X1 + d.X2) / 2
}

// CenterY returns the y coordinate of the bounding box center
func (d *Detection) CenterY() float32 {
	return (d.Y1 + d.Y2) / 2
}

// HasSkeleton reports whether the detection carries skeleton keypoints
func (d *Detection) HasSkeleton() bool {
	return len(d.KeyPoints) > 0
}

// KeyPoint returns the keypoint for the named landmark if present
func (d *Detection) KeyPoint(name Landmark) (KeyPoint, bool) {

	for _, kp := range d.KeyPoints {
		if kp.Landmark == name {
			return kp, true
		}
	}

	return KeyPoint{}, false
}
