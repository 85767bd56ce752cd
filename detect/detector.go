package detect

import (
	"gocv.io/x/gocv"
)

// BoxOnlyDetector is the capability interface for detectors that produce
// bounding boxes without skeleton keypoints.  Implementations must return
// an empty slice, not an error, for frames containing no subjects.
type BoxOnlyDetector interface {
	Detect(img gocv.Mat) ([]Detection, error)
}

// SkeletonDetector is the capability interface for pose detectors that
// return named skeleton keypoints in addition to bounding boxes.  Ground
// contact extraction prefers this capability when available.
type SkeletonDetector interface {
	BoxOnlyDetector

	// DetectPose returns detections with KeyPoints populated
	DetectPose(img gocv.Mat) ([]Detection, error)
}
