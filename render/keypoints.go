package render

import (
	"image"

	"gocv.io/x/gocv"

	"github.com/linewatch/go-linewatch/detect"
)

var (
	// skeleton defines the landmark pairs to draw limb lines between
	skeleton = [][2]detect.Landmark{
		{detect.LeftShoulder, detect.RightShoulder},
		{detect.LeftShoulder, detect.LeftElbow},
		{detect.LeftElbow, detect.LeftWrist},
		{detect.RightShoulder, detect.RightElbow},
		{detect.RightElbow, detect.RightWrist},
		{detect.LeftShoulder, detect.LeftHip},
		{detect.RightShoulder, detect.RightHip},
		{detect.LeftHip, detect.RightHip},
		{detect.LeftHip, detect.LeftKnee},
		{detect.LeftKnee, detect.LeftAnkle},
		{detect.LeftAnkle, detect.LeftHeel},
		{detect.LeftHeel, detect.LeftFootIndex},
		{detect.RightHip, detect.RightKnee},
		{detect.RightKnee, detect.RightAnkle},
		{detect.RightAnkle, detect.RightHeel},
		{detect.RightHeel, detect.RightFootIndex},
	}
)

// Skeletons renders the pose keypoints and limb lines for every subject.
// Landmarks below minVisibility are skipped along with any limb touching
// them.
func Skeletons(img *gocv.Mat, detections []detect.Detection,
	minVisibility float32, lineThickness int) {

	for i := range detections {

		det := &detections[i]

		if !det.HasSkeleton() {
			continue
		}

		// draw limb lines between visible landmark pairs
		for _, limb := range skeleton {
			a, okA := det.KeyPoint(limb[0])
			b, okB := det.KeyPoint(limb[1])

			if !okA || !okB || a.Visibility < minVisibility ||
				b.Visibility < minVisibility {
				continue
			}

			gocv.Line(img, image.Pt(int(a.X), int(a.Y)),
				image.Pt(int(b.X), int(b.Y)), limbColor, lineThickness)
		}

		// draw circles at visible joints
		for _, kp := range det.KeyPoints {
			if kp.Visibility < minVisibility {
				continue
			}

			gocv.Circle(img, image.Pt(int(kp.X), int(kp.Y)), 3, jointColor, -1)
		}
	}
}
