package detect

import (
	"sort"
)

// DefaultMinVisibility is the minimum landmark visibility score for a
// keypoint to be considered a ground contact candidate
const DefaultMinVisibility = 0.3

// groundLandmarks lists the lower body landmarks considered for ground
// contact, in descending priority order.  Heels touch the ground first,
// knees are only a fallback when nothing below them is visible.
var groundLandmarks = []Landmark{
	LeftHeel, RightHeel,
	LeftFootIndex, RightFootIndex,
	LeftAnkle, RightAnkle,
	LeftKnee, RightKnee,
}

// landmarkPriority maps each ground landmark to its priority rank, lower
// is better
var landmarkPriority = func() map[Landmark]int {
	m := make(map[Landmark]int, len(groundLandmarks))
	for i, name := range groundLandmarks {
		// heel pairs share rank 0, foot index pairs rank 1, etc
		m[name] = i / 2
	}
	return m
}()

// GroundPoint is a candidate ground contact point derived from a
// detection
type GroundPoint struct {
	X          float32
	Y          float32
	Landmark   Landmark
	Confidence float32
}

// GroundPoints derives the ground contact candidates for a detection,
// ordered by descending confidence.  With skeleton keypoints available it
// returns the visible lower body landmarks above minVisibility.  Without a
// skeleton it falls back to the bounding box bottom-center.  An empty
// result means the detector gave us nothing usable this frame, the caller
// treats that as no violation rather than an error.
func GroundPoints(d *Detection, minVisibility float32) []GroundPoint {

	if !d.HasSkeleton() {
		return []GroundPoint{{
			X:          d.CenterX(),
			Y:          d.Y2,
			Landmark:   BoxBottom,
			Confidence: d.Score,
		}}
	}

	var points []GroundPoint

	for _, name := range groundLandmarks {

		kp, ok := d.KeyPoint(name)

		if !ok || kp.Visibility < minVisibility {
			continue
		}

		points = append(points, GroundPoint{
			X:          kp.X,
			Y:          kp.Y,
			Landmark:   kp.Landmark,
			Confidence: kp.Visibility,
		})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Confidence > points[j].Confidence
	})

	return points
}

// BestGroundPoint selects the single most reliable ground contact point
// for a scalar boundary test.  Candidates are ranked by landmark priority
// (heel, foot index, ankle, knee) then by confidence within a rank.  A
// bounding box fallback always succeeds, so the second return is false
// only when a skeleton is present but no landmark clears minVisibility.
func BestGroundPoint(d *Detection, minVisibility float32) (GroundPoint, bool) {

	points := GroundPoints(d, minVisibility)

	if len(points) == 0 {
		return GroundPoint{}, false
	}

	best := points[0]
	bestRank := rankOf(best.Landmark)

	for _, p := range points[1:] {
		if r := rankOf(p.Landmark); r < bestRank {
			best = p
			bestRank = r
		}
	}

	return best, true
}

func rankOf(name Landmark) int {

	if r, ok := landmarkPriority[name]; ok {
		return r
	}

	// bbox fallback ranks below every skeleton landmark
	return len(groundLandmarks)
}
