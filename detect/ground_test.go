package detect

import (
	"testing"
)

func poseDetection(kps ...KeyPoint) *Detection {
	return &Detection{
		X1: 100, Y1: 50, X2: 200, Y2: 450,
		Score:       0.9,
		TransientID: 7,
		KeyPoints:   kps,
	}
}

func TestGroundPointsBoxFallback(t *testing.T) {

	d := &Detection{X1: 100, Y1: 50, X2: 200, Y2: 450, Score: 0.8}

	points := GroundPoints(d, DefaultMinVisibility)

	if len(points) != 1 {
		t.Fatalf("expected single bbox fallback point, got %d", len(points))
	}

	if points[0].Landmark != BoxBottom {
		t.Errorf("expected BoxBottom landmark, got %s", points[0].Landmark)
	}

	if points[0].X != 150 || points[0].Y != 450 {
		t.Errorf("expected bottom-center (150,450), got (%v,%v)",
			points[0].X, points[0].Y)
	}
}

func TestGroundPointsConfidenceOrder(t *testing.T) {

	d := poseDetection(
		KeyPoint{Landmark: LeftAnkle, X: 120, Y: 430, Visibility: 0.5},
		KeyPoint{Landmark: LeftHeel, X: 118, Y: 445, Visibility: 0.9},
		KeyPoint{Landmark: RightHeel, X: 180, Y: 444, Visibility: 0.7},
		// below visibility threshold, must be dropped
		KeyPoint{Landmark: RightAnkle, X: 182, Y: 431, Visibility: 0.1},
	)

	points := GroundPoints(d, DefaultMinVisibility)

	if len(points) != 3 {
		t.Fatalf("expected 3 visible candidates, got %d", len(points))
	}

	want := []Landmark{LeftHeel, RightHeel, LeftAnkle}

	for i, name := range want {
		if points[i].Landmark != name {
			t.Errorf("position %d: expected %s, got %s", i, name, points[i].Landmark)
		}
	}
}

// TestBestGroundPointPriority checks that a lower confidence heel beats a
// higher confidence knee
func TestBestGroundPointPriority(t *testing.T) {

	d := poseDetection(
		KeyPoint{Landmark: LeftKnee, X: 130, Y: 380, Visibility: 0.95},
		KeyPoint{Landmark: RightHeel, X: 180, Y: 445, Visibility: 0.4},
	)

	best, ok := BestGroundPoint(d, DefaultMinVisibility)

	if !ok {
		t.Fatal("expected a ground point")
	}

	if best.Landmark != RightHeel {
		t.Errorf("heel should outrank knee, got %s", best.Landmark)
	}
}

func TestBestGroundPointKneeFallback(t *testing.T) {

	d := poseDetection(
		KeyPoint{Landmark: LeftKnee, X: 130, Y: 380, Visibility: 0.6},
		// everything below the knee invisible
		KeyPoint{Landmark: LeftAnkle, X: 128, Y: 430, Visibility: 0.05},
		KeyPoint{Landmark: LeftHeel, X: 126, Y: 445, Visibility: 0.02},
	)

	best, ok := BestGroundPoint(d, DefaultMinVisibility)

	if !ok {
		t.Fatal("expected a ground point")
	}

	if best.Landmark != LeftKnee {
		t.Errorf("expected knee fallback, got %s", best.Landmark)
	}
}

func TestBestGroundPointNothingVisible(t *testing.T) {

	d := poseDetection(
		KeyPoint{Landmark: LeftHeel, X: 126, Y: 445, Visibility: 0.1},
	)

	_, ok := BestGroundPoint(d, DefaultMinVisibility)

	if ok {
		t.Error("expected no ground point when all landmarks below threshold")
	}
}
