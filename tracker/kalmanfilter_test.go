package tracker

import (
	"testing"
)

// floatsEqual compares slices of float32
func floatsEqual(a, b []float32, epsilon float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if diff := a[i] - b[i]; diff > epsilon || diff < -epsilon {
			return false
		}
	}
	return true
}

func TestPositionFilterInitialState(t *testing.T) {

	pf := NewPositionFilter(100, 200, DefaultProcessNoise, DefaultMeasurementNoise)

	x, y := pf.Position()

	if x != 100 || y != 200 {
		t.Errorf("expected initial position (100,200), got (%v,%v)", x, y)
	}

	vx, vy := pf.Velocity()

	if vx != 0 || vy != 0 {
		t.Errorf("expected zero initial velocity, got (%v,%v)", vx, vy)
	}
}

// TestPositionFilterStationary verifies a stationary subject's prediction
// stays at the measured position
func TestPositionFilterStationary(t *testing.T) {

	pf := NewPositionFilter(300, 400, DefaultProcessNoise, DefaultMeasurementNoise)

	for i := 0; i < 50; i++ {
		pf.Predict()

		if err := pf.Update(300, 400); err != nil {
			t.Fatalf("update failed at step %d: %v", i, err)
		}
	}

	x, y := pf.Predict()

	if !floatsEqual([]float32{x, y}, []float32{300, 400}, 1.0) {
		t.Errorf("stationary subject drifted to (%v,%v)", x, y)
	}
}

// TestPositionFilterConstantVelocity feeds a subject moving at a steady
// 5px/frame and checks the one step ahead prediction converges on the
// true path
func TestPositionFilterConstantVelocity(t *testing.T) {

	pf := NewPositionFilter(0, 0, DefaultProcessNoise, DefaultMeasurementNoise)

	var px, py float32

	for i := 1; i <= 100; i++ {
		px, py = pf.Predict()

		if err := pf.Update(float32(i)*5, float32(i)*3); err != nil {
			t.Fatalf("update failed at step %d: %v", i, err)
		}
	}

	// after convergence the prediction for frame 100 should be close to
	// the true position (500, 300)
	if !floatsEqual([]float32{px, py}, []float32{500, 300}, 5.0) {
		t.Errorf("prediction (%v,%v) too far from true position (500,300)", px, py)
	}

	vx, vy := pf.Velocity()

	if !floatsEqual([]float32{vx, vy}, []float32{5, 3}, 0.5) {
		t.Errorf("velocity estimate (%v,%v) too far from (5,3)", vx, vy)
	}
}

// TestPositionFilterCoasting predicts through missed detections and
// verifies the constant velocity model carries the position forward
func TestPositionFilterCoasting(t *testing.T) {

	pf := NewPositionFilter(0, 100, DefaultProcessNoise, DefaultMeasurementNoise)

	// establish a velocity of 10px/frame in x
	for i := 1; i <= 30; i++ {
		pf.Predict()

		if err := pf.Update(float32(i)*10, 100); err != nil {
			t.Fatalf("update failed at step %d: %v", i, err)
		}
	}

	// coast 5 frames with no measurement
	var x, y float32

	for i := 0; i < 5; i++ {
		x, y = pf.Predict()
	}

	// true position would be 350
	if !floatsEqual([]float32{x, y}, []float32{350, 100}, 10.0) {
		t.Errorf("coasted to (%v,%v), expected near (350,100)", x, y)
	}
}

// TestPositionFilterLongRunStability runs an extended noisy session and
// confirms the filter neither diverges nor errors
func TestPositionFilterLongRunStability(t *testing.T) {

	pf := NewPositionFilter(500, 500, DefaultProcessNoise, DefaultMeasurementNoise)

	for i := 0; i < 100000; i++ {

		pf.Predict()

		// alternate measurement jitter of +-2px
		j := float32(i%5) - 2

		if err := pf.Update(500+j, 500-j); err != nil {
			t.Fatalf("update failed at step %d: %v", i, err)
		}
	}

	x, y := pf.Position()

	if !floatsEqual([]float32{x, y}, []float32{500, 500}, 5.0) {
		t.Errorf("long run position (%v,%v) drifted from (500,500)", x, y)
	}
}

// TestPositionFilterCoastThenUpdate confirms Update still factorizes after
// a long stretch of Predict-only frames inflates the covariance
func TestPositionFilterCoastThenUpdate(t *testing.T) {

	pf := NewPositionFilter(100, 100, DefaultProcessNoise, DefaultMeasurementNoise)

	for i := 0; i < 10000; i++ {
		pf.Predict()
	}

	if err := pf.Update(120, 130); err != nil {
		t.Fatalf("update after long coast failed: %v", err)
	}

	x, y := pf.Position()

	// with a huge coasted covariance the measurement dominates
	if !floatsEqual([]float32{x, y}, []float32{120, 130}, 2.0) {
		t.Errorf("post-coast update landed at (%v,%v), expected near (120,130)", x, y)
	}
}
