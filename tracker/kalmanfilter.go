package tracker

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// StateMean represents the 1x4 state vector (x, y, vx, vy) using a slice
// of float32
type StateMean []float32

// StateCov represents the 4x4 state covariance matrix
type StateCov struct {
	*mat.Dense
}

// Default noise constants for the constant velocity model.  Process noise
// is small relative to measurement noise which favours smoothness over
// responsiveness when following noisy per-frame detections.
const (
	DefaultProcessNoise     = 0.03
	DefaultMeasurementNoise = 0.1

	// maxCovarianceDiag bounds the covariance diagonal so the filter stays
	// numerically stable over arbitrarily long sessions when a subject
	// goes undetected for many frames
	maxCovarianceDiag = 1e6
)

// PositionFilter is a per-subject Kalman filter smoothing a noisy 2D
// position stream under a constant velocity motion model.  Predict may be
// called without a matching Update to coast through missed detection
// frames.
type PositionFilter struct {
	processNoise     float64
	measurementNoise float64
	// motionMat is the 4x4 state transition matrix
	motionMat *mat.Dense
	// updateMat is the 2x4 measurement projection matrix
	updateMat *mat.Dense
	// mean is the current state vector
	mean StateMean
	// covariance is the current state covariance
	covariance StateCov
}

// NewPositionFilter initializes and returns a new PositionFilter at the
// given initial position with zero velocity
func NewPositionFilter(x, y float32, processNoise, measurementNoise float64) *PositionFilter {

	ndim := 2
	dt := 1.0

	// identity plus dt terms coupling position to velocity
	motionMat := mat.NewDense(4, 4, nil)

	for i := 0; i < 4; i++ {
		motionMat.Set(i, i, 1.0)
	}

	for i := 0; i < ndim; i++ {
		motionMat.Set(i, ndim+i, dt)
	}

	// measurement matrix observes position only
	updateMat := mat.NewDense(2, 4, nil)

	for i := 0; i < 2; i++ {
		updateMat.Set(i, i, 1.0)
	}

	covariance := StateCov{mat.NewDense(4, 4, nil)}

	for i := 0; i < 4; i++ {
		covariance.Set(i, i, 1.0)
	}

	return &PositionFilter{
		processNoise:     processNoise,
		measurementNoise: measurementNoise,
		motionMat:        motionMat,
		updateMat:        updateMat,
		mean:             StateMean{x, y, 0, 0},
		covariance:       covariance,
	}
}

// Predict advances the state by one step using the transition model and
// returns the predicted position.  Callable with no new measurement to
// handle missed detection frames.
func (pf *PositionFilter) Predict() (x, y float32) {

	// convert the mean state vector to a matrix for multiplication
	meanMat := mat.NewDense(4, 1, nil)

	for i := 0; i < 4; i++ {
		meanMat.Set(i, 0, float64(pf.mean[i]))
	}

	// predict the next state mean using the motion model
	meanMat.Mul(pf.motionMat, meanMat)

	for i := 0; i < 4; i++ {
		pf.mean[i] = float32(meanMat.At(i, 0))
	}

	// predict the next state covariance using the motion model plus the
	// process noise, clamping the diagonal to keep it bounded
	cov := pf.covariance.Dense
	cov.Mul(pf.motionMat, cov)
	cov.Mul(cov, pf.motionMat.T())

	for i := 0; i < 4; i++ {
		cov.Set(i, i, cov.At(i, i)+pf.processNoise)
	}

	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			v := cov.At(i, j)

			if v > maxCovarianceDiag {
				v = maxCovarianceDiag
			} else if v < -maxCovarianceDiag {
				v = -maxCovarianceDiag
			}

			cov.Set(i, j, v)
		}
	}

	return pf.mean[0], pf.mean[1]
}

// Update corrects the state toward the observed position
func (pf *PositionFilter) Update(x, y float32) error {

	// project the state mean and covariance to measurement space
	projectedMean, projectedCov := pf.project()

	// perform Cholesky factorization of the projected covariance matrix
	chol := mat.Cholesky{}

	if ok := chol.Factorize(projectedCov); !ok {
		return errors.New("failed to factorize projected covariance")
	}

	// compute the matrix B for Kalman gain calculation
	B := mat.NewDense(4, 2, nil)
	B.Mul(pf.covariance.Dense, pf.updateMat.T())

	// compute the Kalman gain using the Cholesky factorization
	var kalmanGain mat.Dense
	err := chol.SolveTo(&kalmanGain, B.T())

	if err != nil {
		return fmt.Errorf("failed to compute kalman gain: %w", err)
	}

	// compute the innovation (measurement residual)
	innovation := mat.NewVecDense(2, []float64{
		float64(x - projectedMean[0]),
		float64(y - projectedMean[1]),
	})

	// update the state mean with the innovation
	tmp := mat.NewVecDense(4, nil)
	tmp.MulVec(kalmanGain.T(), innovation)

	for i := 0; i < 4; i++ {
		pf.mean[i] += float32(tmp.AtVec(i))
	}

	// update the state covariance
	temp := mat.NewDense(4, 2, nil)
	temp.Mul(kalmanGain.T(), projectedCov)

	temp2 := mat.NewDense(4, 4, nil)
	temp2.Mul(temp, &kalmanGain)

	newCov := mat.NewDense(4, 4, nil)
	newCov.Sub(pf.covariance.Dense, temp2)

	pf.covariance.Dense = newCov

	return nil
}

// Position returns the current state position without advancing the model
func (pf *PositionFilter) Position() (x, y float32) {
	return pf.mean[0], pf.mean[1]
}

// Velocity returns the current state velocity estimate
func (pf *PositionFilter) Velocity() (vx, vy float32) {
	return pf.mean[2], pf.mean[3]
}

// project projects the state mean and covariance to measurement space
func (pf *PositionFilter) project() (StateMean, *mat.SymDense) {

	// project the state mean to measurement space
	meanVec := mat.NewVecDense(4, nil)

	for i := 0; i < 4; i++ {
		meanVec.SetVec(i, float64(pf.mean[i]))
	}

	projectedMeanVec := mat.NewVecDense(2, nil)
	projectedMeanVec.MulVec(pf.updateMat, meanVec)

	// project the state covariance to measurement space and add the
	// measurement noise
	temp := mat.NewDense(2, 4, nil)
	temp.Mul(pf.updateMat, pf.covariance.Dense)

	temp2 := mat.NewDense(2, 2, nil)
	temp2.Mul(temp, pf.updateMat.T())

	projectedCov := mat.NewSymDense(2, nil)

	for i := 0; i < 2; i++ {
		for j := i; j < 2; j++ {
			projectedCov.SetSym(i, j, (temp2.At(i, j)+temp2.At(j, i))/2)
		}
	}

	for i := 0; i < 2; i++ {
		projectedCov.SetSym(i, i, projectedCov.At(i, i)+pf.measurementNoise)
	}

	projectedMean := StateMean{
		float32(projectedMeanVec.AtVec(0)),
		float32(projectedMeanVec.AtVec(1)),
	}

	return projectedMean, projectedCov
}
