package linewatch

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/linewatch/go-linewatch/detect"
	"github.com/linewatch/go-linewatch/tracker"
	"github.com/linewatch/go-linewatch/violation"
)

// SessionParams holds the tuning for one tracking session
type SessionParams struct {
	// FPS is the stream frame rate used to derive the session clock
	FPS float64
	// BoundaryScale rescales the boundary from its reference resolution
	// to the operating frame resolution, 1.0 when they match
	BoundaryScale float32
	// PreRollSeconds of recent frames kept for the start of evidence
	// clips.  Zero disables the pre-roll ring.
	PreRollSeconds float64
	// MinVisibility is the minimum skeleton landmark visibility for
	// ground contact extraction
	MinVisibility float32
	// GroundPointsChecked is how many of the most confident ground
	// contact candidates are tested against the boundary each frame
	GroundPointsChecked int
	// Resolver is the identity association tuning
	Resolver tracker.ResolverConfig
	// Violation is the state machine tuning.  Its PreRoll hook is set by
	// the session.
	Violation violation.Config
}

// DefaultSessionParams returns a session configured with the standard
// defaults: 30fps, 150px association distance, 60 frame eviction, 10px
// boundary threshold, 2s debounce, elimination at 3 violations, 3s of
// pre-roll and 5s evidence clips
func DefaultSessionParams() SessionParams {
	return SessionParams{
		FPS:                 30,
		BoundaryScale:       1.0,
		PreRollSeconds:      3,
		MinVisibility:       detect.DefaultMinVisibility,
		GroundPointsChecked: 2,
		Resolver:            tracker.DefaultResolverConfig(),
		Violation:           violation.DefaultConfig(),
	}
}

// tuningFile is the YAML form of the session tuning.  Absent fields keep
// their defaults.
type tuningFile struct {
	FPS                 *float64 `yaml:"fps"`
	BoundaryScale       *float32 `yaml:"boundary_scale"`
	PreRollSeconds      *float64 `yaml:"pre_roll_seconds"`
	MinVisibility       *float32 `yaml:"min_visibility"`
	GroundPointsChecked *int     `yaml:"ground_points_checked"`

	Tracking struct {
		MaxAssociationDistance *float32 `yaml:"max_association_distance"`
		OverlapFraction        *float32 `yaml:"overlap_fraction"`
		MaxFramesMissing       *int     `yaml:"max_frames_missing"`
		ProcessNoise           *float64 `yaml:"process_noise"`
		MeasurementNoise       *float64 `yaml:"measurement_noise"`
	} `yaml:"tracking"`

	Violation struct {
		DebounceSeconds *float64 `yaml:"debounce_seconds"`
		MaxViolations   *int     `yaml:"max_violations"`
		GraceFrames     *int     `yaml:"grace_frames"`
	} `yaml:"violation"`
}

// LoadSessionParams reads a YAML tuning file and applies it over the
// defaults
func LoadSessionParams(path string) (SessionParams, error) {

	params := DefaultSessionParams()

	data, err := os.ReadFile(path)

	if err != nil {
		return params, fmt.Errorf("reading tuning file: %w", err)
	}

	var tf tuningFile

	if err := yaml.Unmarshal(data, &tf); err != nil {
		return params, fmt.Errorf("parsing tuning file %s: %w", path, err)
	}

	if tf.FPS != nil {
		params.FPS = *tf.FPS
	}
	if tf.BoundaryScale != nil {
		params.BoundaryScale = *tf.BoundaryScale
	}
	if tf.PreRollSeconds != nil {
		params.PreRollSeconds = *tf.PreRollSeconds
	}
	if tf.MinVisibility != nil {
		params.MinVisibility = *tf.MinVisibility
	}
	if tf.GroundPointsChecked != nil {
		params.GroundPointsChecked = *tf.GroundPointsChecked
	}

	if tf.Tracking.MaxAssociationDistance != nil {
		params.Resolver.MaxAssociationDistance = *tf.Tracking.MaxAssociationDistance
	}
	if tf.Tracking.OverlapFraction != nil {
		params.Resolver.OverlapFraction = *tf.Tracking.OverlapFraction
	}
	if tf.Tracking.MaxFramesMissing != nil {
		params.Resolver.MaxFramesMissing = *tf.Tracking.MaxFramesMissing
	}
	if tf.Tracking.ProcessNoise != nil {
		params.Resolver.ProcessNoise = *tf.Tracking.ProcessNoise
	}
	if tf.Tracking.MeasurementNoise != nil {
		params.Resolver.MeasurementNoise = *tf.Tracking.MeasurementNoise
	}

	if tf.Violation.DebounceSeconds != nil {
		params.Violation.Debounce = time.Duration(*tf.Violation.DebounceSeconds * float64(time.Second))
	}
	if tf.Violation.MaxViolations != nil {
		params.Violation.MaxViolations = *tf.Violation.MaxViolations
	}
	if tf.Violation.GraceFrames != nil {
		params.Violation.GraceFrames = *tf.Violation.GraceFrames
	}

	return params, nil
}
