package linewatch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSessionParams(t *testing.T) {

	tuning := `
fps: 25
boundary_scale: 0.5
tracking:
  max_association_distance: 200
  max_frames_missing: 90
violation:
  debounce_seconds: 1.5
  max_violations: 5
`

	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte(tuning), 0644))

	params, err := LoadSessionParams(path)
	require.NoError(t, err)

	assert.Equal(t, 25.0, params.FPS)
	assert.Equal(t, float32(0.5), params.BoundaryScale)
	assert.Equal(t, float32(200), params.Resolver.MaxAssociationDistance)
	assert.Equal(t, 90, params.Resolver.MaxFramesMissing)
	assert.Equal(t, 1500*time.Millisecond, params.Violation.Debounce)
	assert.Equal(t, 5, params.Violation.MaxViolations)

	// absent fields keep their defaults
	defaults := DefaultSessionParams()
	assert.Equal(t, defaults.MinVisibility, params.MinVisibility)
	assert.Equal(t, defaults.Resolver.OverlapFraction, params.Resolver.OverlapFraction)
	assert.Equal(t, defaults.Violation.GraceFrames, params.Violation.GraceFrames)
}

func TestLoadSessionParamsMissingFile(t *testing.T) {

	_, err := LoadSessionParams(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadSessionParamsBadYAML(t *testing.T) {

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fps: [oops"), 0644))

	_, err := LoadSessionParams(path)
	assert.Error(t, err)
}
