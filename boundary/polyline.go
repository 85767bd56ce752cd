/*
Package boundary implements the boundary line model used for ground-contact
violation tests.  A boundary is an ordered polyline of 2D points in image
coordinates, typically drawn by an operator with a line selection tool and
stored in a JSON config file.
*/
package boundary

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
)

// DefaultThreshold is the number of pixels a point's y value must exceed
// the interpolated boundary y by before it counts as a violation
const DefaultThreshold = 10

// ErrTooFewPoints is returned when a boundary has fewer than 2 points
var ErrTooFewPoints = errors.New("boundary requires at least 2 points")

// ConfigError indicates the boundary config file is missing or invalid.
// Running without a valid boundary is a fatal, operator visible condition
// so callers are expected to surface this rather than fall back silently.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("boundary config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Point is a 2D point in image coordinates
type Point struct {
	X float32
	Y float32
}

// Config is the persisted structure written by the external line selection
// tool
type Config struct {
	// BoundaryPoints are [x,y] pairs in the reference resolution
	BoundaryPoints [][2]float32 `json:"boundary_points"`
	// Method records how the line was produced, eg: "TWO_POINTS" or "HOUGH"
	Method string `json:"method"`
}

// Polyline is an ordered sequence of connected 2D points defining the
// boundary line.  The zero value is an empty boundary in degraded mode
// where every violation test returns false.
type Polyline struct {
	// points sorted by ascending x for interpolation
	points []Point
	// method the line was produced with, carried through save/load
	method string
	// threshold in pixels past the line before a point is a violation
	threshold float32
}

// New creates a Polyline from the given points.  Returns ErrTooFewPoints
// if fewer than 2 points are provided.
func New(points []Point) (*Polyline, error) {

	p := &Polyline{threshold: DefaultThreshold}

	err := p.Load(points)

	if err != nil {
		return nil, err
	}

	return p, nil
}

// Load replaces the polyline points.  Fails with ErrTooFewPoints when
// fewer than 2 points are given, leaving the existing points unchanged.
func (p *Polyline) Load(points []Point) error {

	if len(points) < 2 {
		return ErrTooFewPoints
	}

	// copy and sort by x so interpolation can walk segments left to right.
	// sorting makes violation decisions independent of the insertion order
	// of the points
	sorted := make([]Point, len(points))
	copy(sorted, points)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].X < sorted[j].X
	})

	p.points = sorted

	if p.threshold == 0 {
		p.threshold = DefaultThreshold
	}

	return nil
}

// SetThreshold overrides the violation pixel threshold
func (p *Polyline) SetThreshold(px float32) {
	p.threshold = px
}

// Threshold returns the violation pixel threshold
func (p *Polyline) Threshold() float32 {
	return p.threshold
}

// Method returns the line detection method recorded in the config file
func (p *Polyline) Method() string {
	return p.method
}

// Ready reports whether the boundary has enough points to perform
// violation tests.  When false the model is in degraded mode and
// IsViolation always returns false.
func (p *Polyline) Ready() bool {
	return len(p.points) >= 2
}

// Points returns a copy of the polyline points in x sorted order
func (p *Polyline) Points() []Point {
	pts := make([]Point, len(p.points))
	copy(pts, p.points)
	return pts
}

// Scale returns a new Polyline with every point multiplied by factor.
// Boundary points are stored in a reference resolution and must be
// rescaled when the operating frame resolution differs.  The receiver is
// unchanged.
func (p *Polyline) Scale(factor float32) *Polyline {

	scaled := make([]Point, len(p.points))

	for i, pt := range p.points {
		scaled[i] = Point{X: pt.X * factor, Y: pt.Y * factor}
	}

	return &Polyline{
		points:    scaled,
		method:    p.method,
		threshold: p.threshold,
	}
}

// ValueAt returns the boundary y value at the given x.  For x inside the
// polyline's x range the segment containing x is linearly interpolated.
// For x outside the range the nearest endpoint's y is used.  A vertical
// segment contributes its lower-most (greatest y) point so any y within
// the segment's y range tests as on the line.  Returns false when the
// boundary is not Ready.
func (p *Polyline) ValueAt(x float32) (float32, bool) {

	if !p.Ready() {
		return 0, false
	}

	first := p.points[0]
	last := p.points[len(p.points)-1]

	// extrapolate using the nearest endpoint
	if x < first.X {
		return first.Y, true
	}

	if x > last.X {
		return last.Y, true
	}

	for i := 0; i < len(p.points)-1; i++ {

		p1 := p.points[i]
		p2 := p.points[i+1]

		if x < p1.X || x > p2.X {
			continue
		}

		// vertical segment, the boundary occupies the whole y range at
		// this x so use the bottom-most point
		if p1.X == p2.X {
			if p2.Y > p1.Y {
				return p2.Y, true
			}
			return p1.Y, true
		}

		t := (x - p1.X) / (p2.X - p1.X)
		return p1.Y + (p2.Y-p1.Y)*t, true
	}

	// unreachable with sorted points
	return last.Y, true
}

// IsViolation reports whether the point at (x, y) is past the boundary
// line.  A point violates when its y exceeds the boundary y at that x by
// more than the pixel threshold, y increasing downward in image
// coordinates.  Always false in degraded mode.
func (p *Polyline) IsViolation(x, y float32) bool {

	lineY, ok := p.ValueAt(x)

	if !ok {
		return false
	}

	return y > lineY+p.threshold
}

// LoadFile reads a boundary Config from the JSON file at path.  Returns a
// *ConfigError when the file is missing, unparseable, or holds fewer than
// 2 points.
func LoadFile(path string) (*Polyline, error) {

	data, err := os.ReadFile(path)

	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	var cfg Config

	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ConfigError{Path: path, Err: fmt.Errorf("error parsing file: %w", err)}
	}

	if len(cfg.BoundaryPoints) < 2 {
		return nil, &ConfigError{Path: path, Err: ErrTooFewPoints}
	}

	points := make([]Point, len(cfg.BoundaryPoints))

	for i, bp := range cfg.BoundaryPoints {
		points[i] = Point{X: bp[0], Y: bp[1]}
	}

	p, err := New(points)

	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	p.method = cfg.Method

	return p, nil
}

// SaveFile writes the polyline to the JSON config format read by LoadFile
func (p *Polyline) SaveFile(path string) error {

	cfg := Config{
		BoundaryPoints: make([][2]float32, len(p.points)),
		Method:         p.method,
	}

	for i, pt := range p.points {
		cfg.BoundaryPoints[i] = [2]float32{pt.X, pt.Y}
	}

	data, err := json.MarshalIndent(cfg, "", "  ")

	if err != nil {
		return fmt.Errorf("error encoding boundary config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing boundary config: %w", err)
	}

	return nil
}

// SetMethod records the line detection method tag written by SaveFile
func (p *Polyline) SetMethod(method string) {
	p.method = method
}
