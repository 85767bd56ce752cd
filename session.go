package linewatch

import (
	"time"

	"github.com/linewatch/go-linewatch/boundary"
	"github.com/linewatch/go-linewatch/detect"
	"github.com/linewatch/go-linewatch/tracker"
	"github.com/linewatch/go-linewatch/violation"
)

// SubjectStatus is the per-subject outcome of one processed frame
type SubjectStatus struct {
	// ID is the stable identity
	ID int64
	// Rect is the subject's bounding box this frame
	Rect tracker.Rect
	// State after this frame's observation
	State violation.State
	// Count is the running violation count
	Count int
	// Ground is the contact point tested against the boundary.  When the
	// subject is violating it is the point that crossed, otherwise the
	// highest priority visible landmark.
	Ground detect.GroundPoint
	// HasGround is false when no contact point could be derived
	HasGround bool
	// Event is the state machine outcome for this frame
	Event violation.Event
}

// Session runs the full pipeline for one stream: identity resolution,
// ground contact extraction, boundary testing, the violation state
// machines and the pre-roll evidence ring
type Session struct {
	params      SessionParams
	line        *boundary.Polyline
	resolver    *tracker.Resolver
	monitor     *violation.Monitor
	ring        *frameRing
	framePeriod time.Duration
	frameNum    int
}

// NewSession creates a session testing subjects against line and emitting
// evidence events to sink.  A nil line runs the session degraded, tracking
// identities but never signalling violations.  A nil sink discards
// evidence.
func NewSession(params SessionParams, line *boundary.Polyline, sink violation.EvidenceSink) *Session {

	if line == nil {
		line = &boundary.Polyline{}
	}

	if params.BoundaryScale != 0 && params.BoundaryScale != 1.0 {
		line = line.Scale(params.BoundaryScale)
	}

	if params.FPS <= 0 {
		params.FPS = 30
	}

	ringSize := int(params.PreRollSeconds * params.FPS)
	ring := newFrameRing(ringSize)

	cfg := params.Violation
	cfg.PreRoll = ring.Snapshot

	return &Session{
		params:      params,
		line:        line,
		resolver:    tracker.NewResolver(params.Resolver),
		monitor:     violation.NewMonitor(cfg, sink),
		ring:        ring,
		framePeriod: time.Duration(float64(time.Second) / params.FPS),
	}
}

// ProcessFrame consumes one frame's detections and returns the status of
// every subject matched this frame.  The frame may be nil when no evidence
// buffering is wanted; otherwise the session clones what it keeps and the
// caller retains ownership of frame.
func (s *Session) ProcessFrame(frame violation.Frame, detections []detect.Detection) []SubjectStatus {

	now := time.Duration(s.frameNum) * s.framePeriod
	frameNum := s.frameNum
	s.frameNum++

	statuses := make([]SubjectStatus, 0, len(detections))
	matched := make(map[int64]bool, len(detections))

	for i := range detections {
		ident := s.resolver.Resolve(&detections[i], frameNum)
		matched[ident.ID()] = true

		status := SubjectStatus{
			ID:   ident.ID(),
			Rect: ident.Rect(),
		}

		// eliminated subjects stay tracked but their ground contact is
		// never tested again
		if s.monitor.IsEliminated(ident.ID()) {
			status.State = violation.Eliminated
			status.Count = s.monitor.Count(ident.ID())
			statuses = append(statuses, status)
			continue
		}

		sig, ground, hasGround := s.signalFor(ident)

		status.Ground = ground
		status.HasGround = hasGround
		status.Event = s.monitor.Observe(ident.ID(), sig, frame, frameNum, now)
		status.State = status.Event.State
		status.Count = status.Event.Count

		statuses = append(statuses, status)
	}

	// unmatched subjects with an open episode get a dropout signal so the
	// grace window, not a missed detection, decides when it closes
	for _, ident := range s.resolver.Identities() {
		if matched[ident.ID()] {
			continue
		}
		if s.monitor.EpisodeOpen(ident.ID()) {
			s.monitor.Observe(ident.ID(), violation.SignalNone, frame, frameNum, now)
		}
	}

	for _, ident := range s.resolver.Cleanup(frameNum) {
		s.monitor.Evict(ident.ID())
	}

	if frame != nil && s.ring.size > 0 {
		s.ring.Push(frame.Clone())
	}

	return statuses
}

// signalFor derives the boundary signal for one subject.  A manual ground
// override wins outright; otherwise the most confident contact candidates
// are each tested and any crossing makes the subject violating.
func (s *Session) signalFor(ident *tracker.Identity) (violation.Signal, detect.GroundPoint, bool) {

	if gp, ok := ident.ManualGround(); ok {
		if s.line.IsViolation(gp.X, gp.Y) {
			return violation.SignalViolating, gp, true
		}
		return violation.SignalClear, gp, true
	}

	det := ident.Detection()
	points := detect.GroundPoints(det, s.params.MinVisibility)

	if len(points) == 0 {
		return violation.SignalNone, detect.GroundPoint{}, false
	}

	checked := s.params.GroundPointsChecked

	if checked <= 0 || checked > len(points) {
		checked = len(points)
	}

	for _, gp := range points[:checked] {
		if s.line.IsViolation(gp.X, gp.Y) {
			return violation.SignalViolating, gp, true
		}
	}

	best, ok := detect.BestGroundPoint(det, s.params.MinVisibility)

	if !ok {
		best = points[0]
	}

	return violation.SignalClear, best, true
}

// SetManualGround pins a subject's ground contact to a fixed point,
// bypassing skeleton extraction until cleared
func (s *Session) SetManualGround(id int64, x, y float32) bool {

	ident, ok := s.resolver.Identity(id)

	if !ok {
		return false
	}

	ident.SetManualGround(x, y)
	return true
}

// ClearManualGround removes a manual ground override
func (s *Session) ClearManualGround(id int64) {

	if ident, ok := s.resolver.Identity(id); ok {
		ident.ClearManualGround()
	}
}

// Boundary returns the session's boundary polyline
func (s *Session) Boundary() *boundary.Polyline {
	return s.line
}

// Identities returns the currently tracked identities sorted by ID
func (s *Session) Identities() []*tracker.Identity {
	return s.resolver.Identities()
}

// FrameNumber returns the number of frames processed so far
func (s *Session) FrameNumber() int {
	return s.frameNum
}

// State returns the violation state for a subject
func (s *Session) State(id int64) violation.State {
	return s.monitor.State(id)
}

// Count returns the violation count for a subject
func (s *Session) Count(id int64) int {
	return s.monitor.Count(id)
}

// Counts returns the violation count for every subject seen this session,
// evicted subjects included
func (s *Session) Counts() map[int64]int {
	return s.monitor.Counts()
}

// IsEliminated reports whether a subject has been eliminated
func (s *Session) IsEliminated(id int64) bool {
	return s.monitor.IsEliminated(id)
}

// Close flushes open evidence episodes and releases the pre-roll ring.
// The session must not be used afterwards.
func (s *Session) Close() {
	s.monitor.Flush()
	s.ring.Close()
}
