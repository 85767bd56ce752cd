/*
Package tracker maps noisy per-frame detections onto stable subject
identities.  Each identity owns a constant velocity Kalman filter used to
predict its position through detector dropouts and ID switches.
*/
package tracker

import (
	"math"
	"sort"

	"github.com/linewatch/go-linewatch/detect"
)

// ResolverConfig holds the association tuning for the identity resolver
type ResolverConfig struct {
	// MaxAssociationDistance is the maximum distance in pixels between a
	// detection center and an identity's predicted position for the two
	// to be associated
	MaxAssociationDistance float32
	// OverlapFraction is the minimum bbox overlap, as a fraction of the
	// smaller box's area, for the collision fallback match
	OverlapFraction float32
	// MaxFramesMissing is the number of unseen frames after which an
	// identity is evicted
	MaxFramesMissing int
	// ProcessNoise and MeasurementNoise configure each identity's
	// position filter
	ProcessNoise     float64
	MeasurementNoise float64
}

// DefaultResolverConfig returns the standard resolver tuning
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		MaxAssociationDistance: 150,
		OverlapFraction:        0.3,
		MaxFramesMissing:       60,
		ProcessNoise:           DefaultProcessNoise,
		MeasurementNoise:       DefaultMeasurementNoise,
	}
}

// Resolver owns the identity table for one video stream and assigns every
// raw detection a stable identity.  Matching precedence, first match
// wins:
//
//  1. the detection's transient ID is already bound to an identity
//  2. nearest predicted position within MaxAssociationDistance
//  3. bbox overlap above OverlapFraction of the smaller box
//  4. a new identity is created
//
// Transient ID continuity is the cheapest signal and wins while the
// detector's own tracker holds its ID.  Predicted position recovers from
// detector ID switches.  Overlap is the fallback for colliding or
// crossing subjects.
type Resolver struct {
	cfg ResolverConfig
	// identities is the identity table keyed by stable ID
	identities map[int64]*Identity
	// nextID is the stable ID counter, IDs are never reused
	nextID int64
	// predictedFrame is the frame number the filters were last advanced
	// for, so filters step exactly once per frame regardless of how many
	// detections resolve in it
	predictedFrame int
}

// NewResolver creates a Resolver with an empty identity table
func NewResolver(cfg ResolverConfig) *Resolver {
	return &Resolver{
		cfg:        cfg,
		identities: make(map[int64]*Identity),
	}
}

// Resolve maps a raw detection onto a stable identity, creating one when
// nothing matches.  Detections for the same frame must share frameNum.
func (r *Resolver) Resolve(det *detect.Detection, frameNum int) *Identity {

	r.advanceFilters(frameNum)

	cx, cy := det.CenterX(), det.CenterY()

	// 1. transient detector ID already bound to an identity
	if ident := r.matchTransientID(det.TransientID); ident != nil {
		ident.filter.Update(cx, cy)
		ident.update(det, frameNum)
		return ident
	}

	// 2. nearest predicted position under the association threshold
	if ident := r.matchPredicted(cx, cy); ident != nil {
		ident.filter.Update(cx, cy)
		ident.update(det, frameNum)
		return ident
	}

	// 3. bbox overlap with an existing identity's last known box
	rect := NewRect(det.X1, det.Y1, det.X2, det.Y2)

	if ident := r.matchOverlap(rect); ident != nil {
		ident.filter.Update(cx, cy)
		ident.update(det, frameNum)
		return ident
	}

	// 4. new identity with a freshly allocated, never reused ID
	r.nextID++

	ident := &Identity{
		id:     r.nextID,
		filter: NewPositionFilter(cx, cy, r.cfg.ProcessNoise, r.cfg.MeasurementNoise),
	}

	ident.update(det, frameNum)
	r.identities[ident.id] = ident

	return ident
}

// Cleanup removes every identity unseen for more than MaxFramesMissing
// frames and returns the evicted identities so the caller can flush any
// open violation episodes
func (r *Resolver) Cleanup(frameNum int) []*Identity {

	var evicted []*Identity

	for id, ident := range r.identities {
		if frameNum-ident.lastSeen > r.cfg.MaxFramesMissing {
			evicted = append(evicted, ident)
			delete(r.identities, id)
		}
	}

	sort.Slice(evicted, func(i, j int) bool {
		return evicted[i].id < evicted[j].id
	})

	return evicted
}

// Identity looks up an identity by stable ID
func (r *Resolver) Identity(id int64) (*Identity, bool) {
	ident, ok := r.identities[id]
	return ident, ok
}

// Identities returns all current identities ordered by stable ID
func (r *Resolver) Identities() []*Identity {

	out := make([]*Identity, 0, len(r.identities))

	for _, ident := range r.identities {
		out = append(out, ident)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].id < out[j].id
	})

	return out
}

// Len returns the number of identities in the table
func (r *Resolver) Len() int {
	return len(r.identities)
}

// Reset clears the identity table.  The stable ID counter is not reset so
// IDs remain unique for the life of the resolver.
func (r *Resolver) Reset() {
	r.identities = make(map[int64]*Identity)
}

// advanceFilters steps every identity's position filter once for the
// given frame
func (r *Resolver) advanceFilters(frameNum int) {

	if frameNum == r.predictedFrame {
		return
	}

	r.predictedFrame = frameNum

	for _, ident := range r.identities {
		ident.filter.Predict()
	}
}

func (r *Resolver) matchTransientID(transientID int64) *Identity {

	// prefer the most recently seen holder when a stale binding lingers,
	// break ties on lowest stable ID for determinism
	var match *Identity

	for _, ident := range r.identities {

		if ident.transientID != transientID {
			continue
		}

		if match == nil || ident.lastSeen > match.lastSeen ||
			(ident.lastSeen == match.lastSeen && ident.id < match.id) {
			match = ident
		}
	}

	return match
}

func (r *Resolver) matchPredicted(cx, cy float32) *Identity {

	var closest *Identity
	minDist := float64(r.cfg.MaxAssociationDistance)

	for _, ident := range r.identities {

		px, py := ident.filter.Position()
		dist := math.Hypot(float64(cx-px), float64(cy-py))

		if dist < minDist ||
			(closest != nil && dist == minDist && ident.id < closest.id) {
			minDist = dist
			closest = ident
		}
	}

	return closest
}

func (r *Resolver) matchOverlap(rect Rect) *Identity {

	var best *Identity
	bestOverlap := r.cfg.OverlapFraction

	for _, ident := range r.identities {

		frac := rect.OverlapFraction(ident.rect)

		if frac > bestOverlap {
			bestOverlap = frac
			best = ident
		}
	}

	return best
}
