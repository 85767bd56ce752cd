package linewatch

import (
	"github.com/linewatch/go-linewatch/violation"
)

// frameRing keeps the most recent frames so an episode can open with a
// few seconds of context from before the first boundary crossing
type frameRing struct {
	size   int
	frames []violation.Frame
}

func newFrameRing(size int) *frameRing {

	return &frameRing{size: size}
}

// Push takes ownership of f, closing the oldest frame once the ring is
// full.  A nil ring or a ring of size zero closes f immediately.
func (r *frameRing) Push(f violation.Frame) {

	if r == nil || r.size == 0 {
		f.Close()
		return
	}

	if len(r.frames) == r.size {
		r.frames[0].Close()
		copy(r.frames, r.frames[1:])
		r.frames[len(r.frames)-1] = f
		return
	}

	r.frames = append(r.frames, f)
}

// Snapshot returns clones of the buffered frames oldest first.  The
// caller owns the clones.
func (r *frameRing) Snapshot() []violation.Frame {

	if r == nil || len(r.frames) == 0 {
		return nil
	}

	out := make([]violation.Frame, len(r.frames))

	for i, f := range r.frames {
		out[i] = f.Clone()
	}

	return out
}

// Close releases all buffered frames
func (r *frameRing) Close() {

	if r == nil {
		return
	}

	for _, f := range r.frames {
		f.Close()
	}

	r.frames = nil
}
