/*
Package evidence persists violation episodes as screenshot and video clip
files.  Writes happen on a background queue so slow storage never blocks
the per-frame tracking path, a failed or dropped write is logged and the
episode discarded, never retried.
*/
package evidence

import (
	"gocv.io/x/gocv"

	"github.com/linewatch/go-linewatch/violation"
)

// MatFrame adapts a gocv.Mat to the violation.Frame interface.  The
// MatFrame owns its Mat.
type MatFrame struct {
	mat gocv.Mat
}

// NewMatFrame wraps a Mat, taking ownership of it
func NewMatFrame(mat gocv.Mat) *MatFrame {
	return &MatFrame{mat: mat}
}

// Clone returns an independent pixel copy of the frame
func (f *MatFrame) Clone() violation.Frame {
	return &MatFrame{mat: f.mat.Clone()}
}

// Close releases the underlying Mat
func (f *MatFrame) Close() {
	f.mat.Close()
}

// Mat exposes the underlying image for writers and renderers
func (f *MatFrame) Mat() gocv.Mat {
	return f.mat
}
