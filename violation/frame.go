package violation

// Frame is a point-in-time copy of one video frame.  Frames handed to an
// EvidenceSink are owned by the receiver, never live-mutable references
// into the capture pipeline, so a slow background writer can hold them
// safely.  Close releases any underlying image storage.
type Frame interface {
	// Clone returns an independent copy of the frame
	Clone() Frame
	// Close releases the frame's storage
	Close()
}
