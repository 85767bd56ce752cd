package violation

// EvidenceSink receives episode lifecycle events from the Monitor and
// owns evidence persistence, file naming and storage.  Implementations
// must not panic or block the per-frame path, write failures are the
// sink's to log and swallow.  Frames passed in are point-in-time copies
// owned by the sink.
type EvidenceSink interface {
	// OnEpisodeStart is called on the not-violating to violating
	// transition with the pre-roll frame buffer, oldest first.  The sink
	// takes ownership of the frames.
	OnEpisodeStart(stableID int64, preRoll []Frame)

	// OnEpisodeAppend is called for every frame while an episode is open
	OnEpisodeAppend(stableID int64, frame Frame)

	// OnViolation is called each time a debounced violation is counted,
	// with the frame to persist as a screenshot and the running count
	OnViolation(stableID int64, frame Frame, count int)

	// OnEpisodeEnd is called when the episode closes, whether by the
	// violation clearing, by elimination, or by identity eviction
	OnEpisodeEnd(stableID int64)
}

// NopSink is an EvidenceSink that discards everything.  Useful when a
// caller only wants violation counts.
type NopSink struct{}

func (NopSink) OnEpisodeStart(stableID int64, preRoll []Frame) {
	for _, f := range preRoll {
		if f != nil {
			f.Close()
		}
	}
}

func (NopSink) OnEpisodeAppend(stableID int64, frame Frame) {
	if frame != nil {
		frame.Close()
	}
}

func (NopSink) OnViolation(stableID int64, frame Frame, count int) {
	if frame != nil {
		frame.Close()
	}
}

func (NopSink) OnEpisodeEnd(stableID int64) {}
