/*
Package violation implements the per-subject boundary violation state
machine.  Each stable identity moves between Clear, Violating and the
terminal Eliminated state, with debounced violation counting and evidence
episode lifecycle events emitted to an EvidenceSink.
*/
package violation

import (
	"time"
)

// State is the violation state of one subject
type State int

const (
	// Clear means the subject's ground point is inside the boundary
	Clear State = iota
	// Violating means the ground point is past the boundary line
	Violating
	// Eliminated is terminal, entered when the violation count reaches
	// the configured maximum.  It is never left.
	Eliminated
)

func (s State) String() string {
	switch s {
	case Clear:
		return "clear"
	case Violating:
		return "violating"
	case Eliminated:
		return "eliminated"
	}
	return "unknown"
}

// Signal is the per-frame boundary test input for one subject
type Signal int

const (
	// SignalClear means the boundary test returned false
	SignalClear Signal = iota
	// SignalViolating means the boundary test returned true
	SignalViolating
	// SignalNone means no ground point could be derived this frame, a
	// detector dropout rather than a verdict
	SignalNone
)

// Config holds the violation state machine tuning
type Config struct {
	// Debounce is the minimum interval between two counted violations
	// for the same subject.  The state stays Violating for the whole
	// infraction but counting happens at most once per interval.
	Debounce time.Duration
	// MaxViolations is the count at which a subject is eliminated
	MaxViolations int
	// GraceFrames is how many consecutive no-signal frames are tolerated
	// during an open episode before the violation is treated as ended.
	// Transient detector dropout must not tear down an episode.
	GraceFrames int
	// PreRoll supplies cloned recent frames for the start of an episode,
	// oldest first.  May be nil.
	PreRoll func() []Frame
}

// DefaultConfig returns the standard state machine tuning
func DefaultConfig() Config {
	return Config{
		Debounce:      2 * time.Second,
		MaxViolations: 3,
		GraceFrames:   5,
	}
}

// Event describes what happened during one Observe call
type Event struct {
	// State after the observation
	State State
	// EpisodeStarted is true on the Clear to Violating transition
	EpisodeStarted bool
	// EpisodeEnded is true when an open episode closed this frame
	EpisodeEnded bool
	// Counted is true when a debounced violation was counted
	Counted bool
	// Count is the subject's running violation count
	Count int
	// Eliminated is true when this observation eliminated the subject
	Eliminated bool
}

// subject is the monitor's per-identity record
type subject struct {
	state State
	count int
	// lastCounted is the session time of the last counted violation.
	// It survives episode boundaries so one infraction split across two
	// episodes cannot be double counted.
	lastCounted time.Duration
	hasCounted  bool
	// gapFrames counts consecutive no-signal frames during an open
	// episode
	gapFrames int
	// episode metadata
	episodeOpen  bool
	episodeStart int
}

// Monitor runs the violation state machine for every subject in one
// stream.  It references subjects by stable ID only and never owns
// identity records.
type Monitor struct {
	cfg      Config
	sink     EvidenceSink
	subjects map[int64]*subject
}

// NewMonitor creates a Monitor emitting evidence events to sink.  A nil
// sink is replaced with NopSink.
func NewMonitor(cfg Config, sink EvidenceSink) *Monitor {

	if sink == nil {
		sink = NopSink{}
	}

	return &Monitor{
		cfg:      cfg,
		sink:     sink,
		subjects: make(map[int64]*subject),
	}
}

// Observe consumes one frame's boundary signal for a subject.  The frame
// may be nil when no evidence buffering is wanted, otherwise the monitor
// clones it before handing copies to the sink.  now is the session clock
// time of the frame.
func (m *Monitor) Observe(id int64, sig Signal, frame Frame, frameNum int, now time.Duration) Event {

	sub := m.subject(id)

	// terminal state, ground contact checks are skipped entirely
	if sub.state == Eliminated {
		return Event{State: Eliminated, Count: sub.count}
	}

	switch sub.state {

	case Clear:
		if sig != SignalViolating {
			// dropouts while clear are just frames with nothing to do
			return Event{State: Clear, Count: sub.count}
		}
		return m.beginEpisode(id, sub, frame, frameNum, now)

	case Violating:
		switch sig {
		case SignalViolating:
			sub.gapFrames = 0
			return m.continueEpisode(id, sub, frame, now)

		case SignalNone:
			// tolerate a short detector dropout without closing the
			// episode or resetting the debounce timer
			sub.gapFrames++

			if sub.gapFrames <= m.cfg.GraceFrames {
				m.appendFrame(id, frame)
				return Event{State: Violating, Count: sub.count}
			}
			return m.endEpisode(id, sub)

		default:
			return m.endEpisode(id, sub)
		}
	}

	return Event{State: sub.state, Count: sub.count}
}

// Evict closes any open episode for a subject being removed from the
// identity table.  Counts and elimination status are retained so final
// tallies survive eviction.
func (m *Monitor) Evict(id int64) {

	sub, ok := m.subjects[id]

	if !ok || !sub.episodeOpen {
		return
	}

	sub.episodeOpen = false
	sub.gapFrames = 0

	if sub.state == Violating {
		sub.state = Clear
	}

	m.sink.OnEpisodeEnd(id)
}

// Flush closes every open episode.  Called when the stream stops, before
// resources are released.
func (m *Monitor) Flush() {
	for id := range m.subjects {
		m.Evict(id)
	}
}

// State returns the current state for a subject
func (m *Monitor) State(id int64) State {

	if sub, ok := m.subjects[id]; ok {
		return sub.state
	}

	return Clear
}

// Count returns the violation count for a subject
func (m *Monitor) Count(id int64) int {

	if sub, ok := m.subjects[id]; ok {
		return sub.count
	}

	return 0
}

// Counts returns the violation count for every subject the monitor has
// seen
func (m *Monitor) Counts() map[int64]int {

	out := make(map[int64]int, len(m.subjects))

	for id, sub := range m.subjects {
		out[id] = sub.count
	}

	return out
}

// IsEliminated reports whether a subject has reached the terminal state
func (m *Monitor) IsEliminated(id int64) bool {
	return m.State(id) == Eliminated
}

// EpisodeOpen reports whether a subject has an open evidence episode
func (m *Monitor) EpisodeOpen(id int64) bool {

	if sub, ok := m.subjects[id]; ok {
		return sub.episodeOpen
	}

	return false
}

func (m *Monitor) subject(id int64) *subject {

	sub, ok := m.subjects[id]

	if !ok {
		sub = &subject{}
		m.subjects[id] = sub
	}

	return sub
}

func (m *Monitor) beginEpisode(id int64, sub *subject, frame Frame, frameNum int, now time.Duration) Event {

	sub.state = Violating
	sub.gapFrames = 0
	sub.episodeOpen = true
	sub.episodeStart = frameNum

	var preRoll []Frame

	if m.cfg.PreRoll != nil {
		preRoll = m.cfg.PreRoll()
	}

	m.sink.OnEpisodeStart(id, preRoll)
	m.appendFrame(id, frame)

	ev := Event{State: Violating, EpisodeStarted: true, Count: sub.count}
	m.maybeCount(id, sub, frame, now, &ev)

	return ev
}

func (m *Monitor) continueEpisode(id int64, sub *subject, frame Frame, now time.Duration) Event {

	m.appendFrame(id, frame)

	ev := Event{State: Violating, Count: sub.count}
	m.maybeCount(id, sub, frame, now, &ev)

	return ev
}

func (m *Monitor) endEpisode(id int64, sub *subject) Event {

	sub.state = Clear
	sub.gapFrames = 0

	if sub.episodeOpen {
		sub.episodeOpen = false
		m.sink.OnEpisodeEnd(id)
	}

	return Event{State: Clear, EpisodeEnded: true, Count: sub.count}
}

// maybeCount applies the debounce timer and counts a violation at most
// once per interval, eliminating the subject when the maximum is reached
func (m *Monitor) maybeCount(id int64, sub *subject, frame Frame, now time.Duration, ev *Event) {

	if sub.hasCounted && now-sub.lastCounted <= m.cfg.Debounce {
		return
	}

	sub.count++
	sub.lastCounted = now
	sub.hasCounted = true

	ev.Counted = true
	ev.Count = sub.count

	if frame != nil {
		m.sink.OnViolation(id, frame.Clone(), sub.count)
	} else {
		m.sink.OnViolation(id, nil, sub.count)
	}

	if m.cfg.MaxViolations > 0 && sub.count >= m.cfg.MaxViolations {
		sub.state = Eliminated
		sub.episodeOpen = false
		sub.gapFrames = 0

		m.sink.OnEpisodeEnd(id)

		ev.State = Eliminated
		ev.Eliminated = true
		ev.EpisodeEnded = true
	}
}

func (m *Monitor) appendFrame(id int64, frame Frame) {

	if frame == nil {
		return
	}

	m.sink.OnEpisodeAppend(id, frame.Clone())
}
