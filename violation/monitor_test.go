package violation

import (
	"testing"
	"time"
)

// stubFrame is a minimal Frame for exercising episode buffering
type stubFrame struct {
	id     int
	closed bool
}

func (f *stubFrame) Clone() Frame {
	return &stubFrame{id: f.id}
}

func (f *stubFrame) Close() {
	f.closed = true
}

// recordSink captures sink callbacks for assertions
type recordSink struct {
	starts     []int64
	appends    map[int64]int
	violations []int
	ends       []int64
	preRolls   map[int64]int
}

func newRecordSink() *recordSink {
	return &recordSink{
		appends:  make(map[int64]int),
		preRolls: make(map[int64]int),
	}
}

func (s *recordSink) OnEpisodeStart(id int64, preRoll []Frame) {
	s.starts = append(s.starts, id)
	s.preRolls[id] = len(preRoll)
	for _, f := range preRoll {
		f.Close()
	}
}

func (s *recordSink) OnEpisodeAppend(id int64, frame Frame) {
	s.appends[id]++
	frame.Close()
}

func (s *recordSink) OnViolation(id int64, frame Frame, count int) {
	s.violations = append(s.violations, count)
	if frame != nil {
		frame.Close()
	}
}

func (s *recordSink) OnEpisodeEnd(id int64) {
	s.ends = append(s.ends, id)
}

// frameTime converts a frame number to session time at 30fps
func frameTime(frame int) time.Duration {
	return time.Duration(frame) * time.Second / 30
}

// TestDebouncedCounting runs a subject violating continuously for 10
// seconds at 30fps with a 2.0s debounce and a high elimination limit, and
// expects exactly 5 counted violations
func TestDebouncedCounting(t *testing.T) {

	cfg := DefaultConfig()
	cfg.MaxViolations = 99

	sink := newRecordSink()
	m := NewMonitor(cfg, sink)

	counted := 0

	// frames 0..299 cover [0s, 10s)
	for frame := 0; frame < 300; frame++ {

		ev := m.Observe(1, SignalViolating, nil, frame, frameTime(frame))

		if ev.Counted {
			counted++
		}
	}

	if counted != 5 {
		t.Errorf("expected exactly 5 counted violations in 10s, got %d", counted)
	}

	if m.Count(1) != 5 {
		t.Errorf("expected count 5, got %d", m.Count(1))
	}

	if len(sink.violations) != 5 {
		t.Errorf("expected 5 screenshot callbacks, got %d", len(sink.violations))
	}

	// one continuous infraction is one episode
	if len(sink.starts) != 1 {
		t.Errorf("expected 1 episode start, got %d", len(sink.starts))
	}
}

// TestElimination checks the subject is eliminated on the 3rd count and
// that no further episodes open afterwards
func TestElimination(t *testing.T) {

	sink := newRecordSink()
	m := NewMonitor(DefaultConfig(), sink)

	var eliminatedAt int

	for frame := 0; frame < 600; frame++ {

		ev := m.Observe(1, SignalViolating, nil, frame, frameTime(frame))

		if ev.Eliminated {
			eliminatedAt = frame
			break
		}
	}

	if m.State(1) != Eliminated {
		t.Fatalf("expected Eliminated, got %v", m.State(1))
	}

	if m.Count(1) != 3 {
		t.Errorf("expected elimination at count 3, got %d", m.Count(1))
	}

	if eliminatedAt == 0 {
		t.Fatal("elimination event never fired")
	}

	// the open episode is flushed at elimination
	if len(sink.ends) != 1 {
		t.Errorf("expected 1 episode end at elimination, got %d", len(sink.ends))
	}

	// further violating frames must not reopen anything or count
	for frame := eliminatedAt + 1; frame < eliminatedAt+200; frame++ {

		ev := m.Observe(1, SignalViolating, nil, frame, frameTime(frame))

		if ev.Counted || ev.EpisodeStarted {
			t.Fatalf("frame %d: eliminated subject produced activity %+v", frame, ev)
		}
	}

	if len(sink.starts) != 1 {
		t.Errorf("expected no new episodes after elimination, got %d starts", len(sink.starts))
	}

	if m.Count(1) != 3 {
		t.Errorf("count moved after elimination: %d", m.Count(1))
	}
}

// TestEpisodeLifecycle covers start on Clear->Violating, appends during,
// and end on Violating->Clear
func TestEpisodeLifecycle(t *testing.T) {

	cfg := DefaultConfig()
	cfg.PreRoll = func() []Frame {
		return []Frame{&stubFrame{id: -2}, &stubFrame{id: -1}}
	}

	sink := newRecordSink()
	m := NewMonitor(cfg, sink)

	// three violating frames then clear
	for frame := 0; frame < 3; frame++ {
		m.Observe(7, SignalViolating, &stubFrame{id: frame}, frame, frameTime(frame))
	}

	if !m.EpisodeOpen(7) {
		t.Fatal("expected open episode")
	}

	m.Observe(7, SignalClear, &stubFrame{id: 3}, 3, frameTime(3))

	if m.EpisodeOpen(7) {
		t.Error("episode should be closed after clear signal")
	}

	if len(sink.starts) != 1 || sink.starts[0] != 7 {
		t.Errorf("unexpected starts %v", sink.starts)
	}

	if sink.preRolls[7] != 2 {
		t.Errorf("expected 2 pre-roll frames, got %d", sink.preRolls[7])
	}

	if sink.appends[7] != 3 {
		t.Errorf("expected 3 appended frames, got %d", sink.appends[7])
	}

	if len(sink.ends) != 1 || sink.ends[0] != 7 {
		t.Errorf("unexpected ends %v", sink.ends)
	}

	if m.State(7) != Clear {
		t.Errorf("expected Clear after episode, got %v", m.State(7))
	}
}

// TestDropoutGrace checks a short detection gap neither closes the
// episode nor resets the debounce, while a long gap ends the violation
func TestDropoutGrace(t *testing.T) {

	sink := newRecordSink()
	m := NewMonitor(DefaultConfig(), sink)

	frame := 0

	observe := func(sig Signal) Event {
		ev := m.Observe(1, sig, nil, frame, frameTime(frame))
		frame++
		return ev
	}

	observe(SignalViolating)

	// 5 no-signal frames are within grace
	for i := 0; i < 5; i++ {
		ev := observe(SignalNone)

		if ev.State != Violating {
			t.Fatalf("gap frame %d closed the episode", i)
		}
	}

	if !m.EpisodeOpen(1) {
		t.Fatal("episode must stay open through grace window")
	}

	// violation resumes, same episode
	observe(SignalViolating)

	if len(sink.starts) != 1 {
		t.Errorf("dropout within grace must not restart the episode, got %d starts", len(sink.starts))
	}

	// now a 6 frame gap exceeds grace and ends the episode
	for i := 0; i < 5; i++ {
		observe(SignalNone)
	}

	ev := observe(SignalNone)

	if !ev.EpisodeEnded {
		t.Error("gap past grace should end the episode")
	}

	if m.EpisodeOpen(1) {
		t.Error("episode should be closed")
	}
}

// TestDebounceSurvivesEpisodeBoundary checks a quick clear/violate flap
// does not double count
func TestDebounceSurvivesEpisodeBoundary(t *testing.T) {

	sink := newRecordSink()
	m := NewMonitor(DefaultConfig(), sink)

	// count fires on the first violating frame
	ev := m.Observe(1, SignalViolating, nil, 0, frameTime(0))

	if !ev.Counted {
		t.Fatal("first violating frame should count")
	}

	// clear then immediately violate again inside the debounce window
	m.Observe(1, SignalClear, nil, 1, frameTime(1))
	ev = m.Observe(1, SignalViolating, nil, 2, frameTime(2))

	if ev.Counted {
		t.Error("flap inside debounce window must not double count")
	}

	if m.Count(1) != 1 {
		t.Errorf("expected count 1, got %d", m.Count(1))
	}

	// but a second episode did open
	if len(sink.starts) != 2 {
		t.Errorf("expected 2 episode starts, got %d", len(sink.starts))
	}
}

// TestEvictFlushesOpenEpisode simulates identity eviction mid-violation
func TestEvictFlushesOpenEpisode(t *testing.T) {

	sink := newRecordSink()
	m := NewMonitor(DefaultConfig(), sink)

	m.Observe(4, SignalViolating, nil, 0, 0)

	if !m.EpisodeOpen(4) {
		t.Fatal("expected open episode")
	}

	m.Evict(4)

	if m.EpisodeOpen(4) {
		t.Error("eviction must close the episode")
	}

	if len(sink.ends) != 1 || sink.ends[0] != 4 {
		t.Errorf("expected exactly one flush for id 4, got %v", sink.ends)
	}

	// count survives eviction for final reporting
	if m.Count(4) != 1 {
		t.Errorf("expected count 1 after eviction, got %d", m.Count(4))
	}

	// evicting again is a no-op
	m.Evict(4)

	if len(sink.ends) != 1 {
		t.Errorf("double eviction produced extra flush: %v", sink.ends)
	}
}

func TestFlushClosesAllOpenEpisodes(t *testing.T) {

	sink := newRecordSink()
	m := NewMonitor(DefaultConfig(), sink)

	m.Observe(1, SignalViolating, nil, 0, 0)
	m.Observe(2, SignalViolating, nil, 0, 0)
	m.Observe(3, SignalClear, nil, 0, 0)

	m.Flush()

	if len(sink.ends) != 2 {
		t.Errorf("expected 2 flushed episodes, got %d", len(sink.ends))
	}
}
