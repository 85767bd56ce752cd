package evidence

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gocv.io/x/gocv"

	"github.com/linewatch/go-linewatch/violation"
)

const (
	// DefaultQueueDepth is the number of pending background writes held
	// before new ones are dropped
	DefaultQueueDepth = 16

	// timestampLayout matches the evidence file naming convention
	timestampLayout = "20060102_150405"
)

// FileSink persists violation evidence to disk: one screenshot JPEG per
// counted violation and one MP4 clip per episode.  It implements
// violation.EvidenceSink.  All file I/O runs on a background WriteQueue,
// episode frame ordering is preserved by the single worker.
type FileSink struct {
	// screenshotDir and videoDir are created on construction
	screenshotDir string
	videoDir      string
	// fps used for clip timing
	fps float64
	// maxFrames bounds each episode buffer, oldest frames dropped
	maxFrames int
	queue     *WriteQueue
	// episodes buffers open episode frames keyed by stable ID.  Only the
	// per-frame goroutine touches this map.
	episodes map[int64][]*MatFrame
}

// NewFileSink creates a FileSink rooted at dir.  fps is the session
// frame rate, maxSeconds bounds each episode clip's length.
func NewFileSink(dir string, fps float64, maxSeconds float64) (*FileSink, error) {

	screenshotDir := filepath.Join(dir, "screenshots")
	videoDir := filepath.Join(dir, "videos")

	for _, d := range []string{screenshotDir, videoDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return nil, fmt.Errorf("error creating evidence dir: %w", err)
		}
	}

	return &FileSink{
		screenshotDir: screenshotDir,
		videoDir:      videoDir,
		fps:           fps,
		maxFrames:     int(fps * maxSeconds),
		queue:         NewWriteQueue(DefaultQueueDepth),
		episodes:      make(map[int64][]*MatFrame),
	}, nil
}

// OnEpisodeStart seeds a new episode buffer with the pre-roll frames
func (s *FileSink) OnEpisodeStart(id int64, preRoll []violation.Frame) {

	// an episode left behind by an earlier inconsistency is discarded
	s.discard(id)

	buf := make([]*MatFrame, 0, len(preRoll))

	for _, f := range preRoll {
		if mf, ok := f.(*MatFrame); ok {
			buf = append(buf, mf)
		} else if f != nil {
			f.Close()
		}
	}

	s.episodes[id] = buf
}

// OnEpisodeAppend adds a frame to the open episode buffer, dropping the
// oldest once the clip length bound is reached
func (s *FileSink) OnEpisodeAppend(id int64, frame violation.Frame) {

	mf, ok := frame.(*MatFrame)

	if !ok {
		if frame != nil {
			frame.Close()
		}
		return
	}

	buf, open := s.episodes[id]

	if !open {
		mf.Close()
		return
	}

	buf = append(buf, mf)

	if s.maxFrames > 0 && len(buf) > s.maxFrames {
		buf[0].Close()
		buf = buf[1:]
	}

	s.episodes[id] = buf
}

// OnViolation writes a screenshot for a counted violation
func (s *FileSink) OnViolation(id int64, frame violation.Frame, count int) {

	mf, ok := frame.(*MatFrame)

	if !ok {
		if frame != nil {
			frame.Close()
		}
		return
	}

	path := filepath.Join(s.screenshotDir,
		fmt.Sprintf("subject_%d_violation_%d_%s_%s.jpg",
			id, count, time.Now().Format(timestampLayout), shortID()))

	ok = s.queue.Submit(func() {
		defer mf.Close()

		if !gocv.IMWrite(path, mf.Mat()) {
			log.Printf("evidence: failed writing screenshot %s", path)
		}
	})

	if !ok {
		log.Printf("evidence: write queue full, dropping screenshot for subject %d", id)
		mf.Close()
	}
}

// OnEpisodeEnd hands the buffered episode to the background worker to be
// written out as an MP4 clip
func (s *FileSink) OnEpisodeEnd(id int64) {

	buf, open := s.episodes[id]
	delete(s.episodes, id)

	if !open || len(buf) == 0 {
		return
	}

	path := filepath.Join(s.videoDir,
		fmt.Sprintf("subject_%d_episode_%s_%s.mp4",
			id, time.Now().Format(timestampLayout), shortID()))

	fps := s.fps

	ok := s.queue.Submit(func() {
		writeClip(path, buf, fps)
	})

	if !ok {
		log.Printf("evidence: write queue full, dropping clip for subject %d", id)
		closeFrames(buf)
	}
}

// Close flushes pending writes and discards any still-open episodes.
// The violation.Monitor is expected to have been flushed first so open
// episodes have already been handed over.
func (s *FileSink) Close() {

	s.queue.Close()

	for id := range s.episodes {
		s.discard(id)
	}
}

func (s *FileSink) discard(id int64) {

	if buf, ok := s.episodes[id]; ok {
		closeFrames(buf)
		delete(s.episodes, id)
	}
}

// writeClip writes the episode frames as an MP4 and releases them
func writeClip(path string, frames []*MatFrame, fps float64) {

	defer closeFrames(frames)

	first := frames[0].Mat()

	writer, err := gocv.VideoWriterFile(path, "mp4v", fps,
		first.Cols(), first.Rows(), true)

	if err != nil {
		log.Printf("evidence: failed opening clip writer %s: %v", path, err)
		return
	}

	defer writer.Close()

	for _, f := range frames {
		if err := writer.Write(f.Mat()); err != nil {
			log.Printf("evidence: failed writing clip frame to %s: %v", path, err)
			return
		}
	}

	log.Printf("evidence: saved clip %s (%d frames, %.1fs)",
		path, len(frames), float64(len(frames))/fps)
}

func closeFrames(frames []*MatFrame) {
	for _, f := range frames {
		f.Close()
	}
}

func shortID() string {
	return uuid.NewString()[:8]
}
