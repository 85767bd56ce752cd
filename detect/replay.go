package detect

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// replayKeyPoint is the wire form of one skeleton landmark
type replayKeyPoint struct {
	Name       string  `json:"name"`
	X          float32 `json:"x"`
	Y          float32 `json:"y"`
	Visibility float32 `json:"v"`
}

// replayDetection is the wire form of one detection
type replayDetection struct {
	X1          float32          `json:"x1"`
	Y1          float32          `json:"y1"`
	X2          float32          `json:"x2"`
	Y2          float32          `json:"y2"`
	Score       float32          `json:"score"`
	TransientID int64            `json:"id"`
	KeyPoints   []replayKeyPoint `json:"keypoints,omitempty"`
}

// replayFrame is one line of a detection replay file
type replayFrame struct {
	Frame      int               `json:"frame"`
	Detections []replayDetection `json:"detections"`
}

// ReplayReader reads per-frame detections from a JSON lines stream, one
// frame object per line.  It lets recorded detector output drive the
// pipeline without a detector attached.
type ReplayReader struct {
	scanner *bufio.Scanner
	line    int
}

// NewReplayReader creates a reader consuming JSON lines from r
func NewReplayReader(r io.Reader) *ReplayReader {

	scanner := bufio.NewScanner(r)
	// allow long lines, a crowded frame with skeletons is several KB
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	return &ReplayReader{scanner: scanner}
}

// Next returns the next frame's number and detections.  io.EOF is
// returned at end of stream.
func (r *ReplayReader) Next() (int, []Detection, error) {

	for r.scanner.Scan() {

		r.line++
		raw := r.scanner.Bytes()

		if len(raw) == 0 {
			continue
		}

		var frame replayFrame

		if err := json.Unmarshal(raw, &frame); err != nil {
			return 0, nil, fmt.Errorf("replay line %d: %w", r.line, err)
		}

		dets := make([]Detection, 0, len(frame.Detections))

		for _, rd := range frame.Detections {

			det := Detection{
				X1: rd.X1, Y1: rd.Y1, X2: rd.X2, Y2: rd.Y2,
				Score:       rd.Score,
				TransientID: rd.TransientID,
			}

			for _, kp := range rd.KeyPoints {
				det.KeyPoints = append(det.KeyPoints, KeyPoint{
					Landmark:   Landmark(kp.Name),
					X:          kp.X,
					Y:          kp.Y,
					Visibility: kp.Visibility,
				})
			}

			dets = append(dets, det)
		}

		return frame.Frame, dets, nil
	}

	if err := r.scanner.Err(); err != nil {
		return 0, nil, fmt.Errorf("replay read: %w", err)
	}

	return 0, nil, io.EOF
}
