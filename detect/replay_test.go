package detect

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestReplayReader(t *testing.T) {

	input := `{"frame":0,"detections":[{"x1":10,"y1":20,"x2":70,"y2":200,"score":0.9,"id":3,"keypoints":[{"name":"left_heel","x":40,"y":198,"v":0.95}]}]}

{"frame":1,"detections":[]}
`

	r := NewReplayReader(strings.NewReader(input))

	frame, dets, err := r.Next()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if frame != 0 || len(dets) != 1 {
		t.Fatalf("expected frame 0 with 1 detection, got frame %d with %d", frame, len(dets))
	}

	if dets[0].TransientID != 3 {
		t.Errorf("expected transient id 3, got %d", dets[0].TransientID)
	}

	kp, ok := dets[0].KeyPoint(LeftHeel)

	if !ok || kp.Y != 198 {
		t.Errorf("expected left_heel at y=198, got %v ok=%v", kp, ok)
	}

	// blank line is skipped
	frame, dets, err = r.Next()

	if err != nil || frame != 1 || len(dets) != 0 {
		t.Fatalf("expected empty frame 1, got frame %d dets %d err %v", frame, len(dets), err)
	}

	if _, _, err = r.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestReplayReaderBadLine(t *testing.T) {

	r := NewReplayReader(strings.NewReader("not json\n"))

	if _, _, err := r.Next(); err == nil {
		t.Error("expected parse error")
	}
}
