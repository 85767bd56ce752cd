package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"gocv.io/x/gocv"

	linewatch "github.com/linewatch/go-linewatch"
	"github.com/linewatch/go-linewatch/boundary"
	"github.com/linewatch/go-linewatch/detect"
	"github.com/linewatch/go-linewatch/evidence"
	"github.com/linewatch/go-linewatch/render"
	"github.com/linewatch/go-linewatch/violation"
)

// RunOptions holds flags for the run command
type RunOptions struct {
	*RootOptions
	Boundary    string
	Tuning      string
	Video       string
	EvidenceDir string
	RenderOut   string
	FontFile    string
	ClipSeconds float64
}

// NewRunCommand creates the run command
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {

	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <detections.jsonl>",
		Short: "Replay recorded detections through the violation pipeline",
		Long: `Replay per-frame detector output through the full pipeline: identity
resolution, ground contact extraction, boundary testing and the debounced
violation state machine.

With --video the matching source video supplies frames for evidence
screenshots and clips, and --render writes an annotated copy.

Example:
  linewatch run --boundary court.json detections.jsonl
  linewatch run --boundary court.json --video match.mp4 --render out.mp4 detections.jsonl`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Boundary, "boundary", "", "path to boundary configuration JSON (required)")
	cmd.Flags().StringVar(&opts.Tuning, "tuning", "", "path to YAML tuning file")
	cmd.Flags().StringVar(&opts.Video, "video", "", "source video matching the detections")
	cmd.Flags().StringVar(&opts.EvidenceDir, "evidence", "evidence", "directory for screenshots, clips and the violation log")
	cmd.Flags().StringVar(&opts.RenderOut, "render", "", "write an annotated video to this path")
	cmd.Flags().StringVar(&opts.FontFile, "font", "", "TTF font for the status banner")
	cmd.Flags().Float64Var(&opts.ClipSeconds, "clip-seconds", 5, "maximum evidence clip length in seconds")
	_ = cmd.MarkFlagRequired("boundary")

	return cmd
}

func runSession(opts *RunOptions, detectionsPath string, cmd *cobra.Command) error {

	params := linewatch.DefaultSessionParams()

	if opts.Tuning != "" {
		var err error
		params, err = linewatch.LoadSessionParams(opts.Tuning)

		if err != nil {
			return err
		}
	}

	line, err := boundary.LoadFile(opts.Boundary)

	if err != nil {
		return err
	}

	if opts.Verbose {
		log.Printf("boundary loaded: %d points, threshold %.0fpx",
			len(line.Points()), line.Threshold())
	}

	// the violation log is always written, frames or not
	vlog, err := evidence.NewLog(filepath.Join(opts.EvidenceDir, "violations.json"))

	if err != nil {
		return fmt.Errorf("opening violation log: %w", err)
	}

	// evidence frames need a video source
	var sink violation.EvidenceSink
	var fileSink *evidence.FileSink

	if opts.Video != "" {
		fileSink, err = evidence.NewFileSink(opts.EvidenceDir, params.FPS, opts.ClipSeconds)

		if err != nil {
			return fmt.Errorf("creating evidence sink: %w", err)
		}

		sink = fileSink
	}

	sess := linewatch.NewSession(params, line, sink)

	defer func() {
		sess.Close()

		if fileSink != nil {
			fileSink.Close()
		}
	}()

	detFile, err := os.Open(detectionsPath)

	if err != nil {
		return fmt.Errorf("opening detections: %w", err)
	}

	defer detFile.Close()

	var videoCap *gocv.VideoCapture

	if opts.Video != "" {
		videoCap, err = gocv.VideoCaptureFile(opts.Video)

		if err != nil {
			return fmt.Errorf("opening video: %w", err)
		}

		defer videoCap.Close()
	}

	var label *render.TTFLabel

	if opts.FontFile != "" {
		label, err = render.LoadTTFLabel(opts.FontFile)

		if err != nil {
			return err
		}
	}

	var writer *gocv.VideoWriter
	font := render.DefaultFont()
	reader := detect.NewReplayReader(detFile)

	for {

		frameNum, dets, err := reader.Next()

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return err
		}

		// pull the matching video frame when a source is attached
		var frame violation.Frame
		var mat gocv.Mat

		if videoCap != nil {
			mat = gocv.NewMat()

			if ok := videoCap.Read(&mat); !ok || mat.Empty() {
				mat.Close()
				videoCap = nil
			} else {
				frame = evidence.NewMatFrame(mat)
			}
		}

		statuses := sess.ProcessFrame(frame, dets)

		for _, status := range statuses {

			if status.Event.Counted {
				if opts.Verbose {
					log.Printf("frame %d: subject %d violation %d at %s",
						frameNum, status.ID, status.Count, status.Ground.Landmark)
				}

				if lerr := vlog.Violation(status.ID, string(status.Ground.Landmark),
					frameNum, status.Count); lerr != nil {
					log.Printf("violation log write failed: %v", lerr)
				}
			}

			if status.Event.Eliminated {
				log.Printf("frame %d: subject %d eliminated after %d violations",
					frameNum, status.ID, status.Count)

				if lerr := vlog.Eliminated(status.ID, frameNum, status.Count); lerr != nil {
					log.Printf("violation log write failed: %v", lerr)
				}
			}
		}

		if frame != nil && opts.RenderOut != "" {

			render.Boundary(&mat, sess.Boundary(), 2)
			render.Skeletons(&mat, dets, params.MinVisibility, 1)
			render.SubjectBoxes(&mat, statuses, font, 2)
			render.Banner(&mat, statuses, label)

			if writer == nil {
				writer, err = gocv.VideoWriterFile(opts.RenderOut, "mp4v",
					params.FPS, mat.Cols(), mat.Rows(), true)

				if err != nil {
					frame.Close()
					return fmt.Errorf("opening render output: %w", err)
				}

				defer writer.Close()
			}

			if werr := writer.Write(mat); werr != nil {
				log.Printf("render write failed: %v", werr)
			}
		}

		if frame != nil {
			frame.Close()
		}
	}

	printCounts(cmd.OutOrStdout(), sess)

	return nil
}

// printCounts writes the final per-subject tally, evicted subjects
// included
func printCounts(w io.Writer, sess *linewatch.Session) {

	counts := sess.Counts()

	ids := make([]int64, 0, len(counts))

	for id := range counts {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {

		status := ""

		if sess.IsEliminated(id) {
			status = " (eliminated)"
		}

		fmt.Fprintf(w, "subject %d: %d violations%s\n", id, counts[id], status)
	}
}
