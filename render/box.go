package render

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	linewatch "github.com/linewatch/go-linewatch"
	"github.com/linewatch/go-linewatch/violation"
)

// boxLabel holds precalculated label rendering details so labels can be
// drawn as the top most layer
type boxLabel struct {
	rect    image.Rectangle
	clr     color.RGBA
	text    string
	textPos image.Point
}

// SubjectBoxes renders the bounding box, stable ID label and ground
// contact marker for every subject in the frame.  Box color follows the
// violation state.
func SubjectBoxes(img *gocv.Mat, statuses []linewatch.SubjectStatus,
	font Font, lineThickness int) {

	// keep a record of all box labels for later rendering
	boxLabels := make([]boxLabel, 0)

	for _, status := range statuses {

		boxLeft := int(status.Rect.X1)
		boxTop := int(status.Rect.Y1)
		boxRight := int(status.Rect.X2)
		boxBottom := int(status.Rect.Y2)

		useClr := StateColor(status.State)

		// draw rectangle around the subject
		rect := image.Rect(boxLeft, boxTop, boxRight, boxBottom)
		gocv.Rectangle(img, rect, useClr, lineThickness)

		// mark the ground contact point tested against the boundary
		if status.HasGround {
			gocv.Circle(img, image.Pt(int(status.Ground.X), int(status.Ground.Y)),
				4, groundColor, -1)
		}

		// create text for label
		var text string

		switch status.State {
		case violation.Eliminated:
			text = fmt.Sprintf("ID %d OUT", status.ID)
		default:
			text = fmt.Sprintf("ID %d V%d", status.ID, status.Count)
		}

		textSize := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)

		// Calculate the alignment of text label
		var centerX int

		switch font.Alignment {
		case Center:
			centerX = (boxLeft + boxRight) / 2

		case Right:
			centerX = boxRight - (textSize.X / 2) - font.RightPad + (lineThickness / 2)

		case Left:
			fallthrough
		default:
			centerX = boxLeft + (textSize.X / 2) + font.LeftPad - (lineThickness / 2)
		}

		// Adjust the label position so the text is centered horizontally
		labelPosition := image.Pt(centerX-textSize.X/2, boxTop-font.BottomPad)

		// create box for placing text on
		bRect := image.Rect(centerX-textSize.X/2-font.LeftPad,
			boxTop-textSize.Y-font.TopPad-font.BottomPad,
			centerX+textSize.X/2+font.RightPad, boxTop)

		// record label rendering details
		nextLabel := boxLabel{
			rect:    bRect,
			clr:     useClr,
			text:    text,
			textPos: labelPosition,
		}
		boxLabels = append(boxLabels, nextLabel)

	}

	// draw all precalculated box labels so they are the top most layer on
	// the image and don't get overlapped by skeleton lines
	for _, box := range boxLabels {
		// draw box text gets written on
		gocv.Rectangle(img, box.rect, box.clr, -1)

		// Draw the label over box
		gocv.PutTextWithParams(img, box.text, box.textPos,
			font.Face, font.Scale, font.Color, font.Thickness,
			font.LineType, false)
	}
}
