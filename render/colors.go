package render

import (
	"image/color"

	"github.com/linewatch/go-linewatch/violation"
)

var (
	Black  = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Yellow = color.RGBA{R: 255, G: 255, B: 50, A: 255}

	// Green is the box color for subjects in good standing
	Green = color.RGBA{R: 0, G: 200, B: 0, A: 255}
	// RedOrange is the box color while a subject is violating
	RedOrange = color.RGBA{R: 255, G: 69, B: 0, A: 255}
	// DarkRed is the box color for eliminated subjects
	DarkRed = color.RGBA{R: 139, G: 0, B: 0, A: 255}

	// limbColor and jointColor paint the skeleton overlay
	limbColor  = color.RGBA{R: 51, G: 153, B: 255, A: 255}
	jointColor = color.RGBA{R: 255, G: 128, B: 0, A: 255}

	// groundColor marks the ground contact point tested against the
	// boundary
	groundColor = Yellow

	// boundaryColor is the violation line itself, bandColor the threshold
	// band either side of it
	boundaryColor = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	bandColor     = color.RGBA{R: 255, G: 0, B: 0, A: 80}
)

// StateColor returns the box color for a subject's violation state
func StateColor(state violation.State) color.RGBA {

	switch state {
	case violation.Violating:
		return RedOrange
	case violation.Eliminated:
		return DarkRed
	}

	return Green
}
