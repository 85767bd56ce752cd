package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"

	"gocv.io/x/gocv"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	linewatch "github.com/linewatch/go-linewatch"
	"github.com/linewatch/go-linewatch/violation"
)

// TTFFontSize is the point size used for TTF banner text
const TTFFontSize = 18.0

// TTFLabel draws text with a TTF font face.  The Hershey fonts cover
// Latin only, a TTF face is needed for anything else.
type TTFLabel struct {
	fontFace font.Face
}

// LoadTTFLabel loads the TTF font and sets up a new font face
func LoadTTFLabel(fontPath string) (*TTFLabel, error) {

	// load font data
	fontBytes, err := os.ReadFile(fontPath)

	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}

	// parse the font
	f, err := opentype.Parse(fontBytes)

	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	// create a type face
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    TTFFontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})

	if err != nil {
		return nil, fmt.Errorf("failed to create type face: %w", err)
	}

	return &TTFLabel{fontFace: face}, nil
}

// Draw writes text onto the image at the given position.  This path is
// slow compared to the Hershey fonts so keep it for banner text, not per
// subject labels.
func (l *TTFLabel) Draw(img *gocv.Mat, text string, x, y int) error {

	// create image with text writing
	rgba := image.NewRGBA(image.Rect(0, 0, img.Cols(), img.Rows()))
	draw.Draw(rgba, rgba.Bounds(), image.NewUniform(color.RGBA{0, 0, 0, 0}), image.Point{}, draw.Src)

	dr := &font.Drawer{
		Dst:  rgba,
		Src:  image.NewUniform(color.RGBA{255, 255, 255, 255}),
		Face: l.fontFace,
		Dot: fixed.Point26_6{
			X: fixed.Int26_6(x * 64),
			Y: fixed.Int26_6(y * 64),
		},
	}
	dr.DrawString(text)

	// Convert image.RGBA to gocv.Mat
	imgRGBA, err := gocv.NewMatFromBytes(rgba.Bounds().Dy(), rgba.Bounds().Dx(), gocv.MatTypeCV8UC4, rgba.Pix)

	if imgRGBA.Empty() || err != nil {
		return fmt.Errorf("error creating Mat from RGBA")
	}

	defer imgRGBA.Close()

	gocv.CvtColor(imgRGBA, &imgRGBA, gocv.ColorRGBAToBGR)
	gocv.AddWeighted(*img, 1.0, imgRGBA, 1.0, 0, img)

	return nil
}

// Banner renders a one line session summary along the top of the frame.
// With a nil label it falls back to the fast Hershey font.
func Banner(img *gocv.Mat, statuses []linewatch.SubjectStatus, label *TTFLabel) {

	var violating, eliminated int

	for _, status := range statuses {
		switch status.State {
		case violation.Violating:
			violating++
		case violation.Eliminated:
			eliminated++
		}
	}

	text := fmt.Sprintf("subjects %d  violating %d  out %d",
		len(statuses), violating, eliminated)

	// blank area to overlay text on
	bannerRect := image.Rect(0, 0, img.Cols(), 28)
	gocv.Rectangle(img, bannerRect, Black, -1)

	if label != nil {
		if err := label.Draw(img, text, 8, 20); err == nil {
			return
		}
	}

	gocv.PutText(img, text, image.Pt(8, 20),
		gocv.FontHersheyDuplex, 0.6, White, 1)
}
