package render

import (
	"image"

	clipper "github.com/ctessum/go.clipper"
	"gocv.io/x/gocv"

	"github.com/linewatch/go-linewatch/boundary"
)

// bandAlpha is the opacity of the threshold band overlay
const bandAlpha = 0.3

// Boundary renders the violation line with a translucent band showing the
// threshold tolerance either side of it.  Nothing is drawn when the
// boundary is not Ready.
func Boundary(img *gocv.Mat, line *boundary.Polyline, lineThickness int) {

	if !line.Ready() {
		return
	}

	pts := line.Points()

	drawBand(img, pts, float64(line.Threshold()))

	// the line itself on top of the band
	for i := 0; i < len(pts)-1; i++ {
		gocv.Line(img,
			image.Pt(int(pts[i].X), int(pts[i].Y)),
			image.Pt(int(pts[i+1].X), int(pts[i+1].Y)),
			boundaryColor, lineThickness)
	}
}

// drawBand offsets the polyline into a closed band of the threshold width
// and blends it over the image
func drawBand(img *gocv.Mat, pts []boundary.Point, delta float64) {

	if delta <= 0 {
		return
	}

	// convert the boundary points to a Clipper Path
	var path clipper.Path

	for _, pt := range pts {
		path = append(path, &clipper.IntPoint{
			X: clipper.CInt(pt.X), Y: clipper.CInt(pt.Y),
		})
	}

	// create a ClipperOffset object and add the open path
	co := clipper.NewClipperOffset()
	co.AddPath(path, clipper.JtRound, clipper.EtOpenButt)

	// execute the offset operation
	solution := co.Execute(delta)

	if len(solution) == 0 {
		return
	}

	// convert the solution polygons back to points
	polys := make([][]image.Point, 0, len(solution))

	for _, sol := range solution {

		poly := make([]image.Point, 0, len(sol))

		for _, pt := range sol {
			poly = append(poly, image.Point{X: int(pt.X), Y: int(pt.Y)})
		}

		polys = append(polys, poly)
	}

	ptsVec := gocv.NewPointsVectorFromPoints(polys)
	defer ptsVec.Close()

	// fill the band on an overlay and blend it for transparency
	overlay := img.Clone()
	defer overlay.Close()

	gocv.FillPoly(&overlay, ptsVec, bandColor)
	gocv.AddWeighted(overlay, bandAlpha, *img, 1-bandAlpha, 0, img)
}
