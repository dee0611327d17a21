package annotate

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/menta2k/object-detector/pkg/labels"
	"github.com/menta2k/object-detector/pkg/types"
)

var font *truetype.Font

// init sets up the font we use for label text.
func init() {
	var err error
	font, err = truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
}

// boxColor is the outline and text color for detection overlays
var boxColor = color.NRGBA{255, 0, 0, 255}

// Draw returns a copy of img with a rectangle per detection and the label
// text and score overlaid just inside each box's top-left corner.
func Draw(img image.Image, dets []types.Detection, lbl labels.Labels) image.Image {
	dc := gg.NewContextForImage(img)

	for _, d := range dets {
		rect := image.Rect(d.BBox.Xmin, d.BBox.Ymin, d.BBox.Xmax, d.BBox.Ymax)
		drawRectangleEmpty(dc, rect, boxColor, 2)

		text := fmt.Sprintf("%s\n%.2f", lbl.Get(d.ID), d.Score)
		drawString(dc, text, image.Point{X: d.BBox.Xmin + 10, Y: d.BBox.Ymin + 10}, boxColor, 14)
	}

	return dc.Image()
}

// drawString writes a string to the given context at a particular point.
func drawString(dc *gg.Context, text string, p image.Point, c color.Color, size float64) {
	dc.SetFontFace(truetype.NewFace(font, &truetype.Options{Size: size}))
	dc.SetColor(c)
	dc.DrawStringWrapped(text, float64(p.X), float64(p.Y), 0, 0, float64(dc.Width()), 1, gg.AlignLeft)
}

// drawRectangleEmpty draws the outline of the given rectangle into the context.
func drawRectangleEmpty(dc *gg.Context, r image.Rectangle, c color.Color, width float64) {
	dc.SetColor(c)

	dc.DrawLine(float64(r.Min.X), float64(r.Min.Y), float64(r.Max.X), float64(r.Min.Y))
	dc.SetLineWidth(width)
	dc.Stroke()

	dc.DrawLine(float64(r.Min.X), float64(r.Min.Y), float64(r.Min.X), float64(r.Max.Y))
	dc.SetLineWidth(width)
	dc.Stroke()

	dc.DrawLine(float64(r.Max.X), float64(r.Min.Y), float64(r.Max.X), float64(r.Max.Y))
	dc.SetLineWidth(width)
	dc.Stroke()

	dc.DrawLine(float64(r.Min.X), float64(r.Max.Y), float64(r.Max.X), float64(r.Max.Y))
	dc.SetLineWidth(width)
	dc.Stroke()
}
