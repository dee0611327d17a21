package types

import "fmt"

// BBox is an axis-aligned bounding box in image pixel coordinates
type BBox struct {
	Xmin int `json:"xmin"`
	Ymin int `json:"ymin"`
	Xmax int `json:"xmax"`
	Ymax int `json:"ymax"`
}

// Width returns the horizontal extent of the box
func (b BBox) Width() int {
	return b.Xmax - b.Xmin
}

// Height returns the vertical extent of the box
func (b BBox) Height() int {
	return b.Ymax - b.Ymin
}

// String formats the box as (xmin, ymin, xmax, ymax)
func (b BBox) String() string {
	return fmt.Sprintf("(%d, %d, %d, %d)", b.Xmin, b.Ymin, b.Xmax, b.Ymax)
}

// Detection represents one predicted object instance in an image
type Detection struct {
	ID    int     `json:"id"`
	Score float64 `json:"score"`
	BBox  BBox    `json:"bbox"`
}

// Record is one exported row: a detection paired with the image it came from
type Record struct {
	Filename   string
	LabelID    int
	X          int
	Y          int
	W          int
	H          int
	Confidence float64
}

// NewRecord builds an export record from a detection and its source image
func NewRecord(filename string, d Detection) Record {
	return Record{
		Filename:   filename,
		LabelID:    d.ID,
		X:          d.BBox.Xmin,
		Y:          d.BBox.Ymin,
		W:          d.BBox.Width(),
		H:          d.BBox.Height(),
		Confidence: d.Score,
	}
}
