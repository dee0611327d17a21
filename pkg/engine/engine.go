package engine

import (
	"context"
	"image"
)

// RawOutput holds the raw output tensors of one inference pass in the
// standard SSD detection layout: boxes are normalized [ymin, xmin, ymax, xmax]
// quadruples, classes and scores run parallel to them, and Count says how
// many leading entries are valid.
type RawOutput struct {
	Boxes   []float32
	Classes []float32
	Scores  []float32
	Count   int
}

// Engine is an inference handle bound to a loaded detection model.
type Engine interface {
	// InputShape returns the width and height the model expects its input
	// image to have.
	InputShape() (width, height int)
	// SetInput copies an already-resized image into the input tensor.
	SetInput(img image.Image) error
	// Invoke runs one inference pass over the current input.
	Invoke(ctx context.Context) error
	// Output returns the raw tensors produced by the last Invoke.
	Output() (RawOutput, error)
	// Close releases the model and any runtime resources.
	Close() error
}
