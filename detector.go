// Package objectdetector runs pre-trained object-detection models over sets
// of images and collects the results.
//
// The package wires an inference backend, an output decoder and a label
// mapping into a batch pipeline: each image is resized to the model's input
// dimensions, inference is invoked a configurable number of times with
// per-run timing, detections above a score threshold are decoded from the
// final run, and every detection becomes one row in the result report.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"log"
//
//		objectdetector "github.com/menta2k/object-detector"
//		"github.com/menta2k/object-detector/pkg/labels"
//		"github.com/menta2k/object-detector/pkg/tflite"
//	)
//
//	func main() {
//		eng, err := tflite.New("mobilenet_ssd.tflite", 4)
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer eng.Close()
//
//		lbl, err := labels.Load("coco_labels.txt")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		runner := objectdetector.NewRunner(eng, lbl)
//		rep, err := runner.Run(context.Background(), []string{"photo.jpg"}, objectdetector.Options{
//			Threshold: 0.4,
//			Count:     5,
//		})
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		if err := rep.SaveCSV("results.csv"); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// Two inference backends are provided: pkg/tflite for TensorFlow Lite
// flatbuffers and pkg/onnx for ONNX models. Both satisfy the engine.Engine
// interface, so tests and alternative runtimes can plug in their own.
package objectdetector

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/menta2k/object-detector/internal/utils"
	"github.com/menta2k/object-detector/pkg/annotate"
	"github.com/menta2k/object-detector/pkg/detect"
	"github.com/menta2k/object-detector/pkg/engine"
	"github.com/menta2k/object-detector/pkg/labels"
	"github.com/menta2k/object-detector/pkg/processing"
	"github.com/menta2k/object-detector/pkg/report"
	"github.com/menta2k/object-detector/pkg/types"
)

// Version of the object detector library
const Version = "1.0.0"

// Options controls one batch detection run
type Options struct {
	// Threshold is the minimum score a detection must reach to be kept.
	Threshold float64
	// Count is how many times inference runs per image; every run is timed
	// but only the last run's output is decoded.
	Count int
	// OutputDir, when non-empty, receives an annotated copy of each image
	// that produced detections.
	OutputDir string
	// Format and Quality control the annotated image encoding.
	Format  string
	Quality int
	// Suffix is appended to annotated image filenames.
	Suffix string
}

// Runner executes batch detection over image files
type Runner struct {
	engine    engine.Engine
	decoder   detect.Decoder
	labels    labels.Labels
	processor *processing.Processor
	logger    *log.Logger
}

// NewRunner creates a Runner with the standard SSD decoder
func NewRunner(eng engine.Engine, lbl labels.Labels) *Runner {
	return &Runner{
		engine:    eng,
		decoder:   detect.SSD,
		labels:    lbl,
		processor: processing.NewProcessor(),
		logger:    log.Default(),
	}
}

// SetDecoder replaces the output decoder
func (r *Runner) SetDecoder(d detect.Decoder) {
	r.decoder = d
}

// SetLogger replaces the logger used for per-run timings and results
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// Run processes every file in order and returns the accumulated report.
// Each detection above the threshold becomes one record carrying the
// filename of the image it was found in.
func (r *Runner) Run(ctx context.Context, files []string, opts Options) (*report.Report, error) {
	if opts.Count < 1 {
		opts.Count = 1
	}
	if opts.OutputDir != "" {
		if err := utils.EnsureDir(opts.OutputDir); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	rep := report.New()
	for _, file := range files {
		dets, err := r.ProcessImage(ctx, file, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to process %s: %w", file, err)
		}
		rep.Add(file, dets)
	}
	return rep, nil
}

// ProcessImage runs the inference loop for a single image and returns its
// detections. When opts.OutputDir is set an annotated copy is written.
func (r *Runner) ProcessImage(ctx context.Context, file string, opts Options) ([]types.Detection, error) {
	img, err := r.processor.LoadImageSmart(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}

	w, h := r.engine.InputShape()
	resized := r.processor.ResizeForModel(img, w, h)
	if err := r.engine.SetInput(resized); err != nil {
		return nil, fmt.Errorf("failed to set input tensor: %w", err)
	}

	r.logger.Printf("%s", file)
	r.logger.Printf("----INFERENCE TIME----")
	r.logger.Printf("Note: the first inference can be slow because it includes loading the model into memory")
	for i := 0; i < opts.Count; i++ {
		start := time.Now()
		if err := r.engine.Invoke(ctx); err != nil {
			return nil, fmt.Errorf("inference failed: %w", err)
		}
		r.logger.Printf("%.2f ms", float64(time.Since(start).Microseconds())/1000)
	}

	out, err := r.engine.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to read model output: %w", err)
	}

	bounds := img.Bounds()
	dets, err := r.decoder(out, opts.Threshold, bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, fmt.Errorf("failed to decode detections: %w", err)
	}

	r.logger.Printf("-------RESULTS--------")
	if len(dets) == 0 {
		r.logger.Printf("No objects detected")
	}
	for _, d := range dets {
		r.logger.Printf("%s", r.labels.Get(d.ID))
		r.logger.Printf("  id:    %d", d.ID)
		r.logger.Printf("  score: %.2f", d.Score)
		r.logger.Printf("  bbox:  %s", d.BBox)
		r.logger.Printf("  w: %d  h: %d", d.BBox.Width(), d.BBox.Height())
	}

	if opts.OutputDir != "" && len(dets) > 0 {
		annotated := annotate.Draw(img, dets, r.labels)
		outPath := utils.GenerateOutputFilename(file, opts.OutputDir, opts.Suffix, opts.Format)
		if err := r.processor.SaveImage(annotated, outPath, opts.Format, opts.Quality, false); err != nil {
			return nil, fmt.Errorf("failed to save annotated image: %w", err)
		}
		r.logger.Printf("wrote %s", outPath)
	}

	return dets, nil
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
