package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	objectdetector "github.com/menta2k/object-detector"
	"github.com/menta2k/object-detector/internal/config"
	"github.com/menta2k/object-detector/internal/utils"
	"github.com/menta2k/object-detector/pkg/engine"
	"github.com/menta2k/object-detector/pkg/labels"
	"github.com/menta2k/object-detector/pkg/onnx"
	"github.com/menta2k/object-detector/pkg/tflite"
)

// settings collects the run parameters that both flags and a config file can provide
type settings struct {
	input     string
	threshold float64
	count     int
	csvPath   string
	backend   string
	ext       string
	quality   int
	threads   int
	outDir    string
	suffix    string
}

// applyConfig overrides settings from a loaded config file, but only where
// the corresponding flag was not given explicitly on the command line.
func applyConfig(s *settings, loaded *config.Config, set map[string]bool) {
	if !set["input"] {
		s.input = loaded.Input.Source
	}
	if !set["threshold"] {
		s.threshold = loaded.Detector.Threshold
	}
	if !set["count"] {
		s.count = loaded.Detector.Count
	}
	if !set["csv"] {
		s.csvPath = loaded.Output.CSVFile
	}
	if !set["backend"] {
		s.backend = loaded.Detector.Backend
	}
	if !set["ext"] {
		s.ext = loaded.Output.Format
	}
	if !set["quality"] {
		s.quality = loaded.Output.Quality
	}
	if !set["threads"] {
		s.threads = loaded.Detector.NumThreads
	}
	if !set["output"] {
		s.outDir = loaded.Output.Dir
	}
	if !set["suffix"] {
		s.suffix = loaded.Output.Suffix
	}
}

func main() {
	cfg := config.Default()

	var s settings
	var model, labelPath, onnxLib, cfgPath string

	flag.StringVar(&model, "model", "", "file path of the .tflite or .onnx model, optionally suffixed with @device")
	flag.StringVar(&s.input, "input", cfg.Input.Source, "image file, directory or glob pattern to process")
	flag.StringVar(&labelPath, "labels", "", "file path of the labels file")
	flag.Float64Var(&s.threshold, "threshold", cfg.Detector.Threshold, "score threshold for detected objects")
	flag.StringVar(&s.outDir, "output", cfg.Output.Dir, "directory for annotated result images (annotation disabled when empty)")
	flag.IntVar(&s.count, "count", cfg.Detector.Count, "number of times to run inference per image")
	flag.StringVar(&s.csvPath, "csv", cfg.Output.CSVFile, "file path for the result table")
	flag.StringVar(&s.backend, "backend", "", "inference backend: tflite or onnx (default: chosen by model extension)")
	flag.StringVar(&onnxLib, "onnxlib", "", "path to the onnxruntime shared library")
	flag.StringVar(&s.ext, "ext", cfg.Output.Format, "annotated image format: jpg|png|webp")
	flag.IntVar(&s.quality, "quality", cfg.Output.Quality, "annotated image quality (1-100)")
	flag.StringVar(&s.suffix, "suffix", cfg.Output.Suffix, "filename suffix for annotated images")
	flag.IntVar(&s.threads, "threads", cfg.Detector.NumThreads, "number of interpreter threads")
	flag.StringVar(&cfgPath, "config", "", "path to a JSON config file")
	flag.Parse()

	if cfgPath != "" {
		loaded, err := config.LoadFromFile(cfgPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		if err := loaded.Validate(); err != nil {
			log.Fatalf("Invalid config: %v", err)
		}
		set := map[string]bool{}
		flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
		applyConfig(&s, loaded, set)
	}

	if model == "" {
		log.Fatalf("usage: %s -model model.tflite[@device] [-input images/] [-labels labels.txt] [-threshold 0.4] [-count 5] [-output outdir] [-csv results.csv]", filepath.Base(os.Args[0]))
	}

	lbl := labels.Labels{}
	if labelPath != "" {
		var err error
		lbl, err = labels.Load(labelPath)
		if err != nil {
			log.Fatalf("Failed to load labels: %v", err)
		}
	}

	files, err := utils.FindImages(s.input)
	if err != nil {
		log.Fatalf("Failed to resolve image source: %v", err)
	}
	if len(files) == 0 {
		log.Fatalf("No images matched %q", s.input)
	}

	// Create the appropriate engine for the model
	var eng engine.Engine
	switch resolveBackend(s.backend, model) {
	case "tflite":
		eng, err = tflite.New(model, s.threads)
		if err != nil {
			log.Fatalf("Failed to create TFLite engine: %v", err)
		}
	case "onnx":
		eng, err = onnx.New(model, onnxLib)
		if err != nil {
			log.Fatalf("Failed to create ONNX engine: %v", err)
		}
	default:
		log.Fatalf("Unknown backend: %s (use 'tflite' or 'onnx')", s.backend)
	}
	defer eng.Close()

	runner := objectdetector.NewRunner(eng, lbl)
	rep, err := runner.Run(context.Background(), files, objectdetector.Options{
		Threshold: s.threshold,
		Count:     s.count,
		OutputDir: s.outDir,
		Format:    s.ext,
		Quality:   s.quality,
		Suffix:    s.suffix,
	})
	if err != nil {
		log.Fatal(err)
	}

	if rep.Len() > 0 {
		rep.RenderTable(os.Stdout)
	}
	if err := rep.SaveCSV(s.csvPath); err != nil {
		log.Fatalf("Failed to write result table: %v", err)
	}
	log.Printf("wrote %d detections from %d images to %s", rep.Len(), len(files), s.csvPath)
}

// resolveBackend picks the inference backend from the flag or, when unset,
// from the model file extension.
func resolveBackend(backend, model string) string {
	if backend != "" {
		return backend
	}
	path, _ := tflite.SplitModelPath(model)
	if strings.EqualFold(filepath.Ext(path), ".onnx") {
		return "onnx"
	}
	return "tflite"
}
