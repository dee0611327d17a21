package tflite

import (
	"context"
	"fmt"
	"image"
	"log"
	"runtime"
	"strings"

	"github.com/mattn/go-tflite"

	"github.com/menta2k/object-detector/pkg/engine"
)

// edgeTPUSharedLib names the EdgeTPU runtime library per platform. The
// library is loaded by the delegate runtime itself; the name is only used
// here to tell the user what to install.
var edgeTPUSharedLib = map[string]string{
	"linux":   "libedgetpu.so.1",
	"darwin":  "libedgetpu.1.dylib",
	"windows": "edgetpu.dll",
}

// Engine runs detection models through the TensorFlow Lite interpreter
type Engine struct {
	model       *tflite.Model
	options     *tflite.InterpreterOptions
	interpreter *tflite.Interpreter
}

// SplitModelPath splits a model argument of the form "path@device" into its
// file path and accelerator-device token. The device token is optional.
func SplitModelPath(modelArg string) (path, device string) {
	path, device, _ = strings.Cut(modelArg, "@")
	return path, device
}

// New creates an inference engine for a .tflite model file. The model
// argument may carry an "@device" suffix naming an accelerator device; the
// token is split off and reported but execution stays on the CPU.
func New(modelArg string, numThreads int) (*Engine, error) {
	path, device := SplitModelPath(modelArg)
	if device != "" {
		lib := edgeTPUSharedLib[runtime.GOOS]
		log.Printf("device %q requested; EdgeTPU delegation requires %s, running on CPU", device, lib)
	}

	model := tflite.NewModelFromFile(path)
	if model == nil {
		return nil, fmt.Errorf("failed to load model from %s", path)
	}

	options := tflite.NewInterpreterOptions()
	if numThreads > 0 {
		options.SetNumThread(numThreads)
	}
	options.SetErrorReporter(func(msg string, userData interface{}) {
		log.Printf("tflite: %s", msg)
	}, nil)

	interpreter := tflite.NewInterpreter(model, options)
	if interpreter == nil {
		options.Delete()
		model.Delete()
		return nil, fmt.Errorf("failed to create interpreter for %s", path)
	}

	if status := interpreter.AllocateTensors(); status != tflite.OK {
		interpreter.Delete()
		options.Delete()
		model.Delete()
		return nil, fmt.Errorf("failed to allocate tensors for %s", path)
	}

	return &Engine{
		model:       model,
		options:     options,
		interpreter: interpreter,
	}, nil
}

// InputShape returns the width and height of the model's input tensor
func (e *Engine) InputShape() (width, height int) {
	input := e.interpreter.GetInputTensor(0)
	// NHWC layout: [1, height, width, channels]
	return input.Dim(2), input.Dim(1)
}

// SetInput copies an already-resized image into the input tensor. Both uint8
// and float32 input tensors are supported; float32 inputs are normalized to
// [-1, 1] the way SSD MobileNet expects.
func (e *Engine) SetInput(img image.Image) error {
	input := e.interpreter.GetInputTensor(0)
	w, h := input.Dim(2), input.Dim(1)
	bounds := img.Bounds()
	if bounds.Dx() != w || bounds.Dy() != h {
		return fmt.Errorf("input image is %dx%d, model expects %dx%d", bounds.Dx(), bounds.Dy(), w, h)
	}

	switch input.Type() {
	case tflite.UInt8:
		buf := input.UInt8s()
		i := 0
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				r, g, b, _ := img.At(x, y).RGBA()
				buf[i+0] = uint8(r >> 8)
				buf[i+1] = uint8(g >> 8)
				buf[i+2] = uint8(b >> 8)
				i += 3
			}
		}
	case tflite.Float32:
		buf := input.Float32s()
		i := 0
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				r, g, b, _ := img.At(x, y).RGBA()
				buf[i+0] = float32(r>>8)/127.5 - 1
				buf[i+1] = float32(g>>8)/127.5 - 1
				buf[i+2] = float32(b>>8)/127.5 - 1
				i += 3
			}
		}
	default:
		return fmt.Errorf("unsupported input tensor type %v", input.Type())
	}
	return nil
}

// Invoke runs one inference pass over the current input
func (e *Engine) Invoke(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if status := e.interpreter.Invoke(); status != tflite.OK {
		return fmt.Errorf("interpreter invoke failed")
	}
	return nil
}

// Output reads the four SSD detection tensors from the last invocation
func (e *Engine) Output() (engine.RawOutput, error) {
	if e.interpreter.GetOutputTensorCount() < 4 {
		return engine.RawOutput{}, fmt.Errorf("model has %d output tensors, detection models need 4",
			e.interpreter.GetOutputTensorCount())
	}

	boxes := copyFloats(e.interpreter.GetOutputTensor(0).Float32s())
	classes := copyFloats(e.interpreter.GetOutputTensor(1).Float32s())
	scores := copyFloats(e.interpreter.GetOutputTensor(2).Float32s())
	countTensor := e.interpreter.GetOutputTensor(3).Float32s()
	if len(countTensor) == 0 {
		return engine.RawOutput{}, fmt.Errorf("count tensor is empty")
	}

	return engine.RawOutput{
		Boxes:   boxes,
		Classes: classes,
		Scores:  scores,
		Count:   int(countTensor[0]),
	}, nil
}

// Close releases the interpreter, options and model
func (e *Engine) Close() error {
	if e.interpreter != nil {
		e.interpreter.Delete()
		e.interpreter = nil
	}
	if e.options != nil {
		e.options.Delete()
		e.options = nil
	}
	if e.model != nil {
		e.model.Delete()
		e.model = nil
	}
	return nil
}

// copyFloats detaches tensor data from interpreter-owned memory
func copyFloats(src []float32) []float32 {
	out := make([]float32, len(src))
	copy(out, src)
	return out
}
