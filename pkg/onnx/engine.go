package onnx

import (
	"context"
	"fmt"
	"image"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/menta2k/object-detector/pkg/engine"
)

var (
	initOnce sync.Once
	initErr  error
)

// initialize brings up the ONNX Runtime environment once per process
func initialize(libPath string) error {
	initOnce.Do(func() {
		if libPath != "" {
			ort.SetSharedLibraryPath(libPath)
		}
		initErr = ort.InitializeEnvironment()
	})
	return initErr
}

// Engine runs detection models through ONNX Runtime
type Engine struct {
	session     *ort.DynamicAdvancedSession
	inputShape  ort.Shape
	inputData   []float32
	width       int
	height      int
	nchw        bool
	outputCount int
	last        engine.RawOutput
	hasOutput   bool
}

// New creates an inference engine for a .onnx model file. libPath optionally
// points at the onnxruntime shared library; when empty the platform default
// lookup applies.
func New(modelPath, libPath string) (*Engine, error) {
	if err := initialize(libPath); err != nil {
		return nil, fmt.Errorf("failed to initialize onnxruntime: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect model %s: %w", modelPath, err)
	}
	if len(inputs) != 1 {
		return nil, fmt.Errorf("model has %d inputs, expected 1", len(inputs))
	}
	if len(outputs) < 4 {
		return nil, fmt.Errorf("model has %d outputs, detection models need 4", len(outputs))
	}

	dims := inputs[0].Dimensions
	if len(dims) != 4 {
		return nil, fmt.Errorf("input tensor has %d dimensions, expected 4", len(dims))
	}
	var w, h int
	nchw := dims[1] == 3
	if nchw {
		h, w = int(dims[2]), int(dims[3])
	} else {
		h, w = int(dims[1]), int(dims[2])
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("model input has dynamic spatial dimensions %v", dims)
	}

	inputNames := []string{inputs[0].Name}
	outputNames := make([]string, len(outputs))
	for i, o := range outputs {
		outputNames[i] = o.Name
	}

	session, err := ort.NewDynamicAdvancedSession(modelPath, inputNames, outputNames, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create session for %s: %w", modelPath, err)
	}

	shape := make(ort.Shape, len(dims))
	copy(shape, dims)
	shape[0] = 1

	return &Engine{
		session:     session,
		inputShape:  shape,
		inputData:   make([]float32, w*h*3),
		width:       w,
		height:      h,
		nchw:        nchw,
		outputCount: len(outputs),
	}, nil
}

// InputShape returns the width and height of the model's input tensor
func (e *Engine) InputShape() (width, height int) {
	return e.width, e.height
}

// SetInput copies an already-resized image into the input buffer, scaled to
// [0, 1] in either NHWC or NCHW layout depending on the model.
func (e *Engine) SetInput(img image.Image) error {
	bounds := img.Bounds()
	if bounds.Dx() != e.width || bounds.Dy() != e.height {
		return fmt.Errorf("input image is %dx%d, model expects %dx%d",
			bounds.Dx(), bounds.Dy(), e.width, e.height)
	}

	plane := e.width * e.height
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			if e.nchw {
				e.inputData[i] = float32(r>>8) / 255
				e.inputData[plane+i] = float32(g>>8) / 255
				e.inputData[2*plane+i] = float32(b>>8) / 255
				i++
			} else {
				e.inputData[i+0] = float32(r>>8) / 255
				e.inputData[i+1] = float32(g>>8) / 255
				e.inputData[i+2] = float32(b>>8) / 255
				i += 3
			}
		}
	}
	return nil
}

// Invoke runs one inference pass and captures the raw detection output
func (e *Engine) Invoke(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	input, err := ort.NewTensor(e.inputShape, e.inputData)
	if err != nil {
		return fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer input.Destroy()

	outputs := make([]ort.Value, e.outputCount)
	if err := e.session.Run([]ort.Value{input}, outputs); err != nil {
		return fmt.Errorf("session run failed: %w", err)
	}
	defer func() {
		for _, o := range outputs {
			if o != nil {
				o.Destroy()
			}
		}
	}()

	boxes, err := tensorFloats(outputs[0])
	if err != nil {
		return fmt.Errorf("boxes output: %w", err)
	}
	classes, err := tensorFloats(outputs[1])
	if err != nil {
		return fmt.Errorf("classes output: %w", err)
	}
	scores, err := tensorFloats(outputs[2])
	if err != nil {
		return fmt.Errorf("scores output: %w", err)
	}
	count, err := tensorFloats(outputs[3])
	if err != nil {
		return fmt.Errorf("count output: %w", err)
	}
	if len(count) == 0 {
		return fmt.Errorf("count output is empty")
	}

	e.last = engine.RawOutput{
		Boxes:   boxes,
		Classes: classes,
		Scores:  scores,
		Count:   int(count[0]),
	}
	e.hasOutput = true
	return nil
}

// Output returns the raw tensors captured by the last Invoke
func (e *Engine) Output() (engine.RawOutput, error) {
	if !e.hasOutput {
		return engine.RawOutput{}, fmt.Errorf("no inference has been run yet")
	}
	return e.last, nil
}

// Close releases the session
func (e *Engine) Close() error {
	if e.session != nil {
		e.session.Destroy()
		e.session = nil
	}
	return nil
}

// tensorFloats copies a float32 or integer output tensor into a fresh slice
func tensorFloats(v ort.Value) ([]float32, error) {
	switch t := v.(type) {
	case *ort.Tensor[float32]:
		data := t.GetData()
		out := make([]float32, len(data))
		copy(out, data)
		return out, nil
	case *ort.Tensor[int64]:
		data := t.GetData()
		out := make([]float32, len(data))
		for i, d := range data {
			out[i] = float32(d)
		}
		return out, nil
	case *ort.Tensor[int32]:
		data := t.GetData()
		out := make([]float32, len(data))
		for i, d := range data {
			out[i] = float32(d)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported output tensor type %T", v)
	}
}
