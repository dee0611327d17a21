package detect

import (
	"fmt"

	"github.com/menta2k/object-detector/pkg/engine"
	"github.com/menta2k/object-detector/pkg/types"
)

// Decoder turns one inference pass's raw output into pixel-space detections,
// keeping only those scoring at or above threshold.
type Decoder func(out engine.RawOutput, threshold float64, imgW, imgH int) ([]types.Detection, error)

// SSD decodes the standard four-tensor detection output produced by SSD-style
// models: normalized [ymin, xmin, ymax, xmax] boxes with parallel class and
// score tensors. Boxes are mapped to the original image's pixel coordinates
// and clamped to its bounds.
func SSD(out engine.RawOutput, threshold float64, imgW, imgH int) ([]types.Detection, error) {
	n := out.Count
	if n > len(out.Scores) {
		n = len(out.Scores)
	}
	if len(out.Boxes) < 4*n {
		return nil, fmt.Errorf("box tensor too short: have %d values, need %d", len(out.Boxes), 4*n)
	}
	if len(out.Classes) < n {
		return nil, fmt.Errorf("class tensor too short: have %d values, need %d", len(out.Classes), n)
	}

	var dets []types.Detection
	for i := 0; i < n; i++ {
		score := float64(out.Scores[i])
		if score < threshold {
			continue
		}
		ymin, xmin := out.Boxes[4*i], out.Boxes[4*i+1]
		ymax, xmax := out.Boxes[4*i+2], out.Boxes[4*i+3]
		dets = append(dets, types.Detection{
			ID:    int(out.Classes[i]),
			Score: score,
			BBox: types.BBox{
				Xmin: scaleClamp(xmin, imgW),
				Ymin: scaleClamp(ymin, imgH),
				Xmax: scaleClamp(xmax, imgW),
				Ymax: scaleClamp(ymax, imgH),
			},
		})
	}
	return dets, nil
}

// scaleClamp maps a normalized coordinate onto a pixel axis of length size.
func scaleClamp(v float32, size int) int {
	px := int(float64(v)*float64(size) + 0.5)
	if px < 0 {
		return 0
	}
	if px > size {
		return size
	}
	return px
}
