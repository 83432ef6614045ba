package optim

import (
	"math"

	"github.com/fumitoshi0524/deconvnd/tensor"
)

// ClipGradNorm rescales the gradients of params so that their joint L-p
// norm is at most maxNorm, and returns the norm before clipping. A
// non-positive normType means 2.
func ClipGradNorm(params []*tensor.Tensor, maxNorm float64, normType float64) float64 {
	if maxNorm <= 0 {
		return 0
	}
	if normType <= 0 {
		normType = 2
	}
	total := 0.0
	for _, p := range params {
		if p == nil {
			continue
		}
		total += math.Pow(p.GradNorm(normType), normType)
	}
	norm := math.Pow(total, 1.0/normType)
	if norm > maxNorm {
		scale := maxNorm / norm
		for _, p := range params {
			if p != nil {
				p.ScaleGrad(scale)
			}
		}
	}
	return norm
}
