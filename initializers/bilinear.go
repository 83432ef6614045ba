package initializers

import (
	"fmt"
	"math"

	"github.com/fumitoshi0524/deconvnd/internal/convnd"
	"github.com/fumitoshi0524/deconvnd/tensor"
)

// Bilinear builds an N-linear interpolation kernel for an upsampling
// deconvolution weight shaped (in, out, k1..kN). Channel c maps onto
// channel c; every other channel pair is zero. A kernel of size 2f-f%2
// with stride f upsamples by f.
type Bilinear struct{}

func (Bilinear) Initialize(t *tensor.Tensor) error {
	shape := t.Shape()
	if len(shape) < 3 {
		return fmt.Errorf("bilinear initializer needs (in, out, k...), got shape %v", shape)
	}
	inC, outC := shape[0], shape[1]
	ksize := shape[2:]
	kernel := BilinearKernel(ksize)
	kN := len(kernel)

	values := make([]float64, t.Numel())
	for c := 0; c < inC && c < outC; c++ {
		copy(values[(c*outC+c)*kN:], kernel)
	}
	return t.SetData(values)
}

// BilinearKernel returns the flattened interpolation kernel for ksize.
func BilinearKernel(ksize []int) []float64 {
	kN := convnd.Product(ksize)
	kernel := make([]float64, kN)
	idx := make([]int, len(ksize))
	for i := range kernel {
		convnd.Unravel(i, ksize, idx)
		v := 1.0
		for d, k := range ksize {
			factor := float64((k + 1) / 2)
			center := factor - 1
			if k%2 == 0 {
				center = factor - 0.5
			}
			v *= 1 - math.Abs(float64(idx[d])-center)/factor
		}
		kernel[i] = v
	}
	return kernel
}
