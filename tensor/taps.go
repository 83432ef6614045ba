package tensor

import (
	"fmt"

	"github.com/fumitoshi0524/deconvnd/internal/convnd"
)

// tap links one position of the strided ("small") side of a convolution,
// one kernel offset and the position of the dense ("large") side it
// touches: large = small*stride - pad + kernel along every axis. The
// offsets are flat within a single channel plane.
type tap struct {
	small  int
	kernel int
	large  int
}

// buildTaps enumerates every in-bounds tap. Convolution reads the large
// side and writes the small one; deconvolution does the reverse, so both
// operators and their gradients share the same table.
func buildTaps(small, large, ksize, stride, pad []int) []tap {
	nd := len(small)
	smallN := convnd.Product(small)
	kN := convnd.Product(ksize)
	largeStrides := convnd.Strides(large)
	sIdx := make([]int, nd)
	kIdx := make([]int, nd)
	taps := make([]tap, 0, smallN*kN)
	for s := 0; s < smallN; s++ {
		convnd.Unravel(s, small, sIdx)
		for k := 0; k < kN; k++ {
			convnd.Unravel(k, ksize, kIdx)
			off := 0
			inside := true
			for d := 0; d < nd; d++ {
				pos := sIdx[d]*stride[d] - pad[d] + kIdx[d]
				if pos < 0 || pos >= large[d] {
					inside = false
					break
				}
				off += pos * largeStrides[d]
			}
			if inside {
				taps = append(taps, tap{small: s, kernel: k, large: off})
			}
		}
	}
	return taps
}

// strideAndPad expands stride and pad into nd-tuples. Empty values default
// to stride 1 and pad 0.
func strideAndPad(stride, pad []int, nd int) ([]int, []int, error) {
	if len(stride) == 0 {
		stride = []int{1}
	}
	if len(pad) == 0 {
		pad = []int{0}
	}
	s, err := convnd.AsTuple(stride, nd)
	if err != nil {
		return nil, nil, fmt.Errorf("stride: %w", err)
	}
	p, err := convnd.AsTuple(pad, nd)
	if err != nil {
		return nil, nil, fmt.Errorf("pad: %w", err)
	}
	for i := 0; i < nd; i++ {
		if s[i] <= 0 {
			return nil, nil, fmt.Errorf("stride must be positive, got %v", s)
		}
		if p[i] < 0 {
			return nil, nil, fmt.Errorf("pad must be non-negative, got %v", p)
		}
	}
	return s, p, nil
}

// checkConvOperands validates the ranks shared by the N-d operators and
// returns the number of spatial dims.
func checkConvOperands(op string, x, w *Tensor) (int, error) {
	if x == nil || w == nil {
		return 0, fmt.Errorf("%s requires input and weight", op)
	}
	if x.Rank() < 3 {
		return 0, fmt.Errorf("%w: %s expects input [batch, channels, d1..dN], got %v", ErrShapeMismatch, op, x.shape)
	}
	nd := x.Rank() - 2
	if w.Rank() != nd+2 {
		return 0, fmt.Errorf("%w: %s expects rank %d weight for rank %d input, got %v", ErrShapeMismatch, op, nd+2, x.Rank(), w.shape)
	}
	return nd, nil
}

func checkBias(op string, b *Tensor, channels int) error {
	if b != nil && (b.Rank() != 1 || b.shape[0] != channels) {
		return fmt.Errorf("%w: %s expects bias of shape [%d], got %v", ErrShapeMismatch, op, channels, b.shape)
	}
	return nil
}
