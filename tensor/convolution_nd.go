package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/fumitoshi0524/deconvnd/internal/convnd"
	"github.com/fumitoshi0524/deconvnd/internal/parallel"
)

// ConvolutionND performs an N-dimensional convolution (cross-correlation).
// Input shape: [batch, in_channels, d1..dN]
// Weight shape: [out_channels, in_channels, k1..kN]
// Bias shape: [out_channels], or nil.
//
// ConvolutionND is the adjoint of DeconvolutionND: for weights with
// swapped channel axes the gradient of one is the forward of the other.
func ConvolutionND(x, w, b *Tensor, stride, pad []int) (*Tensor, error) {
	nd, err := checkConvOperands("ConvolutionND", x, w)
	if err != nil {
		return nil, err
	}
	batch, inC := x.shape[0], x.shape[1]
	if w.shape[1] != inC {
		return nil, fmt.Errorf("%w: weight in_channels %d, input channels %d", ErrShapeMismatch, w.shape[1], inC)
	}
	outC := w.shape[0]
	if err := checkBias("ConvolutionND", b, outC); err != nil {
		return nil, err
	}
	s, p, err := strideAndPad(stride, pad, nd)
	if err != nil {
		return nil, err
	}
	in := x.shape[2:]
	ksize := w.shape[2:]
	out := make([]int, nd)
	for i := 0; i < nd; i++ {
		out[i] = convnd.ConvOutsize(in[i], ksize[i], s[i], p[i], false)
		if out[i] <= 0 {
			return nil, fmt.Errorf("%w: non-positive output extent %d on axis %d", ErrInvalidShape, out[i], i)
		}
	}

	taps := buildTaps(out, in, ksize, s, p)
	inN := convnd.Product(in)
	outN := convnd.Product(out)
	kN := convnd.Product(ksize)

	y := Zeros(append([]int{batch, outC}, out...)...)
	parallel.For(batch*outC, func(start, end int) {
		for job := start; job < end; job++ {
			n, oc := job/outC, job%outC
			yPlane := y.data[job*outN : (job+1)*outN]
			for ic := 0; ic < inC; ic++ {
				xPlane := x.data[(n*inC+ic)*inN : (n*inC+ic+1)*inN]
				wPlane := w.data[(oc*inC+ic)*kN : (oc*inC+ic+1)*kN]
				for _, t := range taps {
					yPlane[t.small] += xPlane[t.large] * wPlane[t.kernel]
				}
			}
			if b != nil {
				floats.AddConst(b.data[oc], yPlane)
			}
		}
	})

	attachGrad(y, func(grad *Tensor, grads map[*Tensor]*Tensor) {
		if needsGrad(x) {
			gx := Zeros(x.shape...)
			parallel.For(batch*inC, func(start, end int) {
				for job := start; job < end; job++ {
					n, ic := job/inC, job%inC
					gxPlane := gx.data[job*inN : (job+1)*inN]
					for oc := 0; oc < outC; oc++ {
						gyPlane := grad.data[(n*outC+oc)*outN : (n*outC+oc+1)*outN]
						wPlane := w.data[(oc*inC+ic)*kN : (oc*inC+ic+1)*kN]
						for _, t := range taps {
							gxPlane[t.large] += gyPlane[t.small] * wPlane[t.kernel]
						}
					}
				}
			})
			accumulate(grads, x, gx)
		}
		if needsGrad(w) {
			gw := Zeros(w.shape...)
			parallel.For(outC*inC, func(start, end int) {
				for job := start; job < end; job++ {
					oc, ic := job/inC, job%inC
					gwPlane := gw.data[job*kN : (job+1)*kN]
					for n := 0; n < batch; n++ {
						xPlane := x.data[(n*inC+ic)*inN : (n*inC+ic+1)*inN]
						gyPlane := grad.data[(n*outC+oc)*outN : (n*outC+oc+1)*outN]
						for _, t := range taps {
							gwPlane[t.kernel] += xPlane[t.large] * gyPlane[t.small]
						}
					}
				}
			})
			accumulate(grads, w, gw)
		}
		if needsGrad(b) {
			accumulate(grads, b, sumPlanes(grad, batch, outC, outN))
		}
	}, x, w, b)
	return y, nil
}
