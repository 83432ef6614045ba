package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/fumitoshi0524/deconvnd/internal/convnd"
	"github.com/fumitoshi0524/deconvnd/internal/parallel"
)

// DeconvolutionND performs an N-dimensional transposed convolution.
// Input shape: [batch, in_channels, d1..dN]
// Weight shape: [in_channels, out_channels, k1..kN]
// Bias shape: [out_channels], or nil.
//
// stride and pad hold one value for every axis or a single value shared
// by all axes. When outsize is nil each output extent is
// stride*(d-1) + k - 2*pad; otherwise outsize must be an extent whose
// convolution with the same kernel, stride and pad gives back d.
func DeconvolutionND(x, w, b *Tensor, stride, pad, outsize []int) (*Tensor, error) {
	nd, err := checkConvOperands("DeconvolutionND", x, w)
	if err != nil {
		return nil, err
	}
	batch, inC := x.shape[0], x.shape[1]
	if w.shape[0] != inC {
		return nil, fmt.Errorf("%w: weight in_channels %d, input channels %d", ErrShapeMismatch, w.shape[0], inC)
	}
	outC := w.shape[1]
	if err := checkBias("DeconvolutionND", b, outC); err != nil {
		return nil, err
	}
	s, p, err := strideAndPad(stride, pad, nd)
	if err != nil {
		return nil, err
	}
	in := x.shape[2:]
	ksize := w.shape[2:]
	out, err := deconvOutShape(in, ksize, s, p, outsize)
	if err != nil {
		return nil, err
	}

	taps := buildTaps(in, out, ksize, s, p)
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
				wPlane := w.data[(ic*outC+oc)*kN : (ic*outC+oc+1)*kN]
				for _, t := range taps {
					yPlane[t.large] += xPlane[t.small] * wPlane[t.kernel]
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
						wPlane := w.data[(ic*outC+oc)*kN : (ic*outC+oc+1)*kN]
						for _, t := range taps {
							gxPlane[t.small] += gyPlane[t.large] * wPlane[t.kernel]
						}
					}
				}
			})
			accumulate(grads, x, gx)
		}
		if needsGrad(w) {
			gw := Zeros(w.shape...)
			parallel.For(inC*outC, func(start, end int) {
				for job := start; job < end; job++ {
					ic, oc := job/outC, job%outC
					gwPlane := gw.data[job*kN : (job+1)*kN]
					for n := 0; n < batch; n++ {
						xPlane := x.data[(n*inC+ic)*inN : (n*inC+ic+1)*inN]
						gyPlane := grad.data[(n*outC+oc)*outN : (n*outC+oc+1)*outN]
						for _, t := range taps {
							gwPlane[t.kernel] += xPlane[t.small] * gyPlane[t.large]
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

// DeconvOutShape returns the spatial output extents DeconvolutionND
// produces for the given input extents.
func DeconvOutShape(in, ksize, stride, pad, outsize []int) ([]int, error) {
	if len(in) != len(ksize) {
		return nil, fmt.Errorf("%w: %d input dims, %d kernel dims", ErrShapeMismatch, len(in), len(ksize))
	}
	s, p, err := strideAndPad(stride, pad, len(in))
	if err != nil {
		return nil, err
	}
	return deconvOutShape(in, ksize, s, p, outsize)
}

func deconvOutShape(in, ksize, s, p, outsize []int) ([]int, error) {
	nd := len(in)
	out := make([]int, nd)
	if outsize == nil {
		for i := 0; i < nd; i++ {
			out[i] = convnd.DeconvOutsize(in[i], ksize[i], s[i], p[i], false)
		}
	} else {
		if len(outsize) != nd {
			return nil, fmt.Errorf("%w: outsize %v for %d spatial dims", ErrShapeMismatch, outsize, nd)
		}
		for i := 0; i < nd; i++ {
			if got := convnd.ConvOutsize(outsize[i], ksize[i], s[i], p[i], false); got != in[i] {
				return nil, fmt.Errorf("%w: outsize %d on axis %d convolves back to %d, input has %d",
					ErrShapeMismatch, outsize[i], i, got, in[i])
			}
		}
		copy(out, outsize)
	}
	for i, o := range out {
		if o <= 0 {
			return nil, fmt.Errorf("%w: non-positive output extent %d on axis %d", ErrInvalidShape, o, i)
		}
	}
	return out, nil
}

// sumPlanes reduces a [batch, channels, plane] gradient to [channels].
func sumPlanes(grad *Tensor, batch, channels, plane int) *Tensor {
	g := Zeros(channels)
	for n := 0; n < batch; n++ {
		for c := 0; c < channels; c++ {
			off := (n*channels + c) * plane
			g.data[c] += floats.Sum(grad.data[off : off+plane])
		}
	}
	return g
}
